package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"mindmap/markdown"
)

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// pickBlock selects the 1-based block n, or the only block when n is 0.
func pickBlock(blocks []markdown.Block, n int, path string) (markdown.Block, error) {
	switch {
	case len(blocks) == 0:
		return markdown.Block{}, fmt.Errorf("no diagram blocks in %s", path)
	case n == 0 && len(blocks) == 1:
		return blocks[0], nil
	case n >= 1 && n <= len(blocks):
		return blocks[n-1], nil
	}

	var sb strings.Builder
	if n == 0 {
		fmt.Fprintf(&sb, "%s has %d diagram blocks, pick one with --block:", path, len(blocks))
	} else {
		fmt.Fprintf(&sb, "%s has no block %d:", path, n)
	}
	for i, b := range blocks {
		sb.WriteString("\n  " + markdown.Describe(b, i))
	}
	return markdown.Block{}, fmt.Errorf("%s", sb.String())
}
