// Package markdown finds fenced diagram blocks in Markdown documents and
// rewrites them in place.
package markdown

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Block is a fenced diagram block. Lines are 0-based and point at the
// fences; Content excludes both fences and the fence indentation.
type Block struct {
	Lang      string
	Content   string
	StartLine int
	EndLine   int
	Indent    string
	Hash      string
}

// Scanner finds and replaces diagram blocks in a Markdown document
type Scanner struct {
	lines []string
}

// NewScanner creates a new markdown scanner
func NewScanner(content string) *Scanner {
	return &Scanner{lines: strings.Split(content, "\n")}
}

// Content returns the current document.
func (s *Scanner) Content() string {
	return strings.Join(s.lines, "\n")
}

// Blocks returns every fenced block whose language is one of ours. An
// unterminated fence is ignored.
func (s *Scanner) Blocks() []Block {
	var (
		blocks  []Block
		current *Block
		body    []string
	)

	for i, line := range s.lines {
		trimmed := strings.TrimLeft(line, " \t")
		if current == nil {
			if !strings.HasPrefix(trimmed, "```") {
				continue
			}
			lang := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "```")))
			if IsDiagramLanguage(lang) {
				current = &Block{Lang: lang, StartLine: i, Indent: line[:len(line)-len(trimmed)]}
				body = body[:0]
			}
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			current.EndLine = i
			current.Content = strings.Join(body, "\n")
			current.Hash = hash(current.Content)
			blocks = append(blocks, *current)
			current = nil
			continue
		}
		body = append(body, strings.TrimPrefix(line, current.Indent))
	}

	return blocks
}

// Unchanged checks that block still sits where it was found with the same
// content.
func (s *Scanner) Unchanged(block Block) error {
	if err := s.checkFences(block); err != nil {
		return err
	}
	body := make([]string, 0, block.EndLine-block.StartLine-1)
	for _, line := range s.lines[block.StartLine+1 : block.EndLine] {
		body = append(body, strings.TrimPrefix(line, block.Indent))
	}
	if hash(strings.Join(body, "\n")) != block.Hash {
		return fmt.Errorf("block at line %d has been modified (hash mismatch)", block.StartLine+1)
	}
	return nil
}

// Replace swaps the body of block for content, indented like the fence, and
// returns the new document. The block must be unchanged since it was found.
func (s *Scanner) Replace(block Block, content string) (string, error) {
	if err := s.Unchanged(block); err != nil {
		return "", err
	}

	body := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for i, line := range body {
		if line != "" {
			body[i] = block.Indent + line
		}
	}
	s.lines = slices.Concat(s.lines[:block.StartLine+1], body, s.lines[block.EndLine:])
	return s.Content(), nil
}

func (s *Scanner) checkFences(block Block) error {
	if block.StartLine < 0 || block.EndLine >= len(s.lines) || block.StartLine >= block.EndLine {
		return fmt.Errorf("invalid block boundaries: start=%d, end=%d, total lines=%d",
			block.StartLine, block.EndLine, len(s.lines))
	}
	start := strings.TrimLeft(s.lines[block.StartLine], " \t")
	if !strings.HasPrefix(strings.ToLower(start), "```"+block.Lang) {
		return fmt.Errorf("block start marker has changed at line %d: expected '```%s', found '%s'",
			block.StartLine+1, block.Lang, start)
	}
	end := strings.TrimLeft(s.lines[block.EndLine], " \t")
	if !strings.HasPrefix(end, "```") {
		return fmt.Errorf("block end marker has changed at line %d: expected '```', found '%s'",
			block.EndLine+1, end)
	}
	return nil
}

// IsDiagramLanguage reports whether a fence language holds a diagram we can
// read or write.
func IsDiagramLanguage(lang string) bool {
	switch strings.ToLower(lang) {
	case "mermaid", "graphviz", "dot", "d2":
		return true
	default:
		return false
	}
}

// Describe returns a one line summary of a block for listings.
func Describe(block Block, index int) string {
	preview := ""
	for _, line := range strings.Split(block.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "%%") {
			preview = line
			break
		}
	}
	return fmt.Sprintf("%d. %s (line %d): %s", index+1, block.Lang, block.StartLine+1,
		runewidth.Truncate(preview, 50, "..."))
}

func hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
