package geometry

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/spatial/r2"
)

// Label box constants. BaseWidth and BaseHeight are the smallest box any node can have.
const (
	BaseWidth         = 80.0
	BaseHeight        = 48.0
	PaddingX          = 12.0
	PaddingY          = 8.0
	DefaultFontSize   = 16.0
	CharWidthFactor   = 0.6
	LineHeightFactor  = 1.25
	MaxLines          = 3
	MaxLayoutAttempts = 6
)

// Label is the result of laying out a node's text.
type Label struct {
	Lines      []string
	Width      float64
	Height     float64
	LineHeight float64
	PaddingX   float64
	PaddingY   float64
	FontSize   float64
}

// Size returns the box dimensions as a vector.
func (l Label) Size() r2.Vec {
	return r2.Vec{X: l.Width, Y: l.Height}
}

// LayoutLabel wraps text into at most MaxLines lines and sizes a box around it.
// Widths are estimated as cells * fontSize * CharWidthFactor. When wrapping at
// the starting width needs more than MaxLines lines the width is widened from
// the average characters per line and the wrap retried, at most
// MaxLayoutAttempts times. The result depends only on the arguments.
func LayoutLabel(text string, fontSize, minWidth float64) Label {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	charW := fontSize * CharWidthFactor
	lineH := fontSize * LineHeightFactor
	floor := math.Max(minWidth, BaseWidth)

	total := 0
	for _, word := range strings.Fields(text) {
		if total > 0 {
			total++
		}
		total += runewidth.StringWidth(word)
	}

	width := floor
	var lines []string
	for attempt := 0; attempt < MaxLayoutAttempts; attempt++ {
		lines = wrapLabel(text, charsPerLine(width, charW))
		if len(lines) <= MaxLines {
			break
		}
		perLine := int(math.Ceil(float64(total)/MaxLines)) + 1
		next := float64(perLine)*charW + 2*PaddingX
		// Always make progress; word breaks can defeat the average.
		width = math.Max(next, width*1.2)
	}
	if len(lines) > MaxLines {
		lines = append(lines[:MaxLines-1], strings.Join(lines[MaxLines-1:], " "))
	}

	widest := 0
	for _, line := range lines {
		widest = max(widest, runewidth.StringWidth(line))
	}

	return Label{
		Lines:      lines,
		Width:      math.Max(floor, float64(widest)*charW+2*PaddingX),
		Height:     math.Max(BaseHeight, float64(len(lines))*lineH+2*PaddingY),
		LineHeight: lineH,
		PaddingX:   PaddingX,
		PaddingY:   PaddingY,
		FontSize:   fontSize,
	}
}

func charsPerLine(width, charW float64) int {
	n := int(math.Floor((width-2*PaddingX)/charW + 1e-9))
	if n < 1 {
		return 1
	}
	return n
}

// wrapLabel wraps at spaces, hard-breaking words that are wider than a line.
func wrapLabel(text string, maxChars int) []string {
	var lines []string
	var cur strings.Builder
	curW := 0

	flush := func() {
		if curW > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for _, part := range splitWord(word, maxChars) {
			w := runewidth.StringWidth(part)
			if curW > 0 && curW+1+w > maxChars {
				flush()
			}
			if curW > 0 {
				cur.WriteByte(' ')
				curW++
			}
			cur.WriteString(part)
			curW += w
		}
	}
	flush()

	return lines
}

func splitWord(word string, maxChars int) []string {
	if runewidth.StringWidth(word) <= maxChars {
		return []string{word}
	}

	var parts []string
	var cur strings.Builder
	curW := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if curW > 0 && curW+rw > maxChars {
			parts = append(parts, cur.String())
			cur.Reset()
			curW = 0
		}
		cur.WriteRune(r)
		curW += rw
	}
	if curW > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
