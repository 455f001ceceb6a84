package cli

import "github.com/fatih/color"

// Output colors
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// depthAttrs tint outline levels below the roots.
var depthAttrs = []color.Attribute{
	color.FgGreen,
	color.FgYellow,
	color.FgMagenta,
	color.FgBlue,
}

// depthColor returns the color of an outline level. Roots use Brand.
func depthColor(depth int, bold bool) *color.Color {
	if depth == 0 {
		return Brand
	}
	c := color.New(depthAttrs[(depth-1)%len(depthAttrs)])
	if bold {
		c.Add(color.Bold)
	}
	return c
}
