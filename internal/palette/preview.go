package palette

import (
	"fmt"
	"io"
	"strings"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 4
)

// Swatch returns an ANSI-coloured block for a colour.
// Width specifies how many characters wide the block should be.
func Swatch(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	bg := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bg + strings.Repeat(" ", width) + ansiReset
}

// WriteSwatches prints the palette as a grid of coloured blocks, columns per row.
func WriteSwatches(w io.Writer, p *Palette, columns int) error {
	if columns <= 0 {
		columns = 16
	}

	var sb strings.Builder
	for i, c := range p.Colors {
		sb.WriteString(Swatch(c, defaultWidth))
		if (i+1)%columns == 0 || i == len(p.Colors)-1 {
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteHex prints one hex colour per line.
func WriteHex(w io.Writer, p *Palette) error {
	var sb strings.Builder
	for _, c := range p.Colors {
		sb.WriteString(c.Hex())
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
