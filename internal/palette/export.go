package palette

import (
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Format is an export image format.
type Format string

// Supported export formats.
const (
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// FormatFromPath picks the export format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".gif":
		return FormatGIF, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported palette format %q (supported: .png, .gif, .bmp, .tiff)", filepath.Ext(path))
	}
}

// Grid bounds for exported palettes.
const (
	MaxCell    = 256
	MaxColumns = MaxColors
)

// ValidateCell checks a swatch size in pixels.
func ValidateCell(cell int) error {
	if cell < 1 || cell > MaxCell {
		return fmt.Errorf("cell size must be between 1 and %d, got %d", MaxCell, cell)
	}
	return nil
}

// Image lays the palette out as a grid of cell x cell squares, columns wide.
// A zero columns means 16.
func (p *Palette) Image(columns, cell int) (*image.Paletted, error) {
	if columns == 0 {
		columns = 16
	}
	if columns < 1 || columns > MaxColumns {
		return nil, fmt.Errorf("columns must be between 1 and %d, got %d", MaxColumns, columns)
	}
	if err := ValidateCell(cell); err != nil {
		return nil, err
	}
	rows := (p.Len() + columns - 1) / columns
	if rows == 0 {
		rows = 1
	}

	// One pixel per colour first, then scale up so every cell keeps an exact colour.
	small := image.NewPaletted(image.Rect(0, 0, columns, rows), p.ColorPalette())
	for i := range p.Colors {
		small.SetColorIndex(i%columns, i/columns, uint8(i))
	}
	if cell == 1 {
		return small, nil
	}

	big := image.NewPaletted(image.Rect(0, 0, columns*cell, rows*cell), small.Palette)
	draw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), draw.Src, nil)
	return big, nil
}

// Encode writes the palette grid to w in the given format.
func (p *Palette) Encode(w io.Writer, format Format, cell int) error {
	if p.Len() == 0 {
		return fmt.Errorf("cannot export an empty palette")
	}
	if p.Len() > MaxColors {
		return fmt.Errorf("cannot export %d colours (limit %d)", p.Len(), MaxColors)
	}

	img, err := p.Image(16, cell)
	if err != nil {
		return err
	}

	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatGIF:
		return gif.Encode(w, img, &gif.Options{NumColors: len(img.Palette)})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported palette format: %s", format)
	}
}

// Export writes the palette to path, choosing the format from its extension.
func (p *Palette) Export(path string, cell int) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := ValidateCell(cell); err != nil {
		return err
	}

	file, err := os.Create(path) // #nosec G304 - user-specified output path
	if err != nil {
		return fmt.Errorf("failed to create palette file: %w", err)
	}

	if err := p.Encode(file, format, cell); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode palette as %s: %w", format, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write palette file: %w", err)
	}
	return nil
}
