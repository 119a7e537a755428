// Package palette reads the palette image produced by the encoder so it can
// be verified, previewed in a terminal and exported in other formats.
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io/fs"
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format

	"github.com/jmylchreest/gifer/internal/security"
)

// MaxColors is the largest colour table a GIF frame can carry.
const MaxColors = 256

// RGB represents an opaque colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the colour as "rgb(r, g, b)".
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex returns the colour as a hex string (e.g. "#1a2b3c").
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ToRGB converts a color.Color to RGB, dropping alpha.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{
		R: security.SafeUint8FromUint32(r >> 8),
		G: security.SafeUint8FromUint32(g >> 8),
		B: security.SafeUint8FromUint32(b >> 8),
	}
}

// Palette is the ordered set of distinct colours found in a palette image.
type Palette struct {
	Colors []RGB
	// Format is the decoder that read the source image (png, gif, ...).
	Format string
	// Bounds of the source image.
	Bounds image.Rectangle
}

// Len returns the number of colours.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// ColorPalette converts to a color.Palette suitable for image.Paletted.
func (p *Palette) ColorPalette() color.Palette {
	out := make(color.Palette, len(p.Colors))
	for i, c := range p.Colors {
		out[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
	return out
}

// FromImage collects the distinct colours of img in row-major order.
func FromImage(img image.Image) *Palette {
	bounds := img.Bounds()
	seen := make(map[RGB]struct{})
	var colors []RGB

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := ToRGB(img.At(x, y))
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			colors = append(colors, c)
		}
	}

	return &Palette{Colors: colors, Bounds: bounds}
}

// Load decodes the palette image at path.
func Load(path string) (*Palette, error) {
	file, err := os.Open(path) // #nosec G304 - palette path comes from our own workspace or the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("palette file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open palette file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode palette image: %w", err)
	}

	p := FromImage(img)
	p.Format = format
	return p, nil
}

// CheckExists checks that the encoder left a non-empty file at path. The
// contents are not inspected.
func CheckExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("palette file was not produced: %s", path)
		}
		return fmt.Errorf("failed to stat palette file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("palette path is not a regular file: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("palette file is empty: %s", path)
	}
	return nil
}

// Verify checks that the encoder actually produced a usable palette at path:
// the file exists, decodes as an image and holds between 1 and MaxColors colours.
func Verify(path string) (*Palette, error) {
	if err := CheckExists(path); err != nil {
		return nil, err
	}

	p, err := Load(path)
	if err != nil {
		return nil, err
	}

	switch {
	case p.Len() == 0:
		return nil, fmt.Errorf("palette image has no colours: %s", path)
	case p.Len() > MaxColors:
		return nil, fmt.Errorf("palette image has %d colours, more than the GIF limit of %d", p.Len(), MaxColors)
	}

	return p, nil
}
