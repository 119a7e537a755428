package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/gifer/internal/config"
	"github.com/jmylchreest/gifer/internal/logging"
	"github.com/jmylchreest/gifer/internal/palette"
)

func newPaletteCmd(d deps) *cobra.Command {
	var (
		inputPath string
		cellSize  int
		hexOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "palette -i <INFILE> [PALETTE_OUT]",
		Short: "Build and show the GIF palette of a video",
		Long: `Run only the palette pass of the conversion and show the resulting colours.

When PALETTE_OUT is given the palette is also saved there as a grid of
swatches. The format follows the extension: .png, .gif, .bmp or .tiff.

Examples:
  # Show the palette gifer would use for a clip
  gifer palette -i clip.mp4

  # Save it as a PNG with 32px swatches
  gifer palette -i clip.mp4 --cell 32 palette.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("input") || inputPath == "" {
				cmd.SetOut(cmd.ErrOrStderr())
				_ = cmd.Usage()
				return &ArgumentError{Msg: `required flag "input" not set`}
			}

			if err := palette.ValidateCell(cellSize); err != nil {
				return fmt.Errorf("invalid --cell: %w", err)
			}

			var outPath string
			if len(args) == 1 {
				outPath = args[0]
				// Fail on a bad extension before running ffmpeg.
				if _, err := palette.FormatFromPath(outPath); err != nil {
					return err
				}
			}

			cfg, err := config.Resolve(cmd.Flags(), d.lookupEnv)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			p, err := d.newConverter(cfg, logger).ExtractPalette(cmd.Context(), inputPath)
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := p.Export(outPath, cellSize); err != nil {
					return err
				}
				logger.Info("saved palette", "path", outPath, "colours", p.Len())
			}

			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				return nil
			}
			return printPalette(cmd.OutOrStdout(), p, hexOnly)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "sets the input file to use (required)")
	cmd.Flags().IntVar(&cellSize, "cell", 16, fmt.Sprintf("swatch size in pixels when saving the palette (1-%d)", palette.MaxCell))
	cmd.Flags().BoolVar(&hexOnly, "hex", false, "print hex codes only, even on a terminal")

	return cmd
}

// printPalette shows swatches on a terminal and plain hex codes otherwise.
func printPalette(w io.Writer, p *palette.Palette, hexOnly bool) error {
	if hexOnly || !logging.IsTerminal(w) {
		return palette.WriteHex(w, p)
	}

	if _, err := fmt.Fprintf(w, "%d colours\n", p.Len()); err != nil {
		return err
	}
	return palette.WriteSwatches(w, p, 16)
}
