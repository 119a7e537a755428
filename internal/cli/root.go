// Package cli provides the command-line interface for gifer.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/gifer/internal/config"
	"github.com/jmylchreest/gifer/internal/encode"
	"github.com/jmylchreest/gifer/internal/logging"
	"github.com/jmylchreest/gifer/internal/process"
	"github.com/jmylchreest/gifer/internal/version"
)

// deps are the collaborators a command tree is built with. Tests swap the
// runner for a mock.
type deps struct {
	newConverter func(cfg config.Config, logger hclog.Logger) *encode.Converter
	lookupEnv    func(string) (string, bool)
}

func defaultDeps() deps {
	return deps{
		newConverter: encode.NewConverter,
		lookupEnv:    os.LookupEnv,
	}
}

// NewRootCmd creates the gifer command tree backed by real ffmpeg processes.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultDeps())
}

// NewRootCmdWithRunner creates the command tree with a custom process runner
// and no encoder lookup (used for tests).
func NewRootCmdWithRunner(runner process.Runner) *cobra.Command {
	d := defaultDeps()
	d.newConverter = func(cfg config.Config, logger hclog.Logger) *encode.Converter {
		return encode.NewConverterWithRunner(cfg, runner, logger)
	}
	return newRootCmd(d)
}

func newRootCmd(d deps) *cobra.Command {
	var inputPath string

	rootCmd := &cobra.Command{
		Use:   "gifer [flags] -i <INFILE> <OUTFILE>",
		Short: "Utility for creating web-friendly gifs",
		Long: `gifer turns a video into a small, good looking animated GIF.

It runs ffmpeg twice: the first pass builds a palette of the best 256 colours
for the clip, the second encodes the GIF with that palette and dithering.

Examples:
  # Convert a clip with the defaults (15 fps, 480px wide)
  gifer -i clip.mp4 clip.gif

  # Smaller and choppier, no dithering
  gifer -i clip.mp4 --fps 10 --width 320 --dither none clip.gif

  # Keep the intermediate palette for inspection
  gifer -i clip.mp4 --keep-palette -v clip.gif

An OUTFILE named like a subcommand (palette, version, help) is written as a
file as long as -i comes first. Otherwise use ./palette or put it after --.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && cmd.Flags().NFlag() == 0 {
				_ = cmd.Help()
				return &ArgumentError{Msg: "no arguments given"}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseRunOptions(inputPath, cmd.Flags().Changed("input"), args)
			if err != nil {
				cmd.SetOut(cmd.ErrOrStderr())
				_ = cmd.Usage()
				return err
			}
			return runConvert(cmd, d, opts)
		},
	}

	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "sets the input file to use (required)")

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.SetOut(cmd.ErrOrStderr())
		_ = cmd.Usage()
		return &ArgumentError{Msg: err.Error()}
	})

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPaletteCmd(d))

	return rootCmd
}

// parseRunOptions builds RunOptions from the --input flag and positional args.
func parseRunOptions(inputPath string, inputSet bool, args []string) (encode.RunOptions, error) {
	switch {
	case !inputSet || inputPath == "":
		return encode.RunOptions{}, &ArgumentError{Msg: `required flag "input" not set`}
	case len(args) == 0:
		return encode.RunOptions{}, &ArgumentError{Msg: "missing required argument OUTFILE"}
	case len(args) > 1:
		return encode.RunOptions{}, &ArgumentError{Msg: fmt.Sprintf("expected one OUTFILE, got %d arguments", len(args))}
	}
	return encode.RunOptions{Input: inputPath, Output: args[0]}, nil
}

func runConvert(cmd *cobra.Command, d deps, opts encode.RunOptions) error {
	cfg, err := config.Resolve(cmd.Flags(), d.lookupEnv)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	converter := d.newConverter(cfg, logger)
	logger.Debug("encoder settings", "settings", converter.String())

	if err := converter.Convert(cmd.Context(), opts); err != nil {
		return err
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", opts.Output))
	}
	return nil
}

// newLogger builds the logger for a command from --verbose/--quiet and the config.
func newLogger(cmd *cobra.Command, cfg config.Config) hclog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	return logging.New(logging.Options{
		Output:  cmd.ErrOrStderr(),
		Verbose: verbose,
		Quiet:   quiet,
		Level:   cfg.LogLevel,
	})
}

// Run executes root with args and returns the process exit code. Errors are
// printed to root's error stream.
func Run(ctx context.Context, root *cobra.Command, args []string) int {
	root.SetArgs(protectOutputName(root, args))
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}

// Execute runs gifer with the process arguments. This is called by main.main().
func Execute(ctx context.Context) int {
	return Run(ctx, NewRootCmd(), os.Args[1:])
}

// newVersionCmd represents the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = io.WriteString(cmd.OutOrStdout(), version.String()+"\n")
		},
	}
}

// protectOutputName stops an OUTFILE that shares its name with a subcommand
// from being dispatched to that subcommand. Once --input has been given the
// command line is a conversion, so a later "palette" or "version" is the
// output and is rewritten to ./palette or ./version. Subcommands named
// before any --input are left alone.
func protectOutputName(root *cobra.Command, args []string) []string {
	out := slices.Clone(args)
	seenInput := false

	for i := 0; i < len(out); i++ {
		arg := out[i]
		switch {
		case arg == "--":
			return out
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			f, inlineValue := lookupArgFlag(root, arg)
			if f == nil {
				continue
			}
			if f.Name == "input" {
				seenInput = true
			}
			if !inlineValue && f.NoOptDefVal == "" {
				i++ // skip the flag's value
			}
		case seenInput && isSubcommandName(root, arg):
			out[i] = "." + string(filepath.Separator) + arg
		}
	}
	return out
}

// lookupArgFlag finds the root flag named by arg ("--name", "--name=v",
// "-n" or "-nvalue") and reports whether its value is part of arg.
func lookupArgFlag(root *cobra.Command, arg string) (*pflag.Flag, bool) {
	lookup := func(name string, short bool) *pflag.Flag {
		for _, fs := range []*pflag.FlagSet{root.Flags(), root.PersistentFlags()} {
			var f *pflag.Flag
			if short {
				f = fs.ShorthandLookup(name)
			} else {
				f = fs.Lookup(name)
			}
			if f != nil {
				return f
			}
		}
		return nil
	}

	if name, ok := strings.CutPrefix(arg, "--"); ok {
		name, _, inline := strings.Cut(name, "=")
		return lookup(name, false), inline
	}
	return lookup(arg[1:2], true), len(arg) > 2
}

func isSubcommandName(root *cobra.Command, name string) bool {
	// help and completion are added by cobra at execution time.
	if name == "help" || name == "completion" {
		return true
	}
	for _, cmd := range root.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return false
}
