// Package logging builds the hclog logger shared by all gifer components.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"
)

// Options controls how the logger is built.
type Options struct {
	// Name is the root logger name.
	Name string
	// Output defaults to os.Stderr.
	Output io.Writer
	// Verbose enables debug output.
	Verbose bool
	// Quiet suppresses everything below error. Verbose wins if both are set.
	Quiet bool
	// Level overrides Verbose/Quiet when non-empty (trace, debug, info, warn, error, off).
	Level string
}

// New creates a logger according to opts.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	name := opts.Name
	if name == "" {
		name = "gifer"
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		Output:          out,
		Level:           resolveLevel(opts),
		Color:           colorOption(out),
		DisableTime:     true,
		IncludeLocation: false,
	})
}

// Discard returns a logger that drops everything. Used by tests and
// library callers that do not care about output.
func Discard() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "gifer",
		Output: io.Discard,
		Level:  hclog.Off,
	})
}

func resolveLevel(opts Options) hclog.Level {
	if opts.Level != "" {
		if level := hclog.LevelFromString(strings.ToLower(opts.Level)); level != hclog.NoLevel {
			return level
		}
	}
	switch {
	case opts.Verbose:
		return hclog.Debug
	case opts.Quiet:
		return hclog.Error
	default:
		return hclog.Info
	}
}

// colorOption enables colour only when writing to a terminal.
func colorOption(out io.Writer) hclog.ColorOption {
	if IsTerminal(out) {
		return hclog.AutoColor
	}
	return hclog.ColorOff
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
