package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jmylchreest/gifer/internal/logging"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	causeColor   = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
)

// ArgumentError is returned when the command line is incomplete or malformed.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string {
	return e.Msg
}

// errorChain splits a wrapped error into one message per cause, outermost first.
func errorChain(err error) []string {
	var chain []string
	for err != nil {
		msg := err.Error()
		next := errors.Unwrap(err)
		if next == nil {
			chain = append(chain, msg)
			break
		}

		trimmed, ok := strings.CutSuffix(msg, ": "+next.Error())
		if !ok {
			// The wrapper does not print its cause; keep it whole and stop here.
			chain = append(chain, msg)
			break
		}
		chain = append(chain, trimmed)
		err = next
	}
	return chain
}

// printError renders err as
//
//	Error: <outermost message>
//
//	Caused by:
//	    <cause>
//	    ...
func printError(w io.Writer, err error) {
	chain := errorChain(err)
	if len(chain) == 0 {
		return
	}

	paint(w, errorColor, "Error: ")
	fmt.Fprintln(w, chain[0])

	if len(chain) == 1 {
		return
	}

	fmt.Fprintln(w)
	paint(w, causeColor, "Caused by:")
	fmt.Fprintln(w)
	for _, cause := range chain[1:] {
		for _, line := range strings.Split(strings.TrimRight(cause, "\n"), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

func printSuccess(w io.Writer, msg string) {
	paint(w, successColor, msg)
	fmt.Fprintln(w)
}

// paint writes s in colour only when w is a terminal.
func paint(w io.Writer, c *color.Color, s string) {
	if logging.IsTerminal(w) {
		c.Fprint(w, s)
		return
	}
	fmt.Fprint(w, s)
}
