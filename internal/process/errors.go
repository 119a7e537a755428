package process

import (
	"fmt"
	"strings"
)

// SubprocessFailedError is returned when a process exits with a non-zero status.
type SubprocessFailedError struct {
	Program string
	Code    int
	// Stderr is everything the process wrote to its standard error stream.
	Stderr string
}

func (e *SubprocessFailedError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Program, e.Code)
	if stderr := strings.TrimRight(e.Stderr, "\r\n"); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

// StatusUnavailableError is returned when a process ended without an exit
// code, which on unix means it was terminated by a signal.
type StatusUnavailableError struct {
	Program string
	// State is the process state as reported by the OS, e.g. "signal: killed".
	State  string
	Stderr string
}

func (e *StatusUnavailableError) Error() string {
	msg := fmt.Sprintf("unable to interpret exit status of %s (%s)", e.Program, e.State)
	if stderr := strings.TrimRight(e.Stderr, "\r\n"); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}
