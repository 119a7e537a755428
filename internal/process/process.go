// Package process runs external programs and translates their exit status
// into typed errors.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Command is a fully constructed invocation: program name plus ordered arguments.
type Command struct {
	Program string
	Args    []string
}

// String renders the command the way it would be typed in a shell.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Program))
	for _, arg := range c.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n'\"[];") {
		return strconv.Quote(s)
	}
	return s
}

// Runner defines an interface for running external processes.
// This abstraction allows the pipeline to be tested without spawning anything.
type Runner interface {
	// Run executes the command and blocks until it exits.
	// A nil error means the process exited with status zero.
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct{}

// NewExecRunner creates a new runner backed by real processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run spawns the command with an empty stdin, discards stdout and captures
// stderr so it can be reported if the process fails.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)

	// nil Stdin and Stdout are connected to the null device by os/exec.
	cmd.Stdin = nil
	cmd.Stdout = nil

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s was interrupted: %w", c.Program, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			return &StatusUnavailableError{
				Program: c.Program,
				State:   exitErr.String(),
				Stderr:  stderr.String(),
			}
		}
		return &SubprocessFailedError{
			Program: c.Program,
			Code:    code,
			Stderr:  stderr.String(),
		}
	}

	return fmt.Errorf("failed to start %s: %w", c.Program, err)
}

// LookPath resolves program on the executable search path.
func LookPath(program string) (string, error) {
	if program == "" {
		return "", fmt.Errorf("encoder program cannot be empty")
	}
	path, err := exec.LookPath(program)
	if err != nil {
		return "", fmt.Errorf("encoder %q not found (install ffmpeg or set --ffmpeg): %w", program, err)
	}
	return path, nil
}
