package process

import (
	"context"
)

// MockRunner is a mock implementation of Runner for testing.
type MockRunner struct {
	// RunFunc allows tests to provide custom behavior. It receives the
	// zero-based index of the call.
	RunFunc func(ctx context.Context, call int, cmd Command) error

	// Calls records every command passed to Run, in order.
	Calls []Command
}

// Run records the command and executes the mock behavior.
func (m *MockRunner) Run(ctx context.Context, cmd Command) error {
	call := len(m.Calls)
	m.Calls = append(m.Calls, cmd)

	if err := ctx.Err(); err != nil {
		return err
	}

	if m.RunFunc != nil {
		return m.RunFunc(ctx, call, cmd)
	}
	return nil
}

// CallCount returns how many times Run was called.
func (m *MockRunner) CallCount() int {
	return len(m.Calls)
}

// NewMockRunner creates a mock whose processes always succeed.
func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

// NewFailingMockRunner creates a mock whose processes all exit with code and
// write stderr.
func NewFailingMockRunner(code int, stderr string) *MockRunner {
	return &MockRunner{
		RunFunc: func(_ context.Context, _ int, cmd Command) error {
			return &SubprocessFailedError{Program: cmd.Program, Code: code, Stderr: stderr}
		},
	}
}
