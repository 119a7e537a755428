// Package input validates the source video path before any work is done.
package input

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Reason describes why an input path was rejected.
type Reason string

const (
	// ReasonNotFound means nothing exists at the path.
	ReasonNotFound Reason = "file not found"
	// ReasonDirectory means the path is a directory.
	ReasonDirectory Reason = "path is a directory, not a file"
	// ReasonNotRegular means the path is a device, socket, pipe or similar.
	ReasonNotRegular Reason = "value is not a regular file"
	// ReasonStat means the path could not be inspected.
	ReasonStat Reason = "failed to stat file"
	// ReasonEmpty means no path was given.
	ReasonEmpty Reason = "path cannot be empty"
)

// InvalidInputError is returned when the input path is unusable.
type InvalidInputError struct {
	Path   string
	Reason Reason
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to read input %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to read input %s: %s", e.Path, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// Validate checks that path exists and is a regular file.
// Symlinks are followed.
func Validate(path string) error {
	if path == "" {
		return &InvalidInputError{Path: path, Reason: ReasonEmpty}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &InvalidInputError{Path: path, Reason: ReasonNotFound}
		}
		return &InvalidInputError{Path: path, Reason: ReasonStat, Err: err}
	}

	if info.IsDir() {
		return &InvalidInputError{Path: path, Reason: ReasonDirectory}
	}
	if !info.Mode().IsRegular() {
		return &InvalidInputError{Path: path, Reason: ReasonNotRegular}
	}

	return nil
}

// ValidateOutput checks that the directory the output will be written into
// exists. The output file itself may or may not exist; it is overwritten.
func ValidateOutput(path string) error {
	if path == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("output directory not found: %s", dir)
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output parent is not a directory: %s", dir)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output path is a directory: %s", path)
	}

	return nil
}
