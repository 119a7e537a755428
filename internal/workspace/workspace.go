// Package workspace manages the per-run scratch directory that holds the
// intermediate palette image.
//
// Every run gets its own directory named gifer-<pid>-<random>, so concurrent
// runs never share a palette file.
package workspace

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/gifer/internal/security"
)

// PaletteFile is the name of the palette image inside a workspace.
const PaletteFile = "palette.png"

const dirPrefix = "gifer-"

// Error is returned when the scratch directory cannot be prepared.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to create temporary directory for palette output %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Workspace is a scratch directory owned by the current process.
type Workspace struct {
	root   string
	dir    string
	keep   bool
	closed bool
	logger hclog.Logger
}

// New creates root (and any missing parents) and a unique directory inside it.
func New(root string, logger hclog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	home, _ := os.UserHomeDir()
	if err := security.ValidateScratchRoot(root, home); err != nil {
		return nil, &Error{Path: root, Err: err}
	}

	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, &Error{Path: root, Err: err}
	}

	suffix, err := randomSuffix()
	if err != nil {
		return nil, &Error{Path: root, Err: err}
	}

	dir := filepath.Join(root, fmt.Sprintf("%s%d-%s", dirPrefix, os.Getpid(), suffix))
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, &Error{Path: dir, Err: err}
	}

	logger.Debug("created scratch directory", "path", dir)
	return &Workspace{root: root, dir: dir, logger: logger}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// PalettePath returns where the palette image is written.
func (w *Workspace) PalettePath() string {
	return filepath.Join(w.dir, PaletteFile)
}

// Keep makes Close leave the directory on disk.
func (w *Workspace) Keep() {
	w.keep = true
}

// Close removes the workspace unless Keep was called. Safe to call more than once.
func (w *Workspace) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.keep {
		w.logger.Info("keeping palette", "path", w.PalettePath())
		return nil
	}

	if err := security.ValidateWithin(w.dir, w.root); err != nil {
		return fmt.Errorf("refusing to remove scratch directory: %w", err)
	}
	if err := os.RemoveAll(w.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove scratch directory %s: %w", w.dir, err)
	}
	w.logger.Debug("removed scratch directory", "path", w.dir)
	return nil
}

func randomSuffix() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate random name: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}
