// Package security guards the filesystem operations gifer performs on paths it
// did not choose itself.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateWithin checks that path resolves to a location strictly inside baseDir.
// The base directory itself is rejected.
func ValidateWithin(path, baseDir string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if baseDir == "" {
		return fmt.Errorf("empty base directory")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	absBase, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("invalid base directory: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("%s is outside %s (attempted path traversal)", path, baseDir)
	}
	return nil
}

// ValidateScratchRoot rejects scratch roots whose contents must never be
// removed wholesale, such as the filesystem root or the home directory.
func ValidateScratchRoot(root, home string) error {
	if root == "" {
		return fmt.Errorf("scratch directory cannot be empty")
	}

	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return fmt.Errorf("invalid scratch directory: %w", err)
	}
	if abs == filepath.Dir(abs) {
		return fmt.Errorf("scratch directory cannot be the filesystem root")
	}
	if home != "" {
		if absHome, err := filepath.Abs(filepath.Clean(home)); err == nil && abs == absHome {
			return fmt.Errorf("scratch directory cannot be the home directory")
		}
	}
	return nil
}

// SafeUint8FromUint32 converts val to uint8, clamping values above 255.
func SafeUint8FromUint32(val uint32) uint8 {
	if val > 255 {
		return 255
	}
	return uint8(val)
}
