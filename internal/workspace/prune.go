package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-ps"

	"github.com/jmylchreest/gifer/internal/security"
)

// ProcessFinder reports whether a process with the given pid is running.
type ProcessFinder func(pid int) (bool, error)

// findProcess uses go-ps for cross-platform process lookup.
func findProcess(pid int) (bool, error) {
	p, err := ps.FindProcess(pid)
	if err != nil {
		return false, fmt.Errorf("failed to look up process %d: %w", pid, err)
	}
	return p != nil, nil
}

// PruneStale removes workspaces left behind by runs that are no longer alive,
// e.g. after a crash or a kill -9. Workspaces kept with --keep-palette are
// removed too once their process has exited. Returns the removed paths.
func PruneStale(root string, logger hclog.Logger) ([]string, error) {
	return pruneStale(root, logger, findProcess)
}

func pruneStale(root string, logger hclog.Logger, alive ProcessFinder) ([]string, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read scratch root: %w", err)
	}

	self := os.Getpid()
	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pid, ok := ownerPID(entry.Name())
		if !ok || pid == self {
			continue
		}

		running, err := alive(pid)
		if err != nil {
			logger.Warn("skipping scratch directory", "name", entry.Name(), "error", err)
			continue
		}
		if running {
			continue
		}

		path := filepath.Join(root, entry.Name())
		if err := security.ValidateWithin(path, root); err != nil {
			logger.Warn("skipping scratch directory", "path", path, "error", err)
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("failed to remove stale scratch directory", "path", path, "error", err)
			continue
		}
		logger.Debug("removed stale scratch directory", "path", path, "pid", pid)
		removed = append(removed, path)
	}

	return removed, nil
}

// ownerPID extracts the pid from a gifer-<pid>-<random> directory name.
func ownerPID(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, dirPrefix)
	if !ok {
		return 0, false
	}
	pidStr, _, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, false
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
