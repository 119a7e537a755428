package encode

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jmylchreest/gifer/internal/config"
)

// writePalettePNG writes a small but valid palette image to path.
func writePalettePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < 256; i++ {
		img.Set(i%16, i/16, color.RGBA{R: uint8(i), G: uint8(i / 2), B: 0x40, A: 0xff})
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create palette: %v", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		t.Fatalf("Failed to encode palette: %v", err)
	}
}

// writeInput creates a dummy source video.
func writeInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("dummy video data"), 0o600); err != nil {
		t.Fatalf("Failed to create input: %v", err)
	}
	return path
}

// testConfig returns the default config with a private scratch root.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ScratchDir = filepath.Join(t.TempDir(), "scratch")
	return cfg
}

// copyTestScript copies a testdata script into a temp dir and makes it executable.
func copyTestScript(t *testing.T, scriptName string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script stubs require a unix shell")
	}

	content, err := os.ReadFile(filepath.Join("testdata", "scripts", scriptName))
	if err != nil {
		t.Fatalf("Failed to read testdata script %s: %v", scriptName, err)
	}

	path := filepath.Join(t.TempDir(), scriptName)
	if err := os.WriteFile(path, content, 0o755); err != nil {
		t.Fatalf("Failed to write test script: %v", err)
	}
	return path
}

// scratchEntries lists what is left in the scratch root.
func scratchEntries(t *testing.T, cfg config.Config) []string {
	t.Helper()
	entries, err := os.ReadDir(cfg.ScratchRoot())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("Failed to read scratch root: %v", err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}
