// Package config handles gifer settings: built-in defaults, an optional YAML
// file, GIFER_* environment variables and command-line flags, applied in that
// order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Valid values for the palettegen stats_mode option.
var StatsModes = []string{"full", "diff", "single"}

// Valid values for the paletteuse dither option.
var DitherModes = []string{"bayer", "heckbert", "floyd_steinberg", "sierra2", "sierra2_4a", "none"}

// Palette checks run between the two encoder passes.
const (
	// PaletteCheckOff skips the check.
	PaletteCheckOff = "off"
	// PaletteCheckExists requires a non-empty palette file.
	PaletteCheckExists = "exists"
	// PaletteCheckStrict also decodes the palette and counts its colours.
	PaletteCheckStrict = "strict"
)

// PaletteChecks lists the valid VerifyPalette values.
var PaletteChecks = []string{PaletteCheckOff, PaletteCheckExists, PaletteCheckStrict}

// Config holds everything that shapes the two encoder invocations and the
// scratch workspace.
type Config struct {
	// FFmpeg is the encoder binary, resolved on PATH if not absolute.
	FFmpeg string `yaml:"ffmpeg"`

	// FPS is the output frame rate.
	FPS int `yaml:"fps"`

	// Width is the output width in pixels. -1 keeps the source width.
	// Height always follows the aspect ratio.
	Width int `yaml:"width"`

	// StatsMode selects how palettegen gathers colour statistics.
	StatsMode string `yaml:"stats_mode"`

	// Dither selects the paletteuse dithering algorithm.
	Dither string `yaml:"dither"`

	// BayerScale is only used with the bayer dither (0-5).
	BayerScale int `yaml:"bayer_scale"`

	// AlphaThreshold is the paletteuse transparency cut-off (0-255).
	AlphaThreshold int `yaml:"alpha_threshold"`

	// ScratchDir is the root under which per-run workspaces are created.
	// Empty means <os temp dir>/gifer.
	ScratchDir string `yaml:"scratch_dir,omitempty"`

	// KeepPalette leaves the workspace in place after the run.
	KeepPalette bool `yaml:"keep_palette"`

	// VerifyPalette selects the palette check between the two encoder runs:
	// off, exists or strict. true and false are accepted as exists and off.
	VerifyPalette string `yaml:"verify_palette"`

	// Timeout bounds each encoder invocation. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel overrides --verbose/--quiet when set.
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		FFmpeg:         "ffmpeg",
		FPS:            15,
		Width:          480,
		StatsMode:      "diff",
		Dither:         "bayer",
		BayerScale:     5,
		AlphaThreshold: 128,
		VerifyPalette:  PaletteCheckExists,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/gifer/config.yaml (or the platform equivalent).
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "gifer", "config.yaml"), nil
}

// Load reads the YAML file at path on top of the defaults. A missing file is
// only an error when required is true.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 - user-specified config path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from GIFER_* environment variables.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GIFER_FFMPEG"); ok && v != "" {
		c.FFmpeg = v
	}
	if v, ok := lookup("GIFER_SCRATCH_DIR"); ok && v != "" {
		c.ScratchDir = v
	}
	if v, ok := lookup("GIFER_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("GIFER_FPS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GIFER_FPS %q: %w", v, err)
		}
		c.FPS = n
	}
	if v, ok := lookup("GIFER_WIDTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GIFER_WIDTH %q: %w", v, err)
		}
		c.Width = n
	}
	return nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.FFmpeg) == "" {
		return fmt.Errorf("ffmpeg binary cannot be empty")
	}
	if c.FPS < 1 || c.FPS > 120 {
		return fmt.Errorf("fps must be between 1 and 120, got %d", c.FPS)
	}
	if c.Width != -1 && (c.Width < 1 || c.Width > 8192) {
		return fmt.Errorf("width must be -1 or between 1 and 8192, got %d", c.Width)
	}
	if !slices.Contains(StatsModes, c.StatsMode) {
		return fmt.Errorf("invalid stats mode: %s (valid: %s)", c.StatsMode, strings.Join(StatsModes, ", "))
	}
	if !slices.Contains(DitherModes, c.Dither) {
		return fmt.Errorf("invalid dither: %s (valid: %s)", c.Dither, strings.Join(DitherModes, ", "))
	}
	if c.BayerScale < 0 || c.BayerScale > 5 {
		return fmt.Errorf("bayer scale must be between 0 and 5, got %d", c.BayerScale)
	}
	if c.AlphaThreshold < 0 || c.AlphaThreshold > 255 {
		return fmt.Errorf("alpha threshold must be between 0 and 255, got %d", c.AlphaThreshold)
	}
	if !slices.Contains(PaletteChecks, c.PaletteCheck()) {
		return fmt.Errorf("invalid palette check: %s (valid: %s)", c.VerifyPalette, strings.Join(PaletteChecks, ", "))
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// PaletteCheck returns VerifyPalette with the boolean spellings mapped onto
// check modes. An empty value means the default check.
func (c Config) PaletteCheck() string {
	v := strings.ToLower(strings.TrimSpace(c.VerifyPalette))
	switch v {
	case "":
		return PaletteCheckExists
	case "true", "yes", "on", "1":
		return PaletteCheckExists
	case "false", "no", "0":
		return PaletteCheckOff
	}
	return v
}

// ScratchRoot returns the directory under which workspaces are created.
func (c Config) ScratchRoot() string {
	if c.ScratchDir != "" {
		return c.ScratchDir
	}
	return filepath.Join(os.TempDir(), "gifer")
}
