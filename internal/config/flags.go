package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flag names shared between registration and ApplyFlags.
const (
	FlagConfig         = "config"
	FlagFFmpeg         = "ffmpeg"
	FlagFPS            = "fps"
	FlagWidth          = "width"
	FlagStatsMode      = "stats-mode"
	FlagDither         = "dither"
	FlagBayerScale     = "bayer-scale"
	FlagAlphaThreshold = "alpha-threshold"
	FlagScratchDir     = "scratch-dir"
	FlagKeepPalette    = "keep-palette"
	FlagVerifyPalette  = "verify-palette"
	FlagTimeout        = "timeout"
)

// RegisterFlags adds the encoder and workspace flags to fs. Defaults shown in
// help are the built-in ones; a config file may change them.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.String(FlagConfig, "", "config file (default: $XDG_CONFIG_HOME/gifer/config.yaml)")
	fs.String(FlagFFmpeg, d.FFmpeg, "encoder binary")
	fs.Int(FlagFPS, d.FPS, "output frame rate (1-120)")
	fs.Int(FlagWidth, d.Width, "output width in pixels, -1 keeps the source width")
	fs.String(FlagStatsMode, d.StatsMode, "palette statistics mode ("+strings.Join(StatsModes, ", ")+")")
	fs.String(FlagDither, d.Dither, "dithering algorithm ("+strings.Join(DitherModes, ", ")+")")
	fs.Int(FlagBayerScale, d.BayerScale, "bayer dither scale (0-5)")
	fs.Int(FlagAlphaThreshold, d.AlphaThreshold, "transparency threshold (0-255)")
	fs.String(FlagScratchDir, "", "root directory for temporary palettes (default: $TMPDIR/gifer)")
	fs.Bool(FlagKeepPalette, d.KeepPalette, "keep the generated palette after the run")
	fs.String(FlagVerifyPalette, d.VerifyPalette, "palette check before encoding ("+strings.Join(PaletteChecks, ", ")+")")
	// A bare --verify-palette keeps working as it did when the flag was a bool.
	fs.Lookup(FlagVerifyPalette).NoOptDefVal = PaletteCheckExists
	fs.Duration(FlagTimeout, d.Timeout, "limit for each encoder run (0 = no limit)")
}

// ApplyFlags copies every flag the user explicitly set onto c. Flags that
// were not set leave the file/env value alone.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagFFmpeg:
			c.FFmpeg, err = fs.GetString(f.Name)
		case FlagFPS:
			c.FPS, err = fs.GetInt(f.Name)
		case FlagWidth:
			c.Width, err = fs.GetInt(f.Name)
		case FlagStatsMode:
			c.StatsMode, err = fs.GetString(f.Name)
		case FlagDither:
			c.Dither, err = fs.GetString(f.Name)
		case FlagBayerScale:
			c.BayerScale, err = fs.GetInt(f.Name)
		case FlagAlphaThreshold:
			c.AlphaThreshold, err = fs.GetInt(f.Name)
		case FlagScratchDir:
			c.ScratchDir, err = fs.GetString(f.Name)
		case FlagKeepPalette:
			c.KeepPalette, err = fs.GetBool(f.Name)
		case FlagVerifyPalette:
			c.VerifyPalette, err = fs.GetString(f.Name)
		case FlagTimeout:
			c.Timeout, err = fs.GetDuration(f.Name)
		}
		if err != nil {
			err = fmt.Errorf("invalid --%s: %w", f.Name, err)
		}
	})
	return err
}

// Resolve builds the effective configuration for a parsed command: defaults,
// then the config file (--config, or the default path if it exists), then
// the environment, then explicitly set flags.
func Resolve(fs *pflag.FlagSet, lookupEnv func(string) (string, bool)) (Config, error) {
	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --%s: %w", FlagConfig, err)
	}

	required := path != ""
	if !required {
		path, err = DefaultPath()
		if err != nil {
			// No config dir (e.g. $HOME unset); carry on with defaults.
			path = ""
		}
	}

	cfg := Default()
	if path != "" {
		cfg, err = Load(path, required)
		if err != nil {
			return Config{}, err
		}
	}

	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
