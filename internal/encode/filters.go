package encode

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/gifer/internal/config"
)

// Settings shapes the ffmpeg filter graphs.
type Settings struct {
	FPS            int
	Width          int
	StatsMode      string
	Dither         string
	BayerScale     int
	AlphaThreshold int
}

// SettingsFromConfig extracts the filter settings from a resolved config.
func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		FPS:            cfg.FPS,
		Width:          cfg.Width,
		StatsMode:      cfg.StatsMode,
		Dither:         cfg.Dither,
		BayerScale:     cfg.BayerScale,
		AlphaThreshold: cfg.AlphaThreshold,
	}
}

// resample is the frame rate and scale chain shared by both passes so the
// palette is built from exactly the frames that get encoded.
func (s Settings) resample() string {
	return fmt.Sprintf("fps=%d,scale=%d:-1:flags=lanczos", s.FPS, s.Width)
}

// PaletteFilter is the -vf graph for the palette pass.
func (s Settings) PaletteFilter() string {
	return fmt.Sprintf("%s,palettegen=stats_mode=%s", s.resample(), s.StatsMode)
}

// EncodeFilter is the -lavfi graph for the encode pass. Input 0 is the video,
// input 1 the palette image.
func (s Settings) EncodeFilter() string {
	opts := []string{"dither=" + s.Dither}
	if s.Dither == "bayer" {
		opts = append(opts, fmt.Sprintf("bayer_scale=%d", s.BayerScale))
	}
	if s.StatsMode == "diff" {
		opts = append(opts, "diff_mode=rectangle")
	}
	opts = append(opts, fmt.Sprintf("alpha_threshold=%d", s.AlphaThreshold))

	return fmt.Sprintf("%s [x]; [x][1:v] paletteuse=%s", s.resample(), strings.Join(opts, ":"))
}
