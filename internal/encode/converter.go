package encode

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/gifer/internal/config"
	"github.com/jmylchreest/gifer/internal/input"
	"github.com/jmylchreest/gifer/internal/palette"
	"github.com/jmylchreest/gifer/internal/process"
	"github.com/jmylchreest/gifer/internal/workspace"
)

// Converter wires input validation, the scratch workspace and the pipeline
// together. It is the main flow behind the gifer command.
type Converter struct {
	cfg    config.Config
	runner process.Runner
	logger hclog.Logger

	// lookPath resolves the encoder before any work is done. Nil skips the check.
	lookPath func(string) (string, error)
}

// NewConverter creates a converter backed by real ffmpeg processes.
func NewConverter(cfg config.Config, logger hclog.Logger) *Converter {
	return NewConverterWithRunner(cfg, process.NewExecRunner(), logger).WithLookPath(process.LookPath)
}

// NewConverterWithRunner allows injecting a custom runner (used for tests).
func NewConverterWithRunner(cfg config.Config, runner process.Runner, logger hclog.Logger) *Converter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Converter{cfg: cfg, runner: runner, logger: logger}
}

// WithLookPath sets the encoder pre-flight check.
func (c *Converter) WithLookPath(lookPath func(string) (string, error)) *Converter {
	c.lookPath = lookPath
	return c
}

// Convert writes opts.Output as a GIF made from opts.Input.
func (c *Converter) Convert(ctx context.Context, opts RunOptions) error {
	if err := input.Validate(opts.Input); err != nil {
		return err
	}
	if err := input.ValidateOutput(opts.Output); err != nil {
		return err
	}

	ws, err := c.prepare()
	if err != nil {
		return err
	}
	defer c.cleanup(ws)

	c.logger.Info("converting", "input", opts.Input, "output", opts.Output)

	job := c.newJob(opts, ws.PalettePath())
	pipeline := NewGIFPipeline(c.runner, c.logger.Named("pipeline"), c.cfg.PaletteCheck())
	if err := pipeline.Run(ctx, job); err != nil {
		return err
	}

	c.logger.Info("wrote gif", "output", opts.Output)
	return nil
}

// ExtractPalette runs only the palette pass and returns the decoded palette.
func (c *Converter) ExtractPalette(ctx context.Context, inputPath string) (*palette.Palette, error) {
	if err := input.Validate(inputPath); err != nil {
		return nil, err
	}

	ws, err := c.prepare()
	if err != nil {
		return nil, err
	}
	defer c.cleanup(ws)

	job := c.newJob(RunOptions{Input: inputPath}, ws.PalettePath())
	if err := NewPalettePipeline(c.runner, c.logger.Named("pipeline")).Run(ctx, job); err != nil {
		return nil, err
	}
	return job.Palette, nil
}

// prepare checks the encoder is available and creates the workspace.
func (c *Converter) prepare() (*workspace.Workspace, error) {
	if c.lookPath != nil {
		path, err := c.lookPath(c.cfg.FFmpeg)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("using encoder", "path", path)
	}

	root := c.cfg.ScratchRoot()
	wsLogger := c.logger.Named("workspace")
	if removed, err := workspace.PruneStale(root, wsLogger); err != nil {
		wsLogger.Warn("failed to prune stale scratch directories", "error", err)
	} else if len(removed) > 0 {
		wsLogger.Debug("pruned stale scratch directories", "count", len(removed))
	}

	ws, err := workspace.New(root, wsLogger)
	if err != nil {
		return nil, err
	}
	if c.cfg.KeepPalette {
		ws.Keep()
	}
	return ws, nil
}

func (c *Converter) cleanup(ws *workspace.Workspace) {
	if err := ws.Close(); err != nil {
		c.logger.Warn("failed to clean up", "error", err)
	}
}

func (c *Converter) newJob(opts RunOptions, palettePath string) *Job {
	return &Job{
		RunOptions:  opts,
		FFmpeg:      c.cfg.FFmpeg,
		PalettePath: palettePath,
		Settings:    SettingsFromConfig(c.cfg),
		Timeout:     c.cfg.Timeout,
	}
}

// String describes the converter's encoder settings for verbose output.
func (c *Converter) String() string {
	s := SettingsFromConfig(c.cfg)
	return fmt.Sprintf("%s fps=%d width=%d stats=%s dither=%s", c.cfg.FFmpeg, s.FPS, s.Width, s.StatsMode, s.Dither)
}
