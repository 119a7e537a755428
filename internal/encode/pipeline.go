// Package encode turns a video into a GIF by running ffmpeg through an
// ordered list of stages: build a palette, optionally check it, then encode.
package encode

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/gifer/internal/config"
	"github.com/jmylchreest/gifer/internal/palette"
	"github.com/jmylchreest/gifer/internal/process"
)

// RunOptions holds the two user-facing paths of a conversion.
type RunOptions struct {
	// Input is the source video. Must be an existing regular file.
	Input string
	// Output is the GIF to write. Overwritten if it exists.
	Output string
}

// Job is the state shared by the stages of one run.
type Job struct {
	RunOptions

	// FFmpeg is the encoder binary.
	FFmpeg string
	// PalettePath is the intermediate palette image.
	PalettePath string
	// Settings shapes both filter graphs.
	Settings Settings
	// Timeout bounds each stage. Zero means none.
	Timeout time.Duration

	// Palette is filled in by a strict verify stage.
	Palette *palette.Palette

	logger hclog.Logger
}

// Logger returns the logger of the pipeline running the job.
func (j *Job) Logger() hclog.Logger {
	if j.logger == nil {
		return hclog.NewNullLogger()
	}
	return j.logger
}

// Pipeline runs stages in order and stops at the first failure.
type Pipeline struct {
	stages []Stage
	logger hclog.Logger
}

// New creates a pipeline from explicit stages.
func New(logger hclog.Logger, stages ...Stage) *Pipeline {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Pipeline{stages: stages, logger: logger}
}

// NewGIFPipeline is the standard two-pass conversion. check is one of the
// config.PaletteCheck* modes and decides what happens between the passes.
func NewGIFPipeline(runner process.Runner, logger hclog.Logger, check string) *Pipeline {
	stages := []Stage{PaletteStage(runner)}
	switch check {
	case config.PaletteCheckOff:
	case config.PaletteCheckStrict:
		stages = append(stages, VerifyPaletteStage(true))
	default:
		stages = append(stages, VerifyPaletteStage(false))
	}
	stages = append(stages, EncodeStage(runner))
	return New(logger, stages...)
}

// NewPalettePipeline only produces the palette and decodes it.
func NewPalettePipeline(runner process.Runner, logger hclog.Logger) *Pipeline {
	return New(logger, PaletteStage(runner), VerifyPaletteStage(true))
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes every stage against job. A failing stage is wrapped in an
// *EncoderError and no later stage runs.
func (p *Pipeline) Run(ctx context.Context, job *Job) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}
	job.logger = p.logger

	for i, stage := range p.stages {
		logger := p.logger.With("stage", stage.Name(), "step", fmt.Sprintf("%d/%d", i+1, len(p.stages)))
		logger.Debug("starting stage")
		start := time.Now()

		if err := p.runStage(ctx, stage, job); err != nil {
			logger.Debug("stage failed", "elapsed", time.Since(start).Round(time.Millisecond))
			return &EncoderError{Stage: stage.Name(), Err: err}
		}

		logger.Debug("stage finished", "elapsed", time.Since(start).Round(time.Millisecond))
	}

	return nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, job *Job) error {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	return stage.Run(ctx, job)
}
