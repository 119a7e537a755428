package encode

import (
	"context"

	"github.com/jmylchreest/gifer/internal/palette"
	"github.com/jmylchreest/gifer/internal/process"
)

// Stage names.
const (
	StagePalette       = "palette"
	StageVerifyPalette = "verify-palette"
	StageEncode        = "encode"
)

// Stage is one step of the pipeline. Stages run in order and share the Job.
type Stage interface {
	Name() string
	Run(ctx context.Context, job *Job) error
}

// commandStage runs a single encoder invocation.
type commandStage struct {
	name   string
	runner process.Runner
	build  func(job *Job) process.Command
}

func (s *commandStage) Name() string { return s.name }

func (s *commandStage) Run(ctx context.Context, job *Job) error {
	cmd := s.build(job)
	job.Logger().Debug("running encoder", "stage", s.name, "command", cmd.String())
	return s.runner.Run(ctx, cmd)
}

// PaletteStage builds the palette image from the input video:
//
//	ffmpeg -y -i <input> -vf <palette-filter> <palette>
func PaletteStage(runner process.Runner) Stage {
	return &commandStage{
		name:   StagePalette,
		runner: runner,
		build: func(job *Job) process.Command {
			return process.Command{
				Program: job.FFmpeg,
				Args: []string{
					"-y", // no prompt
					"-i", job.Input,
					"-vf", job.Settings.PaletteFilter(),
					job.PalettePath,
				},
			}
		},
	}
}

// EncodeStage writes the GIF using the input video and the palette:
//
//	ffmpeg -y -i <input> -i <palette> -lavfi <encode-filter> -gifflags -offsetting <output>
func EncodeStage(runner process.Runner) Stage {
	return &commandStage{
		name:   StageEncode,
		runner: runner,
		build: func(job *Job) process.Command {
			return process.Command{
				Program: job.FFmpeg,
				Args: []string{
					"-y",
					"-i", job.Input,
					"-i", job.PalettePath,
					"-lavfi", job.Settings.EncodeFilter(),
					"-gifflags", "-offsetting",
					job.Output,
				},
			}
		},
	}
}

// verifyStage checks the palette file between the two passes.
type verifyStage struct {
	strict bool
}

// VerifyPaletteStage fails the run if the palette pass exited cleanly but did
// not leave a palette behind. With strict set the palette must also decode
// as an image of at most 256 colours; otherwise any non-empty file passes.
func VerifyPaletteStage(strict bool) Stage {
	return verifyStage{strict: strict}
}

func (verifyStage) Name() string { return StageVerifyPalette }

func (s verifyStage) Run(_ context.Context, job *Job) error {
	if !s.strict {
		if err := palette.CheckExists(job.PalettePath); err != nil {
			return err
		}
		job.Logger().Debug("palette present", "path", job.PalettePath)
		return nil
	}

	p, err := palette.Verify(job.PalettePath)
	if err != nil {
		return err
	}
	job.Palette = p
	job.Logger().Debug("palette verified", "colours", p.Len(), "format", p.Format)
	return nil
}
