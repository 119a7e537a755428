// Package cli_test provides tests for the CLI package.
package cli_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/gifer/internal/cli"
	"github.com/jmylchreest/gifer/internal/process"
)

type testEnv struct {
	dir     string
	input   string
	scratch string
	out     bytes.Buffer
	errOut  bytes.Buffer
}

// setupTests isolates config and scratch space and creates a dummy input video.
func setupTests(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{dir: t.TempDir()}
	env.scratch = filepath.Join(env.dir, "scratch")

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(env.dir, "config"))
	t.Setenv("GIFER_SCRATCH_DIR", env.scratch)

	env.input = filepath.Join(env.dir, "clip.mp4")
	if err := os.WriteFile(env.input, []byte("dummy video data"), 0o600); err != nil {
		t.Fatalf("Failed to create dummy input: %v", err)
	}
	return env
}

func (e *testEnv) run(root *cobra.Command, args ...string) int {
	root.SetOut(&e.out)
	root.SetErr(&e.errOut)
	return cli.Run(context.Background(), root, args)
}

// writePalettePNG writes a 16x16 palette image like ffmpeg's palettegen.
func writePalettePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < 256; i++ {
		img.Set(i%16, i/16, color.RGBA{R: uint8(i), G: 0x10, B: uint8(255 - i), A: 0xff})
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

// encoderMock behaves like a working ffmpeg: palette first, then the GIF.
func encoderMock(t *testing.T) *process.MockRunner {
	return &process.MockRunner{
		RunFunc: func(_ context.Context, call int, cmd process.Command) error {
			last := cmd.Args[len(cmd.Args)-1]
			if call == 0 {
				writePalettePNG(t, last)
				return nil
			}
			return os.WriteFile(last, []byte("GIF89a"), 0o600)
		},
	}
}

func TestNoArgumentsPrintsUsage(t *testing.T) {
	env := setupTests(t)
	runner := process.NewMockRunner()

	code := env.run(cli.NewRootCmdWithRunner(runner))

	if code == 0 {
		t.Fatal("Expected non-zero exit code")
	}
	if !strings.Contains(env.out.String(), "Usage:") {
		t.Errorf("Expected usage output, got %q", env.out.String())
	}
	if runner.CallCount() != 0 {
		t.Errorf("Expected no encoder runs, got %d", runner.CallCount())
	}
	if _, err := os.Stat(env.scratch); !os.IsNotExist(err) {
		t.Errorf("Scratch directory must not be created: %v", err)
	}
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    func(env *testEnv) []string
		wantErr string
	}{
		{
			name:    "missing input",
			args:    func(env *testEnv) []string { return []string{filepath.Join(env.dir, "out.gif")} },
			wantErr: `required flag "input" not set`,
		},
		{
			name:    "missing output",
			args:    func(env *testEnv) []string { return []string{"-i", env.input} },
			wantErr: "missing required argument OUTFILE",
		},
		{
			name:    "too many outputs",
			args:    func(env *testEnv) []string { return []string{"-i", env.input, "a.gif", "b.gif"} },
			wantErr: "expected one OUTFILE",
		},
		{
			name:    "unknown flag",
			args:    func(env *testEnv) []string { return []string{"--frobnicate", "-i", env.input, "a.gif"} },
			wantErr: "unknown flag: --frobnicate",
		},
		{
			name:    "input without value",
			args:    func(env *testEnv) []string { return []string{"-i"} },
			wantErr: "flag needs an argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTests(t)
			runner := process.NewMockRunner()

			code := env.run(cli.NewRootCmdWithRunner(runner), tt.args(env)...)

			if code != 1 {
				t.Errorf("Expected exit code 1, got %d", code)
			}
			if !strings.Contains(env.errOut.String(), tt.wantErr) {
				t.Errorf("Expected %q in stderr, got %q", tt.wantErr, env.errOut.String())
			}
			if !strings.Contains(env.errOut.String(), "Usage:") {
				t.Errorf("Expected usage in stderr, got %q", env.errOut.String())
			}
			if runner.CallCount() != 0 {
				t.Errorf("Expected no encoder runs, got %d", runner.CallCount())
			}
		})
	}
}

func TestInvalidInput(t *testing.T) {
	env := setupTests(t)
	runner := process.NewMockRunner()
	output := filepath.Join(env.dir, "out.gif")

	code := env.run(cli.NewRootCmdWithRunner(runner), "-i", env.dir, output)

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(env.errOut.String(), "Error: failed to read input "+env.dir) {
		t.Errorf("Unexpected stderr %q", env.errOut.String())
	}
	if runner.CallCount() != 0 {
		t.Errorf("Expected no encoder runs, got %d", runner.CallCount())
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("Output must not be created: %v", err)
	}
}

func TestEncoderFailure(t *testing.T) {
	env := setupTests(t)
	runner := process.NewFailingMockRunner(1, "clip.mp4: Invalid data found when processing input")

	code := env.run(cli.NewRootCmdWithRunner(runner), "-i", env.input, filepath.Join(env.dir, "out.gif"))

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	stderr := env.errOut.String()
	for _, want := range []string{
		"Error: error using ffmpeg (palette stage)",
		"Caused by:",
		"    ffmpeg exited with status 1",
		"    clip.mp4: Invalid data found when processing input",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("Expected %q in stderr, got %q", want, stderr)
		}
	}
	if runner.CallCount() != 1 {
		t.Errorf("Expected only the palette pass, got %d runs", runner.CallCount())
	}
}

func TestConvertSuccess(t *testing.T) {
	env := setupTests(t)
	runner := encoderMock(t)
	output := filepath.Join(env.dir, "out.gif")

	code := env.run(cli.NewRootCmdWithRunner(runner), output, "-i", env.input, "--fps", "10", "--width", "320", "--dither", "none")

	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d (stderr: %s)", code, env.errOut.String())
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("Expected output to exist: %v", err)
	}
	if !strings.Contains(env.out.String(), "Wrote "+output) {
		t.Errorf("Expected success message, got %q", env.out.String())
	}

	paletteArgs := strings.Join(runner.Calls[0].Args, " ")
	if !strings.Contains(paletteArgs, "fps=10,scale=320:-1") {
		t.Errorf("Flags not applied to palette pass: %s", paletteArgs)
	}
	encodeArgs := strings.Join(runner.Calls[1].Args, " ")
	if !strings.Contains(encodeArgs, "paletteuse=dither=none") {
		t.Errorf("Flags not applied to encode pass: %s", encodeArgs)
	}

	entries, _ := os.ReadDir(env.scratch)
	if len(entries) != 0 {
		t.Errorf("Expected workspace to be cleaned up, found %d entries", len(entries))
	}
}

func TestQuietSuppressesSuccessMessage(t *testing.T) {
	env := setupTests(t)

	code := env.run(cli.NewRootCmdWithRunner(encoderMock(t)), "-q", "-i", env.input, filepath.Join(env.dir, "out.gif"))

	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d (stderr: %s)", code, env.errOut.String())
	}
	if env.out.Len() != 0 {
		t.Errorf("Expected no output in quiet mode, got %q", env.out.String())
	}
}

func TestInvalidConfiguration(t *testing.T) {
	env := setupTests(t)
	runner := process.NewMockRunner()

	code := env.run(cli.NewRootCmdWithRunner(runner), "-i", env.input, "--dither", "ordered", filepath.Join(env.dir, "out.gif"))

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(env.errOut.String(), "invalid dither: ordered") {
		t.Errorf("Unexpected stderr %q", env.errOut.String())
	}
	if runner.CallCount() != 0 {
		t.Errorf("Expected no encoder runs, got %d", runner.CallCount())
	}
}

func TestVersionCommand(t *testing.T) {
	env := setupTests(t)

	code := env.run(cli.NewRootCmdWithRunner(process.NewMockRunner()), "version")

	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	if !strings.HasPrefix(env.out.String(), "gifer version ") {
		t.Errorf("Unexpected version output %q", env.out.String())
	}
}

// writeStub writes an executable shell script standing in for ffmpeg.
func writeStub(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stubs require a unix shell")
	}
	path := filepath.Join(dir, "ffmpeg-stub.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("Failed to write stub: %v", err)
	}
	return path
}

func TestStubEncoder(t *testing.T) {
	t.Run("always fails", func(t *testing.T) {
		env := setupTests(t)
		stub := writeStub(t, env.dir, "echo 'stub: cannot decode clip' >&2\nexit 69\n")

		code := env.run(cli.NewRootCmd(), "-i", env.input, "--ffmpeg", stub, filepath.Join(env.dir, "out.gif"))

		if code == 0 {
			t.Fatal("Expected non-zero exit code")
		}
		if !strings.Contains(env.errOut.String(), "stub: cannot decode clip") {
			t.Errorf("Expected stub stderr in output, got %q", env.errOut.String())
		}
		if !strings.Contains(env.errOut.String(), "exited with status 69") {
			t.Errorf("Expected exit status in output, got %q", env.errOut.String())
		}
	})

	t.Run("writes placeholders", func(t *testing.T) {
		env := setupTests(t)
		stub := writeStub(t, env.dir, "for last in \"$@\"; do :; done\necho placeholder > \"$last\"\n")
		output := filepath.Join(env.dir, "out.gif")

		for run := 1; run <= 2; run++ {
			env.out.Reset()
			env.errOut.Reset()

			code := env.run(cli.NewRootCmd(), "-i", env.input, "--ffmpeg", stub, output)
			if code != 0 {
				t.Fatalf("Run %d: expected exit code 0, got %d (stderr: %s)", run, code, env.errOut.String())
			}
			if _, err := os.Stat(output); err != nil {
				t.Errorf("Run %d: expected output to exist: %v", run, err)
			}
		}
	})

	t.Run("placeholder palette fails strict check", func(t *testing.T) {
		env := setupTests(t)
		stub := writeStub(t, env.dir, "for last in \"$@\"; do :; done\necho placeholder > \"$last\"\n")

		code := env.run(cli.NewRootCmd(), "-i", env.input, "--ffmpeg", stub, "--verify-palette=strict", filepath.Join(env.dir, "out.gif"))
		if code == 0 {
			t.Fatal("Expected non-zero exit code")
		}
		if !strings.Contains(env.errOut.String(), "palette check failed (verify-palette stage)") {
			t.Errorf("Expected verification failure, got %q", env.errOut.String())
		}
	})

	t.Run("encoder missing", func(t *testing.T) {
		env := setupTests(t)

		code := env.run(cli.NewRootCmd(), "-i", env.input, "--ffmpeg", filepath.Join(env.dir, "no-ffmpeg"), filepath.Join(env.dir, "out.gif"))
		if code == 0 {
			t.Fatal("Expected non-zero exit code")
		}
		if !strings.Contains(env.errOut.String(), "not found") {
			t.Errorf("Expected lookup failure, got %q", env.errOut.String())
		}
		if _, err := os.Stat(env.scratch); !os.IsNotExist(err) {
			t.Errorf("Scratch directory must not be created: %v", err)
		}
	})
}

func TestOutputNamedLikeSubcommand(t *testing.T) {
	for _, name := range []string{"palette", "version"} {
		t.Run(name, func(t *testing.T) {
			env := setupTests(t)
			oldWd, err := os.Getwd()
			if err != nil {
				t.Fatal(err)
			}
			if err := os.Chdir(env.dir); err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() { _ = os.Chdir(oldWd) })
			runner := encoderMock(t)

			code := env.run(cli.NewRootCmdWithRunner(runner), "-i", env.input, name)

			if code != 0 {
				t.Fatalf("Expected exit code 0, got %d (stderr: %s)", code, env.errOut.String())
			}
			if runner.CallCount() != 2 {
				t.Errorf("Expected a full conversion, got %d encoder runs", runner.CallCount())
			}
			if _, err := os.Stat(filepath.Join(env.dir, name)); err != nil {
				t.Errorf("Expected output file %s: %v", name, err)
			}
		})
	}
}
