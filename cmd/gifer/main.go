// gifer - web-friendly GIFs from video
//
// gifer runs ffmpeg twice, once to build a palette and once to encode the GIF
// with it, and reports ffmpeg's own diagnostics when either pass fails.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/gifer/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
