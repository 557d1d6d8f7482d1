package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/vk/cogs/internal/app"
	"github.com/vk/cogs/internal/dispatch"
)

// main is the entrypoint for the cogs binary.
func main() {
	// Use a minimal logger until the full one is configured from settings.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		os.Exit(dispatch.Report(os.Stderr, err))
	}
}

// run encapsulates the main application logic for easier testing and
// error handling.
func run(outW, errW io.Writer, args []string) error {
	a, err := app.New(outW, errW)
	if err != nil {
		return err
	}
	return a.Run(context.Background(), args)
}
