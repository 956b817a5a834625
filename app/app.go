package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Runner encapsulates the startup logic.
// It handles signals and context cancellation so commands don't have to.
type Runner struct {
	Logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{Logger: logger}
}

// Run executes fn with a context that is cancelled on SIGINT or SIGTERM.
func (r *Runner) Run(fn func(ctx context.Context) error) error {
	return r.RunContext(context.Background(), fn)
}

// RunContext is Run with a parent context.
func (r *Runner) RunContext(parent context.Context, fn func(ctx context.Context) error) error {
	// Create context that listens for the kill signal
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.Logger.InfoContext(ctx, "Service starting...")

	if err := fn(ctx); err != nil {
		r.Logger.ErrorContext(ctx, "Service failed", "error", err)
		return err
	}

	r.Logger.InfoContext(ctx, "Service shutdown complete.")
	return nil
}
