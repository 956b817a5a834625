package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBootstrap(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("CONFIG_DIR", "/etc/svc")
	t.Setenv("CONFIG_PROFILE", "prod")

	b, err := NewEnvLoader().LoadBootstrap()
	require.NoError(t, err)
	assert.Equal(t, "debug", b.Log.Level)
	assert.Equal(t, "console", b.Log.Format)
	assert.Equal(t, "/etc/svc", b.Source.Dir)
	assert.Equal(t, "application", b.Source.Name)
	assert.Equal(t, "prod", b.Source.Profile)
}

func TestLoadBootstrapRejectsUnknownFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")

	_, err := NewEnvLoader().LoadBootstrap()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app: validation failed")
}

func TestRunContext(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(slog.New(slog.NewTextHandler(&buf, nil)))

	ran := false
	err := r.RunContext(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Contains(t, buf.String(), "Service shutdown complete.")
}

func TestRunContextFailure(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(slog.New(slog.NewTextHandler(&buf, nil)))

	boom := errors.New("boom")
	err := r.RunContext(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "Service failed")
}

func TestRunContextCancellation(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(slog.New(slog.NewTextHandler(&buf, nil)))

	parent, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.RunContext(parent, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	require.NoError(t, err)
}
