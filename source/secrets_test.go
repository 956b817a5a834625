package source

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadSecrets(t *testing.T) {
	dir := t.TempDir()
	pw := writeFile(t, dir, "pw", "  hunter2 \n")
	token := writeFile(t, dir, "token", "abc")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got := ReadSecrets([]string{
		"DB_PASSWORD_FILE=" + pw,
		"API_TOKEN_FILE=" + token,
		"MISSING_FILE=" + filepath.Join(dir, "nope"),
		"_FILE=" + pw,
		"PLAIN=value",
		"NOEQUALS",
	}, logger)

	assert.Equal(t, map[string]string{
		"DB_PASSWORD": "hunter2",
		"API_TOKEN":   "abc",
		"MISSING":     "",
	}, got)
	assert.Contains(t, buf.String(), "Failed to read secret from file")
	assert.Contains(t, buf.String(), "Resolved secrets from file paths")
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestReadSecretsNothingToDo(t *testing.T) {
	var buf bytes.Buffer
	got := ReadSecrets([]string{"HOME=/root"}, slog.New(slog.NewTextHandler(&buf, nil)))
	assert.Empty(t, got)
	assert.Empty(t, buf.String())
}
