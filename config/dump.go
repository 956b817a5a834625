package config

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/godamri/helix-config/tree"
)

// Redacted replaces the values of sensitive top-level keys in dumps.
const Redacted = "[REDACTED]"

var sensitiveWords = []string{"password", "secret", "token"}

// fingerprintSpace namespaces the UUIDv5 fingerprints of rendered trees.
var fingerprintSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/godamri/helix-config"))

// Redact returns a copy of t whose top-level keys containing password,
// secret or token, in any case, hold Redacted. Nested keys are left as they
// are: the dump is a debugging aid, not a security boundary.
func Redact(t *tree.Tree) *tree.Tree {
	m := t.Unwrapped()
	for k := range m {
		if sensitive(k) {
			m[k] = Redacted
		}
	}
	return tree.FromMap(m, t.Origin())
}

func sensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, w := range sensitiveWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Fingerprint identifies the redacted rendering of t. Identical sources give
// identical fingerprints, so two processes can be compared from their logs.
func Fingerprint(t *tree.Tree) string {
	return uuid.NewSHA1(fingerprintSpace, []byte(Redact(t).Render())).String()
}

// LogEffective logs the redacted effective configuration at info level. It
// does no rendering when info is disabled.
func LogEffective(ctx context.Context, logger *slog.Logger, t *tree.Tree) {
	if !logger.Enabled(ctx, slog.LevelInfo) {
		return
	}
	redacted := Redact(t)
	rendered := redacted.Render()
	logger.InfoContext(ctx, "Effective configuration",
		"origin", t.Origin(),
		"fingerprint", uuid.NewSHA1(fingerprintSpace, []byte(rendered)).String(),
		"config", rendered,
	)
}
