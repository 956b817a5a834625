package source

import (
	"log/slog"
	"os"
	"strings"
)

const secretSuffix = "_FILE"

// ReadSecrets materialises file-mounted secrets. Every NAME_FILE=path entry in
// environ yields NAME with the trimmed UTF-8 contents of path.
//
// An unreadable file is logged and yields an empty value instead of failing:
// the field bound from it then fails validation against its schema, which
// says more than an I/O error would.
func ReadSecrets(environ []string, logger *slog.Logger) map[string]string {
	if logger == nil {
		logger = slog.Default()
	}

	secrets := map[string]string{}
	for _, kv := range environ {
		name, path, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasSuffix(name, secretSuffix) {
			continue
		}
		key := strings.TrimSuffix(name, secretSuffix)
		if key == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("Failed to read secret from file", "env", name, "path", path, "error", err)
			secrets[key] = ""
			continue
		}
		secrets[key] = strings.TrimSpace(strings.ToValidUTF8(string(data), "�"))
	}

	if len(secrets) > 0 {
		logger.Info("Resolved secrets from file paths", "count", len(secrets))
	}
	return secrets
}
