package source

import (
	"errors"
	"strings"
)

// ProfileKey is the override that selects a profile. It wins over CONFIG_PROFILE.
const ProfileKey = "config.profile"

// ParseOverrides turns "key=value" definitions into an override table. A
// definition without "=" sets the key to the empty string; later definitions
// of the same key win.
func ParseOverrides(defs []string) (map[string]string, error) {
	out := make(map[string]string, len(defs))
	for _, d := range defs {
		k, v, _ := strings.Cut(d, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, errors.New("source: override without a key")
		}
		out[k] = v
	}
	return out, nil
}

// ActiveProfile returns the profile selected by the ProfileKey override, or
// else by opts.Profile. A present but blank override disables profiles.
func ActiveProfile(opts Options) string {
	if v, ok := opts.Overrides[ProfileKey]; ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(opts.Profile)
}
