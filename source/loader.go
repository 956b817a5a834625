package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/godamri/helix-config/tree"
)

// ErrNotFound is wrapped by LoadError when no file exists for a name.
var ErrNotFound = errors.New("configuration file not found")

// Options controls where Load looks and what it layers on top of the files.
type Options struct {
	Dir     string `envconfig:"CONFIG_DIR" default:"."`
	Name    string `envconfig:"CONFIG_NAME" default:"application"`
	Profile string `envconfig:"CONFIG_PROFILE"`

	// Overrides win over everything else. Keys are dotted paths.
	Overrides map[string]string `ignored:"true"`
	// Environ feeds substitutions and *_FILE secrets. Nil means os.Environ();
	// pass an empty slice for a hermetic load.
	Environ []string     `ignored:"true"`
	Logger  *slog.Logger `ignored:"true"`
}

// OptionsFromEnv reads CONFIG_DIR, CONFIG_NAME and CONFIG_PROFILE.
func OptionsFromEnv() (Options, error) {
	var opts Options
	if err := envconfig.Process("", &opts); err != nil {
		return Options{}, fmt.Errorf("source: %w", err)
	}
	return opts, nil
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Name == "" {
		o.Name = "application"
	}
	if o.Environ == nil {
		o.Environ = os.Environ()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// LoadError reports a file that could not be found or parsed, or a merged
// tree whose substitutions did not resolve.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return "source: " + e.Err.Error()
	}
	return fmt.Sprintf("source: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load builds the effective configuration tree. From highest precedence to
// lowest: overrides, file-mounted secrets, the profile file, the base file.
// Substitutions are resolved once, against the merged tree and then Environ.
func Load(opts Options) (*tree.Tree, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	base, err := parseNamed(opts.Dir, opts.Name)
	if err != nil {
		return nil, err
	}

	files := base
	if profile := ActiveProfile(opts); profile != "" {
		if strings.ContainsAny(profile, `/\`) {
			return nil, &LoadError{Err: fmt.Errorf("invalid profile name %q", profile)}
		}
		logger.Info("Activating configuration profile", "profile", profile)
		overlay, err := parseNamed(opts.Dir, opts.Name+"-"+profile)
		if err != nil {
			return nil, err
		}
		files = overlay.WithFallback(base)
	}

	// Secret contents are literal text, never references.
	secrets := ReadSecrets(opts.Environ, logger)
	for k, v := range secrets {
		secrets[k] = tree.Escape(v)
	}

	resolved, err := tree.Layer(
		flat(opts.Overrides, "overrides"),
		flat(secrets, "secret files"),
		files,
	).Resolve(envLookup(opts.Environ))
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return resolved, nil
}

// parseNamed parses the first existing dir/name.<ext> in Extensions order.
func parseNamed(dir, name string) (*tree.Tree, error) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, &LoadError{Path: path, Err: err}
		}
		t, err := ParseFile(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		return t, nil
	}
	return nil, &LoadError{Path: filepath.Join(dir, name+Extensions[0]), Err: ErrNotFound}
}

func flat(m map[string]string, origin string) *tree.Tree {
	if len(m) == 0 {
		return nil
	}
	return tree.FromFlatMap(m, origin)
}

func envLookup(environ []string) func(string) (string, bool) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}
