package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/godamri/helix-config/tree"
)

// Parser turns configuration text into a tree. Substitutions are left in
// the tree as ${...} text; Load resolves them once all layers are merged.
type Parser interface {
	ParseFile(path string) (*tree.Tree, error)
	ParseString(text, origin string) (*tree.Tree, error)
}

var (
	HOCON Parser = hoconParser{}
	YAML  Parser = yamlParser{}
	TOML  Parser = tomlParser{}
)

// Extensions lists the file extensions probed for a configuration name, in
// order of preference.
var Extensions = []string{".conf", ".hocon", ".yaml", ".yml", ".toml"}

var parsers = map[string]Parser{
	".conf":  HOCON,
	".hocon": HOCON,
	".yaml":  YAML,
	".yml":   YAML,
	".toml":  TOML,
}

// ParserFor picks a parser by file extension.
func ParserFor(path string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := parsers[ext]
	if !ok {
		return nil, fmt.Errorf("source: no parser for %q files", ext)
	}
	return p, nil
}

// ParseFile parses path with the parser registered for its extension.
func ParseFile(path string) (*tree.Tree, error) {
	p, err := ParserFor(path)
	if err != nil {
		return nil, err
	}
	return p.ParseFile(path)
}

type yamlParser struct{}

func (p yamlParser) ParseFile(path string) (*tree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseString(string(data), filepath.Base(path))
}

func (yamlParser) ParseString(text, origin string) (*tree.Tree, error) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	return tree.FromMap(raw, origin), nil
}

type tomlParser struct{}

func (p tomlParser) ParseFile(path string) (*tree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseString(string(data), filepath.Base(path))
}

func (tomlParser) ParseString(text, origin string) (*tree.Tree, error) {
	var raw map[string]any
	if err := toml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	return tree.FromMap(raw, origin), nil
}
