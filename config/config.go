// Package config loads bnd.yaml — the declarative description of which
// headers make up each partition, where to find them, and which external
// metadata files seed the type registry. Grounded on bindscrape's
// config.rs (_examples/original_source/bindscrape/src/config.rs), with
// the concrete syntax switched from TOML to YAML (see SPEC_FULL.md §6.1)
// since gopkg.in/yaml.v3, not a TOML library, is what the reference
// corpus actually depends on.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the root of bnd.yaml.
type Config struct {
	Output Output `yaml:"output"`
	// IncludePaths are additional directories searched when resolving
	// header and traverse paths, tried in order after the config file's
	// own directory. Also injected as front-end include-path flags.
	IncludePaths []string `yaml:"include_paths"`
	ClangArgs    []string `yaml:"clang_args"`
	Partition    []Partition            `yaml:"partition"`
	NamespaceOverrides map[string]string `yaml:"namespace_overrides"`
	TypeImport         []TypeImport      `yaml:"type_import"`
}

// Output describes the assembly written into the metadata.
type Output struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// Partition maps a set of headers to one namespace and library.
type Partition struct {
	Namespace string   `yaml:"namespace"`
	Library   string   `yaml:"library"`
	Headers   []string `yaml:"headers"`
	// Traverse defaults to Headers when empty.
	Traverse  []string `yaml:"traverse"`
	ClangArgs []string `yaml:"clang_args"`
}

// TraverseFiles returns the traverse list, falling back to Headers.
func (p *Partition) TraverseFiles() []string {
	if len(p.Traverse) == 0 {
		return p.Headers
	}
	return p.Traverse
}

// TypeImport seeds the registry from an external metadata file.
type TypeImport struct {
	Winmd     string `yaml:"winmd"`
	Namespace string `yaml:"namespace"`
}

const defaultOutputFile = "output.winmd"

// Load reads and parses a bnd.yaml file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.Output.File == "" {
		cfg.Output.File = defaultOutputFile
	}
	return &cfg, nil
}

// ResolveHeader resolves a header path: absolute paths pass through;
// relative paths are tried against baseDir first, then each includePaths
// entry in order. A path that resolves nowhere is returned joined with
// baseDir so the caller (the front end) reports a meaningful error.
func ResolveHeader(path, baseDir string, includePaths []string) string {
	if filepath.IsAbs(path) {
		return path
	}
	candidate := filepath.Join(baseDir, path)
	if fileExists(candidate) {
		return candidate
	}
	for _, inc := range includePaths {
		candidate := filepath.Join(inc, path)
		if fileExists(candidate) {
			return candidate
		}
	}
	return filepath.Join(baseDir, path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
