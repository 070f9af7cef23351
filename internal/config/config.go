package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the manifest name looked up next to the working directory.
const DefaultFile = "pyrt.yaml"

// Manifest is the runtime configuration.
type Manifest struct {
	Path            string   `yaml:"-"`
	Name            string   `yaml:"name"`
	Verbosity       int      `yaml:"verbosity"`
	LogFile         string   `yaml:"log_file"`
	Preload         []string `yaml:"preload"`
	DisabledModules []string `yaml:"disabled_modules"`
	DataPaths       []string `yaml:"data_paths"`
	Generator       struct {
		MaxSteps int64 `yaml:"max_steps"`
	} `yaml:"generator"`
}

// Default returns the manifest used when no file is present.
func Default() *Manifest {
	return &Manifest{Name: "pyrt"}
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("manifest ")
	b.WriteString(e.Path)
	b.WriteString(": validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses a manifest from disk. Unknown fields are errors.
func LoadManifest(path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer f.Close()

	m := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}
	m.Path = absPath
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadOrDefault loads path, or returns the defaults when the file does not
// exist.
func LoadOrDefault(path string) (*Manifest, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return LoadManifest(path)
}

func (m *Manifest) validate() error {
	var issues []string
	if m.Verbosity < -1 || m.Verbosity > 5 {
		issues = append(issues, fmt.Sprintf("verbosity must be between -1 and 5, got %d", m.Verbosity))
	}
	if m.Generator.MaxSteps < 0 {
		issues = append(issues, fmt.Sprintf("generator.max_steps must not be negative, got %d", m.Generator.MaxSteps))
	}
	for i, name := range m.Preload {
		if name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
			issues = append(issues, fmt.Sprintf("preload[%d]: invalid module name %q", i, name))
		}
	}
	for i, name := range m.DisabledModules {
		if name == "" {
			issues = append(issues, fmt.Sprintf("disabled_modules[%d] must be a non-empty string", i))
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Path: m.Path, Issues: issues}
	}
	return nil
}

// ResolveDataPaths returns data_paths made absolute against the manifest's
// directory.
func (m *Manifest) ResolveDataPaths() []string {
	base := "."
	if m.Path != "" {
		base = filepath.Dir(m.Path)
	}
	out := make([]string, len(m.DataPaths))
	for i, p := range m.DataPaths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		out[i] = filepath.Clean(p)
	}
	return out
}

// Disabled reports whether a native module is switched off.
func (m *Manifest) Disabled(name string) bool {
	for _, d := range m.DisabledModules {
		if d == name {
			return true
		}
	}
	return false
}

// Marshal renders the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}
