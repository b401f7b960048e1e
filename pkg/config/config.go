// Package config loads girder preferences from a YAML file. Missing or
// invalid files fall back to defaults so the app always starts.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Path is the preferences file location, relative to the process
// working directory.
const Path = "config/girder.yaml"

// Prefs holds app preferences persisted across runs.
type Prefs struct {
	WindowWidth        int      `yaml:"window_width"`
	WindowHeight       int      `yaml:"window_height"`
	MeshCells          int      `yaml:"mesh_cells"`
	EvalTimeoutSeconds int      `yaml:"eval_timeout_seconds"`
	Palette            []string `yaml:"palette,omitempty"`
}

// Default returns the default preferences.
func Default() Prefs {
	return Prefs{
		WindowWidth:        1280,
		WindowHeight:       800,
		MeshCells:          200,
		EvalTimeoutSeconds: 5,
	}
}

// EvalTimeout returns the evaluation timeout as a duration.
func (p Prefs) EvalTimeout() time.Duration {
	return time.Duration(p.EvalTimeoutSeconds) * time.Second
}

// Load reads preferences from config/girder.yaml. If the file is
// missing or invalid, returns Default() and does not create a file.
func Load() Prefs {
	return LoadFrom(Path)
}

// LoadFrom reads preferences from the given path with the same
// fallback behavior as Load.
func LoadFrom(path string) Prefs {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default()
	}
	return p.sanitized()
}

// sanitized replaces out-of-range values with defaults.
func (p Prefs) sanitized() Prefs {
	d := Default()
	if p.WindowWidth <= 0 {
		p.WindowWidth = d.WindowWidth
	}
	if p.WindowHeight <= 0 {
		p.WindowHeight = d.WindowHeight
	}
	if p.MeshCells <= 0 {
		p.MeshCells = d.MeshCells
	}
	if p.EvalTimeoutSeconds <= 0 {
		p.EvalTimeoutSeconds = d.EvalTimeoutSeconds
	}
	return p
}

// Save writes preferences to config/girder.yaml, creating the config
// directory if needed.
func Save(p Prefs) error {
	return SaveTo(Path, p)
}

// SaveTo writes preferences to the given path.
func SaveTo(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
