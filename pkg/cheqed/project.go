package cheqed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfigFile is the name of the project configuration file.
const ProjectConfigFile = "cheqed.toml"

// ProjectConfig represents a cheqed.toml project configuration file.
type ProjectConfig struct {
	// Theories are loaded when no theories are given on the command line.
	Theories []string `toml:"theories,omitempty"`

	// TheoryPath lists directories of additional *.star theory scripts,
	// relative to cheqed.toml. Later directories shadow earlier ones and
	// the built-in theories.
	TheoryPath []string `toml:"theory_path,omitempty"`

	// CacheSize bounds the number of loaded environments kept around.
	CacheSize int `toml:"cache_size,omitempty"`
}

// LoadProjectConfig loads a cheqed.toml file from the given path, resolving
// theory directories against the file's directory.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	var config ProjectConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, p := range config.TheoryPath {
		if !filepath.IsAbs(p) {
			config.TheoryPath[i] = filepath.Join(dir, p)
		}
	}
	return &config, nil
}

// FindProjectConfig searches for a cheqed.toml file starting from dir and
// walking up to parent directories. Returns the path to cheqed.toml and the
// parsed config, or ("", nil, nil) if not found.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// TheoryNames returns the configured theories, or the defaults.
func (c *ProjectConfig) TheoryNames() []string {
	if c == nil || len(c.Theories) == 0 {
		return DefaultTheories
	}
	return c.Theories
}

// Loader returns a loader searching the configured theory directories.
func (c *ProjectConfig) Loader() *Loader {
	if c == nil {
		return NewLoader()
	}
	return NewLoader(c.TheoryPath...)
}
