// Package project handles ionproject.toml build configuration.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the project configuration file name.
const FileName = "ionproject.toml"

// Config represents an ionproject.toml build configuration.
type Config struct {
	Project Project `toml:"project"`
	Pack    Pack    `toml:"pack"`

	// Dir is the directory containing the ionproject.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
	Authors []string `toml:"authors"`
}

// Pack configures pack output.
type Pack struct {
	Output        string `toml:"output"`
	MainClass     string `toml:"main-class"`
	EntryPoint    string `toml:"entry-point"`
	IncludeSource bool   `toml:"include-source"`
}

// Load parses an ionproject.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if c.Project.Name == "" {
		return nil, fmt.Errorf("%s: project.name is required", path)
	}

	// Defaults
	if c.Project.Version == "" {
		c.Project.Version = "0.1.0"
	}
	if c.Pack.Output == "" {
		c.Pack.Output = c.Project.Name + ".ionpack"
	}
	if c.Pack.EntryPoint == "" {
		c.Pack.EntryPoint = "main"
	}

	return &c, nil
}

// FindAndLoad walks up from startDir to find an ionproject.toml file,
// then loads and returns the config. Returns nil if no config is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// OutputPath returns the absolute path of the pack file to write.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Pack.Output) {
		return c.Pack.Output
	}
	return filepath.Join(c.Dir, c.Pack.Output)
}
