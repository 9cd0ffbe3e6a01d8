// Package config loads the .alumi.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is looked up in the working directory when no path is given.
const FileName = ".alumi.yaml"

type Config struct {
	Name string `yaml:"name"`

	// Color forces colored output on or off. Nil leaves the terminal
	// detection of the color library in charge.
	Color *bool `yaml:"color,omitempty"`

	// MaxErrors caps the diagnostics printed per file. Zero prints all.
	MaxErrors int `yaml:"max_errors"`

	// TabWidth is the column width of a tab in rendered diagnostics.
	TabWidth int `yaml:"tab_width"`

	REPL REPLConfig `yaml:"repl"`
	LSP  LSPConfig  `yaml:"lsp"`
}

type REPLConfig struct {
	HistoryFile string `yaml:"history_file"`
}

type LSPConfig struct {
	SemanticTokens bool `yaml:"semantic_tokens"`
	Completion     bool `yaml:"completion"`
}

// Default is the configuration used when no file exists.
func Default() Config {
	return Config{
		Name:      "alumi",
		MaxErrors: 20,
		TabWidth:  4,
		REPL:      REPLConfig{HistoryFile: ".alumi_history"},
		LSP:       LSPConfig{SemanticTokens: true, Completion: true},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// path is empty.
func Load(path string) (Config, error) {
	config := Default()
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return config, nil
}

func (c Config) Validate() error {
	if c.MaxErrors < 0 {
		return fmt.Errorf("max_errors must not be negative, got %d", c.MaxErrors)
	}
	if c.TabWidth < 1 {
		return fmt.Errorf("tab_width must be positive, got %d", c.TabWidth)
	}
	return nil
}

// Save writes c to path, replacing any existing file.
func Save(path string, c Config) error {
	d, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
