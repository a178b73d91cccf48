package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes a colcut job: which input columns to keep, how to rename
// them and how input and output are delimited.
type Config struct {
	Input   InputConfig    `yaml:"input"`
	Output  OutputConfig   `yaml:"output"`
	Columns []ColumnConfig `yaml:"columns"`
}

type InputConfig struct {
	Separator         string `yaml:"separator"`
	Terminator        string `yaml:"terminator"`
	Trim              bool   `yaml:"trim"`
	IgnoreExtraFields bool   `yaml:"ignore_extra_fields"`
}

type OutputConfig struct {
	Separator  string `yaml:"separator"`
	Terminator string `yaml:"terminator"`
}

// ColumnConfig maps input column From to output column To. An empty To keeps the name.
type ColumnConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// OutputName returns the name the column carries in the output.
func (c ColumnConfig) OutputName() string {
	if c.To == "" {
		return c.From
	}
	return c.To
}

// LoadConfig reads and validates a YAML job file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig decodes a YAML job from r. Unknown keys are rejected.
func ParseConfig(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("config is empty")
		}
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the job names at least one column, that input and
// output names are unique and that every delimiter is at most one byte.
func (c *Config) Validate() error {
	if len(c.Columns) == 0 {
		return errors.New("config: no columns")
	}
	from := make(map[string]bool, len(c.Columns))
	to := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.From == "" {
			return fmt.Errorf("config: column %d has no \"from\"", i)
		}
		if from[col.From] {
			return fmt.Errorf("config: input column %q listed twice", col.From)
		}
		from[col.From] = true
		if to[col.OutputName()] {
			return fmt.Errorf("config: output column %q listed twice", col.OutputName())
		}
		to[col.OutputName()] = true
	}
	for _, d := range []struct{ key, value string }{
		{"input.separator", c.Input.Separator},
		{"input.terminator", c.Input.Terminator},
		{"output.separator", c.Output.Separator},
		{"output.terminator", c.Output.Terminator},
	} {
		if len(d.value) > 1 {
			return fmt.Errorf("config: %s must be a single byte, got %q", d.key, d.value)
		}
	}
	return nil
}

// delimiter returns the single byte of s, or 0 so the library default applies.
func delimiter(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}
