package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither file, env, nor flags set a value.
const (
	DefaultTemplatesDir = "_templates"
	DefaultDebounce     = 300 * time.Millisecond
)

var (
	// ErrInputRequired indicates no input directory was configured.
	ErrInputRequired = errors.New("input directory is required")
	// ErrOutputRequired indicates no output directory was configured.
	ErrOutputRequired = errors.New("output directory is required")
)

// Duration wraps time.Duration so YAML configs can use human-readable
// values like "300ms" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the explicit configuration for one generator process. It is
// constructed once at startup (file, then env, then flags) and passed by
// reference; nothing mutates it after validation.
type Config struct {
	Input        string   `yaml:"input"`
	Output       string   `yaml:"output"`
	TemplatesDir string   `yaml:"templates_dir,omitempty"`
	Watch        bool     `yaml:"watch,omitempty"`
	Debounce     Duration `yaml:"debounce,omitempty"`
	RebuildEvery Duration `yaml:"rebuild_every,omitempty"`
	MetricsAddr  string   `yaml:"metrics_addr,omitempty"`
	HistoryPath  string   `yaml:"history,omitempty"`
	NATSURL      string   `yaml:"nats_url,omitempty"`
	Repo         string   `yaml:"repo,omitempty"`
	Branch       string   `yaml:"branch,omitempty"`
}

// Load reads configuration from an optional YAML file and the environment.
// An empty path skips the file; a named file must exist and parse strictly
// (unknown keys are rejected).
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays MDSITE_-prefixed environment variables. A .env file in
// the working directory is honored when present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	overlay := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	overlay(&c.Input, "MDSITE_INPUT")
	overlay(&c.Output, "MDSITE_OUTPUT")
	overlay(&c.TemplatesDir, "MDSITE_TEMPLATES_DIR")
	overlay(&c.MetricsAddr, "MDSITE_METRICS_ADDR")
	overlay(&c.HistoryPath, "MDSITE_HISTORY")
	overlay(&c.NATSURL, "MDSITE_NATS_URL")
	overlay(&c.Repo, "MDSITE_REPO")
	overlay(&c.Branch, "MDSITE_BRANCH")
}

// ApplyDefaults fills zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.TemplatesDir == "" {
		c.TemplatesDir = DefaultTemplatesDir
	}
	if c.Debounce <= 0 {
		c.Debounce = Duration(DefaultDebounce)
	}
}

// Validate checks the fatal preconditions: both roots must be configured,
// and the input directory must exist unless a remote repo provides it.
func (c *Config) Validate() error {
	if c.Input == "" && c.Repo == "" {
		return ErrInputRequired
	}
	if c.Output == "" {
		return ErrOutputRequired
	}
	if c.Repo == "" {
		info, err := os.Stat(c.Input)
		if err != nil {
			return fmt.Errorf("input directory %s: %w", c.Input, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("input path %s is not a directory", c.Input)
		}
	}
	return nil
}
