// Package config loads and validates the site configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultFileName is the configuration file looked up in the site root.
const DefaultFileName = "_config.yml"

// Config represents the site configuration.
type Config struct {
	Lang           string           `yaml:"lang"`
	Title          string           `yaml:"title"`
	Author         string           `yaml:"author,omitempty"`
	Theme          string           `yaml:"theme,omitempty"`
	Menu           []map[string]any `yaml:"menu,omitempty"`
	Footer         []map[string]any `yaml:"footer,omitempty"`
	Sections       []Section        `yaml:"sections,omitempty"`
	BottomSections []map[string]any `yaml:"bottom_sections,omitempty"`

	Build   BuildConfig   `yaml:"build,omitempty"`
	Publish PublishConfig `yaml:"publish,omitempty"`

	// path is the file the configuration was loaded from.
	path string
}

// Section is a configured grouping of posts on the index page.
type Section struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	// FailOnPostError fails the build when any post cannot be loaded.
	// When false the post is skipped and reported as a warning.
	FailOnPostError *bool  `yaml:"fail_on_post_error,omitempty"`
	ReportFile      string `yaml:"report_file,omitempty"`
	MetricsFile     string `yaml:"metrics_file,omitempty"`
}

// FailOnPostErrorEnabled resolves the tri-state flag (default true).
func (b BuildConfig) FailOnPostErrorEnabled() bool {
	return b.FailOnPostError == nil || *b.FailOnPostError
}

// PublishConfig describes where `sitebuilder publish` commits the output.
type PublishConfig struct {
	Repository  string `yaml:"repository,omitempty"`
	Branch      string `yaml:"branch,omitempty"`
	CheckoutDir string `yaml:"checkout_dir,omitempty"`
	AuthorName  string `yaml:"author_name,omitempty"`
	AuthorEmail string `yaml:"author_email,omitempty"`
	Message     string `yaml:"message,omitempty"`
	TokenEnv    string `yaml:"token_env,omitempty"`
	Push        *bool  `yaml:"push,omitempty"`
	Force       bool   `yaml:"force,omitempty"`

	// Fetch and push are retried on transient failures.
	MaxRetries        int              `yaml:"max_retries,omitempty"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff,omitempty"`       // fixed|linear|exponential (default linear)
	RetryInitialDelay string           `yaml:"retry_initial_delay,omitempty"` // duration string (default 500ms)
	RetryMaxDelay     string           `yaml:"retry_max_delay,omitempty"`     // cap for growth (default 10s)
}

// PushEnabled resolves the tri-state push flag (default true).
func (p PublishConfig) PushEnabled() bool {
	return p.Push == nil || *p.Push
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string { return c.path }

// SectionIDs returns the configured section ids as a set.
func (c *Config) SectionIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(c.Sections))
	for _, s := range c.Sections {
		ids[s.ID] = struct{}{}
	}
	return ids
}

// Load reads, expands, defaults and validates the configuration at configPath.
//
// A .env (and .env.local) file next to the configuration is loaded first;
// variables already present in the process environment win. ${VAR}
// references in the file are expanded before YAML decoding.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	if loaded := loadEnvFiles(filepath.Dir(configPath)); len(loaded) > 0 {
		slog.Debug("Loaded environment files", "files", loaded)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.ConfigError("failed to read config file").WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, errors.ConfigError("failed to parse config file").WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	cfg.path = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration YAML and applies defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
