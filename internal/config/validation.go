package config

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Validate checks the structural invariants of the configuration.
func (c *Config) Validate() error {
	v := &configurationValidator{config: c}
	return v.validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateSections(); err != nil {
		return err
	}
	if err := cv.validateTheme(); err != nil {
		return err
	}
	return nil
}

func (cv *configurationValidator) validateSections() error {
	seen := make(map[string]bool, len(cv.config.Sections))
	for i, s := range cv.config.Sections {
		if strings.TrimSpace(s.ID) == "" {
			return errors.ValidationError(fmt.Sprintf("sections[%d]: id cannot be empty", i)).
				WithContext("field", "sections").
				Build()
		}
		if seen[s.ID] {
			return errors.ValidationError("duplicate section id: " + s.ID).
				WithContext("field", "sections").
				WithContext("id", s.ID).
				Build()
		}
		seen[s.ID] = true
	}
	return nil
}

// validateTheme keeps the theme a plain file name inside the themes directory.
func (cv *configurationValidator) validateTheme() error {
	theme := cv.config.Theme
	if theme == "" {
		return nil
	}
	if strings.ContainsAny(theme, `/\`) || theme == "." || theme == ".." {
		return errors.ValidationError("theme must be a file name, not a path").
			WithContext("field", "theme").
			WithContext("value", theme).
			Build()
	}
	return nil
}

// ValidatePublish checks the settings needed by the publish command.
func (c *Config) ValidatePublish() error {
	if strings.TrimSpace(c.Publish.Repository) == "" {
		return errors.ValidationError("publish.repository is required").
			WithContext("field", "publish.repository").
			Build()
	}
	if strings.Contains(c.Publish.Branch, " ") {
		return errors.ValidationError("publish.branch is not a valid branch name").
			WithContext("field", "publish.branch").
			WithContext("value", c.Publish.Branch).
			Build()
	}
	if c.Publish.MaxRetries < 0 {
		return errors.ValidationError("publish.max_retries cannot be negative").
			WithContext("field", "publish.max_retries").
			Build()
	}
	for _, d := range []struct{ field, raw string }{
		{"publish.retry_initial_delay", c.Publish.RetryInitialDelay},
		{"publish.retry_max_delay", c.Publish.RetryMaxDelay},
	} {
		if d.raw == "" {
			continue
		}
		if _, err := time.ParseDuration(d.raw); err != nil {
			return errors.ValidationError("invalid duration").WithCause(err).
				WithContext("field", d.field).
				WithContext("value", d.raw).
				Build()
		}
	}
	return nil
}
