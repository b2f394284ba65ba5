package config

import (
	"log/slog"

	"golang.org/x/text/language"
)

const (
	// DefaultLang is used when the configuration omits lang.
	DefaultLang = "en"
	// DefaultPublishBranch is the branch publish commits to.
	DefaultPublishBranch = "gh-pages"
	// DefaultPublishMessage is the commit message used by publish.
	DefaultPublishMessage = "Publish site"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SiteDefaultApplier handles the top-level site settings.
type SiteDefaultApplier struct{}

func (SiteDefaultApplier) Domain() string { return "site" }

func (SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Lang == "" {
		cfg.Lang = DefaultLang
	} else if tag, err := language.Parse(cfg.Lang); err != nil {
		slog.Warn("Configured lang is not a valid BCP 47 tag; using it verbatim", "lang", cfg.Lang, "error", err)
	} else {
		slog.Debug("Configured lang", "lang", cfg.Lang, "tag", tag.String())
	}
	return nil
}

// PublishDefaultApplier handles publish defaults.
type PublishDefaultApplier struct{}

func (PublishDefaultApplier) Domain() string { return "publish" }

func (PublishDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Publish.Branch == "" {
		cfg.Publish.Branch = DefaultPublishBranch
	}
	if cfg.Publish.Message == "" {
		cfg.Publish.Message = DefaultPublishMessage
	}
	if cfg.Publish.AuthorName == "" {
		cfg.Publish.AuthorName = "sitebuilder"
	}
	if cfg.Publish.AuthorEmail == "" {
		cfg.Publish.AuthorEmail = "sitebuilder@localhost"
	}
	mode, err := ParseRetryBackoff(string(cfg.Publish.RetryBackoff))
	if err != nil {
		slog.Warn("Unknown publish.retry_backoff; using linear", "error", err)
	}
	cfg.Publish.RetryBackoff = mode
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{SiteDefaultApplier{}, PublishDefaultApplier{}}
}

func applyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers() {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
