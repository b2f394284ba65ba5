package config

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed all:scaffold
var scaffoldFS embed.FS

// Init scaffolds a new site in dir: a configuration file, templates, a theme
// and a sample post. Existing files are only replaced when force is set.
func Init(dir string, force bool) error {
	configPath := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create site directory: %w", err)
	}

	data, err := yaml.Marshal(ExampleConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "_media"), 0o750); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	return fs.WalkDir(scaffoldFS, "scaffold", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("scaffold", filepath.FromSlash(p))
		if err != nil {
			return err
		}
		target := filepath.Join(dir, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if _, err := os.Stat(target); err == nil && !force {
			return nil
		}
		content, err := scaffoldFS.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, content, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
		return nil
	})
}

// ExampleConfig is the configuration written by Init.
func ExampleConfig() *Config {
	return &Config{
		Lang:   DefaultLang,
		Title:  "My Site",
		Author: "Your Name",
		Theme:  "style.css",
		Menu: []map[string]any{
			{"name": "Home", "url": "/"},
		},
		Footer: []map[string]any{
			{"title": "Elsewhere", "links": []any{map[string]any{"name": "Feed", "url": "/"}}},
		},
		Sections: []Section{
			{ID: "blog", Title: "Blog"},
			{ID: "notes", Title: "Notes"},
		},
		BottomSections: []map[string]any{
			{"title": "About", "text": "Built with sitebuilder."},
		},
	}
}
