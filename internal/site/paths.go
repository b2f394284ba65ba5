package site

import (
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// Conventional directory names relative to the site root.
const (
	PostsDir     = "_posts"
	TemplatesDir = "_templates"
	ThemesDir    = "_themes"
	MediaDir     = "_media"
	OutputDir    = "_site"

	// MediaOutputDir is the media directory inside the output tree.
	MediaOutputDir = "media"
	// NoJekyllFile disables Jekyll processing on GitHub Pages style hosts.
	NoJekyllFile = ".nojekyll"
	// IndexTemplate renders the home page.
	IndexTemplate = "index.html"
	// IndexFile is the home page inside the output tree.
	IndexFile = "index.html"
)

// Paths locates the inputs and the output of a build.
type Paths struct {
	Root      string
	Config    string
	Posts     string
	Templates string
	Themes    string
	Media     string
	Output    string
}

// DefaultPaths returns the conventional layout below root.
func DefaultPaths(root string) Paths {
	return Paths{
		Root:      root,
		Config:    filepath.Join(root, config.DefaultFileName),
		Posts:     filepath.Join(root, PostsDir),
		Templates: filepath.Join(root, TemplatesDir),
		Themes:    filepath.Join(root, ThemesDir),
		Media:     filepath.Join(root, MediaDir),
		Output:    filepath.Join(root, OutputDir),
	}
}

// WithOverrides replaces the config and output locations when non-empty.
// Relative overrides are taken as given (relative to the working directory).
func (p Paths) WithOverrides(configPath, output string) Paths {
	if configPath != "" {
		p.Config = configPath
	}
	if output != "" {
		p.Output = output
	}
	return p
}
