package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/slug"
)

const (
	// DefaultSection receives posts whose category is absent or unknown.
	DefaultSection = "blog"
	// DefaultPostTemplate renders posts without a template override.
	DefaultPostTemplate = "post"

	defaultExcerptLength = 160
)

// Date is a post date. It prints as 2006-01-02 unless it carries a time of day.
type Date struct {
	time.Time
}

func (d Date) String() string {
	if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 {
		return d.Format(time.DateOnly)
	}
	return d.Format(time.DateTime)
}

// Today returns the calendar date of now as a Date at midnight.
func Today(now time.Time) Date {
	y, m, d := now.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Post is a resolved post ready to render.
type Post struct {
	Source       string
	Title        string
	Date         Date
	Filename     string
	HTML         string
	Location     string
	ExternalLink string
	Section      string
	Published    bool
	Template     string
	Summary      string
	Fingerprint  string
}

// LoadOptions carries the collaborators LoadPost needs.
type LoadOptions struct {
	// Sections is the set of configured section ids.
	Sections  map[string]struct{}
	Converter *markdown.Converter
	// Now supplies the build date for posts without one.
	Now func() time.Time
}

// LoadPost reads one Markdown source and resolves its metadata and HTML.
func LoadPost(path string, opts LoadOptions) (*Post, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileSystemError("failed to read post").WithCause(err).
			WithContext("file", path).
			Build()
	}

	fields, body, err := frontmatter.Parse(content)
	if err != nil {
		return nil, contentError(path, "invalid front matter", err)
	}

	p, err := resolvePost(path, fields, opts)
	if err != nil {
		return nil, contentError(path, "invalid front matter value", err)
	}

	converter := opts.Converter
	if converter == nil {
		converter = markdown.NewConverter(markdown.Options{})
	}
	html, err := converter.Convert(body)
	if err != nil {
		return nil, contentError(path, "failed to render markdown", err)
	}
	p.HTML = string(html)
	if p.Summary == "" {
		p.Summary = markdown.Excerpt(p.HTML, defaultExcerptLength)
	}

	if p.Fingerprint, err = frontmatter.Fingerprint(fields, body); err != nil {
		return nil, contentError(path, "failed to fingerprint post", err)
	}
	return p, nil
}

func contentError(path, msg string, cause error) error {
	return errors.ContentError(msg).WithCause(cause).
		WithContext("file", path).
		Build()
}

func resolvePost(path string, fields frontmatter.Fields, opts LoadOptions) (*Post, error) {
	p := &Post{Source: path}
	var err error

	if p.Title, err = fields.String("title"); err != nil {
		return nil, err
	}
	if p.Location, err = fields.String("location"); err != nil {
		return nil, err
	}
	if p.ExternalLink, err = fields.String("link"); err != nil {
		return nil, err
	}
	if p.Summary, err = fields.String("summary"); err != nil {
		return nil, err
	}
	if p.Published, err = fields.Bool("published", true); err != nil {
		return nil, err
	}

	date, ok, err := fields.Date("date")
	if err != nil {
		return nil, err
	}
	if ok {
		p.Date = Date{date}
	} else {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		p.Date = Today(now())
	}

	if p.Filename, err = resolveFilename(path, fields, p.Title); err != nil {
		return nil, err
	}
	if p.Section, err = resolveSection(fields, opts.Sections); err != nil {
		return nil, err
	}
	if p.Template, err = resolveTemplate(fields); err != nil {
		return nil, err
	}
	return p, nil
}

// resolveFilename applies the precedence explicit slug, slugified title,
// source base name. The result always ends in .html.
func resolveFilename(path string, fields frontmatter.Fields, title string) (string, error) {
	explicit, err := fields.String("slug")
	if err != nil {
		return "", err
	}
	if s := strings.TrimSpace(explicit); s != "" {
		if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
			return "", fmt.Errorf("slug %q must not contain path separators", explicit)
		}
		return s + ".html", nil
	}

	if base := slug.Slugify(title); base != "" {
		return base + ".html", nil
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return stem + ".html", nil
}

// resolveSection returns the category (or section) when it is configured and
// DefaultSection otherwise.
func resolveSection(fields frontmatter.Fields, sections map[string]struct{}) (string, error) {
	id, err := fields.String("category")
	if err != nil {
		return "", err
	}
	if id == "" {
		if id, err = fields.String("section"); err != nil {
			return "", err
		}
	}
	if _, ok := sections[id]; ok && id != "" {
		return id, nil
	}
	return DefaultSection, nil
}

func resolveTemplate(fields frontmatter.Fields) (string, error) {
	name, err := fields.String("template")
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPostTemplate
	}
	if !strings.HasSuffix(name, ".html") {
		name += ".html"
	}
	return name, nil
}
