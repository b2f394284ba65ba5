package site

import (
	"html/template"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

// globalContext is shared by every page of one build.
func globalContext(cfg *config.Config, now time.Time) templates.Context {
	return templates.NewContext(map[string]any{
		"lang":           cfg.Lang,
		"site_title":     cfg.Title,
		"author":         cfg.Author,
		"theme_file":     cfg.Theme,
		"menu_items":     orEmpty(cfg.Menu),
		"footer_columns": orEmpty(cfg.Footer),
		"current_year":   now.Year(),
	})
}

func postContext(p *Post) map[string]any {
	return map[string]any{
		"page_title":    p.Title,
		"title":         p.Title,
		"date":          p.Date,
		"location":      p.Location,
		"content":       template.HTML(p.HTML), //nolint:gosec // rendered from trusted site sources
		"is_post":       true,
		"external_link": p.ExternalLink,
		"section":       p.Section,
		"summary":       p.Summary,
	}
}

func indexContext(cfg *config.Config, groups []SectionGroup) map[string]any {
	return map[string]any{
		"page_title":      cfg.Title,
		"sections":        groups,
		"bottom_sections": orEmpty(cfg.BottomSections),
		"is_home":         true,
	}
}

func orEmpty(items []map[string]any) []map[string]any {
	if items == nil {
		return []map[string]any{}
	}
	return items
}
