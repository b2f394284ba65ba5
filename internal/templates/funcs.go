package templates

import (
	"html/template"
	"time"
)

type formatter interface {
	Format(layout string) string
}

func builtinFuncs() template.FuncMap {
	return template.FuncMap{
		// safe marks trusted markup (rendered Markdown, config snippets) as HTML.
		"safe": func(s any) template.HTML {
			switch v := s.(type) {
			case template.HTML:
				return v
			case string:
				return template.HTML(v) //nolint:gosec // site content is trusted
			default:
				return ""
			}
		},
		"safeURL": func(s string) template.URL {
			return template.URL(s) //nolint:gosec // config values are trusted
		},
		"dateFormat": func(layout string, v any) string {
			switch t := v.(type) {
			case time.Time:
				return t.Format(layout)
			case formatter:
				return t.Format(layout)
			default:
				return ""
			}
		},
		"default": func(def, v any) any {
			if v == nil {
				return def
			}
			if s, ok := v.(string); ok && s == "" {
				return def
			}
			return v
		},
	}
}
