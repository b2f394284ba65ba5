// Package slug turns arbitrary titles into URL-safe identifiers.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Slugify lower-cases text, turns runs of whitespace, underscores and hyphens
// into a single hyphen and drops every other character that is not a letter or
// a number. The result never starts or ends with a hyphen and may be empty.
//
//	Slugify("Hello, World!")   // "hello-world"
//	Slugify("  snake_case  ")  // "snake-case"
//	Slugify("!!!")             // ""
func Slugify(text string) string {
	text = lower.String(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(text))
	pendingSep := false
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == '-' || r == '_' || unicode.IsSpace(r):
			pendingSep = true
		}
		// anything else is dropped without breaking a separator run
	}
	return b.String()
}
