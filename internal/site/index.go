package site

import (
	"sort"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// PostEntry is the index view of a published post.
type PostEntry struct {
	Title        string
	URL          string
	Date         Date
	Category     string
	ExternalLink string
	Location     string
	Summary      string
}

// SectionGroup lists the published posts of one configured section.
type SectionGroup struct {
	ID    string
	Title string
	Posts []PostEntry
}

// SortPosts orders posts by date, newest first. Posts sharing a date keep
// their relative order.
func SortPosts(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date.Time)
	})
}

// GroupSections groups published posts by configured section, in configuration
// order. Sections without posts are omitted.
func GroupSections(posts []*Post, sections []config.Section) []SectionGroup {
	groups := make([]SectionGroup, 0, len(sections))
	for _, s := range sections {
		var entries []PostEntry
		for _, p := range posts {
			if !p.Published || p.Section != s.ID {
				continue
			}
			entries = append(entries, entryFor(p))
		}
		if len(entries) == 0 {
			continue
		}
		groups = append(groups, SectionGroup{ID: s.ID, Title: s.Title, Posts: entries})
	}
	return groups
}

func entryFor(p *Post) PostEntry {
	return PostEntry{
		Title:        p.Title,
		URL:          p.Filename,
		Date:         p.Date,
		Category:     p.Section,
		ExternalLink: p.ExternalLink,
		Location:     p.Location,
		Summary:      p.Summary,
	}
}
