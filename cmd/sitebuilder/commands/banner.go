package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

var (
	successColor = lipgloss.Color("#10b981")
	warningColor = lipgloss.Color("#f59e0b")
	errorColor   = lipgloss.Color("#ef4444")
	mutedColor   = lipgloss.Color("#94a3b8")

	labelStyle = lipgloss.NewStyle().Foreground(mutedColor).Width(12)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

func outcomeColor(o site.BuildOutcome) lipgloss.Color {
	switch o {
	case site.OutcomeSuccess:
		return successColor
	case site.OutcomeWarning:
		return warningColor
	default:
		return errorColor
	}
}

// renderSummary draws the end-of-build banner.
func renderSummary(r *site.BuildReport, output string) string {
	color := outcomeColor(r.Outcome)
	title := lipgloss.NewStyle().Bold(true).Foreground(color).
		Render(fmt.Sprintf("Build %s", strings.ToUpper(string(r.Outcome))))

	rows := []struct{ label, value string }{
		{"output", output},
		{"posts", fmt.Sprintf("%d found, %d published, %d failed", r.Sources, r.PublishedPosts, r.FailedPosts)},
		{"pages", fmt.Sprint(r.RenderedPages)},
		{"media", fmt.Sprintf("%d converted, %d copied, %d failed", r.MediaConverted, r.MediaCopied, r.MediaFailed)},
		{"duration", r.End.Sub(r.Start).Round(time.Millisecond).String()},
	}
	lines := []string{title}
	for _, row := range rows {
		lines = append(lines, labelStyle.Render(row.label)+row.value)
	}
	for _, is := range r.Issues {
		lines = append(lines, lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("! %s %s %s", is.Code, is.File, is.Message)))
	}
	return boxStyle.BorderForeground(color).Render(strings.Join(lines, "\n"))
}
