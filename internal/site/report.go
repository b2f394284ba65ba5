package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/fileutil"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures high-level metrics about a site generation run.
type BuildReport struct {
	SchemaVersion   int
	BuildID         string
	Start           time.Time
	End             time.Time
	Errors          []error // fatal errors causing build abortion (at most one today)
	Warnings        []error // non-fatal issues (missing theme, skipped posts, media failures)
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount

	Sources        int // Markdown files discovered
	RenderedPages  int // post pages and index written
	PublishedPosts int
	FailedPosts    int
	MediaConverted int
	MediaCopied    int
	MediaFailed    int
	ThemeCopied    bool

	Posts   []PostRecord
	Outcome BuildOutcome
	// Issues captures structured machine-parsable issue taxonomy entries.
	Issues []ReportIssue
}

// PostRecord describes one rendered post.
type PostRecord struct {
	Source      string `json:"source"`
	Output      string `json:"output"`
	Section     string `json:"section"`
	Published   bool   `json:"published"`
	Fingerprint string `json:"fingerprint"`
}

// ReportIssueCode enumerates machine-parseable issue identifiers.
// These codes are stable contract and should only be appended (no reuse on removal).
type ReportIssueCode string

const (
	IssuePostLoadFailure   ReportIssueCode = "POST_LOAD_FAILURE"
	IssueFilenameCollision ReportIssueCode = "FILENAME_COLLISION"
	IssueTemplateNotFound  ReportIssueCode = "TEMPLATE_NOT_FOUND"
	IssueTemplateRender    ReportIssueCode = "TEMPLATE_RENDER"
	IssueThemeMissing      ReportIssueCode = "THEME_MISSING"
	IssueMediaFailure      ReportIssueCode = "MEDIA_FAILURE"
	IssueNoPosts           ReportIssueCode = "NO_POSTS"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured taxonomy entry describing a discrete problem encountered.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Message  string          `json:"message"`
	File     string          `json:"file,omitempty"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

func newBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		BuildID:         buildID,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
	}
}

// AddIssue records a structured issue.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, file, msg string) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg, File: file})
}

func (r *BuildReport) finish() { r.End = time.Now() }

// deriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *BuildReport) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("build=%s posts=%d rendered=%d published=%d failed_posts=%d media_converted=%d media_copied=%d media_failed=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.BuildID, r.Sources, r.RenderedPages, r.PublishedPosts, r.FailedPosts,
		r.MediaConverted, r.MediaCopied, r.MediaFailed,
		dur.Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), r.Outcome)
}

// Persist writes the report as JSON to path and a one-line text summary next
// to it (same name, .txt extension). Both files are written atomically.
// The report is never placed inside the output directory.
func (r *BuildReport) Persist(path string) error {
	if r.End.IsZero() {
		r.finish()
		r.deriveOutcome()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}
	jb, err := json.MarshalIndent(r.sanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, jb, 0o600); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}
	summaryPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
	if err := fileutil.WriteFileAtomic(summaryPath, []byte(r.Summary()+"\n"), 0o600); err != nil {
		return fmt.Errorf("write report summary: %w", err)
	}
	return nil
}

// sanitizedCopy converts error fields to strings for JSON friendliness.
func (r *BuildReport) sanitizedCopy() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}
	durations := make(map[string]int64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[k] = v.Milliseconds()
	}

	s := &BuildReportSerializable{
		SchemaVersion:    r.SchemaVersion,
		BuildID:          r.BuildID,
		Start:            r.Start,
		End:              r.End,
		Errors:           make([]string, len(r.Errors)),
		Warnings:         make([]string, len(r.Warnings)),
		StageDurationsMS: durations,
		StageErrorKinds:  sek,
		StageCounts:      stageCounts,
		Sources:          r.Sources,
		RenderedPages:    r.RenderedPages,
		PublishedPosts:   r.PublishedPosts,
		FailedPosts:      r.FailedPosts,
		MediaConverted:   r.MediaConverted,
		MediaCopied:      r.MediaCopied,
		MediaFailed:      r.MediaFailed,
		ThemeCopied:      r.ThemeCopied,
		Posts:            r.Posts,
		Outcome:          string(r.Outcome),
		Issues:           r.Issues,
	}
	if s.Posts == nil {
		s.Posts = []PostRecord{}
	}
	if s.Issues == nil {
		s.Issues = []ReportIssue{}
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport but with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion    int                   `json:"schema_version"`
	BuildID          string                `json:"build_id"`
	Start            time.Time             `json:"start"`
	End              time.Time             `json:"end"`
	Errors           []string              `json:"errors"`
	Warnings         []string              `json:"warnings"`
	StageDurationsMS map[string]int64      `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string     `json:"stage_error_kinds"`
	StageCounts      map[string]StageCount `json:"stage_counts"`
	Sources          int                   `json:"sources"`
	RenderedPages    int                   `json:"rendered_pages"`
	PublishedPosts   int                   `json:"published_posts"`
	FailedPosts      int                   `json:"failed_posts"`
	MediaConverted   int                   `json:"media_converted"`
	MediaCopied      int                   `json:"media_copied"`
	MediaFailed      int                   `json:"media_failed"`
	ThemeCopied      bool                  `json:"theme_copied"`
	Posts            []PostRecord          `json:"posts"`
	Outcome          string                `json:"outcome"`
	Issues           []ReportIssue         `json:"issues"`
}
