package site

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/fileutil"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// BuildState carries mutable state across stages.
type BuildState struct {
	Generator *Generator
	Report    *BuildReport
	// Global is the render context shared by every page.
	Global templates.Context
	// Posts holds published posts; sorted by the sort_posts stage.
	Posts []*Post
	// outputs maps each written filename to the source that produced it.
	outputs map[string]string
	Timings map[StageName]time.Duration
}

func newBuildState(g *Generator, report *BuildReport) *BuildState {
	return &BuildState{
		Generator: g,
		Report:    report,
		Global:    globalContext(g.config, g.now()),
		outputs:   make(map[string]string),
		Timings:   make(map[StageName]time.Duration),
	}
}

// runStages executes stages in order, recording timing and stopping on first fatal error.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	g := bs.Generator
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.Name, ctx.Err())
			bs.Report.Errors = append(bs.Report.Errors, se)
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.AddIssue(IssueCanceled, st.Name, SeverityError, "", "build canceled")
			g.recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return se
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Timings[st.Name] = dur
		bs.Report.StageDurations[string(st.Name)] = dur
		g.recorder.ObserveStageDuration(string(st.Name), dur)
		g.logger.Debug("Stage finished", logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur.Microseconds())/1000))

		sc := bs.Report.StageCounts[st.Name]
		if err == nil {
			sc.Success++
			bs.Report.StageCounts[st.Name] = sc
			g.recorder.IncStageResult(string(st.Name), metrics.ResultSuccess)
			continue
		}

		var se *StageError
		if !stdErrors.As(err, &se) {
			// Wrap unknown errors as fatal by default.
			se = newFatalStageError(st.Name, err)
			bs.Report.AddIssue(IssueGenericStageError, st.Name, SeverityError, "", err.Error())
		}
		bs.Report.StageErrorKinds[st.Name] = se.Kind
		switch se.Kind {
		case StageErrorWarning:
			sc.Warning++
			bs.Report.StageCounts[st.Name] = sc
			bs.Report.Warnings = append(bs.Report.Warnings, se)
			g.recorder.IncStageResult(string(st.Name), metrics.ResultWarning)
			continue // proceed to next stage
		case StageErrorCanceled:
			sc.Canceled++
			bs.Report.StageCounts[st.Name] = sc
			bs.Report.Errors = append(bs.Report.Errors, se)
			g.recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return se
		default:
			sc.Fatal++
			bs.Report.StageCounts[st.Name] = sc
			bs.Report.Errors = append(bs.Report.Errors, se)
			g.recorder.IncStageResult(string(st.Name), metrics.ResultFatal)
			return se
		}
	}
	return nil
}

// stagePrepareOutput checks the index template up front so a broken template
// set fails before any post is rendered, then writes the hosting marker.
func stagePrepareOutput(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	if !g.engine.Has(IndexTemplate) {
		err := fmt.Errorf("%w: %q", templates.ErrTemplateNotFound, IndexTemplate)
		return newFatalStageError(StagePrepareOutput, g.templateError(bs, StagePrepareOutput, IndexTemplate, IndexFile, err))
	}

	marker := filepath.Join(g.stageDir, NoJekyllFile)
	if err := os.WriteFile(marker, nil, 0o644); err != nil { //nolint:gosec // published file
		return newFatalStageError(StagePrepareOutput,
			errors.FileSystemError("failed to write hosting marker").WithCause(err).
				WithContext("path", marker).Build())
	}
	return nil
}

// stageRenderPosts loads and renders every *.md file directly inside the posts directory.
func stageRenderPosts(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	entries, err := os.ReadDir(g.paths.Posts)
	if stdErrors.Is(err, fs.ErrNotExist) {
		g.logger.Warn("No posts directory found", logfields.Path(g.paths.Posts))
		bs.Report.AddIssue(IssueNoPosts, StageRenderPosts, SeverityWarning, "", "posts directory does not exist")
		return nil
	}
	if err != nil {
		return newFatalStageError(StageRenderPosts,
			errors.FileSystemError("failed to read posts directory").WithCause(err).
				WithContext("path", g.paths.Posts).Build())
	}

	opts := LoadOptions{Sections: g.config.SectionIDs(), Converter: g.converter, Now: g.now}
	var failures []error
	rendered := 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return newCanceledStageError(StageRenderPosts, err)
		}
		if !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		src := filepath.Join(g.paths.Posts, entry.Name())
		if info, err := os.Stat(src); err != nil || !info.Mode().IsRegular() {
			continue
		}
		bs.Report.Sources++

		post, err := LoadPost(src, opts)
		if err != nil {
			failures = append(failures, err)
			bs.Report.FailedPosts++
			bs.Report.AddIssue(IssuePostLoadFailure, StageRenderPosts, SeverityError, entry.Name(), err.Error())
			g.logger.Error("Failed to load post", logfields.File(entry.Name()), logfields.Error(err))
			continue
		}

		if err := g.renderPost(bs, post); err != nil {
			return newFatalStageError(StageRenderPosts, err)
		}
		rendered++
		bs.Report.Posts = append(bs.Report.Posts, PostRecord{
			Source:      entry.Name(),
			Output:      post.Filename,
			Section:     post.Section,
			Published:   post.Published,
			Fingerprint: post.Fingerprint,
		})
		if post.Published {
			bs.Posts = append(bs.Posts, post)
		}
	}

	bs.Report.RenderedPages += rendered
	bs.Report.PublishedPosts = len(bs.Posts)
	g.recorder.AddPagesRendered("post", rendered)

	if len(failures) == 0 {
		return nil
	}
	failErr := errors.ContentError(fmt.Sprintf("%d post(s) could not be loaded", len(failures))).
		WithCause(stdErrors.Join(failures...)).
		Build()
	if g.config.Build.FailOnPostErrorEnabled() {
		return newFatalStageError(StageRenderPosts, failErr)
	}
	g.logger.Warn("Skipped posts that could not be loaded", logfields.Count(len(failures)))
	return newWarnStageError(StageRenderPosts, failErr)
}

// renderPost renders one post through its template and writes it to the staging directory.
func (g *Generator) renderPost(bs *BuildState, post *Post) error {
	out, err := g.engine.Render(post.Template, bs.Global.With(postContext(post)))
	if err != nil {
		return g.templateError(bs, StageRenderPosts, post.Template, filepath.Base(post.Source), err)
	}

	if prev, ok := bs.outputs[post.Filename]; ok {
		msg := fmt.Sprintf("%s overwrites output of %s", filepath.Base(post.Source), prev)
		g.logger.Warn("Output filename collision", logfields.File(post.Filename), "previous", prev, "source", filepath.Base(post.Source))
		bs.Report.AddIssue(IssueFilenameCollision, StageRenderPosts, SeverityWarning, post.Filename, msg)
	}
	bs.outputs[post.Filename] = filepath.Base(post.Source)

	if err := writePage(g.stageDir, post.Filename, out); err != nil {
		return err
	}
	g.logger.Info("Generated", logfields.File(post.Filename))
	return nil
}

func (g *Generator) templateError(bs *BuildState, stage StageName, name, file string, err error) error {
	if stdErrors.Is(err, templates.ErrTemplateNotFound) {
		bs.Report.AddIssue(IssueTemplateNotFound, stage, SeverityError, file, err.Error())
		return errors.TemplateError("template not found").WithCause(err).
			WithContext("template", name).
			WithContext("file", file).
			Build()
	}
	bs.Report.AddIssue(IssueTemplateRender, stage, SeverityError, file, err.Error())
	return errors.TemplateError("failed to render template").WithCause(err).
		WithContext("template", name).
		WithContext("file", file).
		Build()
}

func writePage(dir, name string, content []byte) error {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, content, 0o644); err != nil { //nolint:gosec // published file
		return errors.FileSystemError("failed to write page").WithCause(err).
			WithContext("path", p).Build()
	}
	return nil
}

func stageSortPosts(_ context.Context, bs *BuildState) error {
	SortPosts(bs.Posts)
	return nil
}

func stageRenderIndex(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	groups := GroupSections(bs.Posts, g.config.Sections)
	out, err := g.engine.Render(IndexTemplate, bs.Global.With(indexContext(g.config, groups)))
	if err != nil {
		return newFatalStageError(StageRenderIndex, g.templateError(bs, StageRenderIndex, IndexTemplate, IndexFile, err))
	}
	if prev, ok := bs.outputs[IndexFile]; ok {
		msg := fmt.Sprintf("index overwrites output of %s", prev)
		g.logger.Warn("Output filename collision", logfields.File(IndexFile), "previous", prev, "source", "index")
		bs.Report.AddIssue(IssueFilenameCollision, StageRenderIndex, SeverityWarning, IndexFile, msg)
	}
	bs.outputs[IndexFile] = IndexTemplate
	if err := writePage(g.stageDir, IndexFile, out); err != nil {
		return newFatalStageError(StageRenderIndex, err)
	}
	bs.Report.RenderedPages++
	g.recorder.AddPagesRendered("index", 1)
	g.logger.Info("Index generated", logfields.Count(len(groups)))
	return nil
}

// stageCopyTheme copies the configured theme file to the output root. A
// missing theme degrades the build to a warning.
func stageCopyTheme(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	theme := g.config.Theme
	if theme == "" {
		g.logger.Warn("No theme configured")
		bs.Report.AddIssue(IssueThemeMissing, StageCopyTheme, SeverityWarning, "", "no theme configured")
		return newWarnStageError(StageCopyTheme, errors.NewError(errors.CategoryNotFound, "no theme configured").Warning().Build())
	}

	src := filepath.Join(g.paths.Themes, theme)
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		g.logger.Warn("Theme file not found", logfields.Path(src))
		bs.Report.AddIssue(IssueThemeMissing, StageCopyTheme, SeverityWarning, theme, "theme file not found")
		return newWarnStageError(StageCopyTheme, errors.NewError(errors.CategoryNotFound, "theme file not found").
			Warning().
			WithContext("path", src).
			Build())
	}

	if err := fileutil.CopyFile(src, filepath.Join(g.stageDir, theme)); err != nil {
		return newFatalStageError(StageCopyTheme, errors.FileSystemError("failed to copy theme").WithCause(err).
			WithContext("path", src).Build())
	}
	bs.Report.ThemeCopied = true
	g.logger.Info("Theme copied", logfields.Name(theme))
	return nil
}

func stageTranscodeMedia(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	res, err := g.transcoder.Transcode(ctx, g.paths.Media, filepath.Join(g.stageDir, MediaOutputDir))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return newCanceledStageError(StageTranscodeMedia, ctxErr)
		}
		return newFatalStageError(StageTranscodeMedia, errors.WrapError(err, errors.CategoryMedia, "media processing failed").
			WithContext("path", g.paths.Media).Build())
	}
	if res.Skipped {
		g.logger.Info("No media directory found, skipping", logfields.Path(g.paths.Media))
		return nil
	}

	bs.Report.MediaConverted = res.Converted
	bs.Report.MediaCopied = res.Copied
	bs.Report.MediaFailed = len(res.Failed)
	g.recorder.AddMediaFiles(metrics.MediaConverted, res.Converted)
	g.recorder.AddMediaFiles(metrics.MediaCopied, res.Copied)
	g.recorder.AddMediaFiles(metrics.MediaFailed, len(res.Failed))
	g.logger.Info("Media processed", "converted", res.Converted, "copied", res.Copied, "failed", len(res.Failed))

	if len(res.Failed) == 0 {
		return nil
	}
	causes := make([]error, 0, len(res.Failed))
	for _, f := range res.Failed {
		bs.Report.AddIssue(IssueMediaFailure, StageTranscodeMedia, SeverityWarning, f.Name, f.Err.Error())
		causes = append(causes, f)
	}
	return newWarnStageError(StageTranscodeMedia, errors.MediaError(fmt.Sprintf("%d media file(s) failed", len(res.Failed))).
		WithCause(stdErrors.Join(causes...)).
		Build())
}
