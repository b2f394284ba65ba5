package site

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/media"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

// Generator builds the static site for one configuration.
type Generator struct {
	config    *config.Config
	paths     Paths
	outputDir string // final output dir
	stageDir  string // ephemeral staging dir for current build

	engine     *templates.Engine
	converter  *markdown.Converter
	transcoder *media.Transcoder
	recorder   metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewGenerator creates a generator for cfg using the given input and output locations.
func NewGenerator(cfg *config.Config, paths Paths) *Generator {
	logger := slog.Default()
	return &Generator{
		config:     cfg,
		paths:      paths,
		outputDir:  filepath.Clean(paths.Output),
		engine:     templates.NewEngine(paths.Templates),
		converter:  markdown.NewConverter(markdown.Options{}),
		transcoder: media.NewTranscoder(media.WithLogger(logger)),
		recorder:   metrics.NoopRecorder{},
		logger:     logger,
		now:        time.Now,
	}
}

// WithRecorder injects a metrics recorder (optional). Returns the generator for chaining.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r == nil {
		g.recorder = metrics.NoopRecorder{}
		return g
	}
	g.recorder = r
	return g
}

// WithLogger replaces the logger used for progress output.
func (g *Generator) WithLogger(l *slog.Logger) *Generator {
	if l != nil {
		g.logger = l
		g.transcoder = media.NewTranscoder(media.WithLogger(l))
	}
	return g
}

// WithTranscoder replaces the media transcoder.
func (g *Generator) WithTranscoder(t *media.Transcoder) *Generator {
	if t != nil {
		g.transcoder = t
	}
	return g
}

// WithClock replaces the clock used for default post dates and the current year.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	if now != nil {
		g.now = now
	}
	return g
}

// OutputDir returns the final output directory.
func (g *Generator) OutputDir() string { return g.outputDir }

// Build runs every stage and promotes the result over the output directory.
//
// The returned report is never nil. On error the previous output is left in
// place and the error is classified for the CLI exit code.
func (g *Generator) Build(ctx context.Context) (*BuildReport, error) {
	report := newBuildReport(uuid.NewString())
	logger := g.logger.With(logfields.BuildID(report.BuildID))
	base := g.logger
	g.logger = logger
	defer func() { g.logger = base }()

	logger.Info("Starting build", logfields.Path(g.paths.Root), "output", g.outputDir)

	if err := g.beginStaging(); err != nil {
		report.Errors = append(report.Errors, err)
		return g.complete(report), errors.FileSystemError("failed to prepare staging directory").WithCause(err).
			WithContext("path", stagingPath(g.outputDir)).
			Build()
	}

	bs := newBuildState(g, report)
	if err := runStages(ctx, bs, defaultStages()); err != nil {
		g.abortStaging()
		g.complete(report)
		err = classifyBuildError(err)
		if errors.HasCategory(err, errors.CategoryRuntime) {
			logger.Warn("Build canceled", logfields.Error(err))
		} else {
			logger.Error("Build failed", logfields.Error(err), "outcome", string(report.Outcome))
		}
		return report, err
	}

	if err := g.finalizeStaging(); err != nil {
		g.abortStaging()
		report.Errors = append(report.Errors, err)
		g.complete(report)
		return report, errors.FileSystemError("failed to promote build output").WithCause(err).
			WithContext("path", g.outputDir).
			Build()
	}

	g.complete(report)
	logger.Info("Build complete",
		"output", g.outputDir,
		"pages", report.RenderedPages,
		"warnings", len(report.Warnings),
		"outcome", string(report.Outcome),
		logfields.DurationMS(float64(report.End.Sub(report.Start).Microseconds())/1000))
	return report, nil
}

func (g *Generator) complete(report *BuildReport) *BuildReport {
	report.finish()
	report.deriveOutcome()
	g.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	g.recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))
	return report
}

// classifyBuildError makes sure the error returned from Build carries a
// category. Stage errors wrapping a classified cause keep that cause's category.
func classifyBuildError(err error) error {
	if errors.IsClassified(err) {
		return err
	}
	var se *StageError
	if stdErrors.As(err, &se) && se.Kind == StageErrorCanceled {
		return errors.WrapError(err, errors.CategoryRuntime, "build canceled").Build()
	}
	return errors.BuildError("build failed").WithCause(err).Build()
}
