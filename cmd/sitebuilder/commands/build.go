package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory (default <root>/_site)" type:"path"`
	Report      string `name:"report" help:"Write a JSON build report (and .txt summary) to this path" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, paths, err := root.LoadConfig()
	if err != nil {
		return err
	}
	paths = paths.WithOverrides("", b.Output)

	ctx, cancel := signalContext()
	defer cancel()
	_, err = RunBuild(ctx, cfg, paths, BuildOptions{
		ReportFile:  firstNonEmpty(b.Report, resolvePath(paths.Root, cfg.Build.ReportFile)),
		MetricsFile: firstNonEmpty(b.MetricsFile, resolvePath(paths.Root, cfg.Build.MetricsFile)),
		Logger:      loggerOf(g),
		Out:         os.Stdout,
	})
	return err
}

// BuildOptions carries the optional outputs of a build.
type BuildOptions struct {
	ReportFile  string
	MetricsFile string
	Logger      *slog.Logger
	// Out receives the summary banner; nil disables it.
	Out io.Writer
}

// RunBuild builds the site and writes the report, metrics and summary banner.
// The report is returned even when the build fails.
func RunBuild(ctx context.Context, cfg *config.Config, paths site.Paths, opts BuildOptions) (*site.BuildReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if opts.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	gen := site.NewGenerator(cfg, paths).WithLogger(logger).WithRecorder(recorder)
	report, buildErr := gen.Build(ctx)

	if opts.ReportFile != "" {
		if err := report.Persist(opts.ReportFile); err != nil {
			logger.Warn("Failed to write build report", logfields.Path(opts.ReportFile), logfields.Error(err))
		} else {
			logger.Debug("Build report written", logfields.Path(opts.ReportFile))
		}
	}
	if prom != nil {
		if err := metrics.WriteTextfile(opts.MetricsFile, prom.Registry()); err != nil {
			logger.Warn("Failed to write metrics file", logfields.Path(opts.MetricsFile), logfields.Error(err))
		}
	}
	if opts.Out != nil {
		_, _ = fmt.Fprintln(opts.Out, renderSummary(report, gen.OutputDir()))
	}

	return report, buildErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
