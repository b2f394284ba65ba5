package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// LogLevelEnv overrides the log level when -v is not given.
const LogLevelEnv = "SITEBUILDER_LOG_LEVEL"

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Root    string           `short:"r" help:"Site root directory" default:"." type:"path"`
	Config  string           `short:"c" help:"Configuration file path (default <root>/_config.yml)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Render the site into the output directory"`
	Init    InitCmd    `cmd:"" help:"Scaffold a new site in the root directory"`
	Serve   ServeCmd   `cmd:"" help:"Serve the output directory over HTTP"`
	Publish PublishCmd `cmd:"" help:"Commit the output directory to a git branch and push it"`
	Info    VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	} else if env := os.Getenv(LogLevelEnv); env != "" {
		level = config.NormalizeLogLevel(env).SlogLevel()
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

// Paths resolves the site layout from the global flags.
func (c *CLI) Paths() site.Paths {
	return site.DefaultPaths(c.Root).WithOverrides(c.Config, "")
}

// LoadConfig loads the configuration for the selected site.
func (c *CLI) LoadConfig() (*config.Config, site.Paths, error) {
	paths := c.Paths()
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, paths, err
	}
	return cfg, paths, nil
}

// resolvePath anchors a configured relative path at the site root.
func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func loggerOf(g *Global) *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}
