package commands

import (
	"context"
	stdErrors "errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Output string `short:"o" help:"Directory to serve (default <root>/_site)" type:"path"`
	Addr   string `name:"addr" default:"127.0.0.1" help:"Listen address"`
	Port   int    `short:"p" name:"port" default:"8000" help:"Listen port"`
	Build  bool   `name:"build" help:"Build the site before serving"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	logger := loggerOf(g)
	ctx, cancel := signalContext()
	defer cancel()

	dir := s.Output
	if s.Build {
		cfg, paths, err := root.LoadConfig()
		if err != nil {
			return err
		}
		paths = paths.WithOverrides("", s.Output)
		if _, err := RunBuild(ctx, cfg, paths, BuildOptions{Logger: logger, Out: os.Stdout}); err != nil {
			return err
		}
		dir = paths.Output
	}
	if dir == "" {
		dir = root.Paths().Output
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return errors.NewError(errors.CategoryNotFound, "output directory not found; run build first").
			WithContext("path", dir).
			Build()
	}

	addr := net.JoinHostPort(s.Addr, strconv.Itoa(s.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           siteHandler(dir),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("Serving site", logfields.Path(dir), logfields.URL("http://"+addr+"/"))

	select {
	case err := <-errCh:
		if err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			return errors.WrapError(err, errors.CategoryRuntime, "http server failed").
				WithContext("addr", addr).
				Build()
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// siteHandler serves dir with caching disabled so rebuilt pages show up on reload.
func siteHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")
		files.ServeHTTP(w, r)
	})
}
