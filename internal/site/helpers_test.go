package site

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/media"
)

var fixedNow = time.Date(2025, 3, 1, 15, 4, 5, 0, time.UTC)

const (
	testBaseLayout = `<html lang="{{.lang}}"><title>{{.page_title}}</title><body>{{block "content" .}}{{end}}</body></html>`
	testPostTpl    = `{{template "layouts/base.html" .}}{{define "content"}}<h1 class="title">{{.title}}</h1><time>{{.date}}</time>{{with .location}}<p>{{.}}</p>{{end}}{{.content}}{{end}}`
	testIndexTpl   = `{{template "layouts/base.html" .}}{{define "content"}}{{range .sections}}<section id="{{.ID}}"><h2>{{.Title}}</h2>{{range .Posts}}<a href="{{.URL}}">{{.Title}}</a>;{{end}}</section>{{end}}{{if .is_home}}<footer>home</footer>{{end}}{{end}}`
	testConfig     = `lang: en
title: Test Site
author: Tester
theme: style.css
menu:
  - name: Home
    url: /
sections:
  - id: blog
    title: Blog
  - id: notes
    title: Notes
`
)

// testSite is a throwaway site root with templates, a theme and a config.
type testSite struct {
	t    *testing.T
	root string
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	s := &testSite{t: t, root: t.TempDir()}
	s.write(config.DefaultFileName, testConfig)
	s.write("_templates/layouts/base.html", testBaseLayout)
	s.write("_templates/post.html", testPostTpl)
	s.write("_templates/index.html", testIndexTpl)
	s.write("_themes/style.css", "body{}")
	require.NoError(t, os.MkdirAll(filepath.Join(s.root, PostsDir), 0o750))
	return s
}

func (s *testSite) write(rel, content string) {
	s.t.Helper()
	p := filepath.Join(s.root, filepath.FromSlash(rel))
	require.NoError(s.t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(s.t, os.WriteFile(p, []byte(content), 0o600))
}

func (s *testSite) post(name, content string) {
	s.t.Helper()
	s.write(filepath.Join(PostsDir, name), content)
}

func (s *testSite) paths() Paths { return DefaultPaths(s.root) }

func (s *testSite) output(rel string) string {
	return filepath.Join(s.paths().Output, filepath.FromSlash(rel))
}

func (s *testSite) read(rel string) string {
	s.t.Helper()
	b, err := os.ReadFile(s.output(rel))
	require.NoError(s.t, err)
	return string(b)
}

func (s *testSite) generator() *Generator {
	s.t.Helper()
	cfg, err := config.Load(s.paths().Config)
	require.NoError(s.t, err)
	logger := quietLogger()
	return NewGenerator(cfg, s.paths()).
		WithLogger(logger).
		WithTranscoder(media.NewTranscoder(media.WithLogger(logger), media.WithEncoder(stubEncoder{}))).
		WithClock(func() time.Time { return fixedNow })
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
