package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
lang: de
title: Mein Blog
author: Ada
theme: style.css
menu:
  - name: Home
    url: /
footer:
  - title: Links
sections:
  - id: blog
    title: Blog
  - id: notes
    title: Notes
bottom_sections:
  - title: About
build:
  fail_on_post_error: false
  report_file: build-report.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "de", cfg.Lang)
	require.Equal(t, "Mein Blog", cfg.Title)
	require.Equal(t, "style.css", cfg.Theme)
	require.Len(t, cfg.Menu, 1)
	require.Equal(t, "Home", cfg.Menu[0]["name"])
	require.Equal(t, []Section{{ID: "blog", Title: "Blog"}, {ID: "notes", Title: "Notes"}}, cfg.Sections)
	require.Len(t, cfg.BottomSections, 1)
	require.False(t, cfg.Build.FailOnPostErrorEnabled())
	require.Equal(t, "build-report.json", cfg.Build.ReportFile)
	require.Equal(t, path, cfg.Path())

	require.Contains(t, cfg.SectionIDs(), "notes")
	require.NotContains(t, cfg.SectionIDs(), "misc")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "title: Minimal\n"))
	require.NoError(t, err)
	require.Equal(t, DefaultLang, cfg.Lang)
	require.True(t, cfg.Build.FailOnPostErrorEnabled())
	require.Equal(t, DefaultPublishBranch, cfg.Publish.Branch)
	require.Equal(t, DefaultPublishMessage, cfg.Publish.Message)
	require.True(t, cfg.Publish.PushEnabled())
	require.Empty(t, cfg.Sections)
}

func TestLoad_InvalidLangIsKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "lang: not_a_tag!!\n"))
	require.NoError(t, err)
	require.Equal(t, "not_a_tag!!", cfg.Lang)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), DefaultFileName))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.Contains(t, err.Error(), "configuration file not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, t.TempDir(), "title: [broken\n"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_ExpandsEnvAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SITEBUILDER_TEST_AUTHOR=From Dotenv\nSITEBUILDER_TEST_TITLE=ignored\n"), 0o600))
	t.Setenv("SITEBUILDER_TEST_TITLE", "From Env")
	t.Cleanup(func() { _ = os.Unsetenv("SITEBUILDER_TEST_AUTHOR") })

	cfg, err := Load(writeConfig(t, dir, "title: ${SITEBUILDER_TEST_TITLE}\nauthor: ${SITEBUILDER_TEST_AUTHOR}\n"))
	require.NoError(t, err)
	require.Equal(t, "From Env", cfg.Title)
	require.Equal(t, "From Dotenv", cfg.Author)
}

func TestValidate_Sections(t *testing.T) {
	tests := []struct {
		name     string
		sections []Section
		wantErr  string
	}{
		{name: "ok", sections: []Section{{ID: "a"}, {ID: "b"}}},
		{name: "duplicate", sections: []Section{{ID: "a"}, {ID: "a"}}, wantErr: "duplicate section id"},
		{name: "empty id", sections: []Section{{ID: " ", Title: "x"}}, wantErr: "id cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Sections: tt.sections}
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
			require.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestValidate_ThemeMustBeFileName(t *testing.T) {
	require.NoError(t, (&Config{Theme: "style.css"}).Validate())
	require.Error(t, (&Config{Theme: "../secret.css"}).Validate())
	require.Error(t, (&Config{Theme: "sub/style.css"}).Validate())
}

func TestValidatePublish(t *testing.T) {
	cfg, err := Parse([]byte("title: x\n"))
	require.NoError(t, err)
	require.Error(t, cfg.ValidatePublish())

	cfg.Publish.Repository = "https://example.com/site.git"
	require.NoError(t, cfg.ValidatePublish())

	cfg.Publish.Branch = "bad branch"
	require.Error(t, cfg.ValidatePublish())
}

func TestValidatePublish_Retry(t *testing.T) {
	cfg, err := Parse([]byte(`
publish:
  repository: /srv/site.git
  max_retries: 3
  retry_backoff: Exponential
  retry_initial_delay: 250ms
  retry_max_delay: 5s
`))
	require.NoError(t, err)
	require.NoError(t, cfg.ValidatePublish())
	require.Equal(t, 3, cfg.Publish.MaxRetries)
	require.Equal(t, RetryBackoffExponential, cfg.Publish.RetryBackoff)

	cfg.Publish.RetryMaxDelay = "soon"
	err = cfg.ValidatePublish()
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))

	cfg.Publish.RetryMaxDelay = ""
	cfg.Publish.MaxRetries = -1
	require.Error(t, cfg.ValidatePublish())
}

func TestNormalizeRetryBackoff(t *testing.T) {
	require.Equal(t, RetryBackoffFixed, NormalizeRetryBackoff(" FIXED "))
	require.Equal(t, RetryBackoffLinear, NormalizeRetryBackoff(""))
	require.Equal(t, RetryBackoffLinear, NormalizeRetryBackoff("quadratic"))

	mode, err := ParseRetryBackoff("quadratic")
	require.Error(t, err)
	require.Equal(t, RetryBackoffLinear, mode)
}

func TestNormalizeLogLevel(t *testing.T) {
	require.Equal(t, LogLevelDebug, NormalizeLogLevel(" DEBUG "))
	require.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	require.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
	require.Equal(t, "ERROR", LogLevelError.SlogLevel().String())
}
