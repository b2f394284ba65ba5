package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/fileutil"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// FileError records a per-file failure.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string { return e.Name + ": " + e.Err.Error() }
func (e FileError) Unwrap() error { return e.Err }

// Result summarizes one Transcode run.
type Result struct {
	// Skipped is true when the source directory does not exist.
	Skipped   bool
	Converted int
	Copied    int
	Failed    []FileError
}

// Transcoder converts a flat media directory into its published form.
type Transcoder struct {
	encoder Encoder
	logger  *slog.Logger
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithEncoder replaces the WebP encoder.
func WithEncoder(enc Encoder) Option {
	return func(t *Transcoder) { t.encoder = enc }
}

// WithLogger sets the logger used for per-file progress.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transcoder) { t.logger = l }
}

// NewTranscoder returns a Transcoder encoding WebP at DefaultQuality.
func NewTranscoder(opts ...Option) *Transcoder {
	t := &Transcoder{encoder: WebPEncoder{Quality: DefaultQuality}, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcode processes every regular file directly inside src into dst.
// A missing src yields Result{Skipped: true} and no error. Subdirectories
// are not descended into. The returned error is reserved for failures that
// stop the whole run (unreadable src, uncreatable dst, cancellation).
func (t *Transcoder) Transcode(ctx context.Context, src, dst string) (Result, error) {
	var res Result

	entries, err := os.ReadDir(src)
	if errors.Is(err, fs.ErrNotExist) {
		res.Skipped = true
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read media directory: %w", err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil { //nolint:gosec // published directory
		return res, fmt.Errorf("create media output: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := entry.Name()
		srcPath := filepath.Join(src, name)

		// Stat follows symlinks so linked files are treated like their targets.
		info, err := os.Stat(srcPath)
		if err != nil {
			t.fail(&res, name, err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		if markdown.IsTranscodable(name) {
			outName := strings.TrimSuffix(name, filepath.Ext(name)) + t.encoder.Ext()
			if err := t.convert(srcPath, filepath.Join(dst, outName)); err != nil {
				t.fail(&res, name, err)
				continue
			}
			res.Converted++
			t.logger.Debug("Converted media file", logfields.File(name), logfields.Name(outName))
			continue
		}

		if err := fileutil.CopyFile(srcPath, filepath.Join(dst, name)); err != nil {
			t.fail(&res, name, err)
			continue
		}
		res.Copied++
		t.logger.Debug("Copied media file", logfields.File(name))
	}
	return res, nil
}

func (t *Transcoder) fail(res *Result, name string, err error) {
	res.Failed = append(res.Failed, FileError{Name: name, Err: err})
	t.logger.Error("Media file failed", logfields.File(name), logfields.Error(err))
}

func (t *Transcoder) convert(src, dst string) error {
	img, err := decode(src)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := t.encoder.Encode(out, img); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("encode: %w", err)
	}
	return out.Close()
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	// The format is sniffed from the content; the extension only selects
	// which files are converted.
	img, _, err := image.Decode(f)
	return img, err
}
