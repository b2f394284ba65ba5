package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeEncoder struct {
	calls int
	fail  bool
}

func (f *fakeEncoder) Encode(w io.Writer, img image.Image) error {
	f.calls++
	if f.fail {
		return errors.New("boom")
	}
	_, err := w.Write([]byte("fake-webp"))
	return err
}

func (f *fakeEncoder) Ext() string { return ".webp" }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := range 4 {
		for y := range 4 {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestTranscode_MissingSourceIsSkipped(t *testing.T) {
	tr := NewTranscoder(WithLogger(quietLogger()))
	dst := filepath.Join(t.TempDir(), "media")

	res, err := tr.Transcode(context.Background(), filepath.Join(t.TempDir(), "nope"), dst)
	require.NoError(t, err)
	require.True(t, res.Skipped)
	require.NoDirExists(t, dst)
}

func TestTranscode_ConvertsImagesAndCopiesOthers(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "media")
	writePNG(t, filepath.Join(src, "shot.png"))
	writeJPEG(t, filepath.Join(src, "Photo.JPG"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "doc.pdf"), []byte("%PDF"), 0o644))
	mtime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(src, "doc.pdf"), mtime, mtime))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o750))
	writePNG(t, filepath.Join(src, "nested", "deep.png"))

	enc := &fakeEncoder{}
	res, err := NewTranscoder(WithEncoder(enc), WithLogger(quietLogger())).Transcode(context.Background(), src, dst)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Equal(t, 2, res.Converted)
	require.Equal(t, 1, res.Copied)
	require.Empty(t, res.Failed)
	require.Equal(t, 2, enc.calls)

	require.FileExists(t, filepath.Join(dst, "shot.webp"))
	require.FileExists(t, filepath.Join(dst, "Photo.webp"))
	require.NoFileExists(t, filepath.Join(dst, "shot.png"))
	require.NoDirExists(t, filepath.Join(dst, "nested"))

	data, err := os.ReadFile(filepath.Join(dst, "doc.pdf"))
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(data))
	info, err := os.Stat(filepath.Join(dst, "doc.pdf"))
	require.NoError(t, err)
	require.True(t, info.ModTime().Equal(mtime))
}

func TestTranscode_SniffsFormatFromContent(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "media")
	writeJPEG(t, filepath.Join(src, "really-jpeg.png"))
	writePNG(t, filepath.Join(src, "really-png.jpg"))

	enc := &fakeEncoder{}
	res, err := NewTranscoder(WithEncoder(enc), WithLogger(quietLogger())).Transcode(context.Background(), src, dst)
	require.NoError(t, err)
	require.Empty(t, res.Failed)
	require.Equal(t, 2, res.Converted)
	require.FileExists(t, filepath.Join(dst, "really-jpeg.webp"))
	require.FileExists(t, filepath.Join(dst, "really-png.webp"))
}

func TestTranscode_OutputDirectoryIsWorldReadable(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "media")
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("n"), 0o644))

	_, err := NewTranscoder(WithEncoder(&fakeEncoder{}), WithLogger(quietLogger())).Transcode(context.Background(), src, dst)
	require.NoError(t, err)
	info, err := os.Stat(dst)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o005), info.Mode().Perm()&0o005, "others need read and search on media/")
}

func TestTranscode_IsolatesPerFileFailures(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "media")
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.jpg"), []byte("not a jpeg"), 0o600))
	writePNG(t, filepath.Join(src, "good.png"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("n"), 0o600))

	res, err := NewTranscoder(WithEncoder(&fakeEncoder{}), WithLogger(quietLogger())).Transcode(context.Background(), src, dst)
	require.NoError(t, err)
	require.Equal(t, 1, res.Converted)
	require.Equal(t, 1, res.Copied)
	require.Len(t, res.Failed, 1)
	require.Equal(t, "broken.jpg", res.Failed[0].Name)
	require.NoFileExists(t, filepath.Join(dst, "broken.webp"))
}

func TestTranscode_EncoderFailureRemovesPartialOutput(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "media")
	writePNG(t, filepath.Join(src, "a.png"))

	res, err := NewTranscoder(WithEncoder(&fakeEncoder{fail: true}), WithLogger(quietLogger())).Transcode(context.Background(), src, dst)
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	require.NoFileExists(t, filepath.Join(dst, "a.webp"))
}

func TestTranscode_Canceled(t *testing.T) {
	src := t.TempDir()
	writePNG(t, filepath.Join(src, "a.png"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTranscoder(WithEncoder(&fakeEncoder{}), WithLogger(quietLogger())).Transcode(ctx, src, filepath.Join(t.TempDir(), "m"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestWebPEncoder_ProducesRIFFContainer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WebPEncoder{Quality: DefaultQuality}.Encode(&buf, testImage()))
	out := buf.Bytes()
	require.Greater(t, len(out), 12)
	require.Equal(t, "RIFF", string(out[:4]))
	require.Equal(t, "WEBP", string(out[8:12]))
}
