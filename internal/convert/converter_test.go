package convert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

// stubRunner records calls and creates the output file named by create unless fail is set.
type stubRunner struct {
	calls  []call
	fail   error
	create func(args []string) string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) error {
	s.calls = append(s.calls, call{name: name, args: args})
	if s.fail != nil {
		return s.fail
	}
	if s.create != nil {
		if p := s.create(args); p != "" {
			_ = os.WriteFile(p, []byte("img"), 0o644)
		}
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestRenderablePassesImagesThrough(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "receipt.jpg")
	touch(t, src)

	r := &stubRunner{}
	c := NewConverter(Config{}, quietLogger()).WithRunner(r)

	got, err := c.Renderable(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, src, got)
	assert.Empty(t, r.calls)
}

func TestRenderablePDFFirstPage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "invoice-ja.pdf")
	touch(t, src) // not a real PDF: page count fails and only warns

	r := &stubRunner{create: func(args []string) string { return args[len(args)-1] + ".jpg" }}
	c := NewConverter(Config{DPI: 250}, quietLogger()).WithRunner(r)

	got, err := c.Renderable(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoice-ja.jpg"), got)

	require.Len(t, r.calls, 1)
	assert.Equal(t, "pdftoppm", r.calls[0].name)
	assert.Equal(t, []string{
		"-r", "250", "-jpeg", "-singlefile", "-f", "1", "-l", "1",
		src, filepath.Join(dir, "invoice-ja"),
	}, r.calls[0].args)

	_, err = os.Stat(src)
	assert.NoError(t, err, "source must be kept")
}

func TestRenderablePDFConverterFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.PDF")
	touch(t, src)

	c := NewConverter(Config{Pdftoppm: "/opt/bin/pdftoppm"}, quietLogger()).
		WithRunner(&stubRunner{fail: errors.New("pdftoppm: exit status 1: boom")})

	_, err := c.Renderable(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftoppm failed")
	assert.Contains(t, err.Error(), "boom")
}

func TestRenderablePDFNoOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.pdf")
	touch(t, src)

	c := NewConverter(Config{}, quietLogger()).WithRunner(&stubRunner{})

	_, err := c.Renderable(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output")
}

func TestRenderableHEIC(t *testing.T) {
	tests := []struct {
		converter string
		wantName  string
		wantArgs  func(src, out string) []string
	}{
		{"magick", "magick", func(src, out string) []string { return []string{src, out} }},
		{"heif-convert", "heif-convert", func(src, out string) []string { return []string{src, out} }},
		{"sips", "sips", func(src, out string) []string { return []string{"-s", "format", "png", src, "--out", out} }},
	}
	for _, tt := range tests {
		t.Run(tt.converter, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "photo.HEIC")
			touch(t, src)
			out := filepath.Join(dir, "photo.png")

			r := &stubRunner{create: func(args []string) string { return args[len(args)-1] }}
			c := NewConverter(Config{HeicConverter: tt.converter}, quietLogger()).WithRunner(r)

			got, err := c.Renderable(context.Background(), src)
			require.NoError(t, err)
			assert.Equal(t, out, got)
			require.Len(t, r.calls, 1)
			assert.Equal(t, tt.wantName, r.calls[0].name)
			assert.Equal(t, tt.wantArgs(src, out), r.calls[0].args)
		})
	}
}

func TestRenderableHEICUnknownConverter(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.heif")
	touch(t, src)

	r := &stubRunner{}
	c := NewConverter(Config{HeicConverter: "gimp"}, quietLogger()).WithRunner(r)

	_, err := c.Renderable(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HEIC not supported")
	assert.Empty(t, r.calls)
}

func TestExecRunnerCarriesStderr(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	r := execRunner{logger: quietLogger()}

	require.NoError(t, r.Run(context.Background(), "sh", "-c", "exit 0"))

	err := r.Run(context.Background(), "sh", "-c", "echo 'Syntax Error: bad xref table' >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sh: exit status 3")
	assert.Contains(t, err.Error(), "bad xref table")
}
