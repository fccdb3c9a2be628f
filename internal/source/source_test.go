package source

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []string {
	t.Helper()
	var lines []string
	for r.Next() {
		lines = append(lines, r.Text())
	}
	return lines
}

func TestOpener_ReadsLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "unix endings", content: "10\n20.5\nhello\n", want: []string{"10", "20.5", "hello"}},
		{name: "windows endings", content: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "old mac endings", content: "1\r2.5\rhello\r", want: []string{"1", "2.5", "hello"}},
		{name: "mixed endings", content: "a\rb\r\nc\nd", want: []string{"a", "b", "c", "d"}},
		{name: "consecutive carriage returns", content: "a\r\rb", want: []string{"a", "", "b"}},
		{name: "no final newline", content: "a\nb", want: []string{"a", "b"}},
		{name: "blank lines kept", content: "a\n\n  \nb\n", want: []string{"a", "", "  ", "b"}},
		{name: "empty file", content: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "in.txt", []byte(tt.content), 0o644))

			r, err := NewOpener(fs).Open("in.txt")
			require.NoError(t, err)
			defer func() { _ = r.Close() }()

			assert.Equal(t, tt.want, readAll(t, r))
			require.NoError(t, r.Err())
			assert.Equal(t, len(tt.want), r.Line())
			assert.Equal(t, "in.txt", r.Path())
		})
	}
}

func TestOpener_MissingFile(t *testing.T) {
	_, err := NewOpener(afero.NewMemMapFs()).Open("missing.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpen)
	assert.Contains(t, err.Error(), "missing.txt")
}

func TestOpener_Directory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("dir", 0o755))

	_, err := NewOpener(fs).Open("dir")
	require.ErrorIs(t, err, ErrOpen)
}

func TestReader_LineTooLong(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "ok\n" + strings.Repeat("x", 64) + "\nnever\n"
	require.NoError(t, afero.WriteFile(fs, "long.txt", []byte(content), 0o644))

	o := NewOpener(fs)
	o.maxLine = 16
	r, err := o.Open("long.txt")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	assert.Equal(t, []string{"ok"}, readAll(t, r))
	err = r.Err()
	require.ErrorIs(t, err, ErrRead)
	assert.Contains(t, err.Error(), "after line 1")
}

type failingReader struct {
	data string
	read bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.read {
		return 0, errors.New("device went away")
	}
	f.read = true
	return copy(p, f.data), nil
}

func (f *failingReader) Close() error { return nil }

func TestReader_MidReadFault(t *testing.T) {
	r := NewReader("stream", &failingReader{data: "1\n2\n"})

	assert.Equal(t, []string{"1", "2"}, readAll(t, r))
	err := r.Err()
	require.ErrorIs(t, err, ErrRead)
	assert.Contains(t, err.Error(), "device went away")
	assert.NoError(t, r.Close())
}

func TestNewReader_Stream(t *testing.T) {
	r := NewReader("pipe", io.NopCloser(strings.NewReader("x\ny\n")))
	assert.Equal(t, []string{"x", "y"}, readAll(t, r))
	assert.NoError(t, r.Err())
}
