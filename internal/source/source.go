// Package source reads input files line by line.
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// MaxLineSize is the longest line a Reader accepts, in bytes.
const MaxLineSize = 16 * 1024 * 1024

// Source errors.
var (
	ErrOpen = errors.New("cannot open input")
	ErrRead = errors.New("cannot read input")
)

// Opener opens named inputs on a filesystem.
type Opener struct {
	fs      afero.Fs
	maxLine int
}

// NewOpener returns an opener backed by fs.
func NewOpener(fs afero.Fs) *Opener {
	return &Opener{fs: fs, maxLine: MaxLineSize}
}

// Open opens path for line reading. A failure here concerns only this
// input; callers move on to the next one.
func (o *Opener) Open(path string) (*Reader, error) {
	f, err := o.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}

	info, err := f.Stat()
	if err == nil && info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w %s: is a directory", ErrOpen, path)
	}

	return newReader(path, f, o.maxLine), nil
}

// Reader yields the lines of one input with their terminators removed.
// "\n", "\r\n" and a lone "\r" each end a line.
type Reader struct {
	closer  io.Closer
	scanner *bufio.Scanner
	path    string
	line    int
}

func newReader(path string, rc io.ReadCloser, maxLine int) *Reader {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)
	scanner.Split(scanLines)
	return &Reader{path: path, closer: rc, scanner: scanner}
}

// scanLines is bufio.ScanLines extended to old Mac line endings.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		switch {
		case i+1 < len(data) && data[i+1] == '\n':
			return i + 2, data[:i], nil
		case i+1 < len(data) || atEOF:
			return i + 1, data[:i], nil
		}
		// A trailing '\r' may be the first half of "\r\n".
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// NewReader wraps an already open stream.
func NewReader(name string, rc io.ReadCloser) *Reader {
	return newReader(name, rc, MaxLineSize)
}

// Next advances to the next line, reporting false at the end of input or
// on a read error. Check Err afterwards.
func (r *Reader) Next() bool {
	if !r.scanner.Scan() {
		return false
	}
	r.line++
	return true
}

// Text returns the current line.
func (r *Reader) Text() string {
	return r.scanner.Text()
}

// Line returns the 1-based number of the current line.
func (r *Reader) Line() int {
	return r.line
}

// Path returns the name the reader was opened with.
func (r *Reader) Path() string {
	return r.path
}

// Err returns the read error that stopped Next, if any.
func (r *Reader) Err() error {
	if err := r.scanner.Err(); err != nil {
		return fmt.Errorf("%w %s after line %d: %w", ErrRead, r.path, r.line, err)
	}
	return nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.closer.Close()
}
