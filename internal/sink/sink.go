// Package sink writes classified lines to one output file per category.
package sink

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/sift/internal/model"
	"github.com/spf13/afero"
)

// Sink errors.
var (
	ErrOpen  = errors.New("cannot open output")
	ErrWrite = errors.New("cannot write output")
	ErrClose = errors.New("cannot close output")
)

// Options controls where output files go and how they are opened.
type Options struct {
	Dir    string
	Prefix string
	Append bool
}

type output struct {
	file  afero.File
	path  string
	buf   []byte
	lines int64
}

// CategorySink owns the output file of every category. A file is created on
// the first write to its category, so categories without lines leave no file
// behind.
//
// A CategorySink is not safe for concurrent use.
type CategorySink struct {
	fs      afero.Fs
	outputs map[model.Category]*output
	opts    Options
}

// New returns a sink that writes through fs.
func New(fs afero.Fs, opts Options) *CategorySink {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	return &CategorySink{
		fs:      fs,
		opts:    opts,
		outputs: make(map[model.Category]*output, 3),
	}
}

// Path returns the output file path for category c.
func (s *CategorySink) Path(c model.Category) string {
	return filepath.Join(s.opts.Dir, s.opts.Prefix+c.FileName())
}

// Write appends line and a newline to the file of category c. The line is
// handed to the file before Write returns, so a failed write is reported
// for the line that caused it.
func (s *CategorySink) Write(c model.Category, line string) error {
	out, err := s.output(c)
	if err != nil {
		return err
	}

	out.buf = append(append(out.buf[:0], line...), '\n')
	if _, err := out.file.Write(out.buf); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, out.path, err)
	}
	out.lines++
	return nil
}

func (s *CategorySink) output(c model.Category) (*output, error) {
	if out, ok := s.outputs[c]; ok {
		return out, nil
	}
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", model.ErrUnknownCategory, int(c))
	}

	path := s.Path(c)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if s.opts.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := s.fs.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}

	slog.Debug("Opened output file", "category", c.Key(), "path", path, "append", s.opts.Append)

	out := &output{file: file, path: path}
	s.outputs[c] = out
	return out, nil
}

// Written returns the number of lines written to each opened category.
func (s *CategorySink) Written() map[model.Category]int64 {
	written := make(map[model.Category]int64, len(s.outputs))
	for c, out := range s.outputs {
		written[c] = out.lines
	}
	return written
}

// Files returns the paths of the files opened so far, in category order.
func (s *CategorySink) Files() []string {
	paths := make([]string, 0, len(s.outputs))
	for _, c := range model.Categories() {
		if out, ok := s.outputs[c]; ok {
			paths = append(paths, out.path)
		}
	}
	return paths
}

// Close closes every opened file. Each file is attempted even
// when an earlier one fails; all failures are logged and returned joined.
// Close leaves the sink empty, so a second call is a no-op.
func (s *CategorySink) Close() error {
	var errs []error
	for _, c := range model.Categories() {
		out, ok := s.outputs[c]
		if !ok {
			continue
		}
		if err := out.close(); err != nil {
			slog.Error("Failed to close output file", "category", c.Key(), "path", out.path, "error", err)
			errs = append(errs, err)
		}
	}
	clear(s.outputs)
	return errors.Join(errs...)
}

func (o *output) close() error {
	if err := o.file.Close(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrClose, o.path, err)
	}
	return nil
}
