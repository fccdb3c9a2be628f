// Package engine runs inputs through the classifier, the category sink and
// the statistics aggregator in a single sequential pass.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/source"
	"github.com/Veraticus/sift/internal/stats"
	"github.com/schollz/progressbar/v3"
)

// ErrAbandoned marks a file whose remaining lines were skipped after a fault.
var ErrAbandoned = errors.New("input abandoned")

// Config holds optional engine settings.
type Config struct {
	// ProgressWriter receives a per-file progress bar when set.
	ProgressWriter io.Writer
}

// Engine owns the state of one run. Create a new Engine for every run so
// statistics are never shared between runs.
type Engine struct {
	opener     *source.Opener
	classifier Classifier
	sink       Sink
	aggregator *stats.Aggregator
	progress   io.Writer
}

// FileResult describes how one input was processed.
type FileResult struct {
	Err        error
	Path       string
	Classified int
	Skipped    int
}

// Result is the outcome of a run.
type Result struct {
	Files    []FileResult
	Snapshot model.Snapshot
}

// Failed returns the inputs that could not be fully processed.
func (r Result) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Classified returns the number of lines classified across all inputs.
func (r Result) Classified() int {
	total := 0
	for _, f := range r.Files {
		total += f.Classified
	}
	return total
}

// New creates an engine with the given dependencies.
func New(opener *source.Opener, classifier Classifier, sink Sink) *Engine {
	return NewWithConfig(opener, classifier, sink, Config{})
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(opener *source.Opener, classifier Classifier, sink Sink, config Config) *Engine {
	return &Engine{
		opener:     opener,
		classifier: classifier,
		sink:       sink,
		aggregator: stats.NewAggregator(),
		progress:   config.ProgressWriter,
	}
}

// Run processes paths strictly in order. A file that cannot be opened or
// read, or whose lines cannot be written, is logged and recorded in the
// result; the run moves on to the next file. Run only returns an error when
// ctx is canceled, and even then the result holds the statistics gathered
// so far.
func (e *Engine) Run(ctx context.Context, paths []string) (Result, error) {
	slog.Debug("Starting run", "inputs", len(paths))

	bar := e.newProgressBar(len(paths))
	result := Result{Files: make([]FileResult, 0, len(paths))}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			result.Snapshot = e.aggregator.Snapshot()
			return result, err
		}

		fr := e.processFile(ctx, path)
		result.Files = append(result.Files, fr)

		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}

		if errors.Is(fr.Err, context.Canceled) || errors.Is(fr.Err, context.DeadlineExceeded) {
			result.Snapshot = e.aggregator.Snapshot()
			return result, fr.Err
		}
	}

	result.Snapshot = e.aggregator.Snapshot()
	slog.Debug("Run complete", "inputs", len(paths), "classified", result.Classified(), "failed", len(result.Failed()))
	return result, nil
}

func (e *Engine) processFile(ctx context.Context, path string) FileResult {
	fr := FileResult{Path: path}

	reader, err := e.opener.Open(path)
	if err != nil {
		slog.Error("Failed to open input file", "path", path, "error", err)
		fr.Err = err
		return fr
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			slog.Warn("Failed to close input file", "path", path, "error", closeErr)
		}
	}()

	for reader.Next() {
		if err := ctx.Err(); err != nil {
			fr.Err = err
			return fr
		}

		line, ok := e.classifier.Classify(reader.Text())
		if !ok {
			fr.Skipped++
			continue
		}

		if err := e.sink.Write(line.Category, line.Raw); err != nil {
			slog.Error("Failed to write line, abandoning rest of file",
				"path", path,
				"line", reader.Line(),
				"category", line.Category.Key(),
				"error", err)
			fr.Err = fmt.Errorf("%w %s at line %d: %w", ErrAbandoned, path, reader.Line(), err)
			return fr
		}

		if err := e.aggregator.Update(line); err != nil {
			// Only reachable with a custom classifier returning a bad category.
			slog.Warn("Skipping unclassifiable line", "path", path, "line", reader.Line(), "error", err)
			fr.Skipped++
			continue
		}
		fr.Classified++
	}

	if err := reader.Err(); err != nil {
		slog.Error("Failed to read input file, abandoning rest of file", "path", path, "error", err)
		fr.Err = err
	}

	slog.Debug("Processed input file", "path", path, "classified", fr.Classified, "skipped", fr.Skipped)
	return fr
}

func (e *Engine) newProgressBar(total int) *progressbar.ProgressBar {
	if e.progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Filtering files...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(e.progress); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
