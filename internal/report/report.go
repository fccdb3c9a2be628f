// Package report renders a statistics snapshot for people or programs.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/sift/internal/model"
)

// Format selects how a snapshot is rendered.
type Format string

// Supported formats.
const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ErrUnknownFormat is returned for a format name that has no renderer.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats lists the accepted format names.
func Formats() []Format {
	return []Format{FormatText, FormatTable, FormatJSON}
}

// ParseFormat validates a format name. An empty name selects FormatText.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatText, nil
	}
	for _, f := range Formats() {
		if string(f) == strings.ToLower(name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of text, table, json)", ErrUnknownFormat, name)
}

// Options configures a Renderer.
type Options struct {
	Format Format
	// Full adds min, max, sum and average for numeric categories.
	Full bool
}

// Renderer writes a snapshot to w. Only observed categories appear, in
// report order.
type Renderer interface {
	Render(w io.Writer, snap model.Snapshot) error
}

// New returns the renderer for opts.Format.
func New(opts Options) (Renderer, error) {
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatTable:
		return tableRenderer{full: opts.Full}, nil
	case FormatJSON:
		return jsonRenderer{full: opts.Full}, nil
	default:
		return textRenderer{full: opts.Full}, nil
	}
}

// field is one labelled value of a category block.
type field struct {
	label string
	value string
}

// fields lists what is reported for category c.
func fields(snap model.Snapshot, c model.Category, full bool) []field {
	if c == model.CategoryString {
		s := snap.Strings
		return []field{
			{"Count", strconv.FormatInt(s.Count, 10)},
			{"Min Length", strconv.Itoa(s.MinLength)},
			{"Max Length", strconv.Itoa(s.MaxLength)},
		}
	}

	rec, _ := snap.Numeric(c)
	out := []field{{"Count", strconv.FormatInt(rec.Count, 10)}}
	if full {
		out = append(out,
			field{"Min", FormatNumber(rec.Min)},
			field{"Max", FormatNumber(rec.Max)},
			field{"Sum", FormatNumber(rec.Sum)},
			field{"Avg", FormatNumber(rec.Average())},
		)
	}
	return out
}

// FormatNumber prints v with the fewest digits that read back exactly.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type textRenderer struct {
	full bool
}

func (r textRenderer) Render(w io.Writer, snap model.Snapshot) error {
	var b strings.Builder
	for _, c := range snap.Observed() {
		fmt.Fprintf(&b, "Stats for %s:\n", c.Key())
		for _, f := range fields(snap, c, r.full) {
			fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
