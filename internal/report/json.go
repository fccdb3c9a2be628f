package report

import (
	"fmt"
	"io"

	"github.com/Veraticus/sift/internal/model"
	"github.com/goccy/go-json"
)

// categoryJSON is the wire shape of one category. Numeric extremes are
// omitted in summary mode; an overflowed sum is written as "+Inf" or "-Inf".
type categoryJSON struct {
	Min       *model.JSONFloat `json:"min,omitempty"`
	Max       *model.JSONFloat `json:"max,omitempty"`
	Sum       *model.JSONFloat `json:"sum,omitempty"`
	Average   *model.JSONFloat `json:"average,omitempty"`
	MinLength *int             `json:"min_length,omitempty"`
	MaxLength *int             `json:"max_length,omitempty"`
	Category  model.Category   `json:"category"`
	Count     int64            `json:"count"`
}

type reportJSON struct {
	Categories []categoryJSON `json:"categories"`
	Full       bool           `json:"full"`
}

type jsonRenderer struct {
	full bool
}

func (r jsonRenderer) Render(w io.Writer, snap model.Snapshot) error {
	out := reportJSON{Full: r.full, Categories: make([]categoryJSON, 0, 3)}

	for _, c := range snap.Observed() {
		entry := categoryJSON{Category: c}
		if c == model.CategoryString {
			s := *snap.Strings
			entry.Count = s.Count
			entry.MinLength = &s.MinLength
			entry.MaxLength = &s.MaxLength
		} else {
			rec, _ := snap.Numeric(c)
			entry.Count = rec.Count
			if r.full {
				entry.Min = jsonFloat(rec.Min)
				entry.Max = jsonFloat(rec.Max)
				entry.Sum = jsonFloat(rec.Sum)
				entry.Average = jsonFloat(rec.Average())
			}
		}
		out.Categories = append(out.Categories, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func jsonFloat(v float64) *model.JSONFloat {
	f := model.JSONFloat(v)
	return &f
}
