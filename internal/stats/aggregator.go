// Package stats accumulates per-category running statistics in a single
// pass without keeping the lines themselves.
package stats

import (
	"fmt"
	"unicode/utf8"

	"github.com/Veraticus/sift/internal/model"
)

// Aggregator folds classified lines into running statistics. A record for a
// category is created by the first line of that category; categories that
// never receive a line have no record at all.
//
// An Aggregator is not safe for concurrent use.
type Aggregator struct {
	numeric map[model.Category]*model.NumericStats
	text    *model.StringStats
}

// NewAggregator returns an aggregator with no observed categories.
func NewAggregator() *Aggregator {
	return &Aggregator{
		numeric: make(map[model.Category]*model.NumericStats, 2),
	}
}

// Update folds one classified line into the record for its category.
func (a *Aggregator) Update(line model.ClassifiedLine) error {
	switch {
	case line.HasValue():
		a.addNumber(line.Category, line.Value)
	case line.Category == model.CategoryString:
		a.addText(line.Raw)
	default:
		return fmt.Errorf("%w: %d", model.ErrUnknownCategory, int(line.Category))
	}
	return nil
}

func (a *Aggregator) addNumber(c model.Category, v float64) {
	rec, ok := a.numeric[c]
	if !ok {
		a.numeric[c] = &model.NumericStats{Count: 1, Min: v, Max: v, Sum: v}
		return
	}
	rec.Count++
	rec.Min = min(rec.Min, v)
	rec.Max = max(rec.Max, v)
	rec.Sum += v
}

func (a *Aggregator) addText(raw string) {
	n := utf8.RuneCountInString(raw)
	if a.text == nil {
		a.text = &model.StringStats{Count: 1, MinLength: n, MaxLength: n}
		return
	}
	a.text.Count++
	a.text.MinLength = min(a.text.MinLength, n)
	a.text.MaxLength = max(a.text.MaxLength, n)
}

// Count returns how many lines were folded into category c.
func (a *Aggregator) Count(c model.Category) int64 {
	if c == model.CategoryString {
		if a.text == nil {
			return 0
		}
		return a.text.Count
	}
	if rec, ok := a.numeric[c]; ok {
		return rec.Count
	}
	return 0
}

// Snapshot returns a copy of every observed record. The copy is detached
// from the aggregator, so later updates do not change it.
func (a *Aggregator) Snapshot() model.Snapshot {
	live := model.Snapshot{
		Integers: a.numeric[model.CategoryInteger],
		Floats:   a.numeric[model.CategoryFloat],
		Strings:  a.text,
	}
	return live.Clone()
}

// Merge folds a previously taken snapshot into the aggregator, as if its
// lines had been updated here.
func (a *Aggregator) Merge(snap model.Snapshot) {
	for _, c := range []model.Category{model.CategoryInteger, model.CategoryFloat} {
		other, ok := snap.Numeric(c)
		if !ok || other.Count == 0 {
			continue
		}
		rec, exists := a.numeric[c]
		if !exists {
			a.numeric[c] = &other
			continue
		}
		rec.Count += other.Count
		rec.Min = min(rec.Min, other.Min)
		rec.Max = max(rec.Max, other.Max)
		rec.Sum += other.Sum
	}

	if snap.Strings == nil || snap.Strings.Count == 0 {
		return
	}
	if a.text == nil {
		v := *snap.Strings
		a.text = &v
		return
	}
	a.text.Count += snap.Strings.Count
	a.text.MinLength = min(a.text.MinLength, snap.Strings.MinLength)
	a.text.MaxLength = max(a.text.MaxLength, snap.Strings.MaxLength)
}
