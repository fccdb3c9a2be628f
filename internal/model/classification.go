// Package model defines the core domain types shared by the classifier,
// the statistics aggregator and the reporting layers.
package model

import "errors"

// ErrUnknownCategory is returned when a category key or value is not recognized.
var ErrUnknownCategory = errors.New("unknown category")

// ClassifiedLine is one non-blank input line after classification.
type ClassifiedLine struct {
	Raw      string
	Value    float64
	Category Category
}

// HasValue reports whether Value holds a parsed number.
func (l ClassifiedLine) HasValue() bool {
	return l.Category.IsNumeric()
}
