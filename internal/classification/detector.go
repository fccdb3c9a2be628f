// Package classification sorts input lines into integer, float and string
// categories by probing parsers in priority order.
package classification

import (
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/sift/internal/model"
)

// ParseFunc attempts to read a number from a whole line. It reports false
// instead of returning an error; a failed probe is ordinary control flow.
type ParseFunc func(line string) (float64, bool)

// Probe pairs a parser with the category it proves.
type Probe struct {
	Parse    ParseFunc
	Name     string
	Category model.Category
}

// DefaultProbes returns the integer probe followed by the float probe.
// Integers come first so "42" stays distinct from "42.0".
func DefaultProbes() []Probe {
	return []Probe{
		{Name: "integer", Category: model.CategoryInteger, Parse: ParseInteger},
		{Name: "float", Category: model.CategoryFloat, Parse: ParseDecimal},
	}
}

// Detector classifies lines with an ordered chain of probes. Lines that no
// probe accepts are strings.
type Detector struct {
	probes []Probe
}

// NewDetector creates a detector. With no probes it uses DefaultProbes.
func NewDetector(probes ...Probe) *Detector {
	if len(probes) == 0 {
		probes = DefaultProbes()
	}
	return &Detector{probes: probes}
}

var defaultDetector = NewDetector()

// Classify classifies line with the default probes.
func Classify(line string) (model.ClassifiedLine, bool) {
	return defaultDetector.Classify(line)
}

// Classify returns the classified line, or false when the line is blank.
// Only the blank check trims; probes see the line exactly as read, so
// surrounding whitespace turns a number into a string.
func (d *Detector) Classify(line string) (model.ClassifiedLine, bool) {
	if strings.TrimSpace(line) == "" {
		return model.ClassifiedLine{}, false
	}

	for _, probe := range d.probes {
		if value, ok := probe.Parse(line); ok {
			return model.ClassifiedLine{
				Category: probe.Category,
				Raw:      line,
				Value:    value,
			}, true
		}
	}

	return model.ClassifiedLine{Category: model.CategoryString, Raw: line}, true
}

// ParseInteger accepts a base-10 signed 64-bit integer with an optional sign.
func ParseInteger(line string) (float64, bool) {
	n, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

// ParseDecimal accepts a signed decimal in fixed or exponential notation.
// strconv.ParseFloat also reads hex floats, Inf, NaN and underscores; those
// are rejected up front.
func ParseDecimal(line string) (float64, bool) {
	if !isDecimalText(line) {
		return 0, false
	}
	f, err := strconv.ParseFloat(line, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func isDecimalText(s string) bool {
	digits := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.', c == 'e', c == 'E', c == '+', c == '-':
		default:
			return false
		}
	}
	return digits
}
