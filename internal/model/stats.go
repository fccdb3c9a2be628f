package model

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// NumericStats holds running statistics for integer or float lines.
// A sum of finite values can still overflow to ±Inf.
type NumericStats struct {
	Count int64
	Min   float64
	Max   float64
	Sum   float64
}

type numericStatsJSON struct {
	Count int64     `json:"count"`
	Min   JSONFloat `json:"min"`
	Max   JSONFloat `json:"max"`
	Sum   JSONFloat `json:"sum"`
}

// MarshalJSON implements json.Marshaler. Non-finite values are kept.
func (s NumericStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(numericStatsJSON{
		Count: s.Count,
		Min:   JSONFloat(s.Min),
		Max:   JSONFloat(s.Max),
		Sum:   JSONFloat(s.Sum),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *NumericStats) UnmarshalJSON(data []byte) error {
	var raw numericStatsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NumericStats{
		Count: raw.Count,
		Min:   float64(raw.Min),
		Max:   float64(raw.Max),
		Sum:   float64(raw.Sum),
	}
	return nil
}

// JSONFloat is a float64 that survives a JSON round trip even when it is
// infinite or NaN. Finite values encode as numbers; the others encode as
// the strings "+Inf", "-Inf" and "NaN".
type JSONFloat float64

// MarshalJSON implements json.Marshaler.
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts a number or one of
// the strings written by MarshalJSON.
func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return fmt.Errorf("invalid float %s: %w", text, err)
		}
		text = unquoted
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid float %s: %w", string(data), err)
	}
	*f = JSONFloat(v)
	return nil
}

// Average returns Sum divided by Count, or zero for an empty record.
func (s NumericStats) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// StringStats holds running statistics for string lines.
// Lengths are counted in Unicode code points.
type StringStats struct {
	Count     int64 `json:"count"`
	MinLength int   `json:"min_length"`
	MaxLength int   `json:"max_length"`
}

// Snapshot is a point-in-time copy of the statistics for every observed
// category. A nil field means the category never received a line.
type Snapshot struct {
	Integers *NumericStats `json:"integers,omitempty"`
	Floats   *NumericStats `json:"floats,omitempty"`
	Strings  *StringStats  `json:"strings,omitempty"`
}

// Numeric returns the numeric record for c, if c is numeric and observed.
func (s Snapshot) Numeric(c Category) (NumericStats, bool) {
	var rec *NumericStats
	switch c {
	case CategoryInteger:
		rec = s.Integers
	case CategoryFloat:
		rec = s.Floats
	default:
		return NumericStats{}, false
	}
	if rec == nil {
		return NumericStats{}, false
	}
	return *rec, true
}

// Has reports whether category c was observed.
func (s Snapshot) Has(c Category) bool {
	switch c {
	case CategoryInteger:
		return s.Integers != nil
	case CategoryFloat:
		return s.Floats != nil
	case CategoryString:
		return s.Strings != nil
	default:
		return false
	}
}

// Observed returns the observed categories in report order.
func (s Snapshot) Observed() []Category {
	observed := make([]Category, 0, 3)
	for _, c := range Categories() {
		if s.Has(c) {
			observed = append(observed, c)
		}
	}
	return observed
}

// Empty reports whether no category was observed.
func (s Snapshot) Empty() bool {
	return s.Integers == nil && s.Floats == nil && s.Strings == nil
}

// Clone returns a deep copy so callers cannot mutate shared records.
func (s Snapshot) Clone() Snapshot {
	var out Snapshot
	if s.Integers != nil {
		v := *s.Integers
		out.Integers = &v
	}
	if s.Floats != nil {
		v := *s.Floats
		out.Floats = &v
	}
	if s.Strings != nil {
		v := *s.Strings
		out.Strings = &v
	}
	return out
}
