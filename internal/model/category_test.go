package model

import (
	"math"
	"testing"

	"github.com/goccy/go-json"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_Names(t *testing.T) {
	tests := []struct {
		category Category
		key      string
		file     string
		numeric  bool
	}{
		{CategoryInteger, "integers", "integers.txt", true},
		{CategoryFloat, "floats", "floats.txt", true},
		{CategoryString, "strings", "strings.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.category.Key())
			assert.Equal(t, tt.key, tt.category.String())
			assert.Equal(t, tt.file, tt.category.FileName())
			assert.Equal(t, tt.numeric, tt.category.IsNumeric())
			assert.True(t, tt.category.Valid())

			parsed, err := ParseCategory(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.category, parsed)
		})
	}
}

func TestCategory_Unknown(t *testing.T) {
	bad := Category(7)
	assert.False(t, bad.Valid())
	assert.Equal(t, "unknown", bad.Key())

	_, err := bad.MarshalText()
	require.ErrorIs(t, err, ErrUnknownCategory)

	_, err = ParseCategory("booleans")
	require.ErrorIs(t, err, ErrUnknownCategory)

	var c Category
	require.ErrorIs(t, c.UnmarshalText([]byte("nope")), ErrUnknownCategory)
	require.NoError(t, c.UnmarshalText([]byte("floats")))
	assert.Equal(t, CategoryFloat, c)
}

func TestCategories_ReportOrder(t *testing.T) {
	assert.Equal(t, []Category{CategoryInteger, CategoryFloat, CategoryString}, Categories())
}

func TestSnapshot_Accessors(t *testing.T) {
	snap := Snapshot{
		Floats:  &NumericStats{Count: 2, Min: 1, Max: 3, Sum: 4},
		Strings: &StringStats{Count: 1, MinLength: 2, MaxLength: 2},
	}

	assert.False(t, snap.Has(CategoryInteger))
	assert.True(t, snap.Has(CategoryFloat))
	assert.Equal(t, []Category{CategoryFloat, CategoryString}, snap.Observed())
	assert.False(t, snap.Empty())

	rec, ok := snap.Numeric(CategoryFloat)
	require.True(t, ok)
	assert.InDelta(t, 2.0, rec.Average(), 0)

	_, ok = snap.Numeric(CategoryString)
	assert.False(t, ok)

	clone := snap.Clone()
	clone.Floats.Count = 99
	assert.Equal(t, int64(2), snap.Floats.Count)
}

func TestNumericStats_AverageEmpty(t *testing.T) {
	assert.InDelta(t, 0.0, NumericStats{}.Average(), 0)
}

func TestNumericStats_JSONKeepsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		in   NumericStats
		want string
	}{
		{
			name: "finite",
			in:   NumericStats{Count: 2, Min: -1.5, Max: 3, Sum: 1.5},
			want: `{"count":2,"min":-1.5,"max":3,"sum":1.5}`,
		},
		{
			name: "overflowed sums",
			in:   NumericStats{Count: 2, Min: 1e308, Max: 1e308, Sum: math.Inf(1)},
			want: `{"count":2,"min":1e+308,"max":1e+308,"sum":"+Inf"}`,
		},
		{
			name: "negative overflow",
			in:   NumericStats{Count: 2, Min: -1e308, Max: -1e308, Sum: math.Inf(-1)},
			want: `{"count":2,"min":-1e+308,"max":-1e+308,"sum":"-Inf"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back NumericStats
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestJSONFloat_NaN(t *testing.T) {
	data, err := json.Marshal(JSONFloat(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, `"NaN"`, string(data))

	var f JSONFloat
	require.NoError(t, json.Unmarshal(data, &f))
	assert.True(t, math.IsNaN(float64(f)))

	require.Error(t, json.Unmarshal([]byte(`"many"`), &f))
}
