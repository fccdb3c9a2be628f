package model

import "fmt"

// Category is the type a classified line was sorted into.
type Category int

// Categories in report order.
const (
	CategoryInteger Category = iota
	CategoryFloat
	CategoryString
)

var categoryKeys = [...]string{"integers", "floats", "strings"}

// Categories returns every category in the order they are reported.
func Categories() []Category {
	return []Category{CategoryInteger, CategoryFloat, CategoryString}
}

// ParseCategory resolves a category key such as "floats".
func ParseCategory(key string) (Category, error) {
	for i, k := range categoryKeys {
		if k == key {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
}

// Key returns the stable lowercase name used in reports and storage.
func (c Category) Key() string {
	if !c.Valid() {
		return "unknown"
	}
	return categoryKeys[c]
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return c.Key()
}

// FileName returns the base name of the output file for the category.
func (c Category) FileName() string {
	return c.Key() + ".txt"
}

// IsNumeric reports whether lines of this category carry a parsed value.
func (c Category) IsNumeric() bool {
	return c == CategoryInteger || c == CategoryFloat
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c >= CategoryInteger && c <= CategoryString
}

// MarshalText encodes the category as its key.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.Key()), nil
}

// UnmarshalText decodes a category key.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
