package engine

import "github.com/Veraticus/sift/internal/model"

// Classifier decides the category of one line. It reports false for lines
// that should be skipped.
type Classifier interface {
	Classify(line string) (model.ClassifiedLine, bool)
}

// Sink receives every classified line under its category.
type Sink interface {
	Write(category model.Category, line string) error
}
