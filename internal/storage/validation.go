package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/sift/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRun   = errors.New("invalid run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRun checks a run before it is stored.
func validateRun(run *model.Run) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidRun)
	}
	if run.Classified < 0 || run.Failed < 0 {
		return fmt.Errorf("%w: counts cannot be negative", ErrInvalidRun)
	}
	if run.Failed > len(run.Inputs) {
		return fmt.Errorf("%w: %d failed inputs out of %d", ErrInvalidRun, run.Failed, len(run.Inputs))
	}
	return nil
}
