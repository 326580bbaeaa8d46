package ai

import (
	"errors"
	"fmt"
)

// ErrGenerationFailed is the single error kind surfaced for any failure of
// a generator. The cause stays available through errors.As on
// *GenerationError.
var ErrGenerationFailed = errors.New("failed to generate workflow")

// ValidationError reports a request that never reaches a generator.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// GenerationError wraps a generator failure with the provider that raised it.
type GenerationError struct {
	Provider Provider
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrGenerationFailed.Error(), e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is makes every GenerationError match ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}
