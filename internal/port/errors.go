package port

import (
	"errors"
	"fmt"
)

// Sentinel errors used across ports.
var (
	ErrRepoNotFound      = errors.New("repository not found")
	ErrNoRepositories    = errors.New("no repositories indexed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// ProviderError is returned when an embedding or completion call fails,
// either with a non-success status or at the transport level (timeouts included).
type ProviderError struct {
	Operation  string // embed, complete
	StatusCode int    // 0 when no response was received
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("provider %s error (%d): %s", e.Operation, e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DimensionError reports a vector whose length differs from the configured dimension.
type DimensionError struct {
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", ErrDimensionMismatch, e.Expected, e.Got)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// CheckDimension returns a *DimensionError when vec does not have exactly want elements.
func CheckDimension(vec []float32, want int) error {
	if len(vec) != want {
		return &DimensionError{Expected: want, Got: len(vec)}
	}
	return nil
}
