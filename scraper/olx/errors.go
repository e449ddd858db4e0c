package olx

import (
	"errors"
	"fmt"
)

var (
	// ErrEntryParse marks a results entry whose post-time label is missing.
	// It only skips that entry.
	ErrEntryParse = errors.New("entry parse fault")

	// ErrExtraction marks an ad whose price or surface cannot be turned into
	// a number. The record is dropped.
	ErrExtraction = errors.New("extraction fault")

	// ErrPagination marks a results URL the walker cannot derive a city or a
	// next page from. It ends that city's branch.
	ErrPagination = errors.New("pagination fault")
)

// ExtractionError carries the ad URL and the field that failed.
type ExtractionError struct {
	URL   string
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%v: %s: %v", ErrExtraction, e.Field, e.Err)
	}
	return fmt.Sprintf("%v: %s: %s: %v", ErrExtraction, e.URL, e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

func extractionErr(field string, err error) error {
	return &ExtractionError{Field: field, Err: err}
}
