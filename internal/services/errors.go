package services

import (
	"errors"
	"fmt"
)

var ErrInvalidQuery = errors.New("search query must be at least 2 characters")

// FetchError is a failed request to the content provider. Status is the
// upstream HTTP status, or 0 when no response was received.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch %s failed: %s", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s failed with status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is a provider response that could not be decoded into the expected shape.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response from %s: %s", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
