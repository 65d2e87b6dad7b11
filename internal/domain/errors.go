package domain

import "fmt"

// FetchError is returned when the proxy or a content endpoint answers with a non-success status.
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d: %s", e.URL, e.StatusCode, e.Body)
}

// NoDataError means the page was scraped but the selector matched nothing.
type NoDataError struct {
	URL      string
	Selector string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no elements matching %q on %s", e.Selector, e.URL)
}

// NoSuitableDataError means every matched block was tried and none held a usable comic.
type NoSuitableDataError struct {
	Attempts int
}

func (e *NoSuitableDataError) Error() string {
	return fmt.Sprintf("no suitable comic metadata after %d attempts", e.Attempts)
}

// ParseError marks a single metadata block that could not be decoded. It is never fatal.
type ParseError struct {
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse block %d: %v", e.Index, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
