// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package feed

import (
	"errors"
	"fmt"
)

// ErrBodyTooLarge is wrapped in a ParseError when a document exceeds the size cap.
var ErrBodyTooLarge = errors.New("feed document exceeds size limit")

// FetchError reports a transport failure or a non-2xx response.
// StatusCode is zero when no response was received.
type FetchError struct {
	Feed       string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s feed: HTTP %d: %v", e.Feed, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s feed: %v", e.Feed, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may try the download again.
func (e *FetchError) Retryable() bool { return true }

// ParseError reports a document that was downloaded but could not be decoded.
type ParseError struct {
	Feed string
	URL  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s feed: %v", e.Feed, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a retryable FetchError.
func IsRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Retryable()
}
