package fetcher

import (
	"errors"
	"fmt"
)

// ErrInvalidURI is returned (wrapped) when the input cannot be parsed into an
// absolute HTTP(S) URI.
var ErrInvalidURI = errors.New("invalid URI")

// ErrBodyTooLarge is returned (wrapped with the URI) when a raw or inflated
// body exceeds the configured size limit.
var ErrBodyTooLarge = errors.New("body too large")

// FetchError reports a response whose status is neither 2xx nor 3xx.
type FetchError struct {
	// URI is the address that produced the status.
	URI string

	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

// Error implements error.
func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to fetch %s: redirect without usable Location header", e.URI)
	}
	return fmt.Sprintf("failed to fetch %s: response code %d", e.URI, e.StatusCode)
}

// MaxRedirectError reports that the redirect budget ran out.
type MaxRedirectError struct {
	// URI is the redirect target at which the budget ran out. It was not
	// requested.
	URI string

	// Attempts is the number of redirects that were followed.
	Attempts int
}

// Error implements error.
func (e *MaxRedirectError) Error() string {
	return fmt.Sprintf("failed to fetch %s: redirected too many times (%d)", e.URI, e.Attempts)
}

// IsFetchError reports whether err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
