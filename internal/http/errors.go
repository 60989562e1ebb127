package http

import (
	"errors"
	"fmt"
)

// Sentinel errors for fetch failures. Every error returned by Client.Fetch
// matches exactly one of them via errors.Is.
var (
	// ErrInvalidURL indicates the URL was empty or could not be parsed.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnableToComplete indicates a transport-level failure.
	ErrUnableToComplete = errors.New("unable to complete your request")

	// ErrInvalidResponse indicates a non-200 or malformed response.
	ErrInvalidResponse = errors.New("invalid response from the server")

	// ErrInvalidData indicates an empty or unreadable response body.
	ErrInvalidData = errors.New("the data received from the server was invalid")
)

var (
	errEmptyURL      = errors.New("empty URL")
	errIncompleteURL = errors.New("URL must have a scheme and a host")
)

// NetworkError describes a failed fetch.
//
// Kind is one of the sentinel errors above; Err is the underlying cause,
// if any. Both are reachable through errors.Is and errors.As:
//
//	data, err := client.Fetch(ctx, url)
//	if errors.Is(err, http.ErrInvalidResponse) {
//	    var ne *http.NetworkError
//	    errors.As(err, &ne)
//	    fmt.Println(ne.StatusCode)
//	}
type NetworkError struct {
	// Kind is the sentinel classifying the failure.
	Kind error

	// URL is the requested URL as given by the caller.
	URL string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Err is the underlying cause. May be nil.
	Err error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%v: HTTP %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, url string, status int, cause error) *NetworkError {
	return &NetworkError{Kind: kind, URL: url, StatusCode: status, Err: cause}
}

// Describe returns the user-facing message for err, suitable for an alert.
// Errors outside the taxonomy fall back to err.Error().
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidURL):
		return "Invalid URL"
	case errors.Is(err, ErrUnableToComplete):
		return "Unable to complete your request"
	case errors.Is(err, ErrInvalidResponse):
		return "Invalid response from the server"
	case errors.Is(err, ErrInvalidData):
		return "The data received from the server was invalid"
	default:
		return err.Error()
	}
}
