// Package http provides the HTTP client used to fetch remote images.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Timeout handling
//   - Request tracing via otelhttp
//   - Error classification
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	data, err := client.Fetch(ctx, "https://loremflickr.com/200/200")
//
// # Errors
//
// Every failure is a *NetworkError matching one sentinel:
//
//	ErrInvalidURL        // empty or unparsable URL
//	ErrUnableToComplete  // transport failure, including timeouts
//	ErrInvalidResponse   // status other than 200
//	ErrInvalidData       // empty or unreadable body
//
// Describe turns any of them into the message shown to the user.
package http
