package model

// LoadStatus is the lifecycle state of one image fetch.
//
// A record starts as StatusLoading and settles exactly once into either
// StatusDownloaded or StatusFailed. Both settled states are terminal.
type LoadStatus int

const (
	// StatusLoading means the fetch has started but not settled.
	StatusLoading LoadStatus = iota

	// StatusDownloaded means the bytes arrived. The record may still carry
	// no image if the bytes could not be decoded.
	StatusDownloaded

	// StatusFailed means the fetch ended with a network error.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s LoadStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusDownloaded:
		return "downloaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsSettled reports whether the status is terminal.
func (s LoadStatus) IsSettled() bool {
	return s == StatusDownloaded || s == StatusFailed
}
