package model

import "errors"

var (
	// ErrQuotaExceeded means the search provider refused the call (quota, rate limit or authorization).
	ErrQuotaExceeded     = errors.New("quota-exceeded")
	// ErrSearchFailed is a transient provider failure (network, 5xx, malformed payload).
	ErrSearchFailed      = errors.New("search-failed")
	// ErrMissingCredential means no usable YouTube credential was configured.
	ErrMissingCredential = errors.New("youtube credential not configured")
	ErrInvalidQuery      = errors.New("invalid video query")
	ErrInvalidRating     = errors.New("invalid rating")
)
