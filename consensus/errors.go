package consensus

import "errors"

var (
	// ErrInconclusive is returned when no sample matched any known label.
	ErrInconclusive = errors.New("consensus: inconclusive, no sample matched a known label")

	// ErrInvalidConfiguration reports a caller programming error such as an
	// empty label set or a non-positive sample count.
	ErrInvalidConfiguration = errors.New("consensus: invalid configuration")

	// ErrSourceUnavailable marks a single failed request to a Source.
	ErrSourceUnavailable = errors.New("consensus: completion source unavailable")
)
