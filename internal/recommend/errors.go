// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineShutdown is returned by every batch call after Shutdown.
	ErrEngineShutdown = errors.New("recommendation engine is shut down")

	// ErrTimeoutExceeded is returned when a batch does not finish within its timeout.
	// No partial results accompany it.
	ErrTimeoutExceeded = errors.New("recommendation batch timed out")

	// ErrInvalidRating marks a rating whose value is outside [1, 5].
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidBook marks a catalog book whose rating is NaN or outside [0, 5].
	// Such books are excluded from ranking; see Snapshot.InvalidBooks.
	ErrInvalidBook = errors.New("invalid catalog book")
)

// UserError records why a single user's recommendations could not be computed.
// It never fails a batch; the user receives an empty list instead.
type UserError struct {
	UserID string
	Err    error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("user %s: %v", e.UserID, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}
