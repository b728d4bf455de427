package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNoClusters is returned when the two inputs share no cluster id
	ErrNoClusters = errors.New("no cluster present in both inputs")

	// ErrCacheMiss is returned when an embedding is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrSourceUnavailable is returned when a tabular source cannot be read
	ErrSourceUnavailable = errors.New("input source unavailable")

	// ErrSinkUnavailable is returned when the record sink cannot be written
	ErrSinkUnavailable = errors.New("record sink unavailable")
)

// TransientError marks an embedding oracle failure that is worth
// retrying: network errors, rate limits, timeouts.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient embedding failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks an embedding oracle failure that retrying cannot
// fix: the batch it covers falls back to zero vectors.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent embedding failure: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsPermanent reports whether err is (or wraps) a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
