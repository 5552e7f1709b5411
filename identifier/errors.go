package identifier

import (
	"errors"
	"fmt"
)

var (
	// ErrRangeExceeded is returned when a scope has no sequence left.
	ErrRangeExceeded = errors.New("identifier sequence range exceeded")
	// ErrPersistenceUnavailable wraps any failure of the backing store.
	ErrPersistenceUnavailable = errors.New("identifier store unavailable")
	// ErrMalformedIdentifier is returned by Parse for strings that do not match a scheme.
	ErrMalformedIdentifier = errors.New("malformed identifier")
	ErrUnknownScheme       = errors.New("unknown identifier scheme")
)

// Unavailable wraps err so that errors.Is(err, ErrPersistenceUnavailable) holds.
// Errors already carrying one of this package's sentinels are returned unchanged.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistenceUnavailable) || errors.Is(err, ErrRangeExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistenceUnavailable, op, err)
}

func rangeExceeded(s Scheme, prefix string) error {
	return fmt.Errorf("%w: %s scope %s has issued all %d sequences", ErrRangeExceeded, s.Kind, prefix, MaxSequence)
}
