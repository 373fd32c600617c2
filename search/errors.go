package search

import (
	"errors"
	"fmt"
)

// Error kinds for search backend failures. Callers classify with errors.Is;
// only ErrUnavailable triggers the database fallback.
var (
	// ErrUnavailable is a connectivity or transport-level failure: the
	// backend could not execute the operation at all.
	ErrUnavailable = errors.New("search backend unavailable")

	// ErrQueryRejected means the backend rejected a malformed query. This is
	// a caller input problem, not backend health, and never triggers
	// fallback.
	ErrQueryRejected = errors.New("query rejected by search backend")

	// ErrNotFound means a requested document does not exist in the index.
	ErrNotFound = errors.New("document not found in index")

	// ErrIndexCreation means the backend rejected an index mapping. Fatal at
	// sync time: a missing index silently breaks every subsequent search.
	ErrIndexCreation = errors.New("index creation failed")
)

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func rejected(err error) error {
	return fmt.Errorf("%w: %v", ErrQueryRejected, err)
}

// IsUnavailable reports whether err is a connectivity/transport failure that
// should switch the request to the database.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
