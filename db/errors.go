package db

import "errors"

var (
	// ErrUnsafeWriteBack is a programming-usage error: a record materialized
	// from the search index was handed to the database write path. Detected
	// before any database I/O.
	ErrUnsafeWriteBack = errors.New("record was deserialized from the search index and must not be written back to the database")

	// ErrRecordNotFound means the requested row does not exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnknownColumn means a record carried a field name outside the
	// entity's declared columns. Field names become SQL identifiers on the
	// write path, so unknown names are rejected before any statement is
	// built.
	ErrUnknownColumn = errors.New("unknown column")
)
