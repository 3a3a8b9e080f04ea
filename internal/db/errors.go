package db

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a user, word or enrollment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPersistence wraps every failure of the underlying store.
	ErrPersistence = errors.New("persistence failure")

	// ErrEmptyText is returned when a word pair has a blank side after trimming.
	ErrEmptyText = errors.New("english and native text must be non-empty")
)

// mapError converts a driver error into one of the package sentinels,
// keeping the original error in the chain.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
