package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate wraps unique and primary key violations.
	ErrDuplicate = errors.New("duplicate record")
	// ErrForeignKey wraps foreign key violations.
	ErrForeignKey = errors.New("foreign key violation")
	// ErrCheck wraps check constraint violations.
	ErrCheck = errors.New("check constraint violation")
)

// classify tags driver constraint errors with one of the sentinels above so
// callers can branch with errors.Is regardless of the backing database.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case "23503":
			return fmt.Errorf("%w: %v", ErrForeignKey, err)
		case "23514":
			return fmt.Errorf("%w: %v", ErrCheck, err)
		}
		return err
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		switch sqErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", ErrForeignKey, err)
		case sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%w: %v", ErrCheck, err)
		}
	}

	return err
}
