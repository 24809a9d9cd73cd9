package pgerror

import (
	"context"
	"database/sql"
	"fmt"
)

// maxAttempts is the number of times [Retry] attempts a transaction before
// giving up.
const maxAttempts = 5

// Retry executes fn within a transaction, retrying it if it fails with one of
// the given error codes.
func Retry(
	ctx context.Context,
	db *sql.DB,
	fn func(*sql.Tx) error,
	codes ...string,
) error {
	for attempt := 1; ; attempt++ {
		err := try(ctx, db, fn, attempt)
		if attempt == maxAttempts || !Is(err, codes...) {
			return err
		}
	}
}

func try(
	ctx context.Context,
	db *sql.DB,
	fn func(*sql.Tx) error,
	attempt int,
) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot start transaction (attempt #%d): %w", attempt, err)
	}
	defer tx.Rollback() // nolint:errcheck

	if err := fn(tx); err != nil {
		return fmt.Errorf("cannot perform transaction (attempt #%d): %w", attempt, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit transaction (attempt #%d): %w", attempt, err)
	}

	return nil
}
