package commonschema

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/dogmatiq/encstrset/driver/sql/postgres/internal/pgerror"
)

//go:embed schema.sql
var schema string

// Create creates the PostgreSQL schema elements required by all
// PostgreSQL-based stores, followed by each of the additional DDL statements.
func Create(
	ctx context.Context,
	db *sql.DB,
	additional ...string,
) error {
	return pgerror.Retry(
		ctx,
		db,
		func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, schema); err != nil {
				return err
			}

			for _, q := range additional {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					return err
				}
			}

			return nil
		},
		// IF NOT EXISTS does not prevent unique violations when two sessions
		// create the same catalog entries concurrently.
		pgerror.CodeUniqueViolation,
	)
}
