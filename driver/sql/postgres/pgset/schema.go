package pgset

import (
	"context"
	"database/sql"

	"github.com/dogmatiq/encstrset/driver/sql/postgres/internal/commonschema"
)

// CreateSchema creates the PostgreSQL schema elements required by
// [Store].
//
// It is called automatically the first time a set is opened. It may be called
// ahead of time to avoid the DDL running on a latency-sensitive path.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	return commonschema.Create(
		ctx,
		db,
		`CREATE TABLE IF NOT EXISTS encstrset.set (
			id   BIGSERIAL NOT NULL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS encstrset.set_member (
			set_id BIGINT NOT NULL REFERENCES encstrset.set (id),
			digest BYTEA NOT NULL,
			member BYTEA NOT NULL,

			PRIMARY KEY (set_id, digest)
		)`,
	)
}
