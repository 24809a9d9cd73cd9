package pgset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dogmatiq/encstrset/internal/syncx"
	"github.com/dogmatiq/encstrset/set"
)

// Store is an implementation of [set.Store] that stores sets in a PostgreSQL
// database.
//
// Members are keyed by their SHA-256 digest, so their length is not bounded by
// the size limit of a B-tree index entry.
type Store struct {
	// DB is the database connection pool used to access the sets.
	DB *sql.DB

	createSchemaOnce syncx.SucceedOnce
}

var _ set.Store = (*Store)(nil)

// Open returns the set with the given name.
func (s *Store) Open(ctx context.Context, name string) (set.Set, error) {
	if err := s.createSchemaOnce.Do(ctx, s.createSchema); err != nil {
		return nil, fmt.Errorf("cannot create schema: %w", err)
	}

	id, err := s.resolveID(ctx, name)
	if err != nil {
		return nil, err
	}

	return &setimpl{
		db:   s.DB,
		id:   id,
		name: name,
	}, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	return CreateSchema(ctx, s.DB)
}

// resolveID returns the internal identifier of the set with the given name,
// creating it if necessary.
func (s *Store) resolveID(ctx context.Context, name string) (int64, error) {
	row := s.DB.QueryRowContext(
		ctx,
		`INSERT INTO encstrset.set AS s (
			name
		) VALUES (
			$1
		) ON CONFLICT (name) DO UPDATE SET
			name = s.name
		RETURNING id`,
		name,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("cannot resolve set ID: %w", err)
	}

	return id, nil
}
