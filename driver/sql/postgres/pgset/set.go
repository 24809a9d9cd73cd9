package pgset

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"

	"github.com/dogmatiq/encstrset/set"
)

type setimpl struct {
	db   *sql.DB
	id   int64
	name string
}

func (s *setimpl) Name() string {
	return s.name
}

func (s *setimpl) Has(ctx context.Context, v []byte) (bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (
			SELECT 1
			FROM encstrset.set_member
			WHERE set_id = $1
			AND digest = $2
		)`,
		s.id,
		digest(v),
	)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("cannot scan set membership: %w", err)
	}

	return exists, nil
}

func (s *setimpl) TryAdd(ctx context.Context, v []byte) (bool, error) {
	res, err := s.insert(ctx, v)
	if err != nil {
		return false, err
	}
	return checkRowAffected(res)
}

func (s *setimpl) TryRemove(ctx context.Context, v []byte) (bool, error) {
	res, err := s.delete(ctx, v)
	if err != nil {
		return false, err
	}
	return checkRowAffected(res)
}

func (s *setimpl) Len(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*)
		FROM encstrset.set_member
		WHERE set_id = $1`,
		s.id,
	)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("cannot count set members: %w", err)
	}

	return n, nil
}

func (s *setimpl) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(
		ctx,
		`DELETE FROM encstrset.set_member
		WHERE set_id = $1`,
		s.id,
	); err != nil {
		return fmt.Errorf("cannot delete set members: %w", err)
	}

	return nil
}

func (s *setimpl) Range(ctx context.Context, fn set.RangeFunc) error {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT member
		FROM encstrset.set_member
		WHERE set_id = $1`,
		s.id,
	)
	if err != nil {
		return fmt.Errorf("cannot query set members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v := []byte{}
		if err := rows.Scan(&v); err != nil {
			return fmt.Errorf("cannot scan set member: %w", err)
		}

		ok, err := fn(ctx, v)
		if !ok || err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("cannot range over set members: %w", err)
	}

	return nil
}

func (s *setimpl) Close() error {
	return nil
}

func (s *setimpl) insert(ctx context.Context, v []byte) (sql.Result, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO encstrset.set_member (
			set_id,
			digest,
			member
		) VALUES (
			$1, $2, $3
		) ON CONFLICT (set_id, digest) DO NOTHING
		`,
		s.id,
		digest(v),
		nonNil(v),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot insert member into set: %w", err)
	}

	return res, nil
}

func (s *setimpl) delete(ctx context.Context, v []byte) (sql.Result, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM encstrset.set_member
		WHERE set_id = $1
		AND digest = $2`,
		s.id,
		digest(v),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot delete member from set: %w", err)
	}

	return res, nil
}

func checkRowAffected(res sql.Result) (bool, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cannot get rows affected: %w", err)
	}

	if rows == 0 {
		return false, nil
	}

	if rows == 1 {
		return true, nil
	}

	return false, fmt.Errorf(
		"unexpected number of rows affected: %d, expected 0 or 1",
		rows,
	)
}

// nonNil returns v, or an empty slice if v is nil.
//
// A nil slice is sent to PostgreSQL as NULL, which is not a valid member.
func nonNil(v []byte) []byte {
	if v == nil {
		return []byte{}
	}
	return v
}

// digest returns the key under which v is stored.
func digest(v []byte) []byte {
	d := sha256.Sum256(v)
	return d[:]
}
