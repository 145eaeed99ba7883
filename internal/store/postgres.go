package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Querier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Postgres keeps documents in the "UserDocument" table created by
// db.EnsureSchema.
type Postgres struct {
	db Querier
}

func NewPostgres(db Querier) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, userID, key string) ([]byte, error) {
	var value string
	err := p.db.QueryRow(
		ctx,
		`SELECT value::text FROM "UserDocument" WHERE "userId" = $1 AND key = $2`,
		userID,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (p *Postgres) Put(ctx context.Context, userID, key string, value []byte) error {
	_, err := p.db.Exec(
		ctx,
		`INSERT INTO "UserDocument" ("userId", key, value, "updatedAt")
		 VALUES ($1, $2, $3::jsonb, NOW())
		 ON CONFLICT ("userId", key)
		 DO UPDATE SET value = EXCLUDED.value, "updatedAt" = NOW()`,
		userID,
		key,
		string(value),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, userID, key string) error {
	if _, err := p.db.Exec(
		ctx,
		`DELETE FROM "UserDocument" WHERE "userId" = $1 AND key = $2`,
		userID,
		key,
	); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
