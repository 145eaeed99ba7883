package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createUserDocument = `
CREATE TABLE IF NOT EXISTS "UserDocument" (
	"userId"    TEXT        NOT NULL,
	key         TEXT        NOT NULL,
	value       JSONB       NOT NULL,
	"updatedAt" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY ("userId", key)
)`

var requiredColumns = []struct {
	table  string
	column string
}{
	{table: "UserDocument", column: "userId"},
	{table: "UserDocument", column: "key"},
	{table: "UserDocument", column: "value"},
	{table: "UserDocument", column: "updatedAt"},
}

// EnsureSchema creates the document table when missing and then checks the
// columns the store relies on.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("database pool is nil")
	}
	if _, err := pool.Exec(ctx, createUserDocument); err != nil {
		return fmt.Errorf("create UserDocument: %w", err)
	}
	return ValidateSchema(ctx, pool)
}

func ValidateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, item := range requiredColumns {
		ok, err := columnExists(ctx, pool, item.table, item.column)
		if err != nil {
			return fmt.Errorf("failed checking schema for %s.%s: %w", item.table, item.column, err)
		}
		if !ok {
			return fmt.Errorf("required column %s.%s is missing", item.table, item.column)
		}
	}
	return nil
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	table := strings.TrimSpace(tableName)
	column := strings.TrimSpace(columnName)
	if table == "" || column == "" {
		return false, fmt.Errorf("table/column must not be empty")
	}
	var exists bool
	err := pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM information_schema.columns
		   WHERE table_schema = current_schema()
		     AND lower(table_name) = lower($1)
		     AND lower(column_name) = lower($2)
		 )`,
		table,
		column,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
