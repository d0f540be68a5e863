// Package postgres implements a Postgres repository using pgx v5. Schema
// introspection goes through information_schema; DDL runs on a pgxpool
// connection, inside a transaction when more than one statement is needed.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hpmigrate/internal/ddl"
	"hpmigrate/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN   string // connection string for pgxpool
	Table string // fully qualified target table name, e.g., "hp.charge_long"
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", classify(err))
	}
	close := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, close, nil
}

const tableExistsSQL = `
SELECT EXISTS (
    SELECT 1
    FROM information_schema.tables
    WHERE table_schema = COALESCE(NULLIF($1::text, ''), current_schema())
      AND table_name = $2
)`

const columnsSQL = `
SELECT column_name, data_type, is_nullable = 'YES'
FROM information_schema.columns
WHERE table_schema = COALESCE(NULLIF($1::text, ''), current_schema())
  AND table_name = $2
ORDER BY ordinal_position`

// TableExists implements storage.Repository.TableExists. An unqualified
// name resolves against current_schema().
func (r *Repository) TableExists(ctx context.Context, fqn string) (bool, error) {
	schema, table := ddl.SplitFQN(fqn)
	var ok bool
	if err := r.pool.QueryRow(ctx, tableExistsSQL, schema, table).Scan(&ok); err != nil {
		return false, fmt.Errorf("postgres: table lookup %s: %w", fqn, classify(err))
	}
	return ok, nil
}

// Columns implements storage.Repository.Columns.
func (r *Repository) Columns(ctx context.Context, fqn string) ([]ddl.ColumnInfo, error) {
	schema, table := ddl.SplitFQN(fqn)
	rows, err := r.pool.Query(ctx, columnsSQL, schema, table)
	if err != nil {
		return nil, fmt.Errorf("postgres: columns of %s: %w", fqn, classify(err))
	}
	defer rows.Close()

	var out []ddl.ColumnInfo
	for rows.Next() {
		var c ddl.ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable); err != nil {
			return nil, fmt.Errorf("postgres: scan column: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: columns of %s: %w", fqn, classify(err))
	}
	return out, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return classify(err)
	}
	return nil
}

// ExecTx implements storage.Repository.ExecTx. Postgres DDL is
// transactional, so a failure part-way leaves the schema untouched.
func (r *Repository) ExecTx(ctx context.Context, stmts []string) error {
	if len(stmts) == 0 {
		return nil
	}
	if len(stmts) == 1 {
		return r.Exec(ctx, stmts[0])
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", classify(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, s := range stmts {
		if _, err := tx.Exec(ctx, s); err != nil {
			return classify(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", classify(err))
	}
	return nil
}

// classify maps SQLSTATE codes onto the storage error classes.
//
//	42P01 undefined_table, 3F000 invalid_schema_name -> ErrTableNotFound
//	42704 undefined_object (unknown type)            -> ErrTypeRejected
//	42501 insufficient_privilege                     -> ErrPermission
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UndefinedTable, pgerrcode.InvalidSchemaName:
		return storage.Classify(err, storage.ErrTableNotFound)
	case pgerrcode.UndefinedObject:
		return storage.Classify(err, storage.ErrTypeRejected)
	case pgerrcode.InsufficientPrivilege:
		return storage.Classify(err, storage.ErrPermission)
	}
	return err
}
