// Package mssql implements a Microsoft SQL Server repository on top of
// database/sql and go-mssqldb. Introspection uses OBJECT_ID and sys.columns;
// DDL runs inside a transaction, which SQL Server honours for ALTER TABLE.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"hpmigrate/internal/ddl"
	"hpmigrate/internal/storage"
	msddl "hpmigrate/internal/storage/mssql/ddl"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN   string
	Table string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", classify(err))
	}
	close := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, close, nil
}

const tableExistsSQL = `SELECT CASE WHEN OBJECT_ID(@p1, N'U') IS NULL THEN 0 ELSE 1 END`

const columnsSQL = `
SELECT c.name, t.name, c.is_nullable
FROM sys.columns AS c
JOIN sys.types AS t ON t.user_type_id = c.user_type_id
WHERE c.object_id = OBJECT_ID(@p1, N'U')
ORDER BY c.column_id`

// TableExists implements storage.Repository.TableExists. Unqualified names
// resolve against the login's default schema.
func (r *Repository) TableExists(ctx context.Context, fqn string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, tableExistsSQL, msddl.QuoteFQN(fqn)).Scan(&n); err != nil {
		return false, fmt.Errorf("mssql: table lookup %s: %w", fqn, classify(err))
	}
	return n == 1, nil
}

// Columns implements storage.Repository.Columns.
func (r *Repository) Columns(ctx context.Context, fqn string) ([]ddl.ColumnInfo, error) {
	rows, err := r.db.QueryContext(ctx, columnsSQL, msddl.QuoteFQN(fqn))
	if err != nil {
		return nil, fmt.Errorf("mssql: columns of %s: %w", fqn, classify(err))
	}
	defer rows.Close()

	var out []ddl.ColumnInfo
	for rows.Next() {
		var c ddl.ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable); err != nil {
			return nil, fmt.Errorf("mssql: scan column: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mssql: columns of %s: %w", fqn, classify(err))
	}
	return out, nil
}

// Exec implements storage.Repository.Exec.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return classify(err)
	}
	return nil
}

// ExecTx implements storage.Repository.ExecTx.
func (r *Repository) ExecTx(ctx context.Context, stmts []string) error {
	if len(stmts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", classify(err))
	}
	rollback := func() { _ = tx.Rollback() }

	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			rollback()
			return classify(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", classify(err))
	}
	return nil
}

// classify maps SQL Server error numbers onto the storage error classes.
//
//	208  invalid object name, 4902 object not found     -> ErrTableNotFound
//	2715 cannot find data type                          -> ErrTypeRejected
//	229, 262 permission denied, 1088 object/permission  -> ErrPermission
func classify(err error) error {
	var msErr mssql.Error
	if !errors.As(err, &msErr) {
		return err
	}
	switch msErr.Number {
	case 208, 4902:
		return storage.Classify(err, storage.ErrTableNotFound)
	case 2715:
		return storage.Classify(err, storage.ErrTypeRejected)
	case 229, 262, 1088:
		return storage.Classify(err, storage.ErrPermission)
	}
	return err
}
