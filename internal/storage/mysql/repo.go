// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and go-sql-driver/mysql.
//
// MySQL commits DDL implicitly, so ExecTx cannot roll back a half-applied
// sequence. The migrator sidesteps this by sending all additions in one
// ALTER TABLE statement, which InnoDB applies atomically.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/VividCortex/mysqlerr"
	"github.com/go-sql-driver/mysql"

	"hpmigrate/internal/ddl"
	"hpmigrate/internal/storage"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN   string // go-sql-driver DSN, e.g. "user:pass@tcp(localhost:3306)/hp"
	Table string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a connection pool and returns a Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", classify(err))
	}
	return &Repository{db: db, cfg: cfg}, func() { _ = db.Close() }, nil
}

const tableExistsSQL = `
SELECT COUNT(*)
FROM information_schema.tables
WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
  AND table_name = ?`

const columnsSQL = `
SELECT column_name, data_type, is_nullable = 'YES'
FROM information_schema.columns
WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
  AND table_name = ?
ORDER BY ordinal_position`

// TableExists implements storage.Repository.TableExists. An unqualified
// name resolves against the connection's default database.
func (r *Repository) TableExists(ctx context.Context, fqn string) (bool, error) {
	schema, table := ddl.SplitFQN(fqn)
	var n int
	if err := r.db.QueryRowContext(ctx, tableExistsSQL, schema, table).Scan(&n); err != nil {
		return false, fmt.Errorf("mysql: table lookup %s: %w", fqn, classify(err))
	}
	return n > 0, nil
}

// Columns implements storage.Repository.Columns.
func (r *Repository) Columns(ctx context.Context, fqn string) ([]ddl.ColumnInfo, error) {
	schema, table := ddl.SplitFQN(fqn)
	rows, err := r.db.QueryContext(ctx, columnsSQL, schema, table)
	if err != nil {
		return nil, fmt.Errorf("mysql: columns of %s: %w", fqn, classify(err))
	}
	defer rows.Close()

	var out []ddl.ColumnInfo
	for rows.Next() {
		var c ddl.ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable); err != nil {
			return nil, fmt.Errorf("mysql: scan column: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: columns of %s: %w", fqn, classify(err))
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

// ExecTx runs stmts in order on one connection and stops at the first
// error. There is no rollback: each DDL statement commits on its own.
func (r *Repository) ExecTx(ctx context.Context, stmts []string) error {
	if len(stmts) == 0 {
		return nil
	}
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("mysql: acquire conn: %w", classify(err))
	}
	defer conn.Close()

	for _, s := range stmts {
		if _, err := conn.ExecContext(ctx, s); err != nil {
			return classify(err)
		}
	}
	return nil
}

// classify maps MySQL error numbers onto the storage error classes.
//
//	1146 no such table, 1049 unknown database     -> ErrTableNotFound
//	1064 syntax error (unknown type name)         -> ErrTypeRejected
//	1142 command denied, 1044/1045 access denied  -> ErrPermission
func classify(err error) error {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return err
	}
	switch myErr.Number {
	case mysqlerr.ER_NO_SUCH_TABLE, mysqlerr.ER_BAD_DB_ERROR:
		return storage.Classify(err, storage.ErrTableNotFound)
	case mysqlerr.ER_PARSE_ERROR:
		return storage.Classify(err, storage.ErrTypeRejected)
	case mysqlerr.ER_TABLEACCESS_DENIED_ERROR, mysqlerr.ER_DBACCESS_DENIED_ERROR, mysqlerr.ER_ACCESS_DENIED_ERROR:
		return storage.Classify(err, storage.ErrPermission)
	}
	return err
}
