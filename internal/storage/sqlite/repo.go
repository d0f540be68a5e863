// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the pure-Go modernc.org/sqlite driver. SQLite DDL is
// transactional, so ExecTx applies a batch of ALTERs all-or-nothing.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"hpmigrate/internal/ddl"
	"hpmigrate/internal/storage"
	sqliteddl "hpmigrate/internal/storage/sqlite/ddl"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:hp.db?_pragma=busy_timeout(5000)"
	//   ":memory:"
	DSN string

	// Table is the target table. A qualifier names an attached database,
	// e.g. "main.charge_long"; unqualified names resolve to "main".
	Table string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Every connection to an in-memory database gets its own empty copy.
	if isMemory(cfg.DSN) {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", classify(err))
	}

	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// splitTable resolves fqn into (database, table), defaulting to "main".
func splitTable(fqn string) (string, string) {
	schema, table := ddl.SplitFQN(fqn)
	if schema == "" {
		schema = "main"
	}
	return schema, table
}

// TableExists implements storage.Repository.TableExists. A qualifier that
// names no attached database reports false.
func (r *Repository) TableExists(ctx context.Context, fqn string) (bool, error) {
	schema, table := splitTable(fqn)

	var attached int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_database_list WHERE name = ?`, schema,
	).Scan(&attached); err != nil {
		return false, fmt.Errorf("sqlite: database lookup %s: %w", schema, classify(err))
	}
	if attached == 0 {
		return false, nil
	}

	q := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s.sqlite_master WHERE type = 'table' AND name = ?`,
		sqliteddl.QuoteIdent(schema),
	)
	var n int
	if err := r.db.QueryRowContext(ctx, q, table).Scan(&n); err != nil {
		return false, fmt.Errorf("sqlite: table lookup %s: %w", fqn, classify(err))
	}
	return n > 0, nil
}

// Columns implements storage.Repository.Columns via pragma_table_info.
func (r *Repository) Columns(ctx context.Context, fqn string) ([]ddl.ColumnInfo, error) {
	schema, table := splitTable(fqn)
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, type, "notnull" FROM pragma_table_info(?, ?) ORDER BY cid`,
		table, schema,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns of %s: %w", fqn, classify(err))
	}
	defer rows.Close()

	var out []ddl.ColumnInfo
	for rows.Next() {
		var (
			c       ddl.ColumnInfo
			notNull int
		)
		if err := rows.Scan(&c.Name, &c.DataType, &notNull); err != nil {
			return nil, fmt.Errorf("sqlite: scan column: %w", err)
		}
		c.Nullable = notNull == 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: columns of %s: %w", fqn, classify(err))
	}
	return out, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return classify(err)
	}
	return nil
}

// ExecTx implements storage.Repository.ExecTx. On any error the
// transaction is rolled back and the table is left as it was.
func (r *Repository) ExecTx(ctx context.Context, stmts []string) error {
	if len(stmts) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", classify(err))
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			_ = tx.Rollback()
			return classify(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", classify(err))
	}
	return nil
}

// classify maps SQLite result codes onto the storage error classes.
// "no such table" is reported as a generic SQLITE_ERROR, so it is matched
// on the message. SQLite accepts any type name, so ErrTypeRejected never
// applies here.
func classify(err error) error {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_AUTH, sqlite3.SQLITE_PERM:
		return storage.Classify(err, storage.ErrPermission)
	case sqlite3.SQLITE_ERROR:
		if strings.Contains(sqliteErr.Error(), "no such table") {
			return storage.Classify(err, storage.ErrTableNotFound)
		}
	}
	return err
}
