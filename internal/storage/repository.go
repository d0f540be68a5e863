// Package storage contains storage-agnostic contracts used by the migrator.
//
// Concrete backends (postgres, mssql, mysql, sqlite) live in subpackages and
// register themselves at init time through Register and RegisterDDL. Callers
// obtain a Repository via New and never import a backend directly; see
// internal/storage/all for the blank-import wiring.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hpmigrate/internal/ddl"
)

// Repository is the minimal surface a backend exposes for schema changes.
type Repository interface {
	// Exec runs a single statement (typically DDL).
	Exec(ctx context.Context, sql string) error

	// ExecTx runs stmts in order and applies all of them or none. Backends
	// whose engine commits DDL implicitly document what they do instead.
	ExecTx(ctx context.Context, stmts []string) error

	// TableExists reports whether the (optionally schema-qualified) table
	// exists.
	TableExists(ctx context.Context, fqn string) (bool, error)

	// Columns lists the table's columns in ordinal order. A missing table
	// yields an empty slice, not an error.
	Columns(ctx context.Context, fqn string) ([]ddl.ColumnInfo, error)

	Close()
}

// Config carries what every backend needs to connect.
type Config struct {
	Kind  string // "postgres", "mssql", "mysql", "sqlite"
	DSN   string
	Table string // fully qualified target table, e.g. "hp.charge_long"
}

// Factory constructs a Repository for a given Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns a sorted snapshot of registered kinds.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
