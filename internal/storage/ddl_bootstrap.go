package storage

import (
	"fmt"
	"sync"

	"hpmigrate/internal/ddl"
)

// Dialect renders backend-specific DDL for the generic ddl model. Backends
// register one per storage kind at init time so that callers can produce
// DDL knowing only the kind.
type Dialect interface {
	// MapType maps a logical type ("text", "int", ...) to a column type.
	MapType(logical string) string

	// CreateTable returns the statements that create def's schema (where
	// the engine has schemas) and table if they do not exist yet.
	CreateTable(def ddl.TableDef) ([]string, error)

	// AddColumns returns the statements that add cols to table fqn. Where
	// the engine offers a conditional form (ADD COLUMN IF NOT EXISTS,
	// COL_LENGTH guards) it is used; otherwise callers must only pass
	// columns they checked are missing.
	AddColumns(fqn string, cols []ddl.ColumnDef) ([]string, error)

	// FoldsCase reports whether the engine treats column names that differ
	// only in case as the same column.
	FoldsCase() bool

	// CanonicalType reduces a rendered type (from MapType) or a catalog
	// type to one spelling, so that aliases of the same type compare equal.
	CanonicalType(t string) string
}

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]Dialect{}
)

// RegisterDDL registers (or replaces) the Dialect for the given storage kind.
func RegisterDDL(kind string, d Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = d
}

// LookupDDL returns the Dialect registered for kind.
func LookupDDL(kind string) (Dialect, error) {
	ddlMu.RLock()
	d, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no DDL dialect registered for storage.kind=%q", kind)
	}
	return d, nil
}
