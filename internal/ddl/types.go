// Package ddl defines a small, backend-agnostic model for schema changes.
//
// The model does not assume any SQL dialect. Identifiers are kept unquoted;
// quoting, type mapping and conditional clauses (IF NOT EXISTS and friends)
// are the job of the backend packages under internal/storage/<kind>/ddl.
package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting/escaping happens at render time)
//   - SQLType: logical or backend type (e.g., text, bigint). Backends map it.
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key (CREATE only)
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table") and will
// be quoted/escaped by renderers as needed.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names of t in declaration order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// ColumnInfo is what a backend reports about an existing column.
type ColumnInfo struct {
	Name     string
	DataType string
	Nullable bool
}
