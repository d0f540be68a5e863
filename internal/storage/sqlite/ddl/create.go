// Package ddl renders SQLite DDL. SQLite has no CREATE SCHEMA; a qualifier
// in a table name refers to an attached database ("main", "temp", or one
// added with ATTACH).
package ddl

import (
	"fmt"
	"strings"

	gddl "hpmigrate/internal/ddl"
)

// MapType maps a logical type to a SQLite type affinity. Unknown kinds pass
// through; SQLite accepts any type name.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "text", "string":
		return "TEXT"
	case "int", "integer", "bigint", "bool", "boolean":
		return "INTEGER"
	case "real", "float", "double", "decimal", "numeric":
		return "REAL"
	case "date", "timestamp", "timestamptz", "datetime":
		return "TEXT"
	default:
		return strings.TrimSpace(kind)
	}
}

// CanonicalType reduces a declared type to its SQLite column affinity
// (integer, text, blob, real or numeric). pragma_table_info reports the type
// as declared, so VARCHAR(64) and TEXT both store text and compare equal.
func CanonicalType(t string) string {
	u := strings.ToUpper(t)
	switch {
	case strings.Contains(u, "INT"):
		return "integer"
	case strings.Contains(u, "CHAR"), strings.Contains(u, "CLOB"), strings.Contains(u, "TEXT"):
		return "text"
	case strings.Contains(u, "BLOB"), strings.TrimSpace(u) == "":
		return "blob"
	case strings.Contains(u, "REAL"), strings.Contains(u, "FLOA"), strings.Contains(u, "DOUB"):
		return "real"
	default:
		return "numeric"
	}
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("sqlite ddl: %w", err)
	}
	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			c.Nullable = false
			pks = append(pks, quoteIdent(strings.TrimSpace(c.Name)))
		}
		cols = append(cols, columnSQL(c))
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteFQN(t.FQN),
		strings.Join(cols, ",\n  "),
	), nil
}

// BuildAddColumnsSQL renders one ALTER TABLE ... ADD COLUMN per column.
// SQLite allows a single column per ALTER and has no IF NOT EXISTS form, so
// callers pass only missing columns and run the result in a transaction.
func BuildAddColumnsSQL(fqn string, cols []gddl.ColumnDef) ([]string, error) {
	if strings.TrimSpace(fqn) == "" {
		return nil, fmt.Errorf("sqlite ddl: table FQN must not be empty")
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("sqlite ddl: no columns to add to %s", fqn)
	}
	table := quoteFQN(fqn)
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.SQLType) == "" {
			return nil, fmt.Errorf("sqlite ddl: column %q needs a name and a type", c.Name)
		}
		out = append(out, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", table, columnSQL(c)))
	}
	return out, nil
}

func columnSQL(c gddl.ColumnDef) string {
	s := quoteIdent(strings.TrimSpace(c.Name)) + " " + strings.TrimSpace(c.SQLType)
	if !c.Nullable {
		s += " NOT NULL"
	}
	if def := strings.TrimSpace(c.Default); def != "" {
		s += " DEFAULT " + def
	}
	return s
}

// QuoteIdent double-quotes an identifier, doubling embedded quotes.
func QuoteIdent(id string) string { return quoteIdent(id) }

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteFQN(fqn string) string {
	schema, table := gddl.SplitFQN(fqn)
	if schema == "" {
		return quoteIdent(table)
	}
	return quoteIdent(schema) + "." + quoteIdent(table)
}

// Dialect renders SQLite DDL. It satisfies storage.Dialect.
type Dialect struct{}

// MapType implements storage.Dialect.
func (Dialect) MapType(logical string) string { return MapType(logical) }

// FoldsCase reports true: SQLite matches identifiers case-insensitively.
func (Dialect) FoldsCase() bool { return true }

// CanonicalType implements storage.Dialect.
func (Dialect) CanonicalType(t string) string { return CanonicalType(t) }

// CreateTable implements storage.Dialect.
func (Dialect) CreateTable(def gddl.TableDef) ([]string, error) {
	def.Columns = mapColumns(def.Columns)
	stmt, err := BuildCreateTableSQL(def)
	if err != nil {
		return nil, err
	}
	return []string{stmt}, nil
}

// AddColumns implements storage.Dialect.
func (Dialect) AddColumns(fqn string, cols []gddl.ColumnDef) ([]string, error) {
	return BuildAddColumnsSQL(fqn, mapColumns(cols))
}

func mapColumns(cols []gddl.ColumnDef) []gddl.ColumnDef {
	out := make([]gddl.ColumnDef, len(cols))
	for i, c := range cols {
		c.SQLType = MapType(c.SQLType)
		out[i] = c
	}
	return out
}
