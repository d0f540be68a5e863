// Package ddl provides MySQL-specific helpers for generating DDL from the
// generic ddl model: backtick-quoted identifiers, CREATE ... IF NOT EXISTS
// for schemas and tables, and multi-clause ALTER TABLE for column additions.
package ddl

import (
	"fmt"
	"strings"

	gddl "hpmigrate/internal/ddl"
)

// MapType maps a logical type into a MySQL column type. Empty kinds fall
// back to TEXT; unknown kinds are passed through for the server to judge.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "text", "string":
		return "TEXT"
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME(6)"
	default:
		return strings.TrimSpace(kind)
	}
}

// myAliases maps synonyms to the names information_schema.columns.data_type
// reports. BOOLEAN is stored as TINYINT(1).
var myAliases = map[string]string{
	"bool":              "tinyint",
	"boolean":           "tinyint",
	"integer":           "int",
	"dec":               "decimal",
	"numeric":           "decimal",
	"fixed":             "decimal",
	"double precision":  "double",
	"real":              "double",
	"character":         "char",
	"character varying": "varchar",
}

// CanonicalType returns the data_type spelling of t with any length or
// precision removed, so a rendered DATETIME(6) compares equal to datetime.
func CanonicalType(t string) string {
	base := gddl.BaseType(t)
	if alias, ok := myAliases[base]; ok {
		return alias
	}
	return base
}

// BuildCreateSchemaSQL returns CREATE SCHEMA IF NOT EXISTS for the database
// part of fqn, or "" for an unqualified name.
func BuildCreateSchemaSQL(fqn string) string {
	schema, _ := gddl.SplitFQN(fqn)
	if strings.TrimSpace(schema) == "" {
		return ""
	}
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", quoteFQN(schema))
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("mysql ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("mysql ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.PrimaryKey {
			c.Nullable = false
		}
		def, err := columnSQL(fqn, c)
		if err != nil {
			return "", err
		}
		cols = append(cols, def)
		if c.PrimaryKey {
			pks = append(pks, quoteIdent(strings.TrimSpace(c.Name)))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	), nil
}

// BuildAddColumnsSQL renders one ALTER TABLE with an ADD COLUMN clause per
// column. MySQL has no ADD COLUMN IF NOT EXISTS, so callers pass only
// columns they verified are missing; a single statement keeps the change
// all-or-nothing.
func BuildAddColumnsSQL(fqn string, cols []gddl.ColumnDef) (string, error) {
	fqn = strings.TrimSpace(fqn)
	if fqn == "" {
		return "", fmt.Errorf("mysql ddl: table FQN must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("mysql ddl: no columns to add to %s", fqn)
	}
	adds := make([]string, 0, len(cols))
	for _, c := range cols {
		def, err := columnSQL(fqn, c)
		if err != nil {
			return "", err
		}
		adds = append(adds, "ADD COLUMN "+def)
	}
	return fmt.Sprintf("ALTER TABLE %s\n  %s;", quoteFQN(fqn), strings.Join(adds, ",\n  ")), nil
}

func columnSQL(fqn string, c gddl.ColumnDef) (string, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return "", fmt.Errorf("mysql ddl: column with empty name in table %s", fqn)
	}
	typ := strings.TrimSpace(c.SQLType)
	if typ == "" {
		return "", fmt.Errorf("mysql ddl: column %s missing SQLType", name)
	}
	var sb strings.Builder
	sb.WriteString(quoteIdent(name))
	sb.WriteByte(' ')
	sb.WriteString(typ)
	if c.Nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if def := strings.TrimSpace(c.Default); def != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(def)
	}
	return sb.String(), nil
}

// quoteIdent quotes an identifier with backticks, doubling embedded ones.
func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

func quoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}

// Dialect renders MySQL DDL. It satisfies storage.Dialect.
type Dialect struct{}

// MapType implements storage.Dialect.
func (Dialect) MapType(logical string) string { return MapType(logical) }

// FoldsCase reports true: MySQL column names are case-insensitive.
func (Dialect) FoldsCase() bool { return true }

// CanonicalType implements storage.Dialect.
func (Dialect) CanonicalType(t string) string { return CanonicalType(t) }

// CreateTable implements storage.Dialect.
func (Dialect) CreateTable(def gddl.TableDef) ([]string, error) {
	def.Columns = mapColumns(def.Columns)
	create, err := BuildCreateTableSQL(def)
	if err != nil {
		return nil, err
	}
	if schema := BuildCreateSchemaSQL(def.FQN); schema != "" {
		return []string{schema, create}, nil
	}
	return []string{create}, nil
}

// AddColumns implements storage.Dialect.
func (Dialect) AddColumns(fqn string, cols []gddl.ColumnDef) ([]string, error) {
	stmt, err := BuildAddColumnsSQL(fqn, mapColumns(cols))
	if err != nil {
		return nil, err
	}
	return []string{stmt}, nil
}

func mapColumns(cols []gddl.ColumnDef) []gddl.ColumnDef {
	out := make([]gddl.ColumnDef, len(cols))
	for i, c := range cols {
		c.SQLType = MapType(c.SQLType)
		out[i] = c
	}
	return out
}
