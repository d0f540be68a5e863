package ddl

import gddl "hpmigrate/internal/ddl"

// Dialect renders Postgres DDL from the generic model. It satisfies
// storage.Dialect.
type Dialect struct{}

// MapType implements storage.Dialect.
func (Dialect) MapType(logical string) string { return MapType(logical) }

// FoldsCase reports false: a quoted Postgres identifier keeps its case, so
// "Metadata" and metadata are different columns.
func (Dialect) FoldsCase() bool { return false }

// CanonicalType implements storage.Dialect.
func (Dialect) CanonicalType(t string) string { return CanonicalType(t) }

// CreateTable returns CREATE SCHEMA (when qualified) and CREATE TABLE, both
// guarded with IF NOT EXISTS.
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

// AddColumns returns one ALTER TABLE ... ADD COLUMN IF NOT EXISTS statement.
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
