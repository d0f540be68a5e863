package ddl

import gddl "hpmigrate/internal/ddl"

// Dialect renders SQL Server DDL from the generic model. It satisfies
// storage.Dialect.
type Dialect struct{}

// MapType implements storage.Dialect.
func (Dialect) MapType(logical string) string { return MapType(logical) }

// FoldsCase reports true: column names follow the database collation,
// which is case-insensitive by default.
func (Dialect) FoldsCase() bool { return true }

// CanonicalType implements storage.Dialect.
func (Dialect) CanonicalType(t string) string { return CanonicalType(t) }

// CreateTable returns the guarded CREATE SCHEMA (when qualified) and the
// guarded CREATE TABLE script.
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

// AddColumns returns one COL_LENGTH-guarded ALTER TABLE per column.
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
