// Package config defines the JSON configuration model for a migration run.
// Files are decoded with encoding/json; command-line flags and the
// environment override individual fields in cmd/hpmigrate.
//
// Example:
//
//	{
//	  "job": "charge_long_columns",
//	  "storage": {
//	    "kind": "postgres",
//	    "db": { "dsn": "postgres://etl@localhost/hospitalcharge", "table": "hp.charge_long" }
//	  },
//	  "columns": [ { "name": "plan_name", "type": "text" } ]
//	}
//
// An empty or absent "columns" list selects the standard charge_long
// additions.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"hpmigrate/internal/ddl"
	"hpmigrate/internal/schema"
)

// Migration is the top-level object decoded from a config file.
type Migration struct {
	// Job labels metrics and log lines.
	Job string `json:"job"`

	Storage Storage `json:"storage"`

	// Columns lists the columns the table must end up with.
	Columns []Column `json:"columns"`
}

// Storage selects the backend and target table.
type Storage struct {
	// Kind selects the backend: "postgres", "mssql", "mysql" or "sqlite".
	Kind string `json:"kind"`

	DB DBConfig `json:"db"`
}

// DBConfig configures the database connection and target table.
type DBConfig struct {
	// DSN is the driver connection string.
	DSN string `json:"dsn"`

	// Table is the optionally schema-qualified table, e.g. "hp.charge_long".
	Table string `json:"table"`

	// AutoCreateTable creates the schema and base table when missing instead
	// of failing. Off by default.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Column is one requested column. Type defaults to text.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Load decodes the migration config at path.
func Load(path string) (Migration, error) {
	f, err := os.Open(path)
	if err != nil {
		return Migration{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var m Migration
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return Migration{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return m, nil
}

// TableDef converts m into the column-addition request. Names are
// normalized and every column is nullable with no default.
func (m Migration) TableDef() ddl.TableDef {
	table := strings.TrimSpace(m.Storage.DB.Table)
	if len(m.Columns) == 0 {
		return schema.Additions(table)
	}
	if table == "" {
		table = schema.DefaultTable
	}
	cols := make([]ddl.ColumnDef, len(m.Columns))
	for i, c := range m.Columns {
		typ := strings.TrimSpace(c.Type)
		if typ == "" {
			typ = schema.TextType
		}
		cols[i] = ddl.ColumnDef{Name: ddl.NormalizeName(c.Name), SQLType: typ, Nullable: true}
	}
	return ddl.TableDef{FQN: table, Columns: cols}
}
