package ddl

import (
	"fmt"
	"sort"
	"strings"

	gddl "hpmigrate/internal/ddl"
)

// BuildCreateSchemaSQL returns CREATE SCHEMA IF NOT EXISTS for the schema
// part of fqn, or "" when fqn is not schema-qualified.
func BuildCreateSchemaSQL(fqn string) string {
	schema, _ := gddl.SplitFQN(fqn)
	if schema == "" {
		return ""
	}
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", quoteFQN(schema))
}

// BuildCreateTableSQL builds a deterministic Postgres CREATE TABLE statement
// for the given table definition.
//
// Rules:
//   - t.FQN (fully-qualified table name) must be non-empty.
//   - Each column must have a non-empty Name and SQLType.
//   - Primary-key columns are always rendered as NOT NULL, even if Nullable=true.
//   - PRIMARY KEY is rendered as a separate constraint clause using quoted
//     column names, sorted alphabetically for determinism.
//   - Identifiers are double-quoted; embedded double-quotes are escaped.
//   - The statement uses CREATE TABLE IF NOT EXISTS.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("postgres ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("postgres ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		def, err := columnSQL(fqn, c)
		if err != nil {
			return "", err
		}
		if c.PrimaryKey && c.Nullable {
			def += " NOT NULL"
		}
		cols = append(cols, def)

		if c.PrimaryKey {
			pks = append(pks, quoteIdent(strings.TrimSpace(c.Name)))
		}
	}

	if len(pks) > 0 {
		sort.Strings(pks)
		cols = append(cols,
			fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")),
		)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	), nil
}

// columnSQL renders `"name" TYPE [NOT NULL] [DEFAULT expr]`.
func columnSQL(fqn string, c gddl.ColumnDef) (string, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return "", fmt.Errorf("postgres ddl: column with empty name in table %s", fqn)
	}
	typ := strings.TrimSpace(c.SQLType)
	if typ == "" {
		return "", fmt.Errorf("postgres ddl: column %s missing SQLType", name)
	}

	var sb strings.Builder
	sb.WriteString(quoteIdent(name))
	sb.WriteByte(' ')
	sb.WriteString(typ)
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if def := strings.TrimSpace(c.Default); def != "" {
		// default is raw SQL, no quoting here
		sb.WriteString(" DEFAULT ")
		sb.WriteString(def)
	}
	return sb.String(), nil
}

// quoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	quoteIdent(`plan_name`)  => `"plan_name"`
//	quoteIdent(`code|2`)     => `"code|2"`
//	quoteIdent(`weird"name`) => `"weird""name"`
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// quoteFQN quotes a possibly schema-qualified name like "hp.charge_long" to
// `"hp"."charge_long"`. Empty segments are ignored.
func quoteFQN(f string) string {
	parts := strings.Split(f, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}
