// Package ddl provides MSSQL-specific helpers for generating CREATE TABLE
// and ALTER TABLE statements from the generic ddl model.
//
// The builders here:
//   - Use SQL Server-style identifier quoting: [schema].[table], [col].
//   - Wrap DDL in IF OBJECT_ID / IF COL_LENGTH guards since T-SQL has no
//     IF NOT EXISTS for tables or columns.
//   - Treat ColumnDef.Default as raw SQL.
//   - Render PRIMARY KEY constraints as a separate clause.
package ddl

import (
	"fmt"
	"strings"

	gddl "hpmigrate/internal/ddl"
)

// BuildCreateSchemaSQL returns a guarded CREATE SCHEMA for the schema part
// of fqn, or "" when fqn has no schema or a database-qualified one.
// CREATE SCHEMA must be the only statement in its batch, hence EXEC.
func BuildCreateSchemaSQL(fqn string) string {
	schema, _ := gddl.SplitFQN(fqn)
	schema = strings.TrimSpace(schema)
	if schema == "" || strings.Contains(schema, ".") {
		return ""
	}
	return fmt.Sprintf(
		"IF SCHEMA_ID(%s) IS NULL\n  EXEC(%s);",
		nLiteral(schema),
		nLiteral("CREATE SCHEMA "+quoteIdent(schema)),
	)
}

// BuildCreateTableSQL returns a T-SQL script that creates a table matching
// the provided definition if it does not already exist.
//
// The generated script has the form:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE [NOT NULL] [DEFAULT expr],
//	    [col2] TYPE NULL,
//	    PRIMARY KEY ([pk1], [pk2])
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("mssql ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("mssql ddl: at least one column is required")
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
		cols = append(cols,
			fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")),
		)
	}

	fqnQuoted := quoteFQN(fqn)

	stmt := fmt.Sprintf(
		"IF OBJECT_ID(%s, N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		nLiteral(fqnQuoted),
		fqnQuoted,
		strings.Join(cols, ",\n    "),
	)

	return stmt, nil
}

// columnSQL renders `[name] TYPE NULL|NOT NULL [DEFAULT expr]`. NULL is
// spelled out because the server default depends on ANSI_NULL_DFLT settings.
func columnSQL(fqn string, c gddl.ColumnDef) (string, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return "", fmt.Errorf("mssql ddl: column with empty name in table %s", fqn)
	}
	typ := strings.TrimSpace(c.SQLType)
	if typ == "" {
		return "", fmt.Errorf("mssql ddl: column %s missing SQLType", name)
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

// quoteIdent quotes a single identifier segment for SQL Server using
// bracket syntax, escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN quotes a possibly schema-qualified table name, e.g.:
//
//	"hp.charge_long" -> [hp].[charge_long]
//	"charge_long"    -> [charge_long]
//	"a.b.c"          -> [a].[b].[c]
func QuoteFQN(fqn string) string { return quoteFQN(fqn) }

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

// nLiteral renders s as a Unicode string literal, doubling single quotes.
func nLiteral(s string) string {
	return "N'" + strings.ReplaceAll(s, "'", "''") + "'"
}
