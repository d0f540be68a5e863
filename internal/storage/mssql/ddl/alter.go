package ddl

import (
	"fmt"
	"strings"

	gddl "hpmigrate/internal/ddl"
)

// BuildAddColumnSQL renders one guarded column addition:
//
//	IF COL_LENGTH(N'[hp].[charge_long]', N'plan_name') IS NULL
//	  ALTER TABLE [hp].[charge_long] ADD [plan_name] NVARCHAR(MAX) NULL;
//
// COL_LENGTH returns NULL when the column (or the table) does not exist, so
// the statement is safe to re-run.
func BuildAddColumnSQL(fqn string, c gddl.ColumnDef) (string, error) {
	fqn = strings.TrimSpace(fqn)
	if fqn == "" {
		return "", fmt.Errorf("mssql ddl: table FQN must not be empty")
	}
	def, err := columnSQL(fqn, c)
	if err != nil {
		return "", err
	}
	fqnQuoted := quoteFQN(fqn)
	return fmt.Sprintf(
		"IF COL_LENGTH(%s, %s) IS NULL\n  ALTER TABLE %s ADD %s;",
		nLiteral(fqnQuoted),
		nLiteral(strings.TrimSpace(c.Name)),
		fqnQuoted,
		def,
	), nil
}

// BuildAddColumnsSQL renders one guarded statement per column, in order.
func BuildAddColumnsSQL(fqn string, cols []gddl.ColumnDef) ([]string, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("mssql ddl: no columns to add to %s", fqn)
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		s, err := BuildAddColumnSQL(fqn, c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
