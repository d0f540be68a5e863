package ddl

import (
	"fmt"
	"strings"

	gddl "hpmigrate/internal/ddl"
)

// BuildAddColumnsSQL renders a single ALTER TABLE that adds every column
// with ADD COLUMN IF NOT EXISTS:
//
//	ALTER TABLE "hp"."charge_long"
//	  ADD COLUMN IF NOT EXISTS "plan_name" TEXT,
//	  ADD COLUMN IF NOT EXISTS "setting" TEXT;
//
// One statement means Postgres applies all additions or none, and re-running
// it is a no-op (with a NOTICE per existing column).
func BuildAddColumnsSQL(fqn string, cols []gddl.ColumnDef) (string, error) {
	fqn = strings.TrimSpace(fqn)
	if fqn == "" {
		return "", fmt.Errorf("postgres ddl: table FQN must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("postgres ddl: no columns to add to %s", fqn)
	}

	adds := make([]string, 0, len(cols))
	for _, c := range cols {
		def, err := columnSQL(fqn, c)
		if err != nil {
			return "", err
		}
		adds = append(adds, "ADD COLUMN IF NOT EXISTS "+def)
	}

	return fmt.Sprintf(
		"ALTER TABLE %s\n  %s;",
		quoteFQN(fqn),
		strings.Join(adds, ",\n  "),
	), nil
}
