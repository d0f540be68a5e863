package ddl

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding whitespace and applies Unicode NFC so that
// visually identical names from config files compare equal to catalog names.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// SplitFQN splits "schema.table" into its parts. A name without a dot yields
// an empty schema. Only the last dot separates schema from table, so
// "db.schema.table" gives ("db.schema", "table").
func SplitFQN(fqn string) (schema, table string) {
	fqn = strings.TrimSpace(fqn)
	i := strings.LastIndexByte(fqn, '.')
	if i < 0 {
		return "", fqn
	}
	return fqn[:i], fqn[i+1:]
}

// Validate checks that t can be rendered: FQN and at least one column
// present, every column named and typed, no name used twice. Names are
// compared case-insensitively, matching how most engines resolve them.
func (t TableDef) Validate() error {
	if _, table := SplitFQN(t.FQN); table == "" {
		return fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("ddl: at least one column is required for %s", t.FQN)
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for i, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("ddl: column %d of %s has an empty name", i, t.FQN)
		}
		if strings.TrimSpace(c.SQLType) == "" {
			return fmt.Errorf("ddl: column %s missing SQLType", name)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("ddl: column %s listed more than once", name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// BaseType reduces a rendered or catalog type to a comparable form:
// lower-cased, with length/precision arguments removed and inner
// whitespace collapsed.
//
//	"NVARCHAR(MAX)"               -> "nvarchar"
//	"text"                        -> "text"
//	"character varying(255)"      -> "character varying"
//	"TIMESTAMP(3) WITH TIME ZONE" -> "timestamp with time zone"
func BaseType(t string) string {
	var b strings.Builder
	depth := 0
	for _, r := range strings.ToLower(t) {
		switch {
		case r == '(':
			depth++
			b.WriteByte(' ')
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
