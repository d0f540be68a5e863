package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"hpmigrate/internal/ddl"
	"hpmigrate/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is printed but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the
// config, e.g. "storage.db.table" or "columns[3].name".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateMigration performs static checks over m without touching the
// database. It does not mutate m.
func ValidateMigration(m Migration) []Issue {
	var issues []Issue

	if strings.TrimSpace(m.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics and log lines",
		})
	}
	issues = append(issues, validateStorage(m.Storage)...)
	issues = append(issues, validateColumns(m.Columns)...)
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	case "postgres", "mssql", "mysql", "sqlite":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty (set it in the file, with -dsn, or via HPMIGRATE_DSN)",
		})
	}

	table := strings.TrimSpace(s.DB.Table)
	if table == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	} else if sch, t := ddl.SplitFQN(table); t == "" || strings.HasSuffix(sch, ".") || strings.HasPrefix(table, ".") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  fmt.Sprintf("malformed table name %q; want table or schema.table", table),
		})
	}

	return issues
}

func validateColumns(cols []Column) []Issue {
	var issues []Issue
	seen := make(map[string]int, len(cols))

	for i, c := range cols {
		path := fmt.Sprintf("columns[%d]", i)
		name := ddl.NormalizeName(c.Name)
		if name == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  "column name must not be empty",
			})
			continue
		}
		if raw := strings.TrimSpace(c.Name); !norm.NFC.IsNormalString(raw) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".name",
				Message:  fmt.Sprintf("column name %q is not NFC-normalized; it will be created as %q", raw, name),
			})
		}
		key := strings.ToLower(name)
		if first, dup := seen[key]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("column %q duplicates columns[%d]", name, first),
			})
			continue
		}
		seen[key] = i

		if typ := strings.TrimSpace(c.Type); typ != "" && !strings.EqualFold(typ, schema.TextType) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".type",
				Message:  fmt.Sprintf("type %q is not text; charge_long columns are normally text", typ),
			})
		}
	}
	return issues
}
