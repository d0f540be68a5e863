package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validMigration() Migration {
	return Migration{
		Job: "charge_long_columns",
		Storage: Storage{
			Kind: "postgres",
			DB: DBConfig{
				DSN:   "postgres://etl@localhost/hospitalcharge",
				Table: "hp.charge_long",
			},
		},
	}
}

func TestValidateMigration_ValidMinimal(t *testing.T) {
	t.Parallel()

	if issues := ValidateMigration(validMigration()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestValidateMigration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Migration)
		sev    IssueSeverity
		path   string
		substr string
	}{
		{"missing job", func(m *Migration) { m.Job = " " }, SeverityError, "job", "job must not be empty"},
		{"missing kind", func(m *Migration) { m.Storage.Kind = "" }, SeverityError, "storage.kind", "must not be empty"},
		{"unknown kind", func(m *Migration) { m.Storage.Kind = "oracle" }, SeverityWarning, "storage.kind", `unknown storage kind "oracle"`},
		{"missing dsn", func(m *Migration) { m.Storage.DB.DSN = "" }, SeverityError, "storage.db.dsn", "HPMIGRATE_DSN"},
		{"missing table", func(m *Migration) { m.Storage.DB.Table = "" }, SeverityError, "storage.db.table", "must not be empty"},
		{"trailing dot", func(m *Migration) { m.Storage.DB.Table = "hp." }, SeverityError, "storage.db.table", "malformed"},
		{"leading dot", func(m *Migration) { m.Storage.DB.Table = ".charge_long" }, SeverityError, "storage.db.table", "malformed"},
		{"double dot", func(m *Migration) { m.Storage.DB.Table = "hp..charge_long" }, SeverityError, "storage.db.table", "malformed"},
		{"empty column name", func(m *Migration) {
			m.Columns = []Column{{Name: "plan_name"}, {Name: "  "}}
		}, SeverityError, "columns[1].name", "must not be empty"},
		{"duplicate column", func(m *Migration) {
			m.Columns = []Column{{Name: "plan_name"}, {Name: "setting"}, {Name: "Plan_Name"}}
		}, SeverityError, "columns[2].name", "duplicates columns[0]"},
		{"non-text type", func(m *Migration) {
			m.Columns = []Column{{Name: "estimated_amount", Type: "numeric"}}
		}, SeverityWarning, "columns[0].type", `type "numeric" is not text`},
		{"decomposed name", func(m *Migration) {
			m.Columns = []Column{{Name: "me\u0301thodology"}}
		}, SeverityWarning, "columns[0].name", "not NFC-normalized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := validMigration()
			tt.mutate(&m)
			issues := ValidateMigration(m)
			if !hasIssue(t, issues, tt.sev, tt.path, tt.substr) {
				t.Fatalf("expected %s at %s containing %q; got %+v", tt.sev, tt.path, tt.substr, issues)
			}
		})
	}
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	if HasErrors(nil) {
		t.Errorf("HasErrors(nil) = true")
	}
	if HasErrors([]Issue{{Severity: SeverityWarning}}) {
		t.Errorf("warnings alone reported as errors")
	}
	if !HasErrors([]Issue{{Severity: SeverityWarning}, {Severity: SeverityError}}) {
		t.Errorf("error not detected")
	}
}

func TestIssueError(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "storage.db.dsn", Message: "empty"}
	if got, want := iss.Error(), "error at storage.db.dsn: empty"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
