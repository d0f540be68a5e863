package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hpmigrate/internal/schema"
)

func noEnv(string) string { return "" }

func envOf(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

// sqliteDB creates a database file holding charge_long with the given
// column list and returns its path.
func sqliteDB(t *testing.T, columns string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hp.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()
	if columns != "" {
		if _, err := db.Exec("CREATE TABLE charge_long (" + columns + ")"); err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return path
}

func columnsOf(t *testing.T, path string) []string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()
	rows, err := db.Query(`SELECT name FROM pragma_table_info('charge_long') ORDER BY cid`)
	if err != nil {
		t.Fatalf("table_info: %v", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out = append(out, n)
	}
	return out
}

func runCLI(t *testing.T, getenv func(string) string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr, getenv)
	return code, stdout.String(), stderr.String()
}

func TestRun_AppliesAndIsRepeatable(t *testing.T) {
	t.Parallel()

	path := sqliteDB(t, "file_name TEXT, description TEXT")
	args := []string{"-kind", "sqlite", "-dsn", path, "-table", "charge_long", "-metrics-backend", "none"}

	for i := 0; i < 2; i++ {
		code, stdout, stderr := runCLI(t, noEnv, args...)
		if code != 0 {
			t.Fatalf("run #%d exit=%d stderr=%s", i+1, code, stderr)
		}
		if stdout != "" {
			t.Fatalf("run #%d wrote to stdout without -v: %q", i+1, stdout)
		}
	}

	got := columnsOf(t, path)
	want := append([]string{"file_name", "description"}, schema.Additions("").ColumnNames()...)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("columns = %v, want %v", got, want)
	}
}

func TestRun_MissingTableFails(t *testing.T) {
	t.Parallel()

	path := sqliteDB(t, "")
	code, _, stderr := runCLI(t, noEnv, "-kind", "sqlite", "-dsn", path, "-table", "charge_long")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "table not found") {
		t.Fatalf("stderr = %q, want table-not-found message", stderr)
	}
	if cols := columnsOf(t, path); len(cols) != 0 {
		t.Fatalf("table was created: %v", cols)
	}
}

func TestRun_CreateTable(t *testing.T) {
	t.Parallel()

	path := sqliteDB(t, "")
	code, _, stderr := runCLI(t, noEnv, "-kind", "sqlite", "-dsn", path, "-table", "charge_long", "-create-table")
	if code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, stderr)
	}
	cols := columnsOf(t, path)
	have := map[string]bool{}
	for _, c := range cols {
		have[c] = true
	}
	for _, c := range append(schema.Base("").ColumnNames(), schema.Additions("").ColumnNames()...) {
		if !have[c] {
			t.Errorf("column %s missing after -create-table", c)
		}
	}
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	path := sqliteDB(t, "file_name TEXT, plan_name TEXT")
	code, stdout, stderr := runCLI(t, noEnv, "-kind", "sqlite", "-dsn", path, "-table", "charge_long", "-dry-run")
	if code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != len(schema.Additions("").Columns)-1 {
		t.Fatalf("dry run printed %d statements:\n%s", len(lines), stdout)
	}
	if strings.Contains(stdout, `"plan_name"`) {
		t.Fatalf("dry run re-adds an existing column:\n%s", stdout)
	}
	if cols := columnsOf(t, path); len(cols) != 2 {
		t.Fatalf("dry run changed the table: %v", cols)
	}
}

func TestRun_DSNFromEnv(t *testing.T) {
	t.Parallel()

	path := sqliteDB(t, "file_name TEXT")
	env := envOf(map[string]string{envDSN: path})
	code, _, stderr := runCLI(t, env, "-kind", "sqlite", "-table", "charge_long")
	if code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, stderr)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	t.Parallel()

	path := sqliteDB(t, "file_name TEXT")
	cfg := filepath.Join(t.TempDir(), "m.json")
	body := `{"job":"cfg_job","storage":{"kind":"sqlite","db":{"dsn":` + quote(path) + `,"table":"charge_long"}},` +
		`"columns":[{"name":"plan_name"},{"name":"code_2","type":"text"}]}`
	if err := os.WriteFile(cfg, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	code, _, stderr := runCLI(t, noEnv, "-config", cfg)
	if code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, stderr)
	}
	if got := strings.Join(columnsOf(t, path), ","); got != "file_name,plan_name,code_2" {
		t.Fatalf("columns = %s", got)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, noEnv, "-kind", "sqlite", "-table", "charge_long")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "error: storage.db.dsn:") {
		t.Fatalf("stderr lacks dsn issue: %q", stderr)
	}
}

func TestRun_ValidateOnly(t *testing.T) {
	t.Parallel()

	// The DSN points nowhere; -validate must not connect.
	code, stdout, stderr := runCLI(t, noEnv, "-validate", "-kind", "mysql", "-dsn", "etl@tcp(127.0.0.1:1)/hp")
	if code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, stderr)
	}
	if stdout != "" {
		t.Fatalf("unexpected stdout: %q", stdout)
	}
}

func TestRun_BadFlags(t *testing.T) {
	t.Parallel()

	if code, _, _ := runCLI(t, noEnv, "-no-such-flag"); code != 2 {
		t.Fatalf("unknown flag exit = %d, want 2", code)
	}
	if code, _, _ := runCLI(t, noEnv, "-timeout", "soon"); code != 2 {
		t.Fatalf("bad duration exit = %d, want 2", code)
	}
	if code, _, _ := runCLI(t, noEnv, "extra"); code != 2 {
		t.Fatalf("positional arg exit = %d, want 2", code)
	}
	if code, _, _ := runCLI(t, noEnv, "-h"); code != 0 {
		t.Fatalf("-h exit = %d, want 0", code)
	}
}

func TestResolveMigration_Precedence(t *testing.T) {
	t.Parallel()

	cfg := filepath.Join(t.TempDir(), "m.json")
	body := `{"storage":{"kind":"mssql","db":{"dsn":"sqlserver://cfg","table":"dbo.charge_long"}}}`
	if err := os.WriteFile(cfg, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	tests := []struct {
		name      string
		args      []string
		env       map[string]string
		wantKind  string
		wantDSN   string
		wantTable string
	}{
		{
			name:      "config beats defaults",
			args:      []string{"-config", cfg},
			env:       map[string]string{envDSN: "ignored"},
			wantKind:  "mssql",
			wantDSN:   "sqlserver://cfg",
			wantTable: "dbo.charge_long",
		},
		{
			name:      "flags beat config",
			args:      []string{"-config", cfg, "-kind", "postgres", "-dsn", "postgres://flag", "-table", "hp.charge_long"},
			wantKind:  "postgres",
			wantDSN:   "postgres://flag",
			wantTable: "hp.charge_long",
		},
		{
			name:      "env fills missing dsn",
			args:      nil,
			env:       map[string]string{envDSN: "postgres://env"},
			wantKind:  defaultKind,
			wantDSN:   "postgres://env",
			wantTable: schema.DefaultTable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stderr bytes.Buffer
			o, err := parseFlags(tt.args, &stderr)
			if err != nil {
				t.Fatalf("parseFlags: %v", err)
			}
			m, err := resolveMigration(o, envOf(tt.env))
			if err != nil {
				t.Fatalf("resolveMigration: %v", err)
			}
			if m.Storage.Kind != tt.wantKind || m.Storage.DB.DSN != tt.wantDSN || m.Storage.DB.Table != tt.wantTable {
				t.Fatalf("got kind=%q dsn=%q table=%q", m.Storage.Kind, m.Storage.DB.DSN, m.Storage.DB.Table)
			}
			if m.Job != defaultJob {
				t.Fatalf("job = %q, want default", m.Job)
			}
		})
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}
