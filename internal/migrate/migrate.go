// Package migrate brings an existing table up to a requested column set.
//
// Apply is safe to repeat: it reads the catalog, adds only the columns that
// are missing, and issues no DDL when there is nothing to add. It never
// drops, renames or retypes a column and never touches rows.
package migrate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"hpmigrate/internal/ddl"
	"hpmigrate/internal/metrics"
	"hpmigrate/internal/storage"
)

// StepAddColumns is the metrics step name recorded by Apply.
const StepAddColumns = "add_columns"

// Mismatch describes a requested column that already exists with a
// different type. It is reported, never altered.
type Mismatch struct {
	Column string
	Want   string // type the request would have created
	Got    string // type found in the catalog
}

// Result summarizes one Apply or Plan.
type Result struct {
	Table      string
	Added      []string // columns added (Apply) or to be added (Plan)
	Present    []string // requested columns already on the table
	Mismatched []Mismatch
}

// Migrator applies column additions through a storage.Repository using the
// Dialect registered for its storage kind.
type Migrator struct {
	repo    storage.Repository
	dialect storage.Dialect

	// Job labels recorded metrics. Defaults to "hpmigrate".
	Job string
	// Verbose enables progress logging. Warnings are always logged.
	Verbose bool
}

// New returns a Migrator for repo. kind selects the DDL dialect and must
// have been registered with storage.RegisterDDL.
func New(repo storage.Repository, kind string) (*Migrator, error) {
	if repo == nil {
		return nil, fmt.Errorf("migrate: repository must not be nil")
	}
	d, err := storage.LookupDDL(kind)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Migrator{repo: repo, dialect: d, Job: "hpmigrate"}, nil
}

// Apply adds the columns of def that the table lacks. A missing table fails
// with an error matching storage.ErrTableNotFound before any DDL runs.
func (m *Migrator) Apply(ctx context.Context, def ddl.TableDef) (res Result, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStep(m.Job, StepAddColumns, err, time.Since(start))
		if err == nil {
			metrics.RecordColumns(m.Job, metrics.KindColumnsAdded, len(res.Added))
			metrics.RecordColumns(m.Job, metrics.KindColumnsPresent, len(res.Present))
		}
	}()

	res, missing, err := m.diff(ctx, def)
	if err != nil {
		return res, err
	}
	if len(missing) == 0 {
		m.logf("migrate: table=%s up to date present=%d", res.Table, len(res.Present))
		return res, nil
	}

	stmts, err := m.dialect.AddColumns(res.Table, missing)
	if err != nil {
		return res, fmt.Errorf("migrate: render DDL: %w", err)
	}
	if err := m.repo.ExecTx(ctx, stmts); err != nil {
		return res, fmt.Errorf("migrate: add columns to %s: %w", res.Table, err)
	}

	res.Added = names(missing)
	m.logf("migrate: table=%s added=%d present=%d columns=%s",
		res.Table, len(res.Added), len(res.Present), strings.Join(res.Added, ","))
	return res, nil
}

// Plan runs the same checks as Apply and returns the statements Apply would
// execute, without executing them. Nothing to add yields no statements.
func (m *Migrator) Plan(ctx context.Context, def ddl.TableDef) (Result, []string, error) {
	res, missing, err := m.diff(ctx, def)
	if err != nil || len(missing) == 0 {
		return res, nil, err
	}
	stmts, err := m.dialect.AddColumns(res.Table, missing)
	if err != nil {
		return res, nil, fmt.Errorf("migrate: render DDL: %w", err)
	}
	res.Added = names(missing)
	return res, stmts, nil
}

// EnsureTable creates def's schema (where the engine has one) and table if
// they do not exist. Existing tables are left as they are.
func (m *Migrator) EnsureTable(ctx context.Context, def ddl.TableDef) error {
	def = normalize(def)
	if err := def.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	stmts, err := m.dialect.CreateTable(def)
	if err != nil {
		return fmt.Errorf("migrate: render DDL: %w", err)
	}
	if err := m.repo.ExecTx(ctx, stmts); err != nil {
		return fmt.Errorf("migrate: create %s: %w", def.FQN, err)
	}
	m.logf("migrate: ensured table=%s", def.FQN)
	return nil
}

// diff validates def, checks the table exists and splits the requested
// columns into present and missing. Names match exactly unless the dialect
// folds case.
func (m *Migrator) diff(ctx context.Context, def ddl.TableDef) (Result, []ddl.ColumnDef, error) {
	def = normalize(def)
	res := Result{Table: def.FQN}
	if err := def.Validate(); err != nil {
		return res, nil, fmt.Errorf("migrate: %w", err)
	}

	ok, err := m.repo.TableExists(ctx, def.FQN)
	if err != nil {
		return res, nil, fmt.Errorf("migrate: %w", err)
	}
	if !ok {
		return res, nil, fmt.Errorf("migrate: %s: %w", def.FQN, storage.ErrTableNotFound)
	}

	existing, err := m.repo.Columns(ctx, def.FQN)
	if err != nil {
		return res, nil, fmt.Errorf("migrate: %w", err)
	}
	key := func(name string) string { return name }
	if m.dialect.FoldsCase() {
		key = strings.ToLower
	}
	byName := make(map[string]ddl.ColumnInfo, len(existing))
	for _, c := range existing {
		byName[key(ddl.NormalizeName(c.Name))] = c
	}

	var missing []ddl.ColumnDef
	for _, c := range def.Columns {
		cur, found := byName[key(c.Name)]
		if !found {
			missing = append(missing, c)
			continue
		}
		res.Present = append(res.Present, c.Name)
		want := m.dialect.CanonicalType(m.dialect.MapType(c.SQLType))
		if got := m.dialect.CanonicalType(cur.DataType); got != want {
			res.Mismatched = append(res.Mismatched, Mismatch{Column: c.Name, Want: want, Got: got})
			log.Printf("migrate: warning: %s.%s exists as %s, requested %s; left unchanged",
				def.FQN, c.Name, got, want)
		}
	}
	return res, missing, nil
}

func (m *Migrator) logf(format string, args ...any) {
	if m.Verbose {
		log.Printf(format, args...)
	}
}

// normalize returns a copy of def with trimmed, NFC-normalized names.
func normalize(def ddl.TableDef) ddl.TableDef {
	out := ddl.TableDef{FQN: strings.TrimSpace(def.FQN), Columns: make([]ddl.ColumnDef, len(def.Columns))}
	for i, c := range def.Columns {
		c.Name = ddl.NormalizeName(c.Name)
		out.Columns[i] = c
	}
	return out
}

func names(cols []ddl.ColumnDef) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
