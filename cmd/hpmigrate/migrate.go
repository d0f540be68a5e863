package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"hpmigrate/internal/config"
	"hpmigrate/internal/migrate"
	"hpmigrate/internal/schema"
	"hpmigrate/internal/storage"
)

// migrateTable opens the configured backend and brings the table up to the
// requested column set. With dryRun the planned statements are written to
// out and nothing is executed.
func migrateTable(ctx context.Context, m config.Migration, dryRun, verbose bool, out io.Writer) error {
	repo, err := storage.New(ctx, storage.Config{
		Kind:  m.Storage.Kind,
		DSN:   m.Storage.DB.DSN,
		Table: m.Storage.DB.Table,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", m.Storage.Kind, err)
	}
	defer repo.Close()

	mg, err := migrate.New(repo, m.Storage.Kind)
	if err != nil {
		return err
	}
	mg.Job = m.Job
	mg.Verbose = verbose

	def := m.TableDef()
	if verbose {
		log.Printf("migrate: kind=%s table=%s columns=%d dry_run=%v",
			m.Storage.Kind, def.FQN, len(def.Columns), dryRun)
	}

	if dryRun {
		if m.Storage.DB.AutoCreateTable {
			log.Printf("migrate: dry run skips table creation for %s", def.FQN)
		}
		res, stmts, err := mg.Plan(ctx, def)
		if err != nil {
			return err
		}
		for _, s := range stmts {
			fmt.Fprintln(out, s)
		}
		if verbose {
			log.Printf("migrate: plan table=%s add=%d present=%d", res.Table, len(res.Added), len(res.Present))
		}
		return nil
	}

	if m.Storage.DB.AutoCreateTable {
		if err := mg.EnsureTable(ctx, schema.Base(def.FQN)); err != nil {
			return err
		}
	}

	_, err = mg.Apply(ctx, def)
	return err
}
