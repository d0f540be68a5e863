package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hpmigrate/internal/config"
	"hpmigrate/internal/metrics"
	"hpmigrate/internal/metrics/datadog"
	"hpmigrate/internal/metrics/prompush"
	"hpmigrate/internal/schema"

	// register all backends with the storage factory.
	_ "hpmigrate/internal/storage/all"
)

const (
	defaultKind = "postgres"
	defaultJob  = "hpmigrate"
	envDSN      = "HPMIGRATE_DSN"
)

// options holds the parsed command line.
type options struct {
	cfgPath     string
	kind        string
	dsn         string
	table       string
	createTable bool
	dryRun      bool
	validate    bool
	timeout     time.Duration
	verbose     bool

	metricsBackend string
	pushGatewayURL string
	dogStatsDAddr  string

	// set records which flags were given explicitly.
	set map[string]bool
}

// main is the entry point for the hpmigrate binary. It adds the missing
// charge_long columns to the configured table and exits non-zero on failure.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// run parses args, resolves the configuration and performs the migration.
// It returns the process exit code: 0 on success, 1 on any failure and 2
// for unusable flags.
func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	mig, err := resolveMigration(opts, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "hpmigrate: %v\n", err)
		return 1
	}

	issues := config.ValidateMigration(mig)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "hpmigrate: configuration is invalid\n")
		return 1
	}
	if opts.validate {
		if opts.verbose {
			log.Printf("configuration is valid: kind=%s table=%s", mig.Storage.Kind, mig.Storage.DB.Table)
		}
		return 0
	}

	flush := setupMetrics(opts, mig.Job, getenv)
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := migrateTable(ctx, mig, opts.dryRun, opts.verbose, stdout); err != nil {
		fmt.Fprintf(stderr, "hpmigrate: %v\n", err)
		return 1
	}
	if opts.verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("hpmigrate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.cfgPath, "config", "", "migration config JSON path (optional)")
	fs.StringVar(&o.kind, "kind", defaultKind, "storage kind: postgres, mssql, mysql, sqlite")
	fs.StringVar(&o.dsn, "dsn", "", "database DSN (overrides config and env "+envDSN+")")
	fs.StringVar(&o.table, "table", schema.DefaultTable, "target table, optionally schema-qualified")
	fs.BoolVar(&o.createTable, "create-table", false, "create the schema and base table when missing")
	fs.BoolVar(&o.dryRun, "dry-run", false, "print the DDL that would run and exit")
	fs.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	fs.DurationVar(&o.timeout, "timeout", 0, "overall deadline, e.g. 30s (0 disables)")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose logs")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog (env METRICS_BACKEND)")
	fs.StringVar(&o.pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	fs.StringVar(&o.dogStatsDAddr, "dogstatsd-addr", "", "DogStatsD address (env DOGSTATSD_ADDR)")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return o, fmt.Errorf("unexpected arguments")
	}

	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// resolveMigration merges the config file, explicit flags and the
// environment. Explicit flags win over the file; the DSN falls back to
// HPMIGRATE_DSN; flag defaults fill whatever is still empty.
func resolveMigration(o options, getenv func(string) string) (config.Migration, error) {
	var m config.Migration
	if o.cfgPath != "" {
		var err error
		if m, err = config.Load(o.cfgPath); err != nil {
			return m, err
		}
	}

	if m.Job == "" {
		m.Job = defaultJob
	}
	if o.set["kind"] || m.Storage.Kind == "" {
		m.Storage.Kind = o.kind
	}
	if o.set["table"] || m.Storage.DB.Table == "" {
		m.Storage.DB.Table = o.table
	}
	if o.dsn != "" {
		m.Storage.DB.DSN = o.dsn
	}
	if m.Storage.DB.DSN == "" {
		m.Storage.DB.DSN = getenv(envDSN)
	}
	if o.createTable {
		m.Storage.DB.AutoCreateTable = true
	}
	return m, nil
}

// setupMetrics installs the selected backend and returns its flush func.
// Backend selection: flag, then env, then none.
func setupMetrics(o options, job string, getenv func(string) string) func() {
	nop := func() {}

	name := o.metricsBackend
	if name == "" {
		name = getenv("METRICS_BACKEND")
	}

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "", "none":
		if o.verbose {
			log.Printf("metrics: disabled")
		}
		return nop

	case "pushgateway":
		gwURL := firstNonEmpty(o.pushGatewayURL, getenv("PUSHGATEWAY_URL"), "http://localhost:9091")
		b, err = prompush.NewBackend(job, gwURL)
		if err == nil && o.verbose {
			log.Printf("metrics: backend=pushgateway url=%s job=%s", gwURL, job)
		}

	case "datadog":
		addr := firstNonEmpty(o.dogStatsDAddr, getenv("DOGSTATSD_ADDR"), "127.0.0.1:8125")
		b, err = datadog.NewBackend(datadog.Config{Addr: addr, GlobalTags: []string{"job:" + job}})
		if err == nil && o.verbose {
			log.Printf("metrics: backend=datadog addr=%s job=%s", addr, job)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
		return nop
	}

	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", name, err)
		return nop
	}
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
