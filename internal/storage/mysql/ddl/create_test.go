package ddl

import (
	"strings"
	"testing"

	gddl "hpmigrate/internal/ddl"
	"hpmigrate/internal/schema"
)

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plan_name": "`plan_name`",
		"we`ird":    "`we``ird`",
		"code|2":    "`code|2`",
	}
	for in, want := range tests {
		if got := quoteIdent(in); got != want {
			t.Errorf("quoteIdent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildAddColumnsSQL(t *testing.T) {
	t.Parallel()

	got, err := BuildAddColumnsSQL("hp.charge_long", []gddl.ColumnDef{
		{Name: "plan_name", SQLType: "TEXT", Nullable: true},
		{Name: "metadata", SQLType: "TEXT", Nullable: true},
	})
	if err != nil {
		t.Fatalf("BuildAddColumnsSQL error: %v", err)
	}
	want := "ALTER TABLE `hp`.`charge_long`\n" +
		"  ADD COLUMN `plan_name` TEXT NULL,\n" +
		"  ADD COLUMN `metadata` TEXT NULL;"
	if got != want {
		t.Fatalf("mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN: "charge_long",
		Columns: []gddl.ColumnDef{
			{Name: "id", SQLType: "BIGINT", PrimaryKey: true, Nullable: true},
			{Name: "code|1", SQLType: "TEXT", Nullable: true},
		},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL error: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS `charge_long` (\n" +
		"  `id` BIGINT NOT NULL,\n" +
		"  `code|1` TEXT NULL,\n" +
		"  PRIMARY KEY (`id`)\n" +
		");"
	if got != want {
		t.Fatalf("mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	if _, err := BuildAddColumnsSQL("t", nil); err == nil {
		t.Errorf("no columns: expected error")
	}
	if _, err := BuildAddColumnsSQL("", []gddl.ColumnDef{{Name: "a", SQLType: "TEXT"}}); err == nil {
		t.Errorf("empty fqn: expected error")
	}
	if _, err := BuildCreateTableSQL(gddl.TableDef{FQN: "t", Columns: []gddl.ColumnDef{{Name: "a"}}}); err == nil {
		t.Errorf("missing type: expected error")
	}
}

func TestDialect(t *testing.T) {
	t.Parallel()

	def := schema.Additions("")
	stmts, err := Dialect{}.AddColumns(def.FQN, def.Columns)
	if err != nil {
		t.Fatalf("AddColumns error: %v", err)
	}
	if len(stmts) != 1 || strings.Count(stmts[0], "ADD COLUMN") != len(def.Columns) {
		t.Fatalf("unexpected ALTER: %v", stmts)
	}

	create, err := Dialect{}.CreateTable(schema.Base(""))
	if err != nil {
		t.Fatalf("CreateTable error: %v", err)
	}
	if len(create) != 2 || create[0] != "CREATE SCHEMA IF NOT EXISTS `hp`;" {
		t.Fatalf("unexpected CREATE statements: %v", create)
	}

	if got := (Dialect{}).MapType("text"); got != "TEXT" {
		t.Errorf("MapType(text) = %q", got)
	}
	if got := MapType("mediumtext"); got != "mediumtext" {
		t.Errorf("MapType passthrough = %q", got)
	}
}

func TestCanonicalType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		MapType("text"):      "text",
		MapType("timestamp"): "datetime",
		MapType("bool"):      "tinyint",
		MapType("int"):       "bigint",
		"tinyint(1)":         "tinyint",
		"NUMERIC(10,2)":      "decimal",
		"integer":            "int",
	}
	for in, want := range tests {
		if got := CanonicalType(in); got != want {
			t.Errorf("CanonicalType(%q) = %q, want %q", in, got, want)
		}
	}
	if !(Dialect{}).FoldsCase() {
		t.Errorf("FoldsCase() = false, want true")
	}
}
