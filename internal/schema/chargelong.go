// Package schema holds the column sets of the tall hospital price
// transparency table (charge_long): the base shape used when the table is
// bootstrapped, and the later additions applied to existing tables.
package schema

import "hpmigrate/internal/ddl"

// DefaultTable is the table the loader writes to.
const DefaultTable = "hp.charge_long"

// TextType is the logical type of every charge_long column. Values are kept
// as the hospitals published them; numeric cleanup happens downstream.
const TextType = "text"

// additions are the columns later hospital files introduced. The order is
// the order they are added in.
var additions = []string{
	"plan_name",
	"modifiers",
	"setting",
	"drug_unit_of_measurement",
	"drug_type_of_measurement",
	"negotiated_algorithm",
	"estimated_amount",
	"methodology",
	"additional_generic_notes",
	"metadata",
	"code_2",
	"code_2_type",
}

// base is the original charge_long layout. Pipe-delimited names mirror the
// CMS template headers (code|1, code|1|type, ...).
var base = []string{
	"file_name",
	"hospital_name",
	"hospital_location",
	"hospital_address",
	"license_number|CA",
	"last_updated_on",
	"version",

	"description",
	"drug_unit_of_measurement",
	"drug_type_of_measurement",

	"code",
	"code|1", "code|1|type",
	"code|2", "code|2|type",
	"code|3", "code|3|type",
	"code|4", "code|4|type",
	"code|5", "code|5|type",
	"code|6", "code|6|type",

	"modifiers",
	"setting",
	"billing_class",

	"payer_name",
	"plan_name",

	"estimated_amount",
	"activity_type",

	"gross",
	"standard_charge",
	"discounted_cash",

	"negotiated_dollar",
	"negotiated_percentage",
	"negotiated_algorithm",

	"methodology",
	"additional_notes",
}

// Additions returns the column addition request for table: every column
// nullable text with no default. An empty table selects DefaultTable.
func Additions(table string) ddl.TableDef {
	return textTable(table, additions)
}

// Base returns the original charge_long definition for table.
func Base(table string) ddl.TableDef {
	return textTable(table, base)
}

func textTable(table string, names []string) ddl.TableDef {
	if table == "" {
		table = DefaultTable
	}
	cols := make([]ddl.ColumnDef, len(names))
	for i, n := range names {
		cols[i] = ddl.ColumnDef{Name: n, SQLType: TextType, Nullable: true}
	}
	return ddl.TableDef{FQN: table, Columns: cols}
}
