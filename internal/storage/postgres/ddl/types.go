// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "hpmigrate/internal/ddl"
)

// MapType normalizes a loosely-specified logical type into a Postgres SQL type.
//
//	""/"text"/"string"        -> TEXT
//	"int"/"integer"/"bigint"  -> BIGINT
//	"bool"/"boolean"          -> BOOLEAN
//	"date"                    -> DATE
//	"timestamp"/"timestamptz" -> TIMESTAMPTZ
//	anything else             -> passed through verbatim
//
// Unknown types are handed to the server as written so that a bad type is
// reported by Postgres itself rather than silently turned into TEXT.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "text", "string":
		return "TEXT"
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp", "timestamptz":
		return "TIMESTAMPTZ"
	default:
		return strings.TrimSpace(kind)
	}
}

// pgAliases maps the short or SQL-standard spellings a type can be written
// in to the name information_schema.columns.data_type reports.
var pgAliases = map[string]string{
	"int":         "integer",
	"int4":        "integer",
	"int8":        "bigint",
	"int2":        "smallint",
	"bool":        "boolean",
	"varchar":     "character varying",
	"char":        "character",
	"bpchar":      "character",
	"decimal":     "numeric",
	"float8":      "double precision",
	"float4":      "real",
	"timestamptz": "timestamp with time zone",
	"timestamp":   "timestamp without time zone",
	"timetz":      "time with time zone",
	"time":        "time without time zone",
}

// CanonicalType returns the information_schema spelling of t with any
// length or precision removed, so a rendered TIMESTAMPTZ and a catalog
// "timestamp with time zone" compare equal.
func CanonicalType(t string) string {
	base := gddl.BaseType(t)
	if alias, ok := pgAliases[base]; ok {
		return alias
	}
	return base
}
