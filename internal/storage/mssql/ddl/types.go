package ddl

import (
	"strings"

	gddl "hpmigrate/internal/ddl"
)

// MapType maps a logical type string into a SQL Server column type.
//
// The input is typically a logical type name such as:
//
//	"int", "integer", "bigint", "bool", "boolean", "date",
//	"timestamp", "datetime", "string", "text"
//
// "text" maps to NVARCHAR(MAX) rather than the deprecated TEXT type. Empty
// kinds fall back to NVARCHAR(MAX); unknown kinds are passed through so the
// server reports them.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "text", "string":
		return "NVARCHAR(MAX)"
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME2"
	case "float", "double", "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "uuid":
		return "UNIQUEIDENTIFIER"
	default:
		return strings.TrimSpace(kind)
	}
}

// mssqlAliases maps synonyms to the names sys.types reports.
var mssqlAliases = map[string]string{
	"integer":                    "int",
	"dec":                        "decimal",
	"numeric":                    "decimal",
	"double precision":           "float",
	"character":                  "char",
	"character varying":          "varchar",
	"char varying":               "varchar",
	"national character":         "nchar",
	"national char":              "nchar",
	"national character varying": "nvarchar",
	"national char varying":      "nvarchar",
	"national text":              "ntext",
	"rowversion":                 "timestamp",
}

// CanonicalType returns the sys.types name of t with any length or
// precision removed, so a rendered NVARCHAR(MAX) compares equal to the
// catalog's nvarchar.
func CanonicalType(t string) string {
	base := gddl.BaseType(t)
	if alias, ok := mssqlAliases[base]; ok {
		return alias
	}
	return base
}
