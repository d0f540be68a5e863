// Package all wires all built-in storage backends into the storage factory.
//
// Importing it for side effects runs each backend's init, which registers
// its factory and DDL dialect. After that the following kinds resolve
// through storage.New and storage.LookupDDL:
//
//   - "postgres" (hpmigrate/internal/storage/postgres)
//   - "mssql"    (hpmigrate/internal/storage/mssql)
//   - "mysql"    (hpmigrate/internal/storage/mysql)
//   - "sqlite"   (hpmigrate/internal/storage/sqlite)
//
// A binary that needs only some backends can blank-import those packages
// directly instead.
package all

import (
	_ "hpmigrate/internal/storage/mssql"
	_ "hpmigrate/internal/storage/mysql"
	_ "hpmigrate/internal/storage/postgres"
	_ "hpmigrate/internal/storage/sqlite"
)
