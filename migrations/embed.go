// Package migrations embeds the schema for the SQL-backed registration stores.
// Top-level files target PostgreSQL; sqlserver/ holds the SQL Server dialect.
package migrations

import "embed"

//go:embed *.sql sqlserver/*.sql
var FS embed.FS

// SQLServerDir is the directory inside FS holding SQL Server migrations.
const SQLServerDir = "sqlserver"
