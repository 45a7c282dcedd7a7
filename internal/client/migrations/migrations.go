// Package migrations embeds the console's SQLite schema migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
