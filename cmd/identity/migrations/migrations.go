// Package migrations embeds the SQL schema migrations for the user directory.
package migrations

import "embed"

// Migrations holds goose-format SQL migration files.
//
//go:embed *.sql
var Migrations embed.FS
