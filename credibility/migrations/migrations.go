// Package migrations embeds the SQL schema for the postgres and sqlite
// reputation stores.
package migrations

import "embed"

// FS holds the versioned up/down files.
//
//go:embed *.sql
var FS embed.FS
