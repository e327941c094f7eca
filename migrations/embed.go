// Package migrations embeds the PostgreSQL schema migrations applied at startup
// and by the integration test containers.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
