// Package migrations embeds the shop schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
