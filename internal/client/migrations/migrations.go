// Package migrations embeds the local client schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
