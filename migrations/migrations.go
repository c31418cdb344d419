// Package migrations embeds the schema so the binaries run without the
// source tree next to them.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
