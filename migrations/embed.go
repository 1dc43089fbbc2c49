// Package migrations embeds the SQL schema. Files are applied in name order;
// only *.up.sql files run forward.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
