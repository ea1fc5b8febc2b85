// Package migrations embeds the goose SQL migrations, one directory per dialect.
package migrations

import "embed"

// FS holds mysql/, postgres/ and sqlite/.
//
//go:embed mysql/*.sql postgres/*.sql sqlite/*.sql
var FS embed.FS
