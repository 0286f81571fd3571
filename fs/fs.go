// Package appfs embeds the database migrations so built binaries carry
// their own schema.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
