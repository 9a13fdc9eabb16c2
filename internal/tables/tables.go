// Package tables ships the default generation content: the rulebook-derived
// range tables the engine falls back to when no custom directory overrides
// them.
package tables

import (
	"embed"
	"io/fs"
)

//go:embed defaults/*.json
var defaultFS embed.FS

// Default returns the packaged table files as a filesystem rooted at the
// table directory, suitable as the last layer of a file.TableStore.
func Default() fs.FS {
	sub, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return sub
}
