// Package assets holds data compiled into the binaries.
package assets

import (
	"bytes"
	_ "embed"

	"snarl/internal/levelfile"
)

//go:embed levels.json
var levelsJSON []byte

// DefaultLevels decodes the built-in levels file.
func DefaultLevels() ([]levelfile.LevelSpec, error) {
	return levelfile.ReadLevels(bytes.NewReader(levelsJSON))
}
