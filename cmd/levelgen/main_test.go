package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snarl/internal/levelfile"
)

func TestGenerateLevelsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.json")
	require.NoError(t, run(3, 42, false, false, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	specs, err := levelfile.ReadLevels(f)
	require.NoError(t, err)
	assert.Len(t, specs, 3)
}

func TestGenerateLevelsNeedsOne(t *testing.T) {
	_, err := generateLevels(0, 1, false)
	assert.Error(t, err)
}
