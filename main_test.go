package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseLevels(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	builtin, err := chooseLevels("", 0, rng)
	require.NoError(t, err)
	assert.Len(t, builtin, 3)

	gen, err := chooseLevels("", 2, rng)
	require.NoError(t, err)
	assert.Len(t, gen, 2)

	_, err = chooseLevels("does-not-exist.json", 0, rng)
	assert.Error(t, err)
}

func TestRunRejectsPlayerCount(t *testing.T) {
	assert.ErrorContains(t, run(0, "", 0, 1, 1, 0, true), "players must be between 1 and 4")
	assert.ErrorContains(t, run(5, "", 0, 1, 1, 0, true), "players must be between 1 and 4")
}
