// Package generate builds random levels: one room per cell of a grid, a
// spanning set of corridors between neighbouring rooms, and a key and exit
// in different rooms.
package generate

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"snarl/internal/gamemap"
)

// ErrBadConfig is returned when a Config cannot produce a level.
var ErrBadConfig = errors.New("bad generator config")

// CorridorStyle selects the shape of connecting corridors.
type CorridorStyle uint8

const (
	// CorridorZShaped puts each door at a random row (or column) of its wall
	// and bends the corridor twice in the gap between the rooms.
	CorridorZShaped CorridorStyle = iota
	// CorridorStraight lines the doors up whenever the rooms overlap.
	CorridorStraight
)

// Config drives generation for one level. The grid spans Cols x Rows cells of
// CellWidth x CellHeight; every room keeps Margin cells from its cell edge.
type Config struct {
	Cols, Rows            int
	CellWidth, CellHeight int
	MinRoomSize           int
	Margin                int
	CorridorStyle         CorridorStyle
	ExtraCorridors        float64 // chance each unused neighbour pair is joined anyway
	PillarChance          float64 // chance a room of at least 5x5 gets an interior wall
	Rand                  *rand.Rand
}

// DefaultConfig returns the config used for the 1-based level: the grid grows
// with the level number up to 4x3 cells.
func DefaultConfig(level int, rng *rand.Rand) *Config {
	if level < 1 {
		level = 1
	}
	return &Config{
		Cols:           min(2+level/2, 4),
		Rows:           min(1+level/2, 3),
		CellWidth:      14,
		CellHeight:     10,
		MinRoomSize:    4,
		Margin:         2,
		CorridorStyle:  CorridorZShaped,
		ExtraCorridors: 0.15,
		PillarChance:   0.3,
		Rand:           rng,
	}
}

func (c *Config) validate() error {
	switch {
	case c.Cols < 1 || c.Rows < 1 || c.Cols*c.Rows < 2:
		return fmt.Errorf("%w: a %dx%d grid holds fewer than 2 rooms", ErrBadConfig, c.Cols, c.Rows)
	case c.MinRoomSize < gamemap.MinRoomSize:
		return fmt.Errorf("%w: min room size %d is below %d", ErrBadConfig, c.MinRoomSize, gamemap.MinRoomSize)
	case c.Margin < 2:
		return fmt.Errorf("%w: margin %d leaves no room for corridor walls", ErrBadConfig, c.Margin)
	case c.CellWidth-2*c.Margin < c.MinRoomSize || c.CellHeight-2*c.Margin < c.MinRoomSize:
		return fmt.Errorf("%w: %dx%d cells cannot hold a %d room with margin %d",
			ErrBadConfig, c.CellWidth, c.CellHeight, c.MinRoomSize, c.Margin)
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return nil
}
