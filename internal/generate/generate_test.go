package generate

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snarl/internal/actor"
	"snarl/internal/game"
	"snarl/internal/gamemap"
	"snarl/internal/levelfile"
	"snarl/internal/strategy"
)

// reachableRooms walks corridors from room 0.
func reachableRooms(lvl *gamemap.Level) int {
	seen := map[int]bool{0: true}
	queue := []int{0}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ci := range lvl.Room(cur).Corridors() {
			c := lvl.Corridor(ci)
			for _, end := range []func() (int, bool){c.EntryRoom, c.ExitRoom} {
				if r, ok := end(); ok && !seen[r] {
					seen[r] = true
					queue = append(queue, r)
				}
			}
		}
	}
	return len(seen)
}

func TestLevelIsValid(t *testing.T) {
	for seed := int64(0); seed < 30; seed++ {
		for _, level := range []int{1, 3, 6} {
			cfg := DefaultConfig(level, rand.New(rand.NewSource(seed)))
			res, err := Level(cfg)
			require.NoError(t, err, "seed=%d level=%d", seed, level)

			rooms := res.Level.Rooms()
			assert.Len(t, rooms, cfg.Cols*cfg.Rows)
			assert.GreaterOrEqual(t, len(res.Level.Corridors()), len(rooms)-1)
			assert.Equal(t, len(rooms), reachableRooms(res.Level), "seed=%d: every room is reachable", seed)

			assert.Equal(t, gamemap.TileEmpty, res.Level.Tile(res.Key))
			assert.Equal(t, gamemap.TileEmpty, res.Level.Tile(res.Exit))
			kr, ok := res.Level.RoomAt(res.Key)
			require.True(t, ok)
			er, ok := res.Level.RoomAt(res.Exit)
			require.True(t, ok)
			assert.NotEqual(t, kr, er, "seed=%d: key and exit share a room", seed)
		}
	}
}

func TestLevelIsDeterministic(t *testing.T) {
	a, err := Level(DefaultConfig(4, rand.New(rand.NewSource(7))))
	require.NoError(t, err)
	b, err := Level(DefaultConfig(4, rand.New(rand.NewSource(7))))
	require.NoError(t, err)
	assert.Equal(t, a.Level.Render(), b.Level.Render())
	assert.Equal(t, a.Key, b.Key)
	assert.Equal(t, a.Exit, b.Exit)
}

func TestStraightCorridors(t *testing.T) {
	cfg := &Config{
		Cols: 3, Rows: 2,
		CellWidth: 8, CellHeight: 8,
		MinRoomSize:   4,
		Margin:        2,
		CorridorStyle: CorridorStraight,
		Rand:          rand.New(rand.NewSource(42)),
	}
	res, err := Level(cfg)
	require.NoError(t, err)
	require.Len(t, res.Level.Corridors(), 5)
	for _, c := range res.Level.Corridors() {
		assert.Empty(t, c.Waypoints(), "corridor %v -> %v bends", c.Entry(), c.Exit())
	}
}

func TestZShapedCorridorsBendOnGridLines(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		cfg := DefaultConfig(6, rand.New(rand.NewSource(seed)))
		res, err := Level(cfg)
		require.NoError(t, err)
		for _, c := range res.Level.Corridors() {
			wp := c.Waypoints()
			if len(wp) == 0 {
				continue
			}
			require.Len(t, wp, 2)
			onCol := wp[0].X == wp[1].X && wp[0].X%cfg.CellWidth == 0
			onRow := wp[0].Y == wp[1].Y && wp[0].Y%cfg.CellHeight == 0
			assert.True(t, onCol || onRow, "seed=%d: bend at %v", seed, wp)
		}
	}
}

func TestLevelSurvivesLevelFile(t *testing.T) {
	res, err := Level(DefaultConfig(5, rand.New(rand.NewSource(3))))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, levelfile.WriteLevel(&buf, res.Spec()))
	back, err := levelfile.ReadLevel(&buf)
	require.NoError(t, err)
	assert.Equal(t, res.Level.Render(), back.Level.Render())
	require.NotNil(t, back.Key)
	assert.Equal(t, res.Key, *back.Key)
}

func TestLevelIsPlayable(t *testing.T) {
	res, err := Level(DefaultConfig(2, rand.New(rand.NewSource(11))))
	require.NoError(t, err)
	_, err = res.Spec().Builder().
		RegisterPlayer("ann", game.Local(strategy.NoMove{})).
		RegisterAdversary(actor.KindZombie, "zombie-1", nil).
		Build()
	assert.NoError(t, err)
}

func TestBadConfig(t *testing.T) {
	base := func() *Config { return DefaultConfig(1, rand.New(rand.NewSource(1))) }
	cases := []struct {
		name string
		edit func(c *Config)
	}{
		{"single cell", func(c *Config) { c.Cols, c.Rows = 1, 1 }},
		{"tiny rooms", func(c *Config) { c.MinRoomSize = 2 }},
		{"no margin", func(c *Config) { c.Margin = 1 }},
		{"cells too small", func(c *Config) { c.CellWidth = 6 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.edit(cfg)
			_, err := Level(cfg)
			assert.ErrorIs(t, err, ErrBadConfig)
		})
	}
}

func TestDefaultConfigGrows(t *testing.T) {
	small := DefaultConfig(1, nil)
	big := DefaultConfig(9, nil)
	assert.Equal(t, 2, small.Cols*small.Rows)
	assert.Equal(t, 12, big.Cols*big.Rows)
}
