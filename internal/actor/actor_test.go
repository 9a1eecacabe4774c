package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snarl/internal/gamemap"
)

func TestDefaultCapabilities(t *testing.T) {
	cases := []struct {
		kind      Kind
		glyph     rune
		moveRange int
		view      int
		canWalk   []gamemap.TileKind
		cannot    []gamemap.TileKind
	}{
		{KindPlayer, 'P', 2, 2,
			[]gamemap.TileKind{gamemap.TileEmpty, gamemap.TileCorridor, gamemap.TileDoor, gamemap.TileKey, gamemap.TileExit},
			[]gamemap.TileKind{gamemap.TileWall, gamemap.TileVoid, gamemap.TileFog}},
		{KindZombie, 'Z', 1, Unlimited,
			[]gamemap.TileKind{gamemap.TileEmpty, gamemap.TileKey, gamemap.TileExit},
			[]gamemap.TileKind{gamemap.TileWall, gamemap.TileDoor, gamemap.TileCorridor}},
		{KindGhost, 'G', 1, Unlimited,
			[]gamemap.TileKind{gamemap.TileEmpty, gamemap.TileCorridor, gamemap.TileDoor, gamemap.TileWall},
			[]gamemap.TileKind{gamemap.TileVoid, gamemap.TileFog}},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			c := CapabilitiesOf(tc.kind)
			assert.Equal(t, tc.glyph, c.Glyph)
			assert.Equal(t, tc.moveRange, c.MoveRange)
			assert.Equal(t, tc.view, c.ViewRadius)
			for _, k := range tc.canWalk {
				assert.True(t, c.Traversable.Has(k), "%s should traverse %s", tc.kind, k)
			}
			for _, k := range tc.cannot {
				assert.False(t, c.Traversable.Has(k), "%s should not traverse %s", tc.kind, k)
			}
		})
	}
}

func TestNewRejects(t *testing.T) {
	_, err := NewPlayer("  ")
	assert.ErrorIs(t, err, ErrInvalidActor)

	_, err = NewZombie("z", WithCapabilities(Capabilities{MoveRange: 0}))
	assert.ErrorIs(t, err, ErrInvalidActor)

	_, err = NewGhost("g", WithCombat(1, 0))
	assert.ErrorIs(t, err, ErrInvalidActor)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Ghost ")
	require.NoError(t, err)
	assert.Equal(t, KindGhost, k)
	assert.Equal(t, "Ghost", k.Title())

	_, err = ParseKind("dragon")
	assert.ErrorIs(t, err, ErrInvalidActor)
}

func TestResetRestoresLife(t *testing.T) {
	a, err := NewPlayer("ann", WithCombat(2, 5))
	require.NoError(t, err)
	a.MoveTo(gamemap.Pt(3, 4))
	a.LifePoints = 1
	a.Expelled = true
	a.HasKey = true
	a.Disconnected = true

	a.Reset()
	assert.False(t, a.Placed)
	assert.False(t, a.Expelled)
	assert.False(t, a.HasKey)
	assert.True(t, a.Disconnected, "a dropped connection survives level changes")
	assert.Equal(t, 5, a.LifePoints)
}

func TestCensoredHidesPosition(t *testing.T) {
	a, err := NewZombie("z1")
	require.NoError(t, err)
	a.MoveTo(gamemap.Pt(7, 7))

	c := a.Censored()
	assert.False(t, c.Placed)
	assert.Equal(t, gamemap.Point{}, c.Pos)
	assert.Equal(t, "Zombie z1", c.String())
	assert.True(t, a.Placed)
}

func TestCanFight(t *testing.T) {
	p, _ := NewPlayer("p", WithCombat(1, 3))
	z, _ := NewZombie("z")
	g, _ := NewGhost("g", WithCombat(1, 1))
	assert.False(t, p.CanFight(z))
	assert.True(t, p.CanFight(g))
	assert.False(t, p.OnBoard())
}
