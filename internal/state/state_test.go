package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snarl/internal/actor"
	"snarl/internal/gamemap"
)

func roomPlan(t *testing.T, size gamemap.Point, doors ...gamemap.Point) *gamemap.FloorPlan {
	t.Helper()
	r, err := gamemap.BuildRoom(gamemap.Pt(0, 0), size, nil, doors)
	require.NoError(t, err)
	return r.Clone()
}

func occupy(t *testing.T, plan *gamemap.FloorPlan, a *actor.Actor, p gamemap.Point) {
	t.Helper()
	a.MoveTo(p)
	c, err := plan.Get(p)
	require.NoError(t, err)
	c.Occupant = a.Occupant()
	require.NoError(t, plan.Set(p, c))
}

func TestValidMovesPlayerInSmallRoom(t *testing.T) {
	plan := roomPlan(t, gamemap.Pt(5, 5), gamemap.Pt(2, 0))
	p, err := actor.NewPlayer("p")
	require.NoError(t, err)
	occupy(t, plan, p, gamemap.Pt(2, 2))

	s := NewActorState(GameState{Plan: plan, Actors: []actor.Actor{*p}}, *p)
	want := []gamemap.Point{
		gamemap.Pt(1, 1), gamemap.Pt(1, 2), gamemap.Pt(1, 3),
		gamemap.Pt(2, 0), gamemap.Pt(2, 1), gamemap.Pt(2, 2), gamemap.Pt(2, 3),
		gamemap.Pt(3, 1), gamemap.Pt(3, 2), gamemap.Pt(3, 3),
	}
	assert.Equal(t, want, s.ValidMoves())
}

func TestValidMovesOnlyManhattanCells(t *testing.T) {
	plan := roomPlan(t, gamemap.Pt(9, 9), gamemap.Pt(4, 0))
	p, _ := actor.NewPlayer("p")
	occupy(t, plan, p, gamemap.Pt(4, 4))

	s := NewActorState(GameState{Plan: plan}, *p)
	moves := s.ValidMoves()
	assert.Len(t, moves, 13)
	for _, m := range moves {
		assert.LessOrEqual(t, m.ManhattanDistance(p.Pos), 2)
	}
}

func TestValidMovesExitLockedUntilKey(t *testing.T) {
	plan := roomPlan(t, gamemap.Pt(5, 5), gamemap.Pt(2, 0))
	require.NoError(t, plan.Set(gamemap.Pt(2, 3), gamemap.C(gamemap.TileExit)))
	p, _ := actor.NewPlayer("p")
	occupy(t, plan, p, gamemap.Pt(2, 2))

	gs := GameState{Plan: plan, Exit: gamemap.Pt(2, 3), ExitPlaced: true}
	assert.NotContains(t, NewActorState(gs, *p).ValidMoves(), gamemap.Pt(2, 3))

	gs.KeyCollected = true
	assert.Contains(t, NewActorState(gs, *p).ValidMoves(), gamemap.Pt(2, 3))
}

func TestFogAndKnownWindow(t *testing.T) {
	plan := roomPlan(t, gamemap.Pt(9, 9), gamemap.Pt(4, 0))
	p, _ := actor.NewPlayer("p")
	occupy(t, plan, p, gamemap.Pt(2, 2))

	s := NewActorState(GameState{Plan: plan}, *p)
	assert.Equal(t, gamemap.TileFog, s.Plan.Tile(gamemap.Pt(5, 2)))
	assert.Equal(t, gamemap.TileEmpty, s.Plan.Tile(gamemap.Pt(4, 4)))
	assert.Equal(t, gamemap.TileEmpty, plan.Tile(gamemap.Pt(5, 2)), "source plan untouched")
	assert.Equal(t, gamemap.TileEmpty, s.Tile(gamemap.Pt(5, 2)))

	k := s.Known()
	assert.Equal(t, gamemap.Pt(0, 0), k.Anchor())
	assert.Equal(t, 5, k.Width())
	assert.Equal(t, 5, k.Height())
	want := "# # # # +\n" +
		"# . . . .\n" +
		"# . P . .\n" +
		"# . . . .\n" +
		"# . . . ."
	assert.Equal(t, want, k.Render())
}

func TestUnlimitedViewHasNoFog(t *testing.T) {
	plan := roomPlan(t, gamemap.Pt(9, 9), gamemap.Pt(4, 0))
	z, _ := actor.NewZombie("z")
	occupy(t, plan, z, gamemap.Pt(4, 4))

	s := NewActorState(GameState{Plan: plan}, *z)
	assert.Equal(t, plan.Render(), s.Render())
	assert.Equal(t, 1, s.WindowRadius())
	assert.Equal(t, 3, s.Known().Width())
}

func TestPlayerPositions(t *testing.T) {
	plan := roomPlan(t, gamemap.Pt(9, 9), gamemap.Pt(4, 0))
	p, _ := actor.NewPlayer("p")
	occupy(t, plan, p, gamemap.Pt(6, 6))
	q, _ := actor.NewPlayer("q")
	occupy(t, plan, q, gamemap.Pt(2, 2))
	z, _ := actor.NewZombie("z")
	occupy(t, plan, z, gamemap.Pt(1, 1))

	zs := NewActorState(GameState{Plan: plan, Actors: []actor.Actor{*p, *q, *z}}, *z)
	assert.ElementsMatch(t, []gamemap.Point{gamemap.Pt(6, 6), gamemap.Pt(2, 2)}, zs.PlayerPositions())

	// Players only get censored actors and see nobody outside their view.
	qs := NewActorState(GameState{Plan: plan, Actors: []actor.Actor{p.Censored(), *q, z.Censored()}}, *q)
	assert.Empty(t, qs.PlayerPositions())

	got, ok := zs.Actor("q")
	require.True(t, ok)
	assert.Equal(t, gamemap.Pt(2, 2), got.Pos)
	assert.Len(t, zs.Players(), 2)
}
