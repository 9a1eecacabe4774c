// Package state holds the immutable snapshots the level manager hands to
// actors and observers.
package state

import (
	"github.com/zyedidia/generic/mapset"

	"snarl/internal/actor"
	"snarl/internal/gamemap"
	"snarl/internal/rules"
)

// GameState is a snapshot of a level after a turn. Plan has the exit, the key
// (while uncollected) and every actor on the board drawn in. Nothing in a
// GameState is mutated after construction.
type GameState struct {
	Plan   *gamemap.FloorPlan
	Actors []actor.Actor

	Key, Exit           gamemap.Point
	KeyPlaced           bool
	ExitPlaced          bool
	KeyCollected        bool
	LevelOver, GameOver bool
	GameWon             bool

	// Level is 1-based; zero when the manager runs outside a game.
	Level, TotalLevels int
	Messages           []string
}

// Render draws the snapshot's plan.
func (g *GameState) Render() string { return g.Plan.Render() }

// Actor looks up an actor in the snapshot by name.
func (g *GameState) Actor(name string) (actor.Actor, bool) {
	for _, a := range g.Actors {
		if a.Name == name {
			return a, true
		}
	}
	return actor.Actor{}, false
}

// Players returns the snapshot's players in registration order.
func (g *GameState) Players() []actor.Actor {
	var out []actor.Actor
	for _, a := range g.Actors {
		if a.IsPlayer() {
			out = append(out, a)
		}
	}
	return out
}

// ActorState is a GameState seen through one actor's eyes: Plan is fogged
// beyond the actor's view radius and Known is the window around the actor.
type ActorState struct {
	GameState
	Self actor.Actor

	// plan is the unfogged layout used for move validity.
	plan  *gamemap.FloorPlan
	known *gamemap.FloorPlan
}

// NewActorState builds self's view of gs. gs.Plan is left untouched.
func NewActorState(gs GameState, self actor.Actor) *ActorState {
	s := &ActorState{GameState: gs, Self: self, plan: gs.Plan}
	fogged := gs.Plan.Clone()
	if self.ViewRadius >= 0 && self.Placed {
		fogged.Each(func(p gamemap.Point, _ gamemap.Cell) {
			if self.Pos.CardinalDistance(p) > self.ViewRadius {
				_ = fogged.Set(p, gamemap.C(gamemap.TileFog))
			}
		})
	}
	s.Plan = fogged

	if self.Placed {
		r := s.WindowRadius()
		win := gamemap.Rect{
			X1: self.Pos.X - r, Y1: self.Pos.Y - r,
			X2: self.Pos.X + r, Y2: self.Pos.Y + r,
		}
		if known, err := fogged.Crop(win); err == nil {
			s.known = known
		}
	}
	if s.known == nil {
		s.known = fogged
	}
	return s
}

// WindowRadius is the Chebyshev radius of the known window: the larger of the
// view radius and the move range.
func (s *ActorState) WindowRadius() int {
	return max(s.Self.ViewRadius, s.Self.MoveRange)
}

// Known is the window of the fogged plan centred on the actor.
func (s *ActorState) Known() *gamemap.FloorPlan { return s.known }

// Tile is the unfogged tile at p.
func (s *ActorState) Tile(p gamemap.Point) gamemap.TileKind { return s.plan.Tile(p) }

// IsMoveValid applies the movement rules to dest, including the locked exit.
func (s *ActorState) IsMoveValid(dest gamemap.Point) bool {
	self := s.Self
	if rules.ExitLocked(&self, dest, s.Exit, s.ExitPlaced, s.KeyCollected) {
		return false
	}
	return rules.IsMoveValid(&self, dest, s.plan)
}

// ValidMoves expands breadth first from the actor's position for up to its
// move range, through traversable or occupied cells, and keeps the legal
// destinations in ascending order. The current position is always included.
func (s *ActorState) ValidMoves() []gamemap.Point {
	start := s.Self.Pos
	seen := mapset.New[gamemap.Point]()
	seen.Put(start)
	frontier := []gamemap.Point{start}
	for range s.Self.MoveRange {
		var next []gamemap.Point
		for _, p := range frontier {
			for _, n := range p.Neighbors() {
				if seen.Has(n) {
					continue
				}
				c, err := s.plan.Get(n)
				if err != nil {
					continue
				}
				if !s.Self.Traversable.Has(c.Tile) && !c.Occupied() {
					continue
				}
				seen.Put(n)
				next = append(next, n)
			}
		}
		frontier = next
	}

	moves := make([]gamemap.Point, 0, seen.Size())
	seen.Each(func(p gamemap.Point) {
		if s.IsMoveValid(p) {
			moves = append(moves, p)
		}
	})
	gamemap.SortPoints(moves)
	return moves
}

// PlayerPositions returns where the actor can see other players. Adversaries
// get positions from the actor list; players only see occupants on the plan.
func (s *ActorState) PlayerPositions() []gamemap.Point {
	var out []gamemap.Point
	for _, a := range s.Actors {
		if a.IsPlayer() && a.Name != s.Self.Name && a.OnBoard() {
			out = append(out, a.Pos)
		}
	}
	if len(out) > 0 {
		return out
	}
	s.Plan.Each(func(p gamemap.Point, c gamemap.Cell) {
		if c.Occupied() && c.Occupant.Player && c.Occupant.Name != s.Self.Name {
			out = append(out, p)
		}
	})
	return out
}
