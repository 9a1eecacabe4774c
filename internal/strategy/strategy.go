// Package strategy implements the movement preferences of scripted actors.
// Every strategy picks from the state's valid moves, so it never asks the
// level manager for an illegal destination. game.Strategy is an alias of
// Strategy, so every type here plugs straight into game.Local.
package strategy

import (
	"math"
	"math/rand"
	"slices"

	"snarl/internal/actor"
	"snarl/internal/gamemap"
	"snarl/internal/state"
)

// Strategy decides where an actor moves next. It is satisfied by every type
// in this package.
type Strategy interface {
	RequestMove(s *state.ActorState) (gamemap.Point, error)
}

// ForKind returns the default strategy for actors of kind k.
func ForKind(k actor.Kind, rng *rand.Rand) Strategy {
	switch k {
	case actor.KindZombie:
		return NewZombie(rng)
	case actor.KindGhost:
		return NewGhost(rng)
	default:
		return NewSeeker(rng)
	}
}

// ─── Stationary ──────────────────────────────────────────────────────────────

// NoMove always stays where it is.
type NoMove struct{}

func (NoMove) RequestMove(s *state.ActorState) (gamemap.Point, error) { return s.Self.Pos, nil }

// ─── Chasers ─────────────────────────────────────────────────────────────────

// ClosestPlayer steps toward the nearest visible player.
type ClosestPlayer struct{}

func (ClosestPlayer) RequestMove(s *state.ActorState) (gamemap.Point, error) {
	return chase(s, s.ValidMoves()), nil
}

// chase returns the move from moves that lands closest to the nearest player.
// With no player in sight, or no moves, it stays put.
func chase(s *state.ActorState, moves []gamemap.Point) gamemap.Point {
	pos := s.Self.Pos
	target, ok := nearest(pos, s.PlayerPositions())
	if !ok || len(moves) == 0 {
		return pos
	}
	best, _ := nearest(target, moves)
	return best
}

// nearest returns the point of pts closest to from by Euclidean distance.
// Ties go to the earliest point.
func nearest(from gamemap.Point, pts []gamemap.Point) (gamemap.Point, bool) {
	var best gamemap.Point
	bestDist := math.MaxFloat64
	for _, p := range pts {
		if d := from.EuclideanDistance(p); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist != math.MaxFloat64
}

// pickOther returns a random valid move other than the current position.
func pickOther(s *state.ActorState, moves []gamemap.Point, rng *rand.Rand) gamemap.Point {
	others := slices.DeleteFunc(slices.Clone(moves), func(p gamemap.Point) bool { return p == s.Self.Pos })
	if len(others) == 0 {
		return s.Self.Pos
	}
	return others[rng.Intn(len(others))]
}

// Zombie chases the closest player and shuffles randomly rather than stand still.
type Zombie struct {
	rng *rand.Rand
}

// NewZombie returns a zombie strategy drawing from rng.
func NewZombie(rng *rand.Rand) *Zombie { return &Zombie{rng: rng} }

func (z *Zombie) RequestMove(s *state.ActorState) (gamemap.Point, error) {
	moves := s.ValidMoves()
	best := chase(s, moves)
	if best == s.Self.Pos {
		best = pickOther(s, moves, z.rng)
	}
	return best, nil
}

// Ghost chases through open cells. When it would stand still it walks into a
// wall to teleport, and failing that moves randomly.
type Ghost struct {
	rng *rand.Rand
}

// NewGhost returns a ghost strategy drawing from rng.
func NewGhost(rng *rand.Rand) *Ghost { return &Ghost{rng: rng} }

func (g *Ghost) RequestMove(s *state.ActorState) (gamemap.Point, error) {
	moves := s.ValidMoves()
	var open, walls []gamemap.Point
	for _, m := range moves {
		if s.Tile(m) == gamemap.TileWall && m != s.Self.Pos {
			walls = append(walls, m)
		} else {
			open = append(open, m)
		}
	}
	best := chase(s, open)
	if best != s.Self.Pos {
		return best, nil
	}
	if len(walls) > 0 {
		return walls[0], nil
	}
	return pickOther(s, moves, g.rng), nil
}

// ─── Players ─────────────────────────────────────────────────────────────────

// Seeker is a player strategy: it heads for the key while it is out, then for
// the exit, and otherwise explores cells it has not stood on. It never steps
// onto an adversary.
type Seeker struct {
	rng     *rand.Rand
	visited map[gamemap.Point]int
	level   int
}

// NewSeeker returns a seeker drawing from rng.
func NewSeeker(rng *rand.Rand) *Seeker {
	return &Seeker{rng: rng, visited: make(map[gamemap.Point]int)}
}

func (k *Seeker) RequestMove(s *state.ActorState) (gamemap.Point, error) {
	if s.Level != k.level {
		k.level = s.Level
		clear(k.visited)
	}
	pos := s.Self.Pos
	k.visited[pos]++

	moves := slices.DeleteFunc(s.ValidMoves(), func(p gamemap.Point) bool {
		c, err := s.Plan.Get(p)
		return err == nil && c.Occupied() && !c.Occupant.Player
	})
	if len(moves) == 0 {
		return pos, nil
	}

	switch {
	case s.KeyPlaced && !s.KeyCollected:
		if slices.Contains(moves, s.Key) {
			return s.Key, nil
		}
		best, _ := nearest(s.Key, moves)
		if best != pos {
			return best, nil
		}
	case s.ExitPlaced && s.KeyCollected:
		best, _ := nearest(s.Exit, moves)
		if best != pos {
			return best, nil
		}
	}

	// Explore: prefer the least visited destination, ties broken at random.
	least := math.MaxInt
	var pool []gamemap.Point
	for _, m := range moves {
		if m == pos {
			continue
		}
		switch n := k.visited[m]; {
		case n < least:
			least, pool = n, []gamemap.Point{m}
		case n == least:
			pool = append(pool, m)
		}
	}
	if len(pool) == 0 {
		return pos, nil
	}
	return pool[k.rng.Intn(len(pool))], nil
}

// ─── Scripted ────────────────────────────────────────────────────────────────

// Scripted replays a fixed list of destinations, then stays put.
type Scripted struct {
	moves []gamemap.Point
	next  int
}

// NewScripted returns a strategy that plays moves in order.
func NewScripted(moves ...gamemap.Point) *Scripted {
	return &Scripted{moves: slices.Clone(moves)}
}

func (c *Scripted) RequestMove(s *state.ActorState) (gamemap.Point, error) {
	if c.next >= len(c.moves) {
		return s.Self.Pos, nil
	}
	m := c.moves[c.next]
	c.next++
	return m, nil
}

// Remaining is the number of unplayed moves.
func (c *Scripted) Remaining() int { return len(c.moves) - c.next }
