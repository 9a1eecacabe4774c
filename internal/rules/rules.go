// Package rules holds the pure predicates that decide move legality and when
// a level or game has ended.
package rules

import (
	"fmt"

	"snarl/internal/actor"
	"snarl/internal/gamemap"
)

// MoveResult describes the outcome of a move request.
type MoveResult uint8

const (
	MoveOK      MoveResult = iota // relocated
	MoveKey                       // player picked up the key
	MoveExit                      // player left through the unlocked exit
	MoveEject                     // a player was expelled
	MoveAttack                    // defender survived, attacker bounced back
	MoveInvalid                   // rejected, the actor is asked again
)

var moveResultNames = [...]string{"OK", "Key", "Exit", "Eject", "Attack", "Invalid"}

func (r MoveResult) String() string {
	if int(r) < len(moveResultNames) {
		return moveResultNames[r]
	}
	return "Unknown"
}

// Valid reports whether the move was applied.
func (r MoveResult) Valid() bool { return r != MoveInvalid }

// ParseMoveResult is the inverse of String.
func ParseMoveResult(s string) (MoveResult, error) {
	for i, n := range moveResultNames {
		if n == s {
			return MoveResult(i), nil
		}
	}
	return MoveInvalid, fmt.Errorf("unknown move result %q", s)
}

// IsMoveValid reports whether a may move to dest on plan. Staying put is always
// legal. Otherwise dest must be within the actor's move range (Manhattan), and
// either its tile is traversable for a, or it holds an actor of the opposite
// side standing on a tile a can traverse.
func IsMoveValid(a *actor.Actor, dest gamemap.Point, plan *gamemap.FloorPlan) bool {
	if a.Pos == dest {
		return true
	}
	if a.Pos.ManhattanDistance(dest) > a.MoveRange {
		return false
	}
	cell, err := plan.Get(dest)
	if err != nil {
		return false
	}
	if !a.Traversable.Has(cell.Tile) {
		return false
	}
	if cell.Occupied() {
		return cell.Occupant.Player != a.IsPlayer()
	}
	return true
}

// ExitLocked reports whether a player would step onto the exit before anyone
// has collected the key.
func ExitLocked(a *actor.Actor, dest, exit gamemap.Point, hasExit, keyCollected bool) bool {
	return a.IsPlayer() && hasExit && !keyCollected && dest == exit && dest != a.Pos
}

// IsLevelOver is true once every player has exited or been expelled.
func IsLevelOver(players []*actor.Actor) bool {
	for _, p := range players {
		if !p.Exited && !p.Expelled {
			return false
		}
	}
	return true
}

// IsGameOver is true when level, the 1-based number of the level just
// finished, is the last one or every player has been expelled.
func IsGameOver(players []*actor.Actor, level, total int) bool {
	if level == total {
		return true
	}
	for _, p := range players {
		if !p.Expelled {
			return false
		}
	}
	return true
}

// IsGameWon is true if any player exited.
func IsGameWon(players []*actor.Actor) bool {
	for _, p := range players {
		if p.Exited {
			return true
		}
	}
	return false
}
