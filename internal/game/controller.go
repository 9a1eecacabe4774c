package game

import (
	"errors"

	"snarl/internal/rules"
	"snarl/internal/state"
	"snarl/internal/strategy"
)

var (
	// ErrDisconnected marks a transport fault. A controller returning an
	// error that wraps it is expelled from the level instead of ending the run.
	ErrDisconnected = errors.New("actor disconnected")
	// ErrUnknownActor is returned when a name was never registered.
	ErrUnknownActor = errors.New("unknown actor")
	// ErrInvalidSetup is returned by the builder for impossible games.
	ErrInvalidSetup = errors.New("invalid game setup")
)

// Strategy decides where an actor moves next.
type Strategy = strategy.Strategy

// Controller drives one actor and receives the notifications the level
// manager sends it over a game.
type Controller interface {
	Strategy
	StartLevel(level int) error
	Update(s *state.ActorState) error
	Result(r rules.MoveResult) error
	EndLevel(s LevelSummary) error
	EndGame(scores []Score) error
}

// Local adapts a strategy into a controller that ignores notifications.
func Local(s Strategy) Controller { return local{s} }

type local struct{ Strategy }

func (local) StartLevel(int) error { return nil }
func (local) Update(*state.ActorState) error { return nil }
func (local) Result(rules.MoveResult) error { return nil }
func (local) EndLevel(LevelSummary) error { return nil }
func (local) EndGame([]Score) error { return nil }

// Observer receives the uncensored state after every turn.
type Observer interface {
	Observe(gs *state.GameState)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(gs *state.GameState)

// Observe calls f(gs).
func (f ObserverFunc) Observe(gs *state.GameState) { f(gs) }
