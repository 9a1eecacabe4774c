package httpapi

import (
	"strings"
	"sync"

	"snarl/internal/protocol"
	"snarl/internal/state"
)

// Latest is a game.Observer that keeps the most recent snapshot.
type Latest struct {
	mu sync.RWMutex
	gs *state.GameState
}

// Observe stores gs.
func (l *Latest) Observe(gs *state.GameState) {
	l.mu.Lock()
	l.gs = gs
	l.mu.Unlock()
}

// Snapshot returns the last observed state, or false before the first turn.
func (l *Latest) Snapshot() (*state.GameState, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gs, l.gs != nil
}

type actorView struct {
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Position *protocol.Pos `json:"position"`
	Exited   bool          `json:"exited"`
	Expelled bool          `json:"expelled"`
	Health   *int          `json:"health,omitempty"`
}

type stateView struct {
	Level        int         `json:"level"`
	TotalLevels  int         `json:"total-levels"`
	KeyCollected bool        `json:"key-collected"`
	LevelOver    bool        `json:"level-over"`
	GameOver     bool        `json:"game-over"`
	GameWon      bool        `json:"game-won"`
	Layout       []string    `json:"layout"`
	Actors       []actorView `json:"actors"`
	Messages     []string    `json:"messages"`
}

func viewOf(gs *state.GameState) stateView {
	v := stateView{
		Level:        gs.Level,
		TotalLevels:  gs.TotalLevels,
		KeyCollected: gs.KeyCollected,
		LevelOver:    gs.LevelOver,
		GameOver:     gs.GameOver,
		GameWon:      gs.GameWon,
		Layout:       strings.Split(gs.Render(), "\n"),
		Actors:       make([]actorView, 0, len(gs.Actors)),
		Messages:     append([]string{}, gs.Messages...),
	}
	for _, a := range gs.Actors {
		av := actorView{Name: a.Name, Type: a.Kind.String(), Exited: a.Exited, Expelled: a.Expelled}
		if a.OnBoard() {
			p := protocol.PosOf(a.Pos)
			av.Position = &p
		}
		if a.HasCombat() {
			hp := a.LifePoints
			av.Health = &hp
		}
		v.Actors = append(v.Actors, av)
	}
	return v
}
