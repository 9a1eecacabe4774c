package game

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"snarl/internal/rules"
)

// GameManager plays a sequence of levels with the same players and keeps the
// running stats.
type GameManager struct {
	levels  []*LevelManager
	current int
	won     bool
	results *ResultsLog
	log     zerolog.Logger
}

// GameOption configures a GameManager.
type GameOption func(*GameManager)

// WithGameLogger sets the logger.
func WithGameLogger(l zerolog.Logger) GameOption {
	return func(g *GameManager) { g.log = l }
}

// WithResultsLog appends every finished game's scores to r.
func WithResultsLog(r *ResultsLog) GameOption {
	return func(g *GameManager) { g.results = r }
}

// NewGameManager returns a manager that starts at the 1-based level start.
func NewGameManager(levels []*LevelManager, start int, opts ...GameOption) (*GameManager, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: no levels", ErrInvalidSetup)
	}
	if start < 1 || start > len(levels) {
		return nil, fmt.Errorf("%w: start level %d outside 1..%d", ErrInvalidSetup, start, len(levels))
	}
	g := &GameManager{levels: levels, current: start - 1, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Current is the index of the level that runs next, or ran last once the
// game is over.
func (g *GameManager) Current() int { return g.current }

// Won reports whether the finished game was won.
func (g *GameManager) Won() bool { return g.won }

// Run plays levels until the game is over and sends the final ranking to
// every actor of the last level.
func (g *GameManager) Run(ctx context.Context) ([]Score, error) {
	total := len(g.levels)
	lm := g.levels[g.current]
	var names []string
	for _, p := range lm.players {
		names = append(names, p.Name)
	}
	stats := NewStats(names...)

	for {
		lm = g.levels[g.current]
		if err := lm.Run(ctx, g.current+1, total, stats); err != nil {
			return nil, fmt.Errorf("level %d: %w", g.current+1, err)
		}
		g.current++
		over := rules.IsGameOver(lm.players, g.current, total)
		g.won = over && rules.IsGameWon(lm.players)
		if over {
			break
		}
	}

	scores := stats.Scores()
	g.log.Info().Bool("won", g.won).Int("levels", g.current).Msg("game over")
	for _, a := range lm.all {
		if a.Disconnected {
			continue
		}
		if err := lm.controllers[a.Name].EndGame(scores); err != nil {
			g.log.Warn().Err(err).Str("actor", a.Name).Msg("send final scores")
		}
	}
	if g.results != nil {
		g.results.Append(GameRecord{
			Timestamp: time.Now().UTC(),
			Levels:    g.current,
			Won:       g.won,
			Scores:    scores,
		})
	}
	return scores, nil
}
