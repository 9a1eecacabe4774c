package netplay

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/zyedidia/generic/mapset"

	"snarl/internal/actor"
	"snarl/internal/game"
	"snarl/internal/levelfile"
	"snarl/internal/protocol"
)

// Host runs a game for the peers a lobby gathered. Remote clients keep the
// same actor for the whole game; each level adds its own local zombies and
// ghosts.
type Host struct {
	Levels     []levelfile.LevelSpec
	Players    map[string]game.Controller // local players, joined after the peers
	StartLevel int
	Encoder    protocol.Encoder
	Observers  map[string]game.Observer
	Rand       *rand.Rand
	Results    *game.ResultsLog
	Log        zerolog.Logger
}

// LocalAdversaries is how many zombies and ghosts the server adds to the
// 1-based level.
func LocalAdversaries(level int) (zombies, ghosts int) {
	return level/2 + 1, (level - 1) / 3
}

// Play builds every level, runs the game and closes every peer connection.
func (h *Host) Play(ctx context.Context, peers []*Peer) ([]game.Score, error) {
	if h.Rand == nil {
		h.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	start := h.StartLevel
	if start == 0 {
		start = 1
	}

	actors := make([]*actor.Actor, 0, len(peers)+len(h.Players))
	ctrls := make(map[string]game.Controller, len(peers)+len(h.Players))
	taken := mapset.New[string]()
	for _, p := range peers {
		a, err := actor.New(p.Kind, p.Name)
		if err != nil {
			return nil, fmt.Errorf("host %s: %w", p.Name, err)
		}
		r := NewRemote(p.Conn, h.Encoder, h.Log.With().Str("actor", p.Name).Logger())
		defer r.Close()
		actors = append(actors, a)
		ctrls[p.Name] = r
		taken.Put(p.Name)
	}
	for _, name := range sortedKeys(h.Players) {
		if taken.Has(name) {
			return nil, fmt.Errorf("%w: duplicate name %q", game.ErrInvalidSetup, name)
		}
		a, err := actor.NewPlayer(name)
		if err != nil {
			return nil, fmt.Errorf("host %s: %w", name, err)
		}
		actors = append(actors, a)
		ctrls[name] = h.Players[name]
		taken.Put(name)
	}
	for name := range h.Observers {
		taken.Put(name)
	}

	levels := make([]*game.LevelManager, 0, len(h.Levels))
	for i := range h.Levels {
		lm, err := h.level(i, actors, ctrls, taken)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", i+1, err)
		}
		levels = append(levels, lm)
	}

	opts := []game.GameOption{game.WithGameLogger(h.Log)}
	if h.Results != nil {
		opts = append(opts, game.WithResultsLog(h.Results))
	}
	gm, err := game.NewGameManager(levels, start, opts...)
	if err != nil {
		return nil, err
	}
	return gm.Run(ctx)
}

// level builds the i-th level, falling back to random starting points when
// the level's own start rooms cannot hold everybody.
func (h *Host) level(i int, actors []*actor.Actor, ctrls map[string]game.Controller, taken mapset.Set[string]) (*game.LevelManager, error) {
	locals := localAdversaries(i+1, taken)
	build := func(random bool) (*game.LevelManager, error) {
		b := h.Levels[i].Builder().
			SetRand(rand.New(rand.NewSource(h.Rand.Int63()))).
			SetLogger(h.Log.With().Int("level", i+1).Logger()).
			Actors(ctrls, actors...)
		for _, l := range locals {
			b.RegisterAdversary(l.Kind, l.Name, nil)
		}
		for _, name := range sortedKeys(h.Observers) {
			b.RegisterObserver(name, h.Observers[name])
		}
		if random {
			b.SetRandomStarts(rand.New(rand.NewSource(h.Rand.Int63())))
		}
		return b.Build()
	}
	lm, err := build(false)
	if err == nil || !errors.Is(err, game.ErrInvalidSetup) {
		return lm, err
	}
	h.Log.Debug().Err(err).Int("level", i+1).Msg("level starts too small, placing actors at random")
	return build(true)
}

type localActor struct {
	Kind actor.Kind
	Name string
}

func localAdversaries(level int, taken mapset.Set[string]) []localActor {
	zombies, ghosts := LocalAdversaries(level)
	used := mapset.New[string]()
	isTaken := func(n string) bool { return taken.Has(n) || used.Has(n) }
	var out []localActor
	add := func(k actor.Kind, n int) {
		for j := 1; j <= n; j++ {
			name := UniqueName(fmt.Sprintf("%s-%d", k, j), isTaken)
			used.Put(name)
			out = append(out, localActor{Kind: k, Name: name})
		}
	}
	add(actor.KindZombie, zombies)
	add(actor.KindGhost, ghosts)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
