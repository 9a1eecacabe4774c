package game

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/zyedidia/generic/mapset"

	"snarl/internal/actor"
	"snarl/internal/gamemap"
	"snarl/internal/strategy"
)

// Builder assembles a LevelManager. Setters chain; the first error is kept
// and returned from Build.
type Builder struct {
	names       mapset.Set[string]
	players     []*actor.Actor
	adversaries []*actor.Actor
	controllers map[string]Controller
	observers   []namedObserver

	level           *gamemap.Level
	playerStarts    []gamemap.Point
	adversaryStarts []gamemap.Point
	key, exit       *gamemap.Point
	keyCollected    bool
	randomStarts    bool

	rng *rand.Rand
	log zerolog.Logger
	err error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		names:       mapset.New[string](),
		controllers: make(map[string]Controller),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		log:         zerolog.Nop(),
	}
}

func (b *Builder) fail(format string, args ...any) *Builder {
	if b.err == nil {
		b.err = fmt.Errorf("%w: "+format, append([]any{ErrInvalidSetup}, args...)...)
	}
	return b
}

func (b *Builder) claim(what, name string) bool {
	if strings.TrimSpace(name) == "" {
		b.fail("%s name cannot be empty", what)
		return false
	}
	if b.names.Has(name) {
		b.fail("duplicate name %q", name)
		return false
	}
	b.names.Put(name)
	return true
}

// RegisterPlayer adds a player driven by ctrl.
func (b *Builder) RegisterPlayer(name string, ctrl Controller, opts ...actor.Option) *Builder {
	if ctrl == nil {
		return b.fail("player %q needs a controller", name)
	}
	return b.register(actor.KindPlayer, name, ctrl, opts)
}

// RegisterAdversary adds an adversary of kind k. A nil ctrl uses the default
// strategy for the kind.
func (b *Builder) RegisterAdversary(k actor.Kind, name string, ctrl Controller, opts ...actor.Option) *Builder {
	if k.IsPlayer() {
		return b.fail("%q: players are registered with RegisterPlayer", name)
	}
	if ctrl == nil {
		ctrl = Local(strategy.ForKind(k, rand.New(rand.NewSource(b.rng.Int63()))))
	}
	return b.register(k, name, ctrl, opts)
}

func (b *Builder) register(k actor.Kind, name string, ctrl Controller, opts []actor.Option) *Builder {
	if !b.claim(k.String(), name) {
		return b
	}
	a, err := actor.New(k, name, opts...)
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("%w: %w", ErrInvalidSetup, err)
		}
		return b
	}
	if k.IsPlayer() {
		b.players = append(b.players, a)
	} else {
		b.adversaries = append(b.adversaries, a)
	}
	b.controllers[name] = ctrl
	return b
}

// RegisterObserver adds an observer. Observer names share the actor namespace.
func (b *Builder) RegisterObserver(name string, o Observer) *Builder {
	if b.claim("observer", name) {
		b.observers = append(b.observers, namedObserver{name: name, obs: o})
	}
	return b
}

// Actors reuses already constructed actors, for example players carried from
// one level to the next. Adversaries without a controller get the default one.
func (b *Builder) Actors(ctrls map[string]Controller, actors ...*actor.Actor) *Builder {
	for _, a := range actors {
		if !b.claim(a.Kind.String(), a.Name) {
			return b
		}
		ctrl := ctrls[a.Name]
		if ctrl == nil && a.IsPlayer() {
			return b.fail("player %q needs a controller", a.Name)
		}
		if ctrl == nil {
			ctrl = Local(strategy.ForKind(a.Kind, rand.New(rand.NewSource(b.rng.Int63()))))
		}
		if a.IsPlayer() {
			b.players = append(b.players, a)
		} else {
			b.adversaries = append(b.adversaries, a)
		}
		b.controllers[a.Name] = ctrl
	}
	return b
}

// SetLevel sets the level geometry.
func (b *Builder) SetLevel(l *gamemap.Level) *Builder {
	b.level = l
	return b
}

// AddPlayerStart adds a candidate player starting point.
func (b *Builder) AddPlayerStart(p gamemap.Point) *Builder {
	b.playerStarts = append(b.playerStarts, p)
	return b
}

// AddAdversaryStart adds a candidate adversary starting point.
func (b *Builder) AddAdversaryStart(p gamemap.Point) *Builder {
	b.adversaryStarts = append(b.adversaryStarts, p)
	return b
}

// SetKey places the key.
func (b *Builder) SetKey(p gamemap.Point) *Builder {
	b.key = &p
	return b
}

// SetExit places the exit.
func (b *Builder) SetExit(p gamemap.Point) *Builder {
	b.exit = &p
	return b
}

// SetKeyCollected starts the level with the exit already unlocked.
func (b *Builder) SetKeyCollected(collected bool) *Builder {
	b.keyCollected = collected
	return b
}

// SetRandomStarts replaces the starting points with random Empty room cells
// drawn from rng.
func (b *Builder) SetRandomStarts(rng *rand.Rand) *Builder {
	b.randomStarts = true
	b.rng = rng
	return b
}

// SetRand sets the source used for ghost teleports and default strategies.
func (b *Builder) SetRand(rng *rand.Rand) *Builder {
	b.rng = rng
	return b
}

// SetLogger sets the logger handed to the level manager.
func (b *Builder) SetLogger(l zerolog.Logger) *Builder {
	b.log = l
	return b
}

// Build validates the setup and returns a manager with every actor placed.
func (b *Builder) Build() (*LevelManager, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.level == nil {
		return nil, fmt.Errorf("%w: no level set", ErrInvalidSetup)
	}
	if n := len(b.players); n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("%w: need %d to %d players, got %d", ErrInvalidSetup, MinPlayers, MaxPlayers, n)
	}
	if b.key != nil && b.exit != nil && *b.key == *b.exit {
		return nil, fmt.Errorf("%w: key and exit share %v", ErrInvalidSetup, *b.key)
	}

	m := &LevelManager{
		level:       b.level,
		players:     b.players,
		adversaries: b.adversaries,
		all:         append(slices.Clone(b.players), b.adversaries...),
		byName:      make(map[string]*actor.Actor),
		controllers: b.controllers,
		observers:   b.observers,
		stats:       NewStats(),
		rng:         b.rng,
		log:         b.log,
	}
	for _, a := range m.all {
		m.byName[a.Name] = a
	}
	var invalid []gamemap.Point
	if b.key != nil {
		if err := m.checkEmpty("key", *b.key); err != nil {
			return nil, err
		}
		m.key, m.hasKey = *b.key, true
		invalid = append(invalid, m.key)
	}
	if b.exit != nil {
		if err := m.checkEmpty("exit", *b.exit); err != nil {
			return nil, err
		}
		m.exit, m.hasExit = *b.exit, true
		invalid = append(invalid, m.exit)
	}
	m.startKeyCollected = b.keyCollected || !m.hasKey

	if b.randomStarts {
		m.playerStarts = b.randomPoints(invalid, len(b.players))
		invalid = append(invalid, m.playerStarts...)
		m.adversaryStarts = b.randomPoints(invalid, len(b.adversaries))
	} else {
		players, adversaries := b.level.StartingPoints(invalid)
		m.playerStarts = distinct(append(slices.Clone(b.playerStarts), players...))
		m.adversaryStarts = distinct(append(slices.Clone(b.adversaryStarts), adversaries...))
	}
	if err := m.Reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// randomPoints draws n distinct Empty room cells outside invalid.
func (b *Builder) randomPoints(invalid []gamemap.Point, n int) []gamemap.Point {
	var pool []gamemap.Point
	for _, r := range b.level.Rooms() {
		for _, p := range r.EmptyPoints() {
			if !slices.Contains(invalid, p) {
				pool = append(pool, p)
			}
		}
	}
	b.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:min(n, len(pool))]
}

func distinct(ps []gamemap.Point) []gamemap.Point {
	seen := mapset.New[gamemap.Point]()
	out := ps[:0]
	for _, p := range ps {
		if !seen.Has(p) {
			seen.Put(p)
			out = append(out, p)
		}
	}
	return out
}
