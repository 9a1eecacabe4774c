package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"snarl/internal/actor"
	"snarl/internal/gamemap"
	"snarl/internal/rules"
	"snarl/internal/state"
)

// Player count limits for a single level.
const (
	MinPlayers = 1
	MaxPlayers = 4
)

type namedObserver struct {
	name string
	obs  Observer
}

// LevelManager owns one live level: the actors on it, whose turn it is, and
// how their moves resolve. Create one with a Builder.
type LevelManager struct {
	level *gamemap.Level

	players     []*actor.Actor
	adversaries []*actor.Actor
	all         []*actor.Actor
	byName      map[string]*actor.Actor
	controllers map[string]Controller
	observers   []namedObserver

	playerStarts    []gamemap.Point
	adversaryStarts []gamemap.Point

	key, exit         gamemap.Point
	hasKey, hasExit   bool
	keyCollected      bool
	startKeyCollected bool
	levelOver         bool
	gameOver, gameWon bool
	levelNum, total   int
	messages          []string
	stats             *Stats

	rng *rand.Rand
	log zerolog.Logger
}

// ─── Setup ───────────────────────────────────────────────────────────────────

// Reset clears every actor and places it on the next free starting point.
// Players take starting points in registration order; a player start is
// removed from the adversary candidates.
func (m *LevelManager) Reset() error {
	m.keyCollected = m.startKeyCollected
	m.levelOver, m.gameOver, m.gameWon = false, false, false
	m.messages = nil

	adversaryStarts := slices.Clone(m.adversaryStarts)
	playerStarts := slices.Clone(m.playerStarts)
	place := func(a *actor.Actor, starts *[]gamemap.Point) error {
		a.Reset()
		if a.Disconnected {
			a.Expelled = true
			return nil
		}
		if len(*starts) == 0 {
			return fmt.Errorf("%w: no starting point left for %s", ErrInvalidSetup, a)
		}
		p := (*starts)[0]
		*starts = (*starts)[1:]
		if err := m.checkStart(a.String(), p); err != nil {
			return err
		}
		a.MoveTo(p)
		return nil
	}
	for _, p := range m.players {
		if err := place(p, &playerStarts); err != nil {
			return err
		}
		if p.Placed {
			adversaryStarts = slices.DeleteFunc(adversaryStarts, func(q gamemap.Point) bool { return q == p.Pos })
		}
	}
	for _, a := range m.adversaries {
		if err := place(a, &adversaryStarts); err != nil {
			return err
		}
	}
	return nil
}

// checkStart rejects start positions that are not Empty or sit on the key or exit.
func (m *LevelManager) checkStart(who string, p gamemap.Point) error {
	if err := m.checkEmpty(who, p); err != nil {
		return err
	}
	if m.hasKey && p == m.key {
		return fmt.Errorf("%w: %s cannot start on the key at %v", ErrInvalidSetup, who, p)
	}
	if m.hasExit && p == m.exit {
		return fmt.Errorf("%w: %s cannot start on the exit at %v", ErrInvalidSetup, who, p)
	}
	return nil
}

func (m *LevelManager) checkEmpty(what string, p gamemap.Point) error {
	if t := m.level.Tile(p); t != gamemap.TileEmpty {
		return fmt.Errorf("%w: %s cannot be placed at %v on a %s cell", ErrInvalidSetup, what, p, t)
	}
	return nil
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// Level returns the level geometry.
func (m *LevelManager) Level() *gamemap.Level { return m.level }

// Players returns the players in registration order.
func (m *LevelManager) Players() []*actor.Actor { return slices.Clone(m.players) }

// Adversaries returns the adversaries in registration order.
func (m *LevelManager) Adversaries() []*actor.Actor { return slices.Clone(m.adversaries) }

// Actors returns players followed by adversaries: the turn order.
func (m *LevelManager) Actors() []*actor.Actor { return slices.Clone(m.all) }

// Actor looks up an actor by name.
func (m *LevelManager) Actor(name string) (*actor.Actor, error) {
	a, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActor, name)
	}
	return a, nil
}

// KeyCollected reports whether a player has picked up the key.
func (m *LevelManager) KeyCollected() bool { return m.keyCollected }

// LevelOver reports whether the last Run finished.
func (m *LevelManager) LevelOver() bool { return m.levelOver }

// GameOver reports whether the finished level ended the game.
func (m *LevelManager) GameOver() bool { return m.gameOver }

// GameWon reports whether the game ended with a player exiting.
func (m *LevelManager) GameWon() bool { return m.gameWon }

// Messages returns what happened on the latest turn.
func (m *LevelManager) Messages() []string { return slices.Clone(m.messages) }

// Layout draws the exit, the key while it is uncollected, and every actor on
// the board over a copy of the level. An actor's cell keeps the tile or
// overlay it stands on.
func (m *LevelManager) Layout() *gamemap.FloorPlan {
	plan := m.level.Clone()
	if m.hasExit {
		_ = plan.Set(m.exit, gamemap.C(gamemap.TileExit))
	}
	if m.hasKey && !m.keyCollected {
		_ = plan.Set(m.key, gamemap.C(gamemap.TileKey))
	}
	for _, a := range m.all {
		if !a.OnBoard() {
			continue
		}
		c, err := plan.Get(a.Pos)
		if err != nil {
			continue
		}
		c.Occupant = a.Occupant()
		_ = plan.Set(a.Pos, c)
	}
	return plan
}

// Render draws the current layout as ASCII.
func (m *LevelManager) Render() string { return m.Layout().Render() }

func (m *LevelManager) snapshot(censor bool) state.GameState {
	actors := make([]actor.Actor, len(m.all))
	for i, a := range m.all {
		if censor {
			actors[i] = a.Censored()
		} else {
			actors[i] = *a
		}
	}
	return state.GameState{
		Plan:         m.Layout(),
		Actors:       actors,
		Key:          m.key,
		Exit:         m.exit,
		KeyPlaced:    m.hasKey,
		ExitPlaced:   m.hasExit,
		KeyCollected: m.keyCollected,
		LevelOver:    m.levelOver,
		GameOver:     m.gameOver,
		GameWon:      m.gameWon,
		Level:        m.levelNum,
		TotalLevels:  m.total,
		Messages:     slices.Clone(m.messages),
	}
}

// ObserverState is the uncensored snapshot handed to observers.
func (m *LevelManager) ObserverState() *state.GameState {
	gs := m.snapshot(false)
	return &gs
}

// ActorState is the named actor's view. Players see other actors without
// their positions.
func (m *LevelManager) ActorState(name string) (*state.ActorState, error) {
	a, err := m.Actor(name)
	if err != nil {
		return nil, err
	}
	return m.actorState(a), nil
}

func (m *LevelManager) actorState(a *actor.Actor) *state.ActorState {
	return state.NewActorState(m.snapshot(a.IsPlayer()), *a)
}

// ─── Moves ───────────────────────────────────────────────────────────────────

// MoveActor validates and applies one move for the named actor.
func (m *LevelManager) MoveActor(name string, dest gamemap.Point) (rules.MoveResult, error) {
	a, err := m.Actor(name)
	if err != nil {
		return rules.MoveInvalid, err
	}
	if !a.Active() {
		return rules.MoveInvalid, nil
	}
	s := m.actorState(a)
	if !s.IsMoveValid(dest) {
		return rules.MoveInvalid, nil
	}
	cell, err := m.Layout().Get(dest)
	if err != nil {
		return rules.MoveInvalid, nil
	}

	prev := a.Pos
	a.MoveTo(dest)

	if cell.Occupied() && cell.Occupant.Name != a.Name {
		other := m.byName[cell.Occupant.Name]
		switch {
		case a.CanFight(other):
			return m.attack(a, other, prev), nil
		case a.IsPlayer():
			return m.expel(a), nil
		default:
			return m.expel(other), nil
		}
	}

	switch {
	case a.IsPlayer() && m.hasKey && !m.keyCollected && dest == m.key:
		return m.collectKey(a), nil
	case a.IsPlayer() && m.hasExit && m.keyCollected && dest == m.exit:
		return m.enterExit(a), nil
	case a.Kind == actor.KindGhost && cell.Tile == gamemap.TileWall:
		m.teleport(a)
	}
	m.say("%s moved", a)
	return rules.MoveOK, nil
}

// KeyFoundSuffix ends the message announcing that a player picked up the
// key. Clients watch for it to unlock the exit.
const KeyFoundSuffix = " found the key"

// IsKeyFound reports whether msg announces the key pickup.
func IsKeyFound(msg string) bool { return strings.HasSuffix(msg, KeyFoundSuffix) }

func (m *LevelManager) say(format string, args ...any) {
	m.messages = append(m.messages, fmt.Sprintf(format, args...))
}

// attack deals the attacker's hit points to the defender. A surviving
// defender bounces the attacker back to prev.
func (m *LevelManager) attack(attacker, defender *actor.Actor, prev gamemap.Point) rules.MoveResult {
	defender.LifePoints -= attacker.HitPoints
	if defender.LifePoints > 0 {
		attacker.MoveTo(prev)
		m.say("%s attacked %s and reduced their health to %d", attacker, defender, defender.LifePoints)
		return rules.MoveAttack
	}
	return m.expel(defender)
}

func (m *LevelManager) expel(a *actor.Actor) rules.MoveResult {
	a.Expelled = true
	m.say("%s was expelled", a)
	if a.IsPlayer() {
		m.stats.Record(a.Name, rules.MoveEject)
	}
	return rules.MoveEject
}

func (m *LevelManager) collectKey(p *actor.Actor) rules.MoveResult {
	m.keyCollected = true
	p.HasKey = true
	m.say("%s"+KeyFoundSuffix, p)
	m.stats.Record(p.Name, rules.MoveKey)
	return rules.MoveKey
}

func (m *LevelManager) enterExit(p *actor.Actor) rules.MoveResult {
	p.Exited = true
	m.say("%s exited", p)
	m.stats.Record(p.Name, rules.MoveExit)
	return rules.MoveExit
}

// teleport moves a ghost that walked into a wall to a random free Empty cell.
// With no such cell it stays inside the wall.
func (m *LevelManager) teleport(g *actor.Actor) {
	p, err := m.Layout().RandomTraversablePoint(gamemap.Kinds(gamemap.TileEmpty), m.rng)
	if err != nil {
		m.log.Debug().Str("ghost", g.Name).Msg("no empty cell to teleport to")
		return
	}
	g.MoveTo(p)
}

// ─── Turn loop ───────────────────────────────────────────────────────────────

// Run plays the level until every player has exited or been expelled. level
// and total are 1-based and only used for game-over bookkeeping; pass zero
// to run a standalone level. Results are counted into stats.
func (m *LevelManager) Run(ctx context.Context, level, total int, stats *Stats) error {
	if stats == nil {
		stats = NewStats()
	}
	m.stats = stats
	if err := m.start(level, total); err != nil {
		return err
	}
	for turn := 0; !rules.IsLevelOver(m.players); turn = (turn + 1) % len(m.all) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run level %d: %w", level, err)
		}
		a := m.all[turn]
		if !a.Active() {
			continue
		}
		if err := m.takeTurn(a); err != nil {
			return err
		}
		if rules.IsLevelOver(m.players) {
			break
		}
		m.broadcast()
	}
	m.finish()
	return nil
}

func (m *LevelManager) start(level, total int) error {
	if err := m.Reset(); err != nil {
		return err
	}
	m.levelNum, m.total = level, total
	m.log.Info().Int("level", level).Int("players", len(m.players)).Int("adversaries", len(m.adversaries)).Msg("level started")
	for _, a := range m.all {
		if a.Disconnected {
			continue
		}
		if err := m.controllers[a.Name].StartLevel(level); err != nil {
			if ferr := m.fault(a, err); ferr != nil {
				return ferr
			}
		}
	}
	m.broadcast()
	return nil
}

// takeTurn asks a for moves until one is valid.
func (m *LevelManager) takeTurn(a *actor.Actor) error {
	s := m.actorState(a)
	m.messages = nil
	ctrl := m.controllers[a.Name]
	for {
		dest, err := ctrl.RequestMove(s)
		if err != nil {
			return m.fault(a, err)
		}
		res, err := m.MoveActor(a.Name, dest)
		if err != nil {
			return err
		}
		if err := ctrl.Result(res); err != nil {
			return m.fault(a, err)
		}
		if res.Valid() {
			m.log.Debug().Str("actor", a.Name).Stringer("to", dest).Stringer("result", res).Msg("move")
			return nil
		}
	}
}

// fault expels a on a transport fault and passes any other error through.
func (m *LevelManager) fault(a *actor.Actor, err error) error {
	if !errors.Is(err, ErrDisconnected) {
		return fmt.Errorf("%s: %w", a, err)
	}
	a.Expelled = true
	a.Disconnected = true
	m.messages = []string{a.String() + " disconnected"}
	m.log.Warn().Err(err).Str("actor", a.Name).Msg("actor disconnected")
	return nil
}

// broadcast pushes the new state to observers, then to connected players.
func (m *LevelManager) broadcast() {
	if len(m.observers) > 0 {
		gs := m.ObserverState()
		for _, o := range m.observers {
			o.obs.Observe(gs)
		}
	}
	for _, p := range m.players {
		if p.Disconnected {
			continue
		}
		if err := m.controllers[p.Name].Update(m.actorState(p)); err != nil {
			if ferr := m.fault(p, err); ferr != nil {
				m.log.Error().Err(ferr).Str("player", p.Name).Msg("update failed")
			}
		}
	}
}

func (m *LevelManager) finish() {
	if m.levelNum > 0 && m.total > 0 {
		m.gameOver = rules.IsGameOver(m.players, m.levelNum, m.total)
		m.gameWon = m.gameOver && rules.IsGameWon(m.players)
	}
	m.levelOver = true
	m.broadcast()

	sum := m.Summary()
	m.log.Info().Int("level", m.levelNum).Str("key", sum.Key).Strs("exits", sum.Exits).Strs("ejects", sum.Ejects).Msg("level over")
	for _, a := range m.all {
		if a.Disconnected {
			continue
		}
		if err := m.controllers[a.Name].EndLevel(sum); err != nil {
			_ = m.fault(a, err)
		}
	}
}

// Summary reports who found the key, who exited and which players were expelled.
func (m *LevelManager) Summary() LevelSummary {
	var s LevelSummary
	for _, p := range m.players {
		if p.HasKey {
			s.Key = p.Name
		}
		if p.Exited {
			s.Exits = append(s.Exits, p.Name)
		}
		if p.Expelled {
			s.Ejects = append(s.Ejects, p.Name)
		}
	}
	return s
}
