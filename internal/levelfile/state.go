package levelfile

import (
	"encoding/json"
	"fmt"
	"io"

	"snarl/internal/actor"
	"snarl/internal/game"
	"snarl/internal/gamemap"
	"snarl/internal/protocol"
)

// Placement puts a named actor on a starting point.
type Placement struct {
	Name string
	Kind actor.Kind
	Pos  gamemap.Point
}

// StateSpec is a level in progress: the geometry, who stands where and
// whether the exit is still locked.
type StateSpec struct {
	LevelSpec
	Players     []Placement
	Adversaries []Placement
	ExitLocked  bool
}

type placementJSON struct {
	Type     string       `json:"type"`
	Name     string       `json:"name"`
	Position protocol.Pos `json:"position"`
}

type stateJSON struct {
	Type        string          `json:"type"`
	Level       levelJSON       `json:"level"`
	Players     []placementJSON `json:"players"`
	Adversaries []placementJSON `json:"adversaries"`
	ExitLocked  bool            `json:"exit-locked"`
}

func placements(in []placementJSON, players bool) ([]Placement, error) {
	out := make([]Placement, 0, len(in))
	for _, pj := range in {
		k, err := actor.ParseKind(pj.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if k.IsPlayer() != players {
			return nil, malformed("%s %q listed with the wrong side", k, pj.Name)
		}
		out = append(out, Placement{Name: pj.Name, Kind: k, Pos: pj.Position.Point()})
	}
	return out, nil
}

// ReadState decodes a state object.
func ReadState(r io.Reader) (StateSpec, error) {
	var sj stateJSON
	if err := json.NewDecoder(r).Decode(&sj); err != nil {
		return StateSpec{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if sj.Type != "state" {
		return StateSpec{}, malformed("expected a state, got type %q", sj.Type)
	}
	lvl, err := sj.Level.spec()
	if err != nil {
		return StateSpec{}, err
	}
	s := StateSpec{LevelSpec: lvl, ExitLocked: sj.ExitLocked}
	if s.Players, err = placements(sj.Players, true); err != nil {
		return StateSpec{}, err
	}
	if s.Adversaries, err = placements(sj.Adversaries, false); err != nil {
		return StateSpec{}, err
	}
	return s, nil
}

// WriteState encodes s.
func WriteState(w io.Writer, s StateSpec) error {
	sj := stateJSON{
		Type:        "state",
		Level:       levelOf(s.LevelSpec),
		Players:     []placementJSON{},
		Adversaries: []placementJSON{},
		ExitLocked:  s.ExitLocked,
	}
	for _, p := range s.Players {
		sj.Players = append(sj.Players, placementJSON{Type: p.Kind.String(), Name: p.Name, Position: protocol.PosOf(p.Pos)})
	}
	for _, p := range s.Adversaries {
		sj.Adversaries = append(sj.Adversaries, placementJSON{Type: p.Kind.String(), Name: p.Name, Position: protocol.PosOf(p.Pos)})
	}
	if err := json.NewEncoder(w).Encode(sj); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Builder returns a level builder that places every actor where the state
// says. ctrls supplies controllers by name; players need one, adversaries
// without one get their default strategy.
func (s StateSpec) Builder(ctrls map[string]game.Controller) *game.Builder {
	b := s.LevelSpec.Builder()
	b.SetKeyCollected(!s.ExitLocked)
	for _, p := range s.Players {
		b.RegisterPlayer(p.Name, ctrls[p.Name]).AddPlayerStart(p.Pos)
	}
	for _, a := range s.Adversaries {
		b.RegisterAdversary(a.Kind, a.Name, ctrls[a.Name]).AddAdversaryStart(a.Pos)
	}
	return b
}

// Builder returns a level builder with the geometry, key and exit set.
func (s LevelSpec) Builder() *game.Builder {
	b := game.NewBuilder().SetLevel(s.Level)
	if s.Key != nil {
		b.SetKey(*s.Key)
	}
	if s.Exit != nil {
		b.SetExit(*s.Exit)
	}
	return b
}
