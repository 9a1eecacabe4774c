package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"snarl/internal/actor"
	"snarl/internal/gamemap"
	"snarl/internal/state"
)

// Frame is one message off the wire: either a bare string such as "move" or
// "OK", or an object tagged with a type.
type Frame struct {
	Text string
	Type string
	raw  json.RawMessage
}

// IsText reports whether the frame is a bare string.
func (f Frame) IsText() bool { return f.raw == nil }

// Decode classifies a raw message.
func Decode(data []byte) (Frame, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Frame{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Frame{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return Frame{Text: s}, nil
	case '{':
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return Frame{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if env.Type == "" {
			return Frame{}, fmt.Errorf("%w: object without a type", ErrMalformed)
		}
		return Frame{Type: env.Type, raw: bytes.Clone(data)}, nil
	}
	return Frame{}, fmt.Errorf("%w: %.20q is neither a string nor an object", ErrMalformed, data)
}

// Into unmarshals an object frame into v.
func (f Frame) Into(v any) error {
	if f.IsText() {
		return fmt.Errorf("%w: expected an object, got %q", ErrMalformed, f.Text)
	}
	if err := json.Unmarshal(f.raw, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformed, f.Type, err)
	}
	return nil
}

// State rebuilds the receiving actor's view from an update. self supplies
// the actor's name, kind and capabilities; its position and health come from
// the message. Without an anchor the layout is assumed centred on the actor.
func (m PlayerUpdateMessage) State(self actor.Actor, level int, keyCollected bool) (*state.ActorState, error) {
	if len(m.Layout) == 0 || len(m.Layout[0]) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrMalformed)
	}
	rows := make([][]gamemap.TileKind, len(m.Layout))
	for y, codes := range m.Layout {
		rows[y] = make([]gamemap.TileKind, len(codes))
		for x, code := range codes {
			k, ok := CodeTile(code)
			if !ok {
				return nil, fmt.Errorf("%w: unknown tile code %d at layout [%d, %d]", ErrMalformed, code, y, x)
			}
			rows[y][x] = k
		}
	}

	self.MoveTo(m.Position.Point())
	if m.Health != nil {
		self.LifePoints = *m.Health
	}
	anchor := self.Pos.Sub(gamemap.Pt(len(m.Layout[0])/2, len(m.Layout)/2))
	if m.Anchor != nil {
		anchor = m.Anchor.Point()
	}
	plan, err := gamemap.FromTiles(anchor, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	gs := state.GameState{Plan: plan, Level: level, KeyCollected: keyCollected, Messages: m.Messages()}
	for _, o := range m.Objects {
		p := o.Position.Point()
		switch o.Type {
		case "key":
			gs.Key, gs.KeyPlaced = p, true
			_ = plan.Set(p, gamemap.C(gamemap.TileKey))
		case "exit":
			gs.Exit, gs.ExitPlaced = p, true
			_ = plan.Set(p, gamemap.C(gamemap.TileExit))
		default:
			return nil, fmt.Errorf("%w: unknown object %q", ErrMalformed, o.Type)
		}
	}

	gs.Actors = append(gs.Actors, self)
	occupy(plan, &self)
	for _, ref := range m.Actors {
		k, err := actor.ParseKind(ref.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		a, err := actor.New(k, ref.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		a.MoveTo(ref.Position.Point())
		occupy(plan, a)
		gs.Actors = append(gs.Actors, *a)
	}
	return state.NewActorState(gs, self), nil
}

func occupy(plan *gamemap.FloorPlan, a *actor.Actor) {
	c, err := plan.Get(a.Pos)
	if err != nil {
		return
	}
	c.Occupant = a.Occupant()
	_ = plan.Set(a.Pos, c)
}
