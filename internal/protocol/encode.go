package protocol

import (
	"snarl/internal/gamemap"
	"snarl/internal/state"
)

// Encoder turns actor snapshots into player-update messages.
type Encoder struct {
	// UseAnchor sends the actor's known window with its absolute anchor.
	// Otherwise the layout is a square of side 2*moveRange+1 centred on the
	// actor, padded with walls where it runs off the level.
	UseAnchor bool
}

// PlayerUpdate encodes s.
func (e Encoder) PlayerUpdate(s *state.ActorState) PlayerUpdateMessage {
	m := PlayerUpdateMessage{
		Type:     TypePlayerUpdate,
		Position: PosOf(s.Self.Pos),
		Message:  joinMessages(s.Messages),
		Objects:  []ObjectRef{},
		Actors:   []ActorRef{},
	}
	if s.Self.HasCombat() {
		hp := s.Self.LifePoints
		m.Health = &hp
	}

	var window *gamemap.FloorPlan
	if e.UseAnchor {
		window = s.Known()
		m.Layout = layoutOf(window, window.Anchor(), window.Width(), window.Height())
		anchor := PosOf(window.Anchor())
		m.Anchor = &anchor
	} else {
		r := s.Self.MoveRange
		ul := s.Self.Pos.Sub(gamemap.Pt(r, r))
		m.Layout = layoutOf(s.Plan, ul, 2*r+1, 2*r+1)
		if crop, err := s.Plan.Crop(gamemap.RectOf(ul, ul.Add(gamemap.Pt(2*r, 2*r)))); err == nil {
			window = crop
		}
	}
	if window != nil {
		m.Objects, m.Actors = contents(s, window)
	}
	return m
}

// layoutOf reads a w x h block of codes starting at ul. Cells outside plan
// are walls.
func layoutOf(plan *gamemap.FloorPlan, ul gamemap.Point, w, h int) [][]int {
	rows := make([][]int, h)
	for y := range h {
		rows[y] = make([]int, w)
		for x := range w {
			rows[y][x] = TileCode(plan.Tile(ul.Add(gamemap.Pt(x, y))))
		}
	}
	return rows
}

// contents lists the key, exit and other actors visible in window.
func contents(s *state.ActorState, window *gamemap.FloorPlan) ([]ObjectRef, []ActorRef) {
	objects := []ObjectRef{}
	actors := []ActorRef{}
	window.Each(func(p gamemap.Point, c gamemap.Cell) {
		switch c.Tile {
		case gamemap.TileKey:
			objects = append(objects, ObjectRef{Type: "key", Position: PosOf(p)})
		case gamemap.TileExit:
			objects = append(objects, ObjectRef{Type: "exit", Position: PosOf(p)})
		}
		if !c.Occupied() || c.Occupant.Name == s.Self.Name {
			return
		}
		kind := "player"
		if a, ok := s.Actor(c.Occupant.Name); ok {
			kind = a.Kind.String()
		}
		actors = append(actors, ActorRef{Type: kind, Name: c.Occupant.Name, Position: PosOf(p)})
	})
	return objects, actors
}
