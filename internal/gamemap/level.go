package gamemap

import (
	"fmt"
	"math"
	"slices"
)

// Level composes rooms and corridors into a single floor plan. It owns its
// rooms and corridors; they refer to each other by index.
type Level struct {
	*FloorPlan
	rooms     []*Room
	corridors []*Corridor
}

// NewLevel validates that every door is joined to exactly one corridor end,
// every corridor end meets a door, and that no rooms or corridor cells
// collide. The given rooms and corridors are copied.
func NewLevel(rooms []*Room, corridors []*Corridor) (*Level, error) {
	if len(rooms) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rooms, got %d", ErrInvalidLevel, len(rooms))
	}
	if len(corridors) < 1 {
		return nil, fmt.Errorf("%w: need at least 1 corridor", ErrInvalidLevel)
	}
	l := &Level{
		rooms:     make([]*Room, len(rooms)),
		corridors: make([]*Corridor, len(corridors)),
	}
	for i, r := range rooms {
		l.rooms[i] = r.clone()
	}
	for i, c := range corridors {
		l.corridors[i] = c.clone()
	}
	if err := l.connect(); err != nil {
		return nil, err
	}
	if err := l.checkOverlap(); err != nil {
		return nil, err
	}
	l.compose()
	return l, nil
}

// connect joins corridor ends to room doors.
func (l *Level) connect() error {
	owner := make(map[Point]int)
	for i, r := range l.rooms {
		for _, d := range r.doors {
			owner[d] = i
		}
	}
	for ci, c := range l.corridors {
		entry, ok := owner[c.Entry()]
		if !ok {
			return fmt.Errorf("%w: corridor entry at %v does not meet a room door", ErrInvalidLevel, c.Entry())
		}
		exit, ok := owner[c.Exit()]
		if !ok {
			return fmt.Errorf("%w: corridor exit at %v does not meet a room door", ErrInvalidLevel, c.Exit())
		}
		if err := l.rooms[entry].attach(c.Entry(), ci); err != nil {
			return err
		}
		if err := l.rooms[exit].attach(c.Exit(), ci); err != nil {
			return err
		}
		if err := c.setEntryRoom(entry); err != nil {
			return err
		}
		if err := c.setExitRoom(exit); err != nil {
			return err
		}
	}
	var loose []Point
	for _, r := range l.rooms {
		for _, d := range r.doors {
			if _, ok := r.attached[d]; !ok {
				loose = append(loose, d)
			}
		}
	}
	if len(loose) > 0 {
		return fmt.Errorf("%w: doors at %s are not connected to corridors", ErrInvalidLevel, joinPoints(loose))
	}
	return nil
}

// checkOverlap rejects any absolute cell claimed twice by room rectangles or
// corridor cells.
func (l *Level) checkOverlap() error {
	seen := make(map[Point]bool)
	var clash []Point
	claim := func(p Point) {
		if seen[p] && !slices.Contains(clash, p) {
			clash = append(clash, p)
		}
		seen[p] = true
	}
	for _, r := range l.rooms {
		r.Each(func(p Point, _ Cell) { claim(p) })
	}
	for _, c := range l.corridors {
		for _, p := range c.Cells() {
			claim(p)
		}
	}
	if len(clash) > 0 {
		SortPoints(clash)
		return fmt.Errorf("%w: overlap at %s", ErrInvalidLevel, joinPoints(clash))
	}
	return nil
}

// compose writes corridors then rooms onto a void grid spanning every part.
func (l *Level) compose() {
	b := l.rooms[0].Bounds()
	grow := func(r Rect) {
		b = Rect{min(b.X1, r.X1), min(b.Y1, r.Y1), max(b.X2, r.X2), max(b.Y2, r.Y2)}
	}
	for _, r := range l.rooms {
		grow(r.Bounds())
	}
	for _, c := range l.corridors {
		grow(c.Bounds())
	}
	plan := NewFilled(Pt(b.X1, b.Y1), b.X2-b.X1+1, b.Y2-b.Y1+1, TileVoid)
	paint := func(f *FloorPlan) {
		f.Each(func(p Point, c Cell) {
			if c.Tile != TileVoid {
				plan.put(p, c)
			}
		})
	}
	for _, c := range l.corridors {
		paint(c.FloorPlan)
	}
	for _, r := range l.rooms {
		paint(r.FloorPlan)
	}
	l.FloorPlan = plan
}

// Rooms returns the level's rooms in construction order.
func (l *Level) Rooms() []*Room { return slices.Clone(l.rooms) }

// Corridors returns the level's corridors in construction order.
func (l *Level) Corridors() []*Corridor { return slices.Clone(l.corridors) }

// Room returns the room at index i.
func (l *Level) Room(i int) *Room { return l.rooms[i] }

// Corridor returns the corridor at index i.
func (l *Level) Corridor(i int) *Corridor { return l.corridors[i] }

// RoomAt returns the index of the room whose rectangle contains p.
func (l *Level) RoomAt(p Point) (int, bool) {
	for i, r := range l.rooms {
		if r.Contains(p) {
			return i, true
		}
	}
	return 0, false
}

// StartingPoints returns default start positions: the empty cells of the room
// nearest the level's top-left corner for players, and of the room nearest
// the bottom-right corner for adversaries. Points in invalid are skipped.
func (l *Level) StartingPoints(invalid []Point) (players, adversaries []Point) {
	ul, lr := l.Anchor(), l.LowerRight()
	first := l.nearestRoom(func(r *Room) float64 { return r.Anchor().EuclideanDistance(ul) })
	last := l.nearestRoom(func(r *Room) float64 { return r.LowerRight().EuclideanDistance(lr) })
	keep := func(pts []Point) []Point {
		return slices.DeleteFunc(pts, func(p Point) bool { return slices.Contains(invalid, p) })
	}
	return keep(first.EmptyPoints()), keep(last.EmptyPoints())
}

func (l *Level) nearestRoom(dist func(*Room) float64) *Room {
	best, bestDist := l.rooms[0], math.Inf(1)
	for _, r := range l.rooms {
		if d := dist(r); d < bestDist {
			best, bestDist = r, d
		}
	}
	return best
}
