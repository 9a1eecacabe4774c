package gamemap

import (
	"fmt"
	"slices"
)

// noRoom marks a corridor end not yet joined to a room.
const noRoom = -1

// Corridor is a floor plan rasterized from an ordered waypoint path. The first
// and last waypoints are room doors and are not part of the corridor's grid.
type Corridor struct {
	*FloorPlan
	path      []Point
	entryRoom int
	exitRoom  int
}

// NewCorridor rasterizes waypoints into a corridor flanked by walls.
func NewCorridor(waypoints []Point) (*Corridor, error) {
	if err := validatePath(waypoints); err != nil {
		return nil, err
	}
	plan, err := rasterize(waypoints)
	if err != nil {
		return nil, err
	}
	return &Corridor{
		FloorPlan: plan,
		path:      slices.Clone(waypoints),
		entryRoom: noRoom,
		exitRoom:  noRoom,
	}, nil
}

func validatePath(wp []Point) error {
	if len(wp) < 2 {
		return fmt.Errorf("%w: need at least 2 waypoints, got %d", ErrInvalidCorridor, len(wp))
	}
	seen := make(map[Point]bool, len(wp))
	for _, p := range wp {
		if seen[p] {
			return fmt.Errorf("%w: duplicate waypoint %v", ErrInvalidCorridor, p)
		}
		seen[p] = true
	}
	for i := 0; i+1 < len(wp); i++ {
		a, b := wp[i], wp[i+1]
		if a.X != b.X && a.Y != b.Y {
			return fmt.Errorf("%w: %v to %v is not a right angle", ErrInvalidCorridor, a, b)
		}
	}
	return nil
}

func rasterize(wp []Point) (*FloorPlan, error) {
	lo, hi := wp[0], wp[0]
	for _, p := range wp[1:] {
		lo = Pt(min(lo.X, p.X), min(lo.Y, p.Y))
		hi = Pt(max(hi.X, p.X), max(hi.Y, p.Y))
	}
	lo = lo.Sub(Pt(1, 1))
	hi = hi.Add(Pt(1, 1))
	plan := NewFilled(lo, hi.X-lo.X+1, hi.Y-lo.Y+1, TileVoid)

	wall := func(p Point) {
		if plan.Tile(p) != TileCorridor {
			plan.put(p, C(TileWall))
		}
	}

	last := len(wp) - 1
	for i := 0; i < last; i++ {
		start, end := wp[i], wp[i+1]
		d := Pt(sign(end.X-start.X), sign(end.Y-start.Y))
		shift := Pt(abs(d.Y), abs(d.X))
		for p := start; ; p = p.Add(d) {
			left, right := p.Sub(shift), p.Add(shift)
			if p != start && (plan.Tile(p) == TileCorridor ||
				plan.Tile(left) == TileCorridor || plan.Tile(right) == TileCorridor) {
				return nil, fmt.Errorf("%w: path overlaps itself at %v between %v and %v", ErrInvalidCorridor, p, start, end)
			}
			plan.put(p, C(TileCorridor))
			wall(left)
			wall(right)
			if p == end {
				break
			}
		}
		// Close off the outside of the turn.
		if i+1 != last {
			next := end.Add(d)
			wall(next)
			wall(next.Sub(shift))
			wall(next.Add(shift))
		}
	}
	plan.put(wp[0], C(TileVoid))
	plan.put(wp[last], C(TileVoid))
	return trimVoid(plan), nil
}

// trimVoid drops fully-void leading and trailing rows and columns.
func trimVoid(f *FloorPlan) *FloorPlan {
	voidRow := func(y int) bool {
		for _, c := range f.cells[y] {
			if c.Tile != TileVoid {
				return false
			}
		}
		return true
	}
	voidCol := func(x int) bool {
		for _, row := range f.cells {
			if row[x].Tile != TileVoid {
				return false
			}
		}
		return true
	}
	for f.Height() > 1 && voidRow(0) {
		f.cells = f.cells[1:]
		f.anchor.Y++
	}
	for f.Height() > 1 && voidRow(f.Height()-1) {
		f.cells = f.cells[:f.Height()-1]
	}
	for f.Width() > 1 && voidCol(0) {
		for y := range f.cells {
			f.cells[y] = f.cells[y][1:]
		}
		f.anchor.X++
	}
	for f.Width() > 1 && voidCol(f.Width()-1) {
		for y := range f.cells {
			f.cells[y] = f.cells[y][:len(f.cells[y])-1]
		}
	}
	return f
}

// Entry is the door coordinate the corridor starts at.
func (c *Corridor) Entry() Point { return c.path[0] }

// Exit is the door coordinate the corridor ends at.
func (c *Corridor) Exit() Point { return c.path[len(c.path)-1] }

// Waypoints returns the interior turn points, excluding entry and exit.
func (c *Corridor) Waypoints() []Point {
	return slices.Clone(c.path[1 : len(c.path)-1])
}

// Path returns every waypoint including entry and exit.
func (c *Corridor) Path() []Point { return slices.Clone(c.path) }

// Cells returns the absolute corridor cells in row-major order.
func (c *Corridor) Cells() []Point {
	return c.TraversablePoints(Kinds(TileCorridor))
}

// EntryRoom returns the index of the room the entry door belongs to.
func (c *Corridor) EntryRoom() (int, bool) { return c.entryRoom, c.entryRoom != noRoom }

// ExitRoom returns the index of the room the exit door belongs to.
func (c *Corridor) ExitRoom() (int, bool) { return c.exitRoom, c.exitRoom != noRoom }

func (c *Corridor) setEntryRoom(room int) error {
	if c.entryRoom != noRoom {
		return fmt.Errorf("%w: corridor entry %v already joins room %d", ErrInvalidLevel, c.Entry(), c.entryRoom)
	}
	c.entryRoom = room
	return nil
}

func (c *Corridor) setExitRoom(room int) error {
	if c.exitRoom != noRoom {
		return fmt.Errorf("%w: corridor exit %v already joins room %d", ErrInvalidLevel, c.Exit(), c.exitRoom)
	}
	c.exitRoom = room
	return nil
}

func (c *Corridor) clone() *Corridor {
	return &Corridor{FloorPlan: c.FloorPlan.Clone(), path: slices.Clone(c.path), entryRoom: c.entryRoom, exitRoom: c.exitRoom}
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
