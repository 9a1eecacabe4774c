package gamemap

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// MinRoomSize is the smallest width and height a room may have.
const MinRoomSize = 3

// Room is a validated floor plan: a solid wall/door boundary, at least one
// door, and no door on a corner. Attached corridors are recorded per door as
// indices into the owning Level's corridor list.
type Room struct {
	*FloorPlan
	doors    []Point
	attached map[Point]int
}

// NewRoom validates rows as a room anchored at anchor.
func NewRoom(anchor Point, rows [][]TileKind) (*Room, error) {
	f, err := FromTiles(anchor, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoom, err)
	}
	return RoomFromPlan(f)
}

// RoomFromPlan validates an existing plan as a room. The plan is copied.
func RoomFromPlan(f *FloorPlan) (*Room, error) {
	r := &Room{FloorPlan: f.Clone(), attached: make(map[Point]int)}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// BuildRoom creates a room of the given size whose border is wall and interior
// empty, then places extra walls and doors at the given local positions.
func BuildRoom(upperLeft, size Point, walls, doors []Point) (*Room, error) {
	if size.X < MinRoomSize || size.Y < MinRoomSize {
		return nil, fmt.Errorf("%w: size %dx%d is below %dx%d", ErrInvalidRoom, size.X, size.Y, MinRoomSize, MinRoomSize)
	}
	f := NewFilled(upperLeft, size.X, size.Y, TileEmpty)
	for x := 0; x < size.X; x++ {
		f.cells[0][x] = C(TileWall)
		f.cells[size.Y-1][x] = C(TileWall)
	}
	for y := 0; y < size.Y; y++ {
		f.cells[y][0] = C(TileWall)
		f.cells[y][size.X-1] = C(TileWall)
	}
	place := func(local []Point, k TileKind) error {
		for _, l := range local {
			if err := f.Set(upperLeft.Add(l), C(k)); err != nil {
				return fmt.Errorf("%w: %s at local %v lies outside the room: %w", ErrInvalidRoom, k, l, err)
			}
		}
		return nil
	}
	if err := place(walls, TileWall); err != nil {
		return nil, err
	}
	if err := place(doors, TileDoor); err != nil {
		return nil, err
	}
	return RoomFromPlan(f)
}

func (r *Room) validate() error {
	w, h := r.Width(), r.Height()
	if w < MinRoomSize || h < MinRoomSize {
		return fmt.Errorf("%w: size %dx%d is below %dx%d", ErrInvalidRoom, w, h, MinRoomSize, MinRoomSize)
	}
	sides := []struct {
		name string
		pts  []Point
	}{
		{"top", r.edge(Pt(0, 0), Pt(1, 0), w)},
		{"bottom", r.edge(Pt(0, h-1), Pt(1, 0), w)},
		{"left", r.edge(Pt(0, 0), Pt(0, 1), h)},
		{"right", r.edge(Pt(w-1, 0), Pt(0, 1), h)},
	}
	for _, s := range sides {
		var bad []Point
		for _, p := range s.pts {
			if t := r.at(p).Tile; t != TileWall && t != TileDoor {
				bad = append(bad, p)
			}
		}
		if len(bad) > 0 {
			return fmt.Errorf("%w: %s boundary has cells that are neither wall nor door at %s", ErrInvalidRoom, s.name, joinPoints(bad))
		}
	}

	lr := r.LowerRight()
	var misplaced, interior []Point
	r.Each(func(p Point, c Cell) {
		onEdge := p.X == r.anchor.X || p.X == lr.X || p.Y == r.anchor.Y || p.Y == lr.Y
		corner := (p.X == r.anchor.X || p.X == lr.X) && (p.Y == r.anchor.Y || p.Y == lr.Y)
		switch {
		case c.Tile == TileDoor && (!onEdge || corner):
			misplaced = append(misplaced, p)
		case c.Tile == TileDoor:
			r.doors = append(r.doors, p)
		case !onEdge && c.Tile != TileEmpty && c.Tile != TileWall:
			interior = append(interior, p)
		}
	})
	if len(misplaced) > 0 {
		return fmt.Errorf("%w: doors must sit on a non-corner boundary cell, found %s", ErrInvalidRoom, joinPoints(misplaced))
	}
	if len(interior) > 0 {
		return fmt.Errorf("%w: interior cells must be wall or empty, found %s", ErrInvalidRoom, joinPoints(interior))
	}
	if len(r.doors) == 0 {
		return fmt.Errorf("%w: room at %v has no door", ErrInvalidRoom, r.anchor)
	}
	return nil
}

// edge returns n absolute points starting at local offset from, stepping by d.
func (r *Room) edge(from, d Point, n int) []Point {
	pts := make([]Point, 0, n)
	p := r.anchor.Add(from)
	for range n {
		pts = append(pts, p)
		p = p.Add(d)
	}
	return pts
}

// Doors returns the absolute door coordinates in row-major order.
func (r *Room) Doors() []Point { return slices.Clone(r.doors) }

// Corridor returns the index of the corridor attached at door.
func (r *Room) Corridor(door Point) (int, bool) {
	i, ok := r.attached[door]
	return i, ok
}

// Corridors returns the indices of all attached corridors, ordered by door.
func (r *Room) Corridors() []int {
	doors := slices.SortedFunc(maps.Keys(r.attached), Point.Compare)
	out := make([]int, 0, len(doors))
	for _, d := range doors {
		out = append(out, r.attached[d])
	}
	return out
}

// EmptyPoints returns the room's unoccupied empty cells in row-major order.
func (r *Room) EmptyPoints() []Point {
	return r.TraversablePoints(Kinds(TileEmpty))
}

func (r *Room) attach(door Point, corridor int) error {
	if !slices.Contains(r.doors, door) {
		return fmt.Errorf("%w: %v is not a door of the room at %v", ErrInvalidLevel, door, r.anchor)
	}
	if prev, ok := r.attached[door]; ok {
		return fmt.Errorf("%w: door %v already joins corridor %d", ErrInvalidLevel, door, prev)
	}
	r.attached[door] = corridor
	return nil
}

func (r *Room) clone() *Room {
	return &Room{FloorPlan: r.FloorPlan.Clone(), doors: slices.Clone(r.doors), attached: maps.Clone(r.attached)}
}

func joinPoints(ps []Point) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
