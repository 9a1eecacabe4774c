package gamemap

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// Rect is an axis-aligned rectangle with inclusive corners.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// RectOf returns the rectangle spanned by the upper-left and lower-right points.
func RectOf(ul, lr Point) Rect { return Rect{ul.X, ul.Y, lr.X, lr.Y} }

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return (r.X1 + r.X2) / 2, (r.Y1 + r.Y2) / 2
}

// Intersects reports whether r overlaps other (inclusive edges).
func (r Rect) Intersects(other Rect) bool {
	return r.X1 <= other.X2 && r.X2 >= other.X1 &&
		r.Y1 <= other.Y2 && r.Y2 >= other.Y1
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X1 && p.X <= r.X2 && p.Y >= r.Y1 && p.Y <= r.Y2
}

// FloorPlan is a rectangular grid of cells anchored at an absolute coordinate.
// All coordinate arguments are absolute; the local index is point - anchor.
type FloorPlan struct {
	anchor Point
	cells  [][]Cell
}

// NewFloorPlan wraps rows as a plan anchored at anchor. Rows must be non-empty
// and of equal length. The rows are copied.
func NewFloorPlan(anchor Point, rows [][]Cell) (*FloorPlan, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: layout at %v is empty", ErrMalformedPlan, anchor)
	}
	w := len(rows[0])
	cells := make([][]Cell, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedPlan, y, len(row), w)
		}
		cells[y] = append([]Cell(nil), row...)
	}
	return &FloorPlan{anchor: anchor, cells: cells}, nil
}

// FromTiles builds a plan of unoccupied cells from a grid of tile kinds.
func FromTiles(anchor Point, rows [][]TileKind) (*FloorPlan, error) {
	cells := make([][]Cell, len(rows))
	for y, row := range rows {
		cells[y] = make([]Cell, len(row))
		for x, k := range row {
			cells[y][x] = C(k)
		}
	}
	return NewFloorPlan(anchor, cells)
}

// NewFilled creates a width x height plan with every cell set to k.
func NewFilled(anchor Point, width, height int, k TileKind) *FloorPlan {
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
		for x := range cells[y] {
			cells[y][x] = C(k)
		}
	}
	return &FloorPlan{anchor: anchor, cells: cells}
}

// Anchor is the absolute coordinate of the top-left cell.
func (f *FloorPlan) Anchor() Point { return f.anchor }

// Width returns the number of columns.
func (f *FloorPlan) Width() int {
	if len(f.cells) == 0 {
		return 0
	}
	return len(f.cells[0])
}

// Height returns the number of rows.
func (f *FloorPlan) Height() int { return len(f.cells) }

// LowerRight is the absolute coordinate of the bottom-right cell.
func (f *FloorPlan) LowerRight() Point {
	return f.anchor.Add(Pt(f.Width()-1, f.Height()-1))
}

// Bounds returns the absolute rectangle covered by the plan.
func (f *FloorPlan) Bounds() Rect { return RectOf(f.anchor, f.LowerRight()) }

// Contains reports whether the absolute point p falls inside the grid.
func (f *FloorPlan) Contains(p Point) bool {
	l := p.Sub(f.anchor)
	return l.Y >= 0 && l.Y < len(f.cells) && l.X >= 0 && l.X < f.Width()
}

// Get returns the cell at absolute point p.
func (f *FloorPlan) Get(p Point) (Cell, error) {
	if !f.Contains(p) {
		return Cell{}, fmt.Errorf("get %v: %w", p, ErrOutOfBounds)
	}
	return f.at(p), nil
}

// Set replaces the cell at absolute point p.
func (f *FloorPlan) Set(p Point, c Cell) error {
	if !f.Contains(p) {
		return fmt.Errorf("set %v: %w", p, ErrOutOfBounds)
	}
	l := p.Sub(f.anchor)
	f.cells[l.Y][l.X] = c
	return nil
}

// Tile returns the tile kind at p, or TileVoid when p is out of bounds.
func (f *FloorPlan) Tile(p Point) TileKind {
	if !f.Contains(p) {
		return TileVoid
	}
	return f.at(p).Tile
}

// put is Set without the bounds check.
func (f *FloorPlan) put(p Point, c Cell) {
	l := p.Sub(f.anchor)
	f.cells[l.Y][l.X] = c
}

// at is Get without the bounds check.
func (f *FloorPlan) at(p Point) Cell {
	l := p.Sub(f.anchor)
	return f.cells[l.Y][l.X]
}

// Each calls fn for every cell in row-major order.
func (f *FloorPlan) Each(fn func(p Point, c Cell)) {
	for y, row := range f.cells {
		for x, c := range row {
			fn(f.anchor.Add(Pt(x, y)), c)
		}
	}
}

// TraversablePoints returns the absolute points of unoccupied cells whose tile
// is in kinds, in row-major order.
func (f *FloorPlan) TraversablePoints(kinds mapset.Set[TileKind]) []Point {
	var out []Point
	f.Each(func(p Point, c Cell) {
		if !c.Occupied() && kinds.Has(c.Tile) {
			out = append(out, p)
		}
	})
	return out
}

// RandomTraversablePoint picks one of TraversablePoints(kinds) uniformly.
func (f *FloorPlan) RandomTraversablePoint(kinds mapset.Set[TileKind], rng *rand.Rand) (Point, error) {
	pts := f.TraversablePoints(kinds)
	if len(pts) == 0 {
		return Point{}, fmt.Errorf("random point in plan at %v: %w", f.anchor, ErrNoTraversable)
	}
	return pts[rng.Intn(len(pts))], nil
}

// Clone returns a deep copy of the plan.
func (f *FloorPlan) Clone() *FloorPlan {
	cells := make([][]Cell, len(f.cells))
	for y, row := range f.cells {
		cells[y] = append([]Cell(nil), row...)
	}
	return &FloorPlan{anchor: f.anchor, cells: cells}
}

// Crop returns a copy of the part of the plan inside r, clipped to the plan's
// bounds. It fails when r does not overlap the plan.
func (f *FloorPlan) Crop(r Rect) (*FloorPlan, error) {
	b := f.Bounds()
	if !b.Intersects(r) {
		return nil, fmt.Errorf("crop %v: %w", r, ErrOutOfBounds)
	}
	ul := Pt(max(r.X1, b.X1), max(r.Y1, b.Y1))
	lr := Pt(min(r.X2, b.X2), min(r.Y2, b.Y2))
	rows := make([][]Cell, 0, lr.Y-ul.Y+1)
	for y := ul.Y; y <= lr.Y; y++ {
		row := make([]Cell, 0, lr.X-ul.X+1)
		for x := ul.X; x <= lr.X; x++ {
			row = append(row, f.at(Pt(x, y)))
		}
		rows = append(rows, row)
	}
	return &FloorPlan{anchor: ul, cells: rows}, nil
}

// Render draws the plan as ASCII: one glyph per cell, cells separated by a
// space and rows by a newline.
func (f *FloorPlan) Render() string {
	var sb strings.Builder
	for y, row := range f.cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x, c := range row {
			if x > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteRune(c.Glyph())
		}
	}
	return sb.String()
}
