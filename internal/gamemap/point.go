package gamemap

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Point is a grid coordinate. X is the column and Y is the row.
// Points are used both as absolute positions and as relative offsets.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Add returns the component-wise sum p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the component-wise difference p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Compare orders points by X, then by Y.
func (p Point) Compare(q Point) int {
	if c := cmp.Compare(p.X, q.X); c != 0 {
		return c
	}
	return cmp.Compare(p.Y, q.Y)
}

// Less reports whether p sorts before q.
func (p Point) Less(q Point) bool { return p.Compare(q) < 0 }

// CardinalDistance is the Chebyshev distance: the larger of the row and column deltas.
func (p Point) CardinalDistance(q Point) int {
	return max(abs(p.X-q.X), abs(p.Y-q.Y))
}

// ManhattanDistance is the sum of the row and column deltas.
func (p Point) ManhattanDistance(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// EuclideanDistance is the straight-line distance between p and q.
func (p Point) EuclideanDistance(q Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Neighbors returns the four orthogonal neighbours of p: up, down, left, right.
func (p Point) Neighbors() [4]Point {
	return [4]Point{
		{p.X, p.Y - 1},
		{p.X, p.Y + 1},
		{p.X - 1, p.Y},
		{p.X + 1, p.Y},
	}
}

func (p Point) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }

// SortPoints sorts ps in place in ascending Compare order.
func SortPoints(ps []Point) {
	slices.SortFunc(ps, Point.Compare)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
