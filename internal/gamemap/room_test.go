package gamemap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	w = TileWall
	d = TileDoor
	e = TileEmpty
)

func TestNewRoomValid(t *testing.T) {
	r, err := NewRoom(Pt(4, 2), [][]TileKind{
		{w, w, d, w},
		{w, e, e, w},
		{d, e, w, w},
		{w, w, w, w},
	})
	require.NoError(t, err)
	assert.Equal(t, []Point{Pt(6, 2), Pt(4, 4)}, r.Doors())
	assert.Equal(t, []Point{Pt(5, 3), Pt(6, 3), Pt(5, 4)}, r.EmptyPoints())
}

func TestNewRoomRejects(t *testing.T) {
	cases := []struct {
		name string
		rows [][]TileKind
		msg  string
	}{
		{
			name: "too small",
			rows: [][]TileKind{{w, d, w}, {w, w, w}},
			msg:  "below 3x3",
		},
		{
			name: "open top boundary",
			rows: [][]TileKind{{w, e, w}, {d, e, w}, {w, w, w}},
			msg:  "top boundary",
		},
		{
			name: "open right boundary",
			rows: [][]TileKind{{w, d, w}, {w, e, e}, {w, w, w}},
			msg:  "right boundary",
		},
		{
			name: "no door",
			rows: [][]TileKind{{w, w, w}, {w, e, w}, {w, w, w}},
			msg:  "no door",
		},
		{
			name: "door in corner",
			rows: [][]TileKind{{d, w, w}, {w, e, d}, {w, w, w}},
			msg:  "(0, 0)",
		},
		{
			name: "door inside",
			rows: [][]TileKind{{w, w, w, w}, {w, d, e, d}, {w, w, w, w}},
			msg:  "(1, 1)",
		},
		{
			name: "void interior",
			rows: [][]TileKind{{w, d, w}, {w, TileVoid, w}, {w, w, w}},
			msg:  "interior",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRoom(Pt(0, 0), tc.rows)
			require.ErrorIs(t, err, ErrInvalidRoom)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestBuildRoom(t *testing.T) {
	r, err := BuildRoom(Pt(0, 0), Pt(5, 5), []Point{Pt(1, 1)}, []Point{Pt(2, 4)})
	require.NoError(t, err)
	want := "# # # # #\n" +
		"# # . . #\n" +
		"# . . . #\n" +
		"# . . . #\n" +
		"# # + # #"
	assert.Equal(t, want, r.Render())
	assert.Equal(t, []Point{Pt(2, 4)}, r.Doors())
}

func TestBuildRoomPlacementOutside(t *testing.T) {
	_, err := BuildRoom(Pt(0, 0), Pt(4, 4), nil, []Point{Pt(4, 1)})
	require.ErrorIs(t, err, ErrInvalidRoom)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestValidRoomBoundaryProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := range 50 {
		size := Pt(3+rng.Intn(6), 3+rng.Intn(6))
		door := Pt(1+rng.Intn(size.X-2), 0)
		if i%2 == 1 {
			door = Pt(0, 1+rng.Intn(size.Y-2))
		}
		r, err := BuildRoom(Pt(rng.Intn(20), rng.Intn(20)), size, nil, []Point{door})
		require.NoError(t, err)

		ul, lr := r.Anchor(), r.LowerRight()
		r.Each(func(p Point, c Cell) {
			edge := p.X == ul.X || p.X == lr.X || p.Y == ul.Y || p.Y == lr.Y
			if edge {
				assert.Contains(t, []TileKind{TileWall, TileDoor}, c.Tile, "boundary cell %v", p)
			}
		})
		for _, dp := range r.Doors() {
			corner := (dp.X == ul.X || dp.X == lr.X) && (dp.Y == ul.Y || dp.Y == lr.Y)
			assert.False(t, corner, "door %v on corner", dp)
		}
	}
}
