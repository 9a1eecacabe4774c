// Package levelfile reads and writes levels in the JSON format shared with
// the test harness: points are [row, col], rooms carry a 0/1/2 layout, and a
// levels file is a count followed by that many level objects.
package levelfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"snarl/internal/gamemap"
	"snarl/internal/protocol"
)

// ErrMalformed is returned for input that does not describe a level.
var ErrMalformed = errors.New("malformed level file")

// LevelSpec is a level and where its key and exit go. Key and Exit are nil
// when the level has none.
type LevelSpec struct {
	Level *gamemap.Level
	Key   *gamemap.Point
	Exit  *gamemap.Point
}

// ─── Wire shapes ─────────────────────────────────────────────────────────────

type boundsJSON struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

type roomJSON struct {
	Type   string       `json:"type"`
	Origin protocol.Pos `json:"origin"`
	Bounds boundsJSON   `json:"bounds"`
	Layout [][]int      `json:"layout"`
}

type hallwayJSON struct {
	Type      string         `json:"type"`
	From      protocol.Pos   `json:"from"`
	To        protocol.Pos   `json:"to"`
	Waypoints []protocol.Pos `json:"waypoints"`
}

type objectJSON struct {
	Type     string       `json:"type"`
	Position protocol.Pos `json:"position"`
}

type levelJSON struct {
	Type     string        `json:"type"`
	Rooms    []roomJSON    `json:"rooms"`
	Hallways []hallwayJSON `json:"hallways"`
	Objects  []objectJSON  `json:"objects"`
}

// ─── Decoding ────────────────────────────────────────────────────────────────

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...)
}

func (r roomJSON) room() (*gamemap.Room, error) {
	if r.Type != "room" {
		return nil, malformed("expected a room, got type %q", r.Type)
	}
	if len(r.Layout) != r.Bounds.Rows {
		return nil, malformed("room at %v: %d layout rows, bounds say %d", r.Origin, len(r.Layout), r.Bounds.Rows)
	}
	rows := make([][]gamemap.TileKind, len(r.Layout))
	for y, codes := range r.Layout {
		if len(codes) != r.Bounds.Columns {
			return nil, malformed("room at %v: row %d has %d columns, bounds say %d", r.Origin, y, len(codes), r.Bounds.Columns)
		}
		rows[y] = make([]gamemap.TileKind, len(codes))
		for x, c := range codes {
			k, ok := protocol.CodeTile(c)
			if !ok {
				return nil, malformed("room at %v: unknown tile code %d", r.Origin, c)
			}
			rows[y][x] = k
		}
	}
	return gamemap.NewRoom(r.Origin.Point(), rows)
}

func (h hallwayJSON) corridor() (*gamemap.Corridor, error) {
	if h.Type != "hallway" {
		return nil, malformed("expected a hallway, got type %q", h.Type)
	}
	path := []gamemap.Point{h.From.Point()}
	for _, w := range h.Waypoints {
		path = append(path, w.Point())
	}
	path = append(path, h.To.Point())
	return gamemap.NewCorridor(path)
}

func (l levelJSON) spec() (LevelSpec, error) {
	if l.Type != "level" {
		return LevelSpec{}, malformed("expected a level, got type %q", l.Type)
	}
	rooms := make([]*gamemap.Room, 0, len(l.Rooms))
	for _, rj := range l.Rooms {
		r, err := rj.room()
		if err != nil {
			return LevelSpec{}, err
		}
		rooms = append(rooms, r)
	}
	corridors := make([]*gamemap.Corridor, 0, len(l.Hallways))
	for _, hj := range l.Hallways {
		c, err := hj.corridor()
		if err != nil {
			return LevelSpec{}, err
		}
		corridors = append(corridors, c)
	}
	lvl, err := gamemap.NewLevel(rooms, corridors)
	if err != nil {
		return LevelSpec{}, err
	}

	spec := LevelSpec{Level: lvl}
	for _, o := range l.Objects {
		p := o.Position.Point()
		var slot **gamemap.Point
		switch o.Type {
		case "key":
			slot = &spec.Key
		case "exit":
			slot = &spec.Exit
		default:
			return LevelSpec{}, malformed("unknown object %q", o.Type)
		}
		if *slot != nil {
			return LevelSpec{}, malformed("more than one %s", o.Type)
		}
		*slot = &p
	}
	return spec, nil
}

// ReadLevel decodes one level object.
func ReadLevel(r io.Reader) (LevelSpec, error) {
	var lj levelJSON
	if err := json.NewDecoder(r).Decode(&lj); err != nil {
		return LevelSpec{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return lj.spec()
}

// ReadLevels decodes a levels file: a count N followed by N level objects.
func ReadLevels(r io.Reader) ([]LevelSpec, error) {
	dec := json.NewDecoder(r)
	var n int
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("%w: level count: %w", ErrMalformed, err)
	}
	if n < 1 {
		return nil, malformed("level count %d", n)
	}
	specs := make([]LevelSpec, 0, n)
	for i := range n {
		var lj levelJSON
		if err := dec.Decode(&lj); err != nil {
			return nil, fmt.Errorf("%w: level %d of %d: %w", ErrMalformed, i+1, n, err)
		}
		s, err := lj.spec()
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", i+1, err)
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// ─── Encoding ────────────────────────────────────────────────────────────────

func roomOf(r *gamemap.Room) roomJSON {
	rj := roomJSON{
		Type:   "room",
		Origin: protocol.PosOf(r.Anchor()),
		Bounds: boundsJSON{Rows: r.Height(), Columns: r.Width()},
		Layout: make([][]int, r.Height()),
	}
	for y := range rj.Layout {
		rj.Layout[y] = make([]int, r.Width())
	}
	r.Each(func(p gamemap.Point, c gamemap.Cell) {
		l := p.Sub(r.Anchor())
		rj.Layout[l.Y][l.X] = protocol.TileCode(c.Tile)
	})
	return rj
}

func hallwayOf(c *gamemap.Corridor) hallwayJSON {
	hj := hallwayJSON{
		Type:      "hallway",
		From:      protocol.PosOf(c.Entry()),
		To:        protocol.PosOf(c.Exit()),
		Waypoints: []protocol.Pos{},
	}
	for _, w := range c.Waypoints() {
		hj.Waypoints = append(hj.Waypoints, protocol.PosOf(w))
	}
	return hj
}

func levelOf(s LevelSpec) levelJSON {
	lj := levelJSON{Type: "level", Rooms: []roomJSON{}, Hallways: []hallwayJSON{}, Objects: []objectJSON{}}
	for _, r := range s.Level.Rooms() {
		lj.Rooms = append(lj.Rooms, roomOf(r))
	}
	for _, c := range s.Level.Corridors() {
		lj.Hallways = append(lj.Hallways, hallwayOf(c))
	}
	if s.Key != nil {
		lj.Objects = append(lj.Objects, objectJSON{Type: "key", Position: protocol.PosOf(*s.Key)})
	}
	if s.Exit != nil {
		lj.Objects = append(lj.Objects, objectJSON{Type: "exit", Position: protocol.PosOf(*s.Exit)})
	}
	return lj
}

// WriteLevel encodes one level object.
func WriteLevel(w io.Writer, s LevelSpec) error {
	if err := json.NewEncoder(w).Encode(levelOf(s)); err != nil {
		return fmt.Errorf("write level: %w", err)
	}
	return nil
}

// WriteLevels encodes specs as a levels file, one JSON value per line.
func WriteLevels(w io.Writer, specs []LevelSpec) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(len(specs)); err != nil {
		return fmt.Errorf("write levels: %w", err)
	}
	for i, s := range specs {
		if err := enc.Encode(levelOf(s)); err != nil {
			return fmt.Errorf("write level %d: %w", i+1, err)
		}
	}
	return nil
}
