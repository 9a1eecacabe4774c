package gamemap

import "github.com/zyedidia/generic/mapset"

// TileKind identifies what a grid cell shows: a base kind or an overlay.
type TileKind uint8

const (
	TileVoid TileKind = iota // not part of any room or corridor
	TileWall
	TileDoor
	TileEmpty
	TileCorridor
	TileFog // outside an actor's knowledge; only in per-actor views
	TileKey
	TileExit
)

// IsOverlay reports whether k is drawn on top of a base cell (key or exit).
func (k TileKind) IsOverlay() bool {
	return k == TileKey || k == TileExit
}

// Glyph returns the one-character ASCII rendering of k.
func (k TileKind) Glyph() rune {
	switch k {
	case TileWall:
		return '#'
	case TileDoor:
		return '+'
	case TileEmpty:
		return '.'
	case TileCorridor:
		return ':'
	case TileFog:
		return '~'
	case TileKey:
		return 'K'
	case TileExit:
		return 'E'
	default:
		return ' '
	}
}

func (k TileKind) String() string {
	switch k {
	case TileVoid:
		return "void"
	case TileWall:
		return "wall"
	case TileDoor:
		return "door"
	case TileEmpty:
		return "empty"
	case TileCorridor:
		return "corridor"
	case TileFog:
		return "fog"
	case TileKey:
		return "key"
	case TileExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Kinds builds a set of tile kinds.
func Kinds(kinds ...TileKind) mapset.Set[TileKind] {
	s := mapset.New[TileKind]()
	for _, k := range kinds {
		s.Put(k)
	}
	return s
}

// Occupant is the lightweight handle a cell keeps for the actor standing on it.
type Occupant struct {
	Name   string
	Glyph  rune
	Player bool
}

// Cell is one grid position. Tile is the base kind or overlay; when Occupant is
// set, Tile is the kind the occupant is standing on.
type Cell struct {
	Tile     TileKind
	Occupant *Occupant
}

// C returns an unoccupied cell of kind k.
func C(k TileKind) Cell { return Cell{Tile: k} }

// Occupied reports whether an actor stands on the cell.
func (c Cell) Occupied() bool { return c.Occupant != nil }

// Glyph is the occupant's glyph if there is one, otherwise the tile's.
func (c Cell) Glyph() rune {
	if c.Occupant != nil {
		return c.Occupant.Glyph
	}
	return c.Tile.Glyph()
}
