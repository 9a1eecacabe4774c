package render

import (
	"github.com/gdamore/tcell/v2"

	"snarl/internal/actor"
	"snarl/internal/gamemap"
)

// Theme holds the glyphs and colours used to draw one level. Every glyph
// occupies at most two terminal columns.
type Theme struct {
	Name     string
	Wall     string
	Floor    string
	Corridor string
	Door     string
	Key      string
	Exit     string
	Fog      string
	Actors   map[actor.Kind]string

	WallColor  tcell.Color
	FloorColor tcell.Color
}

// ASCII draws exactly what gamemap.FloorPlan.Render prints.
var ASCII = Theme{
	Name:     "ascii",
	Wall:     "#",
	Floor:    ".",
	Corridor: ":",
	Door:     "+",
	Key:      "K",
	Exit:     "E",
	Fog:      "~",
	Actors: map[actor.Kind]string{
		actor.KindPlayer: "P",
		actor.KindZombie: "Z",
		actor.KindGhost:  "G",
	},
	WallColor:  tcell.ColorGray,
	FloorColor: tcell.ColorDarkGray,
}

var emojiActors = map[actor.Kind]string{
	actor.KindPlayer: "🧙",
	actor.KindZombie: "🧟",
	actor.KindGhost:  "👻",
}

// EmojiThemes is cycled through by level number.
var EmojiThemes = []Theme{
	{Name: "Crystalline Labs", Wall: "🧊", Floor: "⬜", Corridor: "🔹", Door: "🚪", Key: "🔑", Exit: "🔽", Fog: "🌑", Actors: emojiActors},
	{Name: "Bioluminescent Warrens", Wall: "🍄", Floor: "🟩", Corridor: "🌿", Door: "🚪", Key: "🔑", Exit: "🔽", Fog: "🌑", Actors: emojiActors},
	{Name: "Resonance Engine", Wall: "🧱", Floor: "🟨", Corridor: "✨", Door: "🚪", Key: "🔑", Exit: "🔽", Fog: "🌑", Actors: emojiActors},
	{Name: "Fractured Observatory", Wall: "🪨", Floor: "🟦", Corridor: "💠", Door: "🚪", Key: "🔑", Exit: "🔽", Fog: "🌑", Actors: emojiActors},
	{Name: "Apex Nexus", Wall: "💀", Floor: "🟥", Corridor: "🔸", Door: "🚪", Key: "🔑", Exit: "🔽", Fog: "🌑", Actors: emojiActors},
}

// playerColors tints ASCII player glyphs so players can tell each other apart.
var playerColors = []tcell.Color{
	tcell.ColorYellow,
	tcell.ColorAqua,
	tcell.ColorFuchsia,
	tcell.ColorLime,
}

// cellGlyph picks the glyph for a cell without an occupant.
func (t Theme) cellGlyph(k gamemap.TileKind) (string, tcell.Style) {
	base := tcell.StyleDefault.Background(tcell.ColorBlack)
	switch k {
	case gamemap.TileWall:
		return t.Wall, base.Foreground(t.WallColor)
	case gamemap.TileEmpty:
		return t.Floor, base.Foreground(t.FloorColor)
	case gamemap.TileCorridor:
		return t.Corridor, base.Foreground(t.FloorColor)
	case gamemap.TileDoor:
		return t.Door, base.Foreground(tcell.ColorOlive)
	case gamemap.TileKey:
		return t.Key, base.Foreground(tcell.ColorGold).Bold(true)
	case gamemap.TileExit:
		return t.Exit, base.Foreground(tcell.ColorGreen).Bold(true)
	case gamemap.TileFog:
		return t.Fog, base.Foreground(tcell.ColorDarkSlateGray)
	default:
		return "", base
	}
}

func (t Theme) actorGlyph(k actor.Kind) string {
	if g, ok := t.Actors[k]; ok {
		return g
	}
	return ASCII.Actors[k]
}
