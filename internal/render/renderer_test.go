package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snarl/internal/actor"
	"snarl/internal/game"
	"snarl/internal/gamemap"
	"snarl/internal/levelfile"
	"snarl/internal/state"
	"snarl/internal/strategy"
)

const twoRooms = `{"type": "level",
  "rooms": [
    {"type": "room", "origin": [0, 0], "bounds": {"rows": 5, "columns": 5},
     "layout": [[0,0,0,0,0],[0,1,1,1,0],[0,1,1,1,2],[0,1,1,1,0],[0,0,0,0,0]]},
    {"type": "room", "origin": [1, 10], "bounds": {"rows": 4, "columns": 4},
     "layout": [[0,0,0,0],[2,1,1,0],[0,1,1,0],[0,0,0,0]]}
  ],
  "hallways": [{"type": "hallway", "from": [2, 4], "to": [2, 10], "waypoints": []}],
  "objects": [{"type": "key", "position": [1, 3]}, {"type": "exit", "position": [3, 1]}]}`

func snapshot(t *testing.T) *state.GameState {
	t.Helper()
	spec, err := levelfile.ReadLevel(strings.NewReader(twoRooms))
	require.NoError(t, err)
	lm, err := spec.Builder().
		RegisterPlayer("ann", game.Local(strategy.NoMove{})).
		RegisterAdversary(actor.KindZombie, "z", nil).
		Build()
	require.NoError(t, err)
	return lm.ObserverState()
}

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	scr := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, scr.Init())
	scr.SetSize(w, h)
	return scr
}

func screenLines(scr tcell.SimulationScreen) []string {
	cells, width, _ := scr.GetContents()
	var lines []string
	var buf bytes.Buffer
	for i, c := range cells {
		if i > 0 && i%width == 0 {
			lines = append(lines, buf.String())
			buf.Reset()
		}
		buf.Write(c.Bytes)
	}
	return append(lines, buf.String())
}

func TestDrawFrameMatchesRender(t *testing.T) {
	gs := snapshot(t)
	scr := newSimScreen(t, 80, 24)
	NewRenderer(scr).DrawFrame(gs)

	lines := screenLines(scr)
	want := strings.Split(gs.Render(), "\n")
	for y, row := range want {
		assert.Equal(t, row, lines[y][:len(row)], "row %d", y)
	}
	assert.True(t, strings.HasPrefix(lines[19], "───"), "separator above the HUD")
	assert.True(t, strings.HasPrefix(lines[20], "Level  Exit: locked  ascii"), lines[20])
	assert.True(t, strings.HasPrefix(lines[21], "ann"), lines[21])
}

func TestDrawFrameEmojiTheme(t *testing.T) {
	gs := snapshot(t)
	gs.Level, gs.TotalLevels = 2, 3
	scr := newSimScreen(t, 80, 24)
	r := NewRenderer(scr, EmojiThemes...)
	r.DrawFrame(gs)

	cells, width, _ := scr.GetContents()
	at := func(p gamemap.Point) rune {
		sx, sy, ok := r.Camera().WorldToScreen(p)
		require.True(t, ok)
		return cells[sy*width+sx].Runes[0]
	}
	assert.Equal(t, '🧙', at(gamemap.Pt(1, 1)))
	assert.Equal(t, '🧟', at(gamemap.Pt(11, 2)))
	assert.Equal(t, '🔑', at(gamemap.Pt(3, 1)))
	assert.Equal(t, '🍄', at(gamemap.Pt(0, 0)), "level 2 uses the second theme")
	assert.True(t, strings.HasPrefix(screenLines(scr)[20], "Level 2/3  Exit: locked  Bioluminescent Warrens"))
}

func TestThemeCycles(t *testing.T) {
	r := NewRenderer(newSimScreen(t, 80, 24), EmojiThemes...)
	assert.Equal(t, EmojiThemes[0].Name, r.Theme(0).Name)
	assert.Equal(t, EmojiThemes[0].Name, r.Theme(1).Name)
	assert.Equal(t, EmojiThemes[1].Name, r.Theme(len(EmojiThemes)+2).Name)
}

func TestCamera(t *testing.T) {
	c := NewCamera(gamemap.Point{}, 20, 10)
	level := gamemap.Rect{X1: 0, Y1: 0, X2: 13, Y2: 4}
	assert.False(t, c.Fits(level), "14 cells need 28 columns")

	c.Frame(level, gamemap.Pt(12, 2))
	assert.Equal(t, gamemap.Pt(7, -3), c.Offset)
	sx, sy, ok := c.WorldToScreen(gamemap.Pt(12, 2))
	assert.True(t, ok)
	assert.Equal(t, 10, sx)
	assert.Equal(t, 5, sy)
	assert.Equal(t, gamemap.Pt(12, 2), c.ScreenToWorld(sx, sy))

	_, _, ok = c.WorldToScreen(gamemap.Pt(0, 0))
	assert.False(t, ok)

	c.Resize(40, 10)
	c.Frame(level, gamemap.Pt(12, 2))
	assert.Equal(t, gamemap.Pt(0, 0), c.Offset)
}

func TestTerminalObserverRedraw(t *testing.T) {
	scr := newSimScreen(t, 80, 24)
	o := NewTerminalObserver(scr, 0)
	o.Redraw()
	assert.True(t, strings.TrimSpace(screenLines(scr)[0]) == "", "nothing drawn before the first state")

	gs := snapshot(t)
	o.Observe(gs)
	scr.Clear()
	scr.Show()
	o.Redraw()
	assert.True(t, strings.HasPrefix(screenLines(scr)[1], "# P . K"))
}
