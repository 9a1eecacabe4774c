// Package render draws level snapshots onto tcell screens: the local
// terminal of an offline game and the SSH sessions of spectators.
package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"snarl/internal/actor"
	"snarl/internal/gamemap"
	"snarl/internal/state"
)

// hudRows is the height reserved at the bottom of the screen for the HUD.
const hudRows = 5

// Renderer draws game states onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	camera *Camera
	themes []Theme
}

// NewRenderer returns a renderer for screen. Levels cycle through themes;
// with none given the ASCII theme is used.
func NewRenderer(screen tcell.Screen, themes ...Theme) *Renderer {
	if len(themes) == 0 {
		themes = []Theme{ASCII}
	}
	w, h := screen.Size()
	return &Renderer{
		screen: screen,
		camera: NewCamera(gamemap.Point{}, w, max(h-hudRows, 1)),
		themes: themes,
	}
}

// Camera exposes the renderer's camera.
func (r *Renderer) Camera() *Camera { return r.camera }

// Theme returns the theme for the 1-based level; zero means a standalone
// level and uses the first theme.
func (r *Renderer) Theme(level int) Theme {
	if level < 1 {
		return r.themes[0]
	}
	return r.themes[(level-1)%len(r.themes)]
}

// DrawFrame renders gs and the HUD and shows the result.
func (r *Renderer) DrawFrame(gs *state.GameState) {
	w, h := r.screen.Size()
	r.camera.Resize(w, max(h-hudRows, 1))
	r.camera.Frame(gs.Plan.Bounds(), focus(gs))

	r.screen.Clear()
	theme := r.Theme(gs.Level)
	r.drawPlan(gs.Plan, theme)
	r.drawActors(gs, theme)
	r.DrawHUD(gs, theme)
	r.screen.Show()
}

// focus is the first player still on the board, or the plan's centre.
func focus(gs *state.GameState) gamemap.Point {
	for _, a := range gs.Actors {
		if a.IsPlayer() && a.OnBoard() {
			return a.Pos
		}
	}
	return gamemap.Pt(gs.Plan.Bounds().Center())
}

// drawPlan draws every tile; occupants are drawn afterwards by drawActors.
func (r *Renderer) drawPlan(plan *gamemap.FloorPlan, theme Theme) {
	plan.Each(func(p gamemap.Point, c gamemap.Cell) {
		glyph, style := theme.cellGlyph(c.Tile)
		if glyph == "" {
			return
		}
		sx, sy, onScreen := r.camera.WorldToScreen(p)
		if !onScreen {
			return
		}
		r.putGlyph(sx, sy, glyph, style)
	})
}

// drawActors draws adversaries first so players stay visible on top.
func (r *Renderer) drawActors(gs *state.GameState, theme Theme) {
	draw := func(a actor.Actor, style tcell.Style) {
		if !a.OnBoard() {
			return
		}
		sx, sy, onScreen := r.camera.WorldToScreen(a.Pos)
		if !onScreen {
			return
		}
		r.putGlyph(sx, sy, theme.actorGlyph(a.Kind), style)
	}
	base := tcell.StyleDefault.Background(tcell.ColorBlack)
	for _, a := range gs.Actors {
		if !a.IsPlayer() {
			draw(a, base.Foreground(tcell.ColorRed).Bold(true))
		}
	}
	for i, a := range gs.Players() {
		draw(a, base.Foreground(playerColors[i%len(playerColors)]).Bold(true))
	}
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at screen
// position (x, y). Glyphs wider than a level cell are not drawn.
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 || runewidth.StringWidth(glyph) > 2 {
		return
	}
	r.screen.SetContent(x, y, runes[0], runes[1:], style)
}
