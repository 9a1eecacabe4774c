package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"snarl/internal/state"
)

// DrawHUD renders the status line, the roster and the latest turn messages
// in the bottom rows of the screen.
func (r *Renderer) DrawHUD(gs *state.GameState, theme Theme) {
	_, screenH := r.screen.Size()
	hudY := screenH - hudRows

	r.drawHLine(hudY, tcell.ColorGray)

	level := "Level"
	if gs.Level > 0 {
		level = fmt.Sprintf("Level %d/%d", gs.Level, gs.TotalLevels)
	}
	exit := "Exit: locked"
	if gs.KeyCollected {
		exit = "Exit: open"
	}
	status := fmt.Sprintf("%s  %s  %s", level, exit, theme.Name)
	switch {
	case gs.GameWon:
		status += "  Victory!"
	case gs.GameOver:
		status += "  Game over"
	case gs.LevelOver:
		status += "  Level complete"
	}
	r.drawText(0, hudY+1, status, tcell.StyleDefault.Foreground(tcell.ColorWhite))

	var roster []string
	for _, p := range gs.Players() {
		switch {
		case p.Exited:
			roster = append(roster, p.Name+" (exited)")
		case p.Expelled:
			roster = append(roster, p.Name+" (expelled)")
		case p.HasCombat():
			roster = append(roster, fmt.Sprintf("%s %d/%d", p.Name, p.LifePoints, p.MaxLife()))
		default:
			roster = append(roster, p.Name)
		}
	}
	r.drawText(0, hudY+2, strings.Join(roster, "  "), tcell.StyleDefault.Foreground(tcell.ColorAqua))

	// Message log (last 2 messages).
	msgs := gs.Messages
	if len(msgs) > 2 {
		msgs = msgs[len(msgs)-2:]
	}
	for i, msg := range msgs {
		r.drawText(0, hudY+3+i, msg, tcell.StyleDefault.Foreground(tcell.ColorLightYellow))
	}
}

func (r *Renderer) drawHLine(y int, color tcell.Color) {
	w, _ := r.screen.Size()
	style := tcell.StyleDefault.Foreground(color)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, '─', nil, style)
	}
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		r.screen.SetContent(col, y, ch, nil, style)
		col += max(runewidth.RuneWidth(ch), 1)
	}
}
