package render

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"snarl/internal/state"
)

// TerminalObserver is a game.Observer that redraws a screen after every turn.
type TerminalObserver struct {
	mu    sync.Mutex
	r     *Renderer
	delay time.Duration
	last  *state.GameState
}

// NewTerminalObserver draws onto screen, pausing delay after each frame so a
// human can follow local games.
func NewTerminalObserver(screen tcell.Screen, delay time.Duration, themes ...Theme) *TerminalObserver {
	return &TerminalObserver{r: NewRenderer(screen, themes...), delay: delay}
}

// Observe draws gs.
func (o *TerminalObserver) Observe(gs *state.GameState) {
	o.mu.Lock()
	o.last = gs
	o.r.DrawFrame(gs)
	o.mu.Unlock()
	if o.delay > 0 {
		time.Sleep(o.delay)
	}
}

// Redraw repeats the last frame, for example after a resize.
func (o *TerminalObserver) Redraw() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last != nil {
		o.r.DrawFrame(o.last)
	}
}
