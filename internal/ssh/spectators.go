package ssh

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"snarl/internal/render"
	"snarl/internal/state"
)

// Spectators is a game.Observer that fans every snapshot out to the screens
// currently watching. Observe never blocks on a slow screen: each viewer is
// only told to redraw, and draws the latest snapshot in its own goroutine.
type Spectators struct {
	themes []render.Theme
	log    zerolog.Logger

	mu      sync.Mutex
	last    *state.GameState
	viewers map[string]*viewer
}

type viewer struct {
	id       string
	screen   tcell.Screen
	r        *render.Renderer
	renderCh chan struct{}
}

func (v *viewer) signal() {
	select {
	case v.renderCh <- struct{}{}:
	default:
	}
}

// NewSpectators returns an empty hub. Screens draw with themes.
func NewSpectators(log zerolog.Logger, themes ...render.Theme) *Spectators {
	return &Spectators{themes: themes, log: log, viewers: make(map[string]*viewer)}
}

// Observe records gs and asks every viewer to redraw.
func (s *Spectators) Observe(gs *state.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = gs
	for _, v := range s.viewers {
		v.signal()
	}
}

// Len is the number of attached screens.
func (s *Spectators) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers)
}

func (s *Spectators) latest() *state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Watch draws the game on screen until ctx ends, the screen closes or the
// viewer presses q, Esc or Ctrl-C. The caller still owns screen.
func (s *Spectators) Watch(ctx context.Context, screen tcell.Screen) {
	v := &viewer{
		id:       uuid.NewString(),
		screen:   screen,
		r:        render.NewRenderer(screen, s.themes...),
		renderCh: make(chan struct{}, 1),
	}
	s.mu.Lock()
	s.viewers[v.id] = v
	s.mu.Unlock()
	s.log.Info().Str("viewer", v.id).Msg("spectator joined")
	defer func() {
		s.mu.Lock()
		delete(s.viewers, v.id)
		s.mu.Unlock()
		s.log.Info().Str("viewer", v.id).Msg("spectator left")
	}()

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		for {
			ev := screen.PollEvent()
			switch ev := ev.(type) {
			case nil:
				return
			case *tcell.EventResize:
				screen.Sync()
				v.signal()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return
				}
				if ev.Rune() == 'q' || ev.Rune() == 'Q' {
					return
				}
			}
		}
	}()

	v.signal()
	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case <-v.renderCh:
			if gs := s.latest(); gs != nil {
				v.r.DrawFrame(gs)
			} else {
				showWaiting(screen)
			}
		}
	}
}

// showWaiting displays a "waiting for the game" message on screen.
func showWaiting(screen tcell.Screen) {
	screen.Clear()
	msg := "Waiting for the game to start..."
	w, h := screen.Size()
	x := max((w-len(msg))/2, 0)
	y := h / 2
	style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for i, r := range msg {
		screen.SetContent(x+i, y, r, nil, style)
	}
	sub := "Press q to leave"
	xs := max((w-len(sub))/2, 0)
	for i, r := range sub {
		screen.SetContent(xs+i, y+2, r, nil, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
	screen.Show()
}
