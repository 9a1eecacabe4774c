// Package ssh lets spectators watch a running game over SSH. Each session
// gets a tcell screen backed by the SSH channel and is redrawn after every
// turn.
package ssh

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// Size used when the client's pty reports no dimensions, as some clients do
// under ssh -t from a pipe.
const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

// viewerTty is the tcell.Tty of one spectator. Viewers never steer the game:
// the read side only carries the keys that leave (q, Esc, Ctrl-C) and the
// window size follows the client's pty.
type viewerTty struct {
	session gossh.Session
	winCh   <-chan gossh.Window

	mu       sync.Mutex
	w, h     int
	onResize func()
}

func newViewerTty(s gossh.Session, pty gossh.Pty, winCh <-chan gossh.Window) *viewerTty {
	t := &viewerTty{session: s, winCh: winCh}
	t.resize(pty.Window)
	return t
}

func (t *viewerTty) Read(b []byte) (int, error)  { return t.session.Read(b) }
func (t *viewerTty) Write(b []byte) (int, error) { return t.session.Write(b) }
func (t *viewerTty) Close() error                { return t.session.Close() }

// The session handler owns the channel, so there is nothing to switch.
func (t *viewerTty) Start() error { return nil }
func (t *viewerTty) Stop() error  { return nil }
func (t *viewerTty) Drain() error { return nil }

func (t *viewerTty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.w, Height: t.h}, nil
}

func (t *viewerTty) resize(win gossh.Window) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w, t.h = win.Width, win.Height
	if t.w <= 0 || t.h <= 0 {
		t.w, t.h = fallbackWidth, fallbackHeight
	}
}

// NotifyResize registers cb and follows window changes until the session
// closes winCh.
func (t *viewerTty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.onResize = cb
	t.mu.Unlock()

	go func() {
		for win := range t.winCh {
			t.resize(win)
			t.mu.Lock()
			cb := t.onResize
			t.mu.Unlock()
			if cb != nil {
				cb()
			}
		}
	}()
}
