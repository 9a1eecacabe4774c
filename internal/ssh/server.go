package ssh

import (
	"fmt"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
	"github.com/rs/zerolog"
)

// termMu protects os.Setenv("TERM") around screen creation.
var termMu sync.Mutex

// NewServer returns an SSH server on addr whose sessions watch spectators.
// Any client may connect; spectators cannot influence the game.
func NewServer(addr string, signer gossh.Signer, spectators *Spectators, log zerolog.Logger) *gossh.Server {
	return &gossh.Server{
		Addr: addr,
		Handler: func(s gossh.Session) {
			handleSession(s, spectators, log)
		},
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		HostSigners: []gossh.Signer{signer},
	}
}

// handleSession blocks for the duration of the connection so the SSH session
// stays open.
func handleSession(s gossh.Session, spectators *Spectators, log zerolog.Logger) {
	pty, winCh, hasPTY := s.Pty()
	if !hasPTY {
		fmt.Fprintln(s, "Spectating needs a terminal. Connect with: ssh -t -p <port> <host>")
		return
	}

	tty := newViewerTty(s, pty, winCh)
	termMu.Lock()
	_ = os.Setenv("TERM", termOf(s.Environ()))
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	termMu.Unlock()
	if err != nil {
		log.Warn().Err(err).Str("remote", s.RemoteAddr().String()).Msg("terminal setup failed")
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		return
	}
	if err := screen.Init(); err != nil {
		log.Warn().Err(err).Str("remote", s.RemoteAddr().String()).Msg("screen init failed")
		fmt.Fprintf(s, "Screen init failed: %v\n", err)
		return
	}
	defer screen.Fini()

	spectators.Watch(s.Context(), screen)
}
