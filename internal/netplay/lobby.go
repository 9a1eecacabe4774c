package netplay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zyedidia/generic/mapset"

	"snarl/internal/actor"
	"snarl/internal/protocol"
)

// MaxNameBytes bounds a display name after sanitizing.
const MaxNameBytes = 16

// ErrLobbyClosed is returned by Offer once gathering has finished.
var ErrLobbyClosed = errors.New("lobby closed")

// Peer is a client that completed the handshake.
type Peer struct {
	ID   string
	Name string
	Kind actor.Kind
	Conn Conn
}

// Lobby gathers clients before a game. Connections come from a TCP listener
// passed to Gather and from Offer, which the WebSocket endpoint uses.
type Lobby struct {
	info        string
	max         int
	wait        time.Duration
	readTimeout time.Duration
	log         zerolog.Logger

	offers chan Conn
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	names   mapset.Set[string]
	pending map[Conn]struct{} // mid-handshake
}

// NewLobby returns a lobby that admits up to max clients within wait.
// readTimeout bounds each read on accepted TCP connections; zero disables it.
func NewLobby(info string, max int, wait, readTimeout time.Duration, log zerolog.Logger) *Lobby {
	return &Lobby{
		info:        info,
		max:         max,
		wait:        wait,
		readTimeout: readTimeout,
		log:         log,
		offers:      make(chan Conn),
		closed:      make(chan struct{}),
		names:       mapset.New[string](),
		pending:     make(map[Conn]struct{}),
	}
}

// Reserve marks names as taken so clients cannot claim them.
func (l *Lobby) Reserve(names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range names {
		l.names.Put(n)
	}
}

// ReadTimeout is the per-read deadline connections should use.
func (l *Lobby) ReadTimeout() time.Duration { return l.readTimeout }

// Offer hands a connection to a running Gather. It fails with ErrLobbyClosed
// after gathering has finished; the caller keeps ownership then.
func (l *Lobby) Offer(c Conn) error {
	select {
	case l.offers <- c:
		return nil
	case <-l.closed:
		return ErrLobbyClosed
	}
}

// Gather admits clients until max have joined, wait elapses or ctx ends,
// and returns them in the order they finished the handshake. ln may be nil;
// otherwise Gather closes it before returning.
func (l *Lobby) Gather(ctx context.Context, ln net.Listener) ([]*Peer, error) {
	defer l.shutdown()
	if ln != nil {
		defer ln.Close()
		go l.accept(ln)
	}

	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	joined := make(chan *Peer)
	var peers []*Peer
	for len(peers) < l.max {
		select {
		case c := <-l.offers:
			go l.admit(c, joined)
		case p := <-joined:
			peers = append(peers, p)
			l.log.Info().Str("id", p.ID).Str("name", p.Name).Stringer("kind", p.Kind).Str("remote", p.Conn.RemoteAddr()).Msg("client joined")
		case <-timer.C:
			return l.done(peers)
		case <-ctx.Done():
			for _, p := range peers {
				_ = p.Conn.Close()
			}
			return nil, fmt.Errorf("gather clients: %w", ctx.Err())
		}
	}
	return l.done(peers)
}

// shutdown stops admitting clients and hangs up on those still in the
// handshake.
func (l *Lobby) shutdown() {
	l.once.Do(func() { close(l.closed) })
	l.mu.Lock()
	defer l.mu.Unlock()
	for c := range l.pending {
		_ = c.Close()
	}
	clear(l.pending)
}

// track records c as mid-handshake. It reports false once the lobby is closed.
func (l *Lobby) track(c Conn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.closed:
		return false
	default:
	}
	l.pending[c] = struct{}{}
	return true
}

func (l *Lobby) untrack(c Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, c)
}

func (l *Lobby) release(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names.Remove(name)
}

func (l *Lobby) done(peers []*Peer) ([]*Peer, error) {
	if len(peers) == 0 {
		return nil, fmt.Errorf("gather clients: nobody joined within %s", l.wait)
	}
	return peers, nil
}

func (l *Lobby) accept(ln net.Listener) {
	for {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		l.log.Debug().Str("remote", c.RemoteAddr().String()).Msg("connection accepted")
		if err := l.Offer(NewLineConn(c, l.readTimeout)); err != nil {
			_ = c.Close()
			return
		}
	}
}

// admit runs the handshake and delivers the peer, or closes the connection
// when the handshake fails or gathering is over.
func (l *Lobby) admit(c Conn, joined chan<- *Peer) {
	if !l.track(c) {
		_ = c.Close()
		return
	}
	p, err := l.handshake(c)
	l.untrack(c)
	if err != nil {
		select {
		case <-l.closed:
			l.log.Debug().Err(err).Str("remote", c.RemoteAddr()).Msg("handshake cut short: lobby closed")
		default:
			l.log.Warn().Err(err).Str("remote", c.RemoteAddr()).Msg("handshake failed")
		}
		_ = c.Close()
		return
	}
	select {
	case joined <- p:
	case <-l.closed:
		l.log.Info().Str("name", p.Name).Msg("rejected: lobby full or closed")
		l.release(p.Name)
		_ = c.Close()
	}
}

// handshake greets the client, asks for its name and reads the optional
// client type that precedes it.
func (l *Lobby) handshake(c Conn) (*Peer, error) {
	if err := c.Send(protocol.NewWelcome(l.info)); err != nil {
		return nil, err
	}
	if err := c.Send(protocol.RequestName); err != nil {
		return nil, err
	}
	text, err := receiveText(c)
	if err != nil {
		return nil, err
	}
	kind := actor.KindPlayer
	if k, err := actor.ParseKind(text); err == nil {
		kind = k
		if text, err = receiveText(c); err != nil {
			return nil, err
		}
	}
	id := uuid.NewString()
	return &Peer{ID: id, Name: l.claim(sanitizeName(text), id), Kind: kind, Conn: c}, nil
}

func receiveText(c Conn) (string, error) {
	f, err := c.Receive()
	if err != nil {
		return "", err
	}
	if !f.IsText() {
		return "", fmt.Errorf("%w: expected a string, got a %s message", protocol.ErrMalformed, f.Type)
	}
	return f.Text, nil
}

// claim reserves name, or a suffixed variant of it when taken. An empty name
// is replaced with one derived from id.
func (l *Lobby) claim(name, id string) string {
	if name == "" {
		name = "anon-" + id[:8]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := UniqueName(name, l.names.Has)
	l.names.Put(n)
	return n
}

// UniqueName returns base, or base with the smallest "-N" suffix that taken
// rejects, truncated to MaxNameBytes.
func UniqueName(base string, taken func(string) bool) string {
	n := base
	for i := 2; taken(n); i++ {
		suffix := fmt.Sprintf("-%d", i)
		n = truncate(base, MaxNameBytes-len(suffix)) + suffix
	}
	return n
}

// sanitizeName drops control characters and truncates to MaxNameBytes
// without splitting a rune.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if b.Len()+utf8.RuneLen(r) > MaxNameBytes {
			break
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
