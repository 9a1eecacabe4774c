package netplay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"snarl/internal/actor"
	"snarl/internal/game"
	"snarl/internal/protocol"
	"snarl/internal/rules"
	"snarl/internal/state"
)

// Client plays one actor against a server, forwarding every notification to
// a local controller and answering move requests with its strategy.
type Client struct {
	conn Conn
	self actor.Actor
	ctrl game.Controller
	log  zerolog.Logger

	info         string
	level        int
	keyCollected bool
	current      *state.ActorState
}

// NewClient prepares a client that will join as name with the given kind.
func NewClient(conn Conn, name string, kind actor.Kind, ctrl game.Controller, log zerolog.Logger) (*Client, error) {
	a, err := actor.New(kind, name)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	return &Client{conn: conn, self: *a, ctrl: ctrl, log: log}, nil
}

// Info is the server metadata from the welcome message.
func (c *Client) Info() string { return c.info }

// Run waits for the welcome and plays until the server sends end-game. The
// connection is closed when Run returns.
func (c *Client) Run(ctx context.Context) error {
	defer c.conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	f, err := c.conn.Receive()
	if err != nil {
		return c.wrap(ctx, err)
	}
	var w protocol.WelcomeMessage
	if f.Type != protocol.TypeWelcome {
		return fmt.Errorf("%w: expected welcome, got %q%s", protocol.ErrMalformed, f.Type, f.Text)
	}
	if err := f.Into(&w); err != nil {
		return err
	}
	c.info = w.Info
	c.log.Info().Str("info", w.Info).Msg("connected")

	for {
		f, err := c.conn.Receive()
		if err != nil {
			return c.wrap(ctx, err)
		}
		done, err := c.handle(f)
		if err != nil || done {
			return err
		}
	}
}

func (c *Client) wrap(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// handle processes one frame and reports whether the game is over.
func (c *Client) handle(f protocol.Frame) (bool, error) {
	if f.IsText() {
		return false, c.handleText(f.Text)
	}
	switch f.Type {
	case protocol.TypeStartLevel:
		var m protocol.StartLevelMessage
		if err := f.Into(&m); err != nil {
			return false, err
		}
		c.level, c.keyCollected, c.current = m.Level, false, nil
		return false, c.ctrl.StartLevel(m.Level)
	case protocol.TypePlayerUpdate:
		var m protocol.PlayerUpdateMessage
		if err := f.Into(&m); err != nil {
			return false, err
		}
		for _, msg := range m.Messages() {
			if game.IsKeyFound(msg) {
				c.keyCollected = true
			}
		}
		s, err := m.State(c.self, c.level, c.keyCollected)
		if err != nil {
			return false, err
		}
		c.current = s
		return false, c.ctrl.Update(s)
	case protocol.TypeEndLevel:
		var m protocol.EndLevelMessage
		if err := f.Into(&m); err != nil {
			return false, err
		}
		return false, c.ctrl.EndLevel(m.Summary())
	case protocol.TypeEndGame:
		var m protocol.EndGameMessage
		if err := f.Into(&m); err != nil {
			return false, err
		}
		return true, c.ctrl.EndGame(m.Ranking())
	}
	return false, fmt.Errorf("%w: unexpected %q message", protocol.ErrMalformed, f.Type)
}

func (c *Client) handleText(text string) error {
	switch text {
	case protocol.RequestName:
		// The type precedes the name.
		if err := c.conn.Send(c.self.Kind.String()); err != nil {
			return err
		}
		return c.conn.Send(c.self.Name)
	case protocol.RequestMove:
		if c.current == nil {
			return fmt.Errorf("%w: move requested before any update", protocol.ErrMalformed)
		}
		to, err := c.ctrl.RequestMove(c.current)
		if err != nil {
			return fmt.Errorf("choose move: %w", err)
		}
		return c.conn.Send(protocol.NewMove(to))
	}
	r, err := rules.ParseMoveResult(text)
	if err != nil {
		return fmt.Errorf("%w: unexpected %q", protocol.ErrMalformed, text)
	}
	if r == rules.MoveKey {
		c.keyCollected = true
	}
	c.log.Debug().Stringer("result", r).Msg("move result")
	return c.ctrl.Result(r)
}
