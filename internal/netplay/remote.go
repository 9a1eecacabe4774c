package netplay

import (
	"fmt"

	"github.com/rs/zerolog"

	"snarl/internal/game"
	"snarl/internal/gamemap"
	"snarl/internal/protocol"
	"snarl/internal/rules"
	"snarl/internal/state"
)

// Remote is a game.Controller for an actor on the other end of a Conn. Every
// transport or protocol failure is reported as game.ErrDisconnected, and the
// connection is not used again afterwards.
type Remote struct {
	conn Conn
	enc  protocol.Encoder
	log  zerolog.Logger
	dead error
}

// NewRemote wraps an already greeted connection.
func NewRemote(conn Conn, enc protocol.Encoder, log zerolog.Logger) *Remote {
	return &Remote{conn: conn, enc: enc, log: log}
}

func (r *Remote) fail(err error) error {
	if r.dead == nil {
		r.dead = fmt.Errorf("%w: %w", game.ErrDisconnected, err)
		r.log.Debug().Err(err).Str("remote", r.conn.RemoteAddr()).Msg("connection lost")
		_ = r.conn.Close()
	}
	return r.dead
}

func (r *Remote) send(v any) error {
	if r.dead != nil {
		return r.dead
	}
	if err := r.conn.Send(v); err != nil {
		return r.fail(err)
	}
	return nil
}

// RequestMove sends "move" and waits for the reply. Adversaries receive no
// broadcasts, so they are sent their view first.
func (r *Remote) RequestMove(s *state.ActorState) (gamemap.Point, error) {
	if !s.Self.IsPlayer() {
		if err := r.send(r.enc.PlayerUpdate(s)); err != nil {
			return gamemap.Point{}, err
		}
	}
	if err := r.send(protocol.RequestMove); err != nil {
		return gamemap.Point{}, err
	}
	f, err := r.conn.Receive()
	if err != nil {
		return gamemap.Point{}, r.fail(err)
	}
	var mv protocol.MoveMessage
	if f.Type != protocol.TypeMove {
		return gamemap.Point{}, r.fail(fmt.Errorf("%w: expected a move, got %q%s", protocol.ErrMalformed, f.Type, f.Text))
	}
	if err := f.Into(&mv); err != nil {
		return gamemap.Point{}, r.fail(err)
	}
	return mv.To.Point(), nil
}

func (r *Remote) StartLevel(level int) error { return r.send(protocol.NewStartLevel(level)) }

// Update sends the player's view. The final view of a level is replaced by
// the end-level message.
func (r *Remote) Update(s *state.ActorState) error {
	if s.LevelOver {
		return nil
	}
	return r.send(r.enc.PlayerUpdate(s))
}

func (r *Remote) Result(res rules.MoveResult) error { return r.send(res.String()) }

func (r *Remote) EndLevel(s game.LevelSummary) error { return r.send(protocol.EndLevelOf(s)) }

func (r *Remote) EndGame(scores []game.Score) error { return r.send(protocol.EndGameOf(scores)) }

// Close drops the connection.
func (r *Remote) Close() error { return r.conn.Close() }
