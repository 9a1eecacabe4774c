// Package netplay carries the game protocol over TCP and WebSocket
// connections: the server-side lobby and remote controllers, and the client
// loop that drives a local strategy against a server.
package netplay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"snarl/internal/protocol"
)

// maxLine bounds a single newline-framed message.
const maxLine = 1 << 20

// Conn is a framed, bidirectional message stream. Each Send writes one JSON
// value; each Receive reads one.
type Conn interface {
	Send(v any) error
	Receive() (protocol.Frame, error)
	RemoteAddr() string
	Close() error
}

// ─── TCP ─────────────────────────────────────────────────────────────────────

// lineConn frames JSON values with newlines over a stream connection.
type lineConn struct {
	c           net.Conn
	r           *bufio.Reader
	wmu         sync.Mutex
	enc         *json.Encoder
	readTimeout time.Duration
}

// NewLineConn wraps c. A positive readTimeout bounds every Receive.
func NewLineConn(c net.Conn, readTimeout time.Duration) Conn {
	return &lineConn{c: c, r: bufio.NewReaderSize(c, 4096), enc: json.NewEncoder(c), readTimeout: readTimeout}
}

// DialTCP connects to a newline-framed server.
func DialTCP(ctx context.Context, addr string) (Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewLineConn(c, 0), nil
}

func (l *lineConn) Send(v any) error {
	l.wmu.Lock()
	defer l.wmu.Unlock()
	// Encode appends the newline.
	if err := l.enc.Encode(v); err != nil {
		return fmt.Errorf("send to %s: %w", l.RemoteAddr(), err)
	}
	return nil
}

func (l *lineConn) Receive() (protocol.Frame, error) {
	if l.readTimeout > 0 {
		_ = l.c.SetReadDeadline(time.Now().Add(l.readTimeout))
	}
	var line []byte
	for {
		chunk, isPrefix, err := l.r.ReadLine()
		if err != nil {
			return protocol.Frame{}, fmt.Errorf("receive from %s: %w", l.RemoteAddr(), err)
		}
		line = append(line, chunk...)
		if len(line) > maxLine {
			return protocol.Frame{}, fmt.Errorf("receive from %s: %w: line longer than %d bytes", l.RemoteAddr(), protocol.ErrMalformed, maxLine)
		}
		if !isPrefix {
			if len(line) == 0 {
				continue
			}
			return protocol.Decode(line)
		}
	}
}

func (l *lineConn) RemoteAddr() string { return l.c.RemoteAddr().String() }

func (l *lineConn) Close() error { return l.c.Close() }

// ─── WebSocket ───────────────────────────────────────────────────────────────

// wsConn sends each JSON value as one text message.
type wsConn struct {
	ws          *websocket.Conn
	wmu         sync.Mutex
	readTimeout time.Duration
}

// NewWSConn wraps an established WebSocket. A positive readTimeout bounds
// every Receive.
func NewWSConn(ws *websocket.Conn, readTimeout time.Duration) Conn {
	ws.SetReadLimit(maxLine)
	return &wsConn{ws: ws, readTimeout: readTimeout}
}

// DialWS connects to a WebSocket endpoint such as ws://host:8080/ws.
func DialWS(ctx context.Context, url string) (Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewWSConn(ws, 0), nil
}

func (w *wsConn) Send(v any) error {
	w.wmu.Lock()
	defer w.wmu.Unlock()
	if err := w.ws.WriteJSON(v); err != nil {
		return fmt.Errorf("send to %s: %w", w.RemoteAddr(), err)
	}
	return nil
}

func (w *wsConn) Receive() (protocol.Frame, error) {
	if w.readTimeout > 0 {
		_ = w.ws.SetReadDeadline(time.Now().Add(w.readTimeout))
	}
	_, data, err := w.ws.ReadMessage()
	if err != nil {
		return protocol.Frame{}, fmt.Errorf("receive from %s: %w", w.RemoteAddr(), err)
	}
	return protocol.Decode(data)
}

func (w *wsConn) RemoteAddr() string { return w.ws.RemoteAddr().String() }

func (w *wsConn) Close() error {
	w.wmu.Lock()
	_ = w.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	w.wmu.Unlock()
	return w.ws.Close()
}
