// Package httpapi serves the HTTP side of a snarl server: a health check,
// the latest observer snapshot and the WebSocket entrance to the lobby.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"snarl/internal/netplay"
)

// Deps is what the router serves. A nil Lobby disables /ws and a nil Latest
// makes /state always 404.
type Deps struct {
	Lobby   *netplay.Lobby
	Latest  *Latest
	Timeout time.Duration
	Log     zerolog.Logger
}

var upgrader = websocket.Upgrader{
	// Clients are game programs, not browsers on another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewRouter builds the chi router.
func NewRouter(d Deps) chi.Router {
	if d.Timeout == 0 {
		d.Timeout = 10 * time.Second
	}
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(d.Log))
	r.Use(chimw.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(d.Timeout))
		r.Use(jsonContentType)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/state", func(w http.ResponseWriter, r *http.Request) {
			if d.Latest == nil {
				notFound(w)
				return
			}
			gs, ok := d.Latest.Snapshot()
			if !ok {
				notFound(w)
				return
			}
			_ = json.NewEncoder(w).Encode(viewOf(gs))
		})
	})

	// Upgraded connections outlive the request, so /ws has no timeout.
	if d.Lobby != nil {
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				d.Log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
				return
			}
			c := netplay.NewWSConn(ws, d.Lobby.ReadTimeout())
			if err := d.Lobby.Offer(c); err != nil {
				if errors.Is(err, netplay.ErrLobbyClosed) {
					d.Log.Info().Str("remote", r.RemoteAddr).Msg("rejected: lobby closed")
				}
				_ = c.Close()
			}
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) { notFound(w) })
	return r
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"not_found"}`))
}

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request at debug level.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("http request")
		})
	}
}
