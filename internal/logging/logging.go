// Package logging builds the zerolog loggers the snarl binaries share.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New returns a logger at level writing to w. Terminals get zerolog's
// console format, anything else gets JSON lines.
func New(level zerolog.Level, w io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(level)
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Discard is used while a tcell screen owns the terminal.
func Discard() zerolog.Logger { return zerolog.New(io.Discard).Level(zerolog.Disabled) }
