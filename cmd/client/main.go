// snarl-client joins a snarl server and plays one actor with the built-in
// strategy for its kind.
//
//	./snarl-client -name ann
//	./snarl-client -kind ghost -url ws://localhost:8080/ws
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"snarl/internal/actor"
	"snarl/internal/config"
	"snarl/internal/game"
	"snarl/internal/logging"
	"snarl/internal/netplay"
	"snarl/internal/rules"
	"snarl/internal/state"
	"snarl/internal/strategy"
)

func main() {
	cfg, err := config.LoadClient(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "snarl-client: %v\n", err)
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("client stopped")
		os.Exit(1)
	}
}

func run(cfg config.ClientConfig, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kind, err := actor.ParseKind(cfg.Kind)
	if err != nil {
		return err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	var conn netplay.Conn
	if cfg.URL != "" {
		conn, err = netplay.DialWS(dialCtx, cfg.URL)
	} else {
		conn, err = netplay.DialTCP(dialCtx, cfg.Addr())
	}
	if err != nil {
		return err
	}

	rep := &reporter{Strategy: strategy.ForKind(kind, rand.New(rand.NewSource(seed))), log: log}
	client, err := netplay.NewClient(conn, cfg.Name, kind, rep, log)
	if err != nil {
		_ = conn.Close()
		return err
	}
	return client.Run(ctx)
}

// reporter plays a strategy and logs what the server tells it.
type reporter struct {
	game.Strategy
	log zerolog.Logger
}

func (r *reporter) StartLevel(level int) error {
	r.log.Info().Int("level", level).Msg("level started")
	return nil
}

func (r *reporter) Update(s *state.ActorState) error {
	r.log.Debug().Stringer("pos", s.Self.Pos).Bool("key", s.KeyCollected).Msg("update")
	return nil
}

func (r *reporter) Result(res rules.MoveResult) error {
	r.log.Debug().Stringer("result", res).Msg("move")
	return nil
}

func (r *reporter) EndLevel(s game.LevelSummary) error {
	r.log.Info().Str("key", s.Key).Strs("exits", s.Exits).Strs("ejects", s.Ejects).Msg("level over")
	return nil
}

func (r *reporter) EndGame(scores []game.Score) error {
	var b strings.Builder
	for i, s := range scores {
		fmt.Fprintf(&b, "%d. %s (exits %d, keys %d, ejected %d)\n", i+1, s.Name, s.Exits, s.Keys, s.Ejects)
	}
	fmt.Print(b.String())
	return nil
}
