// snarl-server gathers up to four remote players and adversaries over TCP
// and WebSocket, then runs a game of snarl for them.
//
//	go build -o snarl-server ./cmd/server
//	./snarl-server -clients 2 -wait 30s -ssh-port 2222
//
// Clients connect with snarl-client. With -ssh-port set, anyone can watch:
//
//	ssh -p 2222 localhost
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
	"github.com/rs/zerolog"

	"snarl/assets"
	"snarl/internal/config"
	"snarl/internal/game"
	"snarl/internal/httpapi"
	"snarl/internal/levelfile"
	"snarl/internal/logging"
	"snarl/internal/netplay"
	"snarl/internal/protocol"
	"snarl/internal/render"
	internalssh "snarl/internal/ssh"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "snarl-server: %v\n", err)
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)

	scores, err := run(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	fmt.Println(formatScores(scores))
}

func run(cfg config.Config, log zerolog.Logger) ([]game.Score, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	levels, err := loadLevels(cfg.LevelsPath)
	if err != nil {
		return nil, err
	}
	if cfg.StartLevel > len(levels) {
		return nil, fmt.Errorf("start level %d: only %d levels", cfg.StartLevel, len(levels))
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	observers := make(map[string]game.Observer)
	if cfg.Observe {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("observe: %w", err)
		}
		if err := screen.Init(); err != nil {
			return nil, fmt.Errorf("observe: %w", err)
		}
		defer screen.Fini()
		observers["terminal"] = render.NewTerminalObserver(screen, 150*time.Millisecond, render.EmojiThemes...)
		// The screen owns the terminal from here on.
		log = logging.Discard()
	}

	info := fmt.Sprintf("snarl server, %d levels", len(levels))
	lobby := netplay.NewLobby(info, cfg.Clients, cfg.Wait, cfg.ReadTimeout, log.With().Str("component", "lobby").Logger())

	if cfg.HTTPAddr != "" {
		latest := &httpapi.Latest{}
		observers["http"] = latest
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewRouter(httpapi.Deps{Lobby: lobby, Latest: latest, Log: log.With().Str("component", "http").Logger()}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.SSHPort > 0 {
		sshLog := log.With().Str("component", "ssh").Logger()
		signer, err := internalssh.LoadOrCreateHostKey(cfg.HostKey, sshLog)
		if err != nil {
			return nil, err
		}
		hub := internalssh.NewSpectators(sshLog, render.EmojiThemes...)
		observers["ssh"] = hub
		srv := internalssh.NewServer(fmt.Sprintf(":%d", cfg.SSHPort), signer, hub, sshLog)
		go func() {
			sshLog.Info().Int("port", cfg.SSHPort).Msg("spectators can connect with ssh")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
				sshLog.Error().Err(err).Msg("ssh server")
			}
		}()
		defer srv.Close()
	}

	for name := range observers {
		lobby.Reserve(name)
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	log.Info().Str("addr", ln.Addr().String()).Int("clients", cfg.Clients).Dur("wait", cfg.Wait).Msg("waiting for clients")
	peers, err := lobby.Gather(ctx, ln)
	if err != nil {
		return nil, err
	}

	var results *game.ResultsLog
	if cfg.ResultsLog {
		results, err = game.NewResultsLog("", log)
		if err != nil {
			log.Warn().Err(err).Msg("results log disabled")
		}
	}

	host := &netplay.Host{
		Levels:     levels,
		StartLevel: cfg.StartLevel,
		Encoder:    protocol.Encoder{UseAnchor: cfg.UseAnchor},
		Observers:  observers,
		Rand:       rand.New(rand.NewSource(seed)),
		Results:    results,
		Log:        log,
	}
	return host.Play(ctx, peers)
}

func loadLevels(path string) ([]levelfile.LevelSpec, error) {
	if path == "" {
		return assets.DefaultLevels()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open levels: %w", err)
	}
	defer f.Close()
	levels, err := levelfile.ReadLevels(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return levels, nil
}

func formatScores(scores []game.Score) string {
	var b strings.Builder
	b.WriteString("Final scores:\n")
	for i, s := range scores {
		fmt.Fprintf(&b, "%d. %-16s exits %d  keys %d  ejected %d\n", i+1, s.Name, s.Exits, s.Keys, s.Ejects)
	}
	return b.String()
}
