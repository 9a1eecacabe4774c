// snarl plays a local game in the terminal: computer players race for the key
// and the exit while zombies and ghosts hunt them.
//
//	go run . -players 2 -generate 4
//
// Press q or Esc to quit.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"snarl/assets"
	"snarl/internal/game"
	"snarl/internal/generate"
	"snarl/internal/levelfile"
	"snarl/internal/logging"
	"snarl/internal/netplay"
	"snarl/internal/render"
	"snarl/internal/strategy"
)

var playerNames = []string{"ann", "bob", "cat", "dan"}

func main() {
	players := flag.Int("players", 1, "number of computer players (1-4)")
	levelsPath := flag.String("levels", "", "levels file (default: built-in levels)")
	generated := flag.Int("generate", 0, "play this many generated levels instead")
	start := flag.Int("start", 1, "1-based level to start at")
	seed := flag.Int64("seed", 0, "random seed (0 uses the clock)")
	delay := flag.Duration("delay", 200*time.Millisecond, "pause after each frame")
	ascii := flag.Bool("ascii", false, "draw with ASCII glyphs only")
	flag.Parse()

	if err := run(*players, *levelsPath, *generated, *start, *seed, *delay, *ascii); err != nil {
		fmt.Fprintf(os.Stderr, "snarl: %v\n", err)
		os.Exit(1)
	}
}

func run(players int, levelsPath string, generated, start int, seed int64, delay time.Duration, ascii bool) error {
	if players < 1 || players > len(playerNames) {
		return fmt.Errorf("players must be between 1 and %d", len(playerNames))
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	levels, err := chooseLevels(levelsPath, generated, rng)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	themes := render.EmojiThemes
	if ascii {
		themes = []render.Theme{render.ASCII}
	}
	obs := render.NewTerminalObserver(screen, delay, themes...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventResize:
				screen.Sync()
				obs.Redraw()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					cancel()
					return
				}
			}
		}
	}()

	ctrls := make(map[string]game.Controller, players)
	for _, name := range playerNames[:players] {
		ctrls[name] = game.Local(strategy.NewSeeker(rand.New(rand.NewSource(rng.Int63()))))
	}
	host := &netplay.Host{
		Levels:     levels,
		StartLevel: start,
		Players:    ctrls,
		Observers:  map[string]game.Observer{"terminal": obs},
		Rand:       rng,
		Log:        logging.Discard(),
	}
	scores, err := host.Play(ctx, nil)
	if err == nil {
		// Leave the final frame up for a moment unless the player quit.
		select {
		case <-ctx.Done():
		case <-time.After(3 * time.Second):
		}
	}
	screen.Fini()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	for i, s := range scores {
		fmt.Printf("%d. %s: exits %d, keys %d, ejected %d\n", i+1, s.Name, s.Exits, s.Keys, s.Ejects)
	}
	return nil
}

func chooseLevels(path string, generated int, rng *rand.Rand) ([]levelfile.LevelSpec, error) {
	switch {
	case generated > 0:
		specs := make([]levelfile.LevelSpec, 0, generated)
		for level := 1; level <= generated; level++ {
			res, err := generate.Level(generate.DefaultConfig(level, rng))
			if err != nil {
				return nil, err
			}
			specs = append(specs, res.Spec())
		}
		return specs, nil
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return levelfile.ReadLevels(f)
	default:
		return assets.DefaultLevels()
	}
}
