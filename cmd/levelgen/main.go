// snarl-levelgen writes a levels file of randomly generated levels.
//
//	./snarl-levelgen -n 5 -seed 42 -o levels.json
//	./snarl-server -levels levels.json
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"snarl/internal/generate"
	"snarl/internal/levelfile"
)

func main() {
	n := flag.Int("n", 5, "number of levels")
	seed := flag.Int64("seed", 0, "random seed (0 uses the clock)")
	out := flag.String("o", "-", "output file (- for stdout)")
	straight := flag.Bool("straight", false, "line doors up so corridors bend less")
	preview := flag.Bool("preview", false, "print each level as ASCII to stderr")
	flag.Parse()

	if err := run(*n, *seed, *straight, *preview, *out); err != nil {
		fmt.Fprintf(os.Stderr, "snarl-levelgen: %v\n", err)
		os.Exit(1)
	}
}

func run(n int, seed int64, straight, preview bool, out string) error {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	specs, err := generateLevels(n, seed, straight)
	if err != nil {
		return err
	}
	if preview {
		for i, s := range specs {
			fmt.Fprintf(os.Stderr, "level %d\n%s\n\n", i+1, s.Level.Render())
		}
	}

	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return levelfile.WriteLevels(w, specs)
}

func generateLevels(n int, seed int64, straight bool) ([]levelfile.LevelSpec, error) {
	if n < 1 {
		return nil, fmt.Errorf("need at least one level, got %d", n)
	}
	rng := rand.New(rand.NewSource(seed))
	specs := make([]levelfile.LevelSpec, 0, n)
	for level := 1; level <= n; level++ {
		cfg := generate.DefaultConfig(level, rng)
		if straight {
			cfg.CorridorStyle = generate.CorridorStraight
		}
		res, err := generate.Level(cfg)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", level, err)
		}
		specs = append(specs, res.Spec())
	}
	return specs, nil
}
