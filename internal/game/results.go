package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// GameRecord is one line of the results log.
type GameRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Levels    int       `json:"levels"`
	Won       bool      `json:"won"`
	Scores    []Score   `json:"scores"`
}

// ResultsLog appends finished games to results.jsonl. Write failures are
// logged and otherwise ignored so a disk problem never stops a game.
type ResultsLog struct {
	path string
	log  zerolog.Logger
}

// NewResultsLog writes under dir, or the XDG data directory when dir is empty.
func NewResultsLog(dir string, log zerolog.Logger) (*ResultsLog, error) {
	if dir == "" {
		d, err := resultsDir()
		if err != nil {
			return nil, fmt.Errorf("results dir: %w", err)
		}
		dir = d
	}
	return &ResultsLog{path: filepath.Join(dir, "results.jsonl"), log: log}, nil
}

// Path is the file records are appended to.
func (r *ResultsLog) Path() string { return r.path }

// Append writes rec as a single JSON line.
func (r *ResultsLog) Append(rec GameRecord) {
	if err := r.append(rec); err != nil {
		r.log.Warn().Err(err).Str("path", r.path).Msg("write results log")
	}
}

func (r *ResultsLog) append(rec GameRecord) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// resultsDir follows the XDG Base Directory spec: $XDG_DATA_HOME/snarl,
// defaulting to ~/.local/share/snarl.
func resultsDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "snarl"), nil
}
