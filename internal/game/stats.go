package game

import (
	"cmp"
	"slices"

	"snarl/internal/rules"
)

// PlayerStats counts what one player achieved over a game.
type PlayerStats struct {
	Exits  int `json:"exits"`
	Ejects int `json:"ejects"`
	Keys   int `json:"keys"`
}

// Stats accumulates PlayerStats by player name across levels.
type Stats struct {
	order []string
	byKey map[string]*PlayerStats
}

// NewStats returns stats with a zero entry for each name.
func NewStats(names ...string) *Stats {
	s := &Stats{byKey: make(map[string]*PlayerStats)}
	for _, n := range names {
		s.entry(n)
	}
	return s
}

func (s *Stats) entry(name string) *PlayerStats {
	ps, ok := s.byKey[name]
	if !ok {
		ps = &PlayerStats{}
		s.byKey[name] = ps
		s.order = append(s.order, name)
	}
	return ps
}

// Record counts a Key, Exit or Eject result for name; other results are ignored.
func (s *Stats) Record(name string, r rules.MoveResult) {
	switch r {
	case rules.MoveKey:
		s.entry(name).Keys++
	case rules.MoveExit:
		s.entry(name).Exits++
	case rules.MoveEject:
		s.entry(name).Ejects++
	}
}

// Get returns the stats for name.
func (s *Stats) Get(name string) PlayerStats {
	if ps, ok := s.byKey[name]; ok {
		return *ps
	}
	return PlayerStats{}
}

// Score is one row of the final ranking.
type Score struct {
	Name string `json:"name"`
	PlayerStats
}

// Scores ranks players by exits, then keys, both descending, then by name.
func (s *Stats) Scores() []Score {
	out := make([]Score, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, Score{Name: n, PlayerStats: *s.byKey[n]})
	}
	slices.SortStableFunc(out, func(a, b Score) int {
		if c := cmp.Compare(b.Exits, a.Exits); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Keys, a.Keys); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// LevelSummary reports how a level ended. Key is the name of the player who
// found the key, empty if nobody did.
type LevelSummary struct {
	Key    string
	Exits  []string
	Ejects []string
}
