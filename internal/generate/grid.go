package generate

import (
	"fmt"

	"snarl/internal/gamemap"
	"snarl/internal/levelfile"
)

// Result is a generated level with its key and exit.
type Result struct {
	Level     *gamemap.Level
	Key, Exit gamemap.Point
}

// Spec returns r in the form the level file codec and the game builder use.
func (r *Result) Spec() levelfile.LevelSpec {
	key, exit := r.Key, r.Exit
	return levelfile.LevelSpec{Level: r.Level, Key: &key, Exit: &exit}
}

// cell is one grid slot and the room carved inside it.
type cell struct {
	col, row int
	rect     gamemap.Rect
	doors    []gamemap.Point // local to rect
	walls    []gamemap.Point
}

func (c *cell) origin() gamemap.Point { return gamemap.Pt(c.rect.X1, c.rect.Y1) }

func (c *cell) size() gamemap.Point {
	return gamemap.Pt(c.rect.X2-c.rect.X1+1, c.rect.Y2-c.rect.Y1+1)
}

func (c *cell) addDoor(p gamemap.Point) { c.doors = append(c.doors, p.Sub(c.origin())) }

// edge joins cell a to cell b, which lies to its right or below it.
type edge struct {
	a, b       int
	horizontal bool
}

// Level generates one level from cfg.
func Level(cfg *Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cells := carveRooms(cfg)
	edges := connect(cfg)

	corridors := make([]*gamemap.Corridor, 0, len(edges))
	for _, e := range edges {
		c, err := carveCorridor(cells[e.a], cells[e.b], e.horizontal, cfg)
		if err != nil {
			return nil, err
		}
		corridors = append(corridors, c)
	}

	rooms := make([]*gamemap.Room, 0, len(cells))
	for _, c := range cells {
		r, err := gamemap.BuildRoom(c.origin(), c.size(), c.walls, c.doors)
		if err != nil {
			return nil, fmt.Errorf("room in cell (%d, %d): %w", c.col, c.row, err)
		}
		rooms = append(rooms, r)
	}

	lvl, err := gamemap.NewLevel(rooms, corridors)
	if err != nil {
		return nil, err
	}
	key, exit := placeObjects(lvl, cfg)
	return &Result{Level: lvl, Key: key, Exit: exit}, nil
}

// carveRooms sizes and positions one room per cell, row-major.
func carveRooms(cfg *Config) []*cell {
	rng := cfg.Rand
	m := cfg.Margin
	cells := make([]*cell, 0, cfg.Cols*cfg.Rows)
	for row := range cfg.Rows {
		for col := range cfg.Cols {
			availW := cfg.CellWidth - 2*m
			availH := cfg.CellHeight - 2*m
			w := cfg.MinRoomSize + rng.Intn(availW-cfg.MinRoomSize+1)
			h := cfg.MinRoomSize + rng.Intn(availH-cfg.MinRoomSize+1)
			x := col*cfg.CellWidth + m + rng.Intn(availW-w+1)
			y := row*cfg.CellHeight + m + rng.Intn(availH-h+1)
			c := &cell{col: col, row: row, rect: gamemap.Rect{X1: x, Y1: y, X2: x + w - 1, Y2: y + h - 1}}

			// A pillar off the first interior ring keeps the room connected.
			if w >= 5 && h >= 5 && rng.Float64() < cfg.PillarChance {
				c.walls = append(c.walls, gamemap.Pt(2+rng.Intn(w-4), 2+rng.Intn(h-4)))
			}
			cells = append(cells, c)
		}
	}
	return cells
}

// connect returns a random spanning tree over the grid plus, with
// cfg.ExtraCorridors probability each, the neighbour pairs it left out.
func connect(cfg *Config) []edge {
	rng := cfg.Rand
	n := cfg.Cols * cfg.Rows
	index := func(col, row int) int { return row*cfg.Cols + col }

	visited := make([]bool, n)
	used := make(map[edge]bool)
	var out []edge

	stack := []int{rng.Intn(n)}
	visited[stack[0]] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		col, row := cur%cfg.Cols, cur/cfg.Cols
		var next []edge
		if col > 0 && !visited[index(col-1, row)] {
			next = append(next, edge{index(col-1, row), cur, true})
		}
		if col+1 < cfg.Cols && !visited[index(col+1, row)] {
			next = append(next, edge{cur, index(col+1, row), true})
		}
		if row > 0 && !visited[index(col, row-1)] {
			next = append(next, edge{index(col, row-1), cur, false})
		}
		if row+1 < cfg.Rows && !visited[index(col, row+1)] {
			next = append(next, edge{cur, index(col, row+1), false})
		}
		if len(next) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		e := next[rng.Intn(len(next))]
		other := e.a
		if other == cur {
			other = e.b
		}
		visited[other] = true
		used[e] = true
		out = append(out, e)
		stack = append(stack, other)
	}

	for row := range cfg.Rows {
		for col := range cfg.Cols {
			cur := index(col, row)
			var extra []edge
			if col+1 < cfg.Cols {
				extra = append(extra, edge{cur, index(col+1, row), true})
			}
			if row+1 < cfg.Rows {
				extra = append(extra, edge{cur, index(col, row+1), false})
			}
			for _, e := range extra {
				if !used[e] && rng.Float64() < cfg.ExtraCorridors {
					used[e] = true
					out = append(out, e)
				}
			}
		}
	}
	return out
}
