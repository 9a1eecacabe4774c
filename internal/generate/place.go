package generate

import (
	"snarl/internal/gamemap"
)

// placeObjects puts the exit in the last room (bottom-right cell) and the
// key in another room, avoiding the first room when there are three or more.
func placeObjects(lvl *gamemap.Level, cfg *Config) (key, exit gamemap.Point) {
	rng := cfg.Rand
	rooms := lvl.Rooms()
	last := len(rooms) - 1

	var candidates []int
	for i := range last {
		if i == 0 && last > 1 {
			continue
		}
		candidates = append(candidates, i)
	}
	keyRoom := candidates[rng.Intn(len(candidates))]

	pick := func(r *gamemap.Room) gamemap.Point {
		pts := r.EmptyPoints()
		return pts[rng.Intn(len(pts))]
	}
	return pick(rooms[keyRoom]), pick(rooms[last])
}
