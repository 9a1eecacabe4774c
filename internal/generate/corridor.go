package generate

import (
	"snarl/internal/gamemap"
)

// carveCorridor adds facing doors to a and b and returns the corridor between
// them. Bends happen on the grid line between the two cells, which no room
// reaches, so corridors never cut through a room or through each other.
func carveCorridor(a, b *cell, horizontal bool, cfg *Config) (*gamemap.Corridor, error) {
	if horizontal {
		ya, yb := doorOffsets(a.rect.Y1, a.rect.Y2, b.rect.Y1, b.rect.Y2, cfg)
		from, to := gamemap.Pt(a.rect.X2, ya), gamemap.Pt(b.rect.X1, yb)
		a.addDoor(from)
		b.addDoor(to)
		if ya == yb {
			return gamemap.NewCorridor([]gamemap.Point{from, to})
		}
		mx := (a.col + 1) * cfg.CellWidth
		return gamemap.NewCorridor([]gamemap.Point{from, gamemap.Pt(mx, ya), gamemap.Pt(mx, yb), to})
	}

	xa, xb := doorOffsets(a.rect.X1, a.rect.X2, b.rect.X1, b.rect.X2, cfg)
	from, to := gamemap.Pt(xa, a.rect.Y2), gamemap.Pt(xb, b.rect.Y1)
	a.addDoor(from)
	b.addDoor(to)
	if xa == xb {
		return gamemap.NewCorridor([]gamemap.Point{from, to})
	}
	my := (a.row + 1) * cfg.CellHeight
	return gamemap.NewCorridor([]gamemap.Point{from, gamemap.Pt(xa, my), gamemap.Pt(xb, my), to})
}

// doorOffsets picks a non-corner coordinate on each of two facing walls that
// span lo1..hi1 and lo2..hi2.
func doorOffsets(lo1, hi1, lo2, hi2 int, cfg *Config) (int, int) {
	rng := cfg.Rand
	if cfg.CorridorStyle == CorridorStraight {
		lo, hi := max(lo1, lo2)+1, min(hi1, hi2)-1
		if lo <= hi {
			v := lo + rng.Intn(hi-lo+1)
			return v, v
		}
	}
	return lo1 + 1 + rng.Intn(hi1-lo1-1), lo2 + 1 + rng.Intn(hi2-lo2-1)
}
