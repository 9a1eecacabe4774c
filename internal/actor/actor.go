package actor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"snarl/internal/gamemap"
)

// ErrInvalidActor is returned when an actor cannot be constructed.
var ErrInvalidActor = errors.New("invalid actor")

// Kind tags the actor variant. Interaction rules dispatch on it.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindZombie
	KindGhost
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindZombie:
		return "zombie"
	case KindGhost:
		return "ghost"
	default:
		return "unknown"
	}
}

// Title is the capitalised kind used in turn messages ("Zombie z1 moved").
func (k Kind) Title() string {
	s := k.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// IsPlayer reports whether k is the player variant; every other kind is an adversary.
func (k Kind) IsPlayer() bool { return k == KindPlayer }

// ParseKind maps a wire/type name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player":
		return KindPlayer, nil
	case "zombie":
		return KindZombie, nil
	case "ghost":
		return KindGhost, nil
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidActor, s)
}

// Capabilities is the parameter record that distinguishes actor variants.
type Capabilities struct {
	Glyph       rune
	MoveRange   int
	ViewRadius  int // -1 is unlimited
	Traversable mapset.Set[gamemap.TileKind]
}

// Unlimited view radius.
const Unlimited = -1

// CapabilitiesOf returns the default capability record for k.
func CapabilitiesOf(k Kind) Capabilities {
	switch k {
	case KindZombie:
		return Capabilities{
			Glyph:       'Z',
			MoveRange:   1,
			ViewRadius:  Unlimited,
			Traversable: gamemap.Kinds(gamemap.TileEmpty, gamemap.TileKey, gamemap.TileExit),
		}
	case KindGhost:
		return Capabilities{
			Glyph:      'G',
			MoveRange:  1,
			ViewRadius: Unlimited,
			Traversable: gamemap.Kinds(gamemap.TileEmpty, gamemap.TileCorridor, gamemap.TileDoor,
				gamemap.TileWall, gamemap.TileKey, gamemap.TileExit),
		}
	default:
		return Capabilities{
			Glyph:      'P',
			MoveRange:  2,
			ViewRadius: 2,
			Traversable: gamemap.Kinds(gamemap.TileEmpty, gamemap.TileCorridor, gamemap.TileDoor,
				gamemap.TileKey, gamemap.TileExit),
		}
	}
}

// Actor is a player or adversary taking part in a level.
type Actor struct {
	Name string
	Kind Kind
	Capabilities

	// Pos is only meaningful while Placed is true.
	Pos    gamemap.Point
	Placed bool

	combat     bool
	HitPoints  int
	LifePoints int
	maxLife    int

	Expelled     bool
	Exited       bool
	Disconnected bool
	HasKey       bool
}

// Option customises an actor at construction.
type Option func(*Actor)

// WithCombat enables combat: hit is dealt per attack, life is held and
// restored on every Reset.
func WithCombat(hit, life int) Option {
	return func(a *Actor) {
		a.combat = true
		a.HitPoints = hit
		a.LifePoints = life
		a.maxLife = life
	}
}

// WithGlyph overrides the display glyph.
func WithGlyph(r rune) Option {
	return func(a *Actor) { a.Glyph = r }
}

// WithCapabilities replaces the default capability record for the kind.
func WithCapabilities(c Capabilities) Option {
	return func(a *Actor) { a.Capabilities = c }
}

// New creates an actor of kind k. Names must be non-blank and the move range positive.
func New(k Kind, name string, opts ...Option) (*Actor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: %s name cannot be empty", ErrInvalidActor, k)
	}
	a := &Actor{Name: name, Kind: k, Capabilities: CapabilitiesOf(k)}
	for _, opt := range opts {
		opt(a)
	}
	if a.MoveRange <= 0 {
		return nil, fmt.Errorf("%w: %s %s move range must be positive, got %d", ErrInvalidActor, k, name, a.MoveRange)
	}
	if a.combat && a.LifePoints <= 0 {
		return nil, fmt.Errorf("%w: %s %s life points must be positive, got %d", ErrInvalidActor, k, name, a.LifePoints)
	}
	return a, nil
}

// NewPlayer creates a player.
func NewPlayer(name string, opts ...Option) (*Actor, error) { return New(KindPlayer, name, opts...) }

// NewZombie creates a zombie adversary.
func NewZombie(name string, opts ...Option) (*Actor, error) { return New(KindZombie, name, opts...) }

// NewGhost creates a ghost adversary.
func NewGhost(name string, opts ...Option) (*Actor, error) { return New(KindGhost, name, opts...) }

// IsPlayer reports whether the actor is a player.
func (a *Actor) IsPlayer() bool { return a.Kind.IsPlayer() }

// Active reports whether the actor still takes turns in the level.
func (a *Actor) Active() bool { return !a.Expelled && !a.Exited }

// OnBoard reports whether the actor is drawn on the grid.
func (a *Actor) OnBoard() bool { return a.Placed && a.Active() && !a.Disconnected }

// HasCombat reports whether the actor carries hit and life points.
func (a *Actor) HasCombat() bool { return a.combat }

// CanFight reports whether a and b can resolve a collision by attacking.
func (a *Actor) CanFight(b *Actor) bool { return a.combat && b.combat }

// MaxLife is the life point total restored on Reset.
func (a *Actor) MaxLife() int { return a.maxLife }

// MoveTo places the actor at p.
func (a *Actor) MoveTo(p gamemap.Point) {
	a.Pos = p
	a.Placed = true
}

// Reset prepares the actor for a new level: unplaced, flags cleared, life restored.
func (a *Actor) Reset() {
	a.Pos = gamemap.Point{}
	a.Placed = false
	a.Expelled = false
	a.Exited = false
	a.HasKey = false
	a.LifePoints = a.maxLife
}

// Censored returns a copy that hides the actor's position.
func (a *Actor) Censored() Actor {
	c := *a
	c.Pos = gamemap.Point{}
	c.Placed = false
	return c
}

// Occupant is the cell handle drawn where the actor stands.
func (a *Actor) Occupant() *gamemap.Occupant {
	return &gamemap.Occupant{Name: a.Name, Glyph: a.Glyph, Player: a.IsPlayer()}
}

func (a *Actor) String() string { return a.Kind.Title() + " " + a.Name }
