// Package protocol defines the JSON messages exchanged between the game
// server and remote actors, and converts game snapshots to and from them.
package protocol

import (
	"errors"
	"strings"

	"snarl/internal/game"
	"snarl/internal/gamemap"
)

// ErrMalformed is returned for messages that cannot be decoded.
var ErrMalformed = errors.New("malformed message")

// Message type tags.
const (
	TypeWelcome      = "welcome"
	TypeStartLevel   = "start-level"
	TypePlayerUpdate = "player-update"
	TypeMove         = "move"
	TypeEndLevel     = "end-level"
	TypeEndGame      = "end-game"
	TypePlayerScore  = "player-score"
)

// Bare string requests sent by the server.
const (
	RequestName = "name"
	RequestMove = "move"
)

// ─── Tile codes ──────────────────────────────────────────────────────────────

// Layout cell codes. Everything an actor can stand on shares CodeOpen.
const (
	CodeWall = 0
	CodeOpen = 1
	CodeDoor = 2
)

// TileCode maps a tile kind to its layout code.
func TileCode(k gamemap.TileKind) int {
	switch k {
	case gamemap.TileEmpty, gamemap.TileCorridor, gamemap.TileKey, gamemap.TileExit:
		return CodeOpen
	case gamemap.TileDoor:
		return CodeDoor
	default:
		return CodeWall
	}
}

// CodeTile is the inverse of TileCode. Open cells come back as Empty.
func CodeTile(code int) (gamemap.TileKind, bool) {
	switch code {
	case CodeWall:
		return gamemap.TileWall, true
	case CodeOpen:
		return gamemap.TileEmpty, true
	case CodeDoor:
		return gamemap.TileDoor, true
	}
	return gamemap.TileVoid, false
}

// Pos is a coordinate on the wire: [row, col].
type Pos [2]int

// PosOf converts a point to its wire form.
func PosOf(p gamemap.Point) Pos { return Pos{p.Y, p.X} }

// Point converts back to a grid point.
func (p Pos) Point() gamemap.Point { return gamemap.Pt(p[1], p[0]) }

// ─── Messages ────────────────────────────────────────────────────────────────

type WelcomeMessage struct {
	Type string `json:"type"`
	Info string `json:"info"`
}

func NewWelcome(info string) WelcomeMessage {
	return WelcomeMessage{Type: TypeWelcome, Info: info}
}

type StartLevelMessage struct {
	Type  string `json:"type"`
	Level int    `json:"level"`
}

func NewStartLevel(level int) StartLevelMessage {
	return StartLevelMessage{Type: TypeStartLevel, Level: level}
}

// ObjectRef places a key or exit.
type ObjectRef struct {
	Type     string `json:"type"`
	Position Pos    `json:"position"`
}

// ActorRef places another actor the receiver can see.
type ActorRef struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Position Pos    `json:"position"`
}

// PlayerUpdateMessage is an actor's view after a turn. Layout holds tile
// codes; an occupied cell carries the code of the tile under the actor.
// Message is the turn log joined with commas, null when nothing happened.
type PlayerUpdateMessage struct {
	Type     string      `json:"type"`
	Layout   [][]int     `json:"layout"`
	Position Pos         `json:"position"`
	Objects  []ObjectRef `json:"objects"`
	Actors   []ActorRef  `json:"actors"`
	Message  *string     `json:"message"`
	Health   *int        `json:"health,omitempty"`
	Anchor   *Pos        `json:"anchor,omitempty"`
}

// Messages splits Message back into the turn log.
func (m PlayerUpdateMessage) Messages() []string {
	if m.Message == nil || *m.Message == "" {
		return nil
	}
	return strings.Split(*m.Message, ",")
}

func joinMessages(msgs []string) *string {
	if len(msgs) == 0 {
		return nil
	}
	s := strings.Join(msgs, ",")
	return &s
}

// MoveMessage is a client's answer to RequestMove.
type MoveMessage struct {
	Type string `json:"type"`
	To   Pos    `json:"to"`
}

func NewMove(to gamemap.Point) MoveMessage {
	return MoveMessage{Type: TypeMove, To: PosOf(to)}
}

type EndLevelMessage struct {
	Type   string   `json:"type"`
	Key    *string  `json:"key"`
	Exits  []string `json:"exits"`
	Ejects []string `json:"ejects"`
}

// EndLevelOf encodes a level summary. Name lists are never null.
func EndLevelOf(s game.LevelSummary) EndLevelMessage {
	m := EndLevelMessage{
		Type:   TypeEndLevel,
		Exits:  append([]string{}, s.Exits...),
		Ejects: append([]string{}, s.Ejects...),
	}
	if s.Key != "" {
		key := s.Key
		m.Key = &key
	}
	return m
}

// Summary decodes the message.
func (m EndLevelMessage) Summary() game.LevelSummary {
	s := game.LevelSummary{Exits: m.Exits, Ejects: m.Ejects}
	if m.Key != nil {
		s.Key = *m.Key
	}
	return s
}

type PlayerScore struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Exits  int    `json:"exits"`
	Ejects int    `json:"ejects"`
	Keys   int    `json:"keys"`
}

type EndGameMessage struct {
	Type   string        `json:"type"`
	Scores []PlayerScore `json:"scores"`
}

// EndGameOf encodes the final ranking, keeping its order.
func EndGameOf(scores []game.Score) EndGameMessage {
	m := EndGameMessage{Type: TypeEndGame, Scores: make([]PlayerScore, 0, len(scores))}
	for _, s := range scores {
		m.Scores = append(m.Scores, PlayerScore{
			Type:   TypePlayerScore,
			Name:   s.Name,
			Exits:  s.Exits,
			Ejects: s.Ejects,
			Keys:   s.Keys,
		})
	}
	return m
}

// Ranking decodes the scores.
func (m EndGameMessage) Ranking() []game.Score {
	out := make([]game.Score, 0, len(m.Scores))
	for _, s := range m.Scores {
		out = append(out, game.Score{
			Name:        s.Name,
			PlayerStats: game.PlayerStats{Exits: s.Exits, Ejects: s.Ejects, Keys: s.Keys},
		})
	}
	return out
}
