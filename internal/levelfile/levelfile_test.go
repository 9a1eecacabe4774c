package levelfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snarl/internal/game"
	"snarl/internal/gamemap"
	"snarl/internal/strategy"
)

const twoRooms = `{
  "type": "level",
  "rooms": [
    {"type": "room", "origin": [0, 0], "bounds": {"rows": 5, "columns": 5},
     "layout": [[0,0,0,0,0],[0,1,1,1,0],[0,1,1,1,2],[0,1,1,1,0],[0,0,0,0,0]]},
    {"type": "room", "origin": [1, 10], "bounds": {"rows": 4, "columns": 4},
     "layout": [[0,0,0,0],[2,1,1,0],[0,1,1,0],[0,0,0,0]]}
  ],
  "hallways": [{"type": "hallway", "from": [2, 4], "to": [2, 10], "waypoints": []}],
  "objects": [{"type": "key", "position": [1, 3]}, {"type": "exit", "position": [3, 1]}]
}`

var twoRoomsRender = strings.Join([]string{
	"# # # # #                  ",
	"# . . . # # # # # # # # # #",
	"# . . . + : : : : : + . . #",
	"# . . . # # # # # # # . . #",
	"# # # # #           # # # #",
}, "\n")

func TestReadLevel(t *testing.T) {
	s, err := ReadLevel(strings.NewReader(twoRooms))
	require.NoError(t, err)
	assert.Equal(t, twoRoomsRender, s.Level.Render())
	require.NotNil(t, s.Key)
	require.NotNil(t, s.Exit)
	assert.Equal(t, gamemap.Pt(3, 1), *s.Key)
	assert.Equal(t, gamemap.Pt(1, 3), *s.Exit)
}

func TestLevelsRoundTrip(t *testing.T) {
	specs, err := ReadLevels(strings.NewReader("2\n" + twoRooms + "\n" + twoRooms))
	require.NoError(t, err)
	require.Len(t, specs, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteLevels(&buf, specs))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2", lines[0])
	assert.JSONEq(t, twoRooms, lines[1])

	again, err := ReadLevels(&buf)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, twoRoomsRender, again[1].Level.Render())
	assert.Equal(t, *specs[1].Key, *again[1].Key)
}

func TestReadLevelRejects(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"not json", `{"type": "level",`, ErrMalformed},
		{"wrong type", `{"type": "room"}`, ErrMalformed},
		{"bounds disagree", strings.Replace(twoRooms, `"rows": 5`, `"rows": 6`, 1), ErrMalformed},
		{"unknown code", strings.Replace(twoRooms, `[0,1,1,1,2]`, `[0,1,1,1,9]`, 1), ErrMalformed},
		{"two keys", strings.Replace(twoRooms, `"type": "exit"`, `"type": "key"`, 1), ErrMalformed},
		{"unknown object", strings.Replace(twoRooms, `"type": "exit"`, `"type": "chest"`, 1), ErrMalformed},
		{"room without a door", strings.Replace(twoRooms, `[2,1,1,0]`, `[0,1,1,0]`, 1), gamemap.ErrInvalidRoom},
		{"hallway misses door", strings.Replace(twoRooms, `"to": [2, 10]`, `"to": [2, 9]`, 1), gamemap.ErrInvalidLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadLevel(strings.NewReader(tc.input))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReadLevelsRejectsCount(t *testing.T) {
	_, err := ReadLevels(strings.NewReader("0"))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = ReadLevels(strings.NewReader("2\n" + twoRooms))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = ReadLevels(strings.NewReader(twoRooms))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestStateBuilder(t *testing.T) {
	input := `{"type": "state", "level": ` + twoRooms + `,
	  "players": [{"type": "player", "name": "ann", "position": [1, 1]}],
	  "adversaries": [{"type": "zombie", "name": "z", "position": [2, 12]}],
	  "exit-locked": true}`
	s, err := ReadState(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, s.ExitLocked)

	m, err := s.Builder(map[string]game.Controller{"ann": game.Local(strategy.NoMove{})}).Build()
	require.NoError(t, err)
	want := strings.Join([]string{
		"# # # # #                  ",
		"# P . K # # # # # # # # # #",
		"# . . . + : : : : : + . Z #",
		"# E . . # # # # # # # . . #",
		"# # # # #           # # # #",
	}, "\n")
	assert.Equal(t, want, m.Render())
	assert.False(t, m.KeyCollected())

	var buf bytes.Buffer
	require.NoError(t, WriteState(&buf, s))
	back, err := ReadState(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Players, back.Players)
	assert.Equal(t, s.Adversaries, back.Adversaries)
}

func TestStateRejectsWrongSide(t *testing.T) {
	input := `{"type": "state", "level": ` + twoRooms + `,
	  "players": [{"type": "ghost", "name": "g", "position": [1, 1]}],
	  "adversaries": [], "exit-locked": false}`
	_, err := ReadState(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrMalformed)
}
