package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snarl/internal/actor"
	"snarl/internal/game"
	"snarl/internal/gamemap"
	"snarl/internal/rules"
	"snarl/internal/state"
	"snarl/internal/strategy"
)

// playerView is p's view of a 5x5 room with the key, the exit and a zombie
// at (2, 2). p stands at (1, 1).
func playerView(t *testing.T) *state.ActorState {
	t.Helper()
	a, err := gamemap.BuildRoom(gamemap.Pt(0, 0), gamemap.Pt(5, 5), nil, []gamemap.Point{gamemap.Pt(4, 2)})
	require.NoError(t, err)
	b, err := gamemap.BuildRoom(gamemap.Pt(10, 1), gamemap.Pt(4, 4), nil, []gamemap.Point{gamemap.Pt(0, 1)})
	require.NoError(t, err)
	c, err := gamemap.NewCorridor([]gamemap.Point{gamemap.Pt(4, 2), gamemap.Pt(10, 2)})
	require.NoError(t, err)
	l, err := gamemap.NewLevel([]*gamemap.Room{a, b}, []*gamemap.Corridor{c})
	require.NoError(t, err)

	m, err := game.NewBuilder().
		SetLevel(l).
		SetKey(gamemap.Pt(3, 1)).
		SetExit(gamemap.Pt(1, 3)).
		RegisterPlayer("p", game.Local(strategy.NoMove{})).
		RegisterAdversary(actor.KindZombie, "z", nil).
		AddAdversaryStart(gamemap.Pt(2, 2)).
		Build()
	require.NoError(t, err)
	s, err := m.ActorState("p")
	require.NoError(t, err)
	return s
}

func TestTileCodes(t *testing.T) {
	cases := []struct {
		kind gamemap.TileKind
		code int
	}{
		{gamemap.TileWall, CodeWall},
		{gamemap.TileVoid, CodeWall},
		{gamemap.TileFog, CodeWall},
		{gamemap.TileEmpty, CodeOpen},
		{gamemap.TileCorridor, CodeOpen},
		{gamemap.TileKey, CodeOpen},
		{gamemap.TileExit, CodeOpen},
		{gamemap.TileDoor, CodeDoor},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			assert.Equal(t, tc.code, TileCode(tc.kind))
			back, ok := CodeTile(tc.code)
			require.True(t, ok)
			assert.Equal(t, tc.code, TileCode(back), "codes survive a round trip")
		})
	}
	_, ok := CodeTile(7)
	assert.False(t, ok)
}

func TestPosIsRowColumn(t *testing.T) {
	p := gamemap.Pt(7, 3)
	assert.Equal(t, Pos{3, 7}, PosOf(p))
	assert.Equal(t, p, PosOf(p).Point())

	data, err := json.Marshal(NewMove(p))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"move","to":[3,7]}`, string(data))
}

func TestPlayerUpdateSquareWindow(t *testing.T) {
	msg := Encoder{}.PlayerUpdate(playerView(t))

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "player-update",
		"layout": [[0,0,0,0,0],[0,0,0,0,0],[0,0,1,1,1],[0,0,1,1,1],[0,0,1,1,1]],
		"position": [1,1],
		"objects": [{"type":"key","position":[1,3]},{"type":"exit","position":[3,1]}],
		"actors": [{"type":"zombie","name":"z","position":[2,2]}],
		"message": null
	}`, string(data))
}

func TestPlayerUpdateAnchoredWindow(t *testing.T) {
	msg := Encoder{UseAnchor: true}.PlayerUpdate(playerView(t))

	require.NotNil(t, msg.Anchor)
	assert.Equal(t, Pos{0, 0}, *msg.Anchor)
	assert.Equal(t, [][]int{{0, 0, 0, 0}, {0, 1, 1, 1}, {0, 1, 1, 1}, {0, 1, 1, 1}}, msg.Layout)
	assert.Len(t, msg.Objects, 2)
	assert.Len(t, msg.Actors, 1)
}

func TestPlayerUpdateMessageAndHealth(t *testing.T) {
	s := playerView(t)
	s.Messages = []string{"Player p moved", "Zombie z moved"}
	s.Self.LifePoints = 2
	msg := Encoder{}.PlayerUpdate(s)
	require.NotNil(t, msg.Message)
	assert.Equal(t, "Player p moved,Zombie z moved", *msg.Message)
	assert.Equal(t, s.Messages, msg.Messages())
	assert.Nil(t, msg.Health, "health is only sent for actors with combat stats")

	empty := PlayerUpdateMessage{}
	assert.Nil(t, empty.Messages())
}

func TestPlayerUpdateRoundTrip(t *testing.T) {
	msg := Encoder{}.PlayerUpdate(playerView(t))
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	f, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypePlayerUpdate, f.Type)
	var got PlayerUpdateMessage
	require.NoError(t, f.Into(&got))

	self, err := actor.NewPlayer("p")
	require.NoError(t, err)
	s, err := got.State(*self, 1, false)
	require.NoError(t, err)

	want := strings.Join([]string{
		"# # # # #",
		"# # # # #",
		"# # P . K",
		"# # . Z .",
		"# # E . .",
	}, "\n")
	assert.Equal(t, want, s.Render())
	assert.Equal(t, gamemap.Pt(1, 1), s.Self.Pos)
	assert.Equal(t, 1, s.Level)
	assert.False(t, s.IsMoveValid(gamemap.Pt(1, 3)), "the exit stays locked until the key is seen taken")
	assert.True(t, s.IsMoveValid(gamemap.Pt(3, 1)))
	assert.Empty(t, s.PlayerPositions(), "no other players in view")

	unlocked, err := got.State(*self, 1, true)
	require.NoError(t, err)
	assert.True(t, unlocked.IsMoveValid(gamemap.Pt(1, 3)))
}

func TestStateRejectsBadUpdates(t *testing.T) {
	self, err := actor.NewPlayer("p")
	require.NoError(t, err)
	cases := map[string]PlayerUpdateMessage{
		"empty layout": {},
		"unknown code": {Layout: [][]int{{0, 5}}},
		"ragged":       {Layout: [][]int{{0, 1}, {0}}},
		"bad object":   {Layout: [][]int{{1}}, Objects: []ObjectRef{{Type: "chest"}}},
		"bad actor":    {Layout: [][]int{{1}}, Actors: []ActorRef{{Type: "dragon", Name: "d"}}},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.State(*self, 1, false)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecode(t *testing.T) {
	f, err := Decode([]byte(`"move"` + "\n"))
	require.NoError(t, err)
	assert.True(t, f.IsText())
	assert.Equal(t, RequestMove, f.Text)
	assert.ErrorIs(t, f.Into(&MoveMessage{}), ErrMalformed)

	f, err = Decode([]byte(`{"type":"move","to":[2,1]}`))
	require.NoError(t, err)
	var mv MoveMessage
	require.NoError(t, f.Into(&mv))
	assert.Equal(t, gamemap.Pt(1, 2), mv.To.Point())

	for _, bad := range []string{"", "  ", "42", `{"to":[1,2]}`, `{"type":`, `"unterminated`} {
		_, err := Decode([]byte(bad))
		assert.ErrorIs(t, err, ErrMalformed, "input %q", bad)
	}
}

func TestEndLevel(t *testing.T) {
	data, err := json.Marshal(EndLevelOf(game.LevelSummary{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"end-level","key":null,"exits":[],"ejects":[]}`, string(data))

	sum := game.LevelSummary{Key: "ann", Exits: []string{"ann"}, Ejects: []string{"bob"}}
	m := EndLevelOf(sum)
	require.NotNil(t, m.Key)
	assert.Equal(t, "ann", *m.Key)
	assert.Equal(t, sum, m.Summary())
}

func TestEndGame(t *testing.T) {
	scores := []game.Score{
		{Name: "ann", PlayerStats: game.PlayerStats{Exits: 2, Keys: 1}},
		{Name: "bob", PlayerStats: game.PlayerStats{Ejects: 1}},
	}
	m := EndGameOf(scores)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"end-game","scores":[
		{"type":"player-score","name":"ann","exits":2,"ejects":0,"keys":1},
		{"type":"player-score","name":"bob","exits":0,"ejects":1,"keys":0}
	]}`, string(data))
	assert.Equal(t, scores, m.Ranking())
}

func TestMoveResultsTravelAsNames(t *testing.T) {
	for _, r := range []rules.MoveResult{rules.MoveOK, rules.MoveKey, rules.MoveExit, rules.MoveEject, rules.MoveAttack, rules.MoveInvalid} {
		data, err := json.Marshal(r.String())
		require.NoError(t, err)
		f, err := Decode(data)
		require.NoError(t, err)
		back, err := rules.ParseMoveResult(f.Text)
		require.NoError(t, err)
		assert.Equal(t, r, back)
	}
}
