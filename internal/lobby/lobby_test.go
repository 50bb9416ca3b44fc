package lobby

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hexagon-backend/internal/engine"
	"github.com/DoyleJ11/hexagon-backend/internal/types"
)

const radius = 5

func newPlayer(id string) (*ServerPlayer, *Outbox) {
	out := NewOutbox(16)
	return NewServerPlayer(id, "name-"+id, "session-"+id, out), out
}

// helper: receive one message with a timeout so tests never hang
func recvMsg(t *testing.T, out *Outbox, within time.Duration) types.SocketMessage {
	t.Helper()
	select {
	case f, ok := <-out.Frames():
		require.True(t, ok, "outbox closed unexpectedly")
		require.Nil(t, f.Close, "unexpected close frame %v", f.Close)
		var msg types.SocketMessage
		require.NoError(t, json.Unmarshal(f.Payload, &msg))
		return msg
	case <-time.After(within):
		t.Fatalf("timed out waiting for message")
		return types.SocketMessage{} // unreachable
	}
}

func recvNoMsg(t *testing.T, out *Outbox) {
	t.Helper()
	select {
	case f, ok := <-out.Frames():
		if !ok {
			return
		}
		t.Fatalf("expected no message, got %s", f.Payload)
	default:
	}
}

func drain(out *Outbox) {
	for {
		select {
		case _, ok := <-out.Frames():
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// seat creates a lobby led by ids[0] and joins the rest in order.
func seat(t *testing.T, ids ...string) (*Lobby, map[string]*Outbox) {
	t.Helper()
	outs := make(map[string]*Outbox, len(ids))
	creator, out := newPlayer(ids[0])
	outs[ids[0]] = out
	l := New("lob01", creator, radius, zap.NewNop())
	for _, id := range ids[1:] {
		p, out := newPlayer(id)
		outs[id] = out
		_, err := l.Join(p)
		require.NoError(t, err)
	}
	for _, out := range outs {
		drain(out)
	}
	return l, outs
}

func TestNew_CreatorGetsFirstColorAndLeads(t *testing.T) {
	p, out := newPlayer("u1")
	l := New("lob01", p, radius, zap.NewNop())

	msg := recvMsg(t, out, 100*time.Millisecond)
	require.Equal(t, types.MsgLobbyJoined, msg.Type)
	assert.Equal(t, engine.ColorRed, msg.Color)
	require.NotNil(t, msg.Lobby)
	assert.Equal(t, "lob01", msg.Lobby.ID)
	assert.Equal(t, types.State{Kind: types.StateLobby, Leader: "u1"}, msg.Lobby.State)
	assert.Contains(t, msg.Lobby.Players, "u1")

	assert.Equal(t, "u1", l.State().Leader())
	assert.Equal(t, types.StatusJoinedLobby, p.Status.Kind)
}

func TestJoin_BroadcastsPlayerJoined(t *testing.T) {
	l, outs := seat(t, "u1")
	p, out := newPlayer("u2")

	c, err := l.Join(p)
	require.NoError(t, err)
	assert.Equal(t, engine.ColorGreen, c)

	joined := recvMsg(t, outs["u1"], 100*time.Millisecond)
	require.Equal(t, types.MsgPlayerJoined, joined.Type)
	assert.Equal(t, "u2", joined.Player.ID)
	assert.Equal(t, engine.ColorGreen, joined.Color)

	welcome := recvMsg(t, out, 100*time.Millisecond)
	require.Equal(t, types.MsgLobbyJoined, welcome.Type)
	assert.Len(t, welcome.Lobby.Players, 2)
	assert.Equal(t, engine.ColorGreen, welcome.Color)
	recvNoMsg(t, out)
}

func TestAvailableColor_NeverReturnsTakenColor(t *testing.T) {
	l, _ := seat(t, "a")
	taken := map[engine.Color]bool{engine.ColorRed: true}

	for i := 1; i < len(engine.Colors); i++ {
		c, ok := l.AvailableColor()
		require.True(t, ok)
		require.False(t, taken[c], "color %s handed out twice", c)
		taken[c] = true

		p, _ := newPlayer(string(rune('b' + i)))
		got, err := l.Join(p)
		require.NoError(t, err)
		require.Equal(t, c, got)
	}

	_, ok := l.AvailableColor()
	assert.False(t, ok)

	p, _ := newPlayer("late")
	_, err := l.Join(p)
	require.ErrorIs(t, err, ErrLobbyFull)
	_, seated := l.players["late"]
	assert.False(t, seated)
}

func TestJoin_SameIDReplacesSession(t *testing.T) {
	l, outs := seat(t, "u1", "u2")
	again := NewServerPlayer("u2", "name-u2", "session-new", NewOutbox(4))

	c, err := l.Join(again)
	require.NoError(t, err)
	assert.Equal(t, engine.ColorGreen, c)
	assert.Equal(t, 2, l.Len())

	notice := recvMsg(t, outs["u2"], 100*time.Millisecond)
	assert.Equal(t, types.MsgClose, notice.Type)
	assert.Equal(t, types.CloseNewSessionOpened, notice.Code)
	f := <-outs["u2"].Frames()
	require.NotNil(t, f.Close)
	assert.Equal(t, types.CloseNewSessionOpened, *f.Close)

	// the replaced session cannot remove its successor
	assert.False(t, l.Remove("u2", "session-u2"))
	assert.Equal(t, 2, l.Len())
}

func TestRemove_LeaderHandsOverToNextID(t *testing.T) {
	l, outs := seat(t, "b", "a", "c")
	require.Equal(t, "b", l.State().Leader())

	require.True(t, l.Remove("b", ""))
	assert.Equal(t, "c", l.State().Leader())

	for _, id := range []string{"a", "c"} {
		change := recvMsg(t, outs[id], 100*time.Millisecond)
		require.Equal(t, types.MsgLeaderChange, change.Type)
		assert.Equal(t, "c", change.State.Leader)
		gone := recvMsg(t, outs[id], 100*time.Millisecond)
		require.Equal(t, types.MsgPlayerDisconnected, gone.Type)
		assert.Equal(t, "b", gone.Player.ID)
	}
}

func TestRemove_LastLeaderWrapsToFirst(t *testing.T) {
	l, _ := seat(t, "c", "a", "b")

	require.True(t, l.Remove("c", ""))
	assert.Equal(t, "a", l.State().Leader())
}

func TestRemove_NonLeaderKeepsLeader(t *testing.T) {
	l, outs := seat(t, "a", "b")

	require.True(t, l.Remove("b", ""))
	assert.Equal(t, "a", l.State().Leader())
	gone := recvMsg(t, outs["a"], 100*time.Millisecond)
	assert.Equal(t, types.MsgPlayerDisconnected, gone.Type)
	recvNoMsg(t, outs["a"])
}

func TestRemove_LastPlayerEmptiesLobby(t *testing.T) {
	l, outs := seat(t, "solo")

	require.True(t, l.Remove("solo", "session-solo"))
	assert.True(t, l.Empty())
	assert.True(t, outs["solo"].Closed())
	assert.False(t, l.Remove("solo", ""))
}

func TestStartGame(t *testing.T) {
	l, outs := seat(t, "u1", "u2")

	require.ErrorIs(t, l.StartGame("u2"), ErrNotLeader)
	recvNoMsg(t, outs["u1"])

	require.NoError(t, l.StartGame("u1"))
	assert.True(t, l.State().InGame())
	assert.Empty(t, l.State().Leader())

	var boards []string
	for _, id := range []string{"u1", "u2"} {
		msg := recvMsg(t, outs[id], 100*time.Millisecond)
		require.Equal(t, types.MsgGameStart, msg.Type)
		require.Equal(t, types.StateGame, msg.State.Kind)
		b := msg.State.Board
		require.NotNil(t, b)
		assert.Equal(t, engine.ColorRed, b.Turn())
		assert.Equal(t, 2, b.Count(engine.ColorRed))
		assert.Equal(t, 2, b.Count(engine.ColorGreen))
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		boards = append(boards, string(raw))
	}
	assert.Equal(t, boards[0], boards[1])

	require.ErrorIs(t, l.StartGame("u1"), ErrGameStarted)
}

func TestStartGame_NeedsOpponent(t *testing.T) {
	l, _ := seat(t, "u1")
	require.ErrorIs(t, l.StartGame("u1"), ErrNoOpponent)
	assert.False(t, l.State().InGame())
}

func TestApplyMove(t *testing.T) {
	l, outs := seat(t, "u1", "u2")
	require.ErrorIs(t, l.ApplyMove("u1", engine.Move{}), ErrNotInGame)
	require.NoError(t, l.StartGame("u1"))
	drain(outs["u1"])
	drain(outs["u2"])

	redCorner := engine.Cube{X: 4, Y: -4, Z: 0}.Axial()
	greenCorner := engine.Cube{X: -4, Y: 4, Z: 0}.Axial()
	step := engine.Cube{X: 3, Y: -3, Z: 0}.Axial()

	// green moving on red's turn changes nothing
	err := l.ApplyMove("u2", engine.Move{From: greenCorner, To: engine.Cube{X: -3, Y: 3, Z: 0}.Axial()})
	require.ErrorIs(t, err, ErrNotYourTurn)
	recvNoMsg(t, outs["u1"])
	recvNoMsg(t, outs["u2"])
	assert.Equal(t, engine.ColorRed, l.State().Board().Turn())

	err = l.ApplyMove("u1", engine.Move{From: redCorner, To: redCorner})
	require.ErrorIs(t, err, engine.ErrSameCell)

	mv := engine.Move{From: redCorner, To: step}
	require.NoError(t, l.ApplyMove("u1", mv))
	assert.Equal(t, engine.ColorGreen, l.State().Board().Turn())
	for _, id := range []string{"u1", "u2"} {
		msg := recvMsg(t, outs[id], 100*time.Millisecond)
		require.Equal(t, types.MsgMoved, msg.Type)
		assert.Equal(t, mv, *msg.Move)
		assert.Equal(t, engine.ColorGreen, msg.Board.Turn())
		c, ok := msg.Board.Piece(step)
		require.True(t, ok)
		assert.Equal(t, engine.ColorRed, c)
	}
}

func TestApplyMove_TurnSkipsColorsWithoutSeat(t *testing.T) {
	l, outs := seat(t, "u1", "u2")
	require.NoError(t, l.StartGame("u1"))
	require.True(t, l.Remove("u2", ""))
	drain(outs["u1"])

	mv := engine.Move{From: engine.Cube{X: 4, Y: -4, Z: 0}.Axial(), To: engine.Cube{X: 3, Y: -3, Z: 0}.Axial()}
	require.NoError(t, l.ApplyMove("u1", mv))
	assert.Equal(t, engine.ColorRed, l.State().Board().Turn())
}

func TestRemove_InGameKeepsBoard(t *testing.T) {
	l, outs := seat(t, "u1", "u2")
	require.NoError(t, l.StartGame("u1"))
	board := l.State().Board()
	drain(outs["u2"])

	require.True(t, l.Remove("u1", ""))
	assert.Same(t, board, l.State().Board())
	msg := recvMsg(t, outs["u2"], 100*time.Millisecond)
	assert.Equal(t, types.MsgPlayerDisconnected, msg.Type)
	recvNoMsg(t, outs["u2"])
}

func TestPing(t *testing.T) {
	l, outs := seat(t, "u1", "u2")
	require.NoError(t, l.Ping("u2"))
	assert.Equal(t, types.MsgPong, recvMsg(t, outs["u2"], 100*time.Millisecond).Type)
	recvNoMsg(t, outs["u1"])
	require.ErrorIs(t, l.Ping("nobody"), ErrUnknownPlayer)
}

func TestBroadcast_BrokenRecipientDoesNotBlockOthers(t *testing.T) {
	l, outs := seat(t, "a", "b", "c")
	outs["b"].Close()

	l.Broadcast(types.Pong())

	assert.Equal(t, types.MsgPong, recvMsg(t, outs["a"], 100*time.Millisecond).Type)
	assert.Equal(t, types.MsgPong, recvMsg(t, outs["c"], 100*time.Millisecond).Type)
}

func TestBroadcastExcept(t *testing.T) {
	l, outs := seat(t, "a", "b")
	l.BroadcastExcept("a", types.Pong())

	recvNoMsg(t, outs["a"])
	assert.Equal(t, types.MsgPong, recvMsg(t, outs["b"], 100*time.Millisecond).Type)
}
