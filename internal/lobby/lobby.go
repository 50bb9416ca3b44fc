package lobby

import (
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/DoyleJ11/hexagon-backend/internal/engine"
	"github.com/DoyleJ11/hexagon-backend/internal/types"
)

var ErrLobbyFull = errors.New("lobby full")
var ErrNotLeader = errors.New("not the leader")
var ErrGameStarted = errors.New("game already started")
var ErrNotInGame = errors.New("game not started")
var ErrNotYourTurn = errors.New("not your turn")
var ErrNoOpponent = errors.New("no opponent to play against")
var ErrUnknownPlayer = errors.New("player not in lobby")

// State is either Lobby(leader) or Game(board).
type State struct {
	leader string
	board  *engine.Board
}

func (s State) InGame() bool { return s.board != nil }

// Leader is empty once the game has started.
func (s State) Leader() string {
	if s.InGame() {
		return ""
	}
	return s.leader
}

func (s State) Board() *engine.Board { return s.board }

func (s State) View() types.State {
	if s.InGame() {
		return types.State{Kind: types.StateGame, Board: s.board}
	}
	return types.State{Kind: types.StateLobby, Leader: s.leader}
}

// Lobby is one game session. It is not safe for concurrent use; the hub
// holds its lock around every call.
type Lobby struct {
	ID string

	players map[string]*ServerPlayer
	state   State
	radius  int
	log     *zap.Logger
}

// New creates a lobby with creator as its only player and leader, seated on
// the first color, and sends the creator its LobbyJoined.
func New(id string, creator *ServerPlayer, radius int, log *zap.Logger) *Lobby {
	l := &Lobby{
		ID:      id,
		players: make(map[string]*ServerPlayer),
		state:   State{leader: creator.ID},
		radius:  radius,
		log:     log.With(zap.String("lobby", id)),
	}
	creator.join(id, engine.Colors[0])
	l.players[creator.ID] = creator
	l.welcome(creator)
	return l
}

func (l *Lobby) State() State { return l.state }

func (l *Lobby) Len() int { return len(l.players) }

func (l *Lobby) Empty() bool { return len(l.players) == 0 }


// IDs returns the player ids in lexicographic order.
func (l *Lobby) IDs() []string {
	ids := make([]string, 0, len(l.players))
	for id := range l.players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (l *Lobby) Snapshot() types.Lobby {
	players := make(map[string]types.Player, len(l.players))
	for id, p := range l.players {
		players[id] = p.View()
	}
	return types.Lobby{ID: l.ID, Players: players, State: l.state.View()}
}

func (l *Lobby) holds(c engine.Color) bool {
	for _, p := range l.players {
		if pc, ok := p.Color(); ok && pc == c {
			return true
		}
	}
	return false
}

// AvailableColor returns the first color in declaration order nobody in the
// lobby holds.
func (l *Lobby) AvailableColor() (engine.Color, bool) {
	for _, c := range engine.Colors {
		if !l.holds(c) {
			return c, true
		}
	}
	return "", false
}

// Join seats p on the first free color. Existing members get PlayerJoined,
// p gets the full lobby. If p's id is already seated, the older session is
// closed with NewSessionOpened and p takes over its seat.
func (l *Lobby) Join(p *ServerPlayer) (engine.Color, error) {
	if old, ok := l.players[p.ID]; ok {
		c, _ := old.Color()
		p.join(l.ID, c)
		l.players[p.ID] = p
		old.Close(types.CloseNewSessionOpened)
		l.log.Info("session replaced", zap.String("player", p.ID), zap.String("old_session", old.Session))
		l.welcome(p)
		return c, nil
	}

	c, ok := l.AvailableColor()
	if !ok {
		return "", ErrLobbyFull
	}
	p.join(l.ID, c)
	l.players[p.ID] = p
	l.BroadcastExcept(p.ID, types.PlayerJoined(p.View(), c))
	l.welcome(p)
	return c, nil
}

func (l *Lobby) welcome(p *ServerPlayer) {
	c, _ := p.Color()
	l.sendTo(p, types.LobbyJoined(l.Snapshot(), c))
}

// Remove drops player id if session still owns its seat (an empty session
// matches any). A leaving leader hands leadership to the next id in
// lexicographic order, wrapping to the first.
func (l *Lobby) Remove(id, session string) bool {
	p, ok := l.players[id]
	if !ok || (session != "" && p.Session != session) {
		return false
	}

	if !l.state.InGame() && l.state.leader == id && len(l.players) > 1 {
		l.state.leader = l.nextLeader(id)
		l.log.Info("leader changed", zap.String("from", id), zap.String("to", l.state.leader))
		l.BroadcastExcept(id, types.LeaderChange(l.state.View()))
	}

	delete(l.players, id)
	p.out.Close()
	l.Broadcast(types.PlayerDisconnected(p.View()))
	return true
}

func (l *Lobby) nextLeader(outgoing string) string {
	ids := l.IDs()
	i := slices.Index(ids, outgoing)
	return ids[(i+1)%len(ids)]
}

// StartGame turns the lobby into a game. Only the leader may do it, and only
// once; the leader's color moves first against the first other seated color.
func (l *Lobby) StartGame(playerID string) error {
	if l.state.InGame() {
		return ErrGameStarted
	}
	if l.state.leader != playerID {
		return ErrNotLeader
	}
	leader, ok := l.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	first, _ := leader.Color()

	var second engine.Color
	for _, id := range l.IDs() {
		if c, ok := l.players[id].Color(); ok && c != first {
			second = c
			break
		}
	}
	if second == "" {
		return ErrNoOpponent
	}

	l.state = State{board: engine.GenerateHexagon(l.radius, first, second)}
	l.log.Info("game started", zap.String("first", first.String()), zap.String("second", second.String()))
	l.Broadcast(types.GameStart(l.state.View()))
	return nil
}

// ApplyMove plays m for playerID after checking it is that player's turn and
// the move is legal, then passes the turn on and broadcasts the new board.
func (l *Lobby) ApplyMove(playerID string, m engine.Move) error {
	if !l.state.InGame() {
		return ErrNotInGame
	}
	p, ok := l.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	board := l.state.board
	if c, _ := p.Color(); c != board.Turn() {
		return ErrNotYourTurn
	}
	if err := board.ApplyMove(m); err != nil {
		return err
	}
	board.ChangeTurn(l.nextTurn(board.Turn()))
	l.Broadcast(types.Moved(board, m))
	return nil
}

// nextTurn is the first seated color, in declaration order, other than
// mover. A lone color keeps the turn.
func (l *Lobby) nextTurn(mover engine.Color) engine.Color {
	for _, c := range engine.Colors {
		if c != mover && l.holds(c) {
			return c
		}
	}
	return mover
}

func (l *Lobby) Ping(playerID string) error {
	p, ok := l.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	l.sendTo(p, types.Pong())
	return nil
}
