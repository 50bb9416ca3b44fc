package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DoyleJ11/hexagon-backend/internal/engine"
)

var ErrMalformed = errors.New("malformed player message")

type MessageType string

// Client -> Server
const (
	MsgInitialize  MessageType = "Initialize"
	MsgCreateLobby MessageType = "CreateLobby"
	MsgJoinLobby   MessageType = "JoinLobby"
	MsgPing        MessageType = "Ping"
	MsgMove        MessageType = "Move"
	MsgStartGame   MessageType = "StartGame"
)

// Server -> Client
const (
	MsgLobbyJoined        MessageType = "LobbyJoined"
	MsgPlayerJoined       MessageType = "PlayerJoined"
	MsgPlayerDisconnected MessageType = "PlayerDisconnected"
	MsgClose              MessageType = "Close"
	MsgMoved              MessageType = "Moved"
	MsgLeaderChange       MessageType = "LeaderChange"
	MsgGameStart          MessageType = "GameStart"
	MsgPong               MessageType = "Pong"
)

type GameType string

const GameTwoPlayer GameType = "TwoPlayer"

type TeamMode string

const TeamSolo TeamMode = "Solo"

type PlayerMessage struct {
	Type     MessageType  `json:"type"`
	ID       string       `json:"id,omitempty"`
	Name     string       `json:"name,omitempty"`
	LobbyID  string       `json:"lobby_id,omitempty"`
	Move     *engine.Move `json:"move,omitempty"`
	GameType GameType     `json:"game_type,omitempty"`
	TeamMode TeamMode     `json:"team_mode,omitempty"`
}

type SocketMessage struct {
	Type   MessageType   `json:"type"`
	Lobby  *Lobby        `json:"lobby,omitempty"`
	Player *Player       `json:"player,omitempty"`
	Color  engine.Color  `json:"color,omitempty"`
	Code   CloseCode     `json:"code,omitempty"`
	Board  *engine.Board `json:"board,omitempty"`
	Move   *engine.Move  `json:"move,omitempty"`
	State  *State        `json:"state,omitempty"`
}

// DecodePlayerMessage parses one inbound text frame and checks that the
// fields its type needs are present.
func DecodePlayerMessage(data []byte) (PlayerMessage, error) {
	if len(data) == 0 {
		return PlayerMessage{}, fmt.Errorf("%w: empty frame", ErrMalformed)
	}
	var m PlayerMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return PlayerMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch m.Type {
	case MsgInitialize:
		if m.ID == "" {
			return PlayerMessage{}, fmt.Errorf("%w: Initialize without id", ErrMalformed)
		}
	case MsgJoinLobby:
		if m.LobbyID == "" {
			return PlayerMessage{}, fmt.Errorf("%w: JoinLobby without lobby_id", ErrMalformed)
		}
	case MsgMove:
		if m.Move == nil {
			return PlayerMessage{}, fmt.Errorf("%w: Move without move", ErrMalformed)
		}
	case MsgStartGame:
		if m.GameType != GameTwoPlayer || m.TeamMode != TeamSolo {
			return PlayerMessage{}, fmt.Errorf("%w: unsupported game %q/%q", ErrMalformed, m.GameType, m.TeamMode)
		}
	case MsgCreateLobby, MsgPing:
	default:
		return PlayerMessage{}, fmt.Errorf("%w: unknown type %q", ErrMalformed, m.Type)
	}
	return m, nil
}

func Encode(m SocketMessage) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type, err)
	}
	return b, nil
}

func LobbyJoined(l Lobby, c engine.Color) SocketMessage {
	return SocketMessage{Type: MsgLobbyJoined, Lobby: &l, Color: c}
}

func PlayerJoined(p Player, c engine.Color) SocketMessage {
	return SocketMessage{Type: MsgPlayerJoined, Player: &p, Color: c}
}

func PlayerDisconnected(p Player) SocketMessage {
	return SocketMessage{Type: MsgPlayerDisconnected, Player: &p}
}

func Close(code CloseCode) SocketMessage {
	return SocketMessage{Type: MsgClose, Code: code}
}

func Moved(b *engine.Board, m engine.Move) SocketMessage {
	return SocketMessage{Type: MsgMoved, Board: b, Move: &m}
}

func LeaderChange(s State) SocketMessage {
	return SocketMessage{Type: MsgLeaderChange, State: &s}
}

func GameStart(s State) SocketMessage {
	return SocketMessage{Type: MsgGameStart, State: &s}
}

func Pong() SocketMessage {
	return SocketMessage{Type: MsgPong}
}
