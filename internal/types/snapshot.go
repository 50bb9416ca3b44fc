package types

import "github.com/DoyleJ11/hexagon-backend/internal/engine"

type StatusKind string

const (
	StatusInitiated   StatusKind = "Initiated"
	StatusJoinedLobby StatusKind = "JoinedLobby"
)

type PlayerStatus struct {
	Kind    StatusKind   `json:"kind"`
	LobbyID string       `json:"lobby_id,omitempty"`
	Color   engine.Color `json:"color,omitempty"`
}

type Player struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Status PlayerStatus `json:"status"`
}

type StateKind string

const (
	StateLobby StateKind = "Lobby"
	StateGame  StateKind = "Game"
)

// State is Lobby(leader) before the game and Game(board) after it starts.
type State struct {
	Kind   StateKind     `json:"kind"`
	Leader string        `json:"leader,omitempty"`
	Board  *engine.Board `json:"board,omitempty"`
}

type Lobby struct {
	ID      string            `json:"id"`
	Players map[string]Player `json:"players"`
	State   State             `json:"state"`
}
