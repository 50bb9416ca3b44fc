package types

// CloseCode is why the server ended a connection. It travels as its name in
// JSON and in the close frame reason.
type CloseCode string

const (
	CloseWrongInit               CloseCode = "WrongInit"
	CloseCantCreateLobby         CloseCode = "CantCreateLobby"
	CloseCantJoinLobbyDoestExist CloseCode = "CantJoinLobbyDoestExist"
	CloseNewSessionOpened        CloseCode = "NewSessionOpened"
	CloseLobbyFull               CloseCode = "LobbyFull"
	CloseHandshakeTimeout        CloseCode = "HandshakeTimeout"
)

// Code is the websocket close status for c.
func (c CloseCode) Code() int {
	switch c {
	case CloseWrongInit:
		return 1003
	case CloseCantCreateLobby:
		return 1013
	case CloseCantJoinLobbyDoestExist:
		return 4001
	case CloseNewSessionOpened:
		return 4002
	case CloseLobbyFull:
		return 4003
	case CloseHandshakeTimeout:
		return 4004
	default:
		return 1011
	}
}

func (c CloseCode) String() string { return string(c) }
