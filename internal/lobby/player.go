package lobby

import (
	"github.com/DoyleJ11/hexagon-backend/internal/engine"
	"github.com/DoyleJ11/hexagon-backend/internal/types"
)

// ServerPlayer is a connected player plus the server-only side of its
// connection. Nothing here except View is ever sent to other clients.
type ServerPlayer struct {
	ID      string
	Name    string
	Session string
	Status  types.PlayerStatus

	out *Outbox
}

func NewServerPlayer(id, name, session string, out *Outbox) *ServerPlayer {
	return &ServerPlayer{
		ID:      id,
		Name:    name,
		Session: session,
		Status:  types.PlayerStatus{Kind: types.StatusInitiated},
		out:     out,
	}
}

func (p *ServerPlayer) View() types.Player {
	return types.Player{ID: p.ID, Name: p.Name, Status: p.Status}
}

// Color is the seat color, if the player has joined a lobby.
func (p *ServerPlayer) Color() (engine.Color, bool) {
	if p.Status.Kind != types.StatusJoinedLobby {
		return "", false
	}
	return p.Status.Color, true
}

func (p *ServerPlayer) Joined() bool {
	return p.Status.Kind == types.StatusJoinedLobby
}

func (p *ServerPlayer) join(lobbyID string, c engine.Color) {
	p.Status = types.PlayerStatus{Kind: types.StatusJoinedLobby, LobbyID: lobbyID, Color: c}
}

func (p *ServerPlayer) Send(msg types.SocketMessage) error {
	b, err := types.Encode(msg)
	if err != nil {
		return err
	}
	return p.out.Send(b)
}

// Close sends a Close notice and ends the connection with code.
func (p *ServerPlayer) Close(code types.CloseCode) {
	notice, err := types.Encode(types.Close(code))
	if err != nil {
		notice = nil
	}
	p.out.CloseWith(code, notice)
}
