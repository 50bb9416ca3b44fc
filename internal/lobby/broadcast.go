package lobby

import (
	"go.uber.org/zap"

	"github.com/DoyleJ11/hexagon-backend/internal/types"
)

// Broadcast delivers msg to every player in the lobby.
func (l *Lobby) Broadcast(msg types.SocketMessage) {
	l.BroadcastExcept("", msg)
}

// BroadcastExcept delivers msg to every player but excluded. A failed
// delivery is logged and does not affect the other players.
func (l *Lobby) BroadcastExcept(excluded string, msg types.SocketMessage) {
	b, err := types.Encode(msg)
	if err != nil {
		l.log.Error("dropping broadcast", zap.Error(err))
		return
	}
	for _, id := range l.IDs() {
		if id == excluded {
			continue
		}
		if err := l.players[id].out.Send(b); err != nil {
			l.log.Warn("broadcast delivery failed",
				zap.String("player", id),
				zap.String("type", string(msg.Type)),
				zap.Error(err))
		}
	}
}

func (l *Lobby) sendTo(p *ServerPlayer, msg types.SocketMessage) {
	if err := p.Send(msg); err != nil {
		l.log.Warn("send failed",
			zap.String("player", p.ID),
			zap.String("type", string(msg.Type)),
			zap.Error(err))
	}
}
