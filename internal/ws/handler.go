package ws

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hexagon-backend/internal/hub"
	"github.com/DoyleJ11/hexagon-backend/internal/lobby"
	"github.com/DoyleJ11/hexagon-backend/internal/types"
)

const writeTimeout = 5 * time.Second

type Config struct {
	// HandshakeTimeout bounds Initialize plus the lobby choice. Zero disables it.
	HandshakeTimeout time.Duration
	OutboxSize       int
	OriginPatterns   []string
}

// Handler upgrades the request and runs one player's connection until either
// side goes away.
func Handler(h *hub.Hub, cfg Config, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: cfg.OriginPatterns,
		})
		if err != nil {
			log.Warn("websocket accept failed", zap.Error(err))
			return
		}

		session := uuid.NewString()
		c := &connection{
			hub:     h,
			conn:    conn,
			out:     lobby.NewOutbox(cfg.OutboxSize),
			session: session,
			log:     log.With(zap.String("session", session)),
		}
		c.serve(r.Context(), cfg.HandshakeTimeout)
	}
}

type connection struct {
	hub     *hub.Hub
	conn    *websocket.Conn
	out     *lobby.Outbox
	session string
	log     *zap.Logger

	// settled is set once by whichever comes first: seating the player or
	// the handshake timer.
	settled atomic.Bool
}

func (c *connection) serve(ctx context.Context, handshakeTimeout time.Duration) {
	c.log.Debug("connection opened")

	// Writer goroutine
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop(ctx)
	}()
	defer func() {
		c.out.Close()
		<-done
		_ = c.conn.CloseNow()
		c.log.Debug("connection closed")
	}()

	stop := func() {}
	if handshakeTimeout > 0 {
		timer := time.AfterFunc(handshakeTimeout, c.expireHandshake)
		stop = func() { timer.Stop() }
	}

	p, ok := c.awaitInitialize(ctx)
	if !ok {
		stop()
		return
	}
	lobbyID, ok := c.awaitLobby(ctx, p)
	stop()
	if !ok {
		return
	}
	defer c.hub.Disconnect(lobbyID, p.ID, c.session)

	c.log.Info("player in session", zap.String("lobby", lobbyID), zap.String("player", p.ID))
	c.readSession(ctx, lobbyID, p.ID)
}

// awaitInitialize reads the first frame. Anything but a valid Initialize
// closes the connection with WrongInit.
func (c *connection) awaitInitialize(ctx context.Context) (*lobby.ServerPlayer, bool) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		c.logReadErr(err)
		return nil, false
	}
	if typ != websocket.MessageText {
		c.log.Warn("binary handshake frame")
		c.reject(types.CloseWrongInit)
		return nil, false
	}
	msg, err := types.DecodePlayerMessage(data)
	if err != nil || msg.Type != types.MsgInitialize {
		c.log.Warn("bad handshake", zap.Error(err), zap.String("type", string(msg.Type)))
		c.reject(types.CloseWrongInit)
		return nil, false
	}

	return lobby.NewServerPlayer(msg.ID, msg.Name, c.session, c.out), true
}

// awaitLobby waits for CreateLobby or JoinLobby and ignores everything else.
func (c *connection) awaitLobby(ctx context.Context, p *lobby.ServerPlayer) (string, bool) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			c.logReadErr(err)
			return "", false
		}
		if typ != websocket.MessageText {
			c.log.Debug("ignoring binary frame")
			continue
		}
		msg, err := types.DecodePlayerMessage(data)
		if err != nil {
			c.log.Warn("ignoring malformed message", zap.Error(err))
			continue
		}

		if msg.Type != types.MsgCreateLobby && msg.Type != types.MsgJoinLobby {
			c.log.Debug("ignoring message before lobby", zap.String("type", string(msg.Type)))
			continue
		}
		if !c.settle() {
			// handshake timer already closed the connection
			return "", false
		}

		switch msg.Type {
		case types.MsgCreateLobby:
			id, err := c.hub.CreateLobby(p)
			if err != nil {
				c.log.Error("create lobby failed", zap.String("player", p.ID), zap.Error(err))
				c.reject(types.CloseCantCreateLobby)
				return "", false
			}
			return id, true

		case types.MsgJoinLobby:
			err := c.hub.JoinLobby(msg.LobbyID, p)
			switch {
			case err == nil:
				return msg.LobbyID, true
			case errors.Is(err, lobby.ErrLobbyFull):
				c.reject(types.CloseLobbyFull)
			default:
				c.reject(types.CloseCantJoinLobbyDoestExist)
			}
			c.log.Info("join rejected", zap.String("lobby", msg.LobbyID), zap.String("player", p.ID), zap.Error(err))
			return "", false
		}
	}
}

// settle claims the handshake for seating. It fails if the timer won.
func (c *connection) settle() bool {
	return c.settled.CompareAndSwap(false, true)
}

func (c *connection) expireHandshake() {
	if !c.settled.CompareAndSwap(false, true) {
		return
	}
	c.log.Info("handshake timed out")
	c.reject(types.CloseHandshakeTimeout)
}

func (c *connection) readSession(ctx context.Context, lobbyID, playerID string) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			c.logReadErr(err)
			return
		}
		if typ != websocket.MessageText {
			c.log.Debug("ignoring binary frame")
			continue
		}
		msg, err := types.DecodePlayerMessage(data)
		if err != nil {
			c.log.Warn("dropping malformed message", zap.Error(err))
			continue
		}
		c.hub.Dispatch(lobbyID, playerID, msg)
	}
}

func (c *connection) writeLoop(ctx context.Context) {
	for f := range c.out.Frames() {
		if f.Close != nil {
			code := *f.Close
			if err := c.conn.Close(websocket.StatusCode(code.Code()), code.String()); err != nil {
				c.log.Debug("close handshake", zap.Error(err))
			}
			return
		}

		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := c.conn.Write(wctx, websocket.MessageText, f.Payload)
		cancel()
		if err != nil {
			c.log.Warn("write failed", zap.Error(err))
			c.out.Close()
			_ = c.conn.CloseNow()
			return
		}
	}
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}

// reject queues a Close notice plus a close frame with code.
func (c *connection) reject(code types.CloseCode) {
	notice, err := types.Encode(types.Close(code))
	if err != nil {
		notice = nil
	}
	c.out.CloseWith(code, notice)
}

func (c *connection) logReadErr(err error) {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		c.log.Debug("client closed")
	case -1:
		c.log.Debug("read ended", zap.Error(err))
	default:
		c.log.Info("client closed", zap.Int("status", int(websocket.CloseStatus(err))))
	}
}
