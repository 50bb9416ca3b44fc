package hub

import (
	"crypto/rand"
	"errors"
	"math/big"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/hexagon-backend/internal/lobby"
	"github.com/DoyleJ11/hexagon-backend/internal/types"
)

var ErrLobbyExists = errors.New("lobby id already in use")
var ErrLobbyNotFound = errors.New("lobby not found")

const codeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const DefaultCodeLength = 5

// Summary is the public listing of one lobby.
type Summary struct {
	ID      string          `json:"id"`
	Players int             `json:"players"`
	State   types.StateKind `json:"state"`
}

// Hub is the process-wide lobby registry. Every request runs inside one
// critical section: mutations and the broadcasts they cause happen under
// the write lock, so no two moves on one lobby interleave.
type Hub struct {
	mu      sync.RWMutex
	lobbies map[string]*lobby.Lobby
	log     *zap.Logger
	radius  int
	newCode func() (string, error)
}

type Option func(*Hub)

// WithCodeGenerator replaces the random lobby id source.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(h *Hub) { h.newCode = gen }
}

func NewHub(log *zap.Logger, radius int, opts ...Option) *Hub {
	h := &Hub{
		lobbies: make(map[string]*lobby.Lobby),
		log:     log,
		radius:  radius,
		newCode: func() (string, error) { return GenerateCode(DefaultCodeLength) },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func GenerateCode(n int) (string, error) {
	code := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range code {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeChars[num.Int64()]
	}
	return string(code), nil
}

// CreateLobby opens a lobby with p as its only player. A generated id that
// is already taken fails the request; there is no retry.
func (h *Hub) CreateLobby(p *lobby.ServerPlayer) (string, error) {
	code, err := h.newCode()
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, taken := h.lobbies[code]; taken {
		h.log.Error("lobby id collision", zap.String("lobby", code), zap.String("player", p.ID))
		return "", ErrLobbyExists
	}
	h.lobbies[code] = lobby.New(code, p, h.radius, h.log)
	h.log.Info("lobby created", zap.String("lobby", code), zap.String("player", p.ID))
	return code, nil
}

func (h *Hub) JoinLobby(id string, p *lobby.ServerPlayer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.lobbies[id]
	if !ok {
		return ErrLobbyNotFound
	}
	c, err := l.Join(p)
	if err != nil {
		return err
	}
	h.log.Info("player joined", zap.String("lobby", id), zap.String("player", p.ID), zap.String("color", c.String()))
	return nil
}

// Dispatch applies one in-session message from playerID. Rejections are
// logged and never answered.
func (h *Hub) Dispatch(lobbyID, playerID string, msg types.PlayerMessage) {
	log := h.log.With(zap.String("lobby", lobbyID), zap.String("player", playerID), zap.String("type", string(msg.Type)))

	if msg.Type == types.MsgPing {
		h.mu.RLock()
		defer h.mu.RUnlock()
		l, ok := h.lobbies[lobbyID]
		if !ok {
			log.Error("lobby not found")
			return
		}
		if err := l.Ping(playerID); err != nil {
			log.Error("ping rejected", zap.Error(err))
		}
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.lobbies[lobbyID]
	if !ok {
		log.Error("lobby not found")
		return
	}

	var err error
	switch msg.Type {
	case types.MsgStartGame:
		err = l.StartGame(playerID)
	case types.MsgMove:
		if msg.Move == nil {
			log.Warn("move without payload")
			return
		}
		err = l.ApplyMove(playerID, *msg.Move)
	default:
		log.Warn("unexpected player message")
		return
	}
	if err != nil {
		log.Warn("message rejected", zap.Error(err))
	}
}

// Disconnect removes the player's seat if session still owns it, and drops
// the lobby once nobody is left.
func (h *Hub) Disconnect(lobbyID, playerID, session string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.lobbies[lobbyID]
	if !ok {
		return
	}
	if !l.Remove(playerID, session) {
		h.log.Debug("stale disconnect ignored", zap.String("lobby", lobbyID), zap.String("player", playerID))
		return
	}
	h.log.Info("player disconnected", zap.String("lobby", lobbyID), zap.String("player", playerID))
	if l.Empty() {
		delete(h.lobbies, lobbyID)
		h.log.Info("lobby removed", zap.String("lobby", lobbyID))
	}
}

// Snapshot returns a copy of lobby id that stays valid after the lock is
// released; the board is cloned.
func (h *Hub) Snapshot(id string) (types.Lobby, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	l, ok := h.lobbies[id]
	if !ok {
		return types.Lobby{}, false
	}
	snap := l.Snapshot()
	if snap.State.Board != nil {
		snap.State.Board = snap.State.Board.Clone()
	}
	return snap, true
}

func (h *Hub) Lobbies() []Summary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Summary, 0, len(h.lobbies))
	for id, l := range h.lobbies {
		out = append(out, Summary{ID: id, Players: l.Len(), State: l.State().View().Kind})
	}
	slices.SortFunc(out, func(a, b Summary) int { return strings.Compare(a.ID, b.ID) })
	return out
}
