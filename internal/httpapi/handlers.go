package httpapi

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hexagon-backend/internal/engine"
	"github.com/DoyleJ11/hexagon-backend/internal/hub"
)

func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("encode response", zap.Int("status", status), zap.Error(err))
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func ListLobbies(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, h.Lobbies())
	}
}

// GetLobby returns the full snapshot of one lobby: roster, state and, once
// the game started, the board.
func GetLobby(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := h.Snapshot(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}
		writeJSON(w, log, http.StatusOK, snap)
	}
}

// ClientConfig exposes the settings browser clients need before connecting.
func ClientConfig(signalingURL string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, struct {
			SignalingURL string `json:"signaling_url"`
		}{SignalingURL: signalingURL})
	}
}

type backdropParams struct {
	width, height, pieces, steps int
	seed                         uint64
	seeded                       bool
}

func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer in [%d, %d]", name, lo, hi)
	}
	return v, nil
}

func parseBackdrop(r *http.Request) (backdropParams, error) {
	var p backdropParams
	var err error
	if p.width, err = intParam(r, "width", 6, 1, 32); err != nil {
		return p, err
	}
	if p.height, err = intParam(r, "height", 4, 1, 32); err != nil {
		return p, err
	}
	if p.pieces, err = intParam(r, "pieces", 5, 0, 64); err != nil {
		return p, err
	}
	if p.steps, err = intParam(r, "steps", 20, 0, 1000); err != nil {
		return p, err
	}
	if raw := r.URL.Query().Get("seed"); raw != "" {
		if p.seed, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return p, fmt.Errorf("seed must be an unsigned integer")
		}
		p.seeded = true
	}
	return p, nil
}

// Backdrop returns a decorative honeycomb board after a number of random
// self-play steps. A stuck board is regenerated and play continues.
func Backdrop(log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parseBackdrop(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		seed := p.seed
		if !p.seeded {
			seed = rand.Uint64()
		}
		rng := rand.New(rand.NewPCG(seed, seed))

		first, second := engine.ColorRed, engine.ColorBlue
		gen := func() *engine.Board {
			return engine.GenerateHoneycomb(p.width, p.height, p.pieces, first, second, rng)
		}
		board := gen()
		for i := 0; i < p.steps; i++ {
			if !engine.SelfPlayStep(board, rng) {
				board = gen()
			}
		}
		writeJSON(w, log, http.StatusOK, board)
	}
}
