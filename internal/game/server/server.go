// Package server exposes the game engine over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/combat"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dispatch"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/session"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage"
)

// Server routes HTTP requests to the session and combat services.
type Server struct {
	sessions *session.Service
	combat   *combat.Service
	logger   *slog.Logger
}

// New creates the HTTP server facade.
func New(sessions *session.Service, combatService *combat.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{sessions: sessions, combat: combatService, logger: logger}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/worlds", s.handleCreateWorld)
	mux.HandleFunc("GET /api/worlds/{worldID}", s.handleGetWorld)
	mux.HandleFunc("PATCH /api/worlds/{worldID}", s.handleUpdateWorld)
	mux.HandleFunc("GET /api/worlds/{worldID}/events", s.handleTimeline)
	mux.HandleFunc("POST /api/worlds/{worldID}/rebuild", s.handleRebuild)
	mux.HandleFunc("POST /api/worlds/{worldID}/notes", s.handleAddNote)
	mux.HandleFunc("POST /api/worlds/{worldID}/campaigns", s.handleCreateCampaign)
	mux.HandleFunc("POST /api/worlds/{worldID}/conditions", s.handleApplyCondition)
	mux.HandleFunc("DELETE /api/worlds/{worldID}/conditions/{conditionID}", s.handleRemoveCondition)

	mux.HandleFunc("GET /api/campaigns/{campaignID}", s.handleGetCampaign)
	mux.HandleFunc("PATCH /api/campaigns/{campaignID}", s.handleUpdateCampaign)
	mux.HandleFunc("POST /api/campaigns/{campaignID}/characters", s.handleCreateCharacter)
	mux.HandleFunc("GET /api/campaigns/{campaignID}/characters", s.handleListCharacters)
	mux.HandleFunc("POST /api/campaigns/{campaignID}/combat/start", s.handleStartCombat)
	mux.HandleFunc("GET /api/campaigns/{campaignID}/combat", s.handleActiveCombat)

	mux.HandleFunc("GET /api/characters/{characterID}", s.handleGetCharacter)
	mux.HandleFunc("PATCH /api/characters/{characterID}", s.handleUpdateCharacter)
	mux.HandleFunc("GET /api/targets/{targetID}/conditions", s.handleListConditions)

	mux.HandleFunc("GET /api/combats/{combatID}", s.handleGetCombat)
	mux.HandleFunc("GET /api/combats/{combatID}/combatants", s.handleRoster)
	mux.HandleFunc("POST /api/combats/{combatID}/initiative", s.handleRollInitiative)
	mux.HandleFunc("POST /api/combats/{combatID}/next-turn", s.handleNextTurn)
	mux.HandleFunc("POST /api/combats/{combatID}/end", s.handleEndCombat)

	mux.HandleFunc("POST /api/actions/attack", s.handleResolveAttack)
	mux.HandleFunc("POST /api/actions/spell", s.handleResolveSpell)
	mux.HandleFunc("POST /api/actions/skill", s.handleResolveSkill)

	return s.logRequests(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to HTTP statuses: validation failures are
// 400, missing records 404, and game-state conflicts 409.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case dispatch.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, combat.ErrCombatNotActive),
		errors.Is(err, combat.ErrEmptyRoster),
		errors.Is(err, combat.ErrInsufficientMP):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func errInvalidQuery(param string) error {
	return &dispatch.ValidationError{Msg: fmt.Sprintf("query parameter %q is invalid", param)}
}

func readJSON(r *http.Request, into any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(into); err != nil {
		return &dispatch.ValidationError{Msg: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}
