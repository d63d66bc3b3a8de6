package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aqarat-core-poc/server/internal/agent/graph"
	"github.com/aqarat-core-poc/server/internal/agent/model"
	errx "github.com/aqarat-core-poc/server/internal/core/error"
	"github.com/aqarat-core-poc/server/internal/observability"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the chat API on top of the dialogue graph.
type Handler struct {
	runner graph.Runner
	repo   model.SessionRepository
}

func NewHandler(runner graph.Runner, repo model.SessionRepository) *Handler {
	return &Handler{runner: runner, repo: repo}
}

// Router assembles the HTTP surface: chat API, session reset, health and
// metrics.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Post("/api/chat", h.handleChat)
	r.Delete("/api/chat/{sessionID}", h.handleReset)
	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", observability.Handler())

	return r
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	start := time.Now()
	answer, err := h.runner.Invoke(r.Context(), model.TurnInput{
		SessionID: req.SessionID,
		Query:     req.Message,
	})
	observability.TurnDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		status, msg := statusFor(err)
		logx.Error().Err(err).Str("session_id", req.SessionID).Msg("turn failed")
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{SessionID: req.SessionID, Answer: answer})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session id is required"})
		return
	}
	if err := h.repo.ClearSession(r.Context(), sessionID); err != nil {
		status, msg := statusFor(err)
		logx.Error().Err(err).Str("session_id", sessionID).Msg("session reset failed")
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) (int, string) {
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Message
	}
	return http.StatusInternalServerError, errx.SystemErrorMessage
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}
