// Package httphandler is the HTTP driving adapter: the inbound method
// endpoint plus a small REST surface over the agent and its inbox.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/unreadwatch/internal/adapter/driven/surface"
	"github.com/ericfisherdev/unreadwatch/internal/application"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

// defaultListLimit caps notification listings when no limit is given.
const defaultListLimit = 50

// RequestObserver records served requests.
type RequestObserver interface {
	ObserveHTTP(method string, status int)
}

// Handler serves the HTTP API.
type Handler struct {
	agent  *application.AgentService
	inbox  driven.InboxStore
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(agent *application.AgentService, inbox driven.InboxStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{agent: agent, inbox: inbox, logger: logger, now: time.Now}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging, metrics, and recovery middleware. observer and
// metricsHandler may be nil.
func NewServeMux(h *Handler, logger *slog.Logger, observer RequestObserver, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/rpc", h.RPC)
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/state", h.GetState)
	mux.HandleFunc("POST /api/v1/poll", h.Poll)
	mux.HandleFunc("GET /api/v1/notifications", h.ListNotifications)
	mux.HandleFunc("GET /api/v1/notifications/{id}", h.GetNotification)
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", h.MarkNotificationRead)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	if observer != nil {
		wrapped = metricsMiddleware(observer, wrapped)
	}
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports whether the state store can be read. An unreadable store
// answers 503 with status "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Store:  "ok",
		Time:   h.now().UTC().Format(time.RFC3339),
	}

	state, err := h.agent.State(r.Context())
	if err != nil {
		h.logger.Warn("health check: state store unavailable", "error", err)
		resp.Status = "degraded"
		resp.Store = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.SignedIn = state.SignedIn()
	writeJSON(w, http.StatusOK, resp)
}

// GetState returns the notification state with the credential withheld.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.agent.State(r.Context())
	if err != nil {
		h.logger.Error("failed to load state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toStateResponse(state))
}

// Poll runs one tick immediately.
func (h *Handler) Poll(w http.ResponseWriter, r *http.Request) {
	result, err := h.agent.Tick(r.Context())
	if err != nil {
		h.logger.Error("manual poll failed", "error", err)
		writeError(w, http.StatusInternalServerError, "poll failed")
		return
	}

	writeJSON(w, http.StatusOK, toPollResponse(result))
}

// ListNotifications returns inbox items, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	unreadOnly := false
	if v := q.Get("unread"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid unread filter")
			return
		}
		unreadOnly = parsed
	}

	limit := defaultListLimit
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	items, err := h.inbox.List(r.Context(), unreadOnly, limit)
	if err != nil {
		h.logger.Error("failed to list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toNotificationResponse(item))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetNotification returns one inbox item including its rendered HTML body.
func (h *Handler) GetNotification(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	item, err := h.inbox.Get(r.Context(), id)
	if errors.Is(err, driven.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get notification", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := toNotificationResponse(item)
	resp.HTML = surface.RenderAlert(item.Title, item.Message)
	writeJSON(w, http.StatusOK, resp)
}

// MarkNotificationRead marks an inbox item as read and returns it.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.inbox.MarkRead(r.Context(), id, h.now())
	if errors.Is(err, driven.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to mark notification read", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	item, err := h.inbox.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to reload notification", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toNotificationResponse(item))
}
