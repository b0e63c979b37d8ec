package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/unreadwatch/internal/application"
	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Store    string `json:"store"`
	SignedIn bool   `json:"signed_in"`
	Time     string `json:"time"`
}

// StateResponse is the redacted notification state.
type StateResponse struct {
	SignedIn    bool   `json:"signed_in"`
	Identity    string `json:"identity"`
	HasNotified bool   `json:"has_notified"`
	UnreadCount int    `json:"unread_count"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// PollResponse describes the outcome of a manual tick.
type PollResponse struct {
	Polled      bool   `json:"polled"`
	Fetched     int    `json:"fetched"`
	Decision    string `json:"decision"`
	Count       int    `json:"count"`
	UnreadCount int    `json:"unread_count"`
}

// NotificationResponse is the JSON representation of an inbox item.
type NotificationResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Count     int    `json:"count"`
	CreatedAt string `json:"created_at"`
	Read      bool   `json:"read"`
	ReadAt    string `json:"read_at,omitempty"`

	// Populated only on the single item endpoint.
	HTML string `json:"html,omitempty"`
}

func toStateResponse(s model.NotificationState) StateResponse {
	resp := StateResponse{
		SignedIn:    s.SignedIn(),
		Identity:    s.Identity,
		HasNotified: s.HasNotified,
		UnreadCount: s.UnreadCount,
	}
	if !s.UpdatedAt.IsZero() {
		resp.UpdatedAt = s.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toPollResponse(r application.TickResult) PollResponse {
	d := application.NewDecisionResult(r)
	return PollResponse{
		Polled:      r.Polled,
		Fetched:     r.Fetched,
		Decision:    d.Decision,
		Count:       d.Count,
		UnreadCount: r.State.UnreadCount,
	}
}

func toNotificationResponse(item model.InboxItem) NotificationResponse {
	resp := NotificationResponse{
		ID:        item.ID,
		Kind:      string(item.Kind),
		Title:     item.Title,
		Message:   item.Message,
		Count:     item.Count,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
		Read:      item.ReadAt != nil,
	}
	if item.ReadAt != nil {
		resp.ReadAt = item.ReadAt.UTC().Format(time.RFC3339)
	}
	return resp
}
