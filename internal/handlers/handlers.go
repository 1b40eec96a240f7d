package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/websteralycia/WNBA-Lineup-Lab/internal/auth"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/ingest"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/logger"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/pubsub"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/session"
	"github.com/websteralycia/WNBA-Lineup-Lab/internal/sharing"
)

// APIHandlers contains all API handler methods
type APIHandlers struct {
	session *session.Session
	pubsub  *pubsub.PubSub
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(sess *session.Session, ps *pubsub.PubSub) *APIHandlers {
	return &APIHandlers{
		session: sess,
		pubsub:  ps,
	}
}

// errorKind maps the error taxonomy onto stable API identifiers.
func errorKind(err error) (string, int) {
	switch {
	case errors.Is(err, ingest.ErrEmptyInput):
		return "EmptyInput", http.StatusBadRequest
	case errors.Is(err, ingest.ErrMalformedInput):
		return "MalformedInput", http.StatusBadRequest
	case errors.Is(err, sharing.ErrPreconditionFailed):
		return "PreconditionFailed", http.StatusPreconditionFailed
	case errors.Is(err, session.ErrPublishInFlight):
		return "PublishInFlight", http.StatusConflict
	case errors.Is(err, sharing.ErrStorage):
		return "StorageError", http.StatusBadGateway
	default:
		return "Internal", http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind, status := errorKind(err)
	writeJSON(w, status, map[string]string{"error": kind, "message": err.Error()})
}

// ImportCatalog ingests a raw CSV body and replaces the catalog
func (h *APIHandlers) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Info("Importing catalog CSV", "bytes", len(body))
	count, err := h.session.ImportCSV(string(body))
	if err != nil {
		logger.Warn("Catalog import failed", "error", err)
		writeError(w, err)
		return
	}

	h.pubsub.Publish(pubsub.Event{
		Type: pubsub.EventCatalogImport,
		Payload: map[string]interface{}{
			"players": count,
		},
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "players": count})
}

// GetCatalog returns the filtered, paginated catalog view
func (h *APIHandlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Has("search") {
		h.session.SetSearch(q.Get("search"))
	}
	if q.Has("position") {
		h.session.SetPositionFilter(q.Get("position"))
	}
	if q.Has("team") {
		h.session.SetTeamFilter(q.Get("team"))
	}
	if q.Has("page") {
		if page, err := strconv.Atoi(q.Get("page")); err == nil {
			h.session.SetPage(page)
		}
	}

	writeJSON(w, http.StatusOK, h.session.View())
}

// ListTeams returns the distinct team values in the catalog
func (h *APIHandlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.ListTeams())
}

// GetRoster returns the current lineup and its aggregates
func (h *APIHandlers) GetRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"roster":     h.session.Roster(),
		"aggregates": h.session.Aggregates(),
	})
}

// AddToRoster appends a catalog player to the lineup
func (h *APIHandlers) AddToRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		AthleteID string `json:"athleteId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode roster add request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	members, agg := h.session.AddToRoster(req.AthleteID)

	h.pubsub.Publish(pubsub.Event{
		Type: pubsub.EventRosterAdd,
		Payload: map[string]interface{}{
			"athleteId": req.AthleteID,
			"size":      len(members),
		},
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{"roster": members, "aggregates": agg})
}

// RemoveFromRoster drops a lineup member
func (h *APIHandlers) RemoveFromRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		AthleteID string `json:"athleteId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	members, agg := h.session.RemoveFromRoster(req.AthleteID)

	h.pubsub.Publish(pubsub.Event{
		Type: pubsub.EventRosterRemove,
		Payload: map[string]interface{}{
			"athleteId": req.AthleteID,
			"size":      len(members),
		},
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{"roster": members, "aggregates": agg})
}

// ClearRoster empties the lineup. The client confirms with the user first.
func (h *APIHandlers) ClearRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.session.ClearRoster()
	h.pubsub.Publish(pubsub.Event{Type: pubsub.EventRosterClear})

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetAnalytics returns the derived aggregates; null when the roster is empty
func (h *APIHandlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Aggregates())
}

// PublishShare publishes the lineup as an immutable snapshot
func (h *APIHandlers) PublishShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if identity, ok := auth.Identity(r); ok {
		h.session.SetIdentity(identity)
	}

	result, err := h.session.Publish(r.Context())
	if err != nil {
		logger.Warn("Publish failed", "error", err)
		writeError(w, err)
		return
	}
	if result == nil {
		// Late result for a reset session, nothing to report
		writeJSON(w, http.StatusOK, map[string]bool{"ok": false})
		return
	}

	h.pubsub.Publish(pubsub.Event{
		Type: pubsub.EventSharePublish,
		Payload: map[string]interface{}{
			"snapshotId": result.SnapshotID,
		},
	})

	writeJSON(w, http.StatusOK, result)
}

// ResolveShare seeds the roster from a deep-linked snapshot ID
func (h *APIHandlers) ResolveShare(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	if err := h.session.SeedFromReference(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"roster":     h.session.Roster(),
		"aggregates": h.session.Aggregates(),
	})
}

// EventsSSE provides Server-Sent Events for realtime updates
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case event := <-eventChan:
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-time.After(30 * time.Second):
			// Keepalive ping
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}
