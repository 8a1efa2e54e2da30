// Package collector receives tracked events over HTTP and appends them
// to the Postgres event log. Ingestion is best-effort at-least-once:
// malformed events in a batch are logged and skipped, never rejected
// wholesale, so one bad payload can't stall a visitor's stream.
package collector

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/brightline/growth-engine/internal/event"
	"github.com/brightline/growth-engine/internal/pkg/logger"
)

const insertEventSQL = `
	INSERT INTO visitor_events (visitor_id, session_id, event_type, event_data, occurred_at, received_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Handler serves the event ingestion endpoints.
type Handler struct {
	db *sql.DB
}

// NewHandler creates a handler backed by the given database.
func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

// Routes mounts the ingestion API. CORS is open for POSTs because the
// events come straight from visitors' browsers.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/track", h.HandleTrack)
	r.Post("/track/batch", h.HandleTrackBatch)
	r.Get("/healthz", h.HandleHealth)
	return r
}

// trackedEvent is the wire form of one inbound event.
type trackedEvent struct {
	VisitorID string `json:"visitor_id"`
	event.Event
}

// HandleTrack ingests a single event.
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	var evt trackedEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}

	if err := h.insert(r, evt); err != nil {
		logger.Error("event insert failed", "error", err.Error(), "type", evt.Type)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleTrackBatch ingests a batch. Events that fail validation or
// insertion are skipped and counted; the response reports both totals.
func (h *Handler) HandleTrackBatch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		VisitorID string        `json:"visitor_id"`
		Events    []event.Event `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid batch payload", http.StatusBadRequest)
		return
	}

	accepted, skipped := 0, 0
	for _, evt := range payload.Events {
		e := trackedEvent{VisitorID: payload.VisitorID, Event: evt}
		if err := h.insert(r, e); err != nil {
			logger.Warn("skipping event in batch", "error", err.Error(), "type", evt.Type)
			skipped++
			continue
		}
		accepted++
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]int{
		"accepted": accepted,
		"skipped":  skipped,
	})
}

// HandleHealth pings the database.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) insert(r *http.Request, evt trackedEvent) error {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return err
	}

	occurred := evt.Timestamp
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	_, err = h.db.ExecContext(r.Context(), insertEventSQL,
		evt.VisitorID, evt.SessionID, evt.Type, data, occurred, time.Now().UTC())
	return err
}
