package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	// retryAfter is the reconnect delay suggested to browsers.
	retryAfter = 5 * time.Second
	// writeTimeout bounds a single frame write so dead peers are noticed.
	writeTimeout = 60 * time.Second
)

// UserResolver extracts the authenticated user from a request.
type UserResolver func(r *http.Request) (string, bool)

// Handler streams a user's activity at GET /api/events.
type Handler struct {
	manager     *Manager
	resolveUser UserResolver
	logger      *slog.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(manager *Manager, resolveUser UserResolver, logger *slog.Logger) *Handler {
	return &Handler{
		manager:     manager,
		resolveUser: resolveUser,
		logger:      logger,
	}
}

// stream writes numbered frames to one connection.
type stream struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	seq int
}

// send writes "id/event/data" (plus an optional retry hint) and flushes.
func (s *stream) send(eventType string, data any, retry time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	s.seq++
	if retry > 0 {
		if _, err := fmt.Fprintf(s.w, "retry: %d\n", retry.Milliseconds()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, eventType, payload); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil {
		return err
	}
	// Not every ResponseWriter supports deadlines; streaming still works without one.
	_ = s.rc.SetWriteDeadline(time.Now().Add(writeTimeout))
	return nil
}

// ServeHTTP holds the connection open and relays the user's events until the
// client goes away or the manager closes the stream.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := h.resolveUser(r)
	if !ok {
		http.Error(w, "You must be logged in to do that.", http.StatusForbidden)
		return
	}

	client, err := h.manager.Connect(userID)
	if err != nil {
		h.logger.Error("SSE connect failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	out := &stream{w: w, rc: http.NewResponseController(w)}
	log := h.logger.With(slog.String("client_id", client.ID), slog.String("user_id", userID))

	if err := out.send("connected", map[string]string{"client_id": client.ID}, retryAfter); err != nil {
		log.Warn("SSE handshake failed", slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case event, open := <-client.EventChan:
			if !open {
				return
			}
			if err := out.send(string(event.Type), event, 0); err != nil {
				log.Debug("SSE client went away mid-write")
				return
			}
		case <-client.Done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
