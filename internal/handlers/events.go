package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/pubsub"
)

const keepaliveInterval = 30 * time.Second

// EventSource is the event bus the realtime feeds read from
type EventSource interface {
	Subscribe() chan pubsub.Event
	Unsubscribe(chan pubsub.Event)
}

// matches reports whether a client watching sessionID should see event.
// Events without a session, like projection refreshes, go to everyone.
func matches(event pubsub.Event, sessionID string) bool {
	return sessionID == "" || event.SessionID == "" || event.SessionID == sessionID
}

// EventsSSE streams events as Server-Sent Events. ?session= limits the
// stream to one draft.
func EventsSSE(events EventSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		sessionID := r.URL.Query().Get("session")
		ch := events.Subscribe()
		defer events.Unsubscribe(ch)

		fmt.Fprint(w, "data: {\"type\":\"connected\"}\n\n")
		flusher.Flush()
		logger.Debug("SSE client connected", "session_id", sessionID)

		keepalive := time.NewTicker(keepaliveInterval)
		defer keepalive.Stop()

		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if !matches(event, sessionID) {
					continue
				}
				data, err := json.Marshal(event)
				if err != nil {
					logger.Warn("Failed to encode event", "error", err, "type", event.Type)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
				flusher.Flush()
			case <-keepalive.C:
				fmt.Fprint(w, ": keepalive\n\n")
				flusher.Flush()
			case <-r.Context().Done():
				logger.Debug("SSE client disconnected", "session_id", sessionID)
				return
			}
		}
	}
}
