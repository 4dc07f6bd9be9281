package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// EventHandler processes one inbound POST /events body — typically wired
// to Session.ApplyEnvelope for the userAction/action/error envelope it
// carries (spec §4.8 "POST /events ... hands off to a configured
// handler").
type EventHandler func(sessionID string, event map[string]interface{}) error

// Server exposes the five HTTP+SSE endpoints of spec §4.8 under Prefix.
//
// Grounded on ff9b65b8_TheApeMachine-a2a-go__pkg-service-a2a_server.go.go's
// Handlers() map[string]http.Handler pattern (plain net/http, no router
// framework) and on d6bf0ea4_alfredjeanlab-beads__internal-server-sse.go.go's
// handleEventStream for the SSE response loop itself.
type Server struct {
	Registry          *Registry
	Prefix            string
	RetryMS           int
	HeartbeatInterval time.Duration
	OnEvent           EventHandler
}

// NewServer builds an SSE server over registry with the given retry hint
// and heartbeat interval (spec §6.5 defaults: retry 3000ms, heartbeat 30s).
func NewServer(registry *Registry, prefix string, retryMS int, heartbeat time.Duration) *Server {
	return &Server{Registry: registry, Prefix: prefix, RetryMS: retryMS, HeartbeatInterval: heartbeat}
}

// Handlers returns the mux-ready endpoint map, mirroring
// a2a_server.go's Handlers() method.
func (s *Server) Handlers() map[string]http.Handler {
	return map[string]http.Handler{
		s.Prefix + "/sessions": http.HandlerFunc(s.handleCreateSession),
		s.Prefix + "/message":  http.HandlerFunc(s.handleMessage),
		s.Prefix + "/events":   http.HandlerFunc(s.handleEvents),
		s.Prefix + "/stream":   http.HandlerFunc(s.handleStream),
		s.Prefix + "/done":     http.HandlerFunc(s.handleDone),
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := s.Registry.CreateSession()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"sessionId": id})
}

type messageRequest struct {
	SessionID string          `json:"sessionId"`
	Message   json.RawMessage `json:"message"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if _, err := s.Registry.Broadcast(req.SessionID, req.Message); err != nil {
		writeNotFound(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type eventsRequest struct {
	SessionID string                 `json:"sessionId"`
	Event     map[string]interface{} `json:"event"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req eventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if s.OnEvent == nil {
		http.Error(w, "no event handler configured", http.StatusInternalServerError)
		return
	}
	if err := s.OnEvent(req.SessionID, req.Event); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDone(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if _, err := s.Registry.Broadcast(req.SessionID, []byte(`{"done":true}`)); err != nil {
		writeNotFound(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}

	var lastEventID uint64
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		lastEventID = ParseEventID(v)
	}

	sub, replay, err := s.Registry.Subscribe(sessionID, lastEventID)
	if err != nil {
		writeNotFound(w, err)
		return
	}
	defer s.Registry.Unsubscribe(sessionID, sub)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	retryMS := s.RetryMS
	if retryMS == 0 {
		retryMS = 3000
	}
	WriteRetry(w, retryMS)
	flusher.Flush()

	for _, ev := range replay {
		WriteEvent(w, ev)
	}
	flusher.Flush()

	heartbeat := s.HeartbeatInterval
	if heartbeat == 0 {
		heartbeat = 30 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Closed():
			return
		case ev := <-sub.Events():
			WriteEvent(w, ev)
			flusher.Flush()
		case <-ticker.C:
			WriteHeartbeat(w)
			flusher.Flush()
		}
	}
}

// WriteEvent writes one SSE event frame, exported so other transports with
// identical framing (A2A task streams, spec §4.9) can share it.
func WriteEvent(w http.ResponseWriter, ev Event) {
	fmt.Fprintf(w, "id: %d\ndata: %s\n\n", ev.ID, ev.Data)
}

// WriteHeartbeat writes an SSE comment-line keepalive frame.
func WriteHeartbeat(w http.ResponseWriter) {
	fmt.Fprint(w, ": heartbeat\n\n")
}

// WriteRetry writes the SSE reconnect-hint frame.
func WriteRetry(w http.ResponseWriter, ms int) {
	fmt.Fprintf(w, "retry: %d\n\n", ms)
}

// ParseEventID parses a Last-Event-ID header value, returning 0 on a
// malformed value (treated as "no replay requested").
func ParseEventID(v string) uint64 {
	id, _ := strconv.ParseUint(v, 10, 64)
	return id
}

func writeNotFound(w http.ResponseWriter, err error) {
	if err == ErrSessionNotFound {
		http.Error(w, "not_found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
