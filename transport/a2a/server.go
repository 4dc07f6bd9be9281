package a2a

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/internal/config"
	"github.com/tenzoki/a2ui-go/transport/sse"
)

// MessageHandler processes one inbound task message — typically wired to
// extract envelopes via ExtractEnvelopes and hand the userAction/action
// envelope off to a Session (spec §4.9 "the agent typically creates a
// follow-up task carrying the response").
type MessageHandler func(taskID string, msg Message) error

// Server exposes the A2A discovery endpoint at the fixed
// /.well-known/agent.json path and the task-create, task-stream and
// task-message endpoints of spec §4.9 under Prefix, reusing the sse
// package's session registry for per-task replay/fan-out (an A2A task
// stream has identical replay and heartbeat semantics to an SSE session
// per spec §4.9).
//
// Grounded on ff9b65b8_TheApeMachine-a2a-go__pkg-service-a2a_server.go.go's
// Handlers() map[string]http.Handler wiring.
type Server struct {
	Registry          *sse.Registry
	Card              AgentCard
	Version           a2ui.ProtocolVersion
	Prefix            string
	RetryMS           int
	HeartbeatInterval time.Duration
	Limits            config.Limits
	OnMessage         MessageHandler

	mu    sync.Mutex
	tasks map[string]*Task
}

// NewServer builds an A2A server advertising card for version, backed by a
// fresh session registry with the given ring capacity.
func NewServer(card AgentCard, version a2ui.ProtocolVersion, prefix string, ringCap int, retryMS int, heartbeat time.Duration, limits config.Limits) *Server {
	return &Server{
		Registry:          sse.NewRegistry(ringCap),
		Card:              card,
		Version:           version,
		Prefix:            prefix,
		RetryMS:           retryMS,
		HeartbeatInterval: heartbeat,
		Limits:            limits,
		tasks:             make(map[string]*Task),
	}
}

// Handlers returns the mux-ready endpoint map.
func (s *Server) Handlers() map[string]http.Handler {
	return map[string]http.Handler{
		"/.well-known/agent.json": http.HandlerFunc(s.handleAgentCard),
		s.Prefix + "/a2a/tasks":   http.HandlerFunc(s.handleCreateTask),
		s.Prefix + "/a2a/tasks/":  http.HandlerFunc(s.handleTask),
	}
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-A2A-Extensions", ExtensionHeaderValue(s.Version))
	_ = json.NewEncoder(w).Encode(s.Card)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.checkExtensionHeader(w, r) {
		return
	}
	taskID := uuid.NewString()
	task := &Task{ID: taskID, State: TaskSubmitted}

	s.mu.Lock()
	s.tasks[taskID] = task
	s.mu.Unlock()

	s.Registry.CreateSessionWithID(taskID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"taskId": taskID})
}

// handleTask dispatches GET (stream) / POST (message) for a task id
// embedded in the path tail, since this server follows the teacher's flat
// handler-map wiring rather than a pattern-matching router.
func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	taskID := strings.TrimPrefix(r.URL.Path, s.Prefix+"/a2a/tasks/")
	if taskID == "" {
		http.Error(w, "task id required", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.streamTask(w, r, taskID)
	case http.MethodPost:
		s.messageTask(w, r, taskID)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) streamTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if !s.checkExtensionHeader(w, r) {
		return
	}
	var lastEventID uint64
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		lastEventID = sse.ParseEventID(v)
	}
	sub, replay, err := s.Registry.Subscribe(taskID, lastEventID)
	if err != nil {
		http.Error(w, "not_found", http.StatusNotFound)
		return
	}
	defer s.Registry.Unsubscribe(taskID, sub)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-A2A-Extensions", ExtensionHeaderValue(s.Version))
	w.WriteHeader(http.StatusOK)

	sse.WriteRetry(w, s.retryMS())
	flusher.Flush()
	for _, ev := range replay {
		sse.WriteEvent(w, ev)
	}
	flusher.Flush()

	ticker := time.NewTicker(s.heartbeat())
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Closed():
			return
		case ev := <-sub.Events():
			sse.WriteEvent(w, ev)
			flusher.Flush()
		case <-ticker.C:
			sse.WriteHeartbeat(w)
			flusher.Flush()
		}
	}
}

func (s *Server) messageTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if !s.checkExtensionHeader(w, r) {
		return
	}
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if s.OnMessage != nil {
		if err := s.OnMessage(taskID, msg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) checkExtensionHeader(w http.ResponseWriter, r *http.Request) bool {
	want := ExtensionHeaderValue(s.Version)
	got := r.Header.Get("X-A2A-Extensions")
	if got != "" && got != want {
		http.Error(w, "unsupported a2a extension version", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) retryMS() int {
	if s.RetryMS == 0 {
		return 3000
	}
	return s.RetryMS
}

func (s *Server) heartbeat() time.Duration {
	if s.HeartbeatInterval == 0 {
		return 30 * time.Second
	}
	return s.HeartbeatInterval
}
