// Package sse implements the HTTP+SSE transport: a session registry with a
// bounded event ring and PubSub fan-out, an SSE server exposing the five
// endpoints of spec §4.8, and a reconnecting SSE client.
//
// Grounded on other_examples/d6bf0ea4_alfredjeanlab-beads__internal-server-sse.go.go
// for the ring-buffer-plus-fan-out shape (sseHub/sseClient/eventsSince) and
// on internal/broker/service.go for the mutex-guarded session-map
// concurrency idiom.
package sse

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned by registry operations against an unknown
// session id (spec §4.8 "publish to a non-existent session returns
// not_found").
var ErrSessionNotFound = errors.New("sse: session not found")

// subscriberBuffer bounds how many pending events a slow subscriber may
// accumulate before being disconnected (spec §5 "PubSub fan-out buffers
// per subscriber up to an implementation-defined bound, after which the
// slow subscriber is disconnected with an error").
const subscriberBuffer = 256

// Event is one ring-buffered, replayable SSE frame.
type Event struct {
	ID   uint64
	Data []byte
}

type Subscription struct {
	ch     chan Event
	closed chan struct{}
}

// Events returns the channel live events are delivered on.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Closed returns a channel that closes when the subscription has been
// dropped (spec §5 backpressure rule).
func (s *Subscription) Closed() <-chan struct{} { return s.closed }

type sessionEntry struct {
	mu          sync.Mutex
	nextID      uint64
	ring        []Event
	ringCap     int
	subscribers map[*Subscription]struct{}
	log         *zap.Logger
}

func newSessionEntry(ringCap int, log *zap.Logger) *sessionEntry {
	return &sessionEntry{ringCap: ringCap, subscribers: map[*Subscription]struct{}{}, log: log}
}

func (s *sessionEntry) publish(data []byte) Event {
	s.mu.Lock()
	s.nextID++
	ev := Event{ID: s.nextID, Data: data}
	s.ring = append(s.ring, ev)
	if len(s.ring) > s.ringCap {
		s.ring = s.ring[len(s.ring)-s.ringCap:]
	}
	subs := make([]*Subscription, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.ch <- ev:
		default:
			// Slow subscriber: drop the connection rather than block fan-out
			// to everyone else (spec §5 backpressure rule).
			s.log.Warn("sse subscriber disconnected: buffer full", zap.Int("buffer", subscriberBuffer))
			close(sub.closed)
			s.mu.Lock()
			delete(s.subscribers, sub)
			s.mu.Unlock()
		}
	}
	return ev
}

// subscribeWithReplay registers a new subscriber and computes its replay
// slice under one held lock, so a Broadcast racing with this call always
// lands in exactly one of the two: the replay slice (if it was published
// first) or the subscriber's live channel (if it was published after the
// subscriber was added), never neither (spec §5 "never drop a server
// envelope").
func (s *sessionEntry) subscribeWithReplay(lastID uint64) (*Subscription, []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var replay []Event
	for _, ev := range s.ring {
		if ev.ID > lastID {
			replay = append(replay, ev)
		}
	}

	sub := &Subscription{ch: make(chan Event, subscriberBuffer), closed: make(chan struct{})}
	s.subscribers[sub] = struct{}{}
	return sub, replay
}

func (s *sessionEntry) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	delete(s.subscribers, sub)
	s.mu.Unlock()
}

// Registry is the process-wide, per-session event registry (spec §4.8
// "Session registry").
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	ringCap  int
	log      *zap.Logger
}

// NewRegistry builds an empty registry with the given per-session event
// ring capacity (spec §6.5 default 100).
func NewRegistry(ringCap int) *Registry {
	if ringCap <= 0 {
		ringCap = 100
	}
	return &Registry{sessions: map[string]*sessionEntry{}, ringCap: ringCap, log: zap.NewNop()}
}

// SetLogger attaches a structured logger used to report backpressure
// disconnects (spec §5).
func (r *Registry) SetLogger(log *zap.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = log
}

// CreateSession allocates a new session id and registry entry (spec §4.8
// "POST /sessions creates a session id").
func (r *Registry) CreateSession() string {
	id := uuid.NewString()
	r.CreateSessionWithID(id)
	return id
}

// CreateSessionWithID registers a registry entry under a caller-chosen id,
// for transports (A2A task ids) that mint their own identifiers instead of
// delegating id generation to the registry (spec §4.9 "an A2A task stream
// has identical replay and heartbeat semantics to an SSE session").
func (r *Registry) CreateSessionWithID(id string) {
	r.mu.Lock()
	r.sessions[id] = newSessionEntry(r.ringCap, r.log)
	r.mu.Unlock()
}

func (r *Registry) get(sessionID string) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sessionID]
	return e, ok
}

// Broadcast publishes data to every subscriber of sessionID and stores it
// in the replay ring (spec §4.8 "broadcast(session_id, envelope)").
func (r *Registry) Broadcast(sessionID string, data []byte) (Event, error) {
	e, ok := r.get(sessionID)
	if !ok {
		return Event{}, ErrSessionNotFound
	}
	return e.publish(data), nil
}

// Subscribe registers a new subscriber for sessionID and returns any
// buffered events with id > lastEventID for immediate replay (spec §4.8
// "On SSE reconnect with Last-Event-ID: n, the server replays stored
// events with id > n in ascending order before resuming live delivery").
func (r *Registry) Subscribe(sessionID string, lastEventID uint64) (*Subscription, []Event, error) {
	e, ok := r.get(sessionID)
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	sub, replay := e.subscribeWithReplay(lastEventID)
	return sub, replay, nil
}

// Unsubscribe removes sub from sessionID's subscriber set.
func (r *Registry) Unsubscribe(sessionID string, sub *Subscription) {
	if e, ok := r.get(sessionID); ok {
		e.unsubscribe(sub)
	}
}

// Exists reports whether sessionID is a known session.
func (r *Registry) Exists(sessionID string) bool {
	_, ok := r.get(sessionID)
	return ok
}
