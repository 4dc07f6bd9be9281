// Package local implements the in-process transport: a producer and a
// consumer bound by a channel, no reordering, no loss (spec §4.7).
//
// Grounded on internal/broker/service.go's Pipe (Name, Producer, Consumer,
// a buffered Envelopes channel) — the same producer/consumer-over-channel
// shape, narrowed from the broker's named pipe registry to one channel per
// surface.
package local

import (
	"context"
	"fmt"
	"sync"

	"github.com/tenzoki/a2ui-go/envelope"
	"github.com/tenzoki/a2ui-go/transport"
)

const pipeBuffer = 64

type pipe struct {
	ch   chan *envelope.Envelope
	done chan struct{}
}

// Transport implements both transport.UIStream and transport.Events
// in-process.
type Transport struct {
	mu    sync.Mutex
	pipes map[string]*pipe

	eventHandler func(ctx context.Context, sessionID string, ev transport.OutboundEvent) error
}

// New builds an empty local transport.
func New() *Transport {
	return &Transport{pipes: map[string]*pipe{}}
}

// SetEventHandler installs the function invoked by Post (client→server
// events). Typically wired to Session.ApplyEnvelope for a local producer
// that also consumes its own actions.
func (t *Transport) SetEventHandler(fn func(ctx context.Context, sessionID string, ev transport.OutboundEvent) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.eventHandler = fn
}

// Open registers consumer for surfaceID and starts the in-process delivery
// loop (spec §4.7 "the consumer registered via open(surface_id, consumer)
// receives envelopes in order").
func (t *Transport) Open(surfaceID string, consumer transport.Consumer) error {
	t.mu.Lock()
	if _, exists := t.pipes[surfaceID]; exists {
		t.mu.Unlock()
		return fmt.Errorf("local transport: surface %q already open", surfaceID)
	}
	p := &pipe{ch: make(chan *envelope.Envelope, pipeBuffer), done: make(chan struct{})}
	t.pipes[surfaceID] = p
	t.mu.Unlock()

	go func() {
		for {
			select {
			case env, ok := <-p.ch:
				if !ok {
					consumer.Done()
					return
				}
				consumer.Deliver(env)
			case <-p.done:
				for {
					select {
					case env := <-p.ch:
						consumer.Deliver(env)
					default:
						consumer.Done()
						return
					}
				}
			}
		}
	}()
	return nil
}

// Emit delivers env to the consumer open for surfaceID, in order (spec
// §4.7 "the producer calls emit(envelope)").
func (t *Transport) Emit(surfaceID string, env *envelope.Envelope) error {
	t.mu.Lock()
	p, ok := t.pipes[surfaceID]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("local transport: no consumer open for surface %q", surfaceID)
	}
	p.ch <- env
	return nil
}

// Close drains and signals completion for surfaceID (spec §4.7 "close
// drains and signals completion"). Idempotent.
func (t *Transport) Close(surfaceID string) {
	t.mu.Lock()
	p, ok := t.pipes[surfaceID]
	delete(t.pipes, surfaceID)
	t.mu.Unlock()
	if ok {
		close(p.done)
	}
}

// Post hands an outbound client→server event to the installed handler
// (spec §2 item 9, Events contract).
func (t *Transport) Post(ctx context.Context, sessionID string, ev transport.OutboundEvent) error {
	t.mu.Lock()
	fn := t.eventHandler
	t.mu.Unlock()
	if fn == nil {
		return fmt.Errorf("local transport: no event handler installed")
	}
	return fn(ctx, sessionID, ev)
}
