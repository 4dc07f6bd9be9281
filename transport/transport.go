// Package transport defines the two contracts every conduit (local,
// HTTP+SSE, A2A) implements: UIStream for server→client envelope delivery
// and Events for client→server action/error posting (spec §2 item 9).
package transport

import (
	"context"

	"github.com/tenzoki/a2ui-go/envelope"
)

// Consumer receives envelopes delivered by a UIStream for one surface, in
// order, followed by exactly one Done call when the stream ends (spec §4.7
// "close drains and signals completion"; §5 "closing a UIStream for a
// surface causes the consumer to receive a single done signal").
type Consumer interface {
	Deliver(env *envelope.Envelope)
	Done()
}

// ConsumerFunc adapts a plain envelope callback to a Consumer, for callers
// that don't care about the Done signal.
type ConsumerFunc func(env *envelope.Envelope)

func (f ConsumerFunc) Deliver(env *envelope.Envelope) { f(env) }
func (f ConsumerFunc) Done()                          {}

// UIStream is the server→client conduit: a producer emits envelopes, a
// consumer registered per surface id receives them (spec §2 item 9, §4.7).
type UIStream interface {
	// Open registers consumer to receive every envelope subsequently emitted
	// for surfaceID.
	Open(surfaceID string, consumer Consumer) error
	// Close ends delivery for surfaceID; the registered consumer receives a
	// final Done() call.
	Close(surfaceID string)
}

// OutboundEvent is one client→server action or error envelope, optionally
// accompanied by a data-model broadcast snapshot (spec §4.6).
type OutboundEvent struct {
	Envelope  map[string]interface{}
	Broadcast map[string]interface{}
}

// Events is the client→server conduit: posting action/error envelopes with
// an optional data broadcast (spec §2 item 9).
type Events interface {
	Post(ctx context.Context, sessionID string, ev OutboundEvent) error
}
