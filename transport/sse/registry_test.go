package sse

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionAndBroadcast(t *testing.T) {
	r := NewRegistry(100)
	id := r.CreateSession()
	assert.True(t, r.Exists(id))

	sub, replay, err := r.Subscribe(id, 0)
	require.NoError(t, err)
	assert.Empty(t, replay)

	ev, err := r.Broadcast(id, []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ev.ID)

	select {
	case got := <-sub.ch:
		assert.Equal(t, ev.ID, got.ID)
	default:
		t.Fatal("expected buffered event for live subscriber")
	}
}

func TestBroadcastUnknownSessionReturnsNotFound(t *testing.T) {
	r := NewRegistry(100)
	_, err := r.Broadcast("missing", []byte(`{}`))
	assert.Equal(t, ErrSessionNotFound, err)
}

func TestSubscribeReplaysEventsSinceLastID(t *testing.T) {
	r := NewRegistry(100)
	id := r.CreateSession()

	for i := 0; i < 3; i++ {
		_, err := r.Broadcast(id, []byte(`{"i":`+string(rune('0'+i))+`}`))
		require.NoError(t, err)
	}

	_, replay, err := r.Subscribe(id, 1)
	require.NoError(t, err)
	require.Len(t, replay, 2)
	assert.Equal(t, uint64(2), replay[0].ID)
	assert.Equal(t, uint64(3), replay[1].ID)
}

func TestRingBufferBoundedByCapacity(t *testing.T) {
	r := NewRegistry(2)
	id := r.CreateSession()
	for i := 0; i < 5; i++ {
		_, err := r.Broadcast(id, []byte(`{}`))
		require.NoError(t, err)
	}
	_, replay, err := r.Subscribe(id, 0)
	require.NoError(t, err)
	assert.Len(t, replay, 2)
	assert.Equal(t, uint64(4), replay[0].ID)
	assert.Equal(t, uint64(5), replay[1].ID)
}

// TestSubscribeDuringConcurrentBroadcastNeverDropsAnEvent guards against the
// replay-computation and subscriber-registration happening as two separate
// locked sections: an event broadcast in the gap between them would land in
// neither the replay slice nor the new subscriber's channel.
func TestSubscribeDuringConcurrentBroadcastNeverDropsAnEvent(t *testing.T) {
	r := NewRegistry(1000)
	id := r.CreateSession()

	const n = 200
	broadcastErrs := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= n; i++ {
			if _, err := r.Broadcast(id, []byte(fmt.Sprintf(`{"i":%d}`, i))); err != nil {
				broadcastErrs <- err
				return
			}
		}
	}()

	time.Sleep(time.Millisecond)
	sub, replay, err := r.Subscribe(id, 0)
	require.NoError(t, err)

	seen := map[uint64]bool{}
	for _, ev := range replay {
		seen[ev.ID] = true
	}

	deadline := time.After(2 * time.Second)
collect:
	for {
		select {
		case ev := <-sub.ch:
			seen[ev.ID] = true
		case berr := <-broadcastErrs:
			t.Fatalf("broadcast failed: %v", berr)
		case <-done:
			for {
				select {
				case ev := <-sub.ch:
					seen[ev.ID] = true
				default:
					break collect
				}
			}
		case <-deadline:
			t.Fatal("timed out waiting for events")
		}
	}

	require.NotEmpty(t, seen)
	var minID, maxID uint64
	minID = ^uint64(0)
	for id := range seen {
		if id < minID {
			minID = id
		}
		if id > maxID {
			maxID = id
		}
	}
	for want := minID; want <= maxID; want++ {
		assert.True(t, seen[want], "missing event id %d in contiguous range [%d,%d]", want, minID, maxID)
	}
}

func TestUnsubscribeRemovesSubscriber(t *testing.T) {
	r := NewRegistry(100)
	id := r.CreateSession()
	sub, _, err := r.Subscribe(id, 0)
	require.NoError(t, err)

	r.Unsubscribe(id, sub)
	e, _ := r.get(id)
	e.mu.Lock()
	_, exists := e.subscribers[sub]
	e.mu.Unlock()
	assert.False(t, exists)
}
