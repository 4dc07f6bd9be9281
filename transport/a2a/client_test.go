package a2a_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/envelope"
	"github.com/tenzoki/a2ui-go/internal/config"
	"github.com/tenzoki/a2ui-go/transport/a2a"
)

type recordingConsumer struct {
	mu      sync.Mutex
	kinds   []envelope.Kind
	doneCh  chan struct{}
	doneHit bool
}

func newRecordingConsumer() *recordingConsumer {
	return &recordingConsumer{doneCh: make(chan struct{})}
}

func (c *recordingConsumer) Deliver(env *envelope.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kinds = append(c.kinds, env.Kind)
}

func (c *recordingConsumer) Done() {
	c.mu.Lock()
	c.doneHit = true
	c.mu.Unlock()
	close(c.doneCh)
}

func (c *recordingConsumer) seenKinds() []envelope.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]envelope.Kind(nil), c.kinds...)
}

func TestAgentClientDiscoverSucceeds(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	client := a2a.NewAgentClient(ts.URL, a2ui.V0_9, config.Default().Limits)
	card, err := client.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-agent", card.Name)
}

func TestAgentClientDiscoverFailsOnVersionMismatch(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	client := a2a.NewAgentClient(ts.URL, a2ui.V0_8, config.Default().Limits)
	_, err := client.Discover(context.Background())
	assert.Error(t, err)
}

func TestAgentClientCreateTaskAndPostMessage(t *testing.T) {
	srv, ts := newTestServer()
	defer ts.Close()

	var gotTaskID string
	srv.OnMessage = func(taskID string, msg a2a.Message) error {
		gotTaskID = taskID
		return nil
	}

	client := a2a.NewAgentClient(ts.URL, a2ui.V0_9, config.Default().Limits)
	taskID, err := client.CreateTask(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	msg := a2a.WrapEnvelope(a2a.RoleUser, map[string]interface{}{
		"action": map[string]interface{}{"name": "submit"},
	})
	require.NoError(t, client.PostMessage(context.Background(), taskID, msg))
	assert.Equal(t, taskID, gotTaskID)
}

func TestAgentClientStreamTaskDeliversEnvelope(t *testing.T) {
	srv, ts := newTestServer()
	defer ts.Close()

	client := a2a.NewAgentClient(ts.URL, a2ui.V0_9, config.Default().Limits)
	taskID, err := client.CreateTask(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	consumer := newRecordingConsumer()
	go func() { _ = client.StreamTask(ctx, taskID, consumer) }()

	time.Sleep(50 * time.Millisecond)

	msg := a2a.WrapEnvelope(a2a.RoleAgent, map[string]interface{}{
		"deleteSurface": map[string]interface{}{"surfaceId": "s1"},
	})
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	_, err = srv.Registry.Broadcast(taskID, raw)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(consumer.seenKinds()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, envelope.KindDeleteSurface, consumer.seenKinds()[0])

	cancel()
	select {
	case <-consumer.doneCh:
	case <-time.After(time.Second):
		t.Fatal("expected Done() to fire after context cancellation")
	}
}
