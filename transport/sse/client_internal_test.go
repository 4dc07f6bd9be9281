package sse

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenzoki/a2ui-go/envelope"
	"github.com/tenzoki/a2ui-go/internal/config"
)

type recordingConsumer struct {
	kinds []envelope.Kind
	done  bool
}

func (c *recordingConsumer) Deliver(env *envelope.Envelope) { c.kinds = append(c.kinds, env.Kind) }
func (c *recordingConsumer) Done()                          { c.done = true }

func TestReadFramesParsesMultipleEventsAndTracksLastID(t *testing.T) {
	body := "retry: 3000\n\n" +
		"id: 1\ndata: {\"deleteSurface\":{\"surfaceId\":\"s\"}}\n\n" +
		": heartbeat\n\n" +
		"id: 2\ndata: {\"deleteSurface\":{\"surfaceId\":\"s2\"}}\n\n"

	resp := &http.Response{Body: io.NopCloser(strings.NewReader(body))}
	c := &Client{Limits: config.Default().Limits}
	consumer := &recordingConsumer{}

	err := c.readFrames(resp, consumer)
	require.Equal(t, io.EOF, err)

	assert.Equal(t, []envelope.Kind{envelope.KindDeleteSurface, envelope.KindDeleteSurface}, consumer.kinds)
	assert.Equal(t, uint64(2), c.lastEventID)
}

func TestReadFramesJoinsMultilineData(t *testing.T) {
	body := "id: 1\ndata: {\"deleteSurface\":{\"surfaceId\":\ndata: \"s\"}}\n\n"
	resp := &http.Response{Body: io.NopCloser(strings.NewReader(body))}
	c := &Client{Limits: config.Default().Limits}
	consumer := &recordingConsumer{}

	_ = c.readFrames(resp, consumer)
	require.Len(t, consumer.kinds, 1)
	assert.Equal(t, envelope.KindDeleteSurface, consumer.kinds[0])
}
