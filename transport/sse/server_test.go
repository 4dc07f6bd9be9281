package sse_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenzoki/a2ui-go/transport/sse"
)

func newTestServer() (*sse.Server, *httptest.Server) {
	registry := sse.NewRegistry(10)
	srv := sse.NewServer(registry, "", 3000, 0)
	mux := http.NewServeMux()
	for path, handler := range srv.Handlers() {
		mux.Handle(path, handler)
	}
	return srv, httptest.NewServer(mux)
}

func TestCreateSessionEndpoint(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["sessionId"])
}

func TestMessageEndpointNotFoundForUnknownSession(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	payload, _ := json.Marshal(map[string]interface{}{"sessionId": "nope", "message": map[string]string{"a": "b"}})
	resp, err := http.Post(ts.URL+"/message", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventsEndpointInvokesHandler(t *testing.T) {
	srv, ts := newTestServer()
	defer ts.Close()

	var gotSession string
	var gotEvent map[string]interface{}
	srv.OnEvent = func(sessionID string, event map[string]interface{}) error {
		gotSession = sessionID
		gotEvent = event
		return nil
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"sessionId": "s1",
		"event":     map[string]interface{}{"action": map[string]interface{}{"name": "submit"}},
	})
	resp, err := http.Post(ts.URL+"/events", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "s1", gotSession)
	assert.NotNil(t, gotEvent["action"])
}

func TestDoneEndpointBroadcastsMarker(t *testing.T) {
	srv, ts := newTestServer()
	defer ts.Close()

	createResp, err := http.Post(ts.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(createResp.Body).Decode(&body))
	createResp.Body.Close()

	payload, _ := json.Marshal(map[string]string{"sessionId": body["sessionId"]})
	resp, err := http.Post(ts.URL+"/done", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, replay, err := srv.Registry.Subscribe(body["sessionId"], 0)
	require.NoError(t, err)
	require.Len(t, replay, 1)
	assert.JSONEq(t, `{"done":true}`, string(replay[0].Data))
}
