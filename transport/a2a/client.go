package a2a

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/internal/config"
	"github.com/tenzoki/a2ui-go/transport"
)

// AgentClient discovers an A2A agent, creates tasks, and streams task
// messages, unwrapping the A2UI envelopes carried in each A2A Message
// (spec §4.9).
//
// Grounded on transport/sse/client.go's reconnect-and-parse loop, adapted
// for the extra A2A Message-wrapper layer around each SSE frame.
type AgentClient struct {
	BaseURL     string
	Version     a2ui.ProtocolVersion
	HTTPClient  *http.Client
	Limits      config.Limits
	lastEventID uint64
}

// NewAgentClient builds a client for baseURL speaking protocol version.
func NewAgentClient(baseURL string, version a2ui.ProtocolVersion, limits config.Limits) *AgentClient {
	return &AgentClient{BaseURL: baseURL, Version: version, HTTPClient: http.DefaultClient, Limits: limits}
}

func (c *AgentClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Discover fetches the agent descriptor and verifies it advertises the
// extension URI for c.Version (spec §4.9 "Client checks that the
// descriptor lists the matching a2ui extension URI for its version").
func (c *AgentClient) Discover(ctx context.Context) (AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/.well-known/agent.json", nil)
	if err != nil {
		return AgentCard{}, err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return AgentCard{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return AgentCard{}, fmt.Errorf("a2a: discover failed with status %d", resp.StatusCode)
	}
	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return AgentCard{}, err
	}
	if !SupportsExtension(card, c.Version) {
		return card, fmt.Errorf("a2a: agent does not advertise extension %s", ExtensionHeaderValue(c.Version))
	}
	return card, nil
}

// CreateTask creates a new task and returns its id.
func (c *AgentClient) CreateTask(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/a2a/tasks", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-A2A-Extensions", ExtensionHeaderValue(c.Version))
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("a2a: create task failed with status %d", resp.StatusCode)
	}
	var body struct {
		TaskID string `json:"taskId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.TaskID, nil
}

// PostMessage sends msg to taskID (spec §4.9 "client sends its response as
// a task message").
func (c *AgentClient) PostMessage(ctx context.Context, taskID string, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/a2a/tasks/"+taskID, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-A2A-Extensions", ExtensionHeaderValue(c.Version))
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("a2a: post message failed with status %d", resp.StatusCode)
	}
	return nil
}

// StreamTask streams taskID's events, extracting and delivering each A2UI
// envelope carried in the task's Messages to consumer, reconnecting with
// backoff until ctx is canceled (spec §4.9 "identical replay and heartbeat
// semantics as §4.8").
func (c *AgentClient) StreamTask(ctx context.Context, taskID string, consumer transport.Consumer) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0

	operation := func() error {
		return c.connectOnce(ctx, taskID, consumer)
	}
	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	consumer.Done()
	return err
}

func (c *AgentClient) connectOnce(ctx context.Context, taskID string, consumer transport.Consumer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/a2a/tasks/"+taskID, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-A2A-Extensions", ExtensionHeaderValue(c.Version))
	if c.lastEventID > 0 {
		req.Header.Set("Last-Event-ID", strconv.FormatUint(c.lastEventID, 10))
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return backoff.Permanent(fmt.Errorf("a2a: stream task failed with status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("a2a: stream task failed with status %d", resp.StatusCode)
	}

	return c.readFrames(resp, consumer)
}

func (c *AgentClient) readFrames(resp *http.Response, consumer transport.Consumer) error {
	reader := bufio.NewReader(resp.Body)
	var dataLines []string

	flush := func() {
		if len(dataLines) == 0 {
			return
		}
		joined := strings.Join(dataLines, "\n")
		dataLines = nil

		var msg Message
		if err := json.Unmarshal([]byte(joined), &msg); err != nil {
			return
		}
		envelopes, _ := ExtractEnvelopes(msg, c.Limits)
		for _, env := range envelopes {
			consumer.Deliver(env)
		}
	}

	for {
		line, err := reader.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")

		if trimmed == "" {
			flush()
		} else if strings.HasPrefix(trimmed, ":") {
			// comment / heartbeat, ignore
		} else if field, value, ok := splitField(trimmed); ok {
			switch field {
			case "data":
				dataLines = append(dataLines, value)
			case "id":
				if id, perr := strconv.ParseUint(value, 10, 64); perr == nil {
					c.lastEventID = id
				}
			case "retry":
				// advisory only; backoff governs actual reconnect timing
			}
		}

		if err != nil {
			if err == io.EOF {
				flush()
			}
			return err
		}
	}
}

func splitField(line string) (field, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	field = line[:idx]
	value = strings.TrimPrefix(line[idx+1:], " ")
	return field, value, true
}
