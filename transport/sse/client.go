package sse

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tenzoki/a2ui-go/envelope"
	"github.com/tenzoki/a2ui-go/internal/config"
	"github.com/tenzoki/a2ui-go/transport"
)

// Client opens an SSE stream, parses frames per the SSE grammar, and
// redelivers each complete event's payload to a transport.Consumer as a
// parsed envelope (spec §4.8 "Client side ... delivers each complete
// event's payload to consumers").
//
// Reconnection uses github.com/cenkalti/backoff/v4's exponential bounded
// backoff, starting at 500 ms and capped at 30 s between attempts,
// replaying from the last seen event id on every reconnect attempt. The
// server's retry: hint is read but does not affect reconnect timing.
type Client struct {
	URL        string
	HTTPClient *http.Client
	Limits     config.Limits

	lastEventID uint64
}

// Run connects to c.URL and streams events to consumer until ctx is
// cancelled, reconnecting with backoff on transient failure.
func (c *Client) Run(ctx context.Context, consumer transport.Consumer) error {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0

	operation := func() error {
		err := c.connectOnce(ctx, httpClient, consumer)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	consumer.Done()
	return err
}

func (c *Client) connectOnce(ctx context.Context, httpClient *http.Client, consumer transport.Consumer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	if c.lastEventID > 0 {
		req.Header.Set("Last-Event-ID", strconv.FormatUint(c.lastEventID, 10))
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err // transient network error, retry with backoff
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return backoff.Permanent(fmt.Errorf("sse client: server returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sse client: server returned %d", resp.StatusCode)
	}

	return c.readFrames(resp, consumer)
}

// readFrames implements the SSE grammar (spec §6.2): id:/data:/retry:
// fields terminated by a blank line, comment lines starting with ':'
// ignored, consecutive data: lines joined by "\n".
func (c *Client) readFrames(resp *http.Response, consumer transport.Consumer) error {
	reader := bufio.NewReader(resp.Body)

	var dataLines []string
	var eventID uint64
	var haveID bool

	dispatch := func() {
		if len(dataLines) == 0 {
			dataLines = nil
			haveID = false
			return
		}
		data := strings.Join(dataLines, "\n")
		if haveID {
			c.lastEventID = eventID
		}
		env, perr := envelope.Parse([]byte(data), c.Limits)
		if perr == nil {
			consumer.Deliver(env)
		}
		dataLines = nil
		haveID = false
	}

	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			dispatch()
		} else if strings.HasPrefix(line, ":") {
			// comment, ignored
		} else if field, value, ok := splitField(line); ok {
			switch field {
			case "data":
				dataLines = append(dataLines, value)
			case "id":
				if n, parseErr := strconv.ParseUint(value, 10, 64); parseErr == nil {
					eventID = n
					haveID = true
				}
			case "retry":
				// advisory only; the client always uses its own backoff policy.
			}
		}

		if err != nil {
			dispatch()
			return err
		}
	}
}

func splitField(line string) (field, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, "", true
	}
	field = line[:idx]
	value = strings.TrimPrefix(line[idx+1:], " ")
	return field, value, true
}
