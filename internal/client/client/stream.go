package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/IndraPur1/ChatApp/internal/client/models"
)

const (
	reconnectMinDelay = time.Second
	reconnectMaxDelay = 30 * time.Second
)

// Subscribe opens the server-sent-events stream of message snapshots.
//
// Every event carries the complete ordered result set for the given order
// key. Snapshots are delivered on the returned channel in arrival order; the
// channel is closed when ctx is cancelled. Dropped connections are re-dialed
// with exponential backoff; a hiccup costs at most a stale view, never the
// subscription.
func (c *HTTPClient) Subscribe(ctx context.Context, orderKey string) (<-chan []models.Message, error) {
	ch := make(chan []models.Message)

	go func() {
		defer close(ch)

		var delay time.Duration
		for {
			delivered, err := c.streamOnce(ctx, orderKey, ch)
			if ctx.Err() != nil {
				return
			}

			delay = nextRetryDelay(delay, delivered)
			if err != nil {
				c.log.Warn(ctx, "message stream interrupted", "error", err, "retry_in", delay)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}()

	return ch, nil
}

// nextRetryDelay computes the wait before the next re-dial. A connection that
// delivered at least one snapshot was healthy, so the backoff restarts from
// the minimum instead of compounding across the whole session.
func nextRetryDelay(current time.Duration, delivered bool) time.Duration {
	if delivered {
		return reconnectMinDelay
	}
	return min(max(current*2, reconnectMinDelay), reconnectMaxDelay)
}

// streamOnce dials the stream endpoint and forwards decoded snapshots until
// the connection drops or ctx is cancelled. It reports whether at least one
// snapshot made it through.
func (c *HTTPClient) streamOnce(ctx context.Context, orderKey string, ch chan<- []models.Message) (delivered bool, _ error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/messages/stream?orderBy="+orderKey, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, &statusError{code: resp.StatusCode}
	}

	// A snapshot carries the whole log with inline images, so one data line
	// can run to tens of megabytes. Lines are read unbounded; a fixed token
	// limit would wedge the subscription on every reconnect once the log
	// outgrows it.
	reader := bufio.NewReaderSize(resp.Body, 64*1024)

	var data strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return delivered, nil
			}
			return delivered, err
		}
		line = strings.TrimRight(line, "\r\n")

		// Blank line terminates one SSE event.
		if line == "" {
			if data.Len() > 0 {
				var snapshot []models.Message
				if err := json.Unmarshal([]byte(data.String()), &snapshot); err != nil {
					c.log.Warn(ctx, "dropping undecodable snapshot", "error", err)
				} else {
					select {
					case ch <- snapshot:
						delivered = true
					case <-ctx.Done():
						return delivered, nil
					}
				}
				data.Reset()
			}
			continue
		}

		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			data.WriteString(strings.TrimPrefix(payload, " "))
		}
		// "event:", "id:" and comment lines are ignored.
	}
}
