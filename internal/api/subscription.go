package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrSubscriptionClosed marks a deliberate Close of a job subscription,
// as opposed to a transport failure.
var ErrSubscriptionClosed = errors.New("subscription closed")

// JobSubscription is a cancellable handle on a job's server-push event
// stream. Events are delivered in arrival order on Events; the channel is
// closed after a terminal event, a transport failure, or Close. Err reports
// the transport error, if any, once Events is closed.
type JobSubscription struct {
	jobID  string
	events chan JobEvent
	cancel context.CancelFunc
	err    error // written by the reader goroutine before events is closed
}

// Subscribe opens the event stream for jobID. The connection stays open
// until a terminal event arrives or Close is called.
func (c *Client) Subscribe(ctx context.Context, jobID string) (*JobSubscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	u := fmt.Sprintf("%s/api/jobs/%s", c.baseURL, escapeRef(jobID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %q: %w", jobID, err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// A long-lived stream must not inherit the client's request timeout.
	resp, err := (&http.Client{Transport: c.httpClient.Transport}).Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %q: %w", jobID, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("subscribe %q: %s", jobID, httpStatusError(resp))
	}

	sub := &JobSubscription{
		jobID:  jobID,
		events: make(chan JobEvent, 16),
		cancel: cancel,
	}
	go sub.read(ctx, resp)
	return sub, nil
}

// Events returns the ordered event channel. It is closed when the stream
// ends for any reason; check Err afterwards to distinguish transport loss.
func (s *JobSubscription) Events() <-chan JobEvent {
	return s.events
}

// Err reports why the stream ended. It is valid only after Events is closed:
// nil for a terminal pipeline event, ErrSubscriptionClosed after Close, and
// the transport error otherwise.
func (s *JobSubscription) Err() error {
	return s.err
}

// JobID returns the job this subscription belongs to.
func (s *JobSubscription) JobID() string {
	return s.jobID
}

// Close cancels the underlying connection. Safe to call more than once and
// concurrently with event delivery.
func (s *JobSubscription) Close() {
	s.cancel()
}

func (s *JobSubscription) read(ctx context.Context, resp *http.Response) {
	defer resp.Body.Close()
	defer close(s.events)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()

		// SSE framing: "data:" lines accumulate until a blank line ends the event.
		if strings.HasPrefix(line, "data:") {
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			continue
		}
		if line != "" || data.Len() == 0 {
			continue
		}

		payload := data.String()
		data.Reset()

		var ev JobEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			// A malformed frame is not fatal to the stream.
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			s.err = ErrSubscriptionClosed
			return
		}

		if ev.Terminal() {
			return
		}
	}

	if ctx.Err() != nil {
		s.err = ErrSubscriptionClosed
		return
	}
	if err := scanner.Err(); err != nil {
		s.err = fmt.Errorf("event stream lost: %w", err)
		return
	}
	// EOF without a terminal event: the server went away mid-job.
	s.err = errors.New("event stream ended before job completed")
}
