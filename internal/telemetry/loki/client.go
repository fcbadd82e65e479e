// Package loki pushes company auth events to Grafana Loki. The event worker is its only caller.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/telemetry"
)

// JobLabel is the job label of every stream pushed by this package.
const JobLabel = "staffflow"

const pushPath = "/loki/api/v1/push"

// ErrNoBaseURL is returned by NewClient when LOKI_URL is empty.
var ErrNoBaseURL = errors.New("loki: base URL is empty")

// Entry is one log line with the labels of the stream it belongs to.
type Entry struct {
	Time   time.Time
	Line   string
	Labels map[string]string
}

// EntryFromEvent turns a serialized telemetry.Event (a Kafka message value) into an entry labelled
// by event type and source. The company ID stays in the line; it would explode label cardinality.
// Payloads that do not decode are kept verbatim at received.
func EntryFromEvent(raw []byte, received time.Time) Entry {
	e := Entry{Time: received, Line: string(raw), Labels: map[string]string{}}
	var ev telemetry.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return e
	}
	if ev.EventType != "" {
		e.Labels["event_type"] = ev.EventType
	}
	if ev.Source != "" {
		e.Labels["source"] = ev.Source
	}
	if !ev.CreatedAt.IsZero() {
		e.Time = ev.CreatedAt
	}
	return e
}

// Client pushes entries to a single Loki instance.
type Client struct {
	pushURL string
	http    *http.Client
}

// NewClient returns a client for baseURL (e.g. http://localhost:3100). A nil httpClient gets a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{pushURL: baseURL + pushPath, http: httpClient}, nil
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Labels map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// Push sends entries in one request, one stream per distinct label set. Non-2xx responses are errors.
func (c *Client) Push(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	payload, err := json.Marshal(buildRequest(entries))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pushURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("loki: push: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}

func buildRequest(entries []Entry) pushRequest {
	var req pushRequest
	index := map[string]int{}
	for _, e := range entries {
		labels := streamLabels(e.Labels)
		key := labelKey(labels)
		i, ok := index[key]
		if !ok {
			i = len(req.Streams)
			index[key] = i
			req.Streams = append(req.Streams, stream{Labels: labels})
		}
		req.Streams[i].Values = append(req.Streams[i].Values, [2]string{strconv.FormatInt(e.Time.UnixNano(), 10), e.Line})
	}
	return req
}

// streamLabels adds the job label and drops labels whose value is blank after sanitizing.
func streamLabels(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		if v = sanitize(v); v != "" {
			out[k] = v
		}
	}
	out["job"] = JobLabel
	return out
}

func labelKey(labels map[string]string) string {
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}

// sanitize keeps [A-Za-z0-9_:-] and replaces everything else with '_'.
func sanitize(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(v))
}
