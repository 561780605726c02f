package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eventboard/internal/domain"
)

// statsTimeFormat is the timestamp layout the stats service expects.
const statsTimeFormat = "2006-01-02 15:04:05"

type httpViewCounter struct {
	client  *http.Client
	baseURL string
	app     string
}

// NewHTTPViewCounter returns a ViewCounter backed by the stats service at
// baseURL. Hits are recorded under the given application name.
func NewHTTPViewCounter(client *http.Client, baseURL, app string) domain.ViewCounter {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpViewCounter{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		app:     app,
	}
}

type endpointHit struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type viewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

func (c *httpViewCounter) RecordHit(ctx context.Context, uri, clientIP string, at time.Time) error {
	body, err := json.Marshal(endpointHit{
		App:       c.app,
		URI:       uri,
		IP:        clientIP,
		Timestamp: at.Format(statsTimeFormat),
	})
	if err != nil {
		return fmt.Errorf("failed to encode hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post hit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("stats service returned status: %d", resp.StatusCode)
	}
	return nil
}

func (c *httpViewCounter) ViewsFor(ctx context.Context, eventIDs []string, start, end time.Time) (map[string]int64, error) {
	if len(eventIDs) == 0 {
		return map[string]int64{}, nil
	}

	q := url.Values{}
	q.Set("start", start.Format(statsTimeFormat))
	q.Set("end", end.Format(statsTimeFormat))
	q.Set("unique", "true")
	for _, id := range eventIDs {
		q.Add("uris", "/events/"+id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned status: %d", resp.StatusCode)
	}

	var data []viewStats
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}

	views := make(map[string]int64, len(data))
	for _, vs := range data {
		id, ok := strings.CutPrefix(vs.URI, "/events/")
		if !ok {
			continue
		}
		views[id] = vs.Hits
	}
	return views, nil
}

type noopViewCounter struct{}

// NewNoopViewCounter returns a ViewCounter that records nothing and reports
// zero views. Used when no stats service is configured.
func NewNoopViewCounter() domain.ViewCounter {
	return &noopViewCounter{}
}

func (n *noopViewCounter) RecordHit(ctx context.Context, uri, clientIP string, at time.Time) error {
	return nil
}

func (n *noopViewCounter) ViewsFor(ctx context.Context, eventIDs []string, start, end time.Time) (map[string]int64, error) {
	return map[string]int64{}, nil
}
