package scorecheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Client is a thin HTTP client for the GAGE API surface the harness uses.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a harness client for the server at baseURL.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// ScorePayload mirrors the relevant part of GET /api/score/{id}.
type ScorePayload struct {
	ClientID int64   `json:"client_id"`
	Score    float64 `json:"score"`
	Tier     string  `json:"tier"`
	Decision string  `json:"decision"`
}

// ReloadAck mirrors the response of POST /api/reload.
type ReloadAck struct {
	Status       string `json:"status"`
	RecordCount  int    `json:"record_count"`
	SkippedCount int    `json:"skipped_count"`
}

// Health checks that the server answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer drainClose(res)
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: unexpected status %d", res.StatusCode)
	}
	return nil
}

// Reload asks the server to replace its snapshot and returns the ack.
func (c *Client) Reload(ctx context.Context) (ReloadAck, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/reload", nil)
	if err != nil {
		return ReloadAck{}, fmt.Errorf("build reload request: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return ReloadAck{}, fmt.Errorf("reload: %w", err)
	}
	defer drainClose(res)
	if res.StatusCode != http.StatusOK {
		return ReloadAck{}, fmt.Errorf("reload: unexpected status %d", res.StatusCode)
	}
	var ack ReloadAck
	if err := json.NewDecoder(res.Body).Decode(&ack); err != nil {
		return ReloadAck{}, fmt.Errorf("decode reload ack: %w", err)
	}
	return ack, nil
}

// Score fetches the served score for one client id.
func (c *Client) Score(ctx context.Context, id int64) (ScorePayload, error) {
	url := c.baseURL + "/api/score/" + strconv.FormatInt(id, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ScorePayload{}, fmt.Errorf("build score request: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return ScorePayload{}, fmt.Errorf("score %d: %w", id, err)
	}
	defer drainClose(res)
	if res.StatusCode != http.StatusOK {
		return ScorePayload{}, fmt.Errorf("score %d: unexpected status %d", id, res.StatusCode)
	}
	var payload ScorePayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return ScorePayload{}, fmt.Errorf("decode score %d: %w", id, err)
	}
	return payload, nil
}

// drainClose empties and closes the body so connections get reused.
func drainClose(res *http.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
