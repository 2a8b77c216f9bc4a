package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const PERSONALIZE_PATH = "/api/personalize"
const DEFAULT_SERVER_URL = "http://localhost:5000"

type Client struct {
	baseUrl    string
	httpClient *http.Client
}

func NewClient(baseUrl string) *Client {
	if baseUrl == "" {
		baseUrl = DEFAULT_SERVER_URL
	}
	return &Client{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		httpClient: &http.Client{},
	}
}

// Generate submits a request and consumes the resulting stream. Cancel ctx to
// stop reading; the server then aborts its upstream call.
func (c *Client) Generate(ctx context.Context, handle string, motive string, observe Observer) (State, error) {
	body, err := json.Marshal(map[string]string{
		"handle": handle,
		"motive": motive,
	})
	if err != nil {
		return State{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+PERSONALIZE_PATH, bytes.NewReader(body))
	if err != nil {
		return State{}, fmt.Errorf("error create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return State{}, fmt.Errorf("error send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return State{}, fmt.Errorf("personalize status not 200(%d): %s", resp.StatusCode, raw)
	}
	return Consume(ctx, resp.Body, observe)
}
