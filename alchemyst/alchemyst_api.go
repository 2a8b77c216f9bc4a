package alchemyst

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const ROLE_USER = "user"

const ALCHEMYST_API_URL = "https://platform-backend.getalchemystai.com/api/v1/chat/generate/stream"
const DEFAULT_PERSONA = "maya"
const DEFAULT_SCOPE = "internal"
const DEFAULT_TIMEOUT = 30 * time.Second

// MAX_ERROR_BODY bounds how much of a failed response is kept for the error.
const MAX_ERROR_BODY = 4096

type AlchemystApi struct {
	apiKey  string
	url     string
	client  *http.Client
	persona string
	scope   string
}

type ChatRequest struct {
	ChatHistory []ChatMessage `json:"chat_history"`
	Persona     string        `json:"persona"`
	Scope       string        `json:"scope"`
}

type ChatMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
	Id      string `json:"id"`
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("alchemyst stream status not 2xx(%d): %s", e.StatusCode, e.Body)
}

// NewAlchemystClient builds a client whose connect and response-header phases
// are bounded by timeout. The body itself is not deadlined: a generation may
// stream for longer than that, and the caller's context ends it.
func NewAlchemystClient(apiKey string, apiURL string, proxyDSN string, timeout time.Duration) (*AlchemystApi, error) {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	if apiURL == "" {
		apiURL = ALCHEMYST_API_URL
	}
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}
	if proxyDSN != "" {
		proxyURL, err := url.Parse(proxyDSN)
		if err != nil {
			return nil, fmt.Errorf("new alchemyst client proxy dsn error: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return &AlchemystApi{
		apiKey:  apiKey,
		url:     apiURL,
		client:  &http.Client{Transport: transport},
		persona: DEFAULT_PERSONA,
		scope:   DEFAULT_SCOPE,
	}, nil
}

// Ready reports whether a credential is configured.
func (c *AlchemystApi) Ready() bool {
	return c.apiKey != ""
}

// StreamChat posts prompt as a single user message and returns the streaming
// response body. The caller must close it; cancelling ctx aborts the upstream
// connection.
func (c *AlchemystApi) StreamChat(ctx context.Context, prompt string) (io.ReadCloser, error) {
	request := ChatRequest{
		ChatHistory: []ChatMessage{{
			Content: prompt,
			Role:    ROLE_USER,
			Id:      "msg_" + uuid.NewString(),
		}},
		Persona: c.persona,
		Scope:   c.scope,
	}
	reqBody, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("alchemyst StreamChat request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MAX_ERROR_BODY))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp.Body, nil
}
