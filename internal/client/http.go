package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"docq-cli/internal/util"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// Transport opens the streamed chat request against the agent backend
// and exposes the response as a readable byte stream. Retries apply
// only before streaming begins.
type Transport struct {
	client  *retryablehttp.Client
	baseURL string
}

// NewTransport constructs a transport for the given backend base URL.
func NewTransport(baseURL string, retryMax int) *Transport {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.Logger = nil
	return &Transport{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// OpenStream sends one user message and returns the open event stream.
// The caller owns closing the returned body.
func (t *Transport) OpenStream(ctx context.Context, sessionID, message string) (io.ReadCloser, error) {
	payload, err := json.Marshal(chatRequest{SessionID: sessionID, Message: message})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/chat/stream", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		preview := util.Preview(strings.TrimSpace(string(body)), 3, 512)
		if preview != "" {
			return nil, fmt.Errorf("server returned %s: %s", resp.Status, preview)
		}
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}
	return resp.Body, nil
}
