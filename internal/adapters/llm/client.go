// Package llm invokes an OpenAI-compatible chat completion backend and
// returns the raw assistant texts for downstream JSON recovery.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/keunyop/rubricheck/internal/domain/model"
	"github.com/keunyop/rubricheck/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultBaseURL = "http://localhost:1234"
	defaultTimeout = 60 * time.Second

	// maxErrorBodyBytes bounds how much of an error reply is read back
	// into the returned error message.
	maxErrorBodyBytes = 4 << 10
)

// Client invokes a model for a pipeline role and returns one candidate
// text per completion choice, in response order.
type Client interface {
	Invoke(ctx context.Context, role model.Role, prompt string) ([]string, error)
}

// HTTPClient is a Client backed by an OpenAI-compatible HTTP endpoint.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	models     map[model.Role]string
	timeout    time.Duration
}

// NewHTTPClient creates a client with default configuration.
func NewHTTPClient(opts ...Option) *HTTPClient {
	c := &HTTPClient{
		httpClient: &http.Client{},
		baseURL:    defaultBaseURL,
		models:     make(map[model.Role]string),
		timeout:    defaultTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// chatRequest is the completion request wire format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the completion reply we consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Invoke sends prompt to the model configured for role and returns the
// content of every choice. Deterministic decoding: temperature is
// pinned to zero.
func (c *HTTPClient) Invoke(ctx context.Context, role model.Role, prompt string) ([]string, error) {
	id, ok := c.models[role]
	if !ok || id == "" {
		metrics.RecordModelCallError(string(role))
		return nil, fmt.Errorf("%w: no model configured for role %q", ErrUnavailable, role)
	}

	payload := chatRequest{
		Model:       id,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
		Stream:      false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordModelCallError(string(role))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordModelCallError(string(role))
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.RecordModelCallError(string(role))
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if len(decoded.Choices) == 0 {
		metrics.RecordModelCallError(string(role))
		return nil, fmt.Errorf("%w: response carried no choices", ErrUnavailable)
	}

	metrics.RecordModelCall(string(role), float64(time.Since(start).Milliseconds()))

	// Empty contents are dropped here; a reply with nothing usable in it
	// is the recoverer's failure to report, not a transport failure.
	out := make([]string, 0, len(decoded.Choices))
	for _, choice := range decoded.Choices {
		if strings.TrimSpace(choice.Message.Content) == "" {
			continue
		}
		out = append(out, choice.Message.Content)
	}
	return out, nil
}
