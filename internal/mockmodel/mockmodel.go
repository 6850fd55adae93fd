// Package mockmodel emulates an OpenAI-compatible chat completion
// backend with deterministic grading behavior. It exists so the
// service can be exercised end to end without a real model: the
// structure role parses "Name: N points" rubric lines, the evaluate
// role scores every criterion at a fixed band of its maximum.
package mockmodel

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wrap selects how the mock wraps its JSON payload, which is how the
// recoverer's different extraction paths get exercised.
type Wrap string

// Supported wrap modes.
const (
	WrapBare   Wrap = "bare"
	WrapFenced Wrap = "fenced"
	WrapProse  Wrap = "prose"
)

// ParseWrap validates a wrap mode name.
func ParseWrap(s string) (Wrap, error) {
	switch Wrap(strings.ToLower(strings.TrimSpace(s))) {
	case WrapBare:
		return WrapBare, nil
	case WrapFenced:
		return WrapFenced, nil
	case WrapProse:
		return WrapProse, nil
	default:
		return "", fmt.Errorf("unknown wrap mode %q", s)
	}
}

// Handler serves the mock completion API.
type Handler struct {
	wrap Wrap
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithWrap sets how completion payloads are wrapped.
func WithWrap(wrap Wrap) Option {
	return func(h *Handler) {
		if wrap != "" {
			h.wrap = wrap
		}
	}
}

// NewHandler creates a mock backend handler with default configuration.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		wrap: WrapBare,
	}

	// Apply all options
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// completionRequest is the subset of the chat completion request the
// mock consumes.
type completionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// ServeHTTP routes the two endpoints a completion client touches.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/chat/completions":
		h.handleCompletion(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/v1/models":
		h.handleModels(w)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed completion request", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "completion request has no messages", http.StatusBadRequest)
		return
	}

	prompt := req.Messages[len(req.Messages)-1].Content

	var payload string
	if strings.Contains(prompt, "You are a rubric parser") {
		payload = structureReply(prompt)
	} else {
		payload = evaluateReply(prompt)
	}

	reply := map[string]any{
		"id":      "chatcmpl-" + uuid.NewString(),
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   req.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": h.wrapPayload(payload),
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(reply)
}

func (h *Handler) handleModels(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mock-structure", "object": "model"},
			{"id": "mock-evaluate", "object": "model"},
		},
	})
}

// wrapPayload dresses the JSON payload per the configured wrap mode.
func (h *Handler) wrapPayload(payload string) string {
	switch h.wrap {
	case WrapFenced:
		return "```json\n" + payload + "\n```"
	case WrapProse:
		return "Here is the result you asked for:\n```json\n" + payload + "\n```\nLet me know if you need anything else."
	default:
		return payload
	}
}
