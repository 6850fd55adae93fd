package llm

import (
	"net/http"
	"strings"
	"time"

	"github.com/keunyop/rubricheck/internal/domain/model"
)

// Option applies a configuration option to the HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL sets the backend base URL. A trailing slash is trimmed.
func WithBaseURL(baseURL string) Option {
	return func(c *HTTPClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) Option {
	return func(c *HTTPClient) {
		if key != "" {
			c.apiKey = key
		}
	}
}

// WithModel binds a pipeline role to a model identifier.
func WithModel(role model.Role, id string) Option {
	return func(c *HTTPClient) {
		if role != "" && id != "" {
			c.models[role] = id
		}
	}
}

// WithTimeout sets the per-invocation timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}
