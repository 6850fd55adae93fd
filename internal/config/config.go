// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading hooks accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelBaseURL points at an OpenAI-compatible completion server,
	// e.g. a local LM Studio instance.
	ModelBaseURL string `koanf:"model_base_url"`

	// ModelAPIKey is sent as a bearer token when non-empty.
	ModelAPIKey string `koanf:"model_api_key"`

	// StructureModel identifies the model that structures rubrics.
	StructureModel string `koanf:"structure_model"`

	// EvaluateModel identifies the model that assesses assignments.
	EvaluateModel string `koanf:"evaluate_model"`

	// ModelTimeoutSeconds bounds a single model invocation.
	ModelTimeoutSeconds int `koanf:"model_timeout_seconds"`

	// MaxUploadBytes caps the POST /api/evaluate request body.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// BatchWorkers sets how many assignments are graded concurrently
	// in batch mode.
	BatchWorkers int `koanf:"batch_workers"`
}

// New creates a Config with defaults suitable for a local model server.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		ModelBaseURL:        "http://localhost:1234",
		StructureModel:      "qwen2.5-7b-instruct",
		EvaluateModel:       "qwen2.5-7b-instruct",
		ModelTimeoutSeconds: 60,
		MaxUploadBytes:      5 << 20,
		BatchWorkers:        2,
	}
}
