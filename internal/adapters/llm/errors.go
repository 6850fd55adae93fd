package llm

import "errors"

// Sentinel errors for model invocation.
var (
	// ErrUnavailable indicates the model backend could not produce a
	// response: unreachable, misconfigured, or a non-OK reply.
	ErrUnavailable = errors.New("model backend unavailable")
)
