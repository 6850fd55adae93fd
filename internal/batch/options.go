// Package batch fans a fixed set of grading jobs out to a bounded
// number of concurrent pipeline calls.
package batch

import (
	"github.com/keunyop/rubricheck/pkg/logger"
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithWorkers sets the number of concurrent grading calls.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}
