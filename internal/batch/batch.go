// Package batch fans a fixed set of grading jobs out to a bounded
// number of concurrent pipeline calls.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keunyop/rubricheck/internal/domain/model"
	"github.com/keunyop/rubricheck/internal/domain/types"
	"github.com/keunyop/rubricheck/pkg/logger"
	"github.com/keunyop/rubricheck/pkg/metrics"
)

// Default runner configuration constants.
const (
	defaultWorkers = 2
)

// Grader runs the grading pipeline for one request.
type Grader interface {
	Evaluate(ctx context.Context, req model.Request) (types.FinalReport, error)
}

// Job is one assignment to grade against the shared rubric.
type Job struct {
	// Name identifies the job in results and logs, e.g. a file name.
	Name string

	RubricText     string
	AssignmentText string
}

// Result pairs a job with its report or its failure.
type Result struct {
	Name    string
	Report  types.FinalReport
	Err     error
	Elapsed time.Duration
}

// Runner processes jobs with a bounded worker set.
type Runner struct {
	grader  Grader
	workers int

	// Logging
	logger logger.Logger
}

// NewRunner creates a new batch runner with configuration options.
func NewRunner(grader Grader, opts ...Option) *Runner {
	r := &Runner{
		grader:  grader,
		workers: defaultWorkers,
		logger:  logger.Get().Named("batch"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run grades every job and returns one result per job, in job order.
// A failed job records its error and does not stop the rest. When ctx
// is canceled, jobs not yet handed to a worker fail with ctx.Err().
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := r.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	indexes := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range indexes {
				results[idx] = r.runJob(ctx, jobs[idx])
			}
		}()
	}

feed:
	for idx := range jobs {
		select {
		case indexes <- idx:
		case <-ctx.Done():
			for rest := idx; rest < len(jobs); rest++ {
				results[rest] = Result{Name: jobs[rest].Name, Err: ctx.Err()}
			}
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	return results
}

// runJob handles a single job.
func (r *Runner) runJob(ctx context.Context, job Job) Result {
	start := time.Now()

	req := model.Request{
		ID:             uuid.NewString(),
		RubricText:     job.RubricText,
		AssignmentText: job.AssignmentText,
	}
	rep, err := r.grader.Evaluate(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordBatchJobFailure()
		r.logger.Warn(ctx, "batch job failed",
			logger.String("job", job.Name),
			logger.Error(err),
		)
		return Result{Name: job.Name, Err: err, Elapsed: elapsed}
	}

	metrics.RecordBatchJob()
	r.logger.Info(ctx, "batch job graded",
		logger.String("job", job.Name),
		logger.Int("overallLow", rep.OverallRange.Low),
		logger.Int("overallHigh", rep.OverallRange.High),
		logger.Duration("elapsed", elapsed),
	)
	return Result{Name: job.Name, Report: rep, Elapsed: elapsed}
}

// Failed returns how many results carry an error.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
