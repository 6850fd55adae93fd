// Package service provides the core grading service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keunyop/rubricheck/internal/adapters/llm"
	"github.com/keunyop/rubricheck/internal/domain/llmjson"
	"github.com/keunyop/rubricheck/internal/domain/model"
	"github.com/keunyop/rubricheck/internal/domain/reconcile"
	"github.com/keunyop/rubricheck/internal/domain/report"
	"github.com/keunyop/rubricheck/internal/domain/schema"
	"github.com/keunyop/rubricheck/internal/domain/textnorm"
	"github.com/keunyop/rubricheck/internal/domain/types"
	"github.com/keunyop/rubricheck/pkg/logger"
	"github.com/keunyop/rubricheck/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultModelBaseURL = "http://localhost:1234"
	defaultModelTimeout = 60 * time.Second
)

// Service runs the two-phase grading pipeline: structure the rubric,
// evaluate the assignment, then reconcile and bound the result.
type Service struct {
	mu sync.RWMutex

	// Core components
	invoker   llm.Client
	assembler *report.Assembler

	// Configuration
	modelBaseURL   string
	modelAPIKey    string
	structureModel string
	evaluateModel  string
	modelTimeout   time.Duration

	// State
	started     bool
	evaluations atomic.Int64
	failures    atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelBaseURL sets the model backend base URL.
func WithModelBaseURL(baseURL string) Option {
	return func(s *Service) {
		if baseURL != "" {
			s.modelBaseURL = baseURL
		}
	}
}

// WithModelAPIKey sets the model backend API key.
func WithModelAPIKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.modelAPIKey = key
		}
	}
}

// WithModels sets the model identifiers for the structure and evaluate
// roles.
func WithModels(structureModel, evaluateModel string) Option {
	return func(s *Service) {
		if structureModel != "" {
			s.structureModel = structureModel
		}
		if evaluateModel != "" {
			s.evaluateModel = evaluateModel
		}
	}
}

// WithModelTimeout sets the per-invocation model timeout.
func WithModelTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.modelTimeout = timeout
		}
	}
}

// WithInvoker sets a custom model client, replacing the HTTP client the
// service would otherwise build from its configuration.
func WithInvoker(invoker llm.Client) Option {
	return func(s *Service) {
		if invoker != nil {
			s.invoker = invoker
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelBaseURL: defaultModelBaseURL,
		modelTimeout: defaultModelTimeout,
		logger:       nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting grading service...")

	if s.invoker == nil {
		s.invoker = llm.NewHTTPClient(
			llm.WithBaseURL(s.modelBaseURL),
			llm.WithAPIKey(s.modelAPIKey),
			llm.WithModel(model.RoleStructure, s.structureModel),
			llm.WithModel(model.RoleEvaluate, s.evaluateModel),
			llm.WithTimeout(s.modelTimeout),
		)
	}
	s.assembler = report.New()

	s.started = true
	s.logger.Info(ctx, "grading service started",
		logger.String("modelBaseURL", s.modelBaseURL),
		logger.String("structureModel", s.structureModel),
		logger.String("evaluateModel", s.evaluateModel),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping grading service...")

	s.started = false
	s.logger.Info(context.Background(), "grading service stopped")
}

// Evaluate runs the full pipeline for one request and returns the final
// report. Any failure is terminal: no partial report is returned.
func (s *Service) Evaluate(ctx context.Context, req model.Request) (types.FinalReport, error) {
	s.mu.RLock()
	started, invoker, assembler, log := s.started, s.invoker, s.assembler, s.logger
	s.mu.RUnlock()

	if !started {
		return types.FinalReport{}, ErrNotStarted
	}

	metrics.EvaluationStarted()
	defer metrics.EvaluationFinished()

	start := time.Now()

	rep, err := s.run(ctx, invoker, assembler, req)
	if err != nil {
		s.failures.Add(1)
		metrics.RecordEvaluationFailure()
		log.Warn(ctx, "evaluation failed",
			logger.String("requestID", req.ID),
			logger.Error(err),
		)
		return types.FinalReport{}, err
	}

	s.evaluations.Add(1)
	metrics.RecordEvaluation()
	metrics.RecordEvaluationLatency(float64(time.Since(start).Milliseconds()))
	log.Info(ctx, "evaluation completed",
		logger.String("requestID", req.ID),
		logger.String("reportID", rep.ID),
		logger.Int("criteria", len(rep.Criteria)),
		logger.Int("overallLow", rep.OverallRange.Low),
		logger.Int("overallHigh", rep.OverallRange.High),
		logger.Duration("elapsed", time.Since(start)),
	)

	return rep, nil
}

// run executes the pipeline stages in order.
func (s *Service) run(ctx context.Context, invoker llm.Client, assembler *report.Assembler, req model.Request) (types.FinalReport, error) {
	rubricText := textnorm.Normalize(req.RubricText)
	assignmentText := textnorm.Normalize(req.AssignmentText)
	if rubricText == "" || assignmentText == "" {
		return types.FinalReport{}, ErrMissingInput
	}

	rubric, err := s.structuredRubric(ctx, invoker, rubricText)
	if err != nil {
		return types.FinalReport{}, err
	}

	evaluation, err := s.structuredEvaluation(ctx, invoker, rubric, assignmentText)
	if err != nil {
		return types.FinalReport{}, err
	}

	rep, err := assembler.Assemble(rubric, evaluation)
	if err != nil {
		if errors.Is(err, reconcile.ErrMismatch) {
			metrics.RecordReconcileFailure()
		}
		return types.FinalReport{}, fmt.Errorf("assemble report: %w", err)
	}

	return rep, nil
}

// structuredRubric asks the structure model to parse the rubric text
// and validates the result.
func (s *Service) structuredRubric(ctx context.Context, invoker llm.Client, rubricText string) (types.Rubric, error) {
	candidates, err := invoker.Invoke(ctx, model.RoleStructure, structurePrompt(rubricText))
	if err != nil {
		return types.Rubric{}, fmt.Errorf("structure model: %w", err)
	}

	value, err := llmjson.Recover(candidates...)
	if err != nil {
		metrics.RecordRecoveryFailure()
		return types.Rubric{}, fmt.Errorf("structure response: %w", err)
	}
	metrics.RecordRecovery()

	rubric, err := schema.ValidateRubric(value)
	if err != nil {
		metrics.RecordValidationFailure("rubric")
		return types.Rubric{}, err
	}

	return rubric, nil
}

// structuredEvaluation asks the evaluate model to grade the assignment
// against the structured rubric and validates the result.
func (s *Service) structuredEvaluation(ctx context.Context, invoker llm.Client, rubric types.Rubric, assignmentText string) (types.Evaluation, error) {
	prompt, err := evaluatePrompt(rubric, assignmentText)
	if err != nil {
		return types.Evaluation{}, fmt.Errorf("build evaluate prompt: %w", err)
	}

	candidates, err := invoker.Invoke(ctx, model.RoleEvaluate, prompt)
	if err != nil {
		return types.Evaluation{}, fmt.Errorf("evaluate model: %w", err)
	}

	value, err := llmjson.Recover(candidates...)
	if err != nil {
		metrics.RecordRecoveryFailure()
		return types.Evaluation{}, fmt.Errorf("evaluate response: %w", err)
	}
	metrics.RecordRecovery()

	evaluation, err := schema.ValidateEvaluation(value)
	if err != nil {
		metrics.RecordValidationFailure("evaluation")
		return types.Evaluation{}, err
	}

	return evaluation, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":        s.started,
		"modelBaseURL":   s.modelBaseURL,
		"structureModel": s.structureModel,
		"evaluateModel":  s.evaluateModel,
		"evaluations":    s.evaluations.Load(),
		"failures":       s.failures.Load(),
	}
}
