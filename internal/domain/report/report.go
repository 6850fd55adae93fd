// Package report composes reconciliation and clamping into the final
// score report.
//
// Assembly is all-or-nothing: a report is either fully valid, with a
// bounded overall range and exactly three improvements, or the request
// fails and no partial report is returned.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keunyop/rubricheck/internal/domain/reconcile"
	"github.com/keunyop/rubricheck/internal/domain/scoring"
	"github.com/keunyop/rubricheck/internal/domain/types"
)

// Reports carry exactly this many improvement items.
const improvementCount = 3

// ErrTooFewImprovements reports an evaluation that cannot fill the
// report's improvement list.
var ErrTooFewImprovements = errors.New("fewer than three top improvements")

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithClock sets the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIDFunc sets the report ID generator.
func WithIDFunc(newID func() string) Option {
	return func(a *Assembler) {
		if newID != nil {
			a.newID = newID
		}
	}
}

// Assembler builds final reports from validated rubrics and
// evaluations.
type Assembler struct {
	now   func() time.Time
	newID func() string
}

// New creates an Assembler with configuration options.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble reconciles the evaluation against the rubric, clamps every
// criterion range, computes the overall range and emits the report.
// Reconciliation and range failures propagate; callers treat them all
// as one evaluation failure.
func (a *Assembler) Assemble(rubric types.Rubric, eval types.Evaluation) (types.FinalReport, error) {
	pairs, err := reconcile.Align(rubric.Criteria, eval.CriteriaScores)
	if err != nil {
		return types.FinalReport{}, fmt.Errorf("reconcile criteria: %w", err)
	}

	rows := make([]types.ReconciledCriterion, 0, len(pairs))
	for _, p := range pairs {
		clamped := scoring.ClampRange(
			float64(p.Score.EstimatedRange.Low),
			float64(p.Score.EstimatedRange.High),
			p.Criterion.MaxScore,
		)
		rows = append(rows, types.ReconciledCriterion{
			Name:           p.Criterion.Name,
			MaxScore:       p.Criterion.MaxScore,
			EstimatedRange: clamped,
			Feedback:       p.Score.Feedback,
		})
	}

	overall, err := scoring.OverallRange(rows)
	if err != nil {
		return types.FinalReport{}, fmt.Errorf("overall range: %w", err)
	}

	if len(eval.TopImprovements) < improvementCount {
		return types.FinalReport{}, fmt.Errorf("%w: got %d", ErrTooFewImprovements, len(eval.TopImprovements))
	}

	return types.FinalReport{
		ID:              a.newID(),
		CreatedAt:       a.now().UTC(),
		OverallRange:    overall,
		Summary:         eval.Summary,
		TopImprovements: append([]string(nil), eval.TopImprovements[:improvementCount]...),
		Criteria:        rows,
	}, nil
}
