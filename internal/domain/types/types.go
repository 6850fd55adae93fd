// Package types contains common types used across the application
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// RubricCriterion is a single gradable dimension of a rubric.
type RubricCriterion struct {
	Name        string  `json:"name"`
	MaxScore    float64 `json:"max_score"`
	Description string  `json:"description"`
}

// Rubric is the structured form of a grading rubric. A usable rubric
// carries at least two criteria whose normalized names are distinct.
type Rubric struct {
	Criteria []RubricCriterion `json:"criteria"`
}

// Total returns the sum of all criterion max scores.
func (r Rubric) Total() float64 {
	var total float64
	for _, c := range r.Criteria {
		total += c.MaxScore
	}
	return total
}

// ScoreRange is an inclusive [low, high] integer score interval.
// It serializes as a two-element JSON array.
type ScoreRange struct {
	Low  int
	High int
}

// Width returns high minus low.
func (r ScoreRange) Width() int {
	return r.High - r.Low
}

// MarshalJSON encodes the range as [low, high].
func (r ScoreRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Low, r.High})
}

// UnmarshalJSON decodes a [low, high] array. Anything but exactly two
// integer elements is rejected.
func (r *ScoreRange) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("score range must be a two-element integer array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("score range must have exactly two elements, got %d", len(pair))
	}
	r.Low = pair[0]
	r.High = pair[1]
	return nil
}

// CriterionScore is the model's assessment of one criterion.
type CriterionScore struct {
	Name           string     `json:"name"`
	EstimatedRange ScoreRange `json:"estimated_range"`
	Feedback       string     `json:"feedback"`
}

// Evaluation is the structured form of the model's assessment of a
// submission against a rubric.
type Evaluation struct {
	Summary         string           `json:"summary"`
	CriteriaScores  []CriterionScore `json:"criteria_scores"`
	TopImprovements []string         `json:"top_improvements"`
}

// ReconciledCriterion joins a rubric criterion with its clamped score.
type ReconciledCriterion struct {
	Name           string     `json:"name"`
	MaxScore       float64    `json:"max_score"`
	EstimatedRange ScoreRange `json:"estimated_range"`
	Feedback       string     `json:"feedback"`
}

// FinalReport is the bounded, validated result returned to callers.
// OverallRange ends lie in [0, 100] and TopImprovements has exactly
// three entries. Reports are built all-or-nothing; a partially filled
// FinalReport is never handed out.
type FinalReport struct {
	ID              string                `json:"id"`
	CreatedAt       time.Time             `json:"created_at"`
	OverallRange    ScoreRange            `json:"overall_range"`
	Summary         string                `json:"summary"`
	TopImprovements []string              `json:"top_improvements"`
	Criteria        []ReconciledCriterion `json:"criteria"`
}
