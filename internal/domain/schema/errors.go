package schema

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrRubricInvalid reports a rubric structure that fails the rubric
	// contract: wrong shape, bad field types, fewer than two criteria,
	// or criterion names that collapse to empty or duplicate keys.
	ErrRubricInvalid = errors.New("rubric structure invalid")

	// ErrEvaluationInvalid reports an evaluation that fails the
	// evaluation contract after normalization.
	ErrEvaluationInvalid = errors.New("evaluation invalid")
)
