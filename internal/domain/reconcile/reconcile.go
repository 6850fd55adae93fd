// Package reconcile aligns a rubric's criteria with the model's
// per-criterion scores, one to one, by normalized name key.
//
// Any asymmetry between the two lists is a hard failure rather than a
// best-effort alignment: a silent partial match would let the model
// skip a criterion or invent an extra one without detection.
package reconcile

import (
	"fmt"

	"github.com/keunyop/rubricheck/internal/domain/namekey"
	"github.com/keunyop/rubricheck/internal/domain/types"
)

// Pair joins one rubric criterion with its matched score.
type Pair struct {
	Criterion types.RubricCriterion
	Score     types.CriterionScore
}

// Align pairs every rubric criterion with exactly one score, in rubric
// order. The matching must be a bijection: empty or duplicate keys on
// either side, a criterion without a score, or scores left over after
// pairing all fail with an error wrapping ErrMismatch.
func Align(criteria []types.RubricCriterion, scores []types.CriterionScore) ([]Pair, error) {
	byKey := make(map[string]types.CriterionScore, len(scores))
	for _, s := range scores {
		key := namekey.Normalize(s.Name)
		if key == "" {
			return nil, fmt.Errorf("%w: score %q", ErrEmptyKey, s.Name)
		}
		if _, dup := byKey[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateScore, key)
		}
		byKey[key] = s
	}

	pairs := make([]Pair, 0, len(criteria))
	seen := make(map[string]struct{}, len(criteria))
	for _, c := range criteria {
		key := namekey.Normalize(c.Name)
		if key == "" {
			return nil, fmt.Errorf("%w: criterion %q", ErrEmptyKey, c.Name)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCriterion, key)
		}
		seen[key] = struct{}{}

		score, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingScore, c.Name)
		}
		pairs = append(pairs, Pair{Criterion: c, Score: score})
	}

	if len(pairs) != len(scores) {
		return nil, fmt.Errorf("%w: %d scores for %d criteria", ErrExtraScores, len(scores), len(pairs))
	}
	return pairs, nil
}
