package reconcile

import (
	"errors"
	"fmt"
)

// ErrMismatch is the umbrella kind for every reconciliation failure.
// Callers match it with errors.Is; the specific kinds below wrap it.
var ErrMismatch = errors.New("criterion lists do not align")

// Specific reconciliation failure kinds. Each wraps ErrMismatch.
var (
	ErrEmptyKey           = fmt.Errorf("%w: name normalizes to an empty key", ErrMismatch)
	ErrDuplicateScore     = fmt.Errorf("%w: duplicate score name", ErrMismatch)
	ErrDuplicateCriterion = fmt.Errorf("%w: duplicate rubric criterion name", ErrMismatch)
	ErrMissingScore       = fmt.Errorf("%w: criterion has no score", ErrMismatch)
	ErrExtraScores        = fmt.Errorf("%w: scores left unmatched", ErrMismatch)
)
