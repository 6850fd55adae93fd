package service

import "errors"

// Sentinel errors for the grading service.
var (
	// ErrNotStarted indicates Evaluate was called before Start.
	ErrNotStarted = errors.New("grading service not started")

	// ErrMissingInput indicates the rubric or assignment text was empty
	// after normalization.
	ErrMissingInput = errors.New("rubric and assignment text are required")
)
