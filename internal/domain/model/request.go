// Package model contains domain models passed between layers.
package model

// Role identifies the purpose of a model invocation. The structure
// role turns rubric text into structured criteria; the evaluate role
// grades a submission against an already structured rubric.
type Role string

// Model invocation roles.
const (
	RoleStructure Role = "structure"
	RoleEvaluate  Role = "evaluate"
)

// Request is a single grading request flowing through the pipeline.
// Both texts are normalized plain text; every field is owned by this
// request and nothing in it is shared across requests.
type Request struct {
	ID             string // request identifier, carried into logs and the report
	RubricText     string // normalized rubric text
	AssignmentText string // normalized submission text
}
