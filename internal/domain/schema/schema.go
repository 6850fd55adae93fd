// Package schema enforces the rubric and evaluation data contracts.
//
// Both contracts are JSON Schema documents embedded in the package and
// compiled once at startup. Validation is the trust boundary for model
// output: values arrive as parsed JSON from the recoverer, are checked
// against the schema, then decoded strictly into domain types. For
// evaluations a light normalization pass runs first to absorb
// near-conformant output; it trims, rounds and collapses existing
// values and never invents data.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/keunyop/rubricheck/internal/domain/namekey"
	"github.com/keunyop/rubricheck/internal/domain/types"
)

//go:embed rubric.schema.json evaluation.schema.json
var schemaFS embed.FS

var (
	rubricSchema     = mustCompile("rubric.schema.json")
	evaluationSchema = mustCompile("evaluation.schema.json")
)

func mustCompile(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("schema: read %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("schema: add resource %s: %v", name, err))
	}
	compiled, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("schema: compile %s: %v", name, err))
	}
	return compiled
}

// ValidateRubric checks a recovered JSON value against the rubric
// contract and decodes it. Beyond the schema itself, every criterion
// name must normalize to a non-empty key and all keys must be pairwise
// distinct. Failures wrap ErrRubricInvalid.
func ValidateRubric(v any) (types.Rubric, error) {
	if err := rubricSchema.Validate(v); err != nil {
		return types.Rubric{}, fmt.Errorf("%w: %v", ErrRubricInvalid, err)
	}

	var rubric types.Rubric
	if err := strictDecode(v, &rubric); err != nil {
		return types.Rubric{}, fmt.Errorf("%w: %v", ErrRubricInvalid, err)
	}

	seen := make(map[string]struct{}, len(rubric.Criteria))
	for _, c := range rubric.Criteria {
		key := namekey.Normalize(c.Name)
		if key == "" {
			return types.Rubric{}, fmt.Errorf("%w: criterion %q normalizes to an empty key", ErrRubricInvalid, c.Name)
		}
		if _, dup := seen[key]; dup {
			return types.Rubric{}, fmt.Errorf("%w: duplicate criterion key %q", ErrRubricInvalid, key)
		}
		seen[key] = struct{}{}
	}

	return rubric, nil
}

// ValidateEvaluation normalizes a recovered JSON value, checks it
// against the evaluation contract and decodes it. Every estimated
// range must satisfy low <= high. Failures wrap ErrEvaluationInvalid.
func ValidateEvaluation(v any) (types.Evaluation, error) {
	v = NormalizeEvaluation(v)

	if err := evaluationSchema.Validate(v); err != nil {
		return types.Evaluation{}, fmt.Errorf("%w: %v", ErrEvaluationInvalid, err)
	}

	var eval types.Evaluation
	if err := strictDecode(v, &eval); err != nil {
		return types.Evaluation{}, fmt.Errorf("%w: %v", ErrEvaluationInvalid, err)
	}

	for _, cs := range eval.CriteriaScores {
		if cs.EstimatedRange.Low > cs.EstimatedRange.High {
			return types.Evaluation{}, fmt.Errorf("%w: estimated range for %q is inverted", ErrEvaluationInvalid, cs.Name)
		}
	}

	return eval, nil
}

// strictDecode re-encodes a validated JSON value and decodes it into
// out, rejecting unknown fields and trailing data.
func strictDecode(v, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	if dec.More() {
		return errors.New("trailing data after value")
	}
	return nil
}
