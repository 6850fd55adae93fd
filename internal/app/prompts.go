package service

import (
	"encoding/json"
	"fmt"

	"github.com/keunyop/rubricheck/internal/domain/types"
)

// structurePromptTemplate asks the model to express a free-form rubric
// as the structured JSON the rubric schema accepts.
const structurePromptTemplate = `You are a rubric parser. Read the grading rubric below and express it as JSON.

Return ONLY a JSON object. No prose, no code fences. Use this exact shape:
{
  "criteria": [
    {"name": "<criterion name>", "max_score": <positive number>, "description": "<what is being assessed>"}
  ]
}

Rules:
- Include every criterion from the rubric, in the order it appears.
- "max_score" is the maximum points available for that criterion.
- Do not invent criteria that are not in the rubric.

Rubric:
---
%s
---`

// evaluatePromptTemplate asks the model to grade an assignment against
// an already structured rubric. Tone requirements live here: the
// evaluation schema does not check tone.
const evaluatePromptTemplate = `You are grading a student assignment against a rubric. Assess honestly and keep a neutral, non-judgmental tone.

The rubric as JSON:
%s

Return ONLY a JSON object. No prose, no code fences. Use this exact shape:
{
  "summary": "<overall summary, 1-2 sentences, at most 280 characters>",
  "criteria_scores": [
    {"name": "<criterion name exactly as written in the rubric>", "estimated_range": [<low>, <high>], "feedback": "<one line, at most 140 characters>"}
  ],
  "top_improvements": ["<concrete improvement, at most 120 characters>", "..."]
}

Rules:
- Score every rubric criterion exactly once, using its name as written above.
- "estimated_range" is your honest uncertainty band: two integers with low <= high, inside [0, that criterion's max_score].
- Give 3 to 5 top improvements, most impactful first.
- Feedback must be specific to this assignment, never generic.

Assignment:
---
%s
---`

// structurePrompt renders the structure-phase prompt.
func structurePrompt(rubricText string) string {
	return fmt.Sprintf(structurePromptTemplate, rubricText)
}

// evaluatePrompt renders the evaluate-phase prompt with the rubric
// embedded as indented JSON.
func evaluatePrompt(rubric types.Rubric, assignmentText string) (string, error) {
	encoded, err := json.MarshalIndent(rubric, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode rubric: %w", err)
	}
	return fmt.Sprintf(evaluatePromptTemplate, encoded, assignmentText), nil
}
