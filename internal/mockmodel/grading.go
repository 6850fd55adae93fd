package mockmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/keunyop/rubricheck/internal/domain/types"
)

// Score band fractions: every criterion lands at the same band of its
// maximum so expected outputs are easy to compute by hand.
const (
	lowBandFraction  = 0.6
	highBandFraction = 0.8
)

// criterionLineRE matches rubric lines shaped like "Clarity: 40 points"
// or "- Depth of Analysis: 25 pts".
var criterionLineRE = regexp.MustCompile(`(?m)^[\s*-]*([^:\n]+?)\s*:\s*(\d+(?:\.\d+)?)\s*(?:points?|pts)\b`)

// structureReply parses rubric lines out of the structure prompt and
// answers with rubric JSON.
func structureReply(prompt string) string {
	section := rubricSection(prompt)

	rubric := types.Rubric{Criteria: []types.RubricCriterion{}}
	for _, m := range criterionLineRE.FindAllStringSubmatch(section, -1) {
		name := strings.TrimSpace(m[1])
		maxScore, err := strconv.ParseFloat(m[2], 64)
		if err != nil || name == "" {
			continue
		}
		rubric.Criteria = append(rubric.Criteria, types.RubricCriterion{
			Name:        name,
			MaxScore:    maxScore,
			Description: fmt.Sprintf("Taken from the rubric line for %s.", name),
		})
	}

	data, _ := json.Marshal(rubric)
	return string(data)
}

// rubricSection cuts the rubric text out of the structure prompt.
func rubricSection(prompt string) string {
	const marker = "Rubric:\n---\n"
	i := strings.Index(prompt, marker)
	if i < 0 {
		return prompt
	}
	section := prompt[i+len(marker):]
	if j := strings.LastIndex(section, "\n---"); j >= 0 {
		section = section[:j]
	}
	return section
}

// evaluateReply scores every criterion of the rubric embedded in the
// evaluate prompt at a fixed band of its maximum.
func evaluateReply(prompt string) string {
	rubric, ok := embeddedRubric(prompt)

	evaluation := types.Evaluation{
		Summary: "The submission meets most of the rubric with competent execution. The weaker criteria would benefit from one focused revision.",
		TopImprovements: []string{
			"Revisit the lowest scoring criterion and address its description directly",
			"Add concrete evidence where claims are currently unsupported",
			"Tighten structure so each section maps to one rubric criterion",
		},
		CriteriaScores: []types.CriterionScore{},
	}

	if ok {
		for _, c := range rubric.Criteria {
			low := int(math.Floor(c.MaxScore * lowBandFraction))
			high := int(math.Floor(c.MaxScore * highBandFraction))
			if high < low {
				high = low
			}
			evaluation.CriteriaScores = append(evaluation.CriteriaScores, types.CriterionScore{
				Name:           c.Name,
				EstimatedRange: types.ScoreRange{Low: low, High: high},
				Feedback:       fmt.Sprintf("%s is handled competently; a focused revision pass would tighten it further.", c.Name),
			})
		}
	}

	data, _ := json.Marshal(evaluation)
	return string(data)
}

// embeddedRubric recovers the rubric JSON the evaluate prompt embeds.
func embeddedRubric(prompt string) (types.Rubric, bool) {
	const start = "The rubric as JSON:\n"
	const end = "\n\nReturn ONLY"

	i := strings.Index(prompt, start)
	if i < 0 {
		return types.Rubric{}, false
	}
	section := prompt[i+len(start):]
	if j := strings.Index(section, end); j >= 0 {
		section = section[:j]
	}

	var rubric types.Rubric
	if err := json.Unmarshal([]byte(strings.TrimSpace(section)), &rubric); err != nil {
		return types.Rubric{}, false
	}
	return rubric, true
}
