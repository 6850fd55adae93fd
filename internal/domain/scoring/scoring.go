// Package scoring bounds and rescales estimated score ranges.
//
// The model's self-reported uncertainty range is not trustworthy at
// face value: it may exceed the criterion's ceiling, invert, or be
// implausibly wide. Clamping guarantees every published range sits
// inside its scale and never spans more than a quarter of it,
// recentering rather than truncating so the midpoint survives when
// possible. All rounding is to nearest with ties to even.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/keunyop/rubricheck/internal/domain/types"
)

// Overall report scale and width limits.
const (
	overallMax        = 100
	overallWidthLimit = 25
	overallHalfWidth  = 12

	minWidthLimit = 2
	widthFraction = 0.25
)

// ErrDegenerateTotal reports a rubric whose summed max scores cannot
// scale a report: zero, negative, or not finite.
var ErrDegenerateTotal = errors.New("rubric total is not a positive finite number")

// ClampRange bounds a raw estimated range to one criterion's scale.
// The result satisfies 0 <= low <= high <= floor(maxScore) with width
// at most max(2, round(maxScore/4)), and clamping an already clamped
// range returns it unchanged.
func ClampRange(low, high, maxScore float64) types.ScoreRange {
	if !isFinite(maxScore) {
		maxScore = 0
	}
	maxAllowed := math.Max(0, math.Floor(maxScore))

	l := math.RoundToEven(sanitize(low))
	h := math.RoundToEven(sanitize(high))

	l = math.Max(0, l)
	h = math.Min(maxAllowed, h)
	h = math.Max(0, h)
	if l > h {
		l = h
	}

	widthLimit := math.Max(minWidthLimit, math.RoundToEven(maxScore*widthFraction))
	if h-l > widthLimit {
		center := math.RoundToEven((l + h) / 2)
		l = math.Max(0, center-math.RoundToEven(widthLimit/2))
		h = math.Min(maxAllowed, l+widthLimit)
		h = math.Max(0, h)
		if l > h {
			l = h
		}
	}

	return types.ScoreRange{Low: int(l), High: int(h)}
}

// OverallRange sums the clamped criterion ranges, scales them to the
// 0-100 report scale against the rubric's total max score, and caps
// the headline band at 25 points by recentering.
func OverallRange(rows []types.ReconciledCriterion) (types.ScoreRange, error) {
	var rawLow, rawHigh, total float64
	for _, row := range rows {
		rawLow += float64(row.EstimatedRange.Low)
		rawHigh += float64(row.EstimatedRange.High)
		total += row.MaxScore
	}
	if !isFinite(total) || total <= 0 {
		return types.ScoreRange{}, fmt.Errorf("%w: %v", ErrDegenerateTotal, total)
	}

	low := clampInt(int(math.RoundToEven(rawLow/total*overallMax)), 0, overallMax)
	high := clampInt(int(math.RoundToEven(rawHigh/total*overallMax)), 0, overallMax)
	if low > high {
		low, high = high, low
	}

	if high-low > overallWidthLimit {
		center := int(math.RoundToEven(float64(low+high) / 2))
		low = max(0, center-overallHalfWidth)
		high = min(overallMax, low+overallWidthLimit)
		if low > high {
			low = high
		}
	}

	return types.ScoreRange{Low: low, High: high}, nil
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
