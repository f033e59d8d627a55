package scoring

import (
	"fmt"
	"sort"
)

// Insight thresholds. The exact wording below is advisory; these boundaries
// are the contract.
const (
	insightExcellent  = 90.0
	insightGreat      = 80.0
	insightGood       = 70.0
	insightBorderline = 60.0

	weakAccuracy   = 50.0
	strongAccuracy = 90.0

	longTestSeconds = 3600
)

// Insights produces deterministic, rule-based observations about an attempt.
// Advisory strings only — never used in scoring math.
func Insights(ts TestScore, bd Breakdown, cmp Comparison) []string {
	out := make([]string, 0, 8)

	switch {
	case ts.Percentage >= insightExcellent:
		out = append(out, fmt.Sprintf("Excellent result: %.2f%%. Outstanding command of the material.", ts.Percentage))
	case ts.Percentage >= insightGreat:
		out = append(out, fmt.Sprintf("Great result: %.2f%%. Strong performance with minor gaps.", ts.Percentage))
	case ts.Percentage >= insightGood:
		out = append(out, fmt.Sprintf("Good result: %.2f%%. Solid understanding, room to improve.", ts.Percentage))
	case ts.Percentage >= insightBorderline:
		out = append(out, fmt.Sprintf("Passed with %.2f%%, close to the threshold. Targeted review recommended.", ts.Percentage))
	default:
		out = append(out, fmt.Sprintf("Score %.2f%% is below the pass threshold. The fundamentals need another pass.", ts.Percentage))
	}

	for _, kind := range sortedKinds(bd.ByKind) {
		stats := bd.ByKind[kind]
		if stats.TotalQuestions == 0 {
			continue
		}
		if stats.AccuracyRate < weakAccuracy {
			out = append(out, fmt.Sprintf("Accuracy on %s questions is %.2f%% — a clear weak spot.", kind, stats.AccuracyRate))
		} else if stats.AccuracyRate > strongAccuracy {
			out = append(out, fmt.Sprintf("Accuracy on %s questions is %.2f%% — a strength.", kind, stats.AccuracyRate))
		}
	}

	if ts.TimeSpent > longTestSeconds {
		out = append(out, fmt.Sprintf("The attempt took %d seconds. Pacing deserves attention.", ts.TimeSpent))
	}

	switch cmp.Trend {
	case TrendUp:
		out = append(out, fmt.Sprintf("Improved by %.2f percentage points over the previous attempt.", cmp.Improvement))
	case TrendDown:
		out = append(out, fmt.Sprintf("Dropped %.2f percentage points since the previous attempt.", -cmp.Improvement))
	}

	return out
}

// Recommendations produces deterministic study suggestions from the same
// thresholds as Insights.
func Recommendations(ts TestScore, bd Breakdown) []string {
	out := make([]string, 0, 4)

	if ts.Percentage < insightBorderline {
		out = append(out, "Review the core material before retaking the test.")
	}

	for _, kind := range sortedKinds(bd.ByKind) {
		stats := bd.ByKind[kind]
		if stats.TotalQuestions > 0 && stats.AccuracyRate < weakAccuracy {
			out = append(out, fmt.Sprintf("Practice more %s questions.", kind))
		}
	}

	if ts.TimeSpent > longTestSeconds {
		out = append(out, "Work on pacing: set a per-question time budget while practicing.")
	}

	if len(out) == 0 {
		out = append(out, "Keep up the current study routine.")
	}
	return out
}

func sortedKinds(m map[Kind]GroupStats) []Kind {
	kinds := make([]Kind, 0, len(m))
	for k := range m {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
