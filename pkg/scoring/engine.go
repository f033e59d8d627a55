package scoring

import (
	"math"
	"time"
)

const (
	// DefaultPassThreshold is the minimum percentage for a passing score.
	DefaultPassThreshold = 60.0

	// DefaultPenaltyThreshold is the per-question time budget in seconds.
	// Every full multiple spent beyond it costs penaltyRate of the points.
	DefaultPenaltyThreshold = 300

	penaltyRate = 0.10
)

type options struct {
	passThreshold    float64
	penaltyThreshold int
}

// Option adjusts grading parameters.
type Option func(*options)

// WithPassThreshold overrides the default pass threshold percentage.
func WithPassThreshold(pct float64) Option {
	return func(o *options) { o.passThreshold = pct }
}

// WithPenaltyThreshold overrides the time-penalty threshold in seconds.
// A non-positive value disables the penalty.
func WithPenaltyThreshold(seconds int) Option {
	return func(o *options) { o.penaltyThreshold = seconds }
}

// ScoreQuestion grades a single question with default parameters.
func ScoreQuestion(q Question) QuestionScore {
	return scoreQuestion(q, DefaultPenaltyThreshold)
}

func scoreQuestion(q Question, penaltyThreshold int) QuestionScore {
	possible := q.Points
	if possible < 0 {
		possible = 0
	}

	correct := false
	if q.StudentAnswer != nil {
		if cmp, ok := comparators[q.Kind]; ok {
			correct = cmp(q.CorrectAnswer, q.StudentAnswer)
		}
	}

	earned := 0.0
	if correct {
		earned = possible
		if penaltyThreshold > 0 {
			if excess := q.TimeSpent - penaltyThreshold; excess > 0 {
				multiples := excess / penaltyThreshold
				earned -= float64(multiples) * possible * penaltyRate
				if earned < 0 {
					earned = 0
				}
			}
		}
	}

	pct := 0.0
	if possible > 0 {
		pct = earned / possible * 100
	}

	attempts := q.Attempts
	if attempts < 1 {
		attempts = 1
	}

	return QuestionScore{
		QuestionID:     q.ID,
		PointsEarned:   earned,
		PointsPossible: possible,
		Percentage:     pct,
		IsCorrect:      correct,
		TimeSpent:      q.TimeSpent,
		Attempts:       attempts,
	}
}

// ScoreTest grades every question and aggregates into a TestScore. Empty
// input yields a zero, non-passing score without error.
func ScoreTest(questions []Question, opts ...Option) TestScore {
	o := options{
		passThreshold:    DefaultPassThreshold,
		penaltyThreshold: DefaultPenaltyThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}

	scores := make([]QuestionScore, 0, len(questions))
	var total, max float64
	var timeSpent, attempts int

	for _, q := range questions {
		qs := scoreQuestion(q, o.penaltyThreshold)
		scores = append(scores, qs)
		total += qs.PointsEarned
		max += qs.PointsPossible
		timeSpent += qs.TimeSpent
		attempts += qs.Attempts
	}

	pct := 0.0
	if max > 0 {
		pct = round2(total / max * 100)
	}

	return TestScore{
		TotalScore:     total,
		MaxScore:       max,
		Percentage:     pct,
		Passed:         pct >= o.passThreshold,
		PassThreshold:  o.passThreshold,
		QuestionScores: scores,
		TimeSpent:      timeSpent,
		Attempts:       attempts,
		SubmittedAt:    time.Now().UTC(),
	}
}

// Compare relates the current attempt to a prior one. Improvement is the
// percentage-point delta (0 without a previous attempt); trend thresholds sit
// at ±5 points.
func Compare(current TestScore, previous *TestScore, classAvg, schoolAvg float64) Comparison {
	improvement := 0.0
	if previous != nil {
		improvement = round2(current.Percentage - previous.Percentage)
	}

	trend := TrendStable
	switch {
	case improvement > 5:
		trend = TrendUp
	case improvement < -5:
		trend = TrendDown
	}

	percentile := 50.0
	if classAvg > 0 {
		percentile = clamp(current.Percentage/classAvg*100, 0, 100)
	}

	return Comparison{
		Current:        current,
		Previous:       previous,
		Improvement:    improvement,
		Trend:          trend,
		PercentileRank: round2(percentile),
		ClassAverage:   classAvg,
		SchoolAverage:  schoolAvg,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
