package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsights_ScoreBands(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{pct: 95, want: "Excellent"},
		{pct: 85, want: "Great"},
		{pct: 75, want: "Good"},
		{pct: 62, want: "Passed"},
		{pct: 40, want: "below the pass threshold"},
	}

	for _, tc := range tests {
		got := Insights(TestScore{Percentage: tc.pct}, Breakdown{}, Comparison{})
		require.NotEmpty(t, got, "pct=%v", tc.pct)
		assert.Contains(t, got[0], tc.want, "pct=%v", tc.pct)
	}
}

func TestInsights_KindCallouts(t *testing.T) {
	bd := Breakdown{ByKind: map[Kind]GroupStats{
		KindInput:     {TotalQuestions: 4, CorrectAnswers: 1, AccuracyRate: 25},
		KindTrueFalse: {TotalQuestions: 4, CorrectAnswers: 4, AccuracyRate: 100},
		KindMatching:  {TotalQuestions: 4, CorrectAnswers: 3, AccuracyRate: 75},
	}}

	got := Insights(TestScore{Percentage: 70}, bd, Comparison{})

	joined := strings.Join(got, "\n")
	assert.Contains(t, joined, "input questions is 25.00% — a clear weak spot")
	assert.Contains(t, joined, "true_false questions is 100.00% — a strength")
	assert.NotContains(t, joined, "matching questions")
}

func TestInsights_TimeAndTrend(t *testing.T) {
	got := Insights(
		TestScore{Percentage: 70, TimeSpent: 4000},
		Breakdown{},
		Comparison{Trend: TrendUp, Improvement: 12},
	)

	joined := strings.Join(got, "\n")
	assert.Contains(t, joined, "4000 seconds")
	assert.Contains(t, joined, "Improved by 12.00 percentage points")
}

func TestInsights_Deterministic(t *testing.T) {
	bd := Breakdown{ByKind: map[Kind]GroupStats{
		KindInput:        {TotalQuestions: 2, AccuracyRate: 0},
		KindTrueFalse:    {TotalQuestions: 2, AccuracyRate: 0},
		KindMatching:     {TotalQuestions: 2, AccuracyRate: 0},
		KindWordMatching: {TotalQuestions: 2, AccuracyRate: 0},
	}}

	first := Insights(TestScore{Percentage: 30}, bd, Comparison{})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Insights(TestScore{Percentage: 30}, bd, Comparison{}))
	}
}

func TestRecommendations(t *testing.T) {
	bd := Breakdown{ByKind: map[Kind]GroupStats{
		KindFillBlanks: {TotalQuestions: 3, CorrectAnswers: 1, AccuracyRate: 33.33},
	}}

	got := Recommendations(TestScore{Percentage: 45, TimeSpent: 5000}, bd)
	joined := strings.Join(got, "\n")
	assert.Contains(t, joined, "Review the core material")
	assert.Contains(t, joined, "Practice more fill_blanks questions")
	assert.Contains(t, joined, "pacing")

	// A healthy attempt yields the default encouragement.
	got = Recommendations(TestScore{Percentage: 92, TimeSpent: 600}, Breakdown{})
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "Keep up")
}
