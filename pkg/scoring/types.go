// Package scoring grades a completed test attempt: per-question correctness
// through per-type comparators, aggregate scoring with time penalties,
// dimensional breakdowns, attempt-over-attempt comparison, and rule-based
// insight text. Pure and deterministic — no storage or network access, and no
// function in this package ever panics on malformed input.
package scoring

import "time"

// Kind is the closed set of question types the engine can grade. Unknown
// kinds are never correct.
type Kind string

const (
	KindTrueFalse      Kind = "true_false"
	KindMultipleChoice Kind = "multiple_choice"
	KindInput          Kind = "input"
	KindFillBlanks     Kind = "fill_blanks"
	KindMatching       Kind = "matching"
	KindWordMatching   Kind = "word_matching"
	KindSpeaking       Kind = "speaking"
	KindDrawing        Kind = "drawing"
)

// Question is one answered question as supplied by the host. CorrectAnswer
// and StudentAnswer carry decoded JSON shapes: scalars, []any/[]string,
// pair maps (left/right or word/definition), or confidence maps ({"score":x})
// for speaking and drawing.
type Question struct {
	ID            string  `json:"id"`
	Kind          Kind    `json:"type"`
	Points        float64 `json:"points"`
	CorrectAnswer any     `json:"correct_answer"`
	StudentAnswer any     `json:"student_answer"`
	TimeSpent     int     `json:"time_spent"`
	Attempts      int     `json:"attempts"`
}

// QuestionMeta is the grouping metadata for breakdowns, parallel by index to
// the questions passed to ScoreTest.
type QuestionMeta struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"type"`
	Difficulty string `json:"difficulty"`
	Subject    string `json:"subject"`
	TimeSpent  int    `json:"time_spent"`
}

// QuestionScore is the graded result for a single question.
type QuestionScore struct {
	QuestionID     string  `json:"question_id"`
	PointsEarned   float64 `json:"points_earned"`
	PointsPossible float64 `json:"points_possible"`
	Percentage     float64 `json:"percentage"`
	IsCorrect      bool    `json:"is_correct"`
	TimeSpent      int     `json:"time_spent"`
	Attempts       int     `json:"attempts"`
}

// TestScore is the aggregate result for a full attempt.
// TotalScore equals the sum of PointsEarned; MaxScore the sum of
// PointsPossible.
type TestScore struct {
	TotalScore     float64         `json:"total_score"`
	MaxScore       float64         `json:"max_score"`
	Percentage     float64         `json:"percentage"`
	Passed         bool            `json:"passed"`
	PassThreshold  float64         `json:"pass_threshold"`
	QuestionScores []QuestionScore `json:"question_scores"`
	TimeSpent      int             `json:"time_spent"`
	Attempts       int             `json:"attempts"`
	SubmittedAt    time.Time       `json:"submitted_at"`
}

// GroupStats aggregates question scores along one dimension value.
type GroupStats struct {
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	AccuracyRate   float64 `json:"accuracy_rate"`
	AverageTime    float64 `json:"average_time"`
}

// Breakdown groups an attempt's question scores by type, difficulty, and
// subject.
type Breakdown struct {
	ByKind       map[Kind]GroupStats   `json:"by_type"`
	ByDifficulty map[string]GroupStats `json:"by_difficulty"`
	BySubject    map[string]GroupStats `json:"by_subject"`
}

// Trend classifies attempt-over-attempt movement.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Comparison relates the current attempt to a prior one and to cohort
// averages. PercentileRank is a clamped ratio against the class average, not
// a statistically rigorous percentile; it degrades to 50 when no class
// average is supplied.
type Comparison struct {
	Current        TestScore  `json:"current_score"`
	Previous       *TestScore `json:"previous_score,omitempty"`
	Improvement    float64    `json:"improvement"`
	Trend          Trend      `json:"trend"`
	PercentileRank float64    `json:"percentile_rank"`
	ClassAverage   float64    `json:"class_average"`
	SchoolAverage  float64    `json:"school_average"`
}
