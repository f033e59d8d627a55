package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/stemsi/exstem-mobile-core/internal/config"
	"github.com/stemsi/exstem-mobile-core/internal/logger"
	"github.com/stemsi/exstem-mobile-core/pkg/scoring"
)

// reportInput is the JSON document grade-report consumes.
type reportInput struct {
	Questions          []scoring.Question     `json:"questions"`
	Meta               []scoring.QuestionMeta `json:"meta"`
	PreviousPercentage *float64               `json:"previous_percentage,omitempty"`
	ClassAverage       float64                `json:"class_average,omitempty"`
	SchoolAverage      float64                `json:"school_average,omitempty"`
}

type report struct {
	Score           scoring.TestScore  `json:"score"`
	Breakdown       scoring.Breakdown  `json:"breakdown"`
	Comparison      scoring.Comparison `json:"comparison"`
	Insights        []string           `json:"insights"`
	Recommendations []string           `json:"recommendations"`
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	input := flag.String("input", "-", "answered-test JSON file, or - for stdin")
	passThreshold := flag.Float64("pass-threshold", cfg.PassThreshold, "minimum passing percentage")
	penaltyThreshold := flag.Int("penalty-threshold", cfg.PenaltyThresholdSec, "time-penalty threshold in seconds")
	flag.Parse()

	// ─── Read Input ────────────────────────────────────────────────────
	var raw []byte
	var err error
	if *input == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(*input)
	}
	if err != nil {
		log.Fatal().Err(err).Str("input", *input).Msg("Failed to read input")
	}

	var in reportInput
	if err := json.Unmarshal(raw, &in); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse input JSON")
	}

	// ─── Grade ─────────────────────────────────────────────────────────
	score := scoring.ScoreTest(in.Questions,
		scoring.WithPassThreshold(*passThreshold),
		scoring.WithPenaltyThreshold(*penaltyThreshold),
	)
	breakdown := scoring.BuildBreakdown(score, in.Meta)

	var previous *scoring.TestScore
	if in.PreviousPercentage != nil {
		previous = &scoring.TestScore{Percentage: *in.PreviousPercentage}
	}
	comparison := scoring.Compare(score, previous, in.ClassAverage, in.SchoolAverage)

	out := report{
		Score:           score,
		Breakdown:       breakdown,
		Comparison:      comparison,
		Insights:        scoring.Insights(score, breakdown, comparison),
		Recommendations: scoring.Recommendations(score, breakdown),
	}

	// ─── Print Report ──────────────────────────────────────────────────
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode report")
	}
	fmt.Println(string(encoded))
}
