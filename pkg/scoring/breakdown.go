package scoring

// BuildBreakdown groups question scores by type, difficulty, and subject.
// meta is parallel by index to the questions originally scored; extra entries
// on either side are ignored.
func BuildBreakdown(ts TestScore, meta []QuestionMeta) Breakdown {
	n := len(ts.QuestionScores)
	if len(meta) < n {
		n = len(meta)
	}

	kinds := newGrouper()
	difficulties := newGrouper()
	subjects := newGrouper()

	for i := 0; i < n; i++ {
		qs := ts.QuestionScores[i]
		kinds.add(string(meta[i].Kind), qs)
		difficulties.add(meta[i].Difficulty, qs)
		subjects.add(meta[i].Subject, qs)
	}

	byKind := make(map[Kind]GroupStats, len(kinds.groups))
	for k, g := range kinds.groups {
		byKind[Kind(k)] = g.stats()
	}

	return Breakdown{
		ByKind:       byKind,
		ByDifficulty: difficulties.stats(),
		BySubject:    subjects.stats(),
	}
}

type groupAccum struct {
	total   int
	correct int
	time    int
}

func (g groupAccum) stats() GroupStats {
	s := GroupStats{
		TotalQuestions: g.total,
		CorrectAnswers: g.correct,
	}
	if g.total > 0 {
		s.AccuracyRate = round2(float64(g.correct) / float64(g.total) * 100)
		s.AverageTime = round2(float64(g.time) / float64(g.total))
	}
	return s
}

type grouper struct {
	groups map[string]groupAccum
}

func newGrouper() *grouper {
	return &grouper{groups: make(map[string]groupAccum)}
}

func (gr *grouper) add(key string, qs QuestionScore) {
	g := gr.groups[key]
	g.total++
	if qs.IsCorrect {
		g.correct++
	}
	g.time += qs.TimeSpent
	gr.groups[key] = g
}

func (gr *grouper) stats() map[string]GroupStats {
	out := make(map[string]GroupStats, len(gr.groups))
	for k, g := range gr.groups {
		out[k] = g.stats()
	}
	return out
}
