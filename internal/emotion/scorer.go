package emotion

// Score is the match count of one emotion.
type Score struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// ScoreVector holds one entry per profile, in declaration order.
type ScoreVector []Score

func newScoreVector(t *Table) ScoreVector {
	v := make(ScoreVector, t.Len())
	for i, p := range t.profiles {
		v[i] = Score{Emotion: p.Name}
	}
	return v
}

func (v ScoreVector) Get(emotion string) int {
	for _, s := range v {
		if s.Emotion == emotion {
			return s.Count
		}
	}
	return 0
}

func (v ScoreVector) Total() int {
	total := 0
	for _, s := range v {
		total += s.Count
	}
	return total
}

func (v ScoreVector) Counts() []int {
	out := make([]int, len(v))
	for i, s := range v {
		out[i] = s.Count
	}
	return out
}

func (v ScoreVector) Clone() ScoreVector {
	return append(ScoreVector(nil), v...)
}

// Result is the outcome of one classification.
type Result struct {
	// Emotion is a profile name, Neutral or Mixed.
	Emotion string      `json:"emotion"`
	Label   string      `json:"label"`
	Color   string      `json:"color"`
	Scores  ScoreVector `json:"scores"`
}

// ScoreTokens counts keyword hits per profile and resolves a winner.
func ScoreTokens(tokens []string, table *Table) Result {
	scores := newScoreVector(table)
	for _, tok := range tokens {
		for i := range scores {
			if table.matches(i, tok) {
				scores[i].Count++
			}
		}
	}

	winner := resolve(scores)
	label, color := display(winner, table)
	return Result{
		Emotion: winner,
		Label:   label,
		Color:   color,
		Scores:  scores,
	}
}

// resolve walks scores in declaration order. An equal non-zero score after a
// winner exists turns the result into Mixed until a strictly higher score
// appears later.
func resolve(scores ScoreVector) string {
	maxScore := 0
	winner := Neutral
	for _, s := range scores {
		if s.Count > maxScore {
			maxScore = s.Count
			winner = s.Emotion
		} else if s.Count == maxScore && maxScore > 0 && winner != Neutral {
			winner = Mixed
		}
	}
	if maxScore == 0 {
		winner = Neutral
	}
	return winner
}

func display(winner string, table *Table) (string, string) {
	switch winner {
	case Mixed:
		return MixedLabel + " " + MixedGlyph, NeutralColor
	case Neutral:
		return Neutral + " " + NeutralGlyph, NeutralColor
	}
	p, ok := table.Lookup(winner)
	if !ok {
		return Neutral + " " + NeutralGlyph, NeutralColor
	}
	return p.Name + " " + p.Glyph, p.Color
}

// ChartData is three parallel lists in profile declaration order.
type ChartData struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
	Colors []string `json:"colors"`
}

func Chart(r Result, table *Table) ChartData {
	out := ChartData{
		Labels: make([]string, 0, len(r.Scores)),
		Data:   make([]int, 0, len(r.Scores)),
		Colors: make([]string, 0, len(r.Scores)),
	}
	for _, s := range r.Scores {
		color := NeutralColor
		if p, ok := table.Lookup(s.Emotion); ok {
			color = p.Color
		}
		out.Labels = append(out.Labels, s.Emotion)
		out.Data = append(out.Data, s.Count)
		out.Colors = append(out.Colors, color)
	}
	return out
}

// EmptyChart is the chart shown before any text has been classified.
func EmptyChart() ChartData {
	return ChartData{Labels: []string{}, Data: []int{}, Colors: []string{}}
}
