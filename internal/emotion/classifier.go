package emotion

const (
	Schema = "six-basic"
	Engine = "go-keyword-v1"
)

// Classifier combines a Normalizer with a fixed profile table. It holds no
// per-call state, so one Classifier can serve concurrent callers as long as
// its Corrector can.
type Classifier struct {
	table      *Table
	normalizer *Normalizer
}

func NewClassifier(table *Table, normalizer *Normalizer) *Classifier {
	if table == nil {
		table = DefaultTable()
	}
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &Classifier{table: table, normalizer: normalizer}
}

func (c *Classifier) Classify(text string) Result {
	return ScoreTokens(c.normalizer.Normalize(text), c.table)
}

func (c *Classifier) Table() *Table {
	return c.table
}

func (c *Classifier) Chart(r Result) ChartData {
	return Chart(r, c.table)
}
