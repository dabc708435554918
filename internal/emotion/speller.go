package emotion

import (
	"bufio"
	_ "embed"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sajari/fuzzy"
)

//go:embed words.txt
var defaultWords string

const (
	spellDepth = 1
	// a word must be seen more than spellThreshold times to count as known
	spellThreshold = 1
	minSpellRunes  = 4
	maxSpellEdits  = 1
)

// WordCount is one entry of a word-frequency corpus.
type WordCount struct {
	Word  string
	Count int
}

// Speller corrects misspelled words against a word-frequency model.
// Punctuation and spacing are preserved; only word runs are replaced.
type Speller struct {
	model *fuzzy.Model
}

// NewSpeller trains on the embedded English frequency list plus every keyword
// of table.
func NewSpeller(table *Table) *Speller {
	var extra []string
	if table != nil {
		extra = table.Keywords()
	}
	return NewSpellerWithCounts(DefaultWordCounts(), extra...)
}

// NewSpellerWithWords trains on words given in descending frequency order.
func NewSpellerWithWords(words []string, keywords ...string) *Speller {
	counts := make([]WordCount, 0, len(words))
	for i, w := range words {
		counts = append(counts, WordCount{Word: w, Count: len(words) - i + spellThreshold})
	}
	return NewSpellerWithCounts(counts, keywords...)
}

// NewSpellerWithCounts trains on a frequency corpus. Keywords keep their corpus
// count and are only raised to the minimum known count, so a common word still
// beats a keyword at the same distance.
func NewSpellerWithCounts(counts []WordCount, keywords ...string) *Speller {
	model := fuzzy.NewModel()
	model.SetThreshold(spellThreshold)
	model.SetDepth(spellDepth)
	model.SetUseAutocomplete(false)

	merged := make(map[string]int, len(counts)+len(keywords))
	for _, wc := range counts {
		w := strings.TrimSpace(wc.Word)
		if w == "" || wc.Count <= 0 {
			continue
		}
		if wc.Count > merged[w] {
			merged[w] = wc.Count
		}
	}
	for _, kw := range keywords {
		// multi-word keywords are never a single token
		if kw == "" || strings.ContainsRune(kw, ' ') {
			continue
		}
		if merged[kw] <= spellThreshold {
			merged[kw] = spellThreshold + 1
		}
	}
	for w, n := range merged {
		model.SetCount(w, n, true)
	}
	return &Speller{model: model}
}

func (s *Speller) Correct(text string) (string, bool) {
	if s == nil || s.model == nil {
		return text, false
	}
	return wordPattern.ReplaceAllStringFunc(text, s.correctWord), true
}

func (s *Speller) correctWord(word string) string {
	if utf8.RuneCountInString(word) < minSpellRunes || !isLetters(word) {
		return word
	}
	got := s.model.SpellCheck(word)
	if got == "" || got == word {
		return word
	}
	if fuzzy.Levenshtein(&word, &got) > maxSpellEdits {
		return word
	}
	return got
}

func isLetters(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// DefaultWordCounts returns the embedded frequency list, most frequent first.
func DefaultWordCounts() []WordCount {
	var out []WordCount
	sc := bufio.NewScanner(strings.NewReader(defaultWords))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n <= 0 {
			continue
		}
		out = append(out, WordCount{Word: fields[0], Count: n})
	}
	return out
}
