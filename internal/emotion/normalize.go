package emotion

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrCorrectionUnavailable = errors.New("spelling correction unavailable")
	ErrCorrectionFailed      = errors.New("spelling correction failed")
	ErrInvalidEncoding       = errors.New("text is not valid utf-8")
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Corrector rewrites lowercased text with best-effort spelling fixes.
// A false second result means "keep the original text".
type Corrector interface {
	Correct(text string) (string, bool)
}

// Normalizer lowercases, spell-corrects and tokenizes text.
type Normalizer struct {
	// Corrector may be nil, which disables spelling correction.
	Corrector Corrector
	// Fallback observes every correction that was abandoned.
	Fallback func(err error)
}

func NewNormalizer(c Corrector) *Normalizer {
	return &Normalizer{Corrector: c}
}

func (n *Normalizer) Normalize(text string) []string {
	lowered := Lower(text)
	if n == nil || n.Corrector == nil || lowered == "" {
		return Tokenize(lowered)
	}
	if !utf8.ValidString(text) {
		n.fallback(ErrInvalidEncoding)
		return Tokenize(lowered)
	}
	return Tokenize(n.correct(lowered))
}

func (n *Normalizer) correct(text string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			n.fallback(fmt.Errorf("%w: %v", ErrCorrectionFailed, r))
			out = text
		}
	}()

	corrected, ok := n.Corrector.Correct(text)
	if !ok {
		n.fallback(ErrCorrectionUnavailable)
		return text
	}
	if corrected == "" {
		n.fallback(ErrCorrectionFailed)
		return text
	}
	return corrected
}

func (n *Normalizer) fallback(err error) {
	if n.Fallback != nil {
		n.Fallback(err)
	}
}

// Lower applies locale-independent lowercasing.
func Lower(text string) string {
	return cases.Lower(language.Und).String(text)
}

// Tokenize extracts maximal runs of letters, digits and underscores.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(text, -1)
}
