// Package scoring converts a free-text answer plus elapsed time into
// clarity, relevance and confidence scores. It is side-effect free and
// depends on nothing but the question being answered.
package scoring

import (
	"math"
	"strings"
	"unicode"

	"github.com/okatenko/prepflow/internal/question"
)

// neutralRelevance is reported when a question carries no expected points to
// match against.
const neutralRelevance = 70

// Metrics is the scored outcome of one answer.
type Metrics struct {
	Relevance      int
	Clarity        int
	Confidence     int
	WordsPerMinute float64
}

// Score rates the answer against the question's expected points and the time
// spent producing it. All score outputs are within [0, 100].
func Score(q question.Record, answer string, elapsedSeconds int) Metrics {
	words := countWords(answer)
	wpm := float64(words) / math.Max(float64(elapsedSeconds), 1) * 60

	return Metrics{
		Relevance:      clamp(relevance(q.ExpectedPoints, answer)),
		Clarity:        clamp(clarity(wpm)),
		Confidence:     clamp(confidence(words)),
		WordsPerMinute: wpm,
	}
}

// relevance counts expected phrases sharing at least one token with the
// answer and converts the ratio to a percentage.
func relevance(expectedPoints []string, answer string) int {
	if len(expectedPoints) == 0 {
		return neutralRelevance
	}

	answerTokens := tokens(answer)

	matched := 0
	for _, point := range expectedPoints {
		if overlaps(tokens(point), answerTokens) {
			matched++
		}
	}

	return int(math.Round(float64(matched) / float64(len(expectedPoints)) * 100))
}

// clarity rewards a moderate speaking pace. Both rambling and terseness are
// penalized.
func clarity(wpm float64) int {
	switch {
	case wpm > 150:
		return 60
	case wpm >= 100:
		return 90
	case wpm >= 50:
		return 75
	default:
		return 50
	}
}

// confidence grows with the amount of content in the answer.
func confidence(words int) int {
	switch {
	case words >= 80:
		return 95
	case words >= 40:
		return 85
	case words >= 20:
		return 70
	case words >= 5:
		return 55
	case words > 0:
		return 40
	default:
		return 0
	}
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

// tokens splits text into a lowercase word set.
func tokens(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func overlaps(a, b map[string]struct{}) bool {
	for token := range a {
		if _, ok := b[token]; ok {
			return true
		}
	}
	return false
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
