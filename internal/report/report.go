// Package report turns the per-question evaluations of a finished session
// into a categorized summary.
package report

import (
	"math"
	"strings"

	"github.com/okatenko/prepflow/internal/question"
)

// Category buckets strengths and improvements by competency.
type Category string

const (
	CategoryTechnical      Category = "technical"
	CategoryCommunication  Category = "communication"
	CategoryProblemSolving Category = "problemSolving"
)

// categoryKeywords marks an evaluation string as belonging to a category when
// any of the keywords occurs in it.
var categoryKeywords = map[Category][]string{
	CategoryTechnical:      {"technical", "skill", "technology", "code", "architecture"},
	CategoryCommunication:  {"communicate", "communication", "explain", "articulate", "clarity"},
	CategoryProblemSolving: {"problem", "solution", "solve", "approach", "analytical"},
}

// QuestionResult is one row of the per-question breakdown.
type QuestionResult struct {
	QuestionID string        `json:"question_id"`
	Prompt     string        `json:"prompt"`
	Kind       question.Kind `json:"kind"`
	Rating     int           `json:"rating"`
	Clarity    int           `json:"clarity"`
	Relevance  int           `json:"relevance"`
	Confidence int           `json:"confidence"`
}

// Summary is the final report produced at the end of a session.
type Summary struct {
	OverallScore           int                   `json:"overall_score"`
	InsufficientData       bool                  `json:"insufficient_data"`
	CategoryScores         map[Category]int      `json:"category_scores"`
	StrengthsByCategory    map[Category][]string `json:"strengths_by_category"`
	ImprovementsByCategory map[Category][]string `json:"improvements_by_category"`
	QuestionBreakdown      []QuestionResult      `json:"question_breakdown"`
	NextSteps              []string              `json:"next_steps"`
}

// Build aggregates the evaluations of a session into a Summary. An empty
// evaluation list yields a zero overall score flagged as insufficient data.
func Build(questions []question.Record, evaluations []question.Evaluation) *Summary {
	summary := &Summary{
		CategoryScores:         make(map[Category]int),
		StrengthsByCategory:    make(map[Category][]string),
		ImprovementsByCategory: make(map[Category][]string),
	}

	if len(evaluations) == 0 {
		summary.InsufficientData = true
		return summary
	}

	prompts := make(map[string]question.Record, len(questions))
	for _, q := range questions {
		prompts[q.ID] = q
	}

	categoryHits := make(map[Category]int)
	seenImprovements := make(map[Category]map[string]struct{})
	ratingTotal := 0

	for _, eval := range evaluations {
		ratingTotal += eval.Rating

		for _, strength := range eval.Strengths {
			for _, cat := range categorize(strength) {
				categoryHits[cat]++
				summary.StrengthsByCategory[cat] = append(summary.StrengthsByCategory[cat], strength)
			}
		}

		for _, improvement := range eval.Improvements {
			for _, cat := range categorize(improvement) {
				categoryHits[cat]++
				if seenImprovements[cat] == nil {
					seenImprovements[cat] = make(map[string]struct{})
				}
				if _, dup := seenImprovements[cat][improvement]; dup {
					continue
				}
				seenImprovements[cat][improvement] = struct{}{}
				summary.ImprovementsByCategory[cat] = append(summary.ImprovementsByCategory[cat], improvement)
			}
		}

		q := prompts[eval.QuestionID]
		summary.QuestionBreakdown = append(summary.QuestionBreakdown, QuestionResult{
			QuestionID: eval.QuestionID,
			Prompt:     q.Prompt,
			Kind:       q.Kind,
			Rating:     eval.Rating,
			Clarity:    eval.Clarity,
			Relevance:  eval.Relevance,
			Confidence: eval.Confidence,
		})
	}

	total := len(evaluations)
	summary.OverallScore = int(math.Round(float64(ratingTotal) / float64(total) / 5 * 100))

	for cat := range categoryKeywords {
		score := int(math.Round(float64(categoryHits[cat]) / float64(total) * 100))
		if score > 100 {
			score = 100
		}
		summary.CategoryScores[cat] = score
	}

	summary.NextSteps = nextSteps(summary.CategoryScores)

	return summary
}

// nextSteps recommends practice areas for the weakest categories.
func nextSteps(scores map[Category]int) []string {
	recommendations := map[Category]string{
		CategoryTechnical:      "Practice explaining technical decisions with concrete examples.",
		CategoryCommunication:  "Rehearse answers out loud to tighten structure and pacing.",
		CategoryProblemSolving: "Work through problems step by step, stating assumptions first.",
	}

	steps := make([]string, 0, len(recommendations))
	for _, cat := range []Category{CategoryTechnical, CategoryCommunication, CategoryProblemSolving} {
		if scores[cat] < 50 {
			steps = append(steps, recommendations[cat])
		}
	}
	return steps
}

func categorize(s string) []Category {
	lower := strings.ToLower(s)

	var cats []Category
	for _, cat := range []Category{CategoryTechnical, CategoryCommunication, CategoryProblemSolving} {
		for _, keyword := range categoryKeywords[cat] {
			if strings.Contains(lower, keyword) {
				cats = append(cats, cat)
				break
			}
		}
	}
	return cats
}
