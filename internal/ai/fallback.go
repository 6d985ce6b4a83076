package ai

import (
	"github.com/okatenko/prepflow/internal/profile"
	"github.com/okatenko/prepflow/internal/question"
)

// Deterministic substitute content used whenever the provider fails or
// returns schema-invalid data. Every fallback satisfies the schema of its
// operation, so the flow controller downstream never sees the difference.

// FallbackQuestions returns the canonical five-question set.
func FallbackQuestions() []question.Record {
	return question.Fallbacks()
}

// FallbackEvaluation returns neutral feedback for an answer.
func FallbackEvaluation() *EvaluationPayload {
	return &EvaluationPayload{
		Strengths:    []string{"Good attempt at answering the question"},
		Improvements: []string{"Consider providing more detailed examples"},
		Rating:       3,
	}
}

// FallbackFollowUp acknowledges the answer without forcing a next question.
func FallbackFollowUp() *FollowUpSuggestion {
	return &FollowUpSuggestion{
		Acknowledgement: "Thank you, let's move on to the next question.",
	}
}

// FallbackProfile returns a generic profile so a session can still start when
// profile parsing fails.
func FallbackProfile() *profile.Profile {
	return &profile.Profile{
		Name:        "Candidate",
		CurrentRole: "Professional",
		Skills:      []string{"communication", "problem solving"},
	}
}
