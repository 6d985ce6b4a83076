package question

import "github.com/google/uuid"

// Kind classifies a question by the competency it probes.
type Kind string

const (
	KindIntroduction Kind = "introduction"
	KindTechnical    Kind = "technical"
	KindBehavioral   Kind = "behavioral"
	KindExperience   Kind = "experience"
	KindProject      Kind = "project"
	KindClosing      Kind = "closing"
)

// Known reports whether the kind is one of the recognized values.
func (k Kind) Known() bool {
	switch k {
	case KindIntroduction, KindTechnical, KindBehavioral, KindExperience, KindProject, KindClosing:
		return true
	}
	return false
}

// FollowUpRule pairs a trigger condition with a prepared follow-up prompt.
type FollowUpRule struct {
	Condition string `json:"condition"`
	Prompt    string `json:"prompt"`
}

// Record is a single immutable unit of interaction. It is created once by
// question generation (or follow-up insertion) and never mutated afterwards.
type Record struct {
	ID             string         `json:"id"`
	Kind           Kind           `json:"kind"`
	Prompt         string         `json:"prompt"`
	Context        string         `json:"context,omitempty"`
	ExpectedPoints []string       `json:"expected_points,omitempty"`
	FollowUpRules  []FollowUpRule `json:"follow_up_rules,omitempty"`

	// FollowUp marks records inserted dynamically after an answer. ParentID
	// points at the main question that produced them.
	FollowUp bool   `json:"follow_up,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

// Evaluation is the scored outcome of a single answered question. Entries are
// append-only on the session and never mutated after creation.
type Evaluation struct {
	QuestionID   string   `json:"question_id"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Rating       int      `json:"rating"`
	Clarity      int      `json:"clarity"`
	Relevance    int      `json:"relevance"`
	Confidence   int      `json:"confidence"`
}

// NewID returns a fresh question identifier.
func NewID() string {
	return uuid.NewString()
}
