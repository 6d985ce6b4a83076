package question

// Canonical content used whenever generated content is missing or unusable.
// The prompts are fixed so a session opener is deterministic regardless of
// remote content quality.

// CanonicalIntroduction returns the fixed opener prepended when generated
// content does not start with an introduction question.
func CanonicalIntroduction() Record {
	return Record{
		ID:      NewID(),
		Kind:    KindIntroduction,
		Prompt:  "Tell me about yourself and what led you to apply for this role.",
		Context: "Warm-up question to let the candidate settle in.",
		ExpectedPoints: []string{
			"background",
			"experience",
			"motivation",
		},
	}
}

// Fallbacks returns the deterministic five-question set used when remote
// question generation fails. The first entry is always an introduction.
func Fallbacks() []Record {
	return []Record{
		CanonicalIntroduction(),
		{
			ID:      NewID(),
			Kind:    KindExperience,
			Prompt:  "Walk me through the most impactful project you have worked on. What was your role?",
			Context: "Probes ownership and the candidate's contribution to past work.",
			ExpectedPoints: []string{
				"project",
				"role",
				"impact",
				"team",
			},
		},
		{
			ID:      NewID(),
			Kind:    KindTechnical,
			Prompt:  "Describe a difficult technical problem you solved recently. How did you approach it?",
			Context: "Probes problem decomposition and technical depth.",
			ExpectedPoints: []string{
				"problem",
				"approach",
				"solution",
				"tradeoffs",
			},
		},
		{
			ID:      NewID(),
			Kind:    KindBehavioral,
			Prompt:  "Tell me about a time you disagreed with a teammate. How did you resolve it?",
			Context: "Probes communication and conflict resolution.",
			ExpectedPoints: []string{
				"communication",
				"conflict",
				"resolution",
				"outcome",
			},
		},
		{
			ID:      NewID(),
			Kind:    KindClosing,
			Prompt:  "Where do you see yourself growing in the next few years, and why does this role fit?",
			Context: "Closing question on motivation and fit.",
			ExpectedPoints: []string{
				"growth",
				"goals",
				"motivation",
			},
		},
	}
}
