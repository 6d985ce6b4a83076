package profile

import (
	"errors"
	"fmt"
	"strings"
)

// MinTextLength is the minimum number of characters a raw profile text must
// contain before it is worth sending to a content provider.
const MinTextLength = 50

// ErrTextTooShort is returned when a raw profile text is too short to parse.
var ErrTextTooShort = errors.New("profile text is too short to analyze")

// Experience is a single position held by the candidate.
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// Project is a single project entry on the candidate profile.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// Profile is the structured candidate profile consumed by the engine.
// It is supplied once at session setup and never mutated afterwards.
type Profile struct {
	Name        string       `json:"name"`
	CurrentRole string       `json:"current_role"`
	TargetRole  string       `json:"target_role,omitempty"`
	Skills      []string     `json:"skills"`
	Experience  []Experience `json:"experience"`
	Projects    []Project    `json:"projects"`
}

// ValidateText checks that a raw profile text is long enough to be parsed.
func ValidateText(text string) error {
	if len(strings.TrimSpace(text)) < MinTextLength {
		return fmt.Errorf("%w: need at least %d characters", ErrTextTooShort, MinTextLength)
	}
	return nil
}

// Summary renders the profile as a compact text block for prompt building.
func (p *Profile) Summary() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Current role: %s\n", p.CurrentRole)
	if p.TargetRole != "" {
		fmt.Fprintf(&b, "Target role: %s\n", p.TargetRole)
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(p.Skills, ", "))
	}
	for _, exp := range p.Experience {
		fmt.Fprintf(&b, "Experience: %s at %s (%s): %s\n", exp.Title, exp.Company, exp.Duration, exp.Description)
	}
	for _, prj := range p.Projects {
		fmt.Fprintf(&b, "Project: %s (%s): %s\n", prj.Name, strings.Join(prj.Technologies, ", "), prj.Description)
	}

	return strings.TrimSpace(b.String())
}
