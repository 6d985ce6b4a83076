package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// extractJSON strips markdown code fences the models like to wrap JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// unmarshalObject decodes a JSON object response into v after stripping fences.
func unmarshalObject(raw string, v any) error {
	if err := json.Unmarshal([]byte(extractJSON(raw)), v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func parseQuestions(raw string) ([]QuestionPayload, error) {
	cleaned := extractJSON(raw)

	var list []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
		// Some models wrap the list in an object.
		var wrapper map[string]any
		if err2 := json.Unmarshal([]byte(cleaned), &wrapper); err2 != nil {
			return nil, fmt.Errorf("parse questions response: %w", err)
		}
		items, ok := wrapper["questions"].([]any)
		if !ok {
			return nil, fmt.Errorf("parse questions response: no questions array")
		}
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("parse questions response: unexpected entry type")
			}
			list = append(list, m)
		}
	}

	payloads := make([]QuestionPayload, 0, len(list))
	for _, data := range list {
		payload := QuestionPayload{
			Kind:           strings.ToLower(coerceString(data["kind"])),
			Prompt:         coerceString(data["prompt"]),
			Context:        coerceString(data["context"]),
			ExpectedPoints: coerceStringSlice(data["expected_points"]),
		}
		for _, fu := range coerceSlice(data["follow_ups"]) {
			m, ok := fu.(map[string]any)
			if !ok {
				continue
			}
			payload.FollowUps = append(payload.FollowUps, FollowUpPayload{
				Condition: coerceString(m["condition"]),
				Prompt:    coerceString(m["prompt"]),
			})
		}
		payloads = append(payloads, payload)
	}

	return payloads, nil
}

func parseEvaluation(raw string) (*EvaluationPayload, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w", err)
	}

	return &EvaluationPayload{
		Strengths:    coerceStringSlice(data["strengths"]),
		Improvements: coerceStringSlice(data["improvements"]),
		Rating:       coerceInt(data["rating"]),
	}, nil
}

func parseFollowUp(raw string) (*FollowUpSuggestion, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse follow-up response: %w", err)
	}

	return &FollowUpSuggestion{
		Acknowledgement: coerceString(data["acknowledgement"]),
		NextQuestion:    coerceString(data["next_question"]),
	}, nil
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceInt(v any) int {
	switch val := v.(type) {
	case float64:
		return int(math.Round(val))
	case int:
		return val
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0
		}
		return int(math.Round(f))
	default:
		return 0
	}
}

func coerceSlice(v any) []any {
	if items, ok := v.([]any); ok {
		return items
	}
	return nil
}

func coerceStringSlice(v any) []string {
	items := coerceSlice(v)
	result := make([]string, 0, len(items))
	for _, item := range items {
		s := coerceString(item)
		if s == "" {
			continue
		}
		result = append(result, s)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
