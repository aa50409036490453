package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"intakedesk/pkg/types"
)

// completionResult mirrors the key set requested from the model. Pointer
// fields distinguish "absent" from zero values; priorityScore and isUrgent
// deliberately tolerate wrong types since the upstream is free text.
type completionResult struct {
	Summary          string `json:"summary"`
	Objectives       string `json:"objectives"`
	ProposedSolution string `json:"proposedSolution"`

	ComplexityLevel      string  `json:"complexityLevel"`
	EstimatedDuration    *string `json:"estimatedDuration"`
	EstimatedBudgetRange *string `json:"estimatedBudgetRange"`
	Risks                *string `json:"risks"`

	PriorityScore   json.RawMessage `json:"priorityScore"`
	IsUrgent        json.RawMessage `json:"isUrgent"`
	Recommendations *string         `json:"recommendations"`
	TechnicalSpecs  *string         `json:"technicalSpecs"`
}

// parseCompletion decodes the model output. Models routinely wrap JSON in
// markdown fences despite the response MIME type, so those are stripped first.
func parseCompletion(raw string) (*completionResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result completionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("decode completion payload: %w", err)
	}

	return &result, nil
}

func (r *completionResult) complexity() types.ComplexityLevel {
	switch strings.ToUpper(strings.TrimSpace(r.ComplexityLevel)) {
	case "LOW":
		return types.ComplexityLow
	case "HIGH":
		return types.ComplexityHigh
	default:
		return types.ComplexityMedium
	}
}

// priorityScore returns the model-supplied score and whether it is usable:
// present, numeric and inside [0,100].
func (r *completionResult) priorityScore() (int, bool) {
	if len(r.PriorityScore) == 0 || string(r.PriorityScore) == "null" {
		return 0, false
	}

	var score float64
	if err := json.Unmarshal(r.PriorityScore, &score); err != nil {
		return 0, false
	}

	v := int(score)
	if v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}

// isUrgentFlag returns the model-supplied urgency and whether it was an
// actual boolean.
func (r *completionResult) isUrgentFlag() (bool, bool) {
	if len(r.IsUrgent) == 0 || string(r.IsUrgent) == "null" {
		return false, false
	}

	var urgent bool
	if err := json.Unmarshal(r.IsUrgent, &urgent); err != nil {
		return false, false
	}
	return urgent, true
}
