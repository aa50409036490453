package analysis

import (
	"strings"

	"intakedesk/internal/utils"
	"intakedesk/pkg/types"
)

// Keywords that mark an urgent deadline preference.
var deadlineUrgencyKeywords = []string{"asap", "urgent", "immédiat"}

// Keywords scanned across the whole narrative when the model does not take a
// position on urgency.
var urgencyKeywords = []string{"urgent", "asap", "critique", "bloquant", "immédiat", "rapide", "prioritaire"}

// PriorityScore recomputes the deterministic fallback score used whenever the
// model omits priorityScore or puts it outside [0,100].
func PriorityScore(need *types.Need, complexity types.ComplexityLevel, urgent bool) int {
	score := 50

	if urgent {
		score += 30
	}

	switch complexity {
	case types.ComplexityHigh:
		score += 10
	case types.ComplexityLow:
		score -= 10
	}

	if need.BudgetMin != nil && *need.BudgetMin > 10000 {
		score += 10
	}
	if need.BudgetMax != nil && *need.BudgetMax > 50000 {
		score += 10
	}

	if containsAny(utils.PtrString(need.DeadlinePreference), deadlineUrgencyKeywords) {
		score += 20
	}

	switch need.Priority {
	case types.PriorityHigh:
		score += 15
	case types.PriorityLow:
		score -= 15
	}

	return clamp(score, 0, 100)
}

// DeriveUrgency decides the urgency flag independently of the model: keyword
// hit anywhere in the narrative or deadline text, or a HIGH declared priority.
func DeriveUrgency(need *types.Need) bool {
	if need.Priority == types.PriorityHigh {
		return true
	}

	text := strings.Join([]string{
		need.ProblemDescription,
		need.CurrentSituation,
		need.DesiredSolution,
		utils.PtrString(need.DeadlinePreference),
	}, " ")

	return containsAny(text, urgencyKeywords)
}

func containsAny(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
