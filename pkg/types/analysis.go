package types

import (
	"errors"
	"time"
)

// ErrUpstream wraps failures of the external completion service. Analysis is
// asynchronous relative to the submission, so this never reaches the submitter.
var ErrUpstream = errors.New("completion service failure")

type ComplexityLevel string

const (
	ComplexityLow    ComplexityLevel = "LOW"
	ComplexityMedium ComplexityLevel = "MEDIUM"
	ComplexityHigh   ComplexityLevel = "HIGH"
)

// NeedAnalysis is one run of the assessment engine for a need. Append-only:
// re-running analysis inserts a new row and the most recent one wins for
// display.
type NeedAnalysis struct {
	ID     string `db:"id" json:"id"`
	NeedID string `db:"need_id" json:"needId"`

	Summary          string `db:"summary" json:"summary"`
	Objectives       string `db:"objectives" json:"objectives"`
	ProposedSolution string `db:"proposed_solution" json:"proposedSolution"`

	ComplexityLevel      ComplexityLevel `db:"complexity_level" json:"complexityLevel"`
	EstimatedDuration    *string         `db:"estimated_duration" json:"estimatedDuration"`
	EstimatedBudgetRange *string         `db:"estimated_budget_range" json:"estimatedBudgetRange"`
	Risks                *string         `db:"risks" json:"risks"`

	PriorityScore   int     `db:"priority_score" json:"priorityScore"`
	IsUrgent        bool    `db:"is_urgent" json:"isUrgent"`
	Recommendations *string `db:"recommendations" json:"recommendations"`
	TechnicalSpecs  *string `db:"technical_specs" json:"technicalSpecs"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
