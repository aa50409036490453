package types

import (
	"errors"
	"time"
)

var ErrNeedNotFound = errors.New("need not found")

type NeedStatus string

const (
	NeedStatusNew        NeedStatus = "NEW"
	NeedStatusInReview   NeedStatus = "IN_REVIEW"
	NeedStatusInProgress NeedStatus = "IN_PROGRESS"
	NeedStatusDone       NeedStatus = "DONE"
	NeedStatusArchived   NeedStatus = "ARCHIVED"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Need is a prospective client's intake record. Created once per accepted
// submission, mutated only by staff (status, notes) and never hard-deleted.
type Need struct {
	ID string `db:"id" json:"id"`

	ClientName  string  `db:"client_name" json:"clientName"`
	ClientEmail *string `db:"client_email" json:"clientEmail"`
	ClientPhone *string `db:"client_phone" json:"clientPhone"`
	CompanyName *string `db:"company_name" json:"companyName"`

	ProblemDescription string  `db:"problem_description" json:"problemDescription"`
	CurrentSituation   string  `db:"current_situation" json:"currentSituation"`
	DesiredSolution    string  `db:"desired_solution" json:"desiredSolution"`
	KnownAppReferences *string `db:"known_app_references" json:"knownAppReferences"`

	BudgetMin          *float64 `db:"budget_min" json:"budgetMin"`
	BudgetMax          *float64 `db:"budget_max" json:"budgetMax"`
	DeadlinePreference *string  `db:"deadline_preference" json:"deadlinePreference"`
	Priority           Priority `db:"priority" json:"priority"`
	Language           *string  `db:"language" json:"language"`

	Status        NeedStatus `db:"status" json:"status"`
	InternalNotes *string    `db:"internal_notes" json:"internalNotes"`

	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

type FileType string

const (
	FileTypeImage    FileType = "IMAGE"
	FileTypeDocument FileType = "DOCUMENT"
	FileTypeAudio    FileType = "AUDIO"
	FileTypeVideo    FileType = "VIDEO"
	FileTypeOther    FileType = "OTHER"
)

// NeedFile is attachment metadata owned by exactly one Need. Immutable after
// intake; the bytes live in object storage at URL.
type NeedFile struct {
	ID           string    `db:"id" json:"id"`
	NeedID       string    `db:"need_id" json:"needId"`
	Type         FileType  `db:"type" json:"type"`
	URL          string    `db:"url" json:"url"`
	OriginalName string    `db:"original_name" json:"originalName"`
	Size         int64     `db:"size" json:"size"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
