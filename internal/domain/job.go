package domain

import "time"

// JobStatus enumerates the video generation job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether the status allows no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransition reports whether moving from s to next is a legal forward
// transition. Statuses only move forward; terminal states never change.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusProcessing
	case JobStatusProcessing:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// JobRecord tracks one video generation request across its lifetime. The ID
// doubles as the idempotency and correlation key for ledger entries, storage
// keys and provider operations.
type JobRecord struct {
	ID             string
	OrganizationID string
	RequesterID    string
	Status         JobStatus
	Request        GenerationRequest
	Result         *JobResult
	// OperationName is the provider's long-running operation handle, kept
	// on the record once submission succeeds so an in-flight job remains
	// diagnosable after a process restart.
	OperationName string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// JobResult is the terminal payload of a job. URL/Attempts/ElapsedSeconds are
// set on completion; Error/Classification/Refunded/FailedAt on failure.
type JobResult struct {
	URL            string     `json:"url,omitempty"`
	Attempts       int        `json:"attempts,omitempty"`
	ElapsedSeconds float64    `json:"elapsed_seconds,omitempty"`
	Error          string     `json:"error,omitempty"`
	Classification ErrorClass `json:"classification,omitempty"`
	Refunded       bool       `json:"refunded,omitempty"`
	FailedAt       *time.Time `json:"failed_at,omitempty"`
}
