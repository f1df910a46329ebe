package syncrun

import (
	"time"

	"github.com/google/uuid"
)

// Sync kinds.
const (
	KindMedications = "medications"
	KindConditions  = "conditions"
)

// Run statuses. A run moves from in_progress to exactly one terminal state;
// a retried sync is always a brand-new run.
const (
	StatusInProgress = "in_progress"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
)

// Run maps to the sync_run table, the audit trail for every sync attempt.
type Run struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	Kind         string     `db:"kind" json:"kind"`
	Status       string     `db:"status" json:"status"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Fetched      int        `db:"fetched" json:"fetched"`
	Created      int        `db:"created" json:"created"`
	Updated      int        `db:"updated" json:"updated"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
}

// Counts summarizes what a finished run did.
type Counts struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}
