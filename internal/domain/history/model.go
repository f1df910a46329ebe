package history

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry types recorded in the ledger.
const (
	EntryTypeMedication = "medication"
	EntryTypeCondition  = "condition"
)

// Normalized condition statuses.
const (
	StatusActive      = "ACTIVE"
	StatusResolved    = "RESOLVED"
	StatusInRemission = "IN_REMISSION"
	StatusRecurring   = "RECURRING"
)

// Normalized severities.
const (
	SeverityMild     = "MILD"
	SeverityModerate = "MODERATE"
	SeveritySevere   = "SEVERE"
)

// Source markers distinguishing synced entries from locally recorded ones.
const (
	SourceGPConnect = "gpconnect"
	SourceLocal     = "local"
)

// Entry maps to the medical_history_entry table, the patient's generalized
// medical history ledger. Externally sourced entries carry the remote
// resource id; (patient_id, remote_id, external) is the insert-once key for
// synced conditions.
type Entry struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	PatientID     uuid.UUID       `db:"patient_id" json:"patient_id"`
	EntryType     string          `db:"entry_type" json:"entry_type"`
	Title         string          `db:"title" json:"title"`
	Details       *string         `db:"details" json:"details,omitempty"`
	Status        *string         `db:"status" json:"status,omitempty"`
	Severity      *string         `db:"severity" json:"severity,omitempty"`
	Source        string          `db:"source" json:"source"`
	External      bool            `db:"external" json:"external"`
	RemoteID      *string         `db:"remote_id" json:"remote_id,omitempty"`
	OccurredAt    *time.Time      `db:"occurred_at" json:"occurred_at,omitempty"`
	ResolvedAt    *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
	RecordedAt    time.Time       `db:"recorded_at" json:"recorded_at"`
	Recorder      *string         `db:"recorder" json:"recorder,omitempty"`
	SourcePayload json.RawMessage `db:"source_payload" json:"-"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// MapClinicalStatus normalizes a FHIR clinical status code. Unrecognized
// or empty values map to ACTIVE, the safe default for something a GP still
// holds on the record.
func MapClinicalStatus(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "resolved", "inactive":
		return StatusResolved
	case "remission":
		return StatusInRemission
	case "recurrence", "relapse":
		return StatusRecurring
	default:
		return StatusActive
	}
}

// MapSeverity normalizes a free-text severity display by case-insensitive
// substring match. Anything unrecognized maps to nil rather than a guess.
func MapSeverity(display string) *string {
	lower := strings.ToLower(display)
	var out string
	switch {
	case strings.Contains(lower, "mild"):
		out = SeverityMild
	case strings.Contains(lower, "moderate"):
		out = SeverityModerate
	case strings.Contains(lower, "severe"):
		out = SeveritySevere
	default:
		return nil
	}
	return &out
}
