package medication

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record maps to the medication_record table: one row per medication
// statement pulled from the patient's GP record. Within a tenant schema a
// record is identified by (patient_id, remote_id); resyncs update in place
// rather than duplicating. Rows are never hard-deleted.
type Record struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	PatientID      uuid.UUID       `db:"patient_id" json:"patient_id"`
	RemoteID       string          `db:"remote_id" json:"remote_id"`
	Name           string          `db:"name" json:"name"`
	SnomedCode     *string         `db:"snomed_code" json:"snomed_code,omitempty"`
	DMDCode        *string         `db:"dmd_code" json:"dmd_code,omitempty"`
	DosageText     *string         `db:"dosage_text" json:"dosage_text,omitempty"`
	Status         *string         `db:"status" json:"status,omitempty"`
	EffectiveStart *time.Time      `db:"effective_start" json:"effective_start,omitempty"`
	EffectiveEnd   *time.Time      `db:"effective_end" json:"effective_end,omitempty"`
	Prescriber     *string         `db:"prescriber" json:"prescriber,omitempty"`
	SourcePayload  json.RawMessage `db:"source_payload" json:"-"`
	LastSyncedAt   time.Time       `db:"last_synced_at" json:"last_synced_at"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}
