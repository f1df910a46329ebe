package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	entries Repository
}

func NewService(entries Repository) *Service {
	return &Service{entries: entries}
}

// Append adds an entry to the patient's ledger unconditionally. Used for
// medication entries, which ride along with the medication record upsert.
func (s *Service) Append(ctx context.Context, e *Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	return s.entries.Create(ctx, e)
}

// AppendExternalOnce writes an externally sourced entry only if no entry
// with the same (patient, remote id, external) key exists. Synced
// conditions are recorded once and never modified by later syncs; the GP
// remains the system of record for their evolution. Returns true when a
// row was written.
func (s *Service) AppendExternalOnce(ctx context.Context, e *Entry) (bool, error) {
	if err := validateEntry(e); err != nil {
		return false, err
	}
	if e.RemoteID == nil || *e.RemoteID == "" {
		return false, fmt.Errorf("remote_id is required for external entries")
	}
	e.External = true

	exists, err := s.entries.ExistsExternal(ctx, e.PatientID, *e.RemoteID)
	if err != nil {
		return false, fmt.Errorf("check existing entry: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := s.entries.Create(ctx, e); err != nil {
		return false, fmt.Errorf("create history entry: %w", err)
	}
	return true, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	return s.entries.ListByPatient(ctx, patientID, limit, offset)
}

var validEntryTypes = map[string]bool{
	EntryTypeMedication: true,
	EntryTypeCondition:  true,
}

func validateEntry(e *Entry) error {
	if e.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if !validEntryTypes[e.EntryType] {
		return fmt.Errorf("invalid entry_type: %s", e.EntryType)
	}
	if e.Title == "" {
		return fmt.Errorf("title is required")
	}
	if e.Source == "" {
		e.Source = SourceLocal
	}
	return nil
}
