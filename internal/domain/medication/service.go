package medication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	records Repository
}

func NewService(records Repository) *Service {
	return &Service{records: records}
}

// Upsert writes one synced medication record. The natural key is
// (patient_id, remote_id): an existing row has all mapped fields replaced
// and its last-synced time bumped; otherwise a new row is inserted.
// Returns true when a row was created. Running the same sync twice leaves
// the table unchanged apart from timestamps.
func (s *Service) Upsert(ctx context.Context, rec *Record) (bool, error) {
	if rec.PatientID == uuid.Nil {
		return false, fmt.Errorf("patient_id is required")
	}
	if rec.RemoteID == "" {
		return false, fmt.Errorf("remote_id is required")
	}
	if rec.Name == "" {
		return false, fmt.Errorf("name is required")
	}

	rec.LastSyncedAt = time.Now().UTC()

	existing, err := s.records.GetByRemoteID(ctx, rec.PatientID, rec.RemoteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err := s.records.Create(ctx, rec); err != nil {
				return false, fmt.Errorf("create medication record: %w", err)
			}
			return true, nil
		}
		return false, fmt.Errorf("lookup medication record: %w", err)
	}

	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	if err := s.records.Update(ctx, rec); err != nil {
		return false, fmt.Errorf("update medication record: %w", err)
	}
	return false, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}
