package medication

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByRemoteID(ctx context.Context, patientID uuid.UUID, remoteID string) (*Record, error)
	Create(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error)
}
