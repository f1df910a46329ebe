package syncrun

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, run *Run) error
	Complete(ctx context.Context, id uuid.UUID, counts Counts) error
	Fail(ctx context.Context, id uuid.UUID, message string) error
	Get(ctx context.Context, id uuid.UUID) (*Run, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Run, int, error)
}
