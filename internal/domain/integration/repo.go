package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	GetByProvider(ctx context.Context, provider string) (*Config, error)
	Upsert(ctx context.Context, cfg *Config) error
	RecordTestResult(ctx context.Context, id uuid.UUID, ok bool, testedAt time.Time) error
}
