package integration

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/carelink/carelink/internal/platform/gpconnect"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LoadCredentials returns the tenant's GP Connect credential set. Absent or
// disabled configuration is a normal outcome, reported as ErrNotConfigured;
// nothing should be attempted against the remote endpoint in that case.
func (s *Service) LoadCredentials(ctx context.Context) (gpconnect.Credentials, error) {
	cfg, err := s.repo.GetByProvider(ctx, ProviderGPConnect)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return gpconnect.Credentials{}, gpconnect.ErrNotConfigured
		}
		return gpconnect.Credentials{}, fmt.Errorf("load integration config: %w", err)
	}
	if !cfg.Enabled {
		return gpconnect.Credentials{}, gpconnect.ErrNotConfigured
	}
	return cfg.Credentials(), nil
}

// Get returns the stored configuration, or ErrNotConfigured when none exists.
func (s *Service) Get(ctx context.Context) (*Config, error) {
	cfg, err := s.repo.GetByProvider(ctx, ProviderGPConnect)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gpconnect.ErrNotConfigured
		}
		return nil, fmt.Errorf("load integration config: %w", err)
	}
	return cfg, nil
}

// Save validates and stores the configuration for the tenant.
func (s *Service) Save(ctx context.Context, cfg *Config) error {
	cfg.Provider = ProviderGPConnect
	if cfg.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if u, err := url.Parse(cfg.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint must be an absolute URL")
	}
	if cfg.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if cfg.Enabled {
		if cfg.SigningKeyPEM == "" {
			return fmt.Errorf("signing key is required to enable the integration")
		}
		if cfg.FromASID == "" || cfg.ToASID == "" {
			return fmt.Errorf("both ASIDs are required to enable the integration")
		}
	}
	return s.repo.Upsert(ctx, cfg)
}

// TestConnection verifies the stored credentials produce a usable signer
// and records the outcome on the configuration row.
func (s *Service) TestConnection(ctx context.Context) (bool, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return false, err
	}

	_, signerErr := gpconnect.NewSigner(cfg.Credentials())
	ok := signerErr == nil

	if err := s.repo.RecordTestResult(ctx, cfg.ID, ok, time.Now().UTC()); err != nil {
		return ok, fmt.Errorf("record test result: %w", err)
	}
	if signerErr != nil {
		return false, signerErr
	}
	return true, nil
}
