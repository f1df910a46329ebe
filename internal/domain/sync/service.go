package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/domain/history"
	"github.com/carelink/carelink/internal/domain/integration"
	"github.com/carelink/carelink/internal/domain/medication"
	"github.com/carelink/carelink/internal/domain/syncrun"
	"github.com/carelink/carelink/internal/platform/gpconnect"
)

// Service pulls a patient's GP record into the CRM. Each call loads the
// tenant's credentials, builds a fresh signer and client, and brackets the
// work with a sync_run row: the run is created only once configuration is
// known to be usable, and it always reaches a terminal state, on the error
// path included.
type Service struct {
	integrations *integration.Service
	medications  *medication.Service
	history      *history.Service
	runs         syncrun.Repository
	timeout      time.Duration
	logger       zerolog.Logger
}

func NewService(
	integrations *integration.Service,
	medications *medication.Service,
	historySvc *history.Service,
	runs syncrun.Repository,
	timeout time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		integrations: integrations,
		medications:  medications,
		history:      historySvc,
		runs:         runs,
		timeout:      timeout,
		logger:       logger,
	}
}

// SyncMedications fetches the patient's medication statements and upserts
// them. Configuration problems return before a run row exists; anything
// after that is recorded on the run before the error is returned.
func (s *Service) SyncMedications(ctx context.Context, patientID uuid.UUID, nhsNumber string) (*syncrun.Run, error) {
	client, err := s.buildClient(ctx)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, patientID, syncrun.KindMedications, func(run *syncrun.Run) (syncrun.Counts, error) {
		return s.syncMedications(ctx, client, patientID, nhsNumber)
	})
}

// SyncConditions fetches the patient's conditions and records each in the
// medical history ledger, once.
func (s *Service) SyncConditions(ctx context.Context, patientID uuid.UUID, nhsNumber string) (*syncrun.Run, error) {
	client, err := s.buildClient(ctx)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, patientID, syncrun.KindConditions, func(run *syncrun.Run) (syncrun.Counts, error) {
		return s.syncConditions(ctx, client, patientID, nhsNumber)
	})
}

func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*syncrun.Run, error) {
	return s.runs.Get(ctx, id)
}

func (s *Service) ListRuns(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*syncrun.Run, int, error) {
	return s.runs.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) buildClient(ctx context.Context) (*gpconnect.Client, error) {
	creds, err := s.integrations.LoadCredentials(ctx)
	if err != nil {
		return nil, err
	}
	signer, err := gpconnect.NewSigner(creds)
	if err != nil {
		return nil, err
	}
	return gpconnect.NewClient(creds, signer, s.timeout, s.logger), nil
}

// run brackets fn with the sync_run lifecycle. The terminal write happens
// on both paths; a failure to record it is logged but never masks fn's
// own error.
func (s *Service) run(ctx context.Context, patientID uuid.UUID, kind string, fn func(*syncrun.Run) (syncrun.Counts, error)) (*syncrun.Run, error) {
	run := &syncrun.Run{
		ID:        uuid.New(),
		PatientID: patientID,
		Kind:      kind,
		Status:    syncrun.StatusInProgress,
		StartedAt: time.Now().UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create sync run: %w", err)
	}

	counts, err := fn(run)
	if err != nil {
		if failErr := s.runs.Fail(ctx, run.ID, err.Error()); failErr != nil {
			s.logger.Error().Err(failErr).
				Str("run_id", run.ID.String()).
				Msg("failed to record sync run failure")
		}
		return nil, err
	}

	if err := s.runs.Complete(ctx, run.ID, counts); err != nil {
		return nil, fmt.Errorf("complete sync run: %w", err)
	}

	run.Status = syncrun.StatusSuccess
	run.Fetched = counts.Fetched
	run.Created = counts.Created
	run.Updated = counts.Updated

	s.logger.Info().
		Str("run_id", run.ID.String()).
		Str("kind", kind).
		Int("fetched", counts.Fetched).
		Int("created", counts.Created).
		Int("updated", counts.Updated).
		Msg("sync completed")

	return run, nil
}

func (s *Service) syncMedications(ctx context.Context, client *gpconnect.Client, patientID uuid.UUID, nhsNumber string) (syncrun.Counts, error) {
	var counts syncrun.Counts

	entries, err := client.FetchMedications(ctx, nhsNumber)
	if err != nil {
		return counts, err
	}

	now := time.Now().UTC()
	for _, raw := range entries {
		mapped, err := gpconnect.MapMedicationStatement(raw)
		if err != nil {
			if gpconnect.IsMapError(err) {
				s.logger.Warn().Err(err).Msg("skipping medication entry")
				continue
			}
			return counts, err
		}
		counts.Fetched++

		rec := &medication.Record{
			PatientID:      patientID,
			RemoteID:       mapped.RemoteID,
			Name:           mapped.Name,
			SnomedCode:     mapped.SnomedCode,
			DMDCode:        mapped.DMDCode,
			DosageText:     mapped.DosageText,
			EffectiveStart: mapped.EffectiveStart,
			EffectiveEnd:   mapped.EffectiveEnd,
			Prescriber:     mapped.Prescriber,
			SourcePayload:  mapped.Raw,
		}
		if mapped.Status != "" {
			status := mapped.Status
			rec.Status = &status
		}

		created, err := s.medications.Upsert(ctx, rec)
		if err != nil {
			return counts, err
		}
		if !created {
			counts.Updated++
			continue
		}
		counts.Created++

		remoteID := mapped.RemoteID
		entry := &history.Entry{
			PatientID:     patientID,
			EntryType:     history.EntryTypeMedication,
			Title:         mapped.Name,
			Details:       mapped.DosageText,
			Source:        history.SourceGPConnect,
			External:      true,
			RemoteID:      &remoteID,
			OccurredAt:    mapped.EffectiveStart,
			Recorder:      mapped.Prescriber,
			RecordedAt:    now,
			SourcePayload: mapped.Raw,
		}
		if err := s.history.Append(ctx, entry); err != nil {
			return counts, err
		}
	}

	return counts, nil
}

func (s *Service) syncConditions(ctx context.Context, client *gpconnect.Client, patientID uuid.UUID, nhsNumber string) (syncrun.Counts, error) {
	var counts syncrun.Counts

	entries, err := client.FetchConditions(ctx, nhsNumber)
	if err != nil {
		return counts, err
	}

	for _, raw := range entries {
		mapped, err := gpconnect.MapCondition(raw)
		if err != nil {
			if gpconnect.IsMapError(err) {
				s.logger.Warn().Err(err).Msg("skipping condition entry")
				continue
			}
			return counts, err
		}
		counts.Fetched++

		status := history.MapClinicalStatus(mapped.ClinicalStatus)
		remoteID := mapped.RemoteID
		entry := &history.Entry{
			PatientID:     patientID,
			EntryType:     history.EntryTypeCondition,
			Title:         mapped.Description,
			Details:       mapped.Note,
			Status:        &status,
			Source:        history.SourceGPConnect,
			External:      true,
			RemoteID:      &remoteID,
			OccurredAt:    mapped.OnsetDate,
			ResolvedAt:    mapped.AbatementDate,
			RecordedAt:    mapped.RecordedDate,
			Recorder:      mapped.Recorder,
			SourcePayload: mapped.Raw,
		}
		if mapped.Severity != nil {
			entry.Severity = history.MapSeverity(*mapped.Severity)
		}

		created, err := s.history.AppendExternalOnce(ctx, entry)
		if err != nil {
			return counts, err
		}
		if created {
			counts.Created++
		}
	}

	return counts, nil
}
