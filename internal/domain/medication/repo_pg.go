package medication

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const recordCols = `id, patient_id, remote_id, name, snomed_code, dmd_code, dosage_text,
	status, effective_start, effective_end, prescriber, source_payload,
	last_synced_at, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.RemoteID, &rec.Name, &rec.SnomedCode,
		&rec.DMDCode, &rec.DosageText, &rec.Status, &rec.EffectiveStart, &rec.EffectiveEnd,
		&rec.Prescriber, &rec.SourcePayload, &rec.LastSyncedAt, &rec.CreatedAt, &rec.UpdatedAt)
	return &rec, err
}

func (r *repoPG) GetByRemoteID(ctx context.Context, patientID uuid.UUID, remoteID string) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medication_record WHERE patient_id = $1 AND remote_id = $2`,
		patientID, remoteID))
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medication_record (id, patient_id, remote_id, name, snomed_code, dmd_code,
			dosage_text, status, effective_start, effective_end, prescriber,
			source_payload, last_synced_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		rec.ID, rec.PatientID, rec.RemoteID, rec.Name, rec.SnomedCode, rec.DMDCode,
		rec.DosageText, rec.Status, rec.EffectiveStart, rec.EffectiveEnd, rec.Prescriber,
		rec.SourcePayload, rec.LastSyncedAt)
	return err
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medication_record SET name=$2, snomed_code=$3, dmd_code=$4, dosage_text=$5,
			status=$6, effective_start=$7, effective_end=$8, prescriber=$9,
			source_payload=$10, last_synced_at=$11, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Name, rec.SnomedCode, rec.DMDCode, rec.DosageText,
		rec.Status, rec.EffectiveStart, rec.EffectiveEnd, rec.Prescriber,
		rec.SourcePayload, rec.LastSyncedAt)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medication_record WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordCols+` FROM medication_record
		WHERE patient_id = $1
		ORDER BY last_synced_at DESC, name
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
