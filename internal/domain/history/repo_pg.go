package history

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

const entryCols = `id, patient_id, entry_type, title, details, status, severity,
	source, external, remote_id, occurred_at, resolved_at, recorded_at,
	recorder, source_payload, created_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.PatientID, &e.EntryType, &e.Title, &e.Details, &e.Status,
		&e.Severity, &e.Source, &e.External, &e.RemoteID, &e.OccurredAt, &e.ResolvedAt,
		&e.RecordedAt, &e.Recorder, &e.SourcePayload, &e.CreatedAt)
	return &e, err
}

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_history_entry (id, patient_id, entry_type, title, details,
			status, severity, source, external, remote_id, occurred_at, resolved_at,
			recorded_at, recorder, source_payload)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		e.ID, e.PatientID, e.EntryType, e.Title, e.Details,
		e.Status, e.Severity, e.Source, e.External, e.RemoteID, e.OccurredAt, e.ResolvedAt,
		e.RecordedAt, e.Recorder, e.SourcePayload)
	return err
}

func (r *repoPG) ExistsExternal(ctx context.Context, patientID uuid.UUID, remoteID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM medical_history_entry
			WHERE patient_id = $1 AND remote_id = $2 AND external = TRUE
		)`, patientID, remoteID).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_history_entry WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+entryCols+` FROM medical_history_entry
		WHERE patient_id = $1
		ORDER BY recorded_at DESC, created_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
