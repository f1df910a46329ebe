package syncrun

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

const runCols = `id, patient_id, kind, status, started_at, completed_at,
	fetched, created, updated, error_message`

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.PatientID, &run.Kind, &run.Status, &run.StartedAt,
		&run.CompletedAt, &run.Fetched, &run.Created, &run.Updated, &run.ErrorMessage)
	return &run, err
}

func (r *repoPG) Create(ctx context.Context, run *Run) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sync_run (id, patient_id, kind, status, started_at)
		VALUES ($1,$2,$3,$4,$5)`,
		run.ID, run.PatientID, run.Kind, run.Status, run.StartedAt)
	return err
}

func (r *repoPG) Complete(ctx context.Context, id uuid.UUID, counts Counts) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE sync_run SET status=$2, completed_at=NOW(), fetched=$3, created=$4, updated=$5
		WHERE id = $1`,
		id, StatusSuccess, counts.Fetched, counts.Created, counts.Updated)
	return err
}

func (r *repoPG) Fail(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE sync_run SET status=$2, completed_at=NOW(), error_message=$3
		WHERE id = $1`,
		id, StatusFailed, message)
	return err
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	return scanRun(r.conn(ctx).QueryRow(ctx,
		`SELECT `+runCols+` FROM sync_run WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Run, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM sync_run WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+runCols+` FROM sync_run
		WHERE patient_id = $1
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, run)
	}
	return items, total, rows.Err()
}
