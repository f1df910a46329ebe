package integration

import (
	"context"
	"time"

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

const configCols = `id, provider, endpoint, client_id, client_secret, signing_key_pem,
	from_asid, to_asid, ods_code, org_name, device_id, sds_user_id,
	enabled, last_test_ok, last_tested_at, created_at, updated_at`

func scanConfig(row pgx.Row) (*Config, error) {
	var c Config
	err := row.Scan(&c.ID, &c.Provider, &c.Endpoint, &c.ClientID, &c.ClientSecret, &c.SigningKeyPEM,
		&c.FromASID, &c.ToASID, &c.ODSCode, &c.OrgName, &c.DeviceID, &c.SDSUserID,
		&c.Enabled, &c.LastTestOK, &c.LastTestedAt, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *repoPG) GetByProvider(ctx context.Context, provider string) (*Config, error) {
	return scanConfig(r.conn(ctx).QueryRow(ctx,
		`SELECT `+configCols+` FROM integration_config WHERE provider = $1`, provider))
}

func (r *repoPG) Upsert(ctx context.Context, cfg *Config) error {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO integration_config (id, provider, endpoint, client_id, client_secret,
			signing_key_pem, from_asid, to_asid, ods_code, org_name, device_id, sds_user_id, enabled)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (provider) DO UPDATE SET
			endpoint=EXCLUDED.endpoint, client_id=EXCLUDED.client_id,
			client_secret=EXCLUDED.client_secret, signing_key_pem=EXCLUDED.signing_key_pem,
			from_asid=EXCLUDED.from_asid, to_asid=EXCLUDED.to_asid,
			ods_code=EXCLUDED.ods_code, org_name=EXCLUDED.org_name,
			device_id=EXCLUDED.device_id, sds_user_id=EXCLUDED.sds_user_id,
			enabled=EXCLUDED.enabled, updated_at=NOW()`,
		cfg.ID, cfg.Provider, cfg.Endpoint, cfg.ClientID, cfg.ClientSecret,
		cfg.SigningKeyPEM, cfg.FromASID, cfg.ToASID, cfg.ODSCode, cfg.OrgName,
		cfg.DeviceID, cfg.SDSUserID, cfg.Enabled)
	return err
}

func (r *repoPG) RecordTestResult(ctx context.Context, id uuid.UUID, ok bool, testedAt time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE integration_config SET last_test_ok=$2, last_tested_at=$3, updated_at=NOW()
		WHERE id = $1`, id, ok, testedAt)
	return err
}
