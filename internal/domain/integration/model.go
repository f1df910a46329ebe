package integration

import (
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/gpconnect"
)

// ProviderGPConnect is the only provider currently supported.
const ProviderGPConnect = "gpconnect"

// Config maps to the integration_config table. One row per provider per
// tenant schema. The signing key and client secret never leave the server;
// they are excluded from JSON responses.
type Config struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Provider      string     `db:"provider" json:"provider"`
	Endpoint      string     `db:"endpoint" json:"endpoint"`
	ClientID      string     `db:"client_id" json:"client_id"`
	ClientSecret  *string    `db:"client_secret" json:"-"`
	SigningKeyPEM string     `db:"signing_key_pem" json:"-"`
	FromASID      string     `db:"from_asid" json:"from_asid"`
	ToASID        string     `db:"to_asid" json:"to_asid"`
	ODSCode       string     `db:"ods_code" json:"ods_code"`
	OrgName       string     `db:"org_name" json:"org_name"`
	DeviceID      string     `db:"device_id" json:"device_id"`
	SDSUserID     string     `db:"sds_user_id" json:"sds_user_id"`
	Enabled       bool       `db:"enabled" json:"enabled"`
	LastTestOK    *bool      `db:"last_test_ok" json:"last_test_ok,omitempty"`
	LastTestedAt  *time.Time `db:"last_tested_at" json:"last_tested_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Credentials converts the stored row into the credential set the GP
// Connect client consumes.
func (c *Config) Credentials() gpconnect.Credentials {
	return gpconnect.Credentials{
		Endpoint:      c.Endpoint,
		ClientID:      c.ClientID,
		PrivateKeyPEM: c.SigningKeyPEM,
		FromASID:      c.FromASID,
		ToASID:        c.ToASID,
		ODSCode:       c.ODSCode,
		OrgName:       c.OrgName,
		DeviceID:      c.DeviceID,
		SDSUserID:     c.SDSUserID,
	}
}
