package gpconnect

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is the fixed validity window for outbound assertions.
const TokenLifetime = 5 * time.Minute

const (
	reasonForRequest = "directcare"
	requestedScope   = "patient/*.read"
)

// Signer builds the signed cross-organisation audit assertion that
// accompanies every GP Connect request. One signer is built per loaded
// credential set; a missing or unparsable key fails construction so the
// problem surfaces before any network call.
type Signer struct {
	clientID  string
	audience  string
	key       *rsa.PrivateKey
	odsCode   string
	orgName   string
	deviceID  string
	sdsUserID string
}

func NewSigner(creds Credentials) (*Signer, error) {
	if creds.PrivateKeyPEM == "" {
		return nil, fmt.Errorf("%w: no private key on record", ErrSigningKey)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(creds.PrivateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningKey, err)
	}
	return &Signer{
		clientID:  creds.ClientID,
		audience:  creds.Endpoint,
		key:       key,
		odsCode:   creds.ODSCode,
		orgName:   creds.OrgName,
		deviceID:  creds.DeviceID,
		sdsUserID: creds.SDSUserID,
	}, nil
}

// Token returns a compact RS512-signed assertion valid for TokenLifetime
// from now. Issuer and subject are both the registered client id; the
// audience is the practice endpoint the request is sent to.
func (s *Signer) Token(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":                s.clientID,
		"sub":                s.clientID,
		"aud":                s.audience,
		"iat":                now.Unix(),
		"exp":                now.Add(TokenLifetime).Unix(),
		"reason_for_request": reasonForRequest,
		"requested_scope":    requestedScope,
		"requesting_device": map[string]interface{}{
			"resourceType": "Device",
			"identifier": []map[string]string{
				{"system": "https://carelink.io/Id/integration-device", "value": s.deviceID},
			},
			"model":   "CareLink",
			"version": "1.0",
		},
		"requesting_organization": map[string]interface{}{
			"resourceType": "Organization",
			"identifier": []map[string]string{
				{"system": SystemODSCode, "value": s.odsCode},
			},
			"name": s.orgName,
		},
		"requesting_practitioner": map[string]interface{}{
			"resourceType": "Practitioner",
			"id":           s.sdsUserID,
			"identifier": []map[string]string{
				{"system": SystemSDSUserID, "value": s.sdsUserID},
			},
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS512, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return token, nil
}
