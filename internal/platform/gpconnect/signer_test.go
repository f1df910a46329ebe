package gpconnect

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"strings"
	"testing"
	"time"
)

func testCredentials(t *testing.T) Credentials {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return Credentials{
		Endpoint:      "https://provider.example.nhs.uk/fhir",
		ClientID:      "carelink-client-1",
		PrivateKeyPEM: string(pemBytes),
		FromASID:      "200000000001",
		ToASID:        "200000000002",
		ODSCode:       "A12345",
		OrgName:       "Example Surgery",
		DeviceID:      "device-77",
		SDSUserID:     "sds-user-9",
	}
}

func decodeClaims(t *testing.T, token string) map[string]interface{} {
	t.Helper()
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token parts, got %d", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	claims := map[string]interface{}{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("unmarshal claims: %v", err)
	}
	return claims
}

func TestNewSigner_MissingKey(t *testing.T) {
	creds := testCredentials(t)
	creds.PrivateKeyPEM = ""
	_, err := NewSigner(creds)
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !errors.Is(err, ErrSigningKey) {
		t.Errorf("expected ErrSigningKey, got %v", err)
	}
}

func TestNewSigner_GarbageKey(t *testing.T) {
	creds := testCredentials(t)
	creds.PrivateKeyPEM = "not a pem block"
	_, err := NewSigner(creds)
	if !errors.Is(err, ErrSigningKey) {
		t.Errorf("expected ErrSigningKey, got %v", err)
	}
	if !IsConfigurationError(err) {
		t.Error("signing key failure should classify as a configuration error")
	}
}

func TestSigner_TokenClaims(t *testing.T) {
	creds := testCredentials(t)
	signer, err := NewSigner(creds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	token, err := signer.Token(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := decodeClaims(t, token)

	if claims["iss"] != "carelink-client-1" || claims["sub"] != "carelink-client-1" {
		t.Errorf("iss/sub should both be the client id, got %v/%v", claims["iss"], claims["sub"])
	}
	if claims["aud"] != creds.Endpoint {
		t.Errorf("aud should be the endpoint, got %v", claims["aud"])
	}
	if claims["reason_for_request"] != "directcare" {
		t.Errorf("unexpected reason_for_request: %v", claims["reason_for_request"])
	}
	if claims["requested_scope"] != "patient/*.read" {
		t.Errorf("unexpected requested_scope: %v", claims["requested_scope"])
	}

	iat := int64(claims["iat"].(float64))
	exp := int64(claims["exp"].(float64))
	if iat != now.Unix() {
		t.Errorf("iat = %d, want %d", iat, now.Unix())
	}
	if exp-iat != int64(TokenLifetime/time.Second) {
		t.Errorf("token lifetime = %ds, want %ds", exp-iat, int64(TokenLifetime/time.Second))
	}
}

func TestSigner_TokenIdentityBlocks(t *testing.T) {
	signer, err := NewSigner(testCredentials(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, err := signer.Token(time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := decodeClaims(t, token)

	org, ok := claims["requesting_organization"].(map[string]interface{})
	if !ok {
		t.Fatal("missing requesting_organization claim")
	}
	if org["resourceType"] != "Organization" {
		t.Errorf("unexpected organization resourceType: %v", org["resourceType"])
	}
	idents := org["identifier"].([]interface{})
	first := idents[0].(map[string]interface{})
	if first["system"] != SystemODSCode || first["value"] != "A12345" {
		t.Errorf("unexpected organization identifier: %v", first)
	}

	dev, ok := claims["requesting_device"].(map[string]interface{})
	if !ok {
		t.Fatal("missing requesting_device claim")
	}
	if dev["resourceType"] != "Device" {
		t.Errorf("unexpected device resourceType: %v", dev["resourceType"])
	}

	prac, ok := claims["requesting_practitioner"].(map[string]interface{})
	if !ok {
		t.Fatal("missing requesting_practitioner claim")
	}
	if prac["id"] != "sds-user-9" {
		t.Errorf("unexpected practitioner id: %v", prac["id"])
	}
}

func TestSigner_TokenHeaderAlg(t *testing.T) {
	signer, err := NewSigner(testCredentials(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, err := signer.Token(time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(strings.Split(token, ".")[0])
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	var header map[string]string
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if header["alg"] != "RS512" {
		t.Errorf("alg = %s, want RS512", header["alg"])
	}
	if header["typ"] != "JWT" {
		t.Errorf("typ = %s, want JWT", header["typ"])
	}
}
