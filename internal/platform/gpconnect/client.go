package gpconnect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Spine Secure Proxy headers carried on every request.
const (
	HeaderTraceID       = "Ssp-TraceID"
	HeaderFrom          = "Ssp-From"
	HeaderTo            = "Ssp-To"
	HeaderInteractionID = "Ssp-InteractionID"
)

const (
	interactionMedications = "urn:nhs:names:services:gpconnect:fhir:rest:search:medicationstatement-1"
	interactionConditions  = "urn:nhs:names:services:gpconnect:fhir:rest:search:condition-1"
)

// Client performs single synchronous reads against one practice endpoint.
// It holds the ASID pair identifying the sending and receiving systems;
// failed requests are surfaced as errors, never retried here.
type Client struct {
	endpoint string
	fromASID string
	toASID   string
	signer   *Signer
	http     *http.Client
	logger   zerolog.Logger
}

func NewClient(creds Credentials, signer *Signer, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		endpoint: strings.TrimRight(creds.Endpoint, "/"),
		fromASID: creds.FromASID,
		toASID:   creds.ToASID,
		signer:   signer,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// FetchMedications retrieves the patient's MedicationStatement entries.
func (c *Client) FetchMedications(ctx context.Context, nhsNumber string) ([]json.RawMessage, error) {
	return c.search(ctx, "MedicationStatement", interactionMedications, nhsNumber)
}

// FetchConditions retrieves the patient's Condition entries.
func (c *Client) FetchConditions(ctx context.Context, nhsNumber string) ([]json.RawMessage, error) {
	return c.search(ctx, "Condition", interactionConditions, nhsNumber)
}

func (c *Client) search(ctx context.Context, resource, interactionID, nhsNumber string) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("patient.identifier", SystemNHSNumber+"|"+nhsNumber)
	reqURL := fmt.Sprintf("%s/%s?%s", c.endpoint, resource, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	token, err := c.signer.Token(time.Now())
	if err != nil {
		return nil, err
	}

	traceID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/fhir+json")
	req.Header.Set(HeaderTraceID, traceID)
	req.Header.Set(HeaderFrom, c.fromASID)
	req.Header.Set(HeaderTo, c.toASID)
	req.Header.Set(HeaderInteractionID, interactionID)

	c.logger.Debug().
		Str("resource", resource).
		Str("trace_id", traceID).
		Msg("gp connect search")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gp connect request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	var bundle Bundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}

	entries := make([]json.RawMessage, 0, len(bundle.Entry))
	for _, e := range bundle.Entry {
		if len(e.Resource) > 0 {
			entries = append(entries, e.Resource)
		}
	}
	return entries, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
