package gpconnect

import "encoding/json"

// NHS identifier systems used across GP Connect payloads.
const (
	SystemNHSNumber = "https://fhir.nhs.uk/Id/nhs-number"
	SystemODSCode   = "https://fhir.nhs.uk/Id/ods-organization-code"
	SystemSDSUserID = "https://fhir.nhs.uk/Id/sds-user-id"
	SystemSnomed    = "http://snomed.info/sct"
	SystemDMD       = "https://dmd.nhs.uk"
)

// Credentials is everything needed to call a practice's GP Connect endpoint
// on behalf of one tenant.
type Credentials struct {
	Endpoint      string
	ClientID      string
	PrivateKeyPEM string
	FromASID      string
	ToASID        string
	ODSCode       string
	OrgName       string
	DeviceID      string
	SDSUserID     string
}

// Bundle is the searchset envelope returned by the remote endpoint. Entries
// keep their raw JSON so mapping failures stay scoped to single resources.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	Type         string        `json:"type"`
	Total        *int          `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry"`
}

type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource"`
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

type Annotation struct {
	Text string `json:"text,omitempty"`
}

type Dosage struct {
	Text               string `json:"text,omitempty"`
	PatientInstruction string `json:"patientInstruction,omitempty"`
}

// medicationStatementResource is the subset of a MedicationStatement the
// mapper reads. Everything is optional; the raw payload is kept verbatim.
type medicationStatementResource struct {
	ResourceType              string           `json:"resourceType"`
	ID                        string           `json:"id"`
	Status                    string           `json:"status,omitempty"`
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
	EffectiveDateTime         string           `json:"effectiveDateTime,omitempty"`
	EffectivePeriod           *Period          `json:"effectivePeriod,omitempty"`
	DateAsserted              string           `json:"dateAsserted,omitempty"`
	InformationSource         *Reference       `json:"informationSource,omitempty"`
	Dosage                    []Dosage         `json:"dosage,omitempty"`
	Note                      []Annotation     `json:"note,omitempty"`
}

// conditionResource is the subset of a Condition the mapper reads.
type conditionResource struct {
	ResourceType       string           `json:"resourceType"`
	ID                 string           `json:"id"`
	ClinicalStatus     string           `json:"clinicalStatus,omitempty"`
	VerificationStatus string           `json:"verificationStatus,omitempty"`
	Code               *CodeableConcept `json:"code,omitempty"`
	Severity           *CodeableConcept `json:"severity,omitempty"`
	OnsetDateTime      string           `json:"onsetDateTime,omitempty"`
	AbatementDateTime  string           `json:"abatementDateTime,omitempty"`
	AssertedDate       string           `json:"assertedDate,omitempty"`
	Asserter           *Reference       `json:"asserter,omitempty"`
	Note               []Annotation     `json:"note,omitempty"`
}
