package gpconnect

import (
	"encoding/json"
	"time"
)

// MappedMedication is the flattened view of one remote MedicationStatement,
// ready for persistence. Raw holds the payload exactly as received.
type MappedMedication struct {
	RemoteID       string
	Name           string
	SnomedCode     *string
	DMDCode        *string
	DosageText     *string
	Status         string
	EffectiveStart *time.Time
	EffectiveEnd   *time.Time
	Prescriber     *string
	Raw            json.RawMessage
}

// MappedCondition is the flattened view of one remote Condition.
type MappedCondition struct {
	RemoteID           string
	Code               *string
	Description        string
	ClinicalStatus     string
	VerificationStatus *string
	Severity           *string
	OnsetDate          *time.Time
	AbatementDate      *time.Time
	RecordedDate       time.Time
	Recorder           *string
	Note               *string
	Raw                json.RawMessage
}

const unknownMedication = "Unknown Medication"

// MapMedicationStatement flattens one raw MedicationStatement. A *MapError
// marks an entry that should be skipped; any other outcome is a success,
// with fallbacks applied for missing optional fields.
func MapMedicationStatement(raw json.RawMessage) (*MappedMedication, error) {
	var res medicationStatementResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &MapError{ResourceType: "MedicationStatement", Reason: "undecodable entry: " + err.Error()}
	}
	if res.ResourceType != "MedicationStatement" {
		return nil, &MapError{ResourceType: res.ResourceType, Reason: "unexpected resource type"}
	}
	if res.ID == "" {
		return nil, &MapError{ResourceType: "MedicationStatement", Reason: "missing resource id"}
	}

	m := &MappedMedication{
		RemoteID: res.ID,
		Name:     unknownMedication,
		Status:   res.Status,
		Raw:      raw,
	}

	if cc := res.MedicationCodeableConcept; cc != nil {
		if len(cc.Coding) > 0 && cc.Coding[0].Display != "" {
			m.Name = cc.Coding[0].Display
		} else if cc.Text != "" {
			m.Name = cc.Text
		}
		for _, coding := range cc.Coding {
			switch coding.System {
			case SystemSnomed:
				if coding.Code != "" {
					m.SnomedCode = strPtr(coding.Code)
				}
			case SystemDMD:
				if coding.Code != "" {
					m.DMDCode = strPtr(coding.Code)
				}
			}
		}
	}

	if len(res.Dosage) > 0 && res.Dosage[0].Text != "" {
		m.DosageText = strPtr(res.Dosage[0].Text)
	}

	if res.EffectivePeriod != nil {
		m.EffectiveStart = parseFHIRDate(res.EffectivePeriod.Start)
		m.EffectiveEnd = parseFHIRDate(res.EffectivePeriod.End)
	} else if res.EffectiveDateTime != "" {
		m.EffectiveStart = parseFHIRDate(res.EffectiveDateTime)
	}

	if res.InformationSource != nil && res.InformationSource.Display != "" {
		m.Prescriber = strPtr(res.InformationSource.Display)
	}

	return m, nil
}

// MapCondition flattens one raw Condition. The recorded date defaults to
// the onset date when the resource carries no asserted date, and to the
// current time when neither is present.
func MapCondition(raw json.RawMessage) (*MappedCondition, error) {
	var res conditionResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &MapError{ResourceType: "Condition", Reason: "undecodable entry: " + err.Error()}
	}
	if res.ResourceType != "Condition" {
		return nil, &MapError{ResourceType: res.ResourceType, Reason: "unexpected resource type"}
	}
	if res.ID == "" {
		return nil, &MapError{ResourceType: "Condition", Reason: "missing resource id"}
	}

	c := &MappedCondition{
		RemoteID:       res.ID,
		ClinicalStatus: res.ClinicalStatus,
		Raw:            raw,
	}

	if res.Code != nil {
		if len(res.Code.Coding) > 0 {
			first := res.Code.Coding[0]
			if first.Code != "" {
				c.Code = strPtr(first.Code)
			}
			c.Description = first.Display
		}
		if c.Description == "" {
			c.Description = res.Code.Text
		}
	}
	if c.Description == "" {
		return nil, &MapError{ResourceType: "Condition", Reason: "no usable code or description"}
	}

	if res.VerificationStatus != "" {
		c.VerificationStatus = strPtr(res.VerificationStatus)
	}

	if res.Severity != nil {
		if len(res.Severity.Coding) > 0 && res.Severity.Coding[0].Display != "" {
			c.Severity = strPtr(res.Severity.Coding[0].Display)
		} else if res.Severity.Text != "" {
			c.Severity = strPtr(res.Severity.Text)
		}
	}

	c.OnsetDate = parseFHIRDate(res.OnsetDateTime)
	c.AbatementDate = parseFHIRDate(res.AbatementDateTime)

	switch {
	case res.AssertedDate != "":
		if t := parseFHIRDate(res.AssertedDate); t != nil {
			c.RecordedDate = *t
		}
	case c.OnsetDate != nil:
		c.RecordedDate = *c.OnsetDate
	}
	if c.RecordedDate.IsZero() {
		c.RecordedDate = time.Now().UTC()
	}

	if res.Asserter != nil && res.Asserter.Display != "" {
		c.Recorder = strPtr(res.Asserter.Display)
	}
	if len(res.Note) > 0 && res.Note[0].Text != "" {
		c.Note = strPtr(res.Note[0].Text)
	}

	return c, nil
}

var fhirDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

func parseFHIRDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range fhirDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }
