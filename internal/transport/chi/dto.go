package chi

import (
	"time"

	dommatch "github.com/pathlab-cloud/refscan/internal/domain/match"
	"github.com/pathlab-cloud/refscan/internal/domain/referral"
)

// dobLayout is the ISO wire format for normalized dates.
const dobLayout = "2006-01-02"

// Wire DTOs use camelCase to stay compatible with existing API consumers.

type patientDTO struct {
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	DateOfBirth    *string `json:"dateOfBirth"`
	Sex            *string `json:"sex"`
	MedicareNumber *string `json:"medicareNumber"`
	Address        *string `json:"address"`
}

type doctorDTO struct {
	Name           *string `json:"name"`
	ProviderNumber *string `json:"providerNumber"`
	Practice       *string `json:"practice"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
}

type matchedTestDTO struct {
	Original   string  `json:"original"`
	Matched    string  `json:"matched,omitempty"`
	TestID     string  `json:"testId,omitempty"`
	Confidence float64 `json:"confidence"`
	MatchType  string  `json:"matchType"`
}

type confidenceDTO struct {
	Patient float64 `json:"patient"`
	Doctor  float64 `json:"doctor"`
	Tests   float64 `json:"tests"`
	Overall float64 `json:"overall"`
}

type referralDataDTO struct {
	Patient         patientDTO       `json:"patient"`
	Doctor          doctorDTO        `json:"doctor"`
	Tests           []string         `json:"tests"`
	MatchedTests    []matchedTestDTO `json:"matchedTests"`
	ClinicalNotes   *string          `json:"clinicalNotes"`
	Urgent          bool             `json:"urgent"`
	CollectionDate  *string          `json:"collectionDate"`
	Confidence      confidenceDTO    `json:"confidence"`
	CatalogDegraded bool             `json:"catalogDegraded"`
}

type scanResponse struct {
	Success          bool            `json:"success"`
	ScanID           string          `json:"scanId"`
	Data             referralDataDTO `json:"data"`
	ProcessingTimeMs int64           `json:"processingTimeMs"`
	Timestamp        time.Time       `json:"timestamp"`
}

type testMatchRequest struct {
	Tests []string `json:"tests"`
}

type testMatchResponse struct {
	Success         bool             `json:"success"`
	Data            []matchedTestDTO `json:"data"`
	Confidence      confidenceDTO    `json:"confidence"`
	CatalogDegraded bool             `json:"catalogDegraded"`
	Timestamp       time.Time        `json:"timestamp"`
}

type errorResponse struct {
	Success   bool      `json:"success"`
	Code      string    `json:"code"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func scanResultToDTO(res referral.ScanResult) referralDataDTO {
	return referralDataDTO{
		Patient:         patientToDTO(res.Patient),
		Doctor:          doctorToDTO(res.Doctor),
		Tests:           emptyIfNil(res.RawTests),
		MatchedTests:    matchesToDTO(res.Matches),
		ClinicalNotes:   optString(res.ClinicalNotes),
		Urgent:          res.Urgent,
		CollectionDate:  optString(res.CollectionDate),
		Confidence:      confidenceToDTO(res.Confidence),
		CatalogDegraded: res.CatalogDegraded,
	}
}

func patientToDTO(p referral.PatientRecord) patientDTO {
	return patientDTO{
		FirstName:      fieldValue(p.FirstName()),
		LastName:       fieldValue(p.LastName()),
		DateOfBirth:    dateValue(p.DateOfBirth()),
		Sex:            sexValue(p.Sex()),
		MedicareNumber: fieldValue(p.MedicareNumber()),
		Address:        fieldValue(p.Address()),
	}
}

func doctorToDTO(d referral.DoctorRecord) doctorDTO {
	return doctorDTO{
		Name:           fieldValue(d.Name()),
		ProviderNumber: fieldValue(d.ProviderNumber()),
		Practice:       fieldValue(d.Practice()),
		Phone:          fieldValue(d.Phone()),
		Address:        fieldValue(d.Address()),
	}
}

func matchesToDTO(matches []dommatch.Result) []matchedTestDTO {
	out := make([]matchedTestDTO, len(matches))
	for i, m := range matches {
		dto := matchedTestDTO{
			Original:   m.Original(),
			Confidence: m.Confidence(),
			MatchType:  string(m.Kind()),
		}
		if m.Matched() {
			dto.Matched = m.Entry().CanonicalName()
			dto.TestID = m.Entry().TestID()
		}
		out[i] = dto
	}
	return out
}

func confidenceToDTO(c referral.ConfidenceSummary) confidenceDTO {
	return confidenceDTO{
		Patient: c.Patient,
		Doctor:  c.Doctor,
		Tests:   c.Tests,
		Overall: c.Overall,
	}
}

// fieldValue maps absent fields to JSON null; invalid fields keep their raw
// value so callers can show what was read.
func fieldValue(f referral.Field) *string {
	if f.Status() == referral.Absent {
		return nil
	}
	v := f.Value()
	return &v
}

func dateValue(f referral.DateField) *string {
	switch f.Status() {
	case referral.Present:
		v := f.Date().Format(dobLayout)
		return &v
	case referral.Invalid:
		v := f.Raw()
		return &v
	default:
		return nil
	}
}

func sexValue(f referral.SexField) *string {
	if f.Status() == referral.Absent {
		return nil
	}
	v := string(f.Value())
	return &v
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
