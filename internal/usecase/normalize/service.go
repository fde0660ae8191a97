// Package normalize turns a raw vision extraction into typed records.
//
// This is the policy boundary for extraction noise: malformed input never
// fails a request here, it only degrades per-field confidence.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/pathlab-cloud/refscan/internal/domain/referral"
)

// invalidChecksumPenalty is the fixed confidence for an identifier that is
// shaped correctly but fails its checksum or pattern rule.
const invalidChecksumPenalty = 0.3

// defaultFieldConfidence applies when the vision model reported no
// provenance confidence for a section.
const defaultFieldConfidence = 0.5

// dateLayouts are the accepted day-first and ISO date formats.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
}

// sexAliases maps extracted sex strings (lowercased) to the closed enumeration.
var sexAliases = map[string]referral.Sex{
	"m":             referral.SexMale,
	"male":          referral.SexMale,
	"f":             referral.SexFemale,
	"female":        referral.SexFemale,
	"x":             referral.SexIndeterminate,
	"other":         referral.SexIndeterminate,
	"indeterminate": referral.SexIndeterminate,
	"u":             referral.SexUnknown,
	"unknown":       referral.SexUnknown,
}

// providerNumberPattern is the shape of an Australian provider number:
// six digits, a practice-location character, and a check character.
var providerNumberPattern = regexp.MustCompile(`^[0-9]{6}[0-9A-Z][A-Z]$`)

// Result is everything the normalizer derives from one raw extraction.
type Result struct {
	Patient        referral.PatientRecord
	Doctor         referral.DoctorRecord
	Tests          []string
	ClinicalNotes  string
	Urgent         bool
	CollectionDate string
}

// Service normalizes raw extractions. Stateless and safe for concurrent use.
type Service struct{}

// New creates a normalizer.
func New() *Service { return &Service{} }

// Normalize validates and types every extracted field. It never fails;
// unparsable values come back as invalid fields with degraded confidence.
func (s *Service) Normalize(raw referral.RawExtraction) Result {
	patientConf := sectionConfidence(raw.Confidence.Patient)
	doctorConf := sectionConfidence(raw.Confidence.Doctor)

	patient := referral.NewPatientRecord(
		nameField(raw.Patient.FirstName, patientConf),
		nameField(raw.Patient.LastName, patientConf),
		dateField(raw.Patient.DateOfBirth, patientConf),
		sexField(raw.Patient.Sex, patientConf),
		medicareField(raw.Patient.MedicareNumber, patientConf),
		textField(raw.Patient.Address, patientConf),
	)

	doctor := referral.NewDoctorRecord(
		nameField(raw.Doctor.Name, doctorConf),
		providerNumberField(raw.Doctor.ProviderNumber, doctorConf),
		textField(raw.Doctor.Practice, doctorConf),
		phoneField(raw.Doctor.Phone, doctorConf),
		textField(raw.Doctor.Address, doctorConf),
	)

	tests := make([]string, 0, len(raw.Tests))
	for _, t := range raw.Tests {
		if trimmed := collapseSpaces(t); trimmed != "" {
			tests = append(tests, trimmed)
		}
	}

	return Result{
		Patient:        patient,
		Doctor:         doctor,
		Tests:          tests,
		ClinicalNotes:  collapseSpaces(deref(raw.ClinicalNotes)),
		Urgent:         raw.Urgent,
		CollectionDate: collapseSpaces(deref(raw.CollectionDate)),
	}
}

func sectionConfidence(provenance float64) float64 {
	if provenance <= 0 {
		return defaultFieldConfidence
	}
	if provenance > 1 {
		return 1
	}
	return provenance
}

// nameField normalizes a person-name part: trim, collapse whitespace.
func nameField(v *string, conf float64) referral.Field {
	s := collapseSpaces(deref(v))
	if s == "" {
		return referral.AbsentField()
	}
	return referral.PresentField(s, conf)
}

// textField normalizes a free-text field.
func textField(v *string, conf float64) referral.Field {
	s := collapseSpaces(deref(v))
	if s == "" {
		return referral.AbsentField()
	}
	return referral.PresentField(s, conf)
}

// dateField parses the fixed set of locale formats. On failure the field is
// marked invalid with confidence 0; the request is never failed.
func dateField(v *string, conf float64) referral.DateField {
	s := collapseSpaces(deref(v))
	if s == "" {
		return referral.AbsentDate()
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return referral.PresentDate(d, conf)
		}
	}
	return referral.InvalidDate(s)
}

// sexField maps through the alias table; unrecognized values become
// SexUnknown with zero confidence rather than an error.
func sexField(v *string, conf float64) referral.SexField {
	s := strings.ToLower(collapseSpaces(deref(v)))
	if s == "" {
		return referral.AbsentSex()
	}
	mapped, ok := sexAliases[s]
	if !ok {
		return referral.PresentSex(referral.SexUnknown, 0)
	}
	if mapped == referral.SexUnknown {
		// The form itself said unknown; that is a confident extraction.
		return referral.PresentSex(referral.SexUnknown, conf)
	}
	return referral.PresentSex(mapped, conf)
}

// medicareField validates the 10-digit Medicare number with its weighted
// checksum. A failed check keeps the value but drops confidence to the
// fixed penalty.
func medicareField(v *string, conf float64) referral.Field {
	s := digitsOnly(deref(v))
	if s == "" {
		return referral.AbsentField()
	}
	if !validMedicare(s) {
		return referral.InvalidField(s, invalidChecksumPenalty)
	}
	return referral.PresentField(s, conf)
}

// providerNumberField checks the provider number shape; a mismatch keeps
// the value at the fixed penalty confidence.
func providerNumberField(v *string, conf float64) referral.Field {
	s := strings.ToUpper(strings.ReplaceAll(collapseSpaces(deref(v)), " ", ""))
	if s == "" {
		return referral.AbsentField()
	}
	if !providerNumberPattern.MatchString(s) {
		return referral.InvalidField(s, invalidChecksumPenalty)
	}
	return referral.PresentField(s, conf)
}

func phoneField(v *string, conf float64) referral.Field {
	s := collapseSpaces(deref(v))
	if s == "" {
		return referral.AbsentField()
	}
	if len(digitsOnly(s)) < 6 {
		return referral.InvalidField(s, invalidChecksumPenalty)
	}
	return referral.PresentField(s, conf)
}

// medicareWeights apply to the first eight digits; the ninth digit is the
// checksum, the tenth the card issue number.
var medicareWeights = [8]int{1, 3, 7, 9, 1, 3, 7, 9}

func validMedicare(s string) bool {
	if len(s) != 10 {
		return false
	}
	// First digit of a valid Medicare number is 2-6.
	if s[0] < '2' || s[0] > '6' {
		return false
	}
	sum := 0
	for i, w := range medicareWeights {
		sum += int(s[i]-'0') * w
	}
	return sum%10 == int(s[8]-'0')
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
