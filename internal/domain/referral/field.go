// Package referral holds the typed records produced from a raw extraction.
package referral

import "time"

// FieldStatus tracks whether an extracted field was present, absent, or
// failed normalization.
type FieldStatus string

const (
	// Present means the field was extracted and normalized.
	Present FieldStatus = "present"
	// Absent means the extraction did not produce the field.
	Absent FieldStatus = "absent"
	// Invalid means the field was extracted but failed normalization.
	Invalid FieldStatus = "invalid"
)

// Field is one normalized string field with its own confidence and status.
type Field struct {
	value      string
	confidence float64
	status     FieldStatus
}

// PresentField creates a normalized field with the given confidence.
func PresentField(value string, confidence float64) Field {
	return Field{value: value, confidence: clamp01(confidence), status: Present}
}

// AbsentField creates a field the extraction did not produce.
func AbsentField() Field {
	return Field{status: Absent}
}

// InvalidField creates a field that failed normalization. The raw value is
// kept so callers can surface it; confidence reflects the failure policy
// (0 for unparsable values, the fixed penalty for failed checksums).
func InvalidField(raw string, confidence float64) Field {
	return Field{value: raw, confidence: clamp01(confidence), status: Invalid}
}

// Value returns the normalized value, or the raw value for invalid fields.
func (f Field) Value() string { return f.value }

// Confidence returns the field confidence in [0,1].
func (f Field) Confidence() float64 { return f.confidence }

// Status returns the field status.
func (f Field) Status() FieldStatus { return f.status }

// DateField is a calendar-date field with confidence and status.
type DateField struct {
	date       time.Time
	raw        string
	confidence float64
	status     FieldStatus
}

// PresentDate creates a parsed date field.
func PresentDate(date time.Time, confidence float64) DateField {
	return DateField{date: date, confidence: clamp01(confidence), status: Present}
}

// AbsentDate creates a date field the extraction did not produce.
func AbsentDate() DateField {
	return DateField{status: Absent}
}

// InvalidDate creates a date field whose raw value did not parse.
func InvalidDate(raw string) DateField {
	return DateField{raw: raw, status: Invalid}
}

// Date returns the parsed date; zero unless the status is Present.
func (f DateField) Date() time.Time { return f.date }

// Raw returns the unparsable input for invalid date fields.
func (f DateField) Raw() string { return f.raw }

// Confidence returns the field confidence in [0,1].
func (f DateField) Confidence() float64 { return f.confidence }

// Status returns the field status.
func (f DateField) Status() FieldStatus { return f.status }

// FieldInfo is the flattened view of one field used by confidence aggregation.
type FieldInfo struct {
	Name       string
	Confidence float64
	Status     FieldStatus
	Required   bool
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
