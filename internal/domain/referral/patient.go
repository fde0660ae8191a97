package referral

// Sex is the closed patient sex enumeration.
type Sex string

const (
	// SexMale is a male patient.
	SexMale Sex = "M"
	// SexFemale is a female patient.
	SexFemale Sex = "F"
	// SexIndeterminate is an indeterminate / non-binary marker.
	SexIndeterminate Sex = "X"
	// SexUnknown is the fallback for unrecognized or missing values.
	SexUnknown Sex = "unknown"
)

// SexField is the sex enumeration with confidence and status.
type SexField struct {
	value      Sex
	confidence float64
	status     FieldStatus
}

// PresentSex creates a mapped sex field.
func PresentSex(value Sex, confidence float64) SexField {
	return SexField{value: value, confidence: clamp01(confidence), status: Present}
}

// AbsentSex creates a sex field the extraction did not produce.
func AbsentSex() SexField {
	return SexField{value: SexUnknown, status: Absent}
}

// Value returns the mapped sex; SexUnknown when absent.
func (f SexField) Value() Sex { return f.value }

// Confidence returns the field confidence in [0,1].
func (f SexField) Confidence() float64 { return f.confidence }

// Status returns the field status.
func (f SexField) Status() FieldStatus { return f.status }

// PatientRecord is the normalized patient section (immutable value object).
type PatientRecord struct {
	firstName      Field
	lastName       Field
	dateOfBirth    DateField
	sex            SexField
	medicareNumber Field
	address        Field
}

// NewPatientRecord creates a patient record from normalized fields.
func NewPatientRecord(
	firstName, lastName Field, dateOfBirth DateField,
	sex SexField, medicareNumber, address Field,
) PatientRecord {
	return PatientRecord{
		firstName:      firstName,
		lastName:       lastName,
		dateOfBirth:    dateOfBirth,
		sex:            sex,
		medicareNumber: medicareNumber,
		address:        address,
	}
}

// FirstName returns the given name field.
func (p PatientRecord) FirstName() Field { return p.firstName }

// LastName returns the family name field.
func (p PatientRecord) LastName() Field { return p.lastName }

// DateOfBirth returns the date-of-birth field.
func (p PatientRecord) DateOfBirth() DateField { return p.dateOfBirth }

// Sex returns the sex field.
func (p PatientRecord) Sex() SexField { return p.sex }

// MedicareNumber returns the Medicare number field.
func (p PatientRecord) MedicareNumber() Field { return p.medicareNumber }

// Address returns the address field.
func (p PatientRecord) Address() Field { return p.address }

// Fields flattens the record for confidence aggregation. Name, surname, and
// date of birth are required; the rest are optional.
func (p PatientRecord) Fields() []FieldInfo {
	return []FieldInfo{
		{Name: "first_name", Confidence: p.firstName.Confidence(), Status: p.firstName.Status(), Required: true},
		{Name: "last_name", Confidence: p.lastName.Confidence(), Status: p.lastName.Status(), Required: true},
		{Name: "date_of_birth", Confidence: p.dateOfBirth.Confidence(), Status: p.dateOfBirth.Status(), Required: true},
		{Name: "sex", Confidence: p.sex.Confidence(), Status: p.sex.Status(), Required: false},
		{Name: "medicare_number", Confidence: p.medicareNumber.Confidence(), Status: p.medicareNumber.Status(), Required: false},
		{Name: "address", Confidence: p.address.Confidence(), Status: p.address.Status(), Required: false},
	}
}
