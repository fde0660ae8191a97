package referral

// DoctorRecord is the normalized referring-doctor section (immutable value object).
type DoctorRecord struct {
	name           Field
	providerNumber Field
	practice       Field
	phone          Field
	address        Field
}

// NewDoctorRecord creates a doctor record from normalized fields.
func NewDoctorRecord(name, providerNumber, practice, phone, address Field) DoctorRecord {
	return DoctorRecord{
		name:           name,
		providerNumber: providerNumber,
		practice:       practice,
		phone:          phone,
		address:        address,
	}
}

// Name returns the doctor name field.
func (d DoctorRecord) Name() Field { return d.name }

// ProviderNumber returns the provider number field.
func (d DoctorRecord) ProviderNumber() Field { return d.providerNumber }

// Practice returns the practice name field.
func (d DoctorRecord) Practice() Field { return d.practice }

// Phone returns the contact phone field.
func (d DoctorRecord) Phone() Field { return d.phone }

// Address returns the practice address field.
func (d DoctorRecord) Address() Field { return d.address }

// Fields flattens the record for confidence aggregation. Only the doctor
// name is required.
func (d DoctorRecord) Fields() []FieldInfo {
	return []FieldInfo{
		{Name: "name", Confidence: d.name.Confidence(), Status: d.name.Status(), Required: true},
		{Name: "provider_number", Confidence: d.providerNumber.Confidence(), Status: d.providerNumber.Status(), Required: false},
		{Name: "practice", Confidence: d.practice.Confidence(), Status: d.practice.Status(), Required: false},
		{Name: "phone", Confidence: d.phone.Confidence(), Status: d.phone.Status(), Required: false},
		{Name: "address", Confidence: d.address.Confidence(), Status: d.address.Status(), Required: false},
	}
}
