package referral

// RawExtraction is the untyped bag of strings the vision collaborator
// produced from one scan. Nil pointers mean the field was not visible.
// Produced once per scan and never mutated; the normalizer is the only
// consumer.
type RawExtraction struct {
	Patient        RawPatient
	Doctor         RawDoctor
	Tests          []string
	ClinicalNotes  *string
	Urgent         bool
	CollectionDate *string
	Confidence     ProvenanceConfidence
}

// RawPatient is the unvalidated patient section of a raw extraction.
type RawPatient struct {
	FirstName      *string
	LastName       *string
	DateOfBirth    *string
	Sex            *string
	MedicareNumber *string
	Address        *string
}

// RawDoctor is the unvalidated doctor section of a raw extraction.
type RawDoctor struct {
	Name           *string
	ProviderNumber *string
	Practice       *string
	Phone          *string
	Address        *string
}

// ProvenanceConfidence carries the vision model's own per-section confidence
// in [0,1]. Zero values mean the model reported none.
type ProvenanceConfidence struct {
	Patient float64
	Doctor  float64
	Tests   float64
}
