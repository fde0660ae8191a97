package referral

import "github.com/pathlab-cloud/refscan/internal/domain/match"

// ConfidenceSummary combines section confidences into one overall score.
// Every value is a finite number in [0,1].
type ConfidenceSummary struct {
	Patient float64
	Doctor  float64
	Tests   float64
	Overall float64
}

// ScanResult is the aggregate answer for one request. It is created once
// per request and discarded; nothing here is persisted.
type ScanResult struct {
	Patient        PatientRecord
	Doctor         DoctorRecord
	RawTests       []string
	Matches        []match.Result
	ClinicalNotes  string
	Urgent         bool
	CollectionDate string
	Confidence     ConfidenceSummary
	// CatalogDegraded is set when the serving snapshot carried build
	// conflicts or a refresh has been failing; results remain usable.
	CatalogDegraded bool
}
