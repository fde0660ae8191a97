package refscan

import "time"

// Patient is the normalized patient section. Nil fields were not visible on
// the referral.
type Patient struct {
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	DateOfBirth    *string `json:"dateOfBirth"`
	Sex            *string `json:"sex"`
	MedicareNumber *string `json:"medicareNumber"`
	Address        *string `json:"address"`
}

// Doctor is the normalized referring-doctor section.
type Doctor struct {
	Name           *string `json:"name"`
	ProviderNumber *string `json:"providerNumber"`
	Practice       *string `json:"practice"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
}

// MatchedTest is one resolved test name. MatchType is one of "exact-code",
// "exact-alias", "fuzzy" or "none"; Matched and TestID are empty for "none".
type MatchedTest struct {
	Original   string  `json:"original"`
	Matched    string  `json:"matched,omitempty"`
	TestID     string  `json:"testId,omitempty"`
	Confidence float64 `json:"confidence"`
	MatchType  string  `json:"matchType"`
}

// Confidence holds the per-section and overall confidence scores in [0,1].
type Confidence struct {
	Patient float64 `json:"patient"`
	Doctor  float64 `json:"doctor"`
	Tests   float64 `json:"tests"`
	Overall float64 `json:"overall"`
}

// ReferralData is the full extraction result for one scanned referral.
type ReferralData struct {
	Patient         Patient       `json:"patient"`
	Doctor          Doctor        `json:"doctor"`
	Tests           []string      `json:"tests"`
	MatchedTests    []MatchedTest `json:"matchedTests"`
	ClinicalNotes   *string       `json:"clinicalNotes"`
	Urgent          bool          `json:"urgent"`
	CollectionDate  *string       `json:"collectionDate"`
	Confidence      Confidence    `json:"confidence"`
	CatalogDegraded bool          `json:"catalogDegraded"`
}

// ScanResult is the response of the scan endpoint.
type ScanResult struct {
	Success          bool         `json:"success"`
	ScanID           string       `json:"scanId"`
	Data             ReferralData `json:"data"`
	ProcessingTimeMs int64        `json:"processingTimeMs"`
	Timestamp        time.Time    `json:"timestamp"`
}

// MatchResult is the response of the test-match endpoint.
type MatchResult struct {
	Success         bool          `json:"success"`
	Data            []MatchedTest `json:"data"`
	Confidence      Confidence    `json:"confidence"`
	CatalogDegraded bool          `json:"catalogDegraded"`
	Timestamp       time.Time     `json:"timestamp"`
}

// Health is the response of the health endpoint.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
