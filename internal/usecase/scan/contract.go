package scan

import (
	"context"

	domcat "github.com/pathlab-cloud/refscan/internal/domain/catalog"
	dommatch "github.com/pathlab-cloud/refscan/internal/domain/match"
	"github.com/pathlab-cloud/refscan/internal/domain/referral"
	"github.com/pathlab-cloud/refscan/internal/usecase/normalize"
)

// Extractor reads a referral image and returns the raw extraction.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (referral.RawExtraction, error)
}

// Normalizer types and validates a raw extraction.
type Normalizer interface {
	Normalize(raw referral.RawExtraction) normalize.Result
}

// Snapshots serves the tenant's current catalog snapshot.
type Snapshots interface {
	Snapshot(ctx context.Context, tenantID string) (*domcat.Snapshot, bool, error)
}

// Matcher resolves raw test names against a snapshot.
type Matcher interface {
	MatchAll(snap *domcat.Snapshot, rawNames []string) []dommatch.Result
}

// Scorer aggregates field and match confidences.
type Scorer interface {
	Aggregate(patient referral.PatientRecord, doctor referral.DoctorRecord,
		matches []dommatch.Result, hasNotes bool) referral.ConfidenceSummary
	TestsOnly(matches []dommatch.Result) referral.ConfidenceSummary
}
