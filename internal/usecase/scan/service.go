// Package scan orchestrates one referral scan end to end: extraction,
// normalization, catalog matching and confidence aggregation.
package scan

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pathlab-cloud/refscan/internal/domain"
	dommatch "github.com/pathlab-cloud/refscan/internal/domain/match"
	"github.com/pathlab-cloud/refscan/internal/domain/referral"
	"github.com/pathlab-cloud/refscan/internal/logger"
)

// Service wires the scan pipeline together. Only two collaborators can fail
// a request outright: the extractor and the snapshot provider. Everything
// downstream degrades confidence instead of failing.
type Service struct {
	extractor Extractor
	norm      Normalizer
	snapshots Snapshots
	matcher   Matcher
	scorer    Scorer
}

// New creates the scan orchestrator.
func New(extractor Extractor, norm Normalizer, snapshots Snapshots, matcher Matcher, scorer Scorer) *Service {
	return &Service{
		extractor: extractor,
		norm:      norm,
		snapshots: snapshots,
		matcher:   matcher,
		scorer:    scorer,
	}
}

// Scan runs the full pipeline for one referral image.
func (s *Service) Scan(ctx context.Context, tenantID string, image []byte, mimeType string) (referral.ScanResult, error) {
	if tenantID == "" {
		return referral.ScanResult{}, domain.ErrTenantRequired
	}

	raw, err := s.extractor.Extract(ctx, image, mimeType)
	if err != nil {
		return referral.ScanResult{}, fmt.Errorf("extract referral: %w", err)
	}

	res := s.norm.Normalize(raw)

	// Identifiers are masked before they reach a log field.
	logger.FromContext(ctx).Debug("referral normalized",
		zap.String("tenant", tenantID),
		zap.String("patient_medicare", logger.MaskMedicare(res.Patient.MedicareNumber().Value())),
		zap.String("patient_dob", logger.MaskDate(res.Patient.DateOfBirth().Raw())),
		zap.String("doctor_phone", logger.MaskPhone(res.Doctor.Phone().Value())),
		zap.Int("raw_tests", len(res.Tests)),
	)

	snap, degraded, err := s.snapshots.Snapshot(ctx, tenantID)
	if err != nil {
		return referral.ScanResult{}, fmt.Errorf("catalog snapshot for %s: %w", tenantID, err)
	}

	matches := s.matcher.MatchAll(snap, res.Tests)

	hasNotes := res.ClinicalNotes != "" || res.Urgent
	summary := s.scorer.Aggregate(res.Patient, res.Doctor, matches, hasNotes)

	logger.FromContext(ctx).Info("referral scanned",
		zap.String("tenant", tenantID),
		zap.Int("raw_tests", len(res.Tests)),
		zap.Int("matches", countMatched(matches)),
		zap.Bool("urgent", res.Urgent),
		zap.Bool("catalog_degraded", degraded),
		zap.Float64("confidence", summary.Overall),
	)

	return referral.ScanResult{
		Patient:         res.Patient,
		Doctor:          res.Doctor,
		RawTests:        res.Tests,
		Matches:         matches,
		ClinicalNotes:   res.ClinicalNotes,
		Urgent:          res.Urgent,
		CollectionDate:  res.CollectionDate,
		Confidence:      summary,
		CatalogDegraded: degraded,
	}, nil
}

// MatchTests resolves caller-supplied test names without an image. Used for
// re-matching after a catalog change and for interactive correction flows.
func (s *Service) MatchTests(ctx context.Context, tenantID string, names []string) ([]dommatch.Result, referral.ConfidenceSummary, bool, error) {
	if tenantID == "" {
		return nil, referral.ConfidenceSummary{}, false, domain.ErrTenantRequired
	}

	snap, degraded, err := s.snapshots.Snapshot(ctx, tenantID)
	if err != nil {
		return nil, referral.ConfidenceSummary{}, false, fmt.Errorf("catalog snapshot for %s: %w", tenantID, err)
	}

	matches := s.matcher.MatchAll(snap, names)
	summary := s.scorer.TestsOnly(matches)
	return matches, summary, degraded, nil
}

func countMatched(matches []dommatch.Result) int {
	n := 0
	for _, m := range matches {
		if m.Matched() {
			n++
		}
	}
	return n
}
