// Package confidence combines per-field and per-match confidences into the
// section and overall scores reported to callers.
package confidence

import (
	dommatch "github.com/pathlab-cloud/refscan/internal/domain/match"
	"github.com/pathlab-cloud/refscan/internal/domain/referral"
)

// Fixed overall weights. Documented constants, never per-request.
const (
	weightPatient  = 0.3
	weightDoctor   = 0.2
	weightTests    = 0.4
	weightPresence = 0.1
)

// missingRequiredPenalty scales how hard a missing required field pulls a
// section toward zero: section = min(mean, 1 - penalty*missingFraction).
const missingRequiredPenalty = 0.5

// Aggregator computes confidence summaries. Stateless; aggregation never
// fails and every output is a finite number in [0,1].
type Aggregator struct{}

// New creates an aggregator.
func New() *Aggregator { return &Aggregator{} }

// Aggregate combines the normalized records and match results into the
// summary. hasNotes reports whether clinical notes or an urgency marker
// were extracted; that presence carries the remaining overall weight.
func (a *Aggregator) Aggregate(
	patient referral.PatientRecord, doctor referral.DoctorRecord,
	matches []dommatch.Result, hasNotes bool,
) referral.ConfidenceSummary {
	p := sectionConfidence(patient.Fields())
	d := sectionConfidence(doctor.Fields())
	t := testsConfidence(matches)

	presence := 0.0
	if hasNotes {
		presence = 1.0
	}

	overall := weightPatient*p + weightDoctor*d + weightTests*t + weightPresence*presence

	return referral.ConfidenceSummary{
		Patient: clamp01(p),
		Doctor:  clamp01(d),
		Tests:   clamp01(t),
		Overall: clamp01(overall),
	}
}

// TestsOnly summarizes a match-only request: patient and doctor sections
// carry no signal and report zero, and the overall score is the tests
// confidence alone.
func (a *Aggregator) TestsOnly(matches []dommatch.Result) referral.ConfidenceSummary {
	t := testsConfidence(matches)
	return referral.ConfidenceSummary{Tests: clamp01(t), Overall: clamp01(t)}
}

// sectionConfidence is the mean of the present fields' confidences, pulled
// toward zero when required fields are missing: one absent required field
// dominates an otherwise confident section.
func sectionConfidence(fields []referral.FieldInfo) float64 {
	var sum float64
	present := 0
	required := 0
	missingRequired := 0

	for _, f := range fields {
		if f.Required {
			required++
		}
		switch f.Status {
		case referral.Absent:
			if f.Required {
				missingRequired++
			}
		case referral.Present, referral.Invalid:
			// Invalid fields count with their degraded confidence.
			sum += f.Confidence
			present++
		}
	}

	mean := 0.0
	if present > 0 {
		mean = sum / float64(present)
	}

	if required > 0 && missingRequired > 0 {
		ceiling := 1 - missingRequiredPenalty*float64(missingRequired)/float64(required)
		if ceiling < mean {
			return ceiling
		}
	}
	return mean
}

// testsConfidence is the mean of all match confidences; unmatched results
// contribute zero. No tests at all means no signal, reported as zero.
func testsConfidence(matches []dommatch.Result) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Confidence()
	}
	return sum / float64(len(matches))
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
