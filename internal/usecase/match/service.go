// Package match resolves raw test names against a catalog snapshot.
package match

import (
	domcat "github.com/pathlab-cloud/refscan/internal/domain/catalog"
	dommatch "github.com/pathlab-cloud/refscan/internal/domain/match"
	"github.com/pathlab-cloud/refscan/internal/metrics"
)

// Service is the staged matcher. Pure and side-effect-free apart from
// metrics; it never mutates the snapshot and is safe for concurrent use.
type Service struct {
	acceptThreshold     float64
	separationThreshold float64
}

// New creates a matcher with the service-wide thresholds.
func New(acceptThreshold, separationThreshold float64) *Service {
	return &Service{
		acceptThreshold:     acceptThreshold,
		separationThreshold: separationThreshold,
	}
}

// MatchAll resolves every raw name, preserving input order. Preprocessing
// may fan one raw name out to several results (panels, compound requests);
// each result keeps the original string. Unmatched names still produce a
// result with kind None and confidence 0.
func (s *Service) MatchAll(snap *domcat.Snapshot, rawNames []string) []dommatch.Result {
	out := make([]dommatch.Result, 0, len(rawNames))
	for _, raw := range rawNames {
		terms := preprocess(raw)
		if len(terms) == 0 {
			out = append(out, dommatch.Unmatched(raw))
			continue
		}
		for _, term := range terms {
			out = append(out, s.matchOne(snap, raw, term))
		}
	}
	for _, r := range out {
		metrics.MatchResultsTotal.WithLabelValues(string(r.Kind())).Inc()
	}
	return out
}

// matchOne runs the staged resolution: exact lookup, then fuzzy scan, then
// the terminal no-match outcome.
func (s *Service) matchOne(snap *domcat.Snapshot, original, term string) dommatch.Result {
	if entry, isCode, ok := snap.LookupExact(term); ok {
		kind := dommatch.ExactAlias
		if isCode {
			kind = dommatch.ExactCode
		}
		return dommatch.New(original, entry, 1.0, kind)
	}

	if entry, score, ok := s.fuzzy(snap, term); ok {
		return dommatch.New(original, entry, score, dommatch.Fuzzy)
	}

	return dommatch.Unmatched(original)
}

// fuzzy scans every candidate and accepts the best score only when it clears
// the acceptance threshold with enough separation from the runner-up.
// Equal-scoring candidates tie-break on the shorter edit distance between
// the term and the canonical name; a remaining tie is ambiguous and fails
// closed.
func (s *Service) fuzzy(snap *domcat.Snapshot, term string) (domcat.Entry, float64, bool) {
	normTerm := domcat.Normalize(term)
	if normTerm == "" {
		return domcat.Entry{}, 0, false
	}

	var (
		bestList  []domcat.Entry
		bestScore float64
		// second is the best score strictly below bestScore. Equal-score
		// candidates go through the edit-distance tie-break instead of
		// counting against the separation margin.
		second float64
	)

	for _, candidate := range snap.Candidates() {
		score := candidateScore(normTerm, candidate)
		if score == 0 {
			continue
		}
		switch {
		case score > bestScore:
			second = bestScore
			bestScore = score
			bestList = bestList[:0]
			bestList = append(bestList, candidate)
		case score == bestScore:
			bestList = append(bestList, candidate)
		case score > second:
			second = score
		}
	}

	if len(bestList) == 0 || bestScore < s.acceptThreshold {
		return domcat.Entry{}, 0, false
	}
	if bestScore-second < s.separationThreshold {
		return domcat.Entry{}, 0, false
	}

	best := bestList[0]
	if len(bestList) > 1 {
		winner, ok := breakTie(normTerm, bestList)
		if !ok {
			return domcat.Entry{}, 0, false
		}
		best = winner
	}
	return best, bestScore, true
}

// breakTie prefers the equal-scoring candidate whose canonical name has the
// shorter edit distance to the term. A shared minimum is ambiguous: fail
// closed, never guess.
func breakTie(normTerm string, candidates []domcat.Entry) (domcat.Entry, bool) {
	best := candidates[0]
	bestDist := levenshtein(normTerm, domcat.Normalize(best.CanonicalName()))
	ambiguous := false
	for _, c := range candidates[1:] {
		d := levenshtein(normTerm, domcat.Normalize(c.CanonicalName()))
		switch {
		case d < bestDist:
			best = c
			bestDist = d
			ambiguous = false
		case d == bestDist:
			ambiguous = true
		}
	}
	if ambiguous {
		return domcat.Entry{}, false
	}
	return best, true
}

// candidateScore is the best similarity between the term and any of the
// candidate's tokens (code, canonical name, aliases).
func candidateScore(normTerm string, candidate domcat.Entry) float64 {
	best := similarity(normTerm, domcat.Normalize(candidate.CanonicalName()))
	if s := similarity(normTerm, domcat.Normalize(candidate.TestID())); s > best {
		best = s
	}
	for _, alias := range candidate.Aliases() {
		if s := similarity(normTerm, domcat.Normalize(alias)); s > best {
			best = s
		}
	}
	return best
}
