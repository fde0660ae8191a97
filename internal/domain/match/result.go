// Package match holds the catalog-match outcome types.
package match

import "github.com/pathlab-cloud/refscan/internal/domain/catalog"

// Kind classifies how a raw test name resolved against the catalog.
type Kind string

const (
	// ExactCode means the normalized name equals an entry's primary test id.
	ExactCode Kind = "exact-code"
	// ExactAlias means the normalized name equals an entry's alias or canonical name.
	ExactAlias Kind = "exact-alias"
	// Fuzzy means the name resolved by similarity above the acceptance threshold.
	Fuzzy Kind = "fuzzy"
	// None means the name did not resolve; this is a valid terminal outcome.
	None Kind = "none"
)

// Result is the outcome of matching one raw test name (immutable value object).
// An unmatched name still yields a Result with kind None and confidence 0.
type Result struct {
	original   string
	entry      catalog.Entry
	confidence float64
	kind       Kind
}

// New creates a match result. Confidence is clamped to [0,1].
func New(original string, entry catalog.Entry, confidence float64, kind Kind) Result {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Result{original: original, entry: entry, confidence: confidence, kind: kind}
}

// Unmatched creates the terminal no-match result for a raw name.
func Unmatched(original string) Result {
	return Result{original: original, kind: None}
}

// Original returns the raw test name as extracted.
func (r Result) Original() string { return r.original }

// Entry returns the matched catalog entry; zero when unmatched.
func (r Result) Entry() catalog.Entry { return r.entry }

// Confidence returns the match confidence in [0,1].
func (r Result) Confidence() float64 { return r.confidence }

// Kind returns how the match resolved.
func (r Result) Kind() Kind { return r.kind }

// Matched reports whether the name resolved to a catalog entry.
func (r Result) Matched() bool { return r.kind != None }
