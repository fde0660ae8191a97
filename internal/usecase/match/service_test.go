package match

import (
	"reflect"
	"testing"

	domcat "github.com/pathlab-cloud/refscan/internal/domain/catalog"
	dommatch "github.com/pathlab-cloud/refscan/internal/domain/match"
)

func TestMatchAll_ExactCode(t *testing.T) {
	svc := newTestService()
	results := svc.MatchAll(testSnapshot(t), []string{"FBC"})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Kind() != dommatch.ExactCode {
		t.Errorf("kind = %s, want %s", r.Kind(), dommatch.ExactCode)
	}
	if r.Confidence() != 1.0 {
		t.Errorf("confidence = %v, want 1.0", r.Confidence())
	}
	if r.Entry().TestID() != "FBC" {
		t.Errorf("entry = %s, want FBC", r.Entry().TestID())
	}
}

func TestMatchAll_ExactAlias(t *testing.T) {
	svc := newTestService()
	results := svc.MatchAll(testSnapshot(t), []string{"full blood count"})

	r := results[0]
	if r.Kind() != dommatch.ExactAlias {
		t.Errorf("kind = %s, want %s", r.Kind(), dommatch.ExactAlias)
	}
	if r.Confidence() != 1.0 || r.Entry().TestID() != "FBC" {
		t.Errorf("got %s @ %v, want FBC @ 1.0", r.Entry().TestID(), r.Confidence())
	}
}

func TestMatchAll_FuzzyTypo(t *testing.T) {
	svc := newTestService()
	results := svc.MatchAll(testSnapshot(t), []string{"Lipds"})

	r := results[0]
	if r.Kind() != dommatch.Fuzzy {
		t.Fatalf("kind = %s, want %s", r.Kind(), dommatch.Fuzzy)
	}
	if r.Entry().TestID() != "LIPIDS" {
		t.Errorf("entry = %s, want LIPIDS", r.Entry().TestID())
	}
	if r.Confidence() < 0.80 || r.Confidence() >= 1.0 {
		t.Errorf("fuzzy confidence = %v, want in [0.80, 1.0)", r.Confidence())
	}
	if r.Original() != "Lipds" {
		t.Errorf("original = %q, want Lipds", r.Original())
	}
}

func TestMatchAll_UnknownFailsClosed(t *testing.T) {
	svc := newTestService()
	results := svc.MatchAll(testSnapshot(t), []string{"Unknown Panel XYZ"})

	r := results[0]
	if r.Kind() != dommatch.None {
		t.Fatalf("kind = %s, want %s", r.Kind(), dommatch.None)
	}
	if r.Confidence() != 0 {
		t.Errorf("confidence = %v, want 0", r.Confidence())
	}
	if r.Matched() {
		t.Error("unmatched result must not report Matched")
	}
	if r.Original() != "Unknown Panel XYZ" {
		t.Errorf("original = %q", r.Original())
	}
}

func TestMatchAll_BelowThresholdFailsClosed(t *testing.T) {
	svc := newTestService()
	// Too short and too distant to clear the acceptance threshold.
	results := svc.MatchAll(testSnapshot(t), []string{"Lpd"})
	if results[0].Kind() != dommatch.None {
		t.Errorf("kind = %s, want none for a below-threshold name", results[0].Kind())
	}
}

func TestMatchAll_AmbiguousTieFailsClosed(t *testing.T) {
	snap := domcat.Build(testTenant, 1, []domcat.Entry{
		makeEntry(t, "CORTAM", "Cortisol AM"),
		makeEntry(t, "CORTPM", "Cortisol PM"),
	})

	svc := newTestService()
	results := svc.MatchAll(snap, []string{"Cortisol"})

	// Both candidates score identically and sit at the same edit distance;
	// guessing between them is worse than not matching.
	if results[0].Kind() != dommatch.None {
		t.Errorf("kind = %s, want none for ambiguous candidates", results[0].Kind())
	}
}

func TestMatchAll_TieBrokenByEditDistance(t *testing.T) {
	snap := domcat.Build(testTenant, 1, []domcat.Entry{
		makeEntry(t, "GLU", "Glucose"),
		makeEntry(t, "GLUT", "Glucose Tolerance Test"),
	})

	svc := newTestService()
	results := svc.MatchAll(snap, []string{"Glucse"})

	r := results[0]
	if r.Kind() != dommatch.Fuzzy || r.Entry().TestID() != "GLU" {
		t.Errorf("got %s/%s, want fuzzy match on GLU", r.Kind(), r.Entry().TestID())
	}
}

func TestMatchAll_OrderPreservingFanOut(t *testing.T) {
	svc := newTestService()
	results := svc.MatchAll(testSnapshot(t), []string{"FBC", "B12/Folate"})

	if len(results) != 3 {
		t.Fatalf("expected 3 results (compound fans out), got %d", len(results))
	}

	var originals []string
	var ids []string
	for _, r := range results {
		originals = append(originals, r.Original())
		ids = append(ids, r.Entry().TestID())
	}
	if !reflect.DeepEqual(originals, []string{"FBC", "B12/Folate", "B12/Folate"}) {
		t.Errorf("originals = %v", originals)
	}
	if !reflect.DeepEqual(ids, []string{"FBC", "B12", "FOL"}) {
		t.Errorf("resolved ids = %v", ids)
	}
}

func TestMatchAll_Deterministic(t *testing.T) {
	svc := newTestService()
	snap := testSnapshot(t)
	names := []string{"FBC", "Lipds", "Unknown Panel XYZ", "B12/Folate"}

	first := svc.MatchAll(snap, names)
	for i := 0; i < 10; i++ {
		got := svc.MatchAll(snap, names)
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced different results", i)
		}
	}
}

func TestMatchAll_BlankNameYieldsUnmatched(t *testing.T) {
	svc := newTestService()
	results := svc.MatchAll(testSnapshot(t), []string{"   "})
	if len(results) != 1 || results[0].Kind() != dommatch.None {
		t.Errorf("blank name: got %v", results)
	}
}
