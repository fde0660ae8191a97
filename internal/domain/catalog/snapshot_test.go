package catalog

import "testing"

func makeEntry(t *testing.T, testID, name string, aliases ...string) Entry {
	t.Helper()
	e, err := NewEntry(testID, name, aliases, "org-1")
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	return e
}

func TestBuild_LookupExact(t *testing.T) {
	snap := Build("org-1", 1, []Entry{
		makeEntry(t, "FBC", "Full Blood Count", "CBC", "Full Blood Examination"),
		makeEntry(t, "UEC", "Urea Electrolytes Creatinine", "U&E"),
	})

	entry, isCode, ok := snap.LookupExact("FBC")
	if !ok || entry.TestID() != "FBC" {
		t.Fatalf("expected FBC code lookup to resolve, got ok=%v entry=%v", ok, entry.TestID())
	}
	if !isCode {
		t.Error("expected primary test id lookup to report isCode")
	}

	entry, isCode, ok = snap.LookupExact("full blood examination")
	if !ok || entry.TestID() != "FBC" {
		t.Fatalf("expected alias lookup to resolve to FBC, got ok=%v entry=%v", ok, entry.TestID())
	}
	if isCode {
		t.Error("alias lookup must not report isCode")
	}

	// Query-side normalization: formatting differences must not matter.
	if _, _, ok := snap.LookupExact("  Full  Blood  Count "); !ok {
		t.Error("expected whitespace-insensitive canonical name lookup")
	}
	if _, _, ok := snap.LookupExact("U&E"); !ok {
		t.Error("expected punctuated alias to resolve via normalization")
	}

	if _, _, ok := snap.LookupExact("Unknown Panel XYZ"); ok {
		t.Error("expected unknown name to miss")
	}
}

func TestBuild_DuplicateAliasFirstSeenWins(t *testing.T) {
	snap := Build("org-1", 1, []Entry{
		makeEntry(t, "FBC", "Full Blood Count", "CBC"),
		makeEntry(t, "FBE", "Full Blood Examination", "CBC"),
	})

	entry, _, ok := snap.LookupExact("CBC")
	if !ok {
		t.Fatal("expected duplicated alias to still resolve")
	}
	if entry.TestID() != "FBC" {
		t.Errorf("expected first-seen entry FBC to keep the alias, got %s", entry.TestID())
	}

	conflicts := snap.Conflicts()
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	c := conflicts[0]
	if c.Token != "cbc" || c.KeptID != "FBC" || c.DropID != "FBE" {
		t.Errorf("unexpected conflict: %+v", c)
	}
}

func TestBuild_SameEntryDuplicateTokenIsNotConflict(t *testing.T) {
	// Canonical name and alias of one entry normalizing identically is
	// harmless and must not flag the snapshot.
	snap := Build("org-1", 1, []Entry{
		makeEntry(t, "TFT", "Thyroid Function Test", "thyroid function test"),
	})
	if len(snap.Conflicts()) != 0 {
		t.Errorf("expected no conflicts, got %+v", snap.Conflicts())
	}
}

func TestBuild_DeterministicAcrossRebuilds(t *testing.T) {
	entries := []Entry{
		makeEntry(t, "A1", "Alpha Test", "shared"),
		makeEntry(t, "B2", "Beta Test", "shared"),
	}

	for i := 0; i < 10; i++ {
		snap := Build("org-1", int64(i), entries)
		entry, _, ok := snap.LookupExact("shared")
		if !ok || entry.TestID() != "A1" {
			t.Fatalf("rebuild %d: expected shared alias to resolve to A1, got %v", i, entry.TestID())
		}
	}
}

func TestSnapshot_CandidatesPreserveInputOrder(t *testing.T) {
	entries := []Entry{
		makeEntry(t, "Z9", "Zeta"),
		makeEntry(t, "A1", "Alpha"),
	}
	snap := Build("org-1", 1, entries)

	got := snap.Candidates()
	if len(got) != 2 || got[0].TestID() != "Z9" || got[1].TestID() != "A1" {
		t.Errorf("candidates reordered: %v, %v", got[0].TestID(), got[1].TestID())
	}
	if snap.Size() != 2 {
		t.Errorf("Size() = %d, want 2", snap.Size())
	}
}

func TestNewEntry_Validation(t *testing.T) {
	if _, err := NewEntry("", "Name", nil, "org-1"); err == nil {
		t.Error("expected error for missing test id")
	}
	if _, err := NewEntry("ID", "", nil, "org-1"); err == nil {
		t.Error("expected error for missing canonical name")
	}
	if _, err := NewEntry("ID", "Name", nil, ""); err == nil {
		t.Error("expected error for missing tenant id")
	}
	if !(Entry{}).IsZero() {
		t.Error("zero entry must report IsZero")
	}
}
