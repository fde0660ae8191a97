package match

import (
	"testing"

	domcat "github.com/pathlab-cloud/refscan/internal/domain/catalog"
)

const testTenant = "org-1"

func makeEntry(t *testing.T, testID, name string, aliases ...string) domcat.Entry {
	t.Helper()
	e, err := domcat.NewEntry(testID, name, aliases, testTenant)
	if err != nil {
		t.Fatalf("NewEntry(%s): %v", testID, err)
	}
	return e
}

// testSnapshot is a small but realistic tenant catalog.
func testSnapshot(t *testing.T) *domcat.Snapshot {
	t.Helper()
	return domcat.Build(testTenant, 1, []domcat.Entry{
		makeEntry(t, "FBC", "Full Blood Count", "CBC"),
		makeEntry(t, "UEC", "Urea Electrolytes Creatinine"),
		makeEntry(t, "LIPIDS", "Lipid Profile", "Lipids"),
		makeEntry(t, "LFT", "Liver Function Test"),
		makeEntry(t, "TFT", "Thyroid Function Test"),
		makeEntry(t, "B12", "Vitamin B12"),
		makeEntry(t, "FOL", "Folate"),
	})
}

func newTestService() *Service {
	return New(0.80, 0.05)
}
