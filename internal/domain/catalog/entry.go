package catalog

import "fmt"

// Entry is a canonical test definition within one tenant's catalog
// (immutable value object).
type Entry struct {
	testID        string
	canonicalName string
	aliases       []string
	tenantID      string
}

// NewEntry validates and creates an Entry.
func NewEntry(testID, canonicalName string, aliases []string, tenantID string) (Entry, error) {
	if testID == "" {
		return Entry{}, fmt.Errorf("test id is required")
	}
	if canonicalName == "" {
		return Entry{}, fmt.Errorf("canonical name is required")
	}
	if tenantID == "" {
		return Entry{}, fmt.Errorf("tenant id is required")
	}
	return Entry{
		testID:        testID,
		canonicalName: canonicalName,
		aliases:       aliases,
		tenantID:      tenantID,
	}, nil
}

// Reconstruct creates an Entry without validation (storage hydration).
func Reconstruct(testID, canonicalName string, aliases []string, tenantID string) Entry {
	return Entry{
		testID:        testID,
		canonicalName: canonicalName,
		aliases:       aliases,
		tenantID:      tenantID,
	}
}

// TestID returns the stable identifier, unique within the tenant.
func (e Entry) TestID() string { return e.testID }

// CanonicalName returns the display name.
func (e Entry) CanonicalName() string { return e.canonicalName }

// Aliases returns the alternate strings that resolve to this entry.
func (e Entry) Aliases() []string { return e.aliases }

// TenantID returns the owning tenant.
func (e Entry) TenantID() string { return e.tenantID }

// IsZero reports whether the entry is the zero value.
func (e Entry) IsZero() bool { return e.testID == "" }

// tokens returns every string that should resolve to this entry:
// the code, the canonical name, and each alias.
func (e Entry) tokens() []string {
	out := make([]string, 0, len(e.aliases)+2)
	out = append(out, e.testID, e.canonicalName)
	out = append(out, e.aliases...)
	return out
}
