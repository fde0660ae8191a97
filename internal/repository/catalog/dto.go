package catalog

import (
	"encoding/json"
	"fmt"

	domcat "github.com/pathlab-cloud/refscan/internal/domain/catalog"
)

// entryToHash converts a domain Entry to a map for HSET.
func entryToHash(e domcat.Entry) (map[string]string, error) {
	aliasesJSON, err := json.Marshal(e.Aliases())
	if err != nil {
		return nil, fmt.Errorf("marshal aliases: %w", err)
	}
	return map[string]string{
		"test_id":      e.TestID(),
		"name":         e.CanonicalName(),
		"aliases_json": string(aliasesJSON),
		"tenant_id":    e.TenantID(),
	}, nil
}

// entryFromHash hydrates a domain Entry from an HGETALL result map.
func entryFromHash(m map[string]string) (domcat.Entry, error) {
	testID := m["test_id"]
	if testID == "" {
		return domcat.Entry{}, fmt.Errorf("missing test_id")
	}

	var aliases []string
	if raw := m["aliases_json"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &aliases); err != nil {
			return domcat.Entry{}, fmt.Errorf("unmarshal aliases for %s: %w", testID, err)
		}
	}

	return domcat.Reconstruct(testID, m["name"], aliases, m["tenant_id"]), nil
}
