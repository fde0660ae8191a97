package catalog

import (
	"context"
	"testing"

	domcat "github.com/pathlab-cloud/refscan/internal/domain/catalog"
)

// mockStore implements the store consumer interface with function fields.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, key string) error
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	return m.hsetFn(ctx, key, fields)
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return m.hgetAllFn(ctx, key)
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	return m.hgetAllMultiFn(ctx, keys)
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	return m.delFn(ctx, key)
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	return m.scanFn(ctx, pattern)
}

func entryHash(testID, name, aliasesJSON, tenantID string) map[string]string {
	return map[string]string{
		"test_id":      testID,
		"name":         name,
		"aliases_json": aliasesJSON,
		"tenant_id":    tenantID,
	}
}

func mustEntry(t *testing.T, testID, name string, aliases []string, tenantID string) domcat.Entry {
	t.Helper()
	e, err := domcat.NewEntry(testID, name, aliases, tenantID)
	if err != nil {
		t.Fatalf("NewEntry(%s): %v", testID, err)
	}
	return e
}
