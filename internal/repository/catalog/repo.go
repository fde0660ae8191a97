// Package catalog is the Redis-backed catalog source.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	domcat "github.com/pathlab-cloud/refscan/internal/domain/catalog"
)

// store is the consumer interface for the catalog source (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo reads the tenant catalogs the catalog service materializes in Redis.
// Entries live as hashes under {prefix}catalog:{tenant}:{testId}.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a catalog repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// ListEntries returns the tenant's full catalog. Keys are sorted before
// hydration so that snapshot builds see the same input order on every
// refresh; duplicate-alias resolution depends on that.
func (r *Repo) ListEntries(ctx context.Context, tenantID string) ([]domcat.Entry, error) {
	keys, err := r.store.Scan(ctx, r.entryKey(tenantID, "*"))
	if err != nil {
		return nil, fmt.Errorf("scan catalog %s: %w", tenantID, err)
	}
	if len(keys) == 0 {
		return []domcat.Entry{}, nil
	}
	sort.Strings(keys)

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog %s: %w", tenantID, err)
	}

	entries := make([]domcat.Entry, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			// Key deleted between SCAN and HGETALL.
			continue
		}
		e, err := entryFromHash(row)
		if err != nil {
			return nil, fmt.Errorf("hydrate %s: %w", keys[i], err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// GetEntry fetches one catalog entry. The second return is false when the
// entry does not exist.
func (r *Repo) GetEntry(ctx context.Context, tenantID, testID string) (domcat.Entry, bool, error) {
	key := r.entryKey(tenantID, testID)
	row, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domcat.Entry{}, false, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(row) == 0 {
		return domcat.Entry{}, false, nil
	}

	e, err := entryFromHash(row)
	if err != nil {
		return domcat.Entry{}, false, fmt.Errorf("hydrate %s: %w", key, err)
	}
	return e, true, nil
}

// PutEntry upserts one catalog entry (used by seeding and tests).
func (r *Repo) PutEntry(ctx context.Context, e domcat.Entry) error {
	fields, err := entryToHash(e)
	if err != nil {
		return err
	}
	key := r.entryKey(e.TenantID(), e.TestID())
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// DeleteEntry removes one catalog entry.
func (r *Repo) DeleteEntry(ctx context.Context, tenantID, testID string) error {
	key := r.entryKey(tenantID, testID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) entryKey(tenantID, testID string) string {
	var b strings.Builder
	b.WriteString(r.keyPrefix)
	b.WriteString("catalog:")
	b.WriteString(tenantID)
	b.WriteString(":")
	b.WriteString(testID)
	return b.String()
}
