// Package catalog owns the per-tenant catalog snapshots and their refresh.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pathlab-cloud/refscan/internal/domain"
	domcat "github.com/pathlab-cloud/refscan/internal/domain/catalog"
	"github.com/pathlab-cloud/refscan/internal/metrics"
)

// tenantState is the serving snapshot plus refresh health for one tenant.
type tenantState struct {
	snapshot *domcat.Snapshot
	// stale is set when the last refresh failed; the previous snapshot
	// keeps serving.
	stale bool
}

// Provider owns one immutable snapshot per tenant. Lookups read the current
// snapshot; a refresh builds a new one out-of-place and swaps the reference
// under a short lock, so readers never see a half-built index.
type Provider struct {
	source          Source
	refreshInterval time.Duration
	logger          *zap.Logger

	mu      sync.RWMutex
	tenants map[string]*tenantState

	// version numbers builds across all tenants; reserved atomically so a
	// build never runs under the map lock.
	version atomic.Int64

	invalidate chan string
}

// NewProvider creates a snapshot provider.
func NewProvider(source Source, refreshInterval time.Duration, logger *zap.Logger) *Provider {
	return &Provider{
		source:          source,
		refreshInterval: refreshInterval,
		logger:          logger,
		tenants:         make(map[string]*tenantState),
		invalidate:      make(chan string, 16),
	}
}

// Snapshot returns the tenant's current snapshot, loading it on first use.
// degraded is true when the snapshot carries build conflicts or the last
// refresh failed. Returns domain.ErrCatalogUnavailable when no snapshot can
// be served at all.
func (p *Provider) Snapshot(ctx context.Context, tenantID string) (*domcat.Snapshot, bool, error) {
	p.mu.RLock()
	st, ok := p.tenants[tenantID]
	p.mu.RUnlock()

	if !ok {
		if err := p.Refresh(ctx, tenantID); err != nil {
			return nil, false, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
		}
		p.mu.RLock()
		st = p.tenants[tenantID]
		p.mu.RUnlock()
	}

	if st == nil || st.snapshot == nil {
		return nil, false, domain.ErrCatalogUnavailable
	}

	degraded := st.stale || len(st.snapshot.Conflicts()) > 0
	return st.snapshot, degraded, nil
}

// Refresh rebuilds the tenant's snapshot from the source. The old snapshot
// keeps serving throughout the build; on failure it stays in place and the
// tenant is marked stale.
func (p *Provider) Refresh(ctx context.Context, tenantID string) error {
	entries, err := p.source.ListEntries(ctx, tenantID)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues(tenantID, "error").Inc()
		p.markStale(tenantID)
		p.logger.Warn("catalog refresh failed, serving previous snapshot",
			zap.String("tenant", tenantID),
			zap.Error(err),
		)
		return fmt.Errorf("list entries for %s: %w", tenantID, err)
	}

	// Build out-of-place; readers keep serving the old snapshot. The lock
	// covers only the reference swap.
	snap := domcat.Build(tenantID, p.version.Add(1), entries)

	p.mu.Lock()
	if st, ok := p.tenants[tenantID]; ok && st.snapshot != nil && st.snapshot.Version() > snap.Version() {
		// A concurrent refresh already installed a newer snapshot.
		p.mu.Unlock()
		return nil
	}
	p.tenants[tenantID] = &tenantState{snapshot: snap}
	p.mu.Unlock()

	metrics.CatalogRefreshTotal.WithLabelValues(tenantID, "ok").Inc()
	metrics.CatalogSnapshotEntries.WithLabelValues(tenantID).Set(float64(snap.Size()))

	for _, c := range snap.Conflicts() {
		p.logger.Warn("catalog alias conflict, first-seen entry kept",
			zap.String("tenant", tenantID),
			zap.String("token", c.Token),
			zap.String("kept", c.KeptID),
			zap.String("dropped", c.DropID),
		)
	}

	p.logger.Info("catalog snapshot refreshed",
		zap.String("tenant", tenantID),
		zap.Int64("version", snap.Version()),
		zap.Int("entries", snap.Size()),
		zap.Int("conflicts", len(snap.Conflicts())),
	)
	return nil
}

// Invalidate signals the refresh loop to rebuild a tenant's snapshot.
// Non-blocking; a full signal queue collapses into the periodic refresh.
func (p *Provider) Invalidate(tenantID string) {
	select {
	case p.invalidate <- tenantID:
	default:
	}
}

// Run drives periodic refresh of all known tenants and handles invalidation
// signals. Blocks until ctx is done; run it on its own goroutine.
func (p *Provider) Run(ctx context.Context) {
	ticker := time.NewTicker(p.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tenantID := <-p.invalidate:
			// Error already logged and the previous snapshot keeps serving.
			_ = p.Refresh(ctx, tenantID)
		case <-ticker.C:
			for _, tenantID := range p.knownTenants() {
				_ = p.Refresh(ctx, tenantID)
			}
		}
	}
}

func (p *Provider) knownTenants() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.tenants))
	for id := range p.tenants {
		out = append(out, id)
	}
	return out
}

func (p *Provider) markStale(tenantID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.tenants[tenantID]; ok {
		p.tenants[tenantID] = &tenantState{snapshot: st.snapshot, stale: true}
	}
}
