package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pathlab-cloud/refscan/internal/domain"
	domcat "github.com/pathlab-cloud/refscan/internal/domain/catalog"
)

// --- Mocks ---

type mockSource struct {
	listFn func(ctx context.Context, tenantID string) ([]domcat.Entry, error)
	calls  int
}

func (m *mockSource) ListEntries(ctx context.Context, tenantID string) ([]domcat.Entry, error) {
	m.calls++
	if m.listFn != nil {
		return m.listFn(ctx, tenantID)
	}
	return nil, nil
}

func makeEntry(t *testing.T, testID, name string, aliases ...string) domcat.Entry {
	t.Helper()
	e, err := domcat.NewEntry(testID, name, aliases, "org-1")
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	return e
}

func newTestProvider(src Source) *Provider {
	return NewProvider(src, time.Minute, zap.NewNop())
}

// --- Tests ---

func TestSnapshot_LoadsOnFirstUse(t *testing.T) {
	src := &mockSource{listFn: func(_ context.Context, tenantID string) ([]domcat.Entry, error) {
		return []domcat.Entry{makeEntry(t, "FBC", "Full Blood Count")}, nil
	}}
	p := newTestProvider(src)

	snap, degraded, err := p.Snapshot(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if degraded {
		t.Error("fresh conflict-free snapshot must not be degraded")
	}
	if snap.Size() != 1 {
		t.Errorf("size = %d, want 1", snap.Size())
	}
	if src.calls != 1 {
		t.Errorf("source called %d times, want 1", src.calls)
	}

	// Second lookup serves the cached snapshot.
	if _, _, err := p.Snapshot(context.Background(), "org-1"); err != nil {
		t.Fatalf("second Snapshot: %v", err)
	}
	if src.calls != 1 {
		t.Errorf("source called %d times after cached lookup, want 1", src.calls)
	}
}

func TestSnapshot_FirstLoadFailureIsUnavailable(t *testing.T) {
	src := &mockSource{listFn: func(_ context.Context, _ string) ([]domcat.Entry, error) {
		return nil, errors.New("redis down")
	}}
	p := newTestProvider(src)

	_, _, err := p.Snapshot(context.Background(), "org-1")
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Errorf("err = %v, want ErrCatalogUnavailable", err)
	}
}

func TestRefresh_FailureKeepsPreviousSnapshotDegraded(t *testing.T) {
	fail := false
	src := &mockSource{listFn: func(_ context.Context, _ string) ([]domcat.Entry, error) {
		if fail {
			return nil, errors.New("redis down")
		}
		return []domcat.Entry{makeEntry(t, "FBC", "Full Blood Count")}, nil
	}}
	p := newTestProvider(src)

	if _, _, err := p.Snapshot(context.Background(), "org-1"); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	fail = true
	if err := p.Refresh(context.Background(), "org-1"); err == nil {
		t.Fatal("expected refresh error")
	}

	snap, degraded, err := p.Snapshot(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Snapshot after failed refresh: %v", err)
	}
	if !degraded {
		t.Error("expected degraded snapshot after failed refresh")
	}
	if snap.Size() != 1 {
		t.Errorf("previous snapshot replaced: size %d", snap.Size())
	}
}

func TestRefresh_RecoversAfterFailure(t *testing.T) {
	fail := false
	src := &mockSource{listFn: func(_ context.Context, _ string) ([]domcat.Entry, error) {
		if fail {
			return nil, errors.New("redis down")
		}
		return []domcat.Entry{makeEntry(t, "FBC", "Full Blood Count")}, nil
	}}
	p := newTestProvider(src)

	if _, _, err := p.Snapshot(context.Background(), "org-1"); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	fail = true
	_ = p.Refresh(context.Background(), "org-1")
	fail = false
	if err := p.Refresh(context.Background(), "org-1"); err != nil {
		t.Fatalf("recovering refresh: %v", err)
	}

	_, degraded, err := p.Snapshot(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if degraded {
		t.Error("successful refresh must clear the stale flag")
	}
}

func TestSnapshot_ConflictsMarkDegraded(t *testing.T) {
	src := &mockSource{listFn: func(_ context.Context, _ string) ([]domcat.Entry, error) {
		return []domcat.Entry{
			makeEntry(t, "FBC", "Full Blood Count", "CBC"),
			makeEntry(t, "FBE", "Full Blood Examination", "CBC"),
		}, nil
	}}
	p := newTestProvider(src)

	_, degraded, err := p.Snapshot(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !degraded {
		t.Error("alias conflicts must flag the snapshot as degraded")
	}
}

func TestRefresh_VersionIncreasesAndSwapsWholesale(t *testing.T) {
	entries := []domcat.Entry{makeEntry(t, "FBC", "Full Blood Count")}
	src := &mockSource{listFn: func(_ context.Context, _ string) ([]domcat.Entry, error) {
		return entries, nil
	}}
	p := newTestProvider(src)

	first, _, err := p.Snapshot(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	entries = []domcat.Entry{
		makeEntry(t, "UEC", "Urea Electrolytes Creatinine"),
		makeEntry(t, "LFT", "Liver Function Test"),
	}
	if err := p.Refresh(context.Background(), "org-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	second, _, err := p.Snapshot(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if second == first {
		t.Error("refresh must build a new snapshot, not mutate the old one")
	}
	if second.Version() <= first.Version() {
		t.Errorf("version %d not above %d", second.Version(), first.Version())
	}
	if second.Size() != 2 {
		t.Errorf("size = %d, want 2 (wholesale replacement)", second.Size())
	}
	// The old reference still answers for readers holding it.
	if _, _, ok := first.LookupExact("FBC"); !ok {
		t.Error("old snapshot must remain readable")
	}
}

func TestRefresh_ReadersNotBlockedDuringBuild(t *testing.T) {
	small := []domcat.Entry{makeEntry(t, "FBC", "Full Blood Count")}
	large := make([]domcat.Entry, 0, 120000)
	for i := 0; i < 120000; i++ {
		large = append(large, makeEntry(t, fmt.Sprintf("T%06d", i), fmt.Sprintf("Assay Number %d", i)))
	}

	serveLarge := false
	src := &mockSource{listFn: func(_ context.Context, _ string) ([]domcat.Entry, error) {
		if serveLarge {
			return large, nil
		}
		return small, nil
	}}
	p := newTestProvider(src)

	ctx := context.Background()
	if _, _, err := p.Snapshot(ctx, "org-1"); err != nil {
		t.Fatalf("first Snapshot: %v", err)
	}

	serveLarge = true
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Refresh(ctx, "org-1")
	}()

	// The old snapshot must keep answering while the new index is being
	// built; only the reference swap may hold the lock.
	for {
		select {
		case <-done:
			snap, _, err := p.Snapshot(ctx, "org-1")
			if err != nil {
				t.Fatalf("Snapshot after refresh: %v", err)
			}
			if snap.Size() != len(large) {
				t.Errorf("size = %d, want %d", snap.Size(), len(large))
			}
			return
		default:
		}

		start := time.Now()
		if _, _, err := p.Snapshot(ctx, "org-1"); err != nil {
			t.Fatalf("Snapshot during refresh: %v", err)
		}
		if d := time.Since(start); d > 100*time.Millisecond {
			t.Fatalf("lookup took %v while a refresh build was in flight", d)
		}
	}
}

func TestSnapshot_TenantsAreIsolated(t *testing.T) {
	src := &mockSource{listFn: func(_ context.Context, tenantID string) ([]domcat.Entry, error) {
		if tenantID == "org-1" {
			return []domcat.Entry{makeEntry(t, "FBC", "Full Blood Count")}, nil
		}
		return nil, nil
	}}
	p := newTestProvider(src)

	one, _, err := p.Snapshot(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("org-1: %v", err)
	}
	two, _, err := p.Snapshot(context.Background(), "org-2")
	if err != nil {
		t.Fatalf("org-2: %v", err)
	}

	if _, _, ok := one.LookupExact("FBC"); !ok {
		t.Error("org-1 entry missing")
	}
	if _, _, ok := two.LookupExact("FBC"); ok {
		t.Error("org-2 must not see org-1 entries")
	}
}

func TestInvalidate_NonBlockingWhenQueueFull(t *testing.T) {
	p := newTestProvider(&mockSource{})
	// Far more signals than the queue holds; must never block.
	for i := 0; i < 100; i++ {
		p.Invalidate("org-1")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	p := NewProvider(&mockSource{}, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
