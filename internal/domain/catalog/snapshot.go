package catalog

import "time"

// Conflict records two catalog entries whose tokens normalize to the same
// index key. The first-seen entry keeps the mapping; the later one is dropped.
type Conflict struct {
	Token  string
	KeptID string
	DropID string
}

// indexed is one resolved token in the snapshot's lookup map.
type indexed struct {
	entry Entry
	// code is true when the token is the entry's primary test id,
	// as opposed to an alias or the canonical name.
	code bool
}

// Snapshot is the immutable built index over one tenant's catalog.
// A refresh builds a whole new Snapshot out-of-place and swaps a single
// reference; a Snapshot is never mutated after Build returns.
type Snapshot struct {
	tenantID  string
	version   int64
	builtAt   time.Time
	byToken   map[string]indexed
	entries   []Entry
	conflicts []Conflict
}

// Build constructs a Snapshot from the tenant's full entry list.
// Entries are indexed in input order; when two entries claim the same
// normalized token the first-seen mapping wins deterministically and the
// collision is recorded as a Conflict.
func Build(tenantID string, version int64, entries []Entry) *Snapshot {
	s := &Snapshot{
		tenantID: tenantID,
		version:  version,
		builtAt:  time.Now().UTC(),
		byToken:  make(map[string]indexed, len(entries)*4),
		entries:  entries,
	}

	for _, e := range entries {
		for i, raw := range e.tokens() {
			token := Normalize(raw)
			if token == "" {
				continue
			}
			prev, taken := s.byToken[token]
			if taken {
				if prev.entry.TestID() != e.TestID() {
					s.conflicts = append(s.conflicts, Conflict{
						Token:  token,
						KeptID: prev.entry.TestID(),
						DropID: e.TestID(),
					})
				}
				continue
			}
			s.byToken[token] = indexed{entry: e, code: i == 0}
		}
	}

	return s
}

// TenantID returns the owning tenant.
func (s *Snapshot) TenantID() string { return s.tenantID }

// Version returns the monotonic snapshot version.
func (s *Snapshot) Version() int64 { return s.version }

// BuiltAt returns the build time.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// LookupExact resolves a normalized token. isCode reports whether the token
// was the entry's primary test id.
func (s *Snapshot) LookupExact(token string) (entry Entry, isCode bool, ok bool) {
	ix, ok := s.byToken[Normalize(token)]
	if !ok {
		return Entry{}, false, false
	}
	return ix.entry, ix.code, true
}

// Candidates returns the full entry list in input order, for fuzzy scans.
func (s *Snapshot) Candidates() []Entry { return s.entries }

// Conflicts returns the duplicate-alias collisions detected at build time.
func (s *Snapshot) Conflicts() []Conflict { return s.conflicts }

// Size returns the number of catalog entries.
func (s *Snapshot) Size() int { return len(s.entries) }
