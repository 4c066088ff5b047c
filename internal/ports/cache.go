package ports

// Fingerprint is the cheap identity proxy for file content: modification
// time (unix seconds) plus byte size. Two fingerprints are equal iff both
// fields match. Content hashing is deliberately not used; a same-second
// edit that preserves size goes undetected, an accepted tradeoff.
type Fingerprint struct {
	MTime int64 `json:"mtime"`
	Size  int64 `json:"size"`
}

// CacheEntry is the persisted record for one file: the fingerprint the
// findings were produced under, and the findings themselves in scan order.
type CacheEntry struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	Findings    []Finding   `json:"findings"`
}

// FindingCache persists per-file scan results keyed by path.
// The backing store (bbolt) must give each Put per-key atomicity and
// crash-consistent durability: an entry is either fully visible with its
// fingerprint or not visible at all. Concurrent Get/Put on distinct paths
// must not serialize against each other beyond what the store requires.
//
// A schema version is kept at the store level. When the store is opened by
// a binary with a different schema version, every entry is invalidated
// (cold cache), never migrated row by row.
type FindingCache interface {
	// Get returns the cached entry for path, or nil if none exists.
	Get(path string) (*CacheEntry, error)

	// Put atomically upserts the entry for path, overwriting any prior one.
	Put(path string, fp Fingerprint, findings []Finding) error

	// IsFresh reports whether a cached entry exists for path whose
	// fingerprint equals fp. Freshness never consults file content.
	IsFresh(path string, fp Fingerprint) bool

	// Invalidate removes the entry for a single path. Missing paths are
	// not an error.
	Invalidate(path string) error

	// Clear removes all entries.
	Clear() error
}

// Watcher monitors a project directory for file changes. The adapter
// (fsnotify) filters out non-source files and vendored directories before
// invoking onChange. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring projectPath recursively. onChange is called
	// with the absolute path of each changed file and may be invoked from
	// any goroutine.
	Watch(projectPath string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. Safe to call more
	// than once.
	Stop() error
}
