// Package bbolt implements ports.FindingCache using bbolt (embedded B+ tree).
// Fingerprints and findings live in separate buckets, written together in
// one transaction so an entry is either fully visible with its fingerprint
// or not visible at all. A crash mid-write cannot leave a torn record that
// would be misread as fresh.
//
// The schema version is stored in a meta bucket. When the store is opened
// by a binary carrying a different version, every entry is dropped — cold
// cache, never per-row migration.
package bbolt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/khoward/debtscan/internal/ports"
)

// SchemaVersion identifies the on-disk layout. Bump it whenever the
// serialized entry shape changes; old stores are wiped on open.
const SchemaVersion = "2"

// hotEntries bounds the in-process read-through LRU in front of the store.
const hotEntries = 4096

// Bucket and key names.
var (
	bucketMeta         = []byte("meta")
	bucketFingerprints = []byte("fingerprints")
	bucketFindings     = []byte("findings")
	keySchemaVersion   = []byte("schema_version")
)

// Cache implements ports.FindingCache backed by bbolt with an LRU
// read-through layer for hot paths.
type Cache struct {
	db  *bolt.DB
	hot *lru.Cache[string, *ports.CacheEntry]
	log hclog.Logger
}

// Open opens (or creates) the cache database at path. If the stored schema
// version differs from SchemaVersion, all entries are dropped before the
// store is handed back.
func Open(path string, log hclog.Logger) (*Cache, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}

	hot, err := lru.New[string, *ports.CacheEntry](hotEntries)
	if err != nil {
		db.Close()
		return nil, err
	}

	c := &Cache{db: db, hot: hot, log: log}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// ensureSchema creates the buckets and wipes the store on a version
// mismatch.
func (c *Cache) ensureSchema() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}

		stored := meta.Get(keySchemaVersion)
		if stored != nil && string(stored) != SchemaVersion {
			c.log.Warn("cache schema changed, invalidating store",
				"stored", string(stored), "current", SchemaVersion)
			for _, name := range [][]byte{bucketFingerprints, bucketFindings} {
				if tx.Bucket(name) != nil {
					if err := tx.DeleteBucket(name); err != nil {
						return err
					}
				}
			}
		}

		if _, err := tx.CreateBucketIfNotExists(bucketFingerprints); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketFindings); err != nil {
			return err
		}
		return meta.Put(keySchemaVersion, []byte(SchemaVersion))
	})
}

// Get returns the cached entry for path, or nil if none exists.
func (c *Cache) Get(path string) (*ports.CacheEntry, error) {
	if e, ok := c.hot.Get(path); ok {
		return e, nil
	}

	var fpJSON, findingsJSON []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		// Copy bytes out of the transaction (bbolt slices are only valid within tx).
		if v := tx.Bucket(bucketFingerprints).Get([]byte(path)); v != nil {
			fpJSON = append([]byte(nil), v...)
		}
		if v := tx.Bucket(bucketFindings).Get([]byte(path)); v != nil {
			findingsJSON = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if fpJSON == nil {
		return nil, nil
	}

	entry := &ports.CacheEntry{}
	if err := json.Unmarshal(fpJSON, &entry.Fingerprint); err != nil {
		return nil, fmt.Errorf("unmarshal fingerprint for %s: %w", path, err)
	}
	if findingsJSON != nil {
		if err := json.Unmarshal(findingsJSON, &entry.Findings); err != nil {
			return nil, fmt.Errorf("unmarshal findings for %s: %w", path, err)
		}
	}

	c.hot.Add(path, entry)
	return entry, nil
}

// Put atomically upserts the entry for path. Fingerprint and findings are
// written in one transaction, so a reader never observes one without the
// other.
func (c *Cache) Put(path string, fp ports.Fingerprint, findings []ports.Finding) error {
	fpJSON, err := json.Marshal(fp)
	if err != nil {
		return fmt.Errorf("marshal fingerprint: %w", err)
	}
	findingsJSON, err := json.Marshal(findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketFingerprints).Put([]byte(path), fpJSON); err != nil {
			return err
		}
		return tx.Bucket(bucketFindings).Put([]byte(path), findingsJSON)
	})
	if err != nil {
		return err
	}

	c.hot.Add(path, &ports.CacheEntry{Fingerprint: fp, Findings: findings})
	return nil
}

// IsFresh reports whether a cached entry exists for path with an equal
// fingerprint. Only the fingerprints bucket is read on the cold path.
func (c *Cache) IsFresh(path string, fp ports.Fingerprint) bool {
	if e, ok := c.hot.Get(path); ok {
		return e.Fingerprint == fp
	}

	var stored *ports.Fingerprint
	c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketFingerprints).Get([]byte(path))
		if v == nil {
			return nil
		}
		var f ports.Fingerprint
		if err := json.Unmarshal(v, &f); err != nil {
			return nil // corrupt fingerprint reads as stale
		}
		stored = &f
		return nil
	})
	return stored != nil && *stored == fp
}

// Invalidate removes the entry for a single path.
func (c *Cache) Invalidate(path string) error {
	c.hot.Remove(path)
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketFingerprints).Delete([]byte(path)); err != nil {
			return err
		}
		return tx.Bucket(bucketFindings).Delete([]byte(path))
	})
}

// Clear removes all entries.
func (c *Cache) Clear() error {
	c.hot.Purge()
	return c.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketFingerprints, bucketFindings} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Len returns the number of cached entries.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketFingerprints).Stats().KeyN
		return nil
	})
	return n, err
}
