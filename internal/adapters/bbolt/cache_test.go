package bbolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/khoward/debtscan/internal/ports"
)

// newTestCache creates a temporary cache store.
func newTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, path
}

func testFindings(path string) []ports.Finding {
	return []ports.Finding{
		{
			Tag:      ports.TagTodo,
			Message:  "rework pagination",
			File:     path,
			Line:     42,
			Column:   3,
			Author:   "alice",
			Issue:    "7",
			Priority: ports.PriorityHigh,
			Context:  "// TODO(alice, #7, high): rework pagination",
		},
		{
			Tag:     ports.TagFixme,
			Message: "leaks on error path",
			File:    path,
			Line:    80,
		},
	}
}

func TestGetMissingEntry(t *testing.T) {
	c, _ := newTestCache(t)
	entry, err := c.Get("src/nothing.go")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestPutGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	fp := ports.Fingerprint{MTime: 1700000000, Size: 4096}
	findings := testFindings("src/page.go")
	require.NoError(t, c.Put("src/page.go", fp, findings))

	entry, err := c.Get("src/page.go")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, fp, entry.Fingerprint)
	assert.Equal(t, findings, entry.Findings)
}

func TestFreshness(t *testing.T) {
	c, _ := newTestCache(t)
	fp := ports.Fingerprint{MTime: 1700000000, Size: 100}
	require.NoError(t, c.Put("a.go", fp, nil))

	assert.True(t, c.IsFresh("a.go", fp))
	assert.False(t, c.IsFresh("a.go", ports.Fingerprint{MTime: 1700000001, Size: 100}), "mtime change is stale")
	assert.False(t, c.IsFresh("a.go", ports.Fingerprint{MTime: 1700000000, Size: 101}), "size change is stale")
	assert.False(t, c.IsFresh("missing.go", fp))
}

func TestPutOverwrites(t *testing.T) {
	c, _ := newTestCache(t)
	old := ports.Fingerprint{MTime: 1, Size: 10}
	require.NoError(t, c.Put("a.go", old, testFindings("a.go")))

	fresh := ports.Fingerprint{MTime: 2, Size: 20}
	require.NoError(t, c.Put("a.go", fresh, nil))

	entry, err := c.Get("a.go")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, fresh, entry.Fingerprint)
	assert.Empty(t, entry.Findings)
	assert.False(t, c.IsFresh("a.go", old))
	assert.True(t, c.IsFresh("a.go", fresh))
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	fp := ports.Fingerprint{MTime: 1, Size: 1}
	require.NoError(t, c.Put("a.go", fp, nil))
	require.NoError(t, c.Invalidate("a.go"))

	assert.False(t, c.IsFresh("a.go", fp))
	entry, err := c.Get("a.go")
	require.NoError(t, err)
	assert.Nil(t, entry)

	// Invalidating a missing path is a no-op.
	assert.NoError(t, c.Invalidate("never-there.go"))
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(t)
	for _, p := range []string{"a.go", "b.go", "c.go"} {
		require.NoError(t, c.Put(p, ports.Fingerprint{MTime: 1, Size: 1}, testFindings(p)))
	}
	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, c.Clear())
	n, err = c.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	entry, err := c.Get("a.go")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestEntriesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	c, err := Open(path, nil)
	require.NoError(t, err)
	fp := ports.Fingerprint{MTime: 1700000000, Size: 512}
	findings := testFindings("src/a.go")
	require.NoError(t, c.Put("src/a.go", fp, findings))
	require.NoError(t, c.Close())

	c, err = Open(path, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.IsFresh("src/a.go", fp))
	entry, err := c.Get("src/a.go")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, findings, entry.Findings)
}

func TestSchemaMismatchWipesStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	c, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, c.Put("a.go", ports.Fingerprint{MTime: 1, Size: 1}, nil))
	require.NoError(t, c.Close())

	// Rewrite the stored version as an older binary would have left it.
	db, err := bolt.Open(path, 0600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, []byte("1"))
	}))
	require.NoError(t, db.Close())

	c, err = Open(path, nil)
	require.NoError(t, err)
	defer c.Close()

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n, "old-schema entries must be dropped")

	// The store stays usable after the wipe.
	require.NoError(t, c.Put("b.go", ports.Fingerprint{MTime: 2, Size: 2}, nil))
	assert.True(t, c.IsFresh("b.go", ports.Fingerprint{MTime: 2, Size: 2}))
}

func TestConcurrentPuts(t *testing.T) {
	c, _ := newTestCache(t)
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func(n int) {
			path := filepath.Join("src", string(rune('a'+n))+".go")
			done <- c.Put(path, ports.Fingerprint{MTime: int64(n), Size: int64(n)}, testFindings(path))
		}(i)
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}
