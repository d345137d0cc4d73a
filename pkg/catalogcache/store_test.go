//go:build unit

package catalogcache_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront-api/pkg/catalogcache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	t.Run("load of a never-cached collection returns nil without error", func(t *testing.T) {
		store, err := catalogcache.NewFileStore(t.TempDir())
		require.NoError(t, err)

		entry, err := store.Load("products")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("save then load roundtrips payload and fingerprint", func(t *testing.T) {
		store, err := catalogcache.NewFileStore(t.TempDir())
		require.NoError(t, err)

		t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		in := &catalogcache.Entry{
			Payload:  json.RawMessage(`[{"name":"shirt"}]`),
			Meta:     catalogcache.Meta{Count: 1, LatestUpdatedAt: &t1},
			StoredAt: t1,
		}
		require.NoError(t, store.Save("products", in))

		out, err := store.Load("products")
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.JSONEq(t, string(in.Payload), string(out.Payload))
		assert.True(t, in.Meta.Equal(out.Meta))
		assert.True(t, in.StoredAt.Equal(out.StoredAt))
	})

	t.Run("uses the two localStorage-style keys on disk", func(t *testing.T) {
		dir := t.TempDir()
		store, err := catalogcache.NewFileStore(dir)
		require.NoError(t, err)

		entry := &catalogcache.Entry{Payload: json.RawMessage(`[]`), StoredAt: time.Now()}
		require.NoError(t, store.Save("categories", entry))

		assert.FileExists(t, filepath.Join(dir, "categories_cache"))
		assert.FileExists(t, filepath.Join(dir, "categories_cache_meta"))
	})

	t.Run("payload without its meta sidecar counts as absent", func(t *testing.T) {
		dir := t.TempDir()
		store, err := catalogcache.NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "products_cache"), []byte(`[]`), 0o644))

		entry, err := store.Load("products")
		require.NoError(t, err)
		assert.Nil(t, entry, "unreconcilable pair takes the cold path")
	})

	t.Run("save replaces the entry wholesale", func(t *testing.T) {
		store, err := catalogcache.NewFileStore(t.TempDir())
		require.NoError(t, err)

		first := &catalogcache.Entry{Payload: json.RawMessage(`["a"]`), Meta: catalogcache.Meta{Count: 1}, StoredAt: time.Now()}
		require.NoError(t, store.Save("products", first))

		second := &catalogcache.Entry{Payload: json.RawMessage(`["a","b"]`), Meta: catalogcache.Meta{Count: 2}, StoredAt: time.Now()}
		require.NoError(t, store.Save("products", second))

		out, err := store.Load("products")
		require.NoError(t, err)
		assert.JSONEq(t, `["a","b"]`, string(out.Payload))
		assert.Equal(t, int64(2), out.Meta.Count)
	})
}
