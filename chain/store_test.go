package chain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ss, err := NewSQLiteStore(filepath.Join(t.TempDir(), "chains.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	return map[string]Store{"file": fs, "sqlite": ss}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			c := New("roundtrip")
			c.Append([]byte(`{"cash":123.45}`))
			c.Append([]byte(`{"cash":67.89}`))

			require.NoError(t, store.Persist(c))

			loaded, err := store.Load("roundtrip")
			require.NoError(t, err)
			assert.Equal(t, c.Name, loaded.Name)
			require.Equal(t, c.Len(), loaded.Len())
			assert.True(t, loaded.IsValid(), "chain must survive serialization")
			assert.Equal(t, c.Last().Hash, loaded.Last().Hash)
			assert.Equal(t, c.Blocks[1].Payload, loaded.Blocks[1].Payload)
		})
	}
}

func TestStoreLoadMissing(t *testing.T) {
	t.Parallel()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load("no-such-chain")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrChainNotFound)
		})
	}
}

func TestStoreRemove(t *testing.T) {
	t.Parallel()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			c := New("doomed")
			require.NoError(t, store.Persist(c))
			require.NoError(t, store.Remove("doomed"))

			_, err := store.Load("doomed")
			assert.ErrorIs(t, err, ErrChainNotFound)

			err = store.Remove("doomed")
			assert.ErrorIs(t, err, ErrChainNotFound)
		})
	}
}

func TestStorePersistOverwrites(t *testing.T) {
	t.Parallel()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			c := New("grows")
			require.NoError(t, store.Persist(c))

			c.Append([]byte("later"))
			require.NoError(t, store.Persist(c))

			loaded, err := store.Load("grows")
			require.NoError(t, err)
			assert.Equal(t, 2, loaded.Len())
		})
	}
}
