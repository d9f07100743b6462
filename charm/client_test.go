// ABOUTME: Tests for the local KV client and its store adapter
// ABOUTME: Verifies snapshots survive a reopen and missing keys read as absent
package charm

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/immo/models"
	"github.com/harperreed/immo/store"
)

func TestStorageMissingKeyIsAbsent(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	data, ok, err := c.Storage().Load(store.KeyContacts)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "kv")

	c, err := OpenLocal(dir)
	require.NoError(t, err)
	s, err := store.Open(store.Deps{Storage: c.Storage()})
	require.NoError(t, err)

	added, err := s.Contacts.Add(models.Contact{FirstName: "Amira", LastName: "Ben Salah"})
	require.NoError(t, err)
	lead, err := s.SellerLeads.Add(models.SellerLead{SellerName: "Karim", Title: "Villa"})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = OpenLocal(dir)
	require.NoError(t, err)
	defer c.Close()
	reopened, err := store.Open(store.Deps{Storage: c.Storage()})
	require.NoError(t, err)

	got, ok := reopened.Contacts.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Amira", got.FirstName)

	gotLead, ok := reopened.SellerLeads.Get(lead.ID)
	require.True(t, ok)
	assert.Equal(t, models.PhaseProspect, gotLead.Phase)
}

func TestKeysAreNamespaced(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	require.NoError(t, c.Storage().Save(store.KeyMandats, []byte(`[]`)))
	require.NoError(t, c.Set([]byte("other/thing"), []byte("x")))

	keys, err := c.KeysWithPrefix([]byte(KeyPrefix))
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, KeyPrefix+store.KeyMandats, string(keys[0]))
}

func TestResetDropsEverything(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	require.NoError(t, c.Storage().Save(store.KeyDeals, []byte(`[]`)))
	require.NoError(t, c.Reset())

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLocalClientHasNoAccount(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	assert.False(t, c.IsCloud())
	_, err := c.ID()
	assert.Error(t, err)
	assert.NoError(t, c.Sync())
}
