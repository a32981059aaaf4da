package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLsDataStoreNone(t *testing.T) {
	store, err := CreateLsDataStore(&LsDataConfig{Type: "none"})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = CreateLsDataStore(&LsDataConfig{})
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestCreateLsDataStoreBadger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lsdata")
	store, err := CreateLsDataStore(&LsDataConfig{
		Type:   "badger",
		Badger: map[string]any{"path": dir},
	})
	require.NoError(t, err)
	require.NotNil(t, store)
	require.NoError(t, store.Close())
}

func TestCreateLsDataStoreBadgerMissingPath(t *testing.T) {
	_, err := CreateLsDataStore(&LsDataConfig{
		Type:   "badger",
		Badger: map[string]any{},
	})
	assert.Error(t, err)
}

func TestCreateLsDataStoreUnknownType(t *testing.T) {
	_, err := CreateLsDataStore(&LsDataConfig{Type: "sqlite"})
	assert.Error(t, err)
}
