package store_test

import (
	"github.com/alexandre-normand/pagerscot/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"os"
	"testing"
)

func TestNewStoreWithInvalidPath(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "example")
	assert.Nil(t, err)

	defer os.Remove(tmpfile.Name()) // clean up

	_, err = store.NewLevelDB("test", tmpfile.Name())
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "failed to open")
	}
}

func TestNewLevelDBStore(t *testing.T) {
	dir := t.TempDir()

	ldb, err := store.NewLevelDB("test", dir)
	assert.Nil(t, err)
	defer ldb.Close()

	assert.Equal(t, "test", ldb.Name)
}

func TestGetAfterCloseShouldResultInError(t *testing.T) {
	dir := t.TempDir()

	ldb, err := store.NewLevelDB("test", dir)
	assert.Nil(t, err)

	ldb.Close()
	_, err = ldb.GetString("testKey")

	if assert.Error(t, err) {
		assert.False(t, errors.Is(err, store.ErrNotFound))
		assert.Contains(t, err.Error(), "testKey")
	}
}

func TestGetMissingKeyIsNotFound(t *testing.T) {
	dir := t.TempDir()

	ldb, err := store.NewLevelDB("test", dir)
	assert.Nil(t, err)
	defer ldb.Close()

	v, err := ldb.GetString("missing")
	assert.Equal(t, "", v)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestPutGetAsString(t *testing.T) {
	dir := t.TempDir()

	var sstorer store.StringStorer

	sstorer, err := store.NewLevelDB("test", dir)
	assert.Nil(t, err)
	defer sstorer.Close()

	err = sstorer.PutString("testKey", "value1")
	assert.Nil(t, err)

	v, err := sstorer.GetString("testKey")
	assert.Nil(t, err)
	assert.Equal(t, "value1", v)

	err = sstorer.PutString("testKey", "value2")
	assert.Nil(t, err)

	v, err = sstorer.GetString("testKey")
	assert.Nil(t, err)
	assert.Equal(t, "value2", v)
}

func TestValuesPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	ldb, err := store.NewLevelDB("test", dir)
	assert.Nil(t, err)
	assert.Nil(t, ldb.PutString("pagerduty_users", "[]"))
	assert.Nil(t, ldb.Close())

	ldb, err = store.NewLevelDB("test", dir)
	assert.Nil(t, err)
	defer ldb.Close()

	v, err := ldb.GetString("pagerduty_users")
	assert.Nil(t, err)
	assert.Equal(t, "[]", v)
}
