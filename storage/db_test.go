package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBRoundTrip(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.Put([]byte("a"), []byte("1")))

	got, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)

	_, err = db.Get([]byte("missing"))
	require.Error(t, err)
}

func TestMemDBWriteBatch(t *testing.T) {
	db := NewMemDB()
	err := db.WriteBatch([]KV{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	})
	require.NoError(t, err)

	got, err := db.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), got)
}

func TestMemDBGetCopies(t *testing.T) {
	db := NewMemDB()
	require.NoError(t, db.Put([]byte("a"), []byte("abc")))
	got, err := db.Get([]byte("a"))
	require.NoError(t, err)
	got[0] = 'z'

	again, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}
