package mmr

import (
	"crypto/sha256"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summitlabs/go-mmr/database"
	"github.com/summitlabs/go-mmr/database/memory"
)

func TestDBStoreBasics(t *testing.T) {
	s, err := NewDBStore(memory.NewMemoryDB(), 0)
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())

	pos, err := s.Push([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)
	pos, err = s.Push([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)

	value, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), value)

	value, err = s.Get(2)
	require.NoError(t, err)
	assert.Nil(t, value)

	found, ok, err := s.Position([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(0), found)
}

func TestDBStoreResume(t *testing.T) {
	db := memory.NewMemoryDB()
	s, err := NewDBStore(db, 0)
	require.NoError(t, err)
	for _, v := range []string{"a", "b", "c"} {
		_, err = s.Push([]byte(v))
		require.NoError(t, err)
	}

	// a fresh store over the same database resumes where we left off
	resumed, err := NewDBStore(db, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), resumed.Len())
	value, err := resumed.Get(2)
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), value)

	pos, err := resumed.Push([]byte("d"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), pos)
}

func TestDBStoreTruncateAndClear(t *testing.T) {
	db := memory.NewMemoryDB()
	s, err := NewDBStore(db, 0)
	require.NoError(t, err)
	for _, v := range []string{"a", "b", "c", "d"} {
		_, err = s.Push([]byte(v))
		require.NoError(t, err)
	}

	require.NoError(t, s.Truncate(2))
	assert.Equal(t, uint64(2), s.Len())
	value, err := s.Get(2)
	require.NoError(t, err)
	assert.Nil(t, value)

	// truncated tail is gone from the database too
	resumed, err := NewDBStore(db, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), resumed.Len())

	require.NoError(t, s.Clear())
	assert.True(t, s.IsEmpty())
	resumed, err = NewDBStore(db, 0)
	require.NoError(t, err)
	assert.True(t, resumed.IsEmpty())
}

func TestDBStoreForEach(t *testing.T) {
	s, err := NewDBStore(memory.NewMemoryDB(), 0)
	require.NoError(t, err)
	values := []string{"a", "b", "c"}
	for _, v := range values {
		_, err = s.Push([]byte(v))
		require.NoError(t, err)
	}

	var visited []string
	err = s.ForEach(func(pos uint64, value []byte) error {
		assert.Equal(t, uint64(len(visited)), pos)
		visited = append(visited, string(value))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, values, visited)
}

func TestDBStoreUnsupportedOps(t *testing.T) {
	s, err := NewDBStore(memory.NewMemoryDB(), 0)
	require.NoError(t, err)
	require.ErrorIs(t, s.Shift(1), ErrNotSupported)
	require.ErrorIs(t, s.PushFront([]byte("x")), ErrNotSupported)
}

// flakyStore fails exactly one batch write, then recovers.
type flakyStore struct {
	database.Store
	writeCount int
	failOn     int
}

func (s *flakyStore) NewBatch() database.Batcher {
	return &flakyBatch{Batcher: s.Store.NewBatch(), store: s}
}

type flakyBatch struct {
	database.Batcher
	store *flakyStore
}

func (b *flakyBatch) Write() error {
	b.store.writeCount++
	if b.store.writeCount == b.store.failOn {
		return errors.New("transient write failure")
	}
	return b.Batcher.Write()
}

func TestDBStorePushFailureLeavesValidState(t *testing.T) {
	db := &flakyStore{Store: memory.NewMemoryDB(), failOn: 2}
	s, err := NewDBStore(db, 0)
	require.NoError(t, err)
	m := NewMerkleMountainRange(NewHasher(sha256.New()), s)

	leaves := leafHashes(t, 2)
	_, err = m.Push(leaves[0])
	require.NoError(t, err)

	// the second push appends a leaf plus its parent in one batch; the
	// store fails that write, so neither node may land
	_, err = m.Push(leaves[1])
	require.Error(t, err)
	assert.Equal(t, uint64(1), m.Len())
	root, err := m.GetMerkleRoot()
	require.NoError(t, err)
	assert.Equal(t, leaves[0], root)

	// the store recovered, so the push can simply be retried
	_, err = m.Push(leaves[1])
	require.NoError(t, err)
	assert.Equal(t, uint64(3), m.Len())

	want, _ := buildMmr(t, 2)
	wantRoot, err := want.GetMerkleRoot()
	require.NoError(t, err)
	got, err := m.GetMerkleRoot()
	require.NoError(t, err)
	assert.Equal(t, wantRoot, got)
}

func TestDBStoreBackedMmrSurvivesRestart(t *testing.T) {
	db := memory.NewMemoryDB()
	s, err := NewDBStore(db, 0)
	require.NoError(t, err)

	m := NewMerkleMountainRange(NewHasher(sha256.New()), s)
	leaves := leafHashes(t, 9)
	for _, leaf := range leaves {
		_, err = m.Push(leaf)
		require.NoError(t, err)
	}
	want, err := m.GetMerkleRoot()
	require.NoError(t, err)

	resumed, err := NewDBStore(db, 0)
	require.NoError(t, err)
	got, err := NewMerkleMountainRange(NewHasher(sha256.New()), resumed).GetMerkleRoot()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
