package mmr

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summitlabs/go-mmr/database/memory"
)

func leafHashes(t *testing.T, n int) [][]byte {
	t.Helper()
	hasher := NewHasher(sha256.New())
	hashes := make([][]byte, n)
	for i := range hashes {
		hashes[i] = hasher.Hash([]byte(fmt.Sprintf("leaf%d", i)))
	}
	return hashes
}

func buildMmr(t *testing.T, n int) (*MerkleMountainRange, [][]byte) {
	t.Helper()
	m := NewMerkleMountainRange(NewHasher(sha256.New()), NewMemoryStore())
	leaves := leafHashes(t, n)
	for i, leaf := range leaves {
		pos, err := m.Push(leaf)
		require.NoError(t, err)
		assert.Equal(t, NodeIndex(uint64(i)), pos, "leaf %d", i)
	}
	return m, leaves
}

func TestEmptyMmr(t *testing.T) {
	hasher := NewHasher(sha256.New())
	m := NewMerkleMountainRange(hasher, NewMemoryStore())
	assert.True(t, m.IsEmpty())
	assert.Equal(t, uint64(0), m.Len())

	root, err := m.GetMerkleRoot()
	require.NoError(t, err)
	assert.Equal(t, hasher.Hash(), root)

	hash, err := m.GetNodeHash(0)
	require.NoError(t, err)
	assert.Nil(t, hash)
}

func TestSingleLeafRootIsLeaf(t *testing.T) {
	m, leaves := buildMmr(t, 1)
	root, err := m.GetMerkleRoot()
	require.NoError(t, err)
	// one peak, nothing to bag
	assert.Equal(t, leaves[0], root)
}

func TestSevenLeafScenario(t *testing.T) {
	m, _ := buildMmr(t, 7)
	require.Equal(t, uint64(11), m.Len())
	require.Equal(t, uint64(7), m.LeafCount())
	require.Equal(t, []uint64{6, 9, 10}, FindPeaks(m.Len()))

	peak6, err := m.GetNodeHash(6)
	require.NoError(t, err)
	peak9, err := m.GetNodeHash(9)
	require.NoError(t, err)
	peak10, err := m.GetNodeHash(10)
	require.NoError(t, err)

	hasher := NewHasher(sha256.New())
	expected := hasher.Hash(peak6, hasher.Hash(peak9, peak10))

	root, err := m.GetMerkleRoot()
	require.NoError(t, err)
	assert.Equal(t, expected, root)
}

func TestInteriorNodesAreParentHashes(t *testing.T) {
	m, leaves := buildMmr(t, 4)
	hasher := NewHasher(sha256.New())

	node2, err := m.GetNodeHash(2)
	require.NoError(t, err)
	assert.Equal(t, hasher.Hash(leaves[0], leaves[1]), node2)

	node5, err := m.GetNodeHash(5)
	require.NoError(t, err)
	assert.Equal(t, hasher.Hash(leaves[2], leaves[3]), node5)

	node6, err := m.GetNodeHash(6)
	require.NoError(t, err)
	assert.Equal(t, hasher.Hash(node2, node5), node6)
}

func TestBackendEquivalence(t *testing.T) {
	const n = 25

	db, err := NewDBStore(memory.NewMemoryDB(), 0)
	require.NoError(t, err)

	memMmr := NewMerkleMountainRange(NewHasher(sha256.New()), NewMemoryStore())
	dbMmr := NewMerkleMountainRange(NewHasher(sha256.New()), db)
	prunedMmr := NewMerkleMountainRange(NewHasher(sha256.New()), NewMemoryStore())

	leaves := leafHashes(t, n)
	for i, leaf := range leaves {
		_, err := memMmr.Push(leaf)
		require.NoError(t, err)
		_, err = dbMmr.Push(leaf)
		require.NoError(t, err)
		_, err = prunedMmr.Push(leaf)
		require.NoError(t, err)

		if i == 10 {
			require.NoError(t, prunedMmr.PruneToPeaks())
		}

		want, err := memMmr.GetMerkleRoot()
		require.NoError(t, err)
		got, err := dbMmr.GetMerkleRoot()
		require.NoError(t, err)
		assert.Equal(t, want, got, "durable backend diverged after leaf %d", i)
		got, err = prunedMmr.GetMerkleRoot()
		require.NoError(t, err)
		assert.Equal(t, want, got, "pruned backend diverged after leaf %d", i)
	}
}

// singlePushBackend delegates to a MemoryStore but hides its batch append
// and fails the push that would land at failAt.
type singlePushBackend struct {
	inner  *MemoryStore
	failAt uint64
}

func (s *singlePushBackend) Len() uint64   { return s.inner.Len() }
func (s *singlePushBackend) IsEmpty() bool { return s.inner.IsEmpty() }
func (s *singlePushBackend) Clear() error  { return s.inner.Clear() }

func (s *singlePushBackend) Push(value []byte) (uint64, error) {
	if s.inner.Len() == s.failAt {
		return 0, fmt.Errorf("write refused at position %d", s.failAt)
	}
	return s.inner.Push(value)
}
func (s *singlePushBackend) Get(pos uint64) ([]byte, error) { return s.inner.Get(pos) }
func (s *singlePushBackend) Position(value []byte) (uint64, bool, error) {
	return s.inner.Position(value)
}
func (s *singlePushBackend) Truncate(newLen uint64) error { return s.inner.Truncate(newLen) }
func (s *singlePushBackend) Shift(n uint64) error         { return s.inner.Shift(n) }
func (s *singlePushBackend) PushFront(value []byte) error { return s.inner.PushFront(value) }
func (s *singlePushBackend) ForEach(fn func(pos uint64, value []byte) error) error {
	return s.inner.ForEach(fn)
}

func TestPushRollsBackOnNonBatchingBackend(t *testing.T) {
	backend := &singlePushBackend{inner: NewMemoryStore(), failAt: 2}
	m := NewMerkleMountainRange(NewHasher(sha256.New()), backend)

	leaves := leafHashes(t, 2)
	_, err := m.Push(leaves[0])
	require.NoError(t, err)

	// the second push lands the leaf at 1, then fails synthesizing the
	// parent at 2; the leaf must be rolled back with it
	_, err = m.Push(leaves[1])
	require.Error(t, err)
	assert.Equal(t, uint64(1), m.Len())
	root, err := m.GetMerkleRoot()
	require.NoError(t, err)
	assert.Equal(t, leaves[0], root)

	backend.failAt = ^uint64(0)
	_, err = m.Push(leaves[1])
	require.NoError(t, err)
	assert.Equal(t, uint64(3), m.Len())
}

func TestFindLeafIndex(t *testing.T) {
	m, leaves := buildMmr(t, 7)
	for i, leaf := range leaves {
		leafIndex, found, err := m.FindLeafIndex(leaf)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, uint64(i), leafIndex)
	}

	_, found, err := m.FindLeafIndex([]byte("not a leaf"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTruncate(t *testing.T) {
	m, _ := buildMmr(t, 7)

	want := func(n int) []byte {
		t.Helper()
		smaller, _ := buildMmr(t, n)
		root, err := smaller.GetMerkleRoot()
		require.NoError(t, err)
		return root
	}

	require.NoError(t, m.Truncate(4))
	require.Equal(t, uint64(4), m.Len())
	root, err := m.GetMerkleRoot()
	require.NoError(t, err)
	assert.Equal(t, want(3), root)

	// 2 has two leaves but no parent, so it was never an observable size
	err = m.Truncate(2)
	require.ErrorIs(t, err, ErrInvalidMmrSize)

	require.NoError(t, m.Truncate(0))
	assert.True(t, m.IsEmpty())
}

func TestPushAfterTruncateRebuildsSameRoot(t *testing.T) {
	m, leaves := buildMmr(t, 7)
	want, err := m.GetMerkleRoot()
	require.NoError(t, err)

	require.NoError(t, m.Truncate(7)) // back to four leaves
	for _, leaf := range leaves[4:] {
		_, err := m.Push(leaf)
		require.NoError(t, err)
	}
	got, err := m.GetMerkleRoot()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
