package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeight(t *testing.T) {
	// First eleven positions of the seven-leaf MMR.
	expected := []uint64{0, 0, 1, 0, 0, 1, 2, 0, 0, 1, 0}
	for pos, height := range expected {
		assert.Equal(t, height, Height(uint64(pos)), "position %d", pos)
	}
	assert.Equal(t, uint64(3), Height(14))
	assert.Equal(t, uint64(4), Height(30))
}

func TestIsLeaf(t *testing.T) {
	leaves := map[uint64]bool{
		0: true, 1: true, 2: false, 3: true, 4: true,
		5: false, 6: false, 7: true, 8: true, 9: false, 10: true,
	}
	for pos, isLeaf := range leaves {
		assert.Equal(t, isLeaf, IsLeaf(pos), "position %d", pos)
	}
}

func TestNodeIndex(t *testing.T) {
	// 2*leaf - popcount(leaf)
	expected := []uint64{0, 1, 3, 4, 7, 8, 10, 11, 15, 16, 18}
	for leaf, pos := range expected {
		assert.Equal(t, pos, NodeIndex(uint64(leaf)), "leaf %d", leaf)
	}
}

func TestLeafIndexRoundTrip(t *testing.T) {
	for leaf := uint64(0); leaf < 1000; leaf++ {
		assert.Equal(t, leaf, LeafIndex(NodeIndex(leaf)))
	}
}

func TestLeafCount(t *testing.T) {
	assert.Equal(t, uint64(0), LeafCount(0))
	assert.Equal(t, uint64(1), LeafCount(1))
	assert.Equal(t, uint64(2), LeafCount(3))
	assert.Equal(t, uint64(3), LeafCount(4))
	assert.Equal(t, uint64(4), LeafCount(7))
	assert.Equal(t, uint64(7), LeafCount(11))
}

func TestFindPeaks(t *testing.T) {
	assert.Nil(t, FindPeaks(0))
	assert.Equal(t, []uint64{0}, FindPeaks(1))
	assert.Equal(t, []uint64{2}, FindPeaks(3))
	assert.Equal(t, []uint64{2, 3}, FindPeaks(4))
	assert.Equal(t, []uint64{6}, FindPeaks(7))
	assert.Equal(t, []uint64{6, 9, 10}, FindPeaks(11))
	assert.Equal(t, []uint64{14, 17, 18}, FindPeaks(19))

	// sizes with unmerged siblings are not valid MMR sizes
	assert.Nil(t, FindPeaks(2))
	assert.Nil(t, FindPeaks(5))
	assert.Nil(t, FindPeaks(6))
	assert.Nil(t, FindPeaks(9))
}

func TestFamily(t *testing.T) {
	parent, sibling := Family(0)
	assert.Equal(t, uint64(2), parent)
	assert.Equal(t, uint64(1), sibling)

	parent, sibling = Family(1)
	assert.Equal(t, uint64(2), parent)
	assert.Equal(t, uint64(0), sibling)

	parent, sibling = Family(3)
	assert.Equal(t, uint64(5), parent)
	assert.Equal(t, uint64(4), sibling)

	parent, sibling = Family(4)
	assert.Equal(t, uint64(5), parent)
	assert.Equal(t, uint64(3), sibling)

	// interior pair 2 and 5 merge into 6
	parent, sibling = Family(2)
	assert.Equal(t, uint64(6), parent)
	assert.Equal(t, uint64(5), sibling)

	parent, sibling = Family(5)
	assert.Equal(t, uint64(6), parent)
	assert.Equal(t, uint64(2), sibling)
}

func TestSiblingSymmetry(t *testing.T) {
	for pos := uint64(0); pos < 500; pos++ {
		assert.Equal(t, pos, Sibling(Sibling(pos)), "position %d", pos)
	}
}

func TestIsLeftSibling(t *testing.T) {
	assert.True(t, IsLeftSibling(0))
	assert.False(t, IsLeftSibling(1))
	assert.True(t, IsLeftSibling(2))
	assert.True(t, IsLeftSibling(3))
	assert.False(t, IsLeftSibling(4))
	assert.False(t, IsLeftSibling(5))
}

func TestFamilyBranch(t *testing.T) {
	branch := FamilyBranch(4, 11)
	require.Len(t, branch, 2)
	assert.Equal(t, [2]uint64{5, 3}, branch[0])
	assert.Equal(t, [2]uint64{6, 2}, branch[1])

	// a peak has an empty branch
	assert.Empty(t, FamilyBranch(10, 11))
	assert.Empty(t, FamilyBranch(6, 11))
}
