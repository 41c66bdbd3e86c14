// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

import "math/bits"

// Node addressing
//
// Leaves and freshly merged parents share a single flat array. Each pushed
// leaf is appended first, immediately followed by the parents that its
// arrival completes, so positions interleave like this for the first seven
// leaves (positions in the diagram, leaf indices along the bottom):
//
//	2        6
//	       /   \
//	1     2     5      9
//	     / \   / \    / \
//	0   0   1 3   4  7   8  10
//	    0   1 2   3  4   5  6   <- leaf index
//
// All parent/sibling relationships below are pure functions of this
// addressing; no node objects ever exist.

const allOnes = ^uint64(0)

// peakMapHeight returns the peak bitmap of the MMR that precedes pos together
// with the height of the node at pos. The bitmap has one bit per mountain,
// highest mountain first, and is the basis for nearly everything else here.
func peakMapHeight(pos uint64) (uint64, uint64) {
	if pos == 0 {
		return 0, 0
	}
	peakSize := allOnes >> uint(bits.LeadingZeros64(pos))
	var peakMap uint64
	for peakSize != 0 {
		peakMap <<= 1
		if pos >= peakSize {
			pos -= peakSize
			peakMap |= 1
		}
		peakSize >>= 1
	}
	return peakMap, pos
}

// Height returns the height of the node at pos within its mountain. Leaves
// are at height 0.
func Height(pos uint64) uint64 {
	_, height := peakMapHeight(pos)
	return height
}

// IsLeaf reports whether the node at pos is a leaf.
func IsLeaf(pos uint64) bool {
	return Height(pos) == 0
}

// NodeIndex maps a leaf index to its position in the flat node array.
func NodeIndex(leafIndex uint64) uint64 {
	return 2*leafIndex - uint64(bits.OnesCount64(leafIndex))
}

// LeafIndex is the inverse of NodeIndex: the number of leaves strictly before
// the leaf at pos. The result is only meaningful when pos is a leaf position.
func LeafIndex(pos uint64) uint64 {
	return LeafCount(pos)
}

// LeafCount returns the number of leaves in an MMR of the given size. The
// peak bitmap is the leaf count: each mountain of height h holds 2^h leaves.
func LeafCount(size uint64) uint64 {
	count, _ := peakMapHeight(size)
	return count
}

// FindPeaks returns the peak positions of an MMR of the given size, in
// ascending position order. The highest mountain comes first. If size does
// not describe a fully merged MMR, i.e. some sibling pair is missing its
// parent, FindPeaks returns nil.
func FindPeaks(size uint64) []uint64 {
	if size == 0 {
		return nil
	}
	peakSize := allOnes >> uint(bits.LeadingZeros64(size))
	var sumPrevPeaks uint64
	left := size
	var peaks []uint64
	for peakSize != 0 {
		if left >= peakSize {
			peaks = append(peaks, sumPrevPeaks+peakSize-1)
			sumPrevPeaks += peakSize
			left -= peakSize
		}
		peakSize >>= 1
	}
	if left > 0 {
		return nil
	}
	return peaks
}

// Family returns the parent and sibling positions of the node at pos.
func Family(pos uint64) (uint64, uint64) {
	peakMap, height := peakMapHeight(pos)
	peak := uint64(1) << height
	if peakMap&peak != 0 {
		// pos is a right sibling
		return pos + 1, pos + 1 - 2*peak
	}
	return pos + 2*peak, pos + 2*peak - 1
}

// Sibling returns the sibling position of the node at pos.
func Sibling(pos uint64) uint64 {
	_, sibling := Family(pos)
	return sibling
}

// IsLeftSibling reports whether the node at pos is the left child of its
// parent.
func IsLeftSibling(pos uint64) bool {
	peakMap, height := peakMapHeight(pos)
	return peakMap&(uint64(1)<<height) == 0
}

// FamilyBranch returns the (parent, sibling) pairs encountered walking from
// pos up to the peak of its mountain, for an MMR of the given size. The walk
// stops as soon as the parent would fall outside the MMR, so a peak position
// yields an empty branch.
func FamilyBranch(pos, size uint64) [][2]uint64 {
	var branch [][2]uint64
	current := pos
	for {
		parent, sibling := Family(current)
		if parent >= size {
			return branch
		}
		branch = append(branch, [2]uint64{parent, sibling})
		current = parent
	}
}
