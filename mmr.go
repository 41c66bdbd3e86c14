// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

import (
	"github.com/pkg/errors"

	"github.com/summitlabs/go-mmr/utils"
)

// NewMerkleMountainRange couples a hasher with a backend. The MMR itself is
// stateless; every operation is a pure function of the backend contents and
// position arithmetic.
func NewMerkleMountainRange(hasher *Hasher, backend ArrayLike, opts ...Option) *MerkleMountainRange {
	m := &MerkleMountainRange{
		hasher:  hasher,
		backend: backend,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type MerkleMountainRange struct {
	hasher  *Hasher
	backend ArrayLike
	metrics metricsSink
}

// Len returns the total node count, interior nodes included. For the number
// of pushed items see LeafCount.
func (m *MerkleMountainRange) Len() uint64 {
	return m.backend.Len()
}

func (m *MerkleMountainRange) IsEmpty() bool {
	return m.backend.IsEmpty()
}

// LeafCount returns the number of leaves pushed so far.
func (m *MerkleMountainRange) LeafCount() uint64 {
	return LeafCount(m.backend.Len())
}

// Backend exposes the underlying store for read-only use, such as proof
// construction over a snapshot.
func (m *MerkleMountainRange) Backend() ArrayLike {
	return m.backend
}

// Push appends hash as the next leaf and merges mountains of equal height
// until none remain, appending each synthesized parent H(left || right). It
// returns the position of the leaf itself, not of any parent.
//
// All node hashes are computed before anything is appended, so a read
// failure leaves the backend untouched. The append itself goes through
// PushBatch when the backend supports it, so a write failure cannot strand
// a leaf without its parents; plain backends fall back to per-node pushes
// with a truncate on the failure path.
func (m *MerkleMountainRange) Push(hash []byte) (uint64, error) {
	leafPos := m.backend.Len()
	pending := [][]byte{utils.CopyBytes(hash)}

	get := func(pos uint64) ([]byte, error) {
		if pos >= leafPos {
			return pending[pos-leafPos], nil
		}
		value, err := m.backend.Get(pos)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, errors.Wrapf(ErrHashNotFound, "position %d", pos)
		}
		return value, nil
	}

	pos := leafPos
	height := uint64(0)
	for Height(pos+1) > height {
		leftPos := pos + 1 - (2 << height)
		left, err := get(leftPos)
		if err != nil {
			return 0, err
		}
		right, err := get(pos)
		if err != nil {
			return 0, err
		}
		pending = append(pending, m.hasher.Hash(left, right))
		pos++
		height++
	}

	if batcher, ok := m.backend.(BatchPusher); ok {
		if _, err := batcher.PushBatch(pending); err != nil {
			return 0, err
		}
	} else {
		for _, node := range pending {
			if _, err := m.backend.Push(node); err != nil {
				m.rollback(leafPos)
				return 0, err
			}
		}
	}
	m.observe()
	return leafPos, nil
}

// rollback best-effort discards a partially appended push so the backend is
// not left at a size that was never a valid MMR.
func (m *MerkleMountainRange) rollback(size uint64) {
	if ext, ok := m.backend.(ArrayLikeExt); ok {
		_ = ext.Truncate(size)
	}
}

// GetNodeHash returns the hash at pos, or nil if pos is out of range or the
// node was pruned away.
func (m *MerkleMountainRange) GetNodeHash(pos uint64) ([]byte, error) {
	if pos >= m.backend.Len() {
		return nil, nil
	}
	return m.backend.Get(pos)
}

// GetMerkleRoot bags the current peaks into a single root. The rightmost
// peak seeds the accumulator and each earlier peak p folds in as
// H(p || acc), scanning right to left. An empty MMR commits to the digest
// of the empty string.
func (m *MerkleMountainRange) GetMerkleRoot() ([]byte, error) {
	size := m.backend.Len()
	if size == 0 {
		return m.hasher.Hash(), nil
	}
	peaks := FindPeaks(size)
	if peaks == nil {
		return nil, errors.Wrapf(ErrInvalidMmrSize, "backend reports size %d", size)
	}
	peakHashes := make([][]byte, 0, len(peaks))
	for _, pos := range peaks {
		hash, err := m.backend.Get(pos)
		if err != nil {
			return nil, err
		}
		if hash == nil {
			return nil, errors.Wrapf(ErrHashNotFound, "peak position %d", pos)
		}
		peakHashes = append(peakHashes, hash)
	}
	return bagPeaks(m.hasher, peakHashes), nil
}

// FindLeafIndex performs a reverse lookup of a leaf hash. This delegates to
// the backend and is linear in the backend size unless the backend keeps an
// auxiliary index.
func (m *MerkleMountainRange) FindLeafIndex(hash []byte) (uint64, bool, error) {
	pos, found, err := m.backend.Position(hash)
	if err != nil || !found {
		return 0, false, err
	}
	if !IsLeaf(pos) {
		return 0, false, nil
	}
	return LeafIndex(pos), true, nil
}

// Truncate rewinds the MMR to newLen nodes for chain reorganisation. Only
// fully merged sizes are legal targets; rewinding below a pruned backend's
// base offset fails with ErrCannotRewindPastHorizon.
func (m *MerkleMountainRange) Truncate(newLen uint64) error {
	if newLen != 0 && FindPeaks(newLen) == nil {
		return errors.Wrapf(ErrInvalidMmrSize, "%d is not a fully merged size", newLen)
	}
	ext, ok := m.backend.(ArrayLikeExt)
	if !ok {
		return errors.Wrap(ErrNotSupported, "backend cannot truncate")
	}
	if err := ext.Truncate(newLen); err != nil {
		return err
	}
	m.observe()
	return nil
}

// PruneToPeaks irreversibly replaces the backend with a PrunedHashSet
// snapshotted at the current size, discarding all non-peak history.
func (m *MerkleMountainRange) PruneToPeaks() error {
	pruned, err := NewPrunedHashSet(m.backend)
	if err != nil {
		return err
	}
	m.backend = pruned
	if m.metrics != nil {
		m.metrics.BaseOffset(pruned.BaseOffset())
	}
	m.observe()
	return nil
}

func (m *MerkleMountainRange) observe() {
	if m.metrics == nil {
		return
	}
	size := m.backend.Len()
	m.metrics.Size(size)
	m.metrics.LeafCount(LeafCount(size))
	m.metrics.PeakCount(len(FindPeaks(size)))
}

// bagPeaks folds the peak hashes right to left.
func bagPeaks(hasher *Hasher, peaks [][]byte) []byte {
	acc := peaks[len(peaks)-1]
	for i := len(peaks) - 2; i >= 0; i-- {
		acc = hasher.Hash(peaks[i], acc)
	}
	return acc
}
