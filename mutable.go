// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
)

// NewMutableMmr wraps a plain MMR with a leaf-deletion overlay. Nodes are
// never physically removed; deletion marks a leaf index as spent, and the
// root commits to the deletion set.
func NewMutableMmr(hasher *Hasher, backend ArrayLike, opts ...Option) *MutableMmr {
	return &MutableMmr{
		mmr:     NewMerkleMountainRange(hasher, backend, opts...),
		deleted: make(map[uint64]struct{}),
	}
}

type MutableMmr struct {
	lock    sync.RWMutex
	mmr     *MerkleMountainRange
	deleted map[uint64]struct{}
}

// Mmr exposes the underlying append-only MMR.
func (m *MutableMmr) Mmr() *MerkleMountainRange {
	return m.mmr
}

func (m *MutableMmr) Push(hash []byte) (uint64, error) {
	return m.mmr.Push(hash)
}

func (m *MutableMmr) Len() uint64 {
	return m.mmr.Len()
}

func (m *MutableMmr) IsEmpty() bool {
	return m.mmr.IsEmpty()
}

func (m *MutableMmr) LeafCount() uint64 {
	return m.mmr.LeafCount()
}

func (m *MutableMmr) GetNodeHash(pos uint64) ([]byte, error) {
	return m.mmr.GetNodeHash(pos)
}

// Delete marks the leaf at leafIndex as deleted. It returns false if the
// index is out of range or already deleted.
func (m *MutableMmr) Delete(leafIndex uint64) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	if leafIndex >= m.mmr.LeafCount() {
		return false
	}
	if _, ok := m.deleted[leafIndex]; ok {
		return false
	}
	m.deleted[leafIndex] = struct{}{}
	return true
}

// IsDeleted reports whether the leaf at leafIndex has been marked deleted.
func (m *MutableMmr) IsDeleted(leafIndex uint64) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.deleted[leafIndex]
	return ok
}

// DeletedSet returns the deleted leaf indices in ascending order.
func (m *MutableMmr) DeletedSet() []uint64 {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.deletedSetLocked()
}

func (m *MutableMmr) deletedSetLocked() []uint64 {
	if len(m.deleted) == 0 {
		return nil
	}
	set := make([]uint64, 0, len(m.deleted))
	for leafIndex := range m.deleted {
		set = append(set, leafIndex)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// GetMerkleRoot returns the bagged root of the underlying MMR when nothing
// has been deleted. With deletions present the root additionally commits to
// the deletion set as H(bagged_root || encode(sorted deleted leaf indices)).
func (m *MutableMmr) GetMerkleRoot() ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	root, err := m.mmr.GetMerkleRoot()
	if err != nil {
		return nil, err
	}
	set := m.deletedSetLocked()
	if set == nil {
		return root, nil
	}
	encoded, err := rlp.EncodeToBytes(set)
	if err != nil {
		return nil, err
	}
	return m.mmr.hasher.Hash(root, encoded), nil
}

// Clear resets both the node store and the deletion set.
func (m *MutableMmr) Clear() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.mmr.backend.Clear(); err != nil {
		return err
	}
	m.deleted = make(map[uint64]struct{})
	return nil
}
