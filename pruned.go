// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

import (
	"bytes"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/summitlabs/go-mmr/utils"
)

var (
	_ ArrayLike    = (*PrunedHashSet)(nil)
	_ ArrayLikeExt = (*PrunedHashSet)(nil)
	_ BatchPusher  = (*PrunedHashSet)(nil)
)

// PrunedHashSet is a backend whose history below a base offset has been
// discarded, keeping only the peak hashes of the MMR at the moment of
// pruning. Peak hashes are the only historical values ever needed to merge
// future subtrees or bag a root, so the MMR keeps growing and producing
// correct roots while the bulk of its history is gone.
//
// Get for a discarded position returns nil without an error; the absence is
// permanent rather than a failure.
type PrunedHashSet struct {
	lock          sync.RWMutex
	baseOffset    uint64
	peakPositions []uint64
	peakHashes    [][]byte
	// hashes stores every node pushed after the prune, logically offset by
	// baseOffset.
	hashes [][]byte
}

// NewPrunedHashSet snapshots the peaks of the given backend at its current
// size and returns a backend holding only those peaks. The source backend is
// left untouched.
func NewPrunedHashSet(backend ArrayLike) (*PrunedHashSet, error) {
	size := backend.Len()
	peaks := FindPeaks(size)
	peakHashes := make([][]byte, 0, len(peaks))
	for _, pos := range peaks {
		hash, err := backend.Get(pos)
		if err != nil {
			return nil, err
		}
		if hash == nil {
			return nil, errors.Wrapf(ErrHashNotFound, "peak position %d", pos)
		}
		peakHashes = append(peakHashes, utils.CopyBytes(hash))
	}
	return &PrunedHashSet{
		baseOffset:    size,
		peakPositions: peaks,
		peakHashes:    peakHashes,
	}, nil
}

// BaseOffset returns the pruning horizon: the MMR size at which the peaks
// were snapshotted.
func (s *PrunedHashSet) BaseOffset() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.baseOffset
}

func (s *PrunedHashSet) Len() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.baseOffset + uint64(len(s.hashes))
}

func (s *PrunedHashSet) IsEmpty() bool {
	return s.Len() == 0
}

func (s *PrunedHashSet) Push(value []byte) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.hashes = append(s.hashes, utils.CopyBytes(value))
	return s.baseOffset + uint64(len(s.hashes)-1), nil
}

// PushBatch appends the values under a single lock acquisition, returning the
// position of the first one.
func (s *PrunedHashSet) PushBatch(values [][]byte) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	first := s.baseOffset + uint64(len(s.hashes))
	for _, value := range values {
		s.hashes = append(s.hashes, utils.CopyBytes(value))
	}
	return first, nil
}

func (s *PrunedHashSet) Get(pos uint64) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if pos < s.baseOffset {
		i := sort.Search(len(s.peakPositions), func(i int) bool {
			return s.peakPositions[i] >= pos
		})
		if i < len(s.peakPositions) && s.peakPositions[i] == pos {
			return utils.CopyBytes(s.peakHashes[i]), nil
		}
		return nil, nil
	}
	if pos-s.baseOffset >= uint64(len(s.hashes)) {
		return nil, nil
	}
	return utils.CopyBytes(s.hashes[pos-s.baseOffset]), nil
}

// Clear resets the backend to a completely empty state, dropping the peak
// snapshot along with everything pushed since.
func (s *PrunedHashSet) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.baseOffset = 0
	s.peakPositions = nil
	s.peakHashes = nil
	s.hashes = nil
	return nil
}

func (s *PrunedHashSet) Position(value []byte) (uint64, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for i := range s.peakHashes {
		if bytes.Equal(s.peakHashes[i], value) {
			return s.peakPositions[i], true, nil
		}
	}
	for i := range s.hashes {
		if bytes.Equal(s.hashes[i], value) {
			return s.baseOffset + uint64(i), true, nil
		}
	}
	return 0, false, nil
}

func (s *PrunedHashSet) Truncate(newLen uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if newLen < s.baseOffset {
		return errors.Wrapf(ErrCannotRewindPastHorizon, "truncate to %d, base offset %d", newLen, s.baseOffset)
	}
	if newLen-s.baseOffset < uint64(len(s.hashes)) {
		s.hashes = s.hashes[:newLen-s.baseOffset]
	}
	return nil
}

// Shift is meaningless once history has been pruned structurally.
func (s *PrunedHashSet) Shift(n uint64) error {
	return errors.Wrap(ErrNotSupported, "shift on pruned backend")
}

func (s *PrunedHashSet) PushFront(value []byte) error {
	return errors.Wrap(ErrNotSupported, "push_front on pruned backend")
}

// ForEach visits the retained peaks followed by every post-prune node.
func (s *PrunedHashSet) ForEach(fn func(pos uint64, value []byte) error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for i := range s.peakPositions {
		if err := fn(s.peakPositions[i], s.peakHashes[i]); err != nil {
			return err
		}
	}
	for i := range s.hashes {
		if err := fn(s.baseOffset+uint64(i), s.hashes[i]); err != nil {
			return err
		}
	}
	return nil
}
