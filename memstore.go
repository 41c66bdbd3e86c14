// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

import (
	"bytes"
	"sync"

	"github.com/summitlabs/go-mmr/utils"
)

var (
	_ ArrayLike    = (*MemoryStore)(nil)
	_ ArrayLikeExt = (*MemoryStore)(nil)
	_ BatchPusher  = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty, fully retained in-memory backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// MemoryStore is a lock-protected growable array of hashes. It retains every
// node ever pushed and supports the full extended contract, including the
// Shift/PushFront pair used for sliding-window retention.
type MemoryStore struct {
	lock   sync.RWMutex
	hashes [][]byte
}

func (s *MemoryStore) Len() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return uint64(len(s.hashes))
}

func (s *MemoryStore) IsEmpty() bool {
	return s.Len() == 0
}

func (s *MemoryStore) Push(value []byte) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.hashes = append(s.hashes, utils.CopyBytes(value))
	return uint64(len(s.hashes) - 1), nil
}

// PushBatch appends the values under a single lock acquisition, returning the
// position of the first one.
func (s *MemoryStore) PushBatch(values [][]byte) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	first := uint64(len(s.hashes))
	for _, value := range values {
		s.hashes = append(s.hashes, utils.CopyBytes(value))
	}
	return first, nil
}

func (s *MemoryStore) Get(pos uint64) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if pos >= uint64(len(s.hashes)) {
		return nil, nil
	}
	return utils.CopyBytes(s.hashes[pos]), nil
}

func (s *MemoryStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.hashes = nil
	return nil
}

func (s *MemoryStore) Position(value []byte) (uint64, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for i := range s.hashes {
		if bytes.Equal(s.hashes[i], value) {
			return uint64(i), true, nil
		}
	}
	return 0, false, nil
}

func (s *MemoryStore) Truncate(newLen uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if newLen < uint64(len(s.hashes)) {
		s.hashes = s.hashes[:newLen]
	}
	return nil
}

func (s *MemoryStore) Shift(n uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if n > uint64(len(s.hashes)) {
		n = uint64(len(s.hashes))
	}
	s.hashes = s.hashes[n:]
	return nil
}

func (s *MemoryStore) PushFront(value []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.hashes = append([][]byte{utils.CopyBytes(value)}, s.hashes...)
	return nil
}

func (s *MemoryStore) ForEach(fn func(pos uint64, value []byte) error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for i := range s.hashes {
		if err := fn(uint64(i), s.hashes[i]); err != nil {
			return err
		}
	}
	return nil
}
