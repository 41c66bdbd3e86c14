// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

import (
	"bytes"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/summitlabs/go-mmr/database"
	"github.com/summitlabs/go-mmr/utils"
)

var (
	_ ArrayLike    = (*DBStore)(nil)
	_ ArrayLikeExt = (*DBStore)(nil)
	_ BatchPusher  = (*DBStore)(nil)
)

var (
	dbNodeKeyPrefix = []byte("mmr-node-")
	dbSizeKey       = []byte("mmr-size")
)

const defaultNodeCacheSize = 4096

func nodeKey(pos uint64) []byte {
	return append(dbNodeKeyPrefix[:len(dbNodeKeyPrefix):len(dbNodeKeyPrefix)], utils.Uint64ToBytes(pos)...)
}

// NewDBStore opens a durable backend on top of the given key-value store.
// Nodes are stored under big-endian position keys next to a size record, so
// an existing store resumes exactly where it left off. Reads go through an
// LRU cache; cacheSize <= 0 selects a default.
func NewDBStore(db database.Store, cacheSize int) (*DBStore, error) {
	if cacheSize <= 0 {
		cacheSize = defaultNodeCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	store := &DBStore{
		db:    db,
		cache: cache,
	}
	buf, err := db.Get(dbSizeKey)
	if err != nil && !errors.Is(err, database.ErrDatabaseNotFound) {
		return nil, err
	}
	if buf != nil {
		store.size = utils.BytesToUint64(buf)
	}
	return store, nil
}

// DBStore is an ArrayLike backed by a durable key-value store. Every push is
// committed atomically together with the updated size record, so a crash can
// never leave the node sequence and the size out of step.
type DBStore struct {
	lock  sync.RWMutex
	db    database.Store
	cache *lru.Cache
	size  uint64
}

func (s *DBStore) Len() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.size
}

func (s *DBStore) IsEmpty() bool {
	return s.Len() == 0
}

func (s *DBStore) Push(value []byte) (uint64, error) {
	return s.PushBatch([][]byte{value})
}

// PushBatch appends the values in a single batch, together with the updated
// size record, so either the whole group lands durably or none of it does.
func (s *DBStore) PushBatch(values [][]byte) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	first := s.size
	batch := s.db.NewBatch()
	for i, value := range values {
		if err := batch.Set(nodeKey(first+uint64(i)), value); err != nil {
			return 0, err
		}
	}
	if err := batch.Set(dbSizeKey, utils.Uint64ToBytes(first+uint64(len(values)))); err != nil {
		return 0, err
	}
	if err := batch.Write(); err != nil {
		return 0, err
	}
	s.size = first + uint64(len(values))
	for i, value := range values {
		s.cache.Add(first+uint64(i), utils.CopyBytes(value))
	}
	return first, nil
}

func (s *DBStore) Get(pos uint64) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if pos >= s.size {
		return nil, nil
	}
	if cached, ok := s.cache.Get(pos); ok {
		return utils.CopyBytes(cached.([]byte)), nil
	}
	value, err := s.db.Get(nodeKey(pos))
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return nil, errors.Wrapf(ErrHashNotFound, "store missing node %d below size %d", pos, s.size)
		}
		return nil, err
	}
	s.cache.Add(pos, value)
	return utils.CopyBytes(value), nil
}

func (s *DBStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	batch := s.db.NewBatch()
	for pos := uint64(0); pos < s.size; pos++ {
		if err := batch.Delete(nodeKey(pos)); err != nil {
			return err
		}
	}
	if err := batch.Delete(dbSizeKey); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	s.size = 0
	s.cache.Purge()
	return nil
}

// Position scans the whole store; callers needing frequent reverse lookups
// should maintain their own index.
func (s *DBStore) Position(value []byte) (uint64, bool, error) {
	size := s.Len()
	for pos := uint64(0); pos < size; pos++ {
		stored, err := s.Get(pos)
		if err != nil {
			return 0, false, err
		}
		if bytes.Equal(stored, value) {
			return pos, true, nil
		}
	}
	return 0, false, nil
}

func (s *DBStore) Truncate(newLen uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if newLen >= s.size {
		return nil
	}
	batch := s.db.NewBatch()
	for pos := newLen; pos < s.size; pos++ {
		if err := batch.Delete(nodeKey(pos)); err != nil {
			return err
		}
	}
	if err := batch.Set(dbSizeKey, utils.Uint64ToBytes(newLen)); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	for pos := newLen; pos < s.size; pos++ {
		s.cache.Remove(pos)
	}
	s.size = newLen
	return nil
}

// Shift would invalidate the position keying; sliding-window retention is an
// in-memory concern.
func (s *DBStore) Shift(n uint64) error {
	return errors.Wrap(ErrNotSupported, "shift on durable backend")
}

func (s *DBStore) PushFront(value []byte) error {
	return errors.Wrap(ErrNotSupported, "push_front on durable backend")
}

func (s *DBStore) ForEach(fn func(pos uint64, value []byte) error) error {
	size := s.Len()
	for pos := uint64(0); pos < size; pos++ {
		value, err := s.Get(pos)
		if err != nil {
			return err
		}
		if err := fn(pos, value); err != nil {
			return err
		}
	}
	return nil
}
