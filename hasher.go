// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

import (
	"hash"
	"sync"
)

// NewHasher wraps a standard library hash for use by the MMR. The wrapper is
// safe for concurrent use; callers that want to avoid lock contention should
// give each goroutine its own Hasher.
func NewHasher(hasher hash.Hash) *Hasher {
	return &Hasher{
		hasher: hasher,
	}
}

type Hasher struct {
	lock   sync.Mutex
	hasher hash.Hash
}

// Hash digests the concatenation of the inputs. With no inputs it returns the
// digest of the empty string, which doubles as the root of an empty MMR.
func (h *Hasher) Hash(inputs ...[]byte) []byte {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.hasher.Reset()
	for i := range inputs {
		h.hasher.Write(inputs[i])
	}
	return h.hasher.Sum(nil)
}

// Size returns the digest width in bytes.
func (h *Hasher) Size() int {
	return h.hasher.Size()
}
