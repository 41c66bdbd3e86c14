// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

type (
	// ArrayLike is the backend contract for an MMR: an indexable, append-mostly
	// sequence of node hashes. Implementations that are shared across
	// goroutines must allow concurrent reads while keeping Push, Clear and the
	// ArrayLikeExt mutations mutually exclusive with all other operations.
	ArrayLike interface {
		// Len returns the number of stored positions, including pruned ones.
		Len() uint64

		IsEmpty() bool

		// Push appends a hash and returns its position.
		Push(value []byte) (uint64, error)

		// Get returns the hash at the given position, or nil (with a nil
		// error) if the position is out of range or was pruned away.
		Get(pos uint64) ([]byte, error)

		// Clear discards all contents, returning the backend to its empty state.
		Clear() error

		// Position performs a reverse lookup of a hash. It is linear in the
		// backend size unless the implementation keeps an auxiliary index.
		Position(value []byte) (uint64, bool, error)
	}

	// BatchPusher is an optional backend capability for appending several
	// values in one atomic unit. The MMR uses it to keep a leaf and the
	// parents it synthesizes from ever landing separately.
	BatchPusher interface {
		// PushBatch appends the values in order and returns the position of
		// the first one. Either every value lands or none does.
		PushBatch(values [][]byte) (uint64, error)
	}

	// ArrayLikeExt extends ArrayLike with the administrative operations needed
	// for chain reorganisation and sliding-window retention.
	ArrayLikeExt interface {
		// Truncate discards all positions at or beyond newLen.
		Truncate(newLen uint64) error

		// Shift drops the first n logical elements. Used by sliding-window
		// retention policies, which bound memory by age rather than by MMR
		// structure.
		Shift(n uint64) error

		// PushFront prepends a value, undoing a previous Shift.
		PushFront(value []byte) error

		// ForEach visits every available (position, hash) pair in position
		// order. Returning an error from the visitor stops the iteration.
		ForEach(fn func(pos uint64, value []byte) error) error
	}
)
