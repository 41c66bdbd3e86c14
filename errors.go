// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

import (
	"github.com/pkg/errors"
)

var (
	// ErrHashNotFound is returned when a node position has no hash available,
	// either because it is out of range or because it was pruned away.
	ErrHashNotFound = errors.New("no hash stored at position")

	// ErrNonLeafNode is returned when a proof is requested for a position that
	// holds an interior node rather than a leaf.
	ErrNonLeafNode = errors.New("inclusion proofs can only be constructed for leaf nodes")

	// ErrInvalidMmrSize is returned when a proof's size, path and peak set are
	// mutually inconsistent, or when a size does not describe a fully merged MMR.
	ErrInvalidMmrSize = errors.New("invalid mmr size")

	// ErrRootMismatch is returned when a proof does not verify against the
	// supplied root.
	ErrRootMismatch = errors.New("merkle root mismatch")

	// ErrCannotRewindPastHorizon is returned when a truncate or rewind targets
	// state that was discarded by pruning.
	ErrCannotRewindPastHorizon = errors.New("cannot rewind past the pruning horizon")

	// ErrNotSupported is returned by backends that do not implement an
	// extended operation.
	ErrNotSupported = errors.New("operation not supported by this backend")

	// ErrCheckpointNotFound is returned when a stored checkpoint record is
	// missing or cannot be decoded.
	ErrCheckpointNotFound = errors.New("checkpoint not found in store")
)
