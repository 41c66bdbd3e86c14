// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package mmr

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pbnjay/memory"
	"github.com/pkg/errors"

	"github.com/summitlabs/go-mmr/database"
	"github.com/summitlabs/go-mmr/metrics"
	"github.com/summitlabs/go-mmr/utils"
)

var (
	checkpointCountKey  = []byte("mmr-checkpoint-count")
	checkpointKeyPrefix = []byte("mmr-checkpoint-")
)

// commitRetryDelay spaces out retries of a failed checkpoint write.
const commitRetryDelay = 10 * time.Millisecond

func checkpointKey(index uint64) []byte {
	return append(checkpointKeyPrefix[:len(checkpointKeyPrefix):len(checkpointKeyPrefix)], utils.Uint64ToBytes(index)...)
}

// Checkpoint is an ordered batch of MMR mutations awaiting durable commit:
// the leaf hashes added and the leaf indices deleted since the previous
// checkpoint. The encoding round-trips exactly through DecodeCheckpoint.
type Checkpoint struct {
	Additions [][]byte
	Deletions []uint64
}

func (c *Checkpoint) IsEmpty() bool {
	return len(c.Additions) == 0 && len(c.Deletions) == 0
}

func (c *Checkpoint) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(c)
}

func DecodeCheckpoint(buf []byte) (*Checkpoint, error) {
	checkpoint := &Checkpoint{}
	if err := rlp.DecodeBytes(buf, checkpoint); err != nil {
		return nil, err
	}
	return checkpoint, nil
}

// TrackerOption is a function that configures a ChangeTracker.
type TrackerOption func(*ChangeTracker)

// WithCommitRetries sets how many times a failed checkpoint write is retried
// before the error is surfaced. The live MMR stays usable either way.
func WithCommitRetries(retries int) TrackerOption {
	return func(t *ChangeTracker) {
		t.commitRetries = retries
	}
}

// WithCommitTimeout bounds the total time Commit may spend against the
// durable store, retries included.
func WithCommitTimeout(timeout time.Duration) TrackerOption {
	return func(t *ChangeTracker) {
		t.commitTimeout = timeout
	}
}

// WithPruneThreshold converts the live backend to a PrunedHashSet after a
// commit once the retained node hashes exceed the given byte count. Zero
// disables automatic pruning.
func WithPruneThreshold(thresholdBytes uint64) TrackerOption {
	return func(t *ChangeTracker) {
		t.pruneThreshold = thresholdBytes
	}
}

// WithAutoPruneThreshold derives the prune threshold from the machine's
// physical memory.
func WithAutoPruneThreshold() TrackerOption {
	return func(t *ChangeTracker) {
		t.pruneThreshold = memory.TotalMemory() / 64
	}
}

// EnableTrackerMetrics publishes checkpoint gauges alongside the MMR gauges.
func EnableTrackerMetrics(m metrics.Metrics) TrackerOption {
	return func(t *ChangeTracker) {
		t.metrics = m
	}
}

// ChangeTracker wraps a mutable MMR and records every push and delete since
// the last durable commit. Commit writes the change set to the store as a
// numbered checkpoint in one atomic batch; the full checkpoint sequence
// replays to a bit-identical root after restart.
type ChangeTracker struct {
	mmr   *MutableMmr
	store database.Store

	pendingAdditions [][]byte
	pendingDeletions []uint64
	checkpointCount  uint64

	commitRetries  int
	commitTimeout  time.Duration
	pruneThreshold uint64
	metrics        metrics.Metrics
}

// NewChangeTracker couples a mutable MMR with a durable checkpoint store.
// The store's existing checkpoint count is picked up, but the MMR state is
// not rebuilt; call LoadFromStore to replay.
func NewChangeTracker(mmr *MutableMmr, store database.Store, opts ...TrackerOption) (*ChangeTracker, error) {
	tracker := &ChangeTracker{
		mmr:   mmr,
		store: store,
	}
	for _, opt := range opts {
		opt(tracker)
	}
	buf, err := store.Get(checkpointCountKey)
	if err != nil && !errors.Is(err, database.ErrDatabaseNotFound) {
		return nil, err
	}
	if buf != nil {
		tracker.checkpointCount = utils.BytesToUint64(buf)
	}
	return tracker, nil
}

// Mmr exposes the tracked MMR for queries and proof construction.
func (t *ChangeTracker) Mmr() *MutableMmr {
	return t.mmr
}

// Push appends a leaf and records it in the pending change set.
func (t *ChangeTracker) Push(hash []byte) (uint64, error) {
	pos, err := t.mmr.Push(hash)
	if err != nil {
		return 0, err
	}
	t.pendingAdditions = append(t.pendingAdditions, utils.CopyBytes(hash))
	return pos, nil
}

// Delete marks a leaf deleted and records it in the pending change set.
func (t *ChangeTracker) Delete(leafIndex uint64) bool {
	if !t.mmr.Delete(leafIndex) {
		return false
	}
	t.pendingDeletions = append(t.pendingDeletions, leafIndex)
	return true
}

// GetMerkleRoot returns the root of the tracked MMR, pending changes
// included.
func (t *ChangeTracker) GetMerkleRoot() ([]byte, error) {
	return t.mmr.GetMerkleRoot()
}

// CheckpointCount returns the number of durably committed checkpoints.
func (t *ChangeTracker) CheckpointCount() uint64 {
	return t.checkpointCount
}

// PendingChanges returns a snapshot of the not-yet-committed change set.
func (t *ChangeTracker) PendingChanges() *Checkpoint {
	return &Checkpoint{
		Additions: utils.CopyBytesSlice(t.pendingAdditions),
		Deletions: append([]uint64(nil), t.pendingDeletions...),
	}
}

// Commit durably writes the pending change set as the next checkpoint. The
// checkpoint record and the updated count land in a single atomic batch;
// the pending set is cleared only after the write is confirmed, so a failed
// commit leaves the live MMR in its last-good, still-usable state. An empty
// pending set commits nothing.
func (t *ChangeTracker) Commit(ctx context.Context) error {
	if len(t.pendingAdditions) == 0 && len(t.pendingDeletions) == 0 {
		return nil
	}
	if t.commitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.commitTimeout)
		defer cancel()
	}

	checkpoint := &Checkpoint{
		Additions: t.pendingAdditions,
		Deletions: t.pendingDeletions,
	}
	buf, err := checkpoint.Bytes()
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = t.writeCheckpoint(buf); err == nil {
			break
		}
		if attempt >= t.commitRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(commitRetryDelay):
		}
	}

	t.checkpointCount++
	t.pendingAdditions = nil
	t.pendingDeletions = nil
	if t.metrics != nil {
		t.metrics.CheckpointCount(int(t.checkpointCount))
		t.metrics.ChangeSize(len(checkpoint.Additions))
	}
	return t.maybePrune()
}

func (t *ChangeTracker) writeCheckpoint(buf []byte) error {
	batch := t.store.NewBatch()
	if err := batch.Set(checkpointKey(t.checkpointCount), buf); err != nil {
		return err
	}
	if err := batch.Set(checkpointCountKey, utils.Uint64ToBytes(t.checkpointCount+1)); err != nil {
		return err
	}
	return batch.Write()
}

func (t *ChangeTracker) maybePrune() error {
	if t.pruneThreshold == 0 {
		return nil
	}
	retained := t.mmr.Len() * uint64(t.mmr.mmr.hasher.Size())
	if retained <= t.pruneThreshold {
		return nil
	}
	return t.mmr.mmr.PruneToPeaks()
}

// GetCheckpoint returns the committed checkpoint at the given index.
func (t *ChangeTracker) GetCheckpoint(index uint64) (*Checkpoint, error) {
	buf, err := t.store.Get(checkpointKey(index))
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return nil, errors.Wrapf(ErrCheckpointNotFound, "index %d", index)
		}
		return nil, err
	}
	checkpoint, err := DecodeCheckpoint(buf)
	if err != nil {
		return nil, errors.Wrapf(ErrCheckpointNotFound, "index %d: %v", index, err)
	}
	return checkpoint, nil
}

// LoadFromStore rebuilds the MMR by replaying every committed checkpoint
// from an empty backend. The resulting root is bit-identical to the one the
// producing instance computed.
func (t *ChangeTracker) LoadFromStore() error {
	buf, err := t.store.Get(checkpointCountKey)
	if err != nil && !errors.Is(err, database.ErrDatabaseNotFound) {
		return err
	}
	count := uint64(0)
	if buf != nil {
		count = utils.BytesToUint64(buf)
	}
	t.checkpointCount = count
	return t.replay(count)
}

// Reset discards the pending change set and rebuilds the MMR from the
// committed checkpoints.
func (t *ChangeTracker) Reset() error {
	return t.replay(t.checkpointCount)
}

// RewindToCheckpoint rewinds to the state after the first n checkpoints,
// discarding later checkpoints from the store. Used for chain
// reorganisation.
func (t *ChangeTracker) RewindToCheckpoint(n uint64) error {
	if n > t.checkpointCount {
		return errors.Wrapf(ErrCheckpointNotFound, "rewind to %d, only %d committed", n, t.checkpointCount)
	}
	batch := t.store.NewBatch()
	for i := n; i < t.checkpointCount; i++ {
		if err := batch.Delete(checkpointKey(i)); err != nil {
			return err
		}
	}
	if err := batch.Set(checkpointCountKey, utils.Uint64ToBytes(n)); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	t.checkpointCount = n
	if t.metrics != nil {
		t.metrics.CheckpointCount(int(n))
	}
	return t.replay(n)
}

// replay rebuilds the MMR from an empty backend through the first n
// committed checkpoints and drops the pending change set.
func (t *ChangeTracker) replay(n uint64) error {
	if err := t.mmr.Clear(); err != nil {
		return err
	}
	t.pendingAdditions = nil
	t.pendingDeletions = nil
	for i := uint64(0); i < n; i++ {
		checkpoint, err := t.GetCheckpoint(i)
		if err != nil {
			return err
		}
		for _, hash := range checkpoint.Additions {
			if _, err := t.mmr.Push(hash); err != nil {
				return err
			}
		}
		for _, leafIndex := range checkpoint.Deletions {
			t.mmr.Delete(leafIndex)
		}
	}
	return nil
}
