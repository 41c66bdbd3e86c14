package mmr

import (
	"hash"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// LeafProof pairs a proof with the leaf it claims membership for.
type LeafProof struct {
	Proof     *MerkleProof
	LeafHash  []byte
	LeafIndex uint64
}

// NewBatchVerifier builds a verifier that checks many proofs concurrently on
// a bounded worker pool. newHash must return a fresh hash instance on every
// call; each worker gets its own.
func NewBatchVerifier(newHash func() hash.Hash, workers int) (*BatchVerifier, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &BatchVerifier{
		pool:    pool,
		newHash: newHash,
	}, nil
}

type BatchVerifier struct {
	pool    *ants.Pool
	newHash func() hash.Hash
}

// VerifyAll checks every proof against the same root and returns the first
// verification error encountered, or nil if all proofs hold.
func (v *BatchVerifier) VerifyAll(root []byte, proofs []LeafProof) error {
	var (
		wg       sync.WaitGroup
		errLock  sync.Mutex
		firstErr error
	)
	record := func(err error) {
		errLock.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errLock.Unlock()
	}

	for i := range proofs {
		p := proofs[i]
		wg.Add(1)
		if err := v.pool.Submit(func() {
			defer wg.Done()
			hasher := NewHasher(v.newHash())
			if err := p.Proof.VerifyLeaf(hasher, root, p.LeafHash, p.LeafIndex); err != nil {
				record(err)
			}
		}); err != nil {
			wg.Done()
			record(err)
		}
	}
	wg.Wait()
	return firstErr
}

// Release returns the worker pool's resources. The verifier must not be used
// afterwards.
func (v *BatchVerifier) Release() {
	v.pool.Release()
}
