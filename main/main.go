package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	mmr "github.com/summitlabs/go-mmr"
	"github.com/summitlabs/go-mmr/database"
	wrappedLevelDB "github.com/summitlabs/go-mmr/database/leveldb"
	"github.com/summitlabs/go-mmr/database/memory"
	wrappedRedis "github.com/summitlabs/go-mmr/database/redis"
)

const leafCount = 100

type demoEnv struct {
	tag   string
	store func() (database.Store, error)
}

func prepareEnv() []demoEnv {
	initLevelDB := func() (database.Store, error) {
		db, err := leveldb.Open(storage.NewMemStorage(), nil)
		if err != nil {
			return nil, err
		}
		return wrappedLevelDB.WrapWithNamespace(wrappedLevelDB.NewFromExistLevelDB(db), "demo"), nil
	}
	initRedisDB := func() (database.Store, error) {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(&redis.Options{
			Addr: mr.Addr(),
		})
		return wrappedRedis.WrapWithNamespace(wrappedRedis.NewFromExistRedisClient(client), "demo"), nil
	}
	initMemoryDB := func() (database.Store, error) {
		return memory.NewMemoryDB(), nil
	}

	return []demoEnv{
		{tag: "memoryDB", store: initMemoryDB},
		{tag: "levelDB", store: initLevelDB},
		{tag: "redis", store: initRedisDB},
	}
}

func run(env demoEnv) error {
	store, err := env.store()
	if err != nil {
		return err
	}
	defer store.Close()

	hasher := mmr.NewHasher(sha256.New())
	mutable := mmr.NewMutableMmr(hasher, mmr.NewMemoryStore())
	tracker, err := mmr.NewChangeTracker(mutable, store)
	if err != nil {
		return err
	}

	leaves := make([][]byte, leafCount)
	for i := range leaves {
		leaves[i] = hasher.Hash([]byte(fmt.Sprintf("utxo-%d", i)))
		if _, err = tracker.Push(leaves[i]); err != nil {
			return err
		}
		if (i+1)%10 == 0 {
			if err = tracker.Commit(context.Background()); err != nil {
				return err
			}
		}
	}

	root, err := mutable.GetMerkleRoot()
	if err != nil {
		return err
	}
	log.Printf("[%s] %d leaves, %d nodes, %d checkpoints, root %x",
		env.tag, mutable.LeafCount(), mutable.Len(), tracker.CheckpointCount(), root)

	proofs := make([]mmr.LeafProof, len(leaves))
	for i, leaf := range leaves {
		proof, err := mmr.ForLeafNode(mutable.Mmr(), uint64(i))
		if err != nil {
			return err
		}
		proofs[i] = mmr.LeafProof{Proof: proof, LeafHash: leaf, LeafIndex: uint64(i)}
	}
	verifier, err := mmr.NewBatchVerifier(sha256.New, 8)
	if err != nil {
		return err
	}
	defer verifier.Release()
	if err = verifier.VerifyAll(root, proofs); err != nil {
		return err
	}
	log.Printf("[%s] verified %d membership proofs", env.tag, len(proofs))

	// a fresh instance replays the committed checkpoints to the same root
	restoredMmr := mmr.NewMutableMmr(mmr.NewHasher(sha256.New()), mmr.NewMemoryStore())
	restored, err := mmr.NewChangeTracker(restoredMmr, store)
	if err != nil {
		return err
	}
	if err = restored.LoadFromStore(); err != nil {
		return err
	}
	replayed, err := restoredMmr.GetMerkleRoot()
	if err != nil {
		return err
	}
	log.Printf("[%s] replayed root %x", env.tag, replayed)
	if string(replayed) != string(root) {
		return fmt.Errorf("replayed root diverged for %s", env.tag)
	}
	return nil
}

func main() {
	for _, env := range prepareEnv() {
		if err := run(env); err != nil {
			log.Fatalf("[%s] %v", env.tag, err)
		}
	}
}
