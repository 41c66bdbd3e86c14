// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package redis

import (
	"bytes"
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	stdErrors "github.com/pkg/errors"

	"github.com/summitlabs/go-mmr/database"
)

var (
	_ database.Store   = (*Database)(nil)
	_ database.Batcher = (*batch)(nil)
)

// Config carries the connection settings for a single-node or cluster
// deployment. A non-empty ClusterAddr selects cluster mode.
type Config struct {
	Addr        string
	ClusterAddr []string

	Username string
	Password string

	PoolSize     int
	MinIdleConns int
	MaxRetries   int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// New connects to redis and returns a wrapped Store. The connection is
// verified with a ping bounded by the dial timeout.
func New(config *Config, opts ...Option) (*Database, error) {
	var client RedisClient
	if len(config.ClusterAddr) > 0 {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        config.ClusterAddr,
			Username:     config.Username,
			Password:     config.Password,
			PoolSize:     config.PoolSize,
			MinIdleConns: config.MinIdleConns,
			MaxRetries:   config.MaxRetries,
			DialTimeout:  config.DialTimeout,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         config.Addr,
			Username:     config.Username,
			Password:     config.Password,
			PoolSize:     config.PoolSize,
			MinIdleConns: config.MinIdleConns,
			MaxRetries:   config.MaxRetries,
			DialTimeout:  config.DialTimeout,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	db := &Database{
		db: client,
	}
	for _, opt := range opts {
		opt.Apply(db)
	}
	return db, nil
}

// NewFromExistRedisClient wraps an already connected client.
func NewFromExistRedisClient(client RedisClient, opts ...Option) *Database {
	db := &Database{
		db: client,
	}
	for _, opt := range opts {
		opt.Apply(db)
	}
	return db
}

// WrapWithNamespace returns a view of db whose keys carry the given prefix.
func WrapWithNamespace(db *Database, namespace string) *Database {
	return &Database{
		namespace: []byte(namespace),
		db:        db.db,
	}
}

type Database struct {
	namespace []byte
	db        RedisClient
}

// wrapKey returns a wrapper key with namespace.
func wrapKey(namespace, key []byte) string {
	if len(namespace) > 0 {
		return string(bytes.Join([][]byte{namespace, key}, []byte(":")))
	}
	return string(key)
}

// Close closes all connections to the redis server.
func (db *Database) Close() error {
	return db.db.Close()
}

// Has retrieves if a key is present in the key-value store.
func (db *Database) Has(key []byte) (bool, error) {
	dat, err := db.db.Exists(context.Background(), wrapKey(db.namespace, key)).Result()
	if err != nil {
		return false, err
	}
	return dat > 0, nil
}

// Get retrieves the given key if it's present in the key-value store.
func (db *Database) Get(key []byte) ([]byte, error) {
	dat, err := db.db.Get(context.Background(), wrapKey(db.namespace, key)).Result()
	if err != nil {
		if stdErrors.Is(err, redis.Nil) {
			return nil, database.ErrDatabaseNotFound
		}
		return nil, err
	}
	return []byte(dat), nil
}

// Set inserts the given value into the key-value store.
func (db *Database) Set(key []byte, value []byte) error {
	return db.db.Set(context.Background(), wrapKey(db.namespace, key), value, 0).Err()
}

// Delete removes the key from the key-value store.
func (db *Database) Delete(key []byte) error {
	return db.db.Del(context.Background(), wrapKey(db.namespace, key)).Err()
}

// NewBatch creates a write-only key-value store that buffers changes until a
// final write is called. Batches use a transactional pipeline so the whole
// batch is applied atomically.
func (db *Database) NewBatch() database.Batcher {
	return &batch{
		db:        db.db,
		namespace: db.namespace,
		b:         db.db.TxPipeline(),
	}
}

// batch is a write-only redis pipeline that commits changes to its host
// database when Write is called. A batch cannot be used concurrently.
type batch struct {
	namespace []byte
	db        RedisClient
	b         redis.Pipeliner
	size      int
}

// Set inserts the given value into the batch for later committing.
func (b *batch) Set(key, value []byte) error {
	b.b.Set(context.Background(), wrapKey(b.namespace, key), value, 0)
	b.size += len(key) + len(value)
	return nil
}

// Delete inserts a key removal into the batch for later committing.
func (b *batch) Delete(key []byte) error {
	b.b.Del(context.Background(), wrapKey(b.namespace, key))
	b.size += len(key)
	return nil
}

// Write flushes any accumulated data to the server.
func (b *batch) Write() error {
	if b.size == 0 {
		return nil
	}
	if _, err := b.b.Exec(context.Background()); err != nil {
		return err
	}
	b.size = 0
	return nil
}

// ValueSize retrieves the amount of data queued up for writing.
func (b *batch) ValueSize() int {
	return b.size
}

// Reset resets the batch for reuse.
func (b *batch) Reset() {
	b.b.Discard()
	b.size = 0
}
