// Copyright 2023 summitlabs. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/summitlabs/go-mmr/database"
	"github.com/summitlabs/go-mmr/database/dbtest"
)

func TestRedis(t *testing.T) {
	t.Run("StoreSuite", func(t *testing.T) {
		dbtest.TestStoreSuite(t, func() database.Store {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatal(err)
			}
			client := redis.NewClient(&redis.Options{
				Addr: mr.Addr(),
			})
			return &Database{
				db: client,
			}
		})
	})
}

func TestRedisWithNamespace(t *testing.T) {
	t.Run("StoreSuite", func(t *testing.T) {
		dbtest.TestStoreSuite(t, func() database.Store {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatal(err)
			}
			client := redis.NewClient(&redis.Options{
				Addr: mr.Addr(),
			})

			return WrapWithNamespace(&Database{
				db: client,
			}, "test")
		})
	})
}
