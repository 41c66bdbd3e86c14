package leveldb

import (
	"testing"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/summitlabs/go-mmr/database"
	"github.com/summitlabs/go-mmr/database/dbtest"
)

func TestLevelDB(t *testing.T) {
	t.Run("StoreSuite", func(t *testing.T) {
		dbtest.TestStoreSuite(t, func() database.Store {
			db, err := leveldb.Open(storage.NewMemStorage(), nil)
			if err != nil {
				t.Fatal(err)
			}
			return &Database{
				db: db,
			}
		})
	})
}

func TestLevelDBWithNamespace(t *testing.T) {
	t.Run("StoreSuite", func(t *testing.T) {
		dbtest.TestStoreSuite(t, func() database.Store {
			db, err := leveldb.Open(storage.NewMemStorage(), nil)
			if err != nil {
				t.Fatal(err)
			}

			return WrapWithNamespace(&Database{
				db: db,
			}, "test")
		})
	})
}
