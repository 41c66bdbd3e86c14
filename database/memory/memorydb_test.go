package memory

import (
	"testing"

	"github.com/summitlabs/go-mmr/database"
	"github.com/summitlabs/go-mmr/database/dbtest"
)

func TestMemoryDB(t *testing.T) {
	t.Run("StoreSuite", func(t *testing.T) {
		dbtest.TestStoreSuite(t, func() database.Store {
			return NewMemoryDB()
		})
	})
}
