package dbtest

import (
	"bytes"
	"testing"

	"github.com/summitlabs/go-mmr/database"
)

// TestStoreSuite runs a conformance suite against a Store implementation.
func TestStoreSuite(t *testing.T, New func() database.Store) {
	t.Run("KeyValueOperations", func(t *testing.T) {
		db := New()
		defer db.Close()

		key := []byte("foo")

		if got, err := db.Has(key); err != nil {
			t.Error(err)
		} else if got {
			t.Errorf("wrong value: %t", got)
		}

		value := []byte("hello world")
		if err := db.Set(key, value); err != nil {
			t.Error(err)
		}

		if got, err := db.Has(key); err != nil {
			t.Error(err)
		} else if !got {
			t.Errorf("wrong value: %t", got)
		}

		if got, err := db.Get(key); err != nil {
			t.Error(err)
		} else if !bytes.Equal(got, value) {
			t.Errorf("wrong value: %q", got)
		}

		if err := db.Delete(key); err != nil {
			t.Error(err)
		}

		if got, err := db.Has(key); err != nil {
			t.Error(err)
		} else if got {
			t.Errorf("wrong value: %t", got)
		}
	})

	t.Run("Batch", func(t *testing.T) {
		db := New()
		defer db.Close()

		b := db.NewBatch()
		for _, k := range []string{"1", "2", "3", "4"} {
			if err := b.Set([]byte(k), []byte("v"+k)); err != nil {
				t.Fatal(err)
			}
		}

		if has, err := db.Has([]byte("1")); err != nil {
			t.Fatal(err)
		} else if has {
			t.Error("db contains element before batch write")
		}

		if err := b.Write(); err != nil {
			t.Fatal(err)
		}

		b.Reset()

		// Mix writes and deletes in batch
		b.Set([]byte("5"), []byte("v5"))
		b.Delete([]byte("1"))
		b.Set([]byte("6"), []byte("v6"))
		b.Delete([]byte("3"))
		b.Set([]byte("3"), []byte("test3"))

		if err := b.Write(); err != nil {
			t.Fatal(err)
		}

		type obj struct {
			Key   []byte
			Val   []byte
			Exist bool
		}
		testObjs := []obj{
			{Key: []byte("1"), Exist: false},
			{Key: []byte("2"), Val: []byte("v2"), Exist: true},
			{Key: []byte("3"), Val: []byte("test3"), Exist: true},
			{Key: []byte("4"), Val: []byte("v4"), Exist: true},
			{Key: []byte("5"), Val: []byte("v5"), Exist: true},
			{Key: []byte("6"), Val: []byte("v6"), Exist: true},
		}
		for _, testObj := range testObjs {
			if testObj.Exist {
				if got, err := db.Get(testObj.Key); err != nil {
					t.Error(err)
				} else if !bytes.Equal(got, testObj.Val) {
					t.Errorf("wrong value: %q", got)
				}
			} else {
				if got, err := db.Has(testObj.Key); err != nil {
					t.Error(err)
				} else if got {
					t.Errorf("wrong value: %t", got)
				}
			}
		}
	})

	t.Run("BatchReset", func(t *testing.T) {
		db := New()
		defer db.Close()

		b := db.NewBatch()
		b.Set([]byte("discarded"), []byte("x"))
		if b.ValueSize() == 0 {
			t.Error("batch reports zero size after Set")
		}
		b.Reset()

		b.Set([]byte("kept"), []byte("y"))
		if err := b.Write(); err != nil {
			t.Fatal(err)
		}

		if has, _ := db.Has([]byte("discarded")); has {
			t.Error("reset batch entry was written")
		}
		if has, _ := db.Has([]byte("kept")); !has {
			t.Error("post-reset entry missing")
		}
	})
}
