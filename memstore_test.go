package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreBasics(t *testing.T) {
	s := NewMemoryStore()
	assert.True(t, s.IsEmpty())

	pos, err := s.Push([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)
	pos, err = s.Push([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)

	value, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), value)

	value, err = s.Get(5)
	require.NoError(t, err)
	assert.Nil(t, value)

	found, ok, err := s.Position([]byte("b"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), found)

	_, ok, err = s.Position([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Clear())
	assert.True(t, s.IsEmpty())
}

func TestMemoryStoreSlidingWindow(t *testing.T) {
	s := NewMemoryStore()
	for _, v := range []string{"a", "b", "c", "d"} {
		_, err := s.Push([]byte(v))
		require.NoError(t, err)
	}

	require.NoError(t, s.Shift(2))
	assert.Equal(t, uint64(2), s.Len())
	value, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), value)

	require.NoError(t, s.PushFront([]byte("b")))
	assert.Equal(t, uint64(3), s.Len())
	value, err = s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), value)

	require.NoError(t, s.Truncate(1))
	assert.Equal(t, uint64(1), s.Len())
}

func TestMemoryStoreForEach(t *testing.T) {
	s := NewMemoryStore()
	values := []string{"x", "y", "z"}
	for _, v := range values {
		_, err := s.Push([]byte(v))
		require.NoError(t, err)
	}

	var visited []string
	err := s.ForEach(func(pos uint64, value []byte) error {
		assert.Equal(t, uint64(len(visited)), pos)
		visited = append(visited, string(value))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, values, visited)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Push([]byte("value"))
	require.NoError(t, err)

	got, err := s.Get(0)
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)
}

func TestMemoryStoreCopiesOnPush(t *testing.T) {
	s := NewMemoryStore()
	value := []byte("mutate me")
	_, err := s.Push(value)
	require.NoError(t, err)
	value[0] = 'X'

	stored, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("mutate me"), stored)
}
