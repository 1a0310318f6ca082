package region

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New("dept-a")
	require.NotNil(t, r)
	assert.Equal(t, "dept-a", r.Name())
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.All())
	assert.NotNil(t, r.All(), "empty region must return an empty, non-nil slice")

	_, ok := r.Last()
	assert.False(t, ok)
}

func TestPutTracksLast(t *testing.T) {
	r := New("dept-a")

	require.NoError(t, r.Put(1, "Alice"))
	require.NoError(t, r.Put(2, "Bob"))

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, "Bob", last)
	assert.Equal(t, []any{"Alice", "Bob"}, r.All())
	assert.Equal(t, []any{1, 2}, r.Keys())

	// Order of keys in the underlying map must not matter.
	require.NoError(t, r.Put(0, "Zed"))
	last, _ = r.Last()
	assert.Equal(t, "Zed", last)
}

func TestPutOverwrite(t *testing.T) {
	r := New("dept-a")

	require.NoError(t, r.Put("k", "v1"))
	require.NoError(t, r.Put("other", "x"))
	require.NoError(t, r.Put("k", "v2"))

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, "v2", last, "last must follow the most recent write even on overwrite")
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []any{"x", "v2"}, r.All())

	v, ok := r.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestPutInvalidKey(t *testing.T) {
	r := New("dept-a")

	err := r.Put(nil, "v")
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = r.Put([]string{"not", "comparable"}, "v")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Equal(t, 0, r.Len())

	_, ok := r.Get(map[string]int{})
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	r := New("dept-a")
	require.NoError(t, r.Put(1, "Alice"))
	require.NoError(t, r.Put(2, "Bob"))

	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.All())
	_, ok := r.Last()
	assert.False(t, ok)
	_, ok = r.Get(1)
	assert.False(t, ok)

	// The region stays usable after a clear.
	require.NoError(t, r.Put(3, "Carol"))
	assert.Equal(t, []any{"Carol"}, r.All())
}

func TestRegion_ConcurrentAccess(t *testing.T) {
	r := New("concurrent")
	numGoroutines := 50
	var wg sync.WaitGroup

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			if err := r.Put(fmt.Sprintf("key-%d", i), i); err != nil {
				t.Errorf("put %d: %v", i, err)
			}
			_ = r.All()
			_, _ = r.Last()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numGoroutines, r.Len())
	for i := 0; i < numGoroutines; i++ {
		v, ok := r.Get(fmt.Sprintf("key-%d", i))
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}
