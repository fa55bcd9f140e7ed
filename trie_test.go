package smrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrieSetGetSlot(t *testing.T) {
	tr := NewTrie()
	tr.SetSlot(42, 0, "node-42")
	tr.SetSlot(42, 1, "way-42")
	tr.SetSlot(-7, 0, "node-neg7")

	assert.Equal(t, "node-42", tr.Slot(42, 0))
	assert.Equal(t, "way-42", tr.Slot(42, 1))
	assert.Nil(t, tr.Slot(42, 2))
	assert.Equal(t, "node-neg7", tr.Slot(-7, 0))
	assert.Nil(t, tr.Slot(999, 0))
}

func TestTrieGetMissing(t *testing.T) {
	tr := NewTrie()
	require.Nil(t, tr.Get(123))
	tr.Add(123)
	require.NotNil(t, tr.Get(123))
}

func TestTrieTraverseOrderAscendingBitPattern(t *testing.T) {
	tr := NewTrie()
	keys := []int64{5, 1, 3, -1, -5}
	for _, k := range keys {
		tr.SetSlot(k, 0, k)
	}

	var seen []int64
	tr.Traverse(0, func(key int64, slot int, payload interface{}) int {
		seen = append(seen, key)
		return 1
	})

	// ascending uint64 bit-pattern order: positive keys first (ascending),
	// then negative keys (sign bit set) in ascending order among
	// themselves, i.e. -5 before -1.
	assert.Equal(t, []int64{1, 3, 5, -5, -1}, seen)
}

func TestTrieTraverseAbort(t *testing.T) {
	tr := NewTrie()
	for i := int64(0); i < 10; i++ {
		tr.SetSlot(i, 0, i)
	}
	count := 0
	ret := tr.Traverse(0, func(key int64, slot int, payload interface{}) int {
		count++
		if count == 3 {
			return -1
		}
		return 1
	})
	assert.Equal(t, -1, ret)
	assert.Equal(t, 3, count)
}

func TestTrieCount(t *testing.T) {
	tr := NewTrie()
	tr.SetSlot(1, 0, "a")
	tr.SetSlot(2, 0, "b")
	tr.SetSlot(2, 1, "c")
	assert.Equal(t, 2, tr.Count(0))
	assert.Equal(t, 1, tr.Count(1))
	assert.Equal(t, 3, tr.Count(-1))
}

func TestTrieFree(t *testing.T) {
	tr := NewTrie()
	tr.SetSlot(1, 0, "a")
	tr.Free()
	assert.Nil(t, tr.Get(1))
	assert.Equal(t, 0, tr.Count(-1))
}
