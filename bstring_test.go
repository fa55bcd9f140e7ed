package smrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBStringBasics(t *testing.T) {
	buf := []byte("  hello world  ")
	b := NewBString(buf, 2, 11)
	assert.Equal(t, 11, b.Len())
	assert.Equal(t, "hello world", b.String())
	assert.False(t, b.Empty())

	trimmed := NewBString(buf, 0, len(buf)).TrimSpace()
	assert.Equal(t, "hello world", trimmed.String())
}

func TestBStringEqual(t *testing.T) {
	a := BStringFromString("highway")
	b := BStringFromString("highway")
	c := BStringFromString("building")

	assert.True(t, a.Equal(b))
	assert.True(t, a.EqualString("highway"))
	assert.False(t, a.Equal(c))
}

func TestBStringCompare(t *testing.T) {
	a := BStringFromString("abc")
	b := BStringFromString("abd")
	c := BStringFromString("ab")

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 1, a.Compare(c))
	assert.Equal(t, 0, a.Compare(BStringFromString("abc")))
}

func TestBStringNumericConversion(t *testing.T) {
	i, err := BStringFromString("42").ToInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)

	f, err := BStringFromString("3.14").ToFloat64()
	require.NoError(t, err)
	assert.InDelta(t, 3.14, f, 0.0001)

	_, err = BStringFromString("nope").ToInt64()
	assert.Error(t, err)
}

func TestBStringSliceAndIndex(t *testing.T) {
	b := BStringFromString("a=b;c=d")
	assert.Equal(t, 1, b.IndexByte('='))
	assert.Equal(t, -1, b.IndexByte('%'))

	sub := b.Slice(2, 7)
	assert.Equal(t, "b;c=d", sub.String())

	// out-of-range slice returns the zero value
	bad := b.Slice(-1, 3)
	assert.Equal(t, 0, bad.Len())
}
