package smrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDAllocatorDecreasesPerType(t *testing.T) {
	ids := NewIDAllocator()
	assert.EqualValues(t, -1, ids.Next(OSMNode))
	assert.EqualValues(t, -2, ids.Next(OSMNode))
	assert.EqualValues(t, -1, ids.Next(OSMWay))
	assert.EqualValues(t, -1, ids.Next(OSMRelation))
	assert.EqualValues(t, -3, ids.Next(OSMNode))
}
