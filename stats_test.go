package smrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBBoxContains(t *testing.T) {
	b := BBox{MinLat: 10, MinLon: 10, MaxLat: 20, MaxLon: 20}
	assert.True(t, b.Contains(15, 15))
	assert.True(t, b.Contains(10, 10))
	assert.False(t, b.Contains(25, 15))
}

func TestBBoxUnion(t *testing.T) {
	a := BBox{MinLat: 1, MinLon: 1, MaxLat: 2, MaxLon: 2}
	b := BBox{MinLat: -1, MinLon: 0, MaxLat: 1.5, MaxLon: 5}
	u := a.Union(b)
	assert.Equal(t, BBox{MinLat: -1, MinLon: 0, MaxLat: 2, MaxLon: 5}, u)

	var empty BBox
	assert.Equal(t, a, empty.Union(a))
	assert.True(t, empty.Empty())
	assert.False(t, a.Empty())
}

func TestLoadStatsCount(t *testing.T) {
	s := NewLoadStats()
	s.Count(OSMNode, 3)
	s.Count(OSMWay, 1)
	s.Count(OSMNode, 5)

	assert.EqualValues(t, 2, s.Nodes)
	assert.EqualValues(t, 1, s.Ways)
	assert.EqualValues(t, 0, s.Relations)
	assert.EqualValues(t, 1, s.MinVersion)
	assert.EqualValues(t, 5, s.MaxVersion)
	assert.EqualValues(t, 3, s.Total())
}

func TestLoadStatsExtendAndDangling(t *testing.T) {
	s := NewLoadStats()
	s.Extend(10, 20)
	s.Extend(-5, 30)
	assert.Equal(t, BBox{MinLat: -5, MinLon: 20, MaxLat: 10, MaxLon: 30}, s.BBox)

	s.AddDangling(2)
	s.AddDangling(3)
	assert.EqualValues(t, 5, s.DanglingRefs)
}
