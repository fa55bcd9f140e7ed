package smrender

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOSM = `<?xml version="1.0"?>
<osm version="0.6">
<node id="1" version="1" lat="45.00" lon="14.00" timestamp="2020-01-01T00:00:00Z"><tag k="amenity" v="cafe"/></node>
<node id="2" version="1" lat="45.01" lon="14.01"/>
<way id="10" version="1">
<nd ref="1"/>
<nd ref="2"/>
<tag k="highway" v="residential"/>
</way>
<relation id="100" version="1">
<member type="way" ref="10" role="outer"/>
<tag k="type" v="multipolygon"/>
</relation>
</osm>
`

func TestLoadBasic(t *testing.T) {
	trie := NewTrie()
	ids := NewIDAllocator()
	stats := NewLoadStats()
	loader := NewLoader(trie, ids, LoaderOptions{Stats: stats})

	n, err := loader.Load(NewBufferParser([]byte(sampleOSM)))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.EqualValues(t, 2, stats.Nodes)
	assert.EqualValues(t, 1, stats.Ways)
	assert.EqualValues(t, 1, stats.Relations)

	node, ok := trie.Slot(1, int(OSMNode-1)).(*Node)
	require.True(t, ok)
	assert.Equal(t, 45.00, node.Lat)
	v, ok := node.GetTag("amenity")
	require.True(t, ok)
	assert.Equal(t, "cafe", v.String())

	way, ok := trie.Slot(10, int(OSMWay-1)).(*Way)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2}, way.Refs)

	rel, ok := trie.Slot(100, int(OSMRelation-1)).(*Relation)
	require.True(t, ok)
	require.Len(t, rel.Members, 1)
	assert.Equal(t, RoleOuter, rel.Members[0].Role)
}

func TestLoadAssignsSyntheticID(t *testing.T) {
	trie := NewTrie()
	ids := NewIDAllocator()
	loader := NewLoader(trie, ids, LoaderOptions{Stats: NewLoadStats()})

	doc := `<osm><node lat="1.0" lon="2.0"/></osm>`
	n, err := loader.Load(NewBufferParser([]byte(doc)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found := false
	trie.Traverse(int(OSMNode-1), func(key int64, slot int, payload interface{}) int {
		found = true
		assert.Less(t, key, int64(0))
		return 1
	})
	assert.True(t, found)
}

func TestLoadBBoxFilterDropsNodesOutside(t *testing.T) {
	trie := NewTrie()
	ids := NewIDAllocator()
	opts := LoaderOptions{
		Stats:     NewLoadStats(),
		HasFilter: true,
		Filter:    BBox{MinLat: 0, MinLon: 0, MaxLat: 10, MaxLon: 10},
	}
	loader := NewLoader(trie, ids, opts)

	doc := `<osm><node id="1" lat="5" lon="5"/><node id="2" lat="50" lon="50"/></osm>`
	n, err := loader.Load(NewBufferParser([]byte(doc)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotNil(t, trie.Slot(1, int(OSMNode-1)))
	assert.Nil(t, trie.Slot(2, int(OSMNode-1)))
}

func TestLoadDefaultsVersionAndTimestamp(t *testing.T) {
	trie := NewTrie()
	loader := NewLoader(trie, NewIDAllocator(), LoaderOptions{Stats: NewLoadStats()})
	doc := `<osm><node id="1" lat="1" lon="1"/></osm>`
	_, err := loader.Load(NewBufferParser([]byte(doc)))
	require.NoError(t, err)

	node := trie.Slot(1, int(OSMNode-1)).(*Node)
	assert.EqualValues(t, 1, node.Version)
	assert.NotZero(t, node.Timestamp)
}

func TestLoadFromReader(t *testing.T) {
	trie := NewTrie()
	loader := NewLoader(trie, NewIDAllocator(), LoaderOptions{Stats: NewLoadStats()})
	n, err := loader.Load(NewReaderParser(strings.NewReader(sampleOSM), 64))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
