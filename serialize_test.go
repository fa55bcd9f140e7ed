package smrender

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputWritesNodeWayRelation(t *testing.T) {
	store := NewTrie()
	store.SetSlot(1, int(OSMNode-1), &Node{
		Header: Header{ID: 1, Type: OSMNode, Version: 1, Visible: true, Tags: []Tag{tag("amenity", "cafe")}},
		Lat:    45.5, Lon: 14.25,
	})
	store.SetSlot(10, int(OSMWay-1), &Way{
		Header: Header{ID: 10, Type: OSMWay, Version: 1, Visible: true},
		Refs:   []int64{1, 2},
	})
	store.SetSlot(100, int(OSMRelation-1), &Relation{
		Header:  Header{ID: 100, Type: OSMRelation, Version: 1, Visible: true},
		Members: []Member{{Type: OSMWay, ID: 10, Role: RoleOuter}},
	})

	var buf bytes.Buffer
	require.NoError(t, Output(&buf, store, SerializeOptions{}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `<node id="1"`)
	assert.Contains(t, out, `lat="45.5000000" lon="14.2500000"`)
	assert.Contains(t, out, `<tag k="amenity" v="cafe"/>`)
	assert.Contains(t, out, `</node>`)
	assert.Contains(t, out, `<nd ref="1"/>`)
	assert.Contains(t, out, `<nd ref="2"/>`)
	assert.Contains(t, out, `</way>`)
	assert.Contains(t, out, `<member type="way" ref="10" role="outer"/>`)
	assert.Contains(t, out, `</relation>`)
	assert.True(t, strings.HasSuffix(strings.TrimRight(out, "\n"), "</osm>"))
}

func TestOutputAppliesIDOffset(t *testing.T) {
	store := NewTrie()
	store.SetSlot(1, int(OSMNode-1), &Node{Header: Header{ID: 1, Type: OSMNode, Version: 1, Visible: true}})

	var buf bytes.Buffer
	require.NoError(t, Output(&buf, store, SerializeOptions{IDOffset: 1000}))
	assert.Contains(t, buf.String(), `id="1001"`)
}

func TestOutputWritesBoundsAndInfoComment(t *testing.T) {
	store := NewTrie()
	var buf bytes.Buffer
	opts := SerializeOptions{
		Info:        "generated for testing",
		WriteBounds: true,
		Bounds:      BBox{MinLat: 1, MinLon: 2, MaxLat: 3, MaxLon: 4},
	}
	require.NoError(t, Output(&buf, store, opts))
	out := buf.String()
	assert.Contains(t, out, "<!--\ngenerated for testing\n-->")
	assert.Contains(t, out, `<bounds minlat="1.000000" minlon="2.000000" maxlat="3.000000" maxlon="4.000000"/>`)
}

func TestOutIDOffset(t *testing.T) {
	assert.EqualValues(t, 105, outID(5, 100))
	assert.EqualValues(t, 5, outID(5, 0))
}

func TestEscapeAttr(t *testing.T) {
	assert.Equal(t, "a &amp; &quot;b&quot; &lt;c&gt;", escapeAttr(`a & "b" <c>`))
}

func TestEscapeCommentNeutralizesDoubleDash(t *testing.T) {
	out := escapeComment("a---b")
	assert.NotContains(t, out, "--")
}

func TestRoleStringRoundTrip(t *testing.T) {
	assert.Equal(t, "outer", roleString(RoleOuter))
	assert.Equal(t, "admin_centre", roleString(RoleAdminCentre))
	assert.Equal(t, "", roleString(RoleEmpty))
}
