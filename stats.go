package smrender

import "sync"

// BBox is a WGS84 bounding box in degrees.
type BBox struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// Contains reports whether lat/lon falls within the box, inclusive.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return BBox{
		MinLat: minF(b.MinLat, o.MinLat),
		MinLon: minF(b.MinLon, o.MinLon),
		MaxLat: maxF(b.MaxLat, o.MaxLat),
		MaxLon: maxF(b.MaxLon, o.MaxLon),
	}
}

// Empty reports the zero BBox (used as the union seed).
func (b BBox) Empty() bool {
	return b == BBox{}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// LoadStats accumulates counters while the loader consumes an OSM/XML
// stream: per-type object counts, the observed version multiset's
// extremes, a dangling-reference tally, and the geographic extent of all
// nodes (no id range or id bit-width is recorded) —
// the figures the original core prints at the end of a load pass and
// that the serializer can optionally emit as a `<bounds>` element
// (a loader/serializer supplement beyond the original core's own stats).
type LoadStats struct {
	mu sync.Mutex

	Nodes, Ways, Relations int64
	MinVersion, MaxVersion int32
	DanglingRefs           int64 // nd/member refs whose ref attribute did not parse
	BBox                   BBox

	versionSeen bool
}

func NewLoadStats() *LoadStats {
	return &LoadStats{}
}

// Count records one object of the given type and version.
func (s *LoadStats) Count(t ObjType, version int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t {
	case OSMNode:
		s.Nodes++
	case OSMWay:
		s.Ways++
	case OSMRelation:
		s.Relations++
	}
	if !s.versionSeen {
		s.MinVersion, s.MaxVersion = version, version
		s.versionSeen = true
		return
	}
	if version < s.MinVersion {
		s.MinVersion = version
	}
	if version > s.MaxVersion {
		s.MaxVersion = version
	}
}

// Extend widens the tracked bounding box to include lat/lon.
func (s *LoadStats) Extend(lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BBox = s.BBox.Union(BBox{lat, lon, lat, lon})
}

// AddDangling increments the dangling-reference counter by n.
func (s *LoadStats) AddDangling(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DanglingRefs += n
}

// Total returns the number of objects of all three types counted so far.
func (s *LoadStats) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Nodes + s.Ways + s.Relations
}
