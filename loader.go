package smrender

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pbnjay/memory"
	"golang.org/x/text/unicode/norm"
)

// nowFunc stands in for time.Now so tests can pin the "now" a missing
// timestamp defaults to.
var nowFunc = time.Now

// LoaderOptions controls how Load consumes an OSM/XML stream.
type LoaderOptions struct {
	// Filter restricts loaded nodes to an optional bounding box. Ways
	// and relations are always loaded in full: only nodes outside the
	// box are dropped, and way refs and relation members are kept even
	// when they point at a dropped node, matching the original core's
	// node-only filter (smloadosm.c).
	Filter     BBox
	HasFilter  bool
	Stats      *LoadStats
	Progress   *ProgressFlag
	Log        Logger
}

// Loader drives a Parser's token stream into a BXTrie of Node/Way/
// Relation objects. It assigns synthetic ids to any
// top-level object lacking an id attribute, exactly as the original
// read_osm_file does with its running nid counter — except that Go's
// loader draws synthetic ids from the shared IDAllocator so they can
// never collide with ids a rule action fabricates later in the run.
type Loader struct {
	opts  LoaderOptions
	ids   *IDAllocator
	trie  *BXTrie
}

// NewLoader returns a Loader writing into trie, allocating synthetic ids
// from ids.
func NewLoader(trie *BXTrie, ids *IDAllocator, opts LoaderOptions) *Loader {
	if opts.Stats == nil {
		opts.Stats = NewLoadStats()
	}
	return &Loader{opts: opts, ids: ids, trie: trie}
}

// elemBuilder accumulates one top-level element (node/way/relation)
// across its GetElem events until the matching close tag arrives.
type elemBuilder struct {
	typ  ObjType
	hdr  Header
	lat  float64
	lon  float64
	refs []int64
	mems []Member
}

// Load consumes p until EOF, populating the loader's trie. It returns
// the number of top-level objects stored.
func (l *Loader) Load(p *Parser) (int, error) {
	var cur *elemBuilder
	n := 0

	for {
		if l.opts.Progress != nil && l.opts.Progress.TestAndClear() {
			if l.opts.Log != nil {
				l.opts.Log.Infof("load progress: pos=%d objects=%d", p.Pos(), n)
			}
		}

		tok, err := p.GetElem()
		if err != nil {
			return n, fmt.Errorf("smrender: load: %w", err)
		}
		if tok.Type == TokEOF {
			break
		}

		switch tok.Type {
		case TokOpen, TokSelfClose:
			name := tok.Name.String()
			t := elemObjType(name)
			if t != 0 && cur == nil {
				cur = newElemBuilder(t, tok)
				if tok.Type == TokSelfClose {
					if l.store(cur) {
						n++
					}
					cur = nil
				}
				continue
			}
			if cur == nil {
				continue
			}
			switch name {
			case "tag":
				k, v := attrVal(tok.Attrs, "k"), attrVal(tok.Attrs, "v")
				k, v = norm.NFC.String(k), norm.NFC.String(v)
				cur.hdr.Tags = append(cur.hdr.Tags, Tag{K: BStringFromString(k), V: BStringFromString(v)})
			case "nd":
				ref := attrVal(tok.Attrs, "ref")
				id, err := strconv.ParseInt(ref, 10, 64)
				if err != nil {
					id = -1
					l.opts.Stats.AddDangling(1)
				}
				cur.refs = append(cur.refs, id)
			case "member":
				mt := elemObjType(attrVal(tok.Attrs, "type"))
				id, err := strconv.ParseInt(attrVal(tok.Attrs, "ref"), 10, 64)
				if err != nil {
					l.opts.Stats.AddDangling(1)
					continue
				}
				role := ParseRole(attrVal(tok.Attrs, "role"))
				cur.mems = append(cur.mems, Member{Type: mt, ID: id, Role: role})
			}

		case TokClose:
			name := tok.Name.String()
			if cur != nil && elemObjType(name) == cur.typ {
				if l.store(cur) {
					n++
				}
				cur = nil
			}
		}
	}
	return n, nil
}

func elemObjType(name string) ObjType {
	switch name {
	case "node":
		return OSMNode
	case "way":
		return OSMWay
	case "relation":
		return OSMRelation
	default:
		return 0
	}
}

func attrVal(attrs []Attr, name string) string {
	for _, a := range attrs {
		if a.Name.EqualString(name) {
			return a.Value.String()
		}
	}
	return ""
}

func newElemBuilder(t ObjType, tok Token) *elemBuilder {
	b := &elemBuilder{typ: t}
	b.hdr.Type = t
	b.hdr.Visible = true
	if v := attrVal(tok.Attrs, "id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			b.hdr.ID = id
		}
	}
	if v := attrVal(tok.Attrs, "version"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			b.hdr.Version = int32(n)
		}
	}
	if v := attrVal(tok.Attrs, "changeset"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			b.hdr.Changeset = int32(n)
		}
	}
	if v := attrVal(tok.Attrs, "uid"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			b.hdr.UID = int32(n)
		}
	}
	if v := attrVal(tok.Attrs, "visible"); v == "false" {
		b.hdr.Visible = false
	}
	if v := attrVal(tok.Attrs, "timestamp"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			b.hdr.Timestamp = t.Unix()
		}
	}
	if b.hdr.Version == 0 {
		b.hdr.Version = 1
	}
	if b.hdr.Timestamp == 0 {
		b.hdr.Timestamp = nowFunc().Unix()
	}
	if v := attrVal(tok.Attrs, "lat"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			b.lat = f
		}
	}
	if v := attrVal(tok.Attrs, "lon"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			b.lon = f
		}
	}
	return b
}

// store finalizes one builder into the trie, assigning a synthetic id if
// the element carried none (id == 0, matching the original's "if (!nd.id)
// nd.id = nid++"), applying the node bounding-box filter, and recording
// load statistics. It returns false for a node dropped by the filter.
func (l *Loader) store(b *elemBuilder) bool {
	if b.hdr.ID == 0 {
		b.hdr.ID = l.ids.Next(b.typ)
	}

	var obj Object
	switch b.typ {
	case OSMNode:
		if l.opts.HasFilter && !l.opts.Filter.Contains(b.lat, b.lon) {
			return false
		}
		obj = &Node{Header: b.hdr, Lat: b.lat, Lon: b.lon}
		l.opts.Stats.Extend(b.lat, b.lon)
	case OSMWay:
		obj = &Way{Header: b.hdr, Refs: b.refs}
	case OSMRelation:
		obj = &Relation{Header: b.hdr, Members: b.mems}
	default:
		return false
	}

	l.opts.Stats.Count(b.typ, b.hdr.Version)
	l.trie.SetSlot(b.hdr.ID, int(b.typ-1), obj)
	return true
}

// SuggestReaderChunkSize picks a read-buffer size for NewReaderParser,
// scaled off available system memory so large-RAM hosts amortize more
// syscalls per refill without starving small/containerized hosts; this
// mirrors the original's fixed constant only in spirit, not in the
// exact number.
func SuggestReaderChunkSize() int {
	const minChunk = 64 * 1024
	const maxChunk = 4 * 1024 * 1024
	avail := memory.FreeMemory()
	chunk := int(avail / 4096)
	if chunk < minChunk {
		return minChunk
	}
	if chunk > maxChunk {
		return maxChunk
	}
	return chunk
}
