package smrender

// RevIndex is the reverse index from a node/way id to the ways/relations
// that reference it, grounded in the original core's rev_index_*/
// add_rev_ptr family (smcore.c) and in EDirect's invert.go dispenser/
// inverter pipeline, which builds an analogous postings structure by a
// single forward pass over records. Slot 0 of each leaf holds a
// *RevEntry for "referenced by ways", slot 1 for "referenced by
// relations" — the BXTrie's fixed per-leaf fanout is reused as two fixed
// buckets instead of the three ObjType buckets the main store uses.
type RevIndex struct {
	trie *BXTrie

	// Unresolved counts members (way node refs, relation members) whose
	// target id was never loaded into store. Build still records the
	// back-reference for these — a later load pass may fill the gap —
	// it just can't confirm the target exists yet.
	Unresolved int64
}

const (
	revSlotWays      = 0
	revSlotRelations = 1
)

// RevEntry is the reverse-index payload: the ids of the referencing
// ways or relations, in the order they were first observed.
type RevEntry struct {
	IDs []int64
}

// NewRevIndex returns an empty reverse index.
func NewRevIndex() *RevIndex {
	return &RevIndex{trie: NewTrie()}
}

// addWayRef records that wayID references nodeID, deduplicating against
// any id already recorded for nodeID (a way may legitimately repeat a
// node ref, e.g. a closed way's first/last ref, without that counting
// as two distinct referencing ways).
func (x *RevIndex) addWayRef(nodeID, wayID int64) {
	e, _ := x.trie.Slot(nodeID, revSlotWays).(*RevEntry)
	if e == nil {
		e = &RevEntry{}
		x.trie.SetSlot(nodeID, revSlotWays, e)
	}
	for _, id := range e.IDs {
		if id == wayID {
			return
		}
	}
	e.IDs = append(e.IDs, wayID)
}

// addRelationRef records that relID references memberID, deduplicating
// against any id already recorded for memberID (a relation may repeat a
// member across distinct roles).
func (x *RevIndex) addRelationRef(memberID, relID int64) {
	e, _ := x.trie.Slot(memberID, revSlotRelations).(*RevEntry)
	if e == nil {
		e = &RevEntry{}
		x.trie.SetSlot(memberID, revSlotRelations, e)
	}
	for _, id := range e.IDs {
		if id == relID {
			return
		}
	}
	e.IDs = append(e.IDs, relID)
}

// WaysOf returns the ids of ways referencing node id, or nil.
func (x *RevIndex) WaysOf(nodeID int64) []int64 {
	if e, ok := x.trie.Slot(nodeID, revSlotWays).(*RevEntry); ok {
		return e.IDs
	}
	return nil
}

// RelationsOf returns the ids of relations that include id (a node, way,
// or relation id) as a member, or nil.
func (x *RevIndex) RelationsOf(id int64) []int64 {
	if e, ok := x.trie.Slot(id, revSlotRelations).(*RevEntry); ok {
		return e.IDs
	}
	return nil
}

// resolved reports whether an object of the given type and id is present
// in store. t is validated first since an unrecognized member type (e.g.
// a relation member whose "type" attribute didn't parse) has no slot to
// look up.
func resolved(store *BXTrie, t ObjType, id int64) bool {
	switch t {
	case OSMNode, OSMWay, OSMRelation:
		return store.Slot(id, int(t-1)) != nil
	default:
		return false
	}
}

// Build walks store once, recording every way->node and relation->member
// back-reference. It is the single forward pass the original core's
// rev_index_ways/rev_index_rels and EDirect's dispenser goroutine both
// use to build a postings-style structure without a second read of
// the source data. Members that don't resolve to a loaded object are
// still recorded (see addWayRef/addRelationRef) but are tallied in
// x.Unresolved.
func Build(store *BXTrie) *RevIndex {
	x := NewRevIndex()

	store.Traverse(int(OSMWay-1), func(key int64, slot int, payload interface{}) int {
		w, ok := payload.(*Way)
		if !ok {
			return 1
		}
		for _, ref := range w.Refs {
			if ref < 0 {
				continue
			}
			if !resolved(store, OSMNode, ref) {
				x.Unresolved++
			}
			x.addWayRef(ref, w.ID)
		}
		return 1
	})

	store.Traverse(int(OSMRelation-1), func(key int64, slot int, payload interface{}) int {
		rel, ok := payload.(*Relation)
		if !ok {
			return 1
		}
		for _, m := range rel.Members {
			if !resolved(store, m.Type, m.ID) {
				x.Unresolved++
			}
			x.addRelationRef(m.ID, rel.ID)
		}
		return 1
	})

	return x
}
