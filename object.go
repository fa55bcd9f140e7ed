package smrender

// ObjType identifies which of the three OSM object variants a value is.
// Values start at 1 so that ObjType-1 can index directly into a trie
// leaf's per-variant payload slots (see trie.go).
type ObjType int

const (
	_ ObjType = iota
	OSMNode
	OSMWay
	OSMRelation
)

func (t ObjType) String() string {
	switch t {
	case OSMNode:
		return "node"
	case OSMWay:
		return "way"
	case OSMRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// MemberRole is the small enumeration of relation member roles.
type MemberRole int

const (
	RoleEmpty MemberRole = iota
	RoleInner
	RoleOuter
	RoleTo
	RoleFrom
	RoleVia
	RoleLink
	RoleForward
	RoleBackward
	RoleStop
	RoleLabel
	RoleAdminCentre
	RoleOther
)

var roleNames = map[string]MemberRole{
	"":             RoleEmpty,
	"inner":        RoleInner,
	"outer":        RoleOuter,
	"to":           RoleTo,
	"from":         RoleFrom,
	"via":          RoleVia,
	"link":         RoleLink,
	"forward":      RoleForward,
	"backward":     RoleBackward,
	"stop":         RoleStop,
	"label":        RoleLabel,
	"admin_centre": RoleAdminCentre,
}

// ParseRole maps a role string onto its enumeration value, defaulting to
// RoleOther for anything not otherwise recognized.
func ParseRole(s string) MemberRole {
	if r, ok := roleNames[s]; ok {
		return r
	}
	return RoleOther
}

// Tag is a borrowed key/value pair.
type Tag struct {
	K BString
	V BString
}

// Member is one element of a relation's member list.
type Member struct {
	Type ObjType
	ID   int64
	Role MemberRole
}

// Header carries the fields common to every OSM object variant.
type Header struct {
	Type      ObjType
	ID        int64
	Version   int32
	Changeset int32
	UID       int32
	Timestamp int64 // seconds since epoch
	Visible   bool
	Tags      []Tag

	// CompiledAction is non-nil only for objects loaded from a rules
	// file; it is attached by the rule compiler (rule.go).
	CompiledAction *Rule
}

// GetTag returns the value of the first tag with the given key and
// reports whether it was found.
func (h *Header) GetTag(key string) (BString, bool) {
	for _, t := range h.Tags {
		if t.K.EqualString(key) {
			return t.V, true
		}
	}
	return BString{}, false
}

// Node is a point object.
type Node struct {
	Header
	Lat, Lon float64
}

// Way is an ordered sequence of node references.
type Way struct {
	Header
	Refs []int64
}

// Closed reports whether the way's first and last node references are
// equal and it has at least two references — i.e. it bounds an area.
func (w *Way) Closed() bool {
	return len(w.Refs) >= 2 && w.Refs[0] == w.Refs[len(w.Refs)-1]
}

// Relation is an ordered sequence of typed, roled members.
type Relation struct {
	Header
	Members []Member
}

// Object is implemented by *Node, *Way, and *Relation.
type Object interface {
	Hdr() *Header
}

func (n *Node) Hdr() *Header     { return &n.Header }
func (w *Way) Hdr() *Header      { return &w.Header }
func (r *Relation) Hdr() *Header { return &r.Header }

// Clone makes a shallow copy of an object's header and variant payload.
// Tag BStrings still alias the original storage; the clone is only safe
// to use while that storage remains valid.
func Clone(o Object) Object {
	switch v := o.(type) {
	case *Node:
		n := *v
		n.Tags = append([]Tag(nil), v.Tags...)
		return &n
	case *Way:
		w := *v
		w.Tags = append([]Tag(nil), v.Tags...)
		w.Refs = append([]int64(nil), v.Refs...)
		return &w
	case *Relation:
		r := *v
		r.Tags = append([]Tag(nil), v.Tags...)
		r.Members = append([]Member(nil), v.Members...)
		return &r
	default:
		return nil
	}
}
