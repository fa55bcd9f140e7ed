// Package smrender implements the rule-driven core of a rasterizing OSM
// renderer: a streaming OSM/XML pull parser, an in-memory object store
// indexed by a fixed-fanout bit trie, a reverse indexer, a rule compiler,
// and a multi-threaded rule executor. Drawing, HTTP serving, mapcss
// translation, and coastline stitching are external collaborators reached
// only through the action plug-in contract in package action.
package smrender

import (
	"strconv"
)

// BString is a borrowed view into byte storage shared with its owner —
// the parser's read buffer, an mmapped region, or a heap string kept
// alive elsewhere. It never copies or owns the bytes it points at.
type BString struct {
	buf   []byte
	start int
	len   int
}

// NewBString wraps buf[start:start+length] without copying.
func NewBString(buf []byte, start, length int) BString {
	return BString{buf: buf, start: start, len: length}
}

// BStringFromString copies s into a fresh byte slice and returns a view
// over that copy; the result does not alias s.
func BStringFromString(s string) BString {
	return BString{buf: []byte(s), start: 0, len: len(s)}
}

// Len reports the number of bytes in the view.
func (b BString) Len() int {
	return b.len
}

// Empty reports whether the view has zero length.
func (b BString) Empty() bool {
	return b.len == 0
}

// Bytes returns the underlying byte slice for the view. The slice aliases
// the owner's storage and must not be retained past the owner's lifetime.
func (b BString) Bytes() []byte {
	if b.buf == nil {
		return nil
	}
	return b.buf[b.start : b.start+b.len]
}

// String copies the view into a new Go string.
func (b BString) String() string {
	if b.len == 0 {
		return ""
	}
	return string(b.Bytes())
}

// Equal reports bytewise equality with another BString.
func (b BString) Equal(o BString) bool {
	if b.len != o.len {
		return false
	}
	for i := 0; i < b.len; i++ {
		if b.buf[b.start+i] != o.buf[o.start+i] {
			return false
		}
	}
	return true
}

// EqualString reports bytewise equality against a plain string, without
// allocating.
func (b BString) EqualString(s string) bool {
	if b.len != len(s) {
		return false
	}
	for i := 0; i < b.len; i++ {
		if b.buf[b.start+i] != s[i] {
			return false
		}
	}
	return true
}

// Compare returns -1, 0, or 1 the way bytes.Compare does, without copying.
func (b BString) Compare(o BString) int {
	n := b.len
	if o.len < n {
		n = o.len
	}
	for i := 0; i < n; i++ {
		x, y := b.buf[b.start+i], o.buf[o.start+i]
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	switch {
	case b.len < o.len:
		return -1
	case b.len > o.len:
		return 1
	default:
		return 0
	}
}

// ToInt64 parses the view as a base-10 signed integer. The view is copied
// into a string (via String) for strconv.
func (b BString) ToInt64() (int64, error) {
	return strconv.ParseInt(b.String(), 10, 64)
}

// ToFloat64 parses the view as a floating point number.
func (b BString) ToFloat64() (float64, error) {
	return strconv.ParseFloat(b.String(), 64)
}

// Slice returns the sub-view [from:to), bounds relative to this view.
func (b BString) Slice(from, to int) BString {
	if from < 0 || to > b.len || from > to {
		return BString{}
	}
	return BString{buf: b.buf, start: b.start + from, len: to - from}
}

// IndexByte returns the index of the first occurrence of c, or -1.
func (b BString) IndexByte(c byte) int {
	for i := 0; i < b.len; i++ {
		if b.buf[b.start+i] == c {
			return i
		}
	}
	return -1
}

// TrimSpace returns a view with leading and trailing ASCII whitespace
// removed, without copying.
func (b BString) TrimSpace() BString {
	start, end := 0, b.len
	for start < end && isSpaceByte(b.buf[b.start+start]) {
		start++
	}
	for end > start && isSpaceByte(b.buf[b.start+end-1]) {
		end--
	}
	return b.Slice(start, end)
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
