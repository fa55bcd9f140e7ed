package smrender

import (
	"fmt"
	"io"
	"time"

	"github.com/rainycape/unidecode"
)

// SerializeOptions controls Output's rendering of the trie, grounded in
// the original save_osm0 (smosmout.c): the optional informational
// comment and `<bounds>` element, and an optional id-rewrite.
type SerializeOptions struct {
	// Info, if non-empty, is written as a leading XML comment.
	Info string
	// Bounds, if WriteBounds is set, emits a <bounds> element derived
	// from it right after the header.
	Bounds      BBox
	WriteBounds bool
	// IDOffset is added to every output id (the original's rd->id_off).
	IDOffset int64
	// Transliterate romanizes non-ASCII tag keys and values with unidecode before
	// writing them out, for consumers that can't handle UTF-8 (an
	// original-source-absent, spec-silent convenience the serializer
	// gets from rainycape/unidecode — see DESIGN.md).
	Transliterate bool
}

// Output writes every object in store, in ascending trie order, as
// OSM/XML 0.6 to w.
func Output(w io.Writer, store *BXTrie, opts SerializeOptions) error {
	if _, err := io.WriteString(w, "<?xml version='1.0' encoding='UTF-8'?>\n<osm version='0.6' generator='smrender'>\n"); err != nil {
		return err
	}
	if opts.Info != "" {
		if _, err := fmt.Fprintf(w, "<!--\n%s\n-->\n", escapeComment(opts.Info)); err != nil {
			return err
		}
	}
	if opts.WriteBounds {
		if _, err := fmt.Fprintf(w, "<bounds minlat=\"%f\" minlon=\"%f\" maxlat=\"%f\" maxlon=\"%f\"/>\n",
			opts.Bounds.MinLat, opts.Bounds.MinLon, opts.Bounds.MaxLat, opts.Bounds.MaxLon); err != nil {
			return err
		}
	}

	var writeErr error
	store.Traverse(-1, func(key int64, slot int, payload interface{}) int {
		obj, ok := payload.(Object)
		if !ok {
			return 1
		}
		if err := writeObject(w, obj, opts); err != nil {
			writeErr = err
			return -1
		}
		return 1
	})
	if writeErr != nil {
		return writeErr
	}

	_, err := io.WriteString(w, "</osm>\n")
	return err
}

func outID(id int64, offset int64) int64 {
	return id + offset
}

func writeObject(w io.Writer, obj Object, opts SerializeOptions) error {
	hdr := obj.Hdr()
	ts := time.Unix(hdr.Timestamp, 0).UTC().Format("2006-01-02T15:04:05Z")
	version := hdr.Version
	if version == 0 {
		version = 1
	}

	var name string
	switch hdr.Type {
	case OSMNode:
		name = "node"
	case OSMWay:
		name = "way"
	case OSMRelation:
		name = "relation"
	default:
		_, err := fmt.Fprintf(w, "<!-- unknown object type: %d -->\n", hdr.Type)
		return err
	}

	if _, err := fmt.Fprintf(w, "<%s id=\"%d\" version=\"%d\" timestamp=\"%s\" uid=\"%d\" visible=\"%s\"",
		name, outID(hdr.ID, opts.IDOffset), version, ts, hdr.UID, boolStr(hdr.Visible)); err != nil {
		return err
	}

	switch v := obj.(type) {
	case *Node:
		tag := "/>"
		if len(hdr.Tags) > 0 {
			tag = ">"
		}
		if _, err := fmt.Fprintf(w, " lat=\"%.7f\" lon=\"%.7f\"%s\n", v.Lat, v.Lon, tag); err != nil {
			return err
		}
	default:
		if _, err := io.WriteString(w, ">\n"); err != nil {
			return err
		}
	}

	for _, t := range hdr.Tags {
		k, v := t.K.String(), t.V.String()
		if opts.Transliterate {
			k, v = unidecode.Unidecode(k), unidecode.Unidecode(v)
		}
		if _, err := fmt.Fprintf(w, "<tag k=\"%s\" v=\"%s\"/>\n", escapeAttr(k), escapeAttr(v)); err != nil {
			return err
		}
	}

	switch v := obj.(type) {
	case *Node:
		if len(hdr.Tags) > 0 {
			if _, err := fmt.Fprintf(w, "</node>\n"); err != nil {
				return err
			}
		}
	case *Way:
		for _, ref := range v.Refs {
			if _, err := fmt.Fprintf(w, "<nd ref=\"%d\"/>\n", outID(ref, opts.IDOffset)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "</way>\n"); err != nil {
			return err
		}
	case *Relation:
		for _, m := range v.Members {
			if _, err := fmt.Fprintf(w, "<member type=\"%s\" ref=\"%d\" role=\"%s\"/>\n",
				m.Type.String(), outID(m.ID, opts.IDOffset), roleString(m.Role)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "</relation>\n"); err != nil {
			return err
		}
	}

	return nil
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

var roleStrings = map[MemberRole]string{
	RoleEmpty:       "",
	RoleInner:       "inner",
	RoleOuter:       "outer",
	RoleTo:          "to",
	RoleFrom:        "from",
	RoleVia:         "via",
	RoleLink:        "link",
	RoleForward:     "forward",
	RoleBackward:    "backward",
	RoleStop:        "stop",
	RoleLabel:       "label",
	RoleAdminCentre: "admin_centre",
	RoleOther:       "other",
}

func roleString(r MemberRole) string {
	return roleStrings[r]
}

// escapeAttr escapes the characters that would break a double-quoted XML
// attribute value. The original core only rewrites '"' and '<'
// (bs_safe_put_xml); Go's writer additionally escapes '&' and '>' since
// a correct general-purpose XML writer must, even though the OSM tag
// alphabet this core was built around rarely contains them.
func escapeAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			out = append(out, "&quot;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '&':
			out = append(out, "&amp;"...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

// escapeComment neutralizes a literal "-->" inside an informational
// comment body so it can't prematurely close the XML comment.
func escapeComment(s string) string {
	out := make([]byte, 0, len(s))
	dashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '-' {
			dashes++
		} else {
			dashes = 0
		}
		if dashes >= 2 && c == '-' {
			out = append(out, ' ')
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
