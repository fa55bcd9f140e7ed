package smrender

import (
	"regexp"
	"strconv"
	"strings"
)

// MatchKind is the type of a single-sided matcher, selected by the
// bracket syntax on a rule tag's key or value: `/re/` regex, `>N>`
// numeric greater-than, `<N<` numeric less-than, or a bare value for an
// exact byte-for-byte compare.
type MatchKind int

const (
	MatchDirect MatchKind = iota
	MatchRegex
	MatchGT
	MatchLT
)

// SideMatch is the compiled predicate for one side (key or value) of a
// tag matcher.
type SideMatch struct {
	Kind      MatchKind
	Literal   string
	Regex     *regexp.Regexp
	Threshold float64
	Invert    bool
}

// Eval reports whether b satisfies the side match, after applying
// Invert.
func (s SideMatch) Eval(b BString) bool {
	var r bool
	switch s.Kind {
	case MatchRegex:
		r = s.Regex.Match(b.Bytes())
	case MatchGT:
		v, err := b.ToFloat64()
		r = err == nil && v > s.Threshold
	case MatchLT:
		v, err := b.ToFloat64()
		r = err == nil && v < s.Threshold
	default:
		r = b.EqualString(s.Literal)
	}
	if s.Invert {
		return !r
	}
	return r
}

// parseSide compiles one bracketed matcher value. It strips, in order,
// a `~…~` Not wrapper (reported back via the not return) and a `!…!`
// Invert wrapper, then classifies the remainder as regex/GT/LT/direct.
func parseSide(raw string) (SideMatch, bool, error) {
	s := raw
	not := false
	if len(s) >= 2 && s[0] == '~' && s[len(s)-1] == '~' {
		not = true
		s = s[1 : len(s)-1]
	}
	invert := false
	if len(s) >= 2 && s[0] == '!' && s[len(s)-1] == '!' {
		invert = true
		s = s[1 : len(s)-1]
	}

	switch {
	case len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/"):
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return SideMatch{}, not, err
		}
		return SideMatch{Kind: MatchRegex, Regex: re, Invert: invert}, not, nil

	case len(s) >= 2 && strings.HasPrefix(s, ">") && strings.HasSuffix(s, ">"):
		v, err := strconv.ParseFloat(s[1:len(s)-1], 64)
		if err != nil {
			return SideMatch{}, not, err
		}
		return SideMatch{Kind: MatchGT, Threshold: v, Invert: invert}, not, nil

	case len(s) >= 2 && strings.HasPrefix(s, "<") && strings.HasSuffix(s, "<"):
		v, err := strconv.ParseFloat(s[1:len(s)-1], 64)
		if err != nil {
			return SideMatch{}, not, err
		}
		return SideMatch{Kind: MatchLT, Threshold: v, Invert: invert}, not, nil

	default:
		return SideMatch{Kind: MatchDirect, Literal: s, Invert: invert}, not, nil
	}
}

// TagMatcher is a compiled rule tag: a predicate over an object tag's
// key and value, plus the Not modifier.
type TagMatcher struct {
	Key SideMatch
	Val SideMatch
	Not bool
}

// Matches reports whether a single object tag satisfies both sides of
// the matcher (ignoring Not — see RuleMatches for how Not composes
// across an object's whole tag set).
func (m TagMatcher) Matches(t Tag) bool {
	return m.Key.Eval(t.K) && m.Val.Eval(t.V)
}

// compileTagMatcher builds a TagMatcher from one rule-object tag.
func compileTagMatcher(t Tag) (TagMatcher, error) {
	keySide, keyNot, err := parseSide(t.K.String())
	if err != nil {
		return TagMatcher{}, err
	}
	valSide, valNot, err := parseSide(t.V.String())
	if err != nil {
		return TagMatcher{}, err
	}
	return TagMatcher{Key: keySide, Val: valSide, Not: keyNot || valNot}, nil
}

// RuleMatches reports whether every matcher in matchers is satisfied by
// hdr's tags. A non-Not matcher requires some tag to match it; a Not
// matcher requires that no tag matches its underlying predicate.
func RuleMatches(matchers []TagMatcher, hdr *Header) bool {
	for _, m := range matchers {
		found := false
		for _, t := range hdr.Tags {
			if m.Matches(t) {
				found = true
				break
			}
		}
		if m.Not {
			if found {
				return false
			}
			continue
		}
		if !found {
			return false
		}
	}
	return true
}
