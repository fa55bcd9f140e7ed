package smrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(k, v string) Tag {
	return Tag{K: BStringFromString(k), V: BStringFromString(v)}
}

func TestParseSideDirect(t *testing.T) {
	m, not, err := parseSide("highway")
	require.NoError(t, err)
	assert.False(t, not)
	assert.Equal(t, MatchDirect, m.Kind)
	assert.True(t, m.Eval(BStringFromString("highway")))
	assert.False(t, m.Eval(BStringFromString("building")))
}

func TestParseSideRegex(t *testing.T) {
	m, _, err := parseSide("/^res.*/")
	require.NoError(t, err)
	assert.Equal(t, MatchRegex, m.Kind)
	assert.True(t, m.Eval(BStringFromString("residential")))
	assert.False(t, m.Eval(BStringFromString("primary")))
}

func TestParseSideGTLT(t *testing.T) {
	gt, _, err := parseSide(">100>")
	require.NoError(t, err)
	assert.True(t, gt.Eval(BStringFromString("150")))
	assert.False(t, gt.Eval(BStringFromString("50")))

	lt, _, err := parseSide("<100<")
	require.NoError(t, err)
	assert.True(t, lt.Eval(BStringFromString("50")))
	assert.False(t, lt.Eval(BStringFromString("150")))
}

func TestParseSideInvert(t *testing.T) {
	m, _, err := parseSide("!highway!")
	require.NoError(t, err)
	assert.True(t, m.Invert)
	assert.False(t, m.Eval(BStringFromString("highway")))
	assert.True(t, m.Eval(BStringFromString("building")))
}

func TestParseSideNotWrapper(t *testing.T) {
	_, not, err := parseSide("~highway~")
	require.NoError(t, err)
	assert.True(t, not)
}

func TestRuleMatchesPositive(t *testing.T) {
	tm, err := compileTagMatcher(tag("highway", "residential"))
	require.NoError(t, err)
	hdr := &Header{Tags: []Tag{tag("highway", "residential"), tag("name", "Main St")}}
	assert.True(t, RuleMatches([]TagMatcher{tm}, hdr))

	hdrNoMatch := &Header{Tags: []Tag{tag("building", "yes")}}
	assert.False(t, RuleMatches([]TagMatcher{tm}, hdrNoMatch))
}

func TestRuleMatchesNotRejectsOnMatch(t *testing.T) {
	tm, err := compileTagMatcher(tag("~highway~", "residential"))
	require.NoError(t, err)

	// an object carrying a matching tag is rejected by the Not modifier
	rejected := &Header{Tags: []Tag{tag("highway", "residential")}}
	assert.False(t, RuleMatches([]TagMatcher{tm}, rejected))

	// an object with no matching tag satisfies the Not matcher
	accepted := &Header{Tags: []Tag{tag("building", "yes")}}
	assert.True(t, RuleMatches([]TagMatcher{tm}, accepted))
}
