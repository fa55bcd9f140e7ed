package smrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *ActionRegistry {
	reg := NewActionRegistry()
	reg.Register(&ActionDescriptor{
		Name: "noop",
		Main: func(r *Rule, o Object) (int, error) { return ERuleOK, nil },
	})
	reg.Register(&ActionDescriptor{
		Name:    "area-fill",
		Main:    func(r *Rule, o Object) (int, error) { return ERuleOK, nil },
		WayType: WayClosed,
	})
	return reg
}

func TestParseActionTag(t *testing.T) {
	name, lib, params, err := parseActionTag("set@mylib?key=highway;value=residential")
	require.NoError(t, err)
	assert.Equal(t, "set", name)
	assert.Equal(t, "mylib", lib)
	assert.Equal(t, map[string]string{"key": "highway", "value": "residential"}, params)
}

func TestParseActionTagBareName(t *testing.T) {
	name, lib, params, err := parseActionTag("noop")
	require.NoError(t, err)
	assert.Equal(t, "noop", name)
	assert.Equal(t, "", lib)
	assert.Nil(t, params)
}

func TestParseActionTagEmpty(t *testing.T) {
	_, _, _, err := parseActionTag("")
	assert.Error(t, err)
}

func TestCompileRule(t *testing.T) {
	reg := newTestRegistry()
	n := &Node{Header: Header{
		Type: OSMNode,
		ID:   1,
		Tags: []Tag{
			tag("_action_", "noop"),
			tag("highway", "residential"),
		},
	}}

	r, err := CompileRule(n, reg)
	require.NoError(t, err)
	assert.Equal(t, "noop", r.Action.Name)
	assert.Len(t, r.Matchers, 1)
	// the _action_ tag was removed from the object's own tag list
	assert.Len(t, n.Tags, 1)
	assert.Equal(t, "highway", n.Tags[0].K.String())
}

func TestCompileRuleUnknownAction(t *testing.T) {
	reg := newTestRegistry()
	n := &Node{Header: Header{ID: 1, Tags: []Tag{tag("_action_", "nosuch")}}}
	_, err := CompileRule(n, reg)
	assert.Error(t, err)
}

func TestCompileRuleMissingActionTag(t *testing.T) {
	reg := newTestRegistry()
	n := &Node{Header: Header{ID: 1, Tags: []Tag{tag("highway", "residential")}}}
	_, err := CompileRule(n, reg)
	assert.Error(t, err)
}

func TestCompileRuleTakesDeclaredWayType(t *testing.T) {
	reg := newTestRegistry()
	w := &Way{Header: Header{ID: 2, Type: OSMWay, Tags: []Tag{tag("_action_", "area-fill")}}}
	r, err := CompileRule(w, reg)
	require.NoError(t, err)
	assert.Equal(t, WayClosed, r.WayType)
}

func TestRuleGetParamAndUserData(t *testing.T) {
	r := &Rule{Params: map[string]string{"key": "highway"}}
	v, ok := r.GetParam("key")
	assert.True(t, ok)
	assert.Equal(t, "highway", v)

	_, ok = r.GetParam("missing")
	assert.False(t, ok)

	r.SetUserData(42)
	assert.Equal(t, 42, r.UserData())

	assert.False(t, r.threadable)
	r.MarkThreaded()
	assert.True(t, r.threadable)
}
