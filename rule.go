package smrender

import (
	"fmt"
	"strings"
)

// Rule is a compiled matcher plus action descriptor derived from one
// object in the rules file.
type Rule struct {
	Obj      Object
	Action   *ActionDescriptor
	Params   map[string]string
	Matchers []TagMatcher
	WayType  WayType

	threadable bool
	iniDone    bool
	finished   bool
	userData   interface{}
}

// GetParam returns a rule parameter parsed from the `?key=value;…` tail
// of its `_action_` tag.
func (r *Rule) GetParam(key string) (string, bool) {
	v, ok := r.Params[key]
	return v, ok
}

// MarkThreaded opts a rule into concurrent dispatch. Actions call this
// from their Ini hook; threadability is an opt-in, per-rule property.
func (r *Rule) MarkThreaded() {
	r.threadable = true
}

// SetUserData / UserData let an action stash state across Ini/Main/Fini
// calls for a single rule, mirroring the original ABI's per-rule user
// pointer.
func (r *Rule) SetUserData(v interface{}) { r.userData = v }
func (r *Rule) UserData() interface{}     { return r.userData }

// actionWayTypeDefaults maps a bare action name prefix to the way_type
// the compiler deduces when the action itself declares WayAny and
// doesn't otherwise constrain it.
var actionWayTypeDefaults = map[string]WayType{
	"area": WayClosed,
	"fill": WayClosed,
	"line": WayOpen,
	"cap":  WayOpen,
}

func deduceWayType(actionName string) WayType {
	prefix := actionName
	if i := strings.IndexByte(actionName, ':'); i >= 0 {
		prefix = actionName[:i]
	}
	if wt, ok := actionWayTypeDefaults[prefix]; ok {
		return wt
	}
	return WayAny
}

// parseActionTag parses the `_action_` tag grammar:
//
//	name ("@" library ("?" key=value (";" key=value)*)?)?
func parseActionTag(raw string) (name, library string, params map[string]string, err error) {
	name = raw
	if i := strings.IndexByte(raw, '@'); i >= 0 {
		name = raw[:i]
		rest := raw[i+1:]
		library = rest
		if j := strings.IndexByte(rest, '?'); j >= 0 {
			library = rest[:j]
			paramStr := rest[j+1:]
			params = make(map[string]string)
			for _, pair := range strings.Split(paramStr, ";") {
				if pair == "" {
					continue
				}
				k, v, ok := strings.Cut(pair, "=")
				if !ok {
					return "", "", nil, fmt.Errorf("smrender: malformed action param %q", pair)
				}
				params[k] = v
			}
		}
	}
	if name == "" {
		return "", "", nil, fmt.Errorf("smrender: empty action name in %q", raw)
	}
	return name, library, params, nil
}

// CompileRule transforms a rules-file object into an executable Rule.
// It extracts the `_action_` tag, resolves the action in reg, compiles
// the remaining tags into matchers, and removes the `_action_` tag from
// obj's tag list by swap-and-pop so that RuleMatches sees exactly the
// matcher tags.
func CompileRule(obj Object, reg *ActionRegistry) (*Rule, error) {
	hdr := obj.Hdr()

	idx := -1
	for i, t := range hdr.Tags {
		if t.K.EqualString("_action_") {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("smrender: object %d has no _action_ tag", hdr.ID)
	}
	actionRaw := hdr.Tags[idx].V.String()

	last := len(hdr.Tags) - 1
	hdr.Tags[idx] = hdr.Tags[last]
	hdr.Tags = hdr.Tags[:last]

	name, _, params, err := parseActionTag(actionRaw)
	if err != nil {
		return nil, err
	}

	desc, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("smrender: unknown action %q", name)
	}

	matchers := make([]TagMatcher, 0, len(hdr.Tags))
	for _, t := range hdr.Tags {
		tm, err := compileTagMatcher(t)
		if err != nil {
			return nil, fmt.Errorf("smrender: rule %d: %w", hdr.ID, err)
		}
		matchers = append(matchers, tm)
	}

	wayType := desc.WayType
	if wayType == WayAny {
		wayType = deduceWayType(name)
	}

	return &Rule{
		Obj:      obj,
		Action:   desc,
		Params:   params,
		Matchers: matchers,
		WayType:  wayType,
	}, nil
}

// CompileRules walks every object in a rules trie and compiles it into a
// Rule. Objects without an `_action_` tag, with an unresolvable action,
// or with a regex compile failure are logged and skipped — the
// compilation of other rules continues.
func CompileRules(rules *BXTrie, reg *ActionRegistry, log Logger) []*Rule {
	var out []*Rule
	rules.Traverse(-1, func(key int64, slot int, payload interface{}) int {
		obj, ok := payload.(Object)
		if !ok {
			return 1
		}
		r, err := CompileRule(obj, reg)
		if err != nil {
			if log != nil {
				log.Warnf("rule compile: %v", err)
			}
			return 1
		}
		out = append(out, r)
		return 1
	})
	return out
}
