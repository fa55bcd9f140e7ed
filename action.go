package smrender

import "fmt"

// WayType constrains a rule to closed ways (areas), open ways (lines),
// or either.
type WayType int

const (
	WayAny WayType = iota
	WayClosed
	WayOpen
)

// ActionMain is an action plug-in's per-object entry point. It returns 0
// (ERuleOK) when the action applied, matching the original C ABI's
// act_<name>_main convention.
type ActionMain func(r *Rule, o Object) (int, error)

// ActionIni and ActionFini are a plug-in's optional lifecycle hooks,
// called once per rule per run (not once per pass) — see the rule
// executor in exec.go. A nil hook is benign.
type ActionIni func(r *Rule) error
type ActionFini func(r *Rule) error

// ActionDescriptor is what the rule compiler resolves an `_action_` name
// against. It stands in for the dlopen'd shared-library symbol triple
// (act_<name>_main/_ini/_fini) of the original C core: Go has no safe
// story for re-opening arbitrary shared libraries at this layer, so
// action plug-ins register themselves into an ActionRegistry at process
// init time instead (see package action). The core treats the
// descriptor as opaque and never depends on plug-in-internal state.
type ActionDescriptor struct {
	Name    string
	Main    ActionMain
	Ini     ActionIni
	Fini    ActionFini
	WayType WayType // WayAny unless the plug-in declares a constraint
}

// ActionRegistry maps action names to descriptors. The zero value is
// usable; a package-level DefaultRegistry is populated by action
// plug-ins' init() functions.
type ActionRegistry struct {
	byName map[string]*ActionDescriptor
}

// NewActionRegistry returns an empty registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{byName: make(map[string]*ActionDescriptor)}
}

// Register installs a plug-in's descriptor under its action name. It
// panics on a duplicate name, since that can only happen from a
// programming error in an action package's init(), not from rule data.
func (a *ActionRegistry) Register(d *ActionDescriptor) {
	if a.byName == nil {
		a.byName = make(map[string]*ActionDescriptor)
	}
	if _, exists := a.byName[d.Name]; exists {
		panic(fmt.Sprintf("smrender: action %q registered twice", d.Name))
	}
	a.byName[d.Name] = d
}

// Lookup resolves an action name, reporting ok=false for an unknown
// action — an unresolvable symbol aborts rule compilation for that
// object.
func (a *ActionRegistry) Lookup(name string) (*ActionDescriptor, bool) {
	if a.byName == nil {
		return nil, false
	}
	d, ok := a.byName[name]
	return d, ok
}

// DefaultRegistry is the process-wide registry that built-in action
// plug-ins register themselves into.
var DefaultRegistry = NewActionRegistry()

// RegisterAction is a convenience wrapper for plug-in init() functions.
func RegisterAction(d *ActionDescriptor) {
	DefaultRegistry.Register(d)
}

// Exit codes for ActionMain, named the way the original ERULE_xxx
// constants are.
const (
	ERuleOK          = 0
	ERuleOutOfBBox   = 1
	ERuleWayOpen     = 2
	ERuleWayClosed   = 3
	ERuleNoMatch     = 4
	ERuleInvisible   = 5
	ERuleNoMain      = 6
	ERuleWrongVer    = 7
	ERuleFinishedRun = 8
)
