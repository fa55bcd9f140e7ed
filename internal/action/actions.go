// Package action holds the built-in action plug-ins, standing in for
// the dlopen'd act_<name>_main/_ini/_fini shared libraries of the
// original core. Each plug-in self-registers into
// smrender.DefaultRegistry from an init() function, the same way a
// real shared-library plug-in would register its symbol triple at load
// time — only the loading mechanism differs.
package action

import (
	"fmt"
	"os"

	"github.com/rahra/smrender"
)

func init() {
	smrender.RegisterAction(&smrender.ActionDescriptor{
		Name: "set",
		Main: setMain,
	})
	smrender.RegisterAction(&smrender.ActionDescriptor{
		Name: "del",
		Main: delMain,
	})
	smrender.RegisterAction(&smrender.ActionDescriptor{
		Name: "tag",
		Main: tagMain,
	})
	smrender.RegisterAction(&smrender.ActionDescriptor{
		Name: "out",
		Ini:  outIni,
		Main: outMain,
		Fini: outFini,
	})
}

// setMain overwrites (or adds) a tag named by the "key" param with the
// value of the "value" param on every matching object.
func setMain(r *smrender.Rule, o smrender.Object) (int, error) {
	key, ok := r.GetParam("key")
	if !ok {
		return smrender.ERuleNoMain, fmt.Errorf("action/set: missing key param")
	}
	val, _ := r.GetParam("value")
	hdr := o.Hdr()
	for i, t := range hdr.Tags {
		if t.K.EqualString(key) {
			hdr.Tags[i].V = smrender.BStringFromString(val)
			return smrender.ERuleOK, nil
		}
	}
	hdr.Tags = append(hdr.Tags, smrender.Tag{K: smrender.BStringFromString(key), V: smrender.BStringFromString(val)})
	return smrender.ERuleOK, nil
}

// delMain removes the tag named by the "key" param from every matching
// object, by swap-and-pop like the rule compiler's own tag removal.
func delMain(r *smrender.Rule, o smrender.Object) (int, error) {
	key, ok := r.GetParam("key")
	if !ok {
		return smrender.ERuleNoMain, fmt.Errorf("action/del: missing key param")
	}
	hdr := o.Hdr()
	for i, t := range hdr.Tags {
		if t.K.EqualString(key) {
			last := len(hdr.Tags) - 1
			hdr.Tags[i] = hdr.Tags[last]
			hdr.Tags = hdr.Tags[:last]
			return smrender.ERuleOK, nil
		}
	}
	return smrender.ERuleNoMatch, nil
}

// tagMain appends a literal suffix (the "value" param) to a tag named by
// the "key" param, creating it if absent — e.g. rules appending "A"
// then "B" across version passes to trace execution order.
func tagMain(r *smrender.Rule, o smrender.Object) (int, error) {
	key, ok := r.GetParam("key")
	if !ok {
		return smrender.ERuleNoMain, fmt.Errorf("action/tag: missing key param")
	}
	suffix, _ := r.GetParam("value")
	hdr := o.Hdr()
	for i, t := range hdr.Tags {
		if t.K.EqualString(key) {
			hdr.Tags[i].V = smrender.BStringFromString(t.V.String() + suffix)
			return smrender.ERuleOK, nil
		}
	}
	hdr.Tags = append(hdr.Tags, smrender.Tag{K: smrender.BStringFromString(key), V: smrender.BStringFromString(suffix)})
	return smrender.ERuleOK, nil
}

// out streams every matching object to a file named by the "file" param
// (or to os.DevNull when the param is absent) as a smoke test of the ini/main/
// fini lifecycle: ini opens the file, main writes one summary line per
// object, fini closes it.
type outState struct {
	f *os.File
}

func outIni(r *smrender.Rule) error {
	path, ok := r.GetParam("file")
	if !ok {
		path = os.DevNull
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	r.SetUserData(&outState{f: f})
	return nil
}

func outMain(r *smrender.Rule, o smrender.Object) (int, error) {
	st, _ := r.UserData().(*outState)
	if st == nil {
		return smrender.ERuleNoMain, fmt.Errorf("action/out: ini did not run")
	}
	hdr := o.Hdr()
	_, err := fmt.Fprintf(st.f, "%s %d v%d\n", hdr.Type, hdr.ID, hdr.Version)
	if err != nil {
		return smrender.ERuleNoMain, err
	}
	return smrender.ERuleOK, nil
}

func outFini(r *smrender.Rule) error {
	st, _ := r.UserData().(*outState)
	if st == nil || st.f == nil {
		return nil
	}
	return st.f.Close()
}
