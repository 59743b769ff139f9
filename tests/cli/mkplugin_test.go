// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"os"
	"path/filepath"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/plugcheck/plugcheck/internal/testutil/classfiletest"
	"github.com/plugcheck/plugcheck/pkg/classfile"
)

// fixtures maps a mkplugin kind to the archive members it writes.
var fixtures = map[string]func() ([]classfiletest.Entry, error){
	// A zip distribution with a classes root and a library jar.
	"compatible": func() ([]classfiletest.Entry, error) {
		dep, err := classfiletest.EncodeArchive(classfiletest.ClassEntry("", classfiletest.Simple("org/dep/Util")))
		if err != nil {
			return nil, err
		}
		return []classfiletest.Entry{
			{Name: "plugin/"},
			{Name: "plugin/classes/"},
			classfiletest.ClassEntry("plugin/classes/", classfiletest.Simple("com/ok/Main")),
			{Name: "plugin/lib/dep.jar", Data: dep},
		}, nil
	},
	// A jar overriding a final method of its own base class.
	"final-override": func() ([]classfiletest.Entry, error) {
		return []classfiletest.Entry{
			classfiletest.ClassEntry("", withRun("com/x/Base", classfile.ObjectClass, classfile.AccPublic|classfile.AccFinal)),
			classfiletest.ClassEntry("", withRun("com/x/Sub", "com/x/Base", classfile.AccPublic)),
		}, nil
	},
	// A jar whose class extends a class supplied by the host.
	"needs-host": func() ([]classfiletest.Entry, error) {
		return []classfiletest.Entry{
			classfiletest.ClassEntry("", classfiletest.Class{Name: "com/p/MyAction", SuperName: "org/host/Action", Access: classfile.AccPublic}),
		}, nil
	},
	// The host library for needs-host.
	"host": func() ([]classfiletest.Entry, error) {
		return []classfiletest.Entry{
			classfiletest.ClassEntry("", classfiletest.Simple("org/host/Action")),
		}, nil
	},
}

func withRun(name, super string, access classfile.AccessFlags) classfiletest.Class {
	c := classfiletest.Simple(name)
	c.SuperName = super
	c.Methods = []classfile.Method{{Name: "run", Descriptor: "()V", Access: access}}
	return c
}

// cmdMkplugin implements "mkplugin <kind> <path>".
func cmdMkplugin(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! mkplugin")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: mkplugin <kind> <path>")
	}
	build, ok := fixtures[args[0]]
	if !ok {
		ts.Fatalf("unknown plugin kind %q", args[0])
	}
	entries, err := build()
	ts.Check(err)
	data, err := classfiletest.EncodeArchive(entries...)
	ts.Check(err)

	path := ts.MkAbs(args[1])
	ts.Check(os.MkdirAll(filepath.Dir(path), 0o755))
	ts.Check(os.WriteFile(path, data, 0o644))
}
