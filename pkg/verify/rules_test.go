// SPDX-License-Identifier: MPL-2.0

package verify

import (
	"path/filepath"
	"testing"

	"github.com/plugcheck/plugcheck/internal/testutil/classfiletest"
	"github.com/plugcheck/plugcheck/pkg/classfile"
	"github.com/plugcheck/plugcheck/pkg/classpath"
)

const runDesc = "()V"

// classpathOf writes classes to a jar and returns a resolver over it.
func classpathOf(t *testing.T, classes ...classfiletest.Class) classpath.Resolver {
	t.Helper()
	entries := make([]classfiletest.Entry, 0, len(classes))
	for _, c := range classes {
		entries = append(entries, classfiletest.ClassEntry("", c))
	}
	path := classfiletest.WriteArchive(t, filepath.Join(t.TempDir(), "cp.jar"), entries...)
	r, err := classpath.NewArchiveResolver("cp.jar", classpath.FileArchive(path), classpath.WholeArchive)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func withRun(name, super string, access classfile.AccessFlags) classfiletest.Class {
	c := classfiletest.Simple(name)
	c.SuperName = super
	c.Methods = []classfile.Method{{Name: "run", Descriptor: runDesc, Access: access}}
	return c
}

func TestFinalOverrideRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		superAccess classfile.AccessFlags
		subAccess   classfile.AccessFlags
		superExists bool
		want        int
	}{
		{"overrides final method", classfile.AccPublic | classfile.AccFinal, classfile.AccPublic, true, 1},
		{"overrides non-final method", classfile.AccPublic, classfile.AccPublic, true, 0},
		{"private method is skipped", classfile.AccPublic | classfile.AccFinal, classfile.AccPrivate, true, 0},
		{"final abstract is not reported", classfile.AccPublic | classfile.AccFinal | classfile.AccAbstract, classfile.AccPublic, true, 0},
		{"super class absent", 0, classfile.AccPublic, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			classes := []classfiletest.Class{withRun("p/Sub", "p/Base", tt.subAccess)}
			if tt.superExists {
				classes = append(classes, withRun("p/Base", classfile.ObjectClass, tt.superAccess))
			}
			resolver := classpathOf(t, classes...)

			sub, err := resolver.FindClass("p/Sub")
			if err != nil || sub == nil {
				t.Fatalf("FindClass(p/Sub) = %v, %v", sub, err)
			}

			var sink ProblemSink
			FinalOverrideRule{}.VerifyMethod(sub, &sub.Methods[0], resolver, &sink)

			problems := sink.Problems()
			if len(problems) != tt.want {
				t.Fatalf("problems = %v, want %d", problems, tt.want)
			}
			if tt.want == 1 {
				want := Problem{Subject: "p/Sub.run ()V", Message: "overriding final method", Rule: FinalOverrideRuleName}
				if problems[0] != want {
					t.Errorf("problem = %+v, want %+v", problems[0], want)
				}
			}
		})
	}
}

func TestFinalOverrideRule_SingleHop(t *testing.T) {
	t.Parallel()

	// The final method lives two levels up; only the direct super is checked.
	resolver := classpathOf(t,
		withRun("p/Root", classfile.ObjectClass, classfile.AccPublic|classfile.AccFinal),
		classfiletest.Class{Name: "p/Middle", SuperName: "p/Root", Access: classfile.AccPublic},
		withRun("p/Leaf", "p/Middle", classfile.AccPublic),
	)
	leaf, err := resolver.FindClass("p/Leaf")
	if err != nil {
		t.Fatal(err)
	}

	var sink ProblemSink
	FinalOverrideRule{}.VerifyMethod(leaf, &leaf.Methods[0], resolver, &sink)
	if sink.Len() != 0 {
		t.Errorf("problems = %v, want none", sink.Problems())
	}
}

func TestFindMethod(t *testing.T) {
	t.Parallel()

	resolver := classpathOf(t, withRun("p/Base", classfile.ObjectClass, classfile.AccPublic))

	if m := FindMethod(resolver, "p/Base", "run", runDesc); m == nil {
		t.Error("declared method not found")
	}
	if m := FindMethod(resolver, "p/Base", "run", "(I)V"); m != nil {
		t.Error("descriptor must match exactly")
	}
	if m := FindMethod(resolver, "p/Missing", "run", runDesc); m != nil {
		t.Error("absent owner should yield nil")
	}
	if m := FindMethod(resolver, "", "run", runDesc); m != nil {
		t.Error("empty owner should yield nil")
	}
}

func TestUnresolvedSuperClassRule(t *testing.T) {
	t.Parallel()

	resolver := classpathOf(t,
		classfiletest.Simple("p/Base"),
		classfiletest.Class{Name: "p/Ok", SuperName: "p/Base"},
		classfiletest.Class{Name: "p/Broken", SuperName: "q/Gone"},
		classfiletest.Class{Name: "p/Swing", SuperName: "javax/swing/JPanel"},
		classfiletest.Class{Name: "p/Ext", SuperName: "com/ide/Action"},
	)

	tests := []struct {
		class    string
		prefixes []string
		want     int
	}{
		{"p/Ok", nil, 0},
		{"p/Broken", nil, 1},
		{"p/Swing", nil, 0},
		{"p/Ext", nil, 1},
		{"p/Ext", []string{"com/ide/"}, 0},
		{"p/Base", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			t.Parallel()
			c, err := resolver.FindClass(tt.class)
			if err != nil || c == nil {
				t.Fatalf("FindClass(%s) = %v, %v", tt.class, c, err)
			}
			var sink ProblemSink
			NewUnresolvedSuperClassRule(tt.prefixes...).VerifyClass(c, resolver, &sink)
			if sink.Len() != tt.want {
				t.Errorf("problems = %v, want %d", sink.Problems(), tt.want)
			}
		})
	}
}
