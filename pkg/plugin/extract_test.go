// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/plugcheck/plugcheck/internal/testutil/classfiletest"
)

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func mkdir(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readText(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestStripTopLevelDirectory(t *testing.T) {
	t.Parallel()

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()
		f := t.TempDir()
		if err := stripTopLevelDirectory(f); err != nil {
			t.Fatal(err)
		}
		if names := listNames(t, f); len(names) != 0 {
			t.Errorf("entries = %v, want none", names)
		}
	})

	t.Run("single empty directory", func(t *testing.T) {
		t.Parallel()
		f := t.TempDir()
		mkdir(t, filepath.Join(f, "empty"))
		if err := stripTopLevelDirectory(f); err != nil {
			t.Fatal(err)
		}
		if names := listNames(t, f); len(names) != 0 {
			t.Errorf("entries = %v, want none", names)
		}
	})

	t.Run("more than one entry is unchanged", func(t *testing.T) {
		t.Parallel()
		f := t.TempDir()
		mkdir(t, filepath.Join(f, "a"))
		mkdir(t, filepath.Join(f, "b"))
		if err := stripTopLevelDirectory(f); err != nil {
			t.Fatal(err)
		}
		if got := listNames(t, f); !slices.Equal(got, []string{"a", "b"}) {
			t.Errorf("entries = %v", got)
		}
	})

	t.Run("single file is unchanged", func(t *testing.T) {
		t.Parallel()
		f := t.TempDir()
		writeText(t, filepath.Join(f, "only.txt"), "x")
		if err := stripTopLevelDirectory(f); err != nil {
			t.Fatal(err)
		}
		if got := listNames(t, f); !slices.Equal(got, []string{"only.txt"}) {
			t.Errorf("entries = %v", got)
		}
	})

	t.Run("stripped", func(t *testing.T) {
		t.Parallel()
		f := t.TempDir()
		s := mkdir(t, filepath.Join(f, "s"))
		mkdir(t, filepath.Join(s, "a"))
		writeText(t, filepath.Join(s, "b"), "42")
		if err := stripTopLevelDirectory(f); err != nil {
			t.Fatal(err)
		}
		if got := listNames(t, f); !slices.Equal(got, []string{"a", "b"}) {
			t.Errorf("entries = %v", got)
		}
		if got := readText(t, filepath.Join(f, "b")); got != "42" {
			t.Errorf("b = %q", got)
		}
	})

	t.Run("kept directory is not stripped", func(t *testing.T) {
		t.Parallel()
		f := t.TempDir()
		lib := mkdir(t, filepath.Join(f, LibDirName))
		writeText(t, filepath.Join(lib, "dep.jar"), "x")
		if err := stripTopLevelDirectory(f, ClassesDirName, LibDirName); err != nil {
			t.Fatal(err)
		}
		if got := listNames(t, f); !slices.Equal(got, []string{LibDirName}) {
			t.Errorf("entries = %v", got)
		}
		if got := listNames(t, lib); !slices.Equal(got, []string{"dep.jar"}) {
			t.Errorf("lib entries = %v", got)
		}
	})

	t.Run("child named like the wrapper", func(t *testing.T) {
		t.Parallel()
		f := t.TempDir()
		s := mkdir(t, filepath.Join(f, "s"))
		mkdir(t, filepath.Join(s, "a"))
		ss := mkdir(t, filepath.Join(s, "s"))
		writeText(t, filepath.Join(ss, "b.txt"), "42")
		if err := stripTopLevelDirectory(f); err != nil {
			t.Fatal(err)
		}
		if got := listNames(t, f); !slices.Equal(got, []string{"a", "s"}) {
			t.Errorf("entries = %v", got)
		}
		if got := readText(t, filepath.Join(f, "s", "b.txt")); got != "42" {
			t.Errorf("s/b.txt = %q", got)
		}
	})
}

func TestExtract(t *testing.T) {
	t.Parallel()

	src := classfiletest.WriteArchive(t, filepath.Join(t.TempDir(), "p.zip"),
		classfiletest.Entry{Name: "my-plugin/"},
		classfiletest.Entry{Name: "my-plugin/classes/"},
		classfiletest.ClassEntry("my-plugin/classes", classfiletest.Simple("com/x/A")),
		classfiletest.Entry{Name: "my-plugin/lib/dep.jar", Data: classfiletest.ArchiveBytes(t)},
	)
	parent := t.TempDir()

	dir, err := Extract(src, parent)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if filepath.Dir(dir) != parent {
		t.Errorf("Extract() = %s, want a child of %s", dir, parent)
	}
	if got := listNames(t, dir); !slices.Equal(got, []string{ClassesDirName, LibDirName}) {
		t.Errorf("extracted entries = %v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "classes", "com", "x", "A.class")); err != nil {
		t.Errorf("class file missing: %v", err)
	}
}

func TestExtract_RejectsEscapingMembers(t *testing.T) {
	t.Parallel()

	src := classfiletest.WriteArchive(t, filepath.Join(t.TempDir(), "evil.zip"),
		classfiletest.Entry{Name: "../evil.txt", Data: []byte("x")},
	)
	parent := t.TempDir()

	if _, err := Extract(src, parent); err == nil {
		t.Fatal("Extract() should reject a member escaping the destination")
	}
	if names := listNames(t, parent); len(names) != 0 {
		t.Errorf("partial extraction left behind: %v", names)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(parent), "evil.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Error("escaping member was written")
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	src := classfiletest.WriteArchive(t, filepath.Join(t.TempDir(), "p.zip"),
		classfiletest.Entry{Name: "p/"},
		classfiletest.Entry{Name: "p/classes/"},
		classfiletest.ClassEntry("p/classes", classfiletest.Simple("com/x/A")),
	)

	t.Run("extracted zip is owned", func(t *testing.T) {
		t.Parallel()
		cp, err := Open(src, OpenOptions{ExtractArchives: true, TempDir: t.TempDir()})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if !cp.Owned() || cp.Form() != FormDirectory {
			t.Errorf("Owned() = %v, Form() = %s", cp.Owned(), cp.Form())
		}
		if !cp.ContainsClass("com/x/A") {
			t.Error("extracted classpath is missing com/x/A")
		}
		extracted := cp.Path()
		_ = cp.Close()
		if _, err := os.Stat(extracted); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("extraction directory not removed: %v", err)
		}
		if _, err := os.Stat(src); err != nil {
			t.Errorf("source archive touched: %v", err)
		}
	})

	t.Run("zip read in place", func(t *testing.T) {
		t.Parallel()
		cp, err := Open(src, OpenOptions{})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer func() { _ = cp.Close() }()
		if cp.Owned() || cp.Form() != FormZip || cp.Path() != src {
			t.Errorf("Owned() = %v, Form() = %s, Path() = %s", cp.Owned(), cp.Form(), cp.Path())
		}
		if !cp.ContainsClass("com/x/A") {
			t.Error("classpath is missing com/x/A")
		}
	})

	t.Run("extraction agrees with in-place reading", func(t *testing.T) {
		t.Parallel()
		dep := classfiletest.ArchiveBytes(t, classfiletest.ClassEntry("", classfiletest.Simple("org/y/B")))
		tests := []struct {
			name    string
			entries []classfiletest.Entry
			want    []string
		}{
			{
				name:    "only lib",
				entries: []classfiletest.Entry{{Name: "lib/dep.jar", Data: dep}},
				want:    []string{"org/y/B"},
			},
			{
				name: "only classes",
				entries: []classfiletest.Entry{
					{Name: "classes/"},
					classfiletest.ClassEntry("classes", classfiletest.Simple("com/x/A")),
				},
				want: []string{"com/x/A"},
			},
			{
				name: "wrapped classes and lib",
				entries: []classfiletest.Entry{
					{Name: "p/"},
					{Name: "p/classes/"},
					classfiletest.ClassEntry("p/classes", classfiletest.Simple("com/x/A")),
					{Name: "p/lib/dep.jar", Data: dep},
				},
				want: []string{"com/x/A", "org/y/B"},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				zipPath := classfiletest.WriteArchive(t, filepath.Join(t.TempDir(), "p.zip"), tt.entries...)

				extracted, err := Open(zipPath, OpenOptions{ExtractArchives: true, TempDir: t.TempDir()})
				if err != nil {
					t.Fatalf("Open(extract) error = %v", err)
				}
				defer func() { _ = extracted.Close() }()
				inPlace, err := Open(zipPath, OpenOptions{})
				if err != nil {
					t.Fatalf("Open(in place) error = %v", err)
				}
				defer func() { _ = inPlace.Close() }()

				got := extracted.AllClasses()
				slices.Sort(got)
				if !slices.Equal(got, tt.want) {
					t.Errorf("extracted AllClasses() = %v, want %v", got, tt.want)
				}
				inPlaceClasses := inPlace.AllClasses()
				slices.Sort(inPlaceClasses)
				if !slices.Equal(got, inPlaceClasses) {
					t.Errorf("extracted AllClasses() = %v, in place = %v", got, inPlaceClasses)
				}
			})
		}
	})

	t.Run("unsupported file", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(t.TempDir(), "plugin.txt")
		writeText(t, p, "x")
		if _, err := Open(p, OpenOptions{ExtractArchives: true}); !errors.Is(err, ErrIncorrectPlugin) {
			t.Errorf("Open() error = %v, want ErrIncorrectPlugin", err)
		}
	})
}

func TestCheckMemberName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		member  string
		goos    string
		wantErr bool
	}{
		{"regular member on windows", "plugin/classes/com/x/A.class", "windows", false},
		{"reserved directory on windows", "plugin/aux/A.class", "windows", true},
		{"reserved file on windows", "plugin/lib/con.jar", "windows", true},
		{"reserved name elsewhere", "plugin/aux/A.class", "linux", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := checkMemberName(tt.member, tt.goos)
			if tt.wantErr != (err != nil) {
				t.Fatalf("checkMemberName(%q, %q) = %v, wantErr %v", tt.member, tt.goos, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrReservedMemberName) {
				t.Errorf("error should wrap ErrReservedMemberName, got %v", err)
			}
		})
	}
}
