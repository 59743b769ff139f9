// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPackageForm_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		form    PackageForm
		wantErr bool
	}{
		{FormDirectory, false},
		{FormZip, false},
		{FormJar, false},
		{"", true},
		{"war", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.form), func(t *testing.T) {
			t.Parallel()
			err := tt.form.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPackageForm) {
				t.Errorf("error should wrap ErrInvalidPackageForm, got %v", err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name     string
		path     string
		want     PackageForm
		sentinel error
	}{
		{"directory", dir, FormDirectory, nil},
		{"zip", write("a.zip"), FormZip, nil},
		{"jar upper case", write("b.JAR"), FormJar, nil},
		{"text file", write("c.txt"), "", ErrIncorrectPlugin},
		{"missing", filepath.Join(dir, "missing.jar"), "", ErrPluginNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Classify(tt.path)
			if tt.sentinel != nil {
				if !errors.Is(err, tt.sentinel) {
					t.Errorf("Classify() error = %v, want %v", err, tt.sentinel)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	classesTests := []struct {
		name string
		want bool
	}{
		{"classes/", true},
		{"my-plugin/classes/", true},
		{"classes", false},
		{"classes/com/x/A.class", false},
		{"a/b/classes/", false},
		{"my-plugin/classes-old/", false},
	}
	for _, tt := range classesTests {
		if got := IsClassesRoot(tt.name); got != tt.want {
			t.Errorf("IsClassesRoot(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	libTests := []struct {
		name     string
		wantFile string
		wantOK   bool
	}{
		{"lib/dep.jar", "dep.jar", true},
		{"my-plugin/lib/util.zip", "util.zip", true},
		{"lib/nested/dep.jar", "", false},
		{"a/b/lib/dep.jar", "", false},
		{"lib/readme.txt", "", false},
		{"lib/", "", false},
	}
	for _, tt := range libTests {
		file, ok := MatchLibArchive(tt.name)
		if ok != tt.wantOK || file != tt.wantFile {
			t.Errorf("MatchLibArchive(%q) = %q, %v; want %q, %v", tt.name, file, ok, tt.wantFile, tt.wantOK)
		}
	}
}
