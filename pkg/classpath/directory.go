// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/plugcheck/plugcheck/pkg/classfile"
)

// DirectoryResolver resolves classes from an explicit list of class files
// below a common root directory.
type DirectoryResolver struct {
	label string
	root  string
	index map[string]string // binary name -> file path
}

// NewDirectoryResolver indexes files, which must all live below root.
// Binary names are derived by stripping root and the class-file suffix.
func NewDirectoryResolver(label, root string, files []string) (*DirectoryResolver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve class root %s: %w", root, err)
	}

	index := make(map[string]string, len(files))
	for _, file := range files {
		absFile, absErr := filepath.Abs(file)
		if absErr != nil {
			return nil, fmt.Errorf("failed to resolve class file %s: %w", file, absErr)
		}
		rel, relErr := filepath.Rel(absRoot, absFile)
		if relErr != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("class file %s is not below %s", file, root)
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), classfile.Suffix)
		if _, dup := index[name]; !dup {
			index[name] = absFile
		}
	}

	return &DirectoryResolver{label: label, root: absRoot, index: index}, nil
}

// CollectClassFiles walks dir recursively and returns every regular file
// with the class-file suffix, in lexical walk order.
func CollectClassFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && classfile.IsClassFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect class files under %s: %w", dir, err)
	}
	return files, nil
}

// Root returns the absolute class root directory.
func (r *DirectoryResolver) Root() string { return r.root }

// FindClass reads and parses the file holding name.
func (r *DirectoryResolver) FindClass(name string) (*classfile.Class, error) {
	path, ok := r.index[name]
	if !ok {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ClassReadError{Class: name, Location: path, Err: err}
	}
	c, err := classfile.Parse(data)
	if err != nil {
		return nil, &ClassReadError{Class: name, Location: path, Err: err}
	}
	return c, nil
}

// ClassLocation returns r when it indexes name.
func (r *DirectoryResolver) ClassLocation(name string) Resolver {
	if r.ContainsClass(name) {
		return r
	}
	return nil
}

// AllClasses returns every indexed binary name, sorted.
func (r *DirectoryResolver) AllClasses() []string { return sortedKeys(r.index) }

// IsEmpty reports whether no classes were indexed.
func (r *DirectoryResolver) IsEmpty() bool { return len(r.index) == 0 }

// ContainsClass reports whether name is indexed.
func (r *DirectoryResolver) ContainsClass(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Label returns the diagnostic label given at construction.
func (r *DirectoryResolver) Label() string { return r.label }

// String returns the label and the root directory.
func (r *DirectoryResolver) String() string {
	return fmt.Sprintf("%s (%s)", r.label, r.root)
}

// Close is a no-op; files are opened per lookup.
func (r *DirectoryResolver) Close() error { return nil }
