// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"archive/zip"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/plugcheck/plugcheck/pkg/classfile"
	"github.com/plugcheck/plugcheck/pkg/classpath"
)

const (
	// ClassesDirName is the directory holding compiled plugin classes.
	ClassesDirName = "classes"
	// LibDirName is the directory holding bundled library archives.
	LibDirName = "lib"

	classesDirLabel = "classes directory"
	rootDirLabel    = "root directory"
)

// Classpath is the resolved classpath of one plugin package. It implements
// classpath.Resolver by delegating to a single composite built at
// construction time, and is immutable afterwards.
//
// When the classpath owns its package path (an extraction made for it), Close
// removes that path after closing the resolvers.
type Classpath struct {
	path     string
	form     PackageForm
	owned    bool
	resolver *classpath.CompositeResolver

	closeOnce sync.Once
}

var _ classpath.Resolver = (*Classpath)(nil)

// Build resolves the classpath of a plugin package already classified as
// form. owned marks path as a temporary copy that the returned classpath
// takes ownership of; it is removed on Close, or immediately if Build fails.
//
// Any failure to read the package aborts the build with an
// *IncorrectPluginError; a partial classpath is never returned.
func Build(path string, form PackageForm, owned bool) (cp *Classpath, err error) {
	if owned {
		defer func() {
			if err != nil {
				removeOwned(path)
			}
		}()
	}

	if formErr := form.Validate(); formErr != nil {
		return nil, &IncorrectPluginError{
			Path:   path,
			Reason: "plugin is not a correct file type, it must be a directory, a zip or a jar file",
			Err:    formErr,
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &IncorrectPluginError{Path: path, Reason: "plugin file doesn't exist", Err: ErrPluginNotFound}
		}
		return nil, &IncorrectPluginError{Path: path, Reason: "failed to inspect plugin file", Err: err}
	}
	if info.IsDir() != (form == FormDirectory) {
		return nil, &IncorrectPluginError{Path: path, Reason: fmt.Sprintf("path does not match package form %s", form)}
	}

	var resolver *classpath.CompositeResolver
	if form == FormDirectory {
		resolver, err = loadFromDirectory(path)
	} else {
		resolver, err = loadFromArchive(path)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("resolved plugin classpath",
		"path", path, "form", form, "entries", len(resolver.Children()), "owned", owned)

	return &Classpath{path: path, form: form, owned: owned, resolver: resolver}, nil
}

// loadFromArchive builds the classpath of a zip or jar package. Classes
// roots and lib archives are added in member order; if the archive has no
// classes root at all it is treated as a plain (possibly renamed) jar.
func loadFromArchive(path string) (*classpath.CompositeResolver, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &IncorrectPluginError{Path: path, Reason: "unable to read plugin classes from " + filepath.Base(path), Err: err}
	}
	defer func() { _ = zr.Close() }() // read-only handle

	outer := classpath.FileArchive(path)
	var children []classpath.Resolver
	fail := func(member string, cause error) (*classpath.CompositeResolver, error) {
		_ = classpath.NewCompositeResolver("", children...).Close()
		return nil, &IncorrectPluginError{Path: path, Reason: "unable to read plugin classes from " + member, Err: cause}
	}
	keep := func(r *classpath.ArchiveResolver) {
		if r.IsEmpty() {
			_ = r.Close()
			return
		}
		children = append(children, r)
	}

	sawClassesRoot := false
	for _, f := range zr.File {
		if IsClassesRoot(f.Name) {
			sawClassesRoot = true
			r, resolveErr := classpath.NewArchiveResolver(classesDirLabel, outer, f.Name)
			if resolveErr != nil {
				return fail(f.Name, resolveErr)
			}
			keep(r)
		}

		if innerName, ok := MatchLibArchive(f.Name); ok {
			r, resolveErr := classpath.NewArchiveResolver(innerName, outer.Nested(f.Name), classpath.WholeArchive)
			if resolveErr != nil {
				return fail(f.Name, resolveErr)
			}
			keep(r)
		}
	}

	if !sawClassesRoot {
		r, resolveErr := classpath.NewArchiveResolver(filepath.Base(path), outer, classpath.WholeArchive)
		if resolveErr != nil {
			return fail(filepath.Base(path), resolveErr)
		}
		keep(r)
	}

	return classpath.NewCompositeResolver(compositeLabel(path), children...), nil
}

// loadFromDirectory builds the classpath of an unpacked plugin directory:
// classes/ (or the root itself when there is no classes/) followed by the
// archives under lib/.
func loadFromDirectory(dir string) (*classpath.CompositeResolver, error) {
	var children []classpath.Resolver

	classesDir := filepath.Join(dir, ClassesDirName)
	hasClasses, err := isDir(classesDir)
	if err != nil {
		return nil, &IncorrectPluginError{Path: dir, Reason: "unable to read classes directory", Err: err}
	}
	root, label := dir, rootDirLabel
	if hasClasses {
		root, label = classesDir, classesDirLabel
	}

	files, err := classpath.CollectClassFiles(root)
	if err != nil {
		return nil, &IncorrectPluginError{Path: dir, Reason: "unable to read " + label, Err: err}
	}
	rootResolver, err := classpath.NewDirectoryResolver(label, root, files)
	if err != nil {
		return nil, &IncorrectPluginError{Path: dir, Reason: "unable to read " + label, Err: err}
	}
	if !rootResolver.IsEmpty() {
		children = append(children, rootResolver)
	}

	libDir := filepath.Join(dir, LibDirName)
	hasLib, err := isDir(libDir)
	if err != nil {
		return nil, &IncorrectPluginError{Path: dir, Reason: "unable to read lib directory", Err: err}
	}
	if hasLib {
		archives, collectErr := classpath.CollectArchives(libDir, classpath.IsArchiveFile, true)
		if collectErr != nil {
			return nil, &IncorrectPluginError{Path: dir, Reason: "unable to read lib directory", Err: collectErr}
		}
		libResolver, libErr := classpath.NewArchivesResolver("lib archives: "+libDir, archives)
		if libErr != nil {
			return nil, &IncorrectPluginError{Path: dir, Reason: "unable to read lib directory", Err: libErr}
		}
		children = append(children, libResolver)
	}

	return classpath.NewCompositeResolver(compositeLabel(dir), children...), nil
}

// Path returns the package path the classpath was built from.
func (c *Classpath) Path() string { return c.path }

// Form returns the package form the classpath was built from.
func (c *Classpath) Form() PackageForm { return c.form }

// Owned reports whether Close removes Path.
func (c *Classpath) Owned() bool { return c.owned }

// Entries returns the ordered top-level classpath entries.
func (c *Classpath) Entries() []classpath.Resolver { return c.resolver.Children() }

// FindClass returns the class from the first classpath entry containing name.
func (c *Classpath) FindClass(name string) (*classfile.Class, error) {
	return c.resolver.FindClass(name)
}

// ClassLocation returns the leaf resolver that owns name, or nil.
func (c *Classpath) ClassLocation(name string) classpath.Resolver {
	return c.resolver.ClassLocation(name)
}

// AllClasses returns every class on the plugin classpath, sorted.
func (c *Classpath) AllClasses() []string { return c.resolver.AllClasses() }

// IsEmpty reports whether the plugin contains no classes.
func (c *Classpath) IsEmpty() bool { return c.resolver.IsEmpty() }

// ContainsClass reports whether name is on the plugin classpath.
func (c *Classpath) ContainsClass(name string) bool { return c.resolver.ContainsClass(name) }

// Label returns the diagnostic label of the classpath.
func (c *Classpath) Label() string { return c.resolver.Label() }

// Close closes every classpath entry and, for an owned package, removes it.
// Cleanup failures are logged and never returned. Close is idempotent.
func (c *Classpath) Close() error {
	c.closeOnce.Do(func() {
		_ = c.resolver.Close()
		if c.owned {
			removeOwned(c.path)
		}
	})
	return nil
}

func removeOwned(path string) {
	if err := os.RemoveAll(path); err != nil {
		slog.Warn("failed to remove extracted plugin", "path", path, "error", err)
		return
	}
	slog.Debug("removed extracted plugin", "path", path)
}

func compositeLabel(path string) string {
	return "plugin resolver of " + filepath.Base(path)
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
