// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/plugcheck/plugcheck/pkg/classfile"
)

// WholeArchive is the root that selects every member of an archive.
const WholeArchive = "."

type (
	// ArchiveLocator addresses a zip/jar archive on disk, or an archive nested
	// inside it via a chain of member names.
	ArchiveLocator struct {
		// Path is the filesystem path of the outermost archive.
		Path string
		// Entries are member names of nested archives, outermost first.
		Entries []string
	}

	// ArchiveResolver resolves classes stored under one root of an archive.
	// The member table is indexed once at construction; class bytes are read
	// and parsed on demand.
	ArchiveResolver struct {
		label   string
		locator ArchiveLocator
		root    string
		index   map[string]*zip.File

		closer    io.Closer
		closeOnce sync.Once
		closeErr  error
	}
)

// FileArchive returns a locator for an archive file on disk.
func FileArchive(path string) ArchiveLocator {
	return ArchiveLocator{Path: path}
}

// Nested returns a locator for member inside the archive addressed by l.
func (l ArchiveLocator) Nested(member string) ArchiveLocator {
	entries := make([]string, 0, len(l.Entries)+1)
	entries = append(entries, l.Entries...)
	entries = append(entries, strings.TrimPrefix(member, "/"))
	return ArchiveLocator{Path: l.Path, Entries: entries}
}

// IsNested reports whether the locator points inside another archive.
func (l ArchiveLocator) IsNested() bool { return len(l.Entries) > 0 }

// String renders the locator as a URI: "file:///p/a.zip" for a plain archive
// and "archive:file:///p/a.zip!/lib/dep.jar" for a nested one.
func (l ArchiveLocator) String() string {
	uri := fileURI(l.Path)
	if !l.IsNested() {
		return uri
	}
	var sb strings.Builder
	sb.WriteString("archive:")
	sb.WriteString(uri)
	for _, e := range l.Entries {
		sb.WriteString("!/")
		sb.WriteString(escapeMember(e))
	}
	return sb.String()
}

// open returns a reader over the addressed archive. The returned closer is
// nil for nested archives, which are held in memory.
func (l ArchiveLocator) open() (*zip.Reader, io.Closer, error) {
	rc, err := zip.OpenReader(l.Path)
	if err != nil {
		return nil, nil, &ArchiveReadError{Locator: l, Err: err}
	}
	if !l.IsNested() {
		return &rc.Reader, rc, nil
	}
	defer func() { _ = rc.Close() }() // read-only handle

	zr := &rc.Reader
	for i, entry := range l.Entries {
		data, readErr := readMember(zr, entry)
		if readErr != nil {
			return nil, nil, &ArchiveReadError{Locator: ArchiveLocator{Path: l.Path, Entries: l.Entries[:i+1]}, Err: readErr}
		}
		inner, zipErr := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if zipErr != nil {
			return nil, nil, &ArchiveReadError{Locator: ArchiveLocator{Path: l.Path, Entries: l.Entries[:i+1]}, Err: zipErr}
		}
		zr = inner
	}
	return zr, nil, nil
}

// NewArchiveResolver indexes the class files under root inside the archive
// addressed by locator. Use WholeArchive as root to index every member.
func NewArchiveResolver(label string, locator ArchiveLocator, root string) (*ArchiveResolver, error) {
	zr, closer, err := locator.open()
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimPrefix(root, "/")
	if prefix == WholeArchive {
		prefix = ""
	} else if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	index := make(map[string]*zip.File)
	for _, f := range zr.File {
		name := strings.TrimPrefix(f.Name, "/")
		if !strings.HasPrefix(name, prefix) || !classfile.IsClassFile(name) || f.FileInfo().IsDir() {
			continue
		}
		className := strings.TrimSuffix(strings.TrimPrefix(name, prefix), classfile.Suffix)
		if className == "" {
			continue
		}
		if _, dup := index[className]; !dup {
			index[className] = f
		}
	}

	return &ArchiveResolver{
		label:   label,
		locator: locator,
		root:    prefix,
		index:   index,
		closer:  closer,
	}, nil
}

// Locator returns the archive this resolver reads from.
func (r *ArchiveResolver) Locator() ArchiveLocator { return r.locator }

// Root returns the member prefix classes are indexed under ("" for the whole archive).
func (r *ArchiveResolver) Root() string { return r.root }

// FindClass opens and parses the member holding name.
func (r *ArchiveResolver) FindClass(name string) (_ *classfile.Class, err error) {
	f, ok := r.index[name]
	if !ok {
		return nil, nil
	}
	location := r.locator.String() + "!/" + f.Name
	rc, err := f.Open()
	if err != nil {
		return nil, &ClassReadError{Class: name, Location: location, Err: err}
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = &ClassReadError{Class: name, Location: location, Err: closeErr}
		}
	}()

	c, err := classfile.ParseReader(rc)
	if err != nil {
		return nil, &ClassReadError{Class: name, Location: location, Err: err}
	}
	return c, nil
}

// ClassLocation returns r when it indexes name.
func (r *ArchiveResolver) ClassLocation(name string) Resolver {
	if r.ContainsClass(name) {
		return r
	}
	return nil
}

// AllClasses returns every indexed binary name, sorted.
func (r *ArchiveResolver) AllClasses() []string { return sortedKeys(r.index) }

// IsEmpty reports whether no classes were indexed.
func (r *ArchiveResolver) IsEmpty() bool { return len(r.index) == 0 }

// ContainsClass reports whether name is indexed.
func (r *ArchiveResolver) ContainsClass(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Label returns the diagnostic label given at construction.
func (r *ArchiveResolver) Label() string { return r.label }

// String returns the label and the locator.
func (r *ArchiveResolver) String() string {
	return fmt.Sprintf("%s (%s)", r.label, r.locator)
}

// Close releases the archive file handle.
func (r *ArchiveResolver) Close() error {
	r.closeOnce.Do(func() {
		if r.closer != nil {
			r.closeErr = r.closer.Close()
		}
	})
	return r.closeErr
}

func readMember(zr *zip.Reader, member string) (_ []byte, err error) {
	for _, f := range zr.File {
		if strings.TrimPrefix(f.Name, "/") != member {
			continue
		}
		rc, openErr := f.Open()
		if openErr != nil {
			return nil, openErr
		}
		defer func() {
			if closeErr := rc.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("member %q: %w", member, errMemberNotFound)
}

var errMemberNotFound = errors.New("no such archive member")

func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

func escapeMember(member string) string {
	segments := strings.Split(member, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
