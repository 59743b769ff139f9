// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IsArchiveFile reports whether path names a .jar or .zip file (case-insensitive).
func IsArchiveFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jar" || ext == ".zip"
}

// CollectArchives returns the regular files in dir accepted by accept, in
// lexical order. When recursive is false only direct children are considered.
func CollectArchives(dir string, accept func(path string) bool, recursive bool) ([]string, error) {
	var archives []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if accept(path) {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect archives under %s: %w", dir, err)
	}
	return archives, nil
}

// NewArchivesResolver opens every archive in paths as a whole-archive
// resolver and combines them in order. If any archive cannot be read the
// already opened ones are closed and the error is returned.
func NewArchivesResolver(label string, paths []string) (*CompositeResolver, error) {
	children := make([]Resolver, 0, len(paths))
	for _, p := range paths {
		r, err := NewArchiveResolver(filepath.Base(p), FileArchive(p), WholeArchive)
		if err != nil {
			_ = NewCompositeResolver(label, children...).Close()
			return nil, err
		}
		children = append(children, r)
	}
	return NewCompositeResolver(label, children...), nil
}

// NewPathResolver builds a resolver for one classpath entry: a directory of
// class files or a single jar/zip archive.
func NewPathResolver(path string) (Resolver, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open classpath entry: %w", err)
	}
	if info.IsDir() {
		files, collectErr := CollectClassFiles(path)
		if collectErr != nil {
			return nil, collectErr
		}
		dr, dirErr := NewDirectoryResolver(path, path, files)
		if dirErr != nil {
			return nil, dirErr
		}
		return dr, nil
	}
	if !IsArchiveFile(path) {
		return nil, fmt.Errorf("classpath entry %s is neither a directory nor a .jar/.zip archive", path)
	}
	ar, err := NewArchiveResolver(filepath.Base(path), FileArchive(path), WholeArchive)
	if err != nil {
		return nil, err
	}
	return ar, nil
}
