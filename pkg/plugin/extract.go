// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/plugcheck/plugcheck/pkg/platform"
)

var (
	// ErrUnsafeMember is returned when an archive member would be extracted
	// outside the destination directory.
	ErrUnsafeMember = errors.New("archive member escapes destination")

	// ErrReservedMemberName is returned on Windows when an archive member
	// path contains a reserved device name such as "aux" or "nul".
	ErrReservedMemberName = errors.New("archive member uses a reserved file name")
)

// Extract unpacks the zip archive at archivePath into a new temporary
// directory created under tempParent (os.TempDir() when empty) and returns
// its path. A single top-level directory wrapping the whole archive is
// stripped unless it is itself a layout directory (classes/ or lib/). The caller owns the returned directory; on error nothing is left
// behind.
func Extract(archivePath, tempParent string) (dir string, err error) {
	if tempParent != "" {
		if err = os.MkdirAll(tempParent, 0o755); err != nil {
			return "", fmt.Errorf("failed to create temp directory: %w", err)
		}
	}
	dir, err = os.MkdirTemp(tempParent, "plugcheck-plugin-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir) // best-effort cleanup of partial extraction
			dir = ""
		}
	}()

	if err = unzipInto(archivePath, dir); err != nil {
		return "", err
	}
	if err = stripTopLevelDirectory(dir, ClassesDirName, LibDirName); err != nil {
		return "", fmt.Errorf("failed to strip top-level directory: %w", err)
	}
	return dir, nil
}

func unzipInto(archivePath, destDir string) (err error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		if zr != nil {
			_ = zr.Close() // returned alongside zip.ErrInsecurePath
		}
		return fmt.Errorf("failed to open ZIP file: %w", err)
	}
	defer func() {
		if closeErr := zr.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, file := range zr.File {
		if err := checkMemberName(file.Name, runtime.GOOS); err != nil {
			return err
		}
		destPath := filepath.Join(destDir, filepath.FromSlash(file.Name))

		relPath, relErr := filepath.Rel(destDir, destPath)
		if relErr != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			return fmt.Errorf("%w: %s", ErrUnsafeMember, file.Name)
		}

		if file.FileInfo().IsDir() {
			if mkdirErr := os.MkdirAll(destPath, 0o755); mkdirErr != nil {
				return fmt.Errorf("failed to create directory: %w", mkdirErr)
			}
			continue
		}

		if mkdirErr := os.MkdirAll(filepath.Dir(destPath), 0o755); mkdirErr != nil {
			return fmt.Errorf("failed to create parent directory: %w", mkdirErr)
		}
		if extractErr := extractFile(file, destPath); extractErr != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, extractErr)
		}
	}
	return nil
}

// checkMemberName rejects member paths that goos cannot create.
func checkMemberName(name, goos string) error {
	if goos != platform.Windows {
		return nil
	}
	if seg, ok := platform.ReservedSegment(name); ok {
		return fmt.Errorf("%w: %s (%s)", ErrReservedMemberName, name, seg)
	}
	return nil
}

func extractFile(file *zip.File, destPath string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	//nolint:gosec // G110: plugin archives are supplied by the operator
	_, err = io.Copy(destFile, rc)
	return err
}

// stripTopLevelDirectory replaces dir/<single>/... with dir/... when dir
// holds exactly one entry, that entry is a directory and its name is not in
// keep. A child with the same name as the stripped directory ("s/s/b.txt") is
// handled by moving the wrapper aside first.
func stripTopLevelDirectory(dir string, keep ...string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() || slices.Contains(keep, entries[0].Name()) {
		return nil
	}

	wrapper, err := os.MkdirTemp(dir, ".strip-*")
	if err != nil {
		return err
	}
	moved := filepath.Join(wrapper, entries[0].Name())
	if err := os.Rename(filepath.Join(dir, entries[0].Name()), moved); err != nil {
		return err
	}

	children, err := os.ReadDir(moved)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := os.Rename(filepath.Join(moved, child.Name()), filepath.Join(dir, child.Name())); err != nil {
			return err
		}
	}
	return os.RemoveAll(wrapper)
}
