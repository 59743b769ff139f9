// SPDX-License-Identifier: MPL-2.0

// Package classfiletest assembles class files and plugin archives for tests.
package classfiletest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plugcheck/plugcheck/pkg/classfile"
)

type (
	// Class describes a class file to assemble. Methods may be empty.
	Class struct {
		Name       string
		SuperName  string
		Access     classfile.AccessFlags
		Interfaces []string
		Methods    []classfile.Method
	}

	// Entry is one member written by WriteArchive. A nil Data with a Name
	// ending in "/" produces an explicit directory entry.
	Entry struct {
		Name string
		Data []byte
	}

	poolBuilder struct {
		buf     bytes.Buffer
		count   uint16
		utf8s   map[string]uint16
		classes map[string]uint16
	}
)

// Bytes encodes c as a minimal, valid Java 8 class file.
func (c Class) Bytes() []byte {
	pool := &poolBuilder{count: 1, utf8s: map[string]uint16{}, classes: map[string]uint16{}}
	thisIdx := pool.class(c.Name)
	var superIdx uint16
	if c.SuperName != "" {
		superIdx = pool.class(c.SuperName)
	}
	ifaceIdx := make([]uint16, 0, len(c.Interfaces))
	for _, iface := range c.Interfaces {
		ifaceIdx = append(ifaceIdx, pool.class(iface))
	}
	type methodRef struct {
		access     classfile.AccessFlags
		name, desc uint16
	}
	methods := make([]methodRef, 0, len(c.Methods))
	for _, m := range c.Methods {
		methods = append(methods, methodRef{access: m.Access, name: pool.utf8(m.Name), desc: pool.utf8(m.Descriptor)})
	}

	var out bytes.Buffer
	write := func(v any) { _ = binary.Write(&out, binary.BigEndian, v) }
	write(uint32(0xCAFEBABE))
	write(uint16(0))
	write(uint16(52))
	write(pool.count)
	out.Write(pool.buf.Bytes())
	write(uint16(c.Access))
	write(thisIdx)
	write(superIdx)
	write(uint16(len(ifaceIdx)))
	for _, idx := range ifaceIdx {
		write(idx)
	}
	write(uint16(0)) // fields
	write(uint16(len(methods)))
	for _, m := range methods {
		write(uint16(m.access))
		write(m.name)
		write(m.desc)
		write(uint16(0)) // attributes
	}
	write(uint16(0)) // class attributes
	return out.Bytes()
}

// MemberName returns the archive member name of the class under root,
// e.g. "plugin/classes/com/x/A.class". root may omit the trailing slash.
func (c Class) MemberName(root string) string {
	return path.Join(root, c.Name+classfile.Suffix)
}

func (p *poolBuilder) utf8(s string) uint16 {
	if idx, ok := p.utf8s[s]; ok {
		return idx
	}
	p.buf.WriteByte(1)
	_ = binary.Write(&p.buf, binary.BigEndian, uint16(len(s)))
	p.buf.WriteString(s)
	idx := p.count
	p.count++
	p.utf8s[s] = idx
	return idx
}

func (p *poolBuilder) class(name string) uint16 {
	if idx, ok := p.classes[name]; ok {
		return idx
	}
	nameIdx := p.utf8(name)
	p.buf.WriteByte(7)
	_ = binary.Write(&p.buf, binary.BigEndian, nameIdx)
	idx := p.count
	p.count++
	p.classes[name] = idx
	return idx
}

// EncodeArchive encodes entries as a zip archive, in order.
func EncodeArchive(entries ...Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", e.Name, err)
		}
		if strings.HasSuffix(e.Name, "/") {
			continue
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveBytes is EncodeArchive failing t on error.
func ArchiveBytes(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	data, err := EncodeArchive(entries...)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// WriteArchive writes entries as a zip archive at path and returns path.
func WriteArchive(t testing.TB, path string, entries ...Entry) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, ArchiveBytes(t, entries...), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ClassEntry returns an archive entry holding c under root.
func ClassEntry(root string, c Class) Entry {
	return Entry{Name: c.MemberName(root), Data: c.Bytes()}
}

// WriteClassFile writes c below dir using its binary name as relative path.
func WriteClassFile(t testing.TB, dir string, c Class) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(c.Name)+classfile.Suffix)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, c.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Simple returns a public class extending java/lang/Object with no methods.
func Simple(name string) Class {
	return Class{Name: name, SuperName: classfile.ObjectClass, Access: classfile.AccPublic}
}
