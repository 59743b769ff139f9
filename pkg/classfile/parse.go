// SPDX-License-Identifier: MPL-2.0

package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const magic = 0xCAFEBABE

// Constant pool tags (JVMS §4.4).
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// ErrMalformedClass is the sentinel error wrapped by MalformedClassError.
var ErrMalformedClass = errors.New("malformed class file")

type (
	// MalformedClassError is returned when class bytes cannot be decoded.
	// It wraps ErrMalformedClass for errors.Is() compatibility.
	MalformedClassError struct {
		Reason string
	}

	cpEntry struct {
		tag   byte
		utf8  string
		index uint16
	}

	reader struct {
		data []byte
		off  int
		err  error
	}
)

// Error implements the error interface for MalformedClassError.
func (e *MalformedClassError) Error() string {
	return fmt.Sprintf("malformed class file: %s", e.Reason)
}

// Unwrap returns ErrMalformedClass for errors.Is() compatibility.
func (e *MalformedClassError) Unwrap() error { return ErrMalformedClass }

// ParseReader reads r to EOF and parses the result.
func ParseReader(r io.Reader) (*Class, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read class bytes: %w", err)
	}
	return Parse(data)
}

// Parse decodes raw class-file bytes.
func Parse(data []byte) (*Class, error) {
	r := &reader{data: data}

	if r.u4() != magic {
		if r.err != nil {
			return nil, r.err
		}
		return nil, &MalformedClassError{Reason: "bad magic number"}
	}
	r.u2() // minor version
	major := r.u2()

	pool, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}

	c := &Class{MajorVersion: major}
	c.Access = AccessFlags(r.u2())

	if c.Name, err = pool.className(r.u2()); err != nil {
		return nil, err
	}
	if superIdx := r.u2(); superIdx != 0 {
		if c.SuperName, err = pool.className(superIdx); err != nil {
			return nil, err
		}
	}

	ifaceCount := int(r.u2())
	for range ifaceCount {
		name, ifaceErr := pool.className(r.u2())
		if ifaceErr != nil {
			return nil, ifaceErr
		}
		c.Interfaces = append(c.Interfaces, name)
	}

	// Fields carry nothing we need; skip them with their attributes.
	fieldCount := int(r.u2())
	for range fieldCount {
		r.skip(6)
		r.skipAttributes()
	}

	methodCount := int(r.u2())
	c.Methods = make([]Method, 0, methodCount)
	for range methodCount {
		access := AccessFlags(r.u2())
		name, nameErr := pool.utf8(r.u2())
		if nameErr != nil {
			return nil, nameErr
		}
		desc, descErr := pool.utf8(r.u2())
		if descErr != nil {
			return nil, descErr
		}
		r.skipAttributes()
		c.Methods = append(c.Methods, Method{Name: name, Descriptor: desc, Access: access})
	}

	r.skipAttributes()
	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

type constantPool []cpEntry

func readConstantPool(r *reader) (constantPool, error) {
	count := int(r.u2())
	if r.err != nil {
		return nil, r.err
	}
	pool := make(constantPool, count)
	for i := 1; i < count; i++ {
		tag := r.u1()
		e := cpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			n := int(r.u2())
			e.utf8 = string(r.bytes(n))
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			e.index = r.u2()
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			r.skip(4)
		case tagLong, tagDouble:
			r.skip(8)
			pool[i] = e
			i++ // 8-byte constants occupy two slots
			continue
		case tagMethodHandle:
			r.skip(3)
		default:
			if r.err != nil {
				return nil, r.err
			}
			return nil, &MalformedClassError{Reason: fmt.Sprintf("unknown constant pool tag %d at index %d", tag, i)}
		}
		if r.err != nil {
			return nil, r.err
		}
		pool[i] = e
	}
	return pool, nil
}

func (p constantPool) utf8(idx uint16) (string, error) {
	if int(idx) <= 0 || int(idx) >= len(p) || p[idx].tag != tagUtf8 {
		return "", &MalformedClassError{Reason: fmt.Sprintf("constant %d is not a Utf8 entry", idx)}
	}
	return p[idx].utf8, nil
}

func (p constantPool) className(idx uint16) (string, error) {
	if int(idx) <= 0 || int(idx) >= len(p) || p[idx].tag != tagClass {
		return "", &MalformedClassError{Reason: fmt.Sprintf("constant %d is not a Class entry", idx)}
	}
	return p.utf8(p[idx].index)
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = &MalformedClassError{Reason: fmt.Sprintf("truncated at offset %d", r.off)}
		return false
	}
	return true
}

func (r *reader) u1() byte {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.data[r.off : r.off+n]
	r.off += n
	return v
}

func (r *reader) skip(n int) {
	if r.need(n) {
		r.off += n
	}
}

func (r *reader) skipAttributes() {
	count := int(r.u2())
	for range count {
		r.skip(2)
		r.skip(int(r.u4()))
	}
}
