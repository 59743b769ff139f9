// SPDX-License-Identifier: MPL-2.0

package classfile

import "strings"

const (
	// Suffix is the file name suffix of compiled class files.
	Suffix = ".class"

	// ObjectClass is the binary name of the root of every class hierarchy.
	ObjectClass = "java/lang/Object"
)

// Access flag bits shared by classes and methods (JVMS §4.1, §4.6).
const (
	AccPublic    AccessFlags = 0x0001
	AccPrivate   AccessFlags = 0x0002
	AccProtected AccessFlags = 0x0004
	AccStatic    AccessFlags = 0x0008
	AccFinal     AccessFlags = 0x0010
	AccInterface AccessFlags = 0x0200
	AccAbstract  AccessFlags = 0x0400
	AccSynthetic AccessFlags = 0x1000
)

type (
	// AccessFlags is the access_flags bit mask of a class or method.
	AccessFlags uint16

	// Class is the parsed metadata of one compiled class.
	// Values are never modified after Parse returns them.
	Class struct {
		// Name is the slash-delimited binary name, e.g. "com/example/Foo".
		Name string
		// Access holds the class access flags.
		Access AccessFlags
		// SuperName is the binary name of the direct super class.
		// It is empty for java/lang/Object and module-info.
		SuperName string
		// Interfaces lists the binary names of directly implemented interfaces.
		Interfaces []string
		// Methods is the declared method table in class-file order.
		Methods []Method
		// MajorVersion is the class-file major version (52 = Java 8).
		MajorVersion uint16
	}

	// Method is one entry of a class method table.
	Method struct {
		// Name is the method name, e.g. "run" or "<init>".
		Name string
		// Descriptor is the JVM type descriptor, e.g. "(Ljava/lang/String;)V".
		Descriptor string
		// Access holds the method access flags.
		Access AccessFlags
	}
)

// Has reports whether every bit of flag is set.
func (a AccessFlags) Has(flag AccessFlags) bool { return a&flag == flag }

// IsPublic reports whether ACC_PUBLIC is set.
func (a AccessFlags) IsPublic() bool { return a.Has(AccPublic) }

// IsPrivate reports whether ACC_PRIVATE is set.
func (a AccessFlags) IsPrivate() bool { return a.Has(AccPrivate) }

// IsStatic reports whether ACC_STATIC is set.
func (a AccessFlags) IsStatic() bool { return a.Has(AccStatic) }

// IsFinal reports whether ACC_FINAL is set.
func (a AccessFlags) IsFinal() bool { return a.Has(AccFinal) }

// IsInterface reports whether ACC_INTERFACE is set.
func (a AccessFlags) IsInterface() bool { return a.Has(AccInterface) }

// IsAbstract reports whether ACC_ABSTRACT is set.
func (a AccessFlags) IsAbstract() bool { return a.Has(AccAbstract) }

// Method returns the declared method with the given name and descriptor,
// or nil when the class does not declare it.
func (c *Class) Method(name, descriptor string) *Method {
	for i := range c.Methods {
		if c.Methods[i].Name == name && c.Methods[i].Descriptor == descriptor {
			return &c.Methods[i]
		}
	}
	return nil
}

// Signature returns "<class>.<method> <descriptor>", the subject string used
// when reporting problems about a method.
func (c *Class) Signature(m *Method) string {
	return c.Name + "." + m.Name + " " + m.Descriptor
}

// BinaryName converts a dotted class name ("com.x.A") to its binary form ("com/x/A").
// Names already in binary form are returned unchanged.
func BinaryName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// DisplayName converts a binary class name ("com/x/A") to dotted form ("com.x.A").
func DisplayName(binaryName string) string {
	return strings.ReplaceAll(binaryName, "/", ".")
}

// IsClassFile reports whether a path or archive member name denotes a class file.
func IsClassFile(name string) bool {
	return strings.HasSuffix(name, Suffix)
}
