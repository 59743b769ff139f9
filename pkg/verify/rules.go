// SPDX-License-Identifier: MPL-2.0

package verify

import (
	"log/slog"
	"strings"

	"github.com/plugcheck/plugcheck/pkg/classfile"
	"github.com/plugcheck/plugcheck/pkg/classpath"
)

const (
	// FinalOverrideRuleName identifies FinalOverrideRule in reports.
	FinalOverrideRuleName = "final-override"
	// UnresolvedSuperClassRuleName identifies UnresolvedSuperClassRule in reports.
	UnresolvedSuperClassRuleName = "unresolved-super-class"
)

// DefaultExternalPrefixes are class name prefixes provided by the runtime
// and never expected on the classpath.
var DefaultExternalPrefixes = []string{"java/", "javax/"}

type (
	// MethodRule checks one method declared by a plugin class. Rules only
	// read their inputs and report to the sink.
	MethodRule interface {
		Name() string
		VerifyMethod(class *classfile.Class, method *classfile.Method, resolver classpath.Resolver, sink Sink)
	}

	// ClassRule checks one plugin class as a whole.
	ClassRule interface {
		Name() string
		VerifyClass(class *classfile.Class, resolver classpath.Resolver, sink Sink)
	}

	// FinalOverrideRule reports methods that override a final method of the
	// direct super class.
	FinalOverrideRule struct{}

	// UnresolvedSuperClassRule reports classes whose super class is on
	// neither the plugin nor the external classpath.
	UnresolvedSuperClassRule struct {
		// ExternalPrefixes are super class prefixes assumed to be present.
		ExternalPrefixes []string
	}
)

var (
	_ MethodRule = FinalOverrideRule{}
	_ ClassRule  = UnresolvedSuperClassRule{}
)

// FindMethod looks up the method name+descriptor declared directly by owner.
// Inherited methods are not searched. It returns nil when owner cannot be
// resolved or does not declare the method.
func FindMethod(resolver classpath.Resolver, owner, name, descriptor string) *classfile.Method {
	if owner == "" {
		return nil
	}
	c, err := resolver.FindClass(owner)
	if err != nil {
		slog.Debug("unable to read class for method lookup", "class", owner, "error", err)
		return nil
	}
	if c == nil {
		return nil
	}
	return c.Method(name, descriptor)
}

// Name implements MethodRule.
func (FinalOverrideRule) Name() string { return FinalOverrideRuleName }

// VerifyMethod implements MethodRule.
func (r FinalOverrideRule) VerifyMethod(class *classfile.Class, method *classfile.Method, resolver classpath.Resolver, sink Sink) {
	if method.Access.IsPrivate() {
		return
	}
	superMethod := FindMethod(resolver, class.SuperName, method.Name, method.Descriptor)
	if superMethod == nil {
		return
	}
	if superMethod.Access.IsFinal() && !superMethod.Access.IsAbstract() {
		sink.Report(Problem{
			Subject: class.Signature(method),
			Message: "overriding final method",
			Rule:    r.Name(),
		})
	}
}

// NewUnresolvedSuperClassRule returns the rule with the given external
// prefixes, or DefaultExternalPrefixes when none are given.
func NewUnresolvedSuperClassRule(prefixes ...string) UnresolvedSuperClassRule {
	if len(prefixes) == 0 {
		prefixes = DefaultExternalPrefixes
	}
	return UnresolvedSuperClassRule{ExternalPrefixes: prefixes}
}

// Name implements ClassRule.
func (UnresolvedSuperClassRule) Name() string { return UnresolvedSuperClassRuleName }

// VerifyClass implements ClassRule.
func (r UnresolvedSuperClassRule) VerifyClass(class *classfile.Class, resolver classpath.Resolver, sink Sink) {
	super := class.SuperName
	if super == "" || resolver.ContainsClass(super) || r.isExternal(super) {
		return
	}
	sink.Report(Problem{
		Subject: class.Name,
		Message: "access to unresolved class " + super,
		Rule:    r.Name(),
	})
}

func (r UnresolvedSuperClassRule) isExternal(name string) bool {
	for _, p := range r.ExternalPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
