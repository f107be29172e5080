//  Copyright (c) 2026 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package program indexes the compilation units of one batch together with the binary metadata of
// their dependencies. It resolves type names, links every type to its direct supertypes and
// subtypes, finds methods and fields along the hierarchy, and answers module and package locality
// questions. A Program is built once and is read-only afterwards, so the per-unit analyses may
// share it.
package program

import (
	"slices"

	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/binary"
	"go.uber.org/jnilaway/util/orderedmap"
)

// ObjectName is the root of the class hierarchy.
const ObjectName = "java.lang.Object"

// Type is a source or binary type of the program. Exactly one of Decl and Bin is set.
type Type struct {
	// Name is the qualified name.
	Name      string
	Simple    string
	Kind      ast.TypeKind
	Modifiers ast.Modifiers
	Package   string
	// Module is the named module of the type, empty for the unnamed module.
	Module string

	Decl *ast.TypeDecl
	Bin  *binary.Type

	// Super is the resolved direct superclass, nil for interfaces, java.lang.Object and
	// unresolvable superclasses.
	Super *Type
	// Interfaces are the resolved direct superinterfaces.
	Interfaces []*Type
	Outer      *Type
	Fields     []*Field
	Methods    []*Method
}

// IsSource returns true for types declared in a compilation unit of the batch.
func (t *Type) IsSource() bool { return t.Decl != nil }

// IsSealed returns true for classes and interfaces declared sealed and for enums with constant
// bodies. Records are never sealed and a sealed modifier on an enum is ignored.
func (t *Type) IsSealed() bool {
	switch t.Kind {
	case ast.KindRecord:
		return false
	case ast.KindEnum:
		if t.Decl != nil {
			return len(t.Decl.ConstantBodies()) > 0
		}
		return t.Bin != nil && len(t.Bin.Permits) > 0
	}
	return t.Modifiers.Has(ast.Sealed)
}

// Supertypes returns the direct superclass (if any) followed by the direct superinterfaces.
func (t *Type) Supertypes() []*Type {
	var supers []*Type
	if t.Super != nil {
		supers = append(supers, t.Super)
	}
	return append(supers, t.Interfaces...)
}

// Field returns the field declared directly in t.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Method returns the method declared directly in t with the given signature.
func (t *Type) Method(sig string) *Method {
	for _, m := range t.Methods {
		if !m.Constructor && m.Signature() == sig {
			return m
		}
	}
	return nil
}

// Constructors returns the constructors declared directly in t.
func (t *Type) Constructors() []*Method {
	var ctors []*Method
	for _, m := range t.Methods {
		if m.Constructor {
			ctors = append(ctors, m)
		}
	}
	return ctors
}

func (t *Type) String() string { return t.Name }

// Field is a field of a source or binary type.
type Field struct {
	Owner  *Type
	Name   string
	Static bool
	// TypeName is the declared type of the field as written.
	TypeName string
	Decl     *ast.FieldDecl
	Bin      *binary.Field
}

// Method is a method or constructor of a source or binary type.
type Method struct {
	Owner *Type
	Name  string
	// Params holds the erased simple names of the parameter types.
	Params      []string
	Constructor bool
	Static      bool
	Private     bool
	Abstract    bool
	Decl        *ast.MethodDecl
	Bin         *binary.Method
}

// Signature returns the name/erased-parameter signature, e.g. "foo(Object,int)".
func (m *Method) Signature() string {
	sig := m.Name + "("
	for i, p := range m.Params {
		if i > 0 {
			sig += ","
		}
		sig += p
	}
	return sig + ")"
}

// CanOverride returns true for methods that take part in dynamic dispatch.
func (m *Method) CanOverride() bool {
	return !m.Constructor && !m.Static && !m.Private
}

func (m *Method) String() string { return m.Owner.Name + "." + m.Signature() }

// Program is the index of one batch.
type Program struct {
	units []*ast.CompilationUnit
	store *binary.Store

	types *orderedmap.OrderedMap[string, *Type]
	// subtypes maps every type to its direct subtypes, in registration order.
	subtypes map[*Type][]*Type
	// packageInfo maps package names to the units carrying package annotations.
	packageInfo map[string]*ast.CompilationUnit
	// packageModule maps package names of source units to their named module.
	packageModule map[string]string
}

// New indexes the given units, which must have been linked, and the binary store, which may be
// nil. Source types shadow binary types of the same name.
func New(units []*ast.CompilationUnit, store *binary.Store) *Program {
	p := &Program{
		units:         units,
		store:         store,
		types:         orderedmap.New[string, *Type](),
		subtypes:      make(map[*Type][]*Type),
		packageInfo:   make(map[string]*ast.CompilationUnit),
		packageModule: make(map[string]string),
	}

	for _, u := range units {
		if len(u.Annotations) > 0 {
			if _, ok := p.packageInfo[u.Package]; !ok {
				p.packageInfo[u.Package] = u
			}
		}
		if u.Module != "" {
			p.packageModule[u.Package] = u.Module
		}
		for _, d := range u.AllTypes() {
			if p.types.Has(d.Qualified) {
				continue
			}
			p.types.Store(d.Qualified, newSourceType(d))
		}
	}
	if store != nil {
		store.Types.OrderedRange(func(name string, b *binary.Type) bool {
			if !p.types.Has(name) {
				p.types.Store(name, newBinaryType(b))
			}
			return true
		})
	}

	// Supertypes and enclosing types are linked once every type is registered.
	p.types.OrderedRange(func(_ string, t *Type) bool {
		p.linkHierarchy(t)
		for _, s := range t.Supertypes() {
			p.subtypes[s] = append(p.subtypes[s], t)
		}
		return true
	})
	return p
}

func newSourceType(d *ast.TypeDecl) *Type {
	t := &Type{
		Name:      d.Qualified,
		Simple:    d.Name,
		Kind:      d.Kind,
		Modifiers: d.Modifiers,
		Package:   d.Unit.Package,
		Module:    d.Unit.Module,
		Decl:      d,
	}
	for _, f := range d.Fields {
		t.Fields = append(t.Fields, &Field{
			Owner:    t,
			Name:     f.Name,
			Static:   f.IsStatic(),
			TypeName: typeName(f.Type),
			Decl:     f,
		})
	}
	for _, m := range d.Methods {
		params := make([]string, len(m.Params))
		for i, prm := range m.Params {
			params[i] = ast.ErasedName(prm.Type)
		}
		t.Methods = append(t.Methods, &Method{
			Owner:       t,
			Name:        m.Name,
			Params:      params,
			Constructor: m.Constructor,
			Static:      m.IsStatic(),
			Private:     m.Modifiers.Has(ast.Private),
			Abstract:    m.Body == nil && !m.Synthetic && !m.Modifiers.Has(ast.Default),
			Decl:        m,
		})
	}
	return t
}

func newBinaryType(b *binary.Type) *Type {
	t := &Type{
		Name:    b.Name,
		Simple:  ast.SimpleName(b.Name),
		Kind:    ast.TypeKind(b.Kind),
		Package: b.Package,
		Module:  b.Module,
		Bin:     b,
	}
	if t.Kind == "" {
		t.Kind = ast.KindClass
	}
	for _, m := range b.Modifiers {
		t.Modifiers = append(t.Modifiers, ast.Modifier(m))
	}
	for _, f := range b.Fields {
		t.Fields = append(t.Fields, &Field{Owner: t, Name: f.Name, Static: f.Static, TypeName: f.Type, Bin: f})
	}
	for _, m := range b.Methods {
		t.Methods = append(t.Methods, &Method{
			Owner:       t,
			Name:        m.Name,
			Params:      m.Params,
			Constructor: m.Constructor,
			Static:      m.Static,
			Abstract:    m.Abstract,
			Bin:         m,
		})
	}
	return t
}

func typeName(t *ast.Type) string {
	if t == nil {
		return ""
	}
	if t.Elem != nil {
		return typeName(t.Elem) + "[]"
	}
	return t.Name
}

func (p *Program) linkHierarchy(t *Type) {
	if t.Bin != nil {
		if t.Bin.Outer != "" {
			t.Outer, _ = p.Type(t.Bin.Outer)
		}
		if t.Bin.Super != "" {
			t.Super, _ = p.Type(t.Bin.Super)
		}
		for _, name := range t.Bin.Interfaces {
			if i, ok := p.Type(name); ok {
				t.Interfaces = append(t.Interfaces, i)
			}
		}
	} else {
		p.linkDecl(t)
	}
	if t.Super == nil && !t.Kind.IsInterface() && t.Name != ObjectName {
		t.Super, _ = p.Type(ObjectName)
	}
}

func (p *Program) linkDecl(t *Type) {
	d := t.Decl
	if d.Outer != nil {
		t.Outer, _ = p.Type(d.Outer.Qualified)
	}
	if d.Extends != nil {
		if s, ok := p.Resolve(d, d.Extends.Name); ok {
			// An anonymous class instantiating an interface extends Object and implements it.
			if d.Anonymous && s.Kind.IsInterface() {
				t.Interfaces = append(t.Interfaces, s)
			} else {
				t.Super = s
			}
		}
	}
	for _, ref := range d.Implements {
		if i, ok := p.Resolve(d, ref.Name); ok {
			t.Interfaces = append(t.Interfaces, i)
		}
	}
}

// Units returns the compilation units of the batch.
func (p *Program) Units() []*ast.CompilationUnit { return p.units }

// Store returns the binary store of the dependencies, possibly nil.
func (p *Program) Store() *binary.Store { return p.store }

// Type returns the type with the given qualified name.
func (p *Program) Type(name string) (*Type, bool) {
	return p.types.Load(name)
}

// TypeOf returns the program type of a source declaration.
func (p *Program) TypeOf(d *ast.TypeDecl) *Type {
	return p.types.Value(d.Qualified)
}

// Types calls f for every type in registration order: source types in unit order first, binary
// types after.
func (p *Program) Types(f func(t *Type) bool) {
	p.types.OrderedRange(func(_ string, t *Type) bool { return f(t) })
}

// DirectSubtypes returns the types declaring t as their direct superclass or superinterface.
func (p *Program) DirectSubtypes(t *Type) []*Type {
	return p.subtypes[t]
}

// PermittedSubtypes returns the permitted subtypes of the sealed source type t: the constant
// bodies of an enum, the resolved permits clause, or else the named direct subtypes declared in
// t's unit.
func (p *Program) PermittedSubtypes(t *Type) []*Type {
	d := t.Decl
	if d == nil || !t.IsSealed() {
		return nil
	}
	var subs []*Type
	switch {
	case t.Kind == ast.KindEnum:
		for _, b := range d.ConstantBodies() {
			if sub := p.TypeOf(b); sub != nil {
				subs = append(subs, sub)
			}
		}
	case len(d.Permits) > 0:
		for _, ref := range d.Permits {
			if sub, ok := p.ResolveRef(d, ref); ok {
				subs = append(subs, sub)
			}
		}
	default:
		for _, sub := range p.DirectSubtypes(t) {
			if sub.Decl != nil && sub.Decl.Unit == d.Unit && !sub.Decl.Anonymous && !sub.Decl.Local {
				subs = append(subs, sub)
			}
		}
	}
	return subs
}

// IsSubtype reports whether t is sub or one of its transitive supertypes.
func (p *Program) IsSubtype(sub, t *Type) bool {
	seen := make(map[*Type]bool)
	var visit func(s *Type) bool
	visit = func(s *Type) bool {
		if s == t {
			return true
		}
		if seen[s] {
			return false
		}
		seen[s] = true
		return slices.ContainsFunc(s.Supertypes(), visit)
	}
	return visit(sub)
}

// PackageInfo returns the source unit carrying the package annotations of pkg, if any.
func (p *Program) PackageInfo(pkg string) (*ast.CompilationUnit, bool) {
	u, ok := p.packageInfo[pkg]
	return u, ok
}

// HasSourcePackage reports whether any unit of the batch belongs to pkg.
func (p *Program) HasSourcePackage(pkg string) bool {
	for _, u := range p.units {
		if u.Package == pkg {
			return true
		}
	}
	return false
}
