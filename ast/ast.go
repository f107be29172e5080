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

// Package ast declares the bound syntax tree that jnilaway analyzes. The tree is produced by an
// external front end (parser and binder) and handed to jnilaway as YAML or JSON documents, one
// per compilation unit (see Decode). Statement and expression nodes form closed sets of variants:
// every consumer switches over the concrete node types and reports an error for a node kind it
// does not know.
package ast

import (
	"fmt"
	"slices"
	"strings"
)

// Pos is a line:column position inside a compilation unit. The zero Pos is invalid.
type Pos struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// IsValid returns true if the position was set by the front end.
func (p Pos) IsValid() bool { return p.Line > 0 }

// Before reports whether p is strictly before q.
func (p Pos) Before(q Pos) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Span locates a diagnostic: the unit-relative file path and the start position of the node that
// triggered it.
type Span struct {
	File  string `json:"file"`
	Start Pos    `json:"start"`
}

func (s Span) String() string {
	return s.File + ":" + s.Start.String()
}

// Node is implemented by every syntax tree node.
type Node interface {
	// Pos returns the position of the node, inherited from the enclosing node if the front end
	// did not provide one.
	Pos() Pos
}

// Annotation is an annotation as written in source: a possibly qualified name and its arguments.
// Argument values are bool, string, float64/int, or []any of those.
type Annotation struct {
	Name string
	Args map[string]any
	At   Pos
}

// Pos returns the position of the annotation.
func (a *Annotation) Pos() Pos { return a.At }

// SimpleName returns the last segment of the annotation name.
func (a *Annotation) SimpleName() string {
	return SimpleName(a.Name)
}

// Arg returns the argument with the given key; the single unnamed argument is stored as "value".
func (a *Annotation) Arg(key string) (any, bool) {
	v, ok := a.Args[key]
	return v, ok
}

func (a *Annotation) String() string {
	return "@" + a.SimpleName()
}

// SimpleName returns the last dot-separated segment of a qualified name.
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// primitiveNames lists the primitive type names of the language.
var primitiveNames = []string{"boolean", "byte", "char", "short", "int", "long", "float", "double"}

// Type is a type reference. Annotations written on the type (type annotations) apply to the
// referenced type itself; for array types, Elem is the component type and its annotations
// describe the array contents.
type Type struct {
	Name        string
	Annotations []*Annotation
	Args        []*Type
	Elem        *Type
	At          Pos
}

// Pos returns the position of the type reference.
func (t *Type) Pos() Pos { return t.At }

// IsArray returns true for array types.
func (t *Type) IsArray() bool { return t != nil && t.Elem != nil }

// IsPrimitive returns true for the eight primitive types (not arrays of them).
func (t *Type) IsPrimitive() bool {
	return t != nil && t.Elem == nil && slices.Contains(primitiveNames, t.Name)
}

// IsVoid returns true for the void pseudo-type.
func (t *Type) IsVoid() bool { return t != nil && t.Elem == nil && t.Name == "void" }

// IsReference returns true for types whose values can be null.
func (t *Type) IsReference() bool {
	return t != nil && !t.IsPrimitive() && !t.IsVoid()
}

func (t *Type) String() string {
	if t == nil {
		return "<none>"
	}
	var b strings.Builder
	if t.Elem != nil {
		b.WriteString(t.Elem.String())
		for _, a := range t.Annotations {
			b.WriteString(" " + a.String())
		}
		b.WriteString("[]")
		return b.String()
	}
	for _, a := range t.Annotations {
		b.WriteString(a.String() + " ")
	}
	b.WriteString(t.Name)
	if len(t.Args) > 0 {
		b.WriteString("<")
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(arg.String())
		}
		b.WriteString(">")
	}
	return b.String()
}

// Modifier is a declaration modifier.
type Modifier string

// Modifiers recognized by the analyzer. Others are kept verbatim.
const (
	Public    Modifier = "public"
	Protected Modifier = "protected"
	Private   Modifier = "private"
	Static    Modifier = "static"
	Final     Modifier = "final"
	Abstract  Modifier = "abstract"
	Sealed    Modifier = "sealed"
	NonSealed Modifier = "non-sealed"
	Default   Modifier = "default"
)

// Modifiers is the ordered list of modifiers of a declaration.
type Modifiers []Modifier

// Has reports whether m contains mod.
func (m Modifiers) Has(mod Modifier) bool {
	return slices.Contains(m, mod)
}

// TypeKind distinguishes the kinds of type declarations.
type TypeKind string

// Type declaration kinds.
const (
	KindClass      TypeKind = "class"
	KindInterface  TypeKind = "interface"
	KindEnum       TypeKind = "enum"
	KindRecord     TypeKind = "record"
	KindAnnotation TypeKind = "annotation"
)

// IsInterface returns true for interfaces and annotation types.
func (k TypeKind) IsInterface() bool { return k == KindInterface || k == KindAnnotation }

// CompilationUnit is one source file. A unit with no types and package annotations plays the role
// of package-info and contributes package-level defaults.
type CompilationUnit struct {
	Path        string
	Package     string
	Module      string
	Imports     []string
	Annotations []*Annotation
	Types       []*TypeDecl

	// allTypes is filled by Link and lists every type declared in the unit (member, local and
	// anonymous types included) in source order.
	allTypes []*TypeDecl
}

// AllTypes returns every type declared in the unit, including member, local and anonymous types,
// in source order. Only valid after Link.
func (u *CompilationUnit) AllTypes() []*TypeDecl { return u.allTypes }

// Span returns the span of a position inside this unit.
func (u *CompilationUnit) Span(p Pos) Span { return Span{File: u.Path, Start: p} }

// IsPackageInfo returns true for units that only carry package annotations.
func (u *CompilationUnit) IsPackageInfo() bool { return len(u.Types) == 0 && len(u.Annotations) > 0 }

// TypeDecl declares a class, interface, enum, record or annotation type. Local and anonymous
// classes are TypeDecls too; Link sets their flags and enclosing links.
type TypeDecl struct {
	Kind         TypeKind
	Name         string
	Modifiers    Modifiers
	Annotations  []*Annotation
	Extends      *Type
	Implements   []*Type
	Permits      []*Type
	Fields       []*FieldDecl
	Methods      []*MethodDecl
	Initializers []*Initializer
	Types        []*TypeDecl
	Constants    []*EnumConstant
	Components   []*Param
	At           Pos

	// The following are set by Link.

	// Qualified is the binary-style qualified name, e.g. "p.Outer.Inner" or "p.Outer$1".
	Qualified string
	// Outer is the lexically enclosing type, nil for top-level types.
	Outer *TypeDecl
	// EnclosingMethod is the method, constructor or initializer body owning a local or anonymous
	// class, nil otherwise.
	EnclosingMethod *MethodDecl
	// Unit is the compilation unit declaring the type.
	Unit *CompilationUnit
	// Local is true for classes declared in a block.
	Local bool
	// Anonymous is true for anonymous classes (including enum constant bodies).
	Anonymous bool
	// EnumConstantBody is true for the anonymous body of an enum constant.
	EnumConstantBody bool
	// End is the last position found inside the declaration.
	End Pos
}

// Pos returns the position of the type name.
func (d *TypeDecl) Pos() Pos { return d.At }

// IsTopLevel returns true if the type is not nested in another type.
func (d *TypeDecl) IsTopLevel() bool { return d.Outer == nil }

// ConstantBodies returns the class bodies of the enum constants of d, in declaration order.
func (d *TypeDecl) ConstantBodies() []*TypeDecl {
	var bodies []*TypeDecl
	for _, c := range d.Constants {
		if c.Body != nil {
			bodies = append(bodies, c.Body)
		}
	}
	return bodies
}

// DisplayName returns a short human-readable name (anonymous classes are shown as `new T(){}`).
func (d *TypeDecl) DisplayName() string {
	if d.Anonymous && d.Extends != nil {
		return "new " + d.Extends.Name + "(){}"
	}
	return d.Name
}

// Field returns the field declared directly in d with the given name.
func (d *TypeDecl) Field(name string) *FieldDecl {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldDecl declares a field.
type FieldDecl struct {
	Name        string
	Type        *Type
	Modifiers   Modifiers
	Annotations []*Annotation
	Init        Expr
	At          Pos

	// Owner is set by Link.
	Owner *TypeDecl
	// Synthetic marks record component fields made up by Link.
	Synthetic bool
}

// Pos returns the position of the field name.
func (f *FieldDecl) Pos() Pos { return f.At }

// IsStatic returns true for static fields (interface fields are implicitly static).
func (f *FieldDecl) IsStatic() bool {
	return f.Modifiers.Has(Static) || (f.Owner != nil && f.Owner.Kind.IsInterface())
}

// Param declares a method parameter, a catch parameter or a record component.
type Param struct {
	Name        string
	Type        *Type
	Annotations []*Annotation
	At          Pos
}

// Pos returns the position of the parameter name.
func (p *Param) Pos() Pos { return p.At }

// MethodDecl declares a method or constructor. Body is nil for abstract and native methods.
type MethodDecl struct {
	Name        string
	Params      []*Param
	Returns     *Type
	Constructor bool
	Modifiers   Modifiers
	Annotations []*Annotation
	Body        *Block
	At          Pos

	// Owner is set by Link.
	Owner *TypeDecl
	// Synthetic marks record accessors made up by Link.
	Synthetic bool
	// End is the last position found inside the declaration.
	End Pos
}

// Pos returns the position of the method name.
func (m *MethodDecl) Pos() Pos { return m.At }

// IsStatic returns true for static methods.
func (m *MethodDecl) IsStatic() bool { return m.Modifiers.Has(Static) }

// Signature returns a name/arity signature used to match overriding methods, e.g. "foo(Object,int)".
func (m *MethodDecl) Signature() string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = ErasedName(p.Type)
	}
	return m.Name + "(" + strings.Join(names, ",") + ")"
}

// ErasedName returns the simple erased name of a type, "Object" for a missing type.
func ErasedName(t *Type) string {
	if t == nil {
		return "Object"
	}
	if t.Elem != nil {
		return ErasedName(t.Elem) + "[]"
	}
	return SimpleName(t.Name)
}

// Initializer is an instance or static initializer block.
type Initializer struct {
	Static bool
	Body   *Block
	At     Pos
}

// Pos returns the position of the initializer.
func (i *Initializer) Pos() Pos { return i.At }

// EnumConstant declares an enum constant, optionally with a class body.
type EnumConstant struct {
	Name        string
	Args        []Expr
	Body        *TypeDecl
	Annotations []*Annotation
	At          Pos
}

// Pos returns the position of the constant.
func (c *EnumConstant) Pos() Pos { return c.At }
