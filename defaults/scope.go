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

// Package defaults resolves the effective nullness of declarations. Explicit NonNull and Nullable
// annotations win; otherwise the nearest enclosing NonNullByDefault scope covering the location
// category makes reference-typed locations NonNull. Scopes nest package, top-level type, member
// type, method, and local or anonymous class, and are kept in an arena with parent indices built
// once per compilation unit.
package defaults

import (
	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
)

// ScopeKind distinguishes the declarations that can carry a default.
type ScopeKind uint8

// Scope kinds.
const (
	PackageScope ScopeKind = iota
	TypeScope
	MethodScope
)

// NoScope is the parent index of the package scope and the origin of scopes without an
// effective default.
const NoScope = -1

// Scope is one node of the default scope tree.
type Scope struct {
	Kind ScopeKind
	// Parent is the index of the enclosing scope, NoScope for the package scope.
	Parent int
	// Name describes the declaration, e.g. "package p" or "type p.X".
	Name string
	// Declared is true if the declaration carries a default annotation, Locations and
	// Annotation then describe it. Binary package defaults have no Annotation.
	Declared   bool
	Locations  annotation.LocationSet
	Annotation *ast.Annotation
	At         ast.Pos

	// Effective is the location set in force inside the scope.
	Effective annotation.LocationSet
	// Origin is the index of the scope whose declaration yields Effective, NoScope if no
	// enclosing declaration carries a default.
	Origin int
}

// Spec is the resolved nullness of one location.
type Spec struct {
	Nullness annotation.Nullness
	// Defaulted is true if Nullness comes from a default rather than an explicit annotation.
	Defaulted bool
	Explicit  annotation.Explicit
}

// Resolver holds the default scopes of one compilation unit. It is immutable once built.
type Resolver struct {
	names  *annotation.Names
	unit   *ast.CompilationUnit
	scopes []Scope

	types   map[*ast.TypeDecl]int
	methods map[*ast.MethodDecl]int
}

// newResolver builds the scope arena of u below the given package scope.
func newResolver(names *annotation.Names, u *ast.CompilationUnit, pkg Scope) *Resolver {
	r := &Resolver{
		names:   names,
		unit:    u,
		scopes:  []Scope{pkg},
		types:   make(map[*ast.TypeDecl]int),
		methods: make(map[*ast.MethodDecl]int),
	}
	for _, d := range u.AllTypes() {
		r.typeScope(d)
		for _, m := range d.Methods {
			r.methodScope(m)
		}
	}
	return r
}

// packageScope returns the root scope of a package.
func packageScope(pkg string, declared bool, locs annotation.LocationSet, a *ast.Annotation, at ast.Pos) Scope {
	s := Scope{Kind: PackageScope, Parent: NoScope, Name: "package " + pkg, Origin: NoScope, At: at}
	if declared {
		s.Declared, s.Locations, s.Annotation = true, locs, a
		s.Effective, s.Origin = locs, 0
	}
	return s
}

func (r *Resolver) push(s Scope) int {
	parent := r.scopes[s.Parent]
	s.Effective, s.Origin = parent.Effective, parent.Origin
	if s.Declared {
		s.Effective, s.Origin = s.Locations, len(r.scopes)
	}
	r.scopes = append(r.scopes, s)
	return len(r.scopes) - 1
}

func (r *Resolver) typeScope(d *ast.TypeDecl) int {
	if i, ok := r.types[d]; ok {
		return i
	}
	parent := 0
	switch {
	case d.EnclosingMethod != nil:
		parent = r.methodScope(d.EnclosingMethod)
	case d.Outer != nil:
		parent = r.typeScope(d.Outer)
	}
	s := Scope{Kind: TypeScope, Parent: parent, Name: "type " + d.Qualified, At: d.At}
	if spec, ok := r.names.Default(r.unit, d.Annotations); ok {
		s.Declared, s.Locations, s.Annotation = true, spec.Locations, spec.Annotation
	}
	i := r.push(s)
	r.types[d] = i
	return i
}

func (r *Resolver) methodScope(m *ast.MethodDecl) int {
	if i, ok := r.methods[m]; ok {
		return i
	}
	parent := r.typeScope(m.Owner)
	s := Scope{Kind: MethodScope, Parent: parent, Name: "method " + m.Signature(), At: m.At}
	if spec, ok := r.names.Default(r.unit, m.Annotations); ok {
		s.Declared, s.Locations, s.Annotation = true, spec.Locations, spec.Annotation
	}
	i := r.push(s)
	r.methods[m] = i
	return i
}

// Unit returns the compilation unit of the resolver.
func (r *Resolver) Unit() *ast.CompilationUnit { return r.unit }

// Names returns the annotation recognizer.
func (r *Resolver) Names() *annotation.Names { return r.names }

// Scope returns the scope with index i.
func (r *Resolver) Scope(i int) Scope { return r.scopes[i] }

// TypeScope returns the scope index of a type declared in the unit.
func (r *Resolver) TypeScope(d *ast.TypeDecl) int { return r.types[d] }

// MethodScope returns the scope index of a method declared in the unit.
func (r *Resolver) MethodScope(m *ast.MethodDecl) int { return r.methods[m] }

// Effective returns the default location set in force inside scope i.
func (r *Resolver) Effective(i int) annotation.LocationSet { return r.scopes[i].Effective }

// Resolve returns the nullness of a location of category loc with the given declaration
// annotations and type, inside scope i. Defaults never apply to primitive or void locations.
func (r *Resolver) Resolve(i int, loc annotation.Location, decl []*ast.Annotation, typ *ast.Type) Spec {
	e := r.names.Explicit(r.unit, decl, typ)
	if e.Nullness != annotation.None {
		return Spec{Nullness: e.Nullness, Explicit: e}
	}
	if loc != 0 && typ.IsReference() && r.scopes[i].Effective.Has(loc) {
		return Spec{Nullness: annotation.NonNull, Defaulted: true, Explicit: e}
	}
	return Spec{Explicit: e}
}

// Param returns the nullness of parameter i of m.
func (r *Resolver) Param(m *ast.MethodDecl, i int) Spec {
	p := m.Params[i]
	return r.Resolve(r.MethodScope(m), annotation.Parameter, p.Annotations, p.Type)
}

// Return returns the nullness of the return of m; constructors have none.
func (r *Resolver) Return(m *ast.MethodDecl) Spec {
	if m.Constructor {
		return Spec{}
	}
	return r.Resolve(r.MethodScope(m), annotation.Return, m.Annotations, m.Returns)
}

// Field returns the nullness of field f.
func (r *Resolver) Field(f *ast.FieldDecl) Spec {
	return r.Resolve(r.TypeScope(f.Owner), annotation.Field, f.Annotations, f.Type)
}

// Local returns the nullness of a local variable, catch or lambda parameter: locals only carry
// explicit annotations.
func (r *Resolver) Local(decl []*ast.Annotation, typ *ast.Type) Spec {
	return r.Resolve(0, 0, decl, typ)
}

// Contract returns the resolved contract of m.
func (r *Resolver) Contract(m *ast.MethodDecl) annotation.Contract {
	c := annotation.Contract{Params: make([]annotation.Nullness, len(m.Params))}
	for i := range m.Params {
		c.Params[i] = r.Param(m, i).Nullness
	}
	c.Return = r.Return(m).Nullness
	return c
}

// Element returns the nullness of the elements of typ, written inside scope i: the explicit
// annotation of the array component or last type argument, else NonNull if the default covers
// ARRAY_CONTENTS (arrays) or TYPE_ARGUMENT (generic types).
func (r *Resolver) Element(i int, typ *ast.Type) annotation.Nullness {
	if n := r.names.ElementNullness(r.unit, typ); n != annotation.None || typ == nil {
		return n
	}
	eff := r.scopes[i].Effective
	switch {
	case typ.Elem != nil:
		if eff.Has(annotation.ArrayContents) && typ.Elem.IsReference() {
			return annotation.NonNull
		}
	case len(typ.Args) > 0:
		arg := typ.Args[len(typ.Args)-1]
		if eff.Has(annotation.TypeArgument) && arg.IsReference() && arg.Name != "?" {
			return annotation.NonNull
		}
	}
	return annotation.None
}
