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

package annotation

import (
	"strings"

	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
)

// Names recognizes the configured annotation types among the annotations written in a unit.
type Names struct {
	nonNull   string
	nullable  string
	byDefault string
	inject    []string
}

// NewNames returns the recognizer for the annotation names configured in conf.
func NewNames(conf *config.Config) *Names {
	return &Names{
		nonNull:   conf.NonNullName,
		nullable:  conf.NullableName,
		byDefault: conf.NonNullByDefaultName,
		inject:    conf.InjectNames,
	}
}

// Configured returns the qualified names of the three nullness annotation types.
func (n *Names) Configured() []string {
	return []string{n.nonNull, n.nullable, n.byDefault}
}

// Matches reports whether the annotation a, written in unit u, denotes the type qualified.
// Qualified names must match exactly. A simple name matches if it is the simple name of
// qualified and no single-type import of u binds that simple name to another type.
func Matches(a *ast.Annotation, u *ast.CompilationUnit, qualified string) bool {
	if strings.Contains(a.Name, ".") {
		return a.Name == qualified
	}
	simple := ast.SimpleName(qualified)
	if a.Name != simple {
		return false
	}
	if u == nil {
		return true
	}
	for _, imp := range u.Imports {
		if imp == qualified {
			return true
		}
		if ast.SimpleName(imp) == simple && !strings.HasSuffix(imp, ".*") {
			return false
		}
	}
	return true
}

// IsNonNull reports whether a is the configured NonNull annotation.
func (n *Names) IsNonNull(a *ast.Annotation, u *ast.CompilationUnit) bool {
	return Matches(a, u, n.nonNull)
}

// IsNullable reports whether a is the configured Nullable annotation.
func (n *Names) IsNullable(a *ast.Annotation, u *ast.CompilationUnit) bool {
	return Matches(a, u, n.nullable)
}

// IsNonNullByDefault reports whether a is the configured NonNullByDefault annotation.
func (n *Names) IsNonNullByDefault(a *ast.Annotation, u *ast.CompilationUnit) bool {
	return Matches(a, u, n.byDefault)
}

// IsInject reports whether a is one of the recognized injection annotations.
func (n *Names) IsInject(a *ast.Annotation, u *ast.CompilationUnit) bool {
	for _, name := range n.inject {
		if Matches(a, u, name) {
			return true
		}
	}
	return false
}

// Explicit is the nullness annotation found at one location.
type Explicit struct {
	Nullness Nullness
	// Annotation is the annotation giving Nullness, nil for None.
	Annotation *ast.Annotation
	// Contradiction is the second, conflicting annotation if both NonNull and Nullable are present.
	Contradiction *ast.Annotation
}

// Explicit collects the nullness annotations of a location from its declaration annotations and
// from the type annotations of its declared type. For array types only the annotations of the
// array reference itself are considered.
func (n *Names) Explicit(u *ast.CompilationUnit, decl []*ast.Annotation, typ *ast.Type) Explicit {
	var e Explicit
	visit := func(a *ast.Annotation) {
		var found Nullness
		switch {
		case n.IsNonNull(a, u):
			found = NonNull
		case n.IsNullable(a, u):
			found = Nullable
		default:
			return
		}
		switch {
		case e.Nullness == None:
			e.Nullness, e.Annotation = found, a
		case e.Nullness != found && e.Contradiction == nil:
			e.Contradiction = a
		}
	}
	for _, a := range decl {
		visit(a)
	}
	if typ != nil {
		for _, a := range typ.Annotations {
			visit(a)
		}
	}
	return e
}

// IsIllegalLocation reports whether e annotates a location that cannot hold null: a primitive
// type or void.
func IsIllegalLocation(e Explicit, typ *ast.Type) bool {
	return e.Nullness != None && typ != nil && (typ.IsPrimitive() || typ.IsVoid())
}

// ElementNullness returns the nullness of the elements of a type: the component type of an
// array, or the single type argument of a generic collection type.
func (n *Names) ElementNullness(u *ast.CompilationUnit, typ *ast.Type) Nullness {
	if typ == nil {
		return None
	}
	var elem *ast.Type
	switch {
	case typ.Elem != nil:
		elem = typ.Elem
	case len(typ.Args) > 0:
		elem = typ.Args[len(typ.Args)-1]
	default:
		return None
	}
	return n.Explicit(u, nil, elem).Nullness
}

// DefaultSpec is a NonNullByDefault annotation.
type DefaultSpec struct {
	// Locations is the set of location categories the default applies to. An empty set cancels
	// the enclosing default.
	Locations  LocationSet
	Annotation *ast.Annotation
}

// Default returns the NonNullByDefault annotation among anns, if any. Arguments are either a
// boolean (false cancels), or a list of location names; no argument means DefaultLocations.
func (n *Names) Default(u *ast.CompilationUnit, anns []*ast.Annotation) (DefaultSpec, bool) {
	for _, a := range anns {
		if !n.IsNonNullByDefault(a, u) {
			continue
		}
		v, ok := a.Arg("value")
		if !ok {
			return DefaultSpec{Locations: DefaultLocations, Annotation: a}, true
		}
		return DefaultSpec{Locations: parseLocations(v), Annotation: a}, true
	}
	return DefaultSpec{}, false
}

func parseLocations(v any) LocationSet {
	switch v := v.(type) {
	case bool:
		if v {
			return DefaultLocations
		}
		return 0
	case string:
		if l, ok := ParseLocation(v); ok {
			return LocationSet(l)
		}
		return 0
	case []any:
		var set LocationSet
		for _, item := range v {
			set |= parseLocations(item)
		}
		return set
	case []string:
		var set LocationSet
		for _, item := range v {
			set |= parseLocations(item)
		}
		return set
	}
	return DefaultLocations
}
