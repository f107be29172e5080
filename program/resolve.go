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

package program

import (
	"slices"
	"strings"

	"go.uber.org/jnilaway/ast"
)

// Resolve resolves a type name as written inside the declaration from.
func (p *Program) Resolve(from *ast.TypeDecl, name string) (*Type, bool) {
	return p.ResolveIn(from.Unit, from, name)
}

// ResolveIn resolves a type name written in unit u, lexically inside from (which may be nil for
// names written at unit level, such as in imports or package annotations).
//
// Simple names are looked up, in order, among the local classes and member types of the
// enclosing types, the single-type imports, the package of u, the on-demand imports, and finally
// java.lang. Dotted names are tried as qualified names first, then as a nested type path whose
// first segment is a simple name.
func (p *Program) ResolveIn(u *ast.CompilationUnit, from *ast.TypeDecl, name string) (*Type, bool) {
	if name == "" {
		return nil, false
	}
	if strings.Contains(name, ".") {
		if t, ok := p.Type(name); ok {
			return t, true
		}
		first, rest, _ := strings.Cut(name, ".")
		outer, ok := p.resolveSimple(u, from, first)
		if !ok {
			return nil, false
		}
		return p.Type(outer.Name + "." + rest)
	}
	return p.resolveSimple(u, from, name)
}

func (p *Program) resolveSimple(u *ast.CompilationUnit, from *ast.TypeDecl, name string) (*Type, bool) {
	for t := from; t != nil; t = t.Outer {
		if u != nil {
			for _, local := range u.AllTypes() {
				if local.Local && local.Outer == t && local.Name == name {
					return p.Type(local.Qualified)
				}
			}
		}
		if !t.Anonymous && t.Name == name {
			return p.Type(t.Qualified)
		}
		if m, ok := p.memberType(p.TypeOf(t), name, make(map[*Type]bool)); ok {
			return m, true
		}
	}
	if u == nil {
		return p.Type(ast.Qualify("java.lang", name))
	}

	for _, imp := range u.Imports {
		if !strings.HasSuffix(imp, ".*") && ast.SimpleName(imp) == name {
			return p.Type(imp)
		}
	}
	if t, ok := p.Type(ast.Qualify(u.Package, name)); ok {
		return t, true
	}
	for _, imp := range u.Imports {
		if pkg, ok := strings.CutSuffix(imp, ".*"); ok {
			if t, ok := p.Type(pkg + "." + name); ok {
				return t, true
			}
		}
	}
	return p.Type(ast.Qualify("java.lang", name))
}

// memberType finds a member type declared in t or inherited from its supertypes.
func (p *Program) memberType(t *Type, name string, seen map[*Type]bool) (*Type, bool) {
	if t == nil || seen[t] {
		return nil, false
	}
	seen[t] = true
	if m, ok := p.Type(t.Name + "." + name); ok {
		return m, true
	}
	for _, s := range t.Supertypes() {
		if m, ok := p.memberType(s, name, seen); ok {
			return m, true
		}
	}
	return nil, false
}

// ResolveRef resolves a type reference written inside from.
func (p *Program) ResolveRef(from *ast.TypeDecl, ref *ast.Type) (*Type, bool) {
	if ref == nil || ref.IsArray() || !ref.IsReference() {
		return nil, false
	}
	return p.Resolve(from, ref.Name)
}

// FindField looks a field up in t and its supertypes.
func (p *Program) FindField(t *Type, name string) (*Field, bool) {
	seen := make(map[*Type]bool)
	var find func(t *Type) *Field
	find = func(t *Type) *Field {
		if t == nil || seen[t] {
			return nil
		}
		seen[t] = true
		if f := t.Field(name); f != nil {
			return f
		}
		for _, s := range t.Supertypes() {
			if f := find(s); f != nil {
				return f
			}
		}
		return nil
	}
	f := find(t)
	return f, f != nil
}

// FindMethod selects the method invoked by a call of name with the given argument types on a
// receiver of type t. argTypes holds the erased simple type names of the arguments, "" where the
// type is unknown and "null" for the null literal. The closest type of the hierarchy declaring an
// applicable method wins; among its candidates the one matching most argument types is chosen,
// the first declared on ties.
func (p *Program) FindMethod(t *Type, name string, argTypes []string) (*Method, bool) {
	seen := make(map[*Type]bool)
	queue := []*Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == nil || seen[cur] {
			continue
		}
		seen[cur] = true

		var best *Method
		bestScore := -1
		for _, m := range cur.Methods {
			if m.Constructor || m.Name != name || len(m.Params) != len(argTypes) {
				continue
			}
			if score, ok := applicable(m.Params, argTypes); ok && score > bestScore {
				best, bestScore = m, score
			}
		}
		if best != nil {
			return best, true
		}
		queue = append(queue, cur.Supertypes()...)
	}
	return nil, false
}

// FindConstructor selects the constructor of t invoked with the given argument types.
func (p *Program) FindConstructor(t *Type, argTypes []string) (*Method, bool) {
	var best *Method
	bestScore := -1
	for _, m := range t.Constructors() {
		if len(m.Params) != len(argTypes) {
			continue
		}
		if score, ok := applicable(m.Params, argTypes); ok && score > bestScore {
			best, bestScore = m, score
		}
	}
	return best, best != nil
}

var _primitives = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true,
}

// applicable scores the match of argument types against parameter types. A null argument cannot
// be passed to a primitive parameter.
func applicable(params, args []string) (int, bool) {
	score := 0
	for i, a := range args {
		switch {
		case a == "":
		case a == "null":
			if _primitives[params[i]] {
				return 0, false
			}
		case a == params[i]:
			score++
		}
	}
	return score, true
}

// Overridden returns the methods overridden or implemented by m: for each path up the hierarchy
// of its owner, the closest method with the same signature.
func (p *Program) Overridden(m *Method) []*Method {
	if !m.CanOverride() {
		return nil
	}
	var found []*Method
	seen := make(map[*Type]bool)
	var visit func(t *Type)
	visit = func(t *Type) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		if sm := t.Method(m.Signature()); sm != nil && sm.CanOverride() {
			if !slices.Contains(found, sm) {
				found = append(found, sm)
			}
			return
		}
		for _, s := range t.Supertypes() {
			visit(s)
		}
	}
	for _, s := range m.Owner.Supertypes() {
		visit(s)
	}
	return found
}

// Inherited returns, keyed by signature in discovery order, the overridable methods t inherits
// from its supertypes without declaring them itself. Each entry lists the closest declaration
// found on each path up the hierarchy.
func (p *Program) Inherited(t *Type) ([]string, map[string][]*Method) {
	var order []string
	bySig := make(map[string][]*Method)
	declared := make(map[string]bool)
	for _, m := range t.Methods {
		if m.CanOverride() {
			declared[m.Signature()] = true
		}
	}

	var visit func(s *Type, shadowed map[string]bool, seen map[*Type]bool)
	visit = func(s *Type, shadowed map[string]bool, seen map[*Type]bool) {
		if s == nil || seen[s] {
			return
		}
		seen[s] = true
		next := make(map[string]bool, len(shadowed))
		for k := range shadowed {
			next[k] = true
		}
		for _, m := range s.Methods {
			if !m.CanOverride() {
				continue
			}
			sig := m.Signature()
			if declared[sig] || shadowed[sig] {
				continue
			}
			if _, ok := bySig[sig]; !ok {
				order = append(order, sig)
			}
			if !slices.Contains(bySig[sig], m) {
				bySig[sig] = append(bySig[sig], m)
			}
			next[sig] = true
		}
		for _, sup := range s.Supertypes() {
			visit(sup, next, seen)
		}
	}
	for _, s := range t.Supertypes() {
		visit(s, nil, make(map[*Type]bool))
	}
	return order, bySig
}
