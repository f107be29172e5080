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

package ast

import "strconv"

// Link fills in the derived links of a decoded unit: owners of members, enclosing types and
// methods of nested, local and anonymous classes, qualified names, record component members and
// declaration end positions. Link is idempotent.
func Link(u *CompilationUnit) {
	l := &linker{unit: u, counters: make(map[*TypeDecl]int)}
	u.allTypes = u.allTypes[:0]
	for _, t := range u.Types {
		l.linkType(t, nil, nil, Qualify(u.Package, t.Name))
	}
}

// Qualify joins a package name and a type name.
func Qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

type linker struct {
	unit *CompilationUnit
	// counters numbers local and anonymous classes per enclosing type.
	counters map[*TypeDecl]int
}

func (l *linker) next(owner *TypeDecl) string {
	l.counters[owner]++
	return strconv.Itoa(l.counters[owner])
}

func (l *linker) linkType(t *TypeDecl, outer *TypeDecl, method *MethodDecl, qualified string) {
	t.Unit, t.Outer, t.EnclosingMethod, t.Qualified = l.unit, outer, method, qualified
	l.unit.allTypes = append(l.unit.allTypes, t)

	if t.Kind == KindRecord {
		l.synthesizeRecordMembers(t)
	}

	for _, c := range t.Constants {
		for _, a := range c.Args {
			l.linkBody(a, t, nil)
		}
		if c.Body != nil {
			c.Body.Anonymous, c.Body.EnumConstantBody = true, true
			if c.Body.Kind == "" {
				c.Body.Kind = KindClass
			}
			if c.Body.Extends == nil {
				c.Body.Extends = &Type{Name: t.Name, At: c.At}
			}
			if !c.Body.At.IsValid() {
				c.Body.At = c.At
			}
			l.linkType(c.Body, t, nil, t.Qualified+"$"+l.next(t))
		}
	}
	for _, f := range t.Fields {
		f.Owner = t
		if f.Init != nil {
			l.linkBody(f.Init, t, nil)
		}
	}
	for _, i := range t.Initializers {
		if i.Body != nil {
			l.linkBody(i.Body, t, nil)
		}
	}
	for _, m := range t.Methods {
		m.Owner = t
		if m.Body != nil {
			l.linkBody(m.Body, t, m)
		}
		m.End = End(m)
	}
	for _, nested := range t.Types {
		l.linkType(nested, t, nil, t.Qualified+"."+nested.Name)
	}
	t.End = End(t)
}

// linkBody links the local and anonymous classes found in a member body.
func (l *linker) linkBody(n Node, owner *TypeDecl, method *MethodDecl) {
	Inspect(n, func(c Node) bool {
		switch c := c.(type) {
		case *LocalClass:
			c.Decl.Local = true
			l.linkType(c.Decl, owner, method, owner.Qualified+"$"+l.next(owner)+c.Decl.Name)
			return false
		case *New:
			if c.Body == nil {
				return true
			}
			for _, a := range c.Args {
				l.linkBody(a, owner, method)
			}
			c.Body.Anonymous = true
			if c.Body.Kind == "" {
				c.Body.Kind = KindClass
			}
			if c.Body.Extends == nil {
				c.Body.Extends = c.Type
			}
			if !c.Body.At.IsValid() {
				c.Body.At = c.At
			}
			l.linkType(c.Body, owner, method, owner.Qualified+"$"+l.next(owner))
			return false
		}
		return true
	})
}

// synthesizeRecordMembers adds the implicit private fields and accessors of record components,
// unless they are declared explicitly.
func (l *linker) synthesizeRecordMembers(t *TypeDecl) {
	for _, c := range t.Components {
		if t.Field(c.Name) == nil {
			t.Fields = append(t.Fields, &FieldDecl{
				Name:        c.Name,
				Type:        c.Type,
				Modifiers:   Modifiers{Private, Final},
				Annotations: c.Annotations,
				At:          c.At,
				Synthetic:   true,
			})
		}
		declared := false
		for _, m := range t.Methods {
			if m.Name == c.Name && len(m.Params) == 0 && !m.Constructor {
				declared = true
				break
			}
		}
		if !declared {
			t.Methods = append(t.Methods, &MethodDecl{
				Name:        c.Name,
				Returns:     c.Type,
				Modifiers:   Modifiers{Public},
				Annotations: c.Annotations,
				At:          c.At,
				Synthetic:   true,
			})
		}
	}
}

// End returns the greatest position found in the subtree of n.
func End(n Node) Pos {
	end := n.Pos()
	Inspect(n, func(c Node) bool {
		if p := c.Pos(); end.Before(p) {
			end = p
		}
		return true
	})
	return end
}
