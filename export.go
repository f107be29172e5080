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

package jnilaway

import (
	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/binary"
	"go.uber.org/jnilaway/defaults"
	"go.uber.org/jnilaway/program"
)

// Export describes the source units of an analyzed batch as binary metadata, so that later
// batches can use them as a dependency. Local and anonymous types are not visible outside their
// unit and are skipped. Only explicit annotations and declared defaults are stored; the reader
// resolves defaults the same way for source and binary members.
func Export(res *Result) *binary.Store {
	store := binary.NewStore()
	prog, table := res.Program, res.Table
	names := table.Names()

	for _, u := range prog.Units() {
		r := table.For(u)
		if u.Module != "" && !store.Modules.Has(u.Module) {
			store.Modules.Store(u.Module, &binary.Module{Name: u.Module})
		}
		if !store.Packages.Has(u.Package) {
			pkg := r.Scope(0)
			store.Packages.Store(u.Package, &binary.Package{
				Name:    u.Package,
				Module:  u.Module,
				Default: binary.Default{Declared: pkg.Declared, Locations: pkg.Locations},
			})
		}
		for _, d := range u.AllTypes() {
			if d.Local || d.Anonymous || store.Types.Has(d.Qualified) {
				continue
			}
			if t := prog.TypeOf(d); t != nil {
				store.Types.Store(d.Qualified, exportType(prog, names, r, t))
			}
		}
	}
	return store
}

func exportType(prog *program.Program, names *annotation.Names, r *defaults.Resolver, t *program.Type) *binary.Type {
	d, u := t.Decl, t.Decl.Unit
	scope := r.Scope(r.TypeScope(d))
	bt := &binary.Type{
		Name:    t.Name,
		Package: t.Package,
		Module:  t.Module,
		Kind:    string(t.Kind),
		Default: binary.Default{Declared: scope.Declared, Locations: scope.Locations},
	}
	for _, m := range t.Modifiers {
		bt.Modifiers = append(bt.Modifiers, string(m))
	}
	if t.Outer != nil {
		bt.Outer = t.Outer.Name
	}
	if t.Super != nil {
		bt.Super = t.Super.Name
	}
	for _, i := range t.Interfaces {
		bt.Interfaces = append(bt.Interfaces, i.Name)
	}
	bt.Permits = permits(prog, t)

	for _, f := range t.Fields {
		bt.Fields = append(bt.Fields, &binary.Field{
			Name:     f.Name,
			Type:     f.TypeName,
			Static:   f.Static,
			Nullness: names.Explicit(u, f.Decl.Annotations, f.Decl.Type).Nullness,
		})
	}
	for _, m := range t.Methods {
		md := m.Decl
		ms := r.Scope(r.MethodScope(md))
		bm := &binary.Method{
			Name:        m.Name,
			Params:      m.Params,
			Constructor: m.Constructor,
			Static:      m.Static,
			Abstract:    m.Abstract,
			Contract:    annotation.Contract{Params: make([]annotation.Nullness, len(md.Params))},
			Default:     binary.Default{Declared: ms.Declared, Locations: ms.Locations},
		}
		for i, p := range md.Params {
			bm.ParamNames = append(bm.ParamNames, p.Name)
			bm.Contract.Params[i] = names.Explicit(u, p.Annotations, p.Type).Nullness
		}
		if !md.Constructor {
			bm.Returns = qualifiedName(prog, d, md.Returns)
			bm.Contract.Return = names.Explicit(u, md.Annotations, md.Returns).Nullness
		}
		bt.Methods = append(bt.Methods, bm)
	}
	return bt
}

// permits returns the qualified names of the permitted subtypes of a sealed type.
func permits(prog *program.Program, t *program.Type) []string {
	var out []string
	for _, sub := range prog.PermittedSubtypes(t) {
		out = append(out, sub.Name)
	}
	return out
}

// qualifiedName returns the qualified erased name of a type written in d, or its erased simple
// name when it does not resolve (primitives, void, arrays and unknown types).
func qualifiedName(prog *program.Program, d *ast.TypeDecl, typ *ast.Type) string {
	if typ == nil {
		return ""
	}
	if typ.Elem == nil {
		if t, ok := prog.ResolveRef(d, typ); ok {
			return t.Name
		}
	}
	return ast.ErasedName(typ)
}
