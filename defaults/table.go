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

package defaults

import (
	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/program"
)

var _primitives = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// Table holds the resolvers of every unit of a batch and resolves the contracts of source and
// binary members alike. It is built before the per-unit analyses start and is read-only
// afterwards, except for the internal binary cache which is safe for concurrent use.
type Table struct {
	prog      *program.Program
	names     *annotation.Names
	cache     *BinaryCache
	resolvers map[*ast.CompilationUnit]*Resolver
}

// NewTable runs the default pre-pass over every unit of prog. Package scopes are computed once
// per package: from the source package annotations if the batch has them, else from the binary
// package metadata.
func NewTable(prog *program.Program, names *annotation.Names) *Table {
	t := &Table{
		prog:      prog,
		names:     names,
		cache:     NewBinaryCache(prog.Store()),
		resolvers: make(map[*ast.CompilationUnit]*Resolver),
	}
	packages := make(map[string]Scope)
	for _, u := range prog.Units() {
		pkg, ok := packages[u.Package]
		if !ok {
			pkg = t.packageScope(u.Package)
			packages[u.Package] = pkg
		}
		t.resolvers[u] = newResolver(names, u, pkg)
	}
	return t
}

func (t *Table) packageScope(pkg string) Scope {
	if info, ok := t.prog.PackageInfo(pkg); ok {
		spec, declared := t.names.Default(info, info.Annotations)
		var at ast.Pos
		if declared {
			at = spec.Annotation.At
		}
		return packageScope(pkg, declared, spec.Locations, spec.Annotation, at)
	}
	if d, ok := t.cache.PackageDefault(pkg); ok {
		return packageScope(pkg, d.Declared, d.Locations, nil, ast.Pos{})
	}
	return packageScope(pkg, false, 0, nil, ast.Pos{})
}

// For returns the resolver of unit u.
func (t *Table) For(u *ast.CompilationUnit) *Resolver {
	return t.resolvers[u]
}

// Names returns the annotation recognizer of the batch.
func (t *Table) Names() *annotation.Names { return t.names }

// Contract returns the resolved nullness contract of a source or binary method.
func (t *Table) Contract(m *program.Method) (annotation.Contract, error) {
	if m.Decl != nil {
		return t.For(m.Decl.Owner.Unit).Contract(m.Decl), nil
	}

	set, err := t.cache.MethodDefault(m.Owner.Bin, m.Bin)
	if err != nil {
		return annotation.Contract{}, err
	}
	c := annotation.Contract{Params: make([]annotation.Nullness, len(m.Params))}
	for i, typ := range m.Params {
		c.Params[i] = binaryNullness(m.Bin.Contract.Param(i), typ, set, annotation.Parameter)
	}
	if !m.Constructor {
		c.Return = binaryNullness(m.Bin.Contract.Return, m.Bin.Returns, set, annotation.Return)
	}
	return c, nil
}

// FieldNullness returns the resolved nullness of a source or binary field.
func (t *Table) FieldNullness(f *program.Field) (Spec, error) {
	if f.Decl != nil {
		return t.For(f.Decl.Owner.Unit).Field(f.Decl), nil
	}
	set, err := t.cache.TypeDefault(f.Owner.Name)
	if err != nil {
		return Spec{}, err
	}
	n := binaryNullness(f.Bin.Nullness, f.Bin.Type, set, annotation.Field)
	return Spec{Nullness: n, Defaulted: f.Bin.Nullness == annotation.None && n != annotation.None}, nil
}

func binaryNullness(explicit annotation.Nullness, typ string, set annotation.LocationSet, loc annotation.Location) annotation.Nullness {
	if explicit != annotation.None {
		return explicit
	}
	if typ == "" || _primitives[ast.SimpleName(typ)] || !set.Has(loc) {
		return annotation.None
	}
	return annotation.NonNull
}
