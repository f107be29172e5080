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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/binary"
	"go.uber.org/jnilaway/config"
)

const hierarchySrc = `
path: p/Shapes.java
package: p
module: shapes
imports: [q.Base, r.*]
types:
  - name: Shape
    kind: interface
    modifiers: [sealed]
    permits: [Circle, Square]
    methods:
      - {name: area, returns: double}
      - {name: describe, params: ["Object o"], returns: String}
  - name: Circle
    modifiers: [final]
    extends: Base
    implements: [Shape]
    fields: ["double r"]
    methods:
      - {name: area, returns: double, body: []}
      - {name: describe, params: ["Object o"], returns: String, body: []}
      - {name: Circle, constructor: true, params: ["double r"], body: []}
  - name: Square
    modifiers: [non-sealed]
    implements: [Shape]
    types:
      - {name: Corner, kind: record, components: ["int x"]}
    methods:
      - name: make
        returns: Shape
        body:
          - return: {new: {type: Shape, body: {methods: [{name: area, returns: double, body: []}]}}}
---
path: p/Other.java
package: p
types:
  - name: Other
    extends: Square
    methods:
      - {name: pick, params: ["Object o"], returns: Object, body: []}
      - {name: pick, params: ["String s"], returns: Object, body: []}
      - {name: pick, params: ["int i"], returns: Object, body: []}
`

func binaryStore() *binary.Store {
	s := binary.NewStore()
	s.Modules.Store("lib", &binary.Module{Name: "lib"})
	s.Modules.Store("shapes", &binary.Module{Name: "shapes", Requires: []string{"lib"}})
	s.Packages.Store("q", &binary.Package{Name: "q", Module: "lib"})
	s.Types.Store("java.lang.Object", &binary.Type{
		Name:    "java.lang.Object",
		Package: "java.lang",
		Methods: []*binary.Method{{Name: "toString"}, {Name: "equals", Params: []string{"Object"}}},
	})
	s.Types.Store("java.lang.String", &binary.Type{Name: "java.lang.String", Package: "java.lang", Modifiers: []string{"final"}})
	s.Types.Store("q.Base", &binary.Type{
		Name:    "q.Base",
		Package: "q",
		Fields:  []*binary.Field{{Name: "id", Type: "String"}},
	})
	s.Types.Store("r.Util", &binary.Type{Name: "r.Util", Package: "r", Kind: "interface"})
	return s
}

func newProgram(t *testing.T, src string) *Program {
	t.Helper()
	units, err := ast.DecodeAll(strings.NewReader(src))
	require.NoError(t, err)
	return New(units, binaryStore())
}

func TestNew_Hierarchy(t *testing.T) {
	t.Parallel()

	p := newProgram(t, hierarchySrc)
	shape, ok := p.Type("p.Shape")
	require.True(t, ok)
	require.True(t, shape.IsSealed())
	require.True(t, shape.IsSource())
	require.Nil(t, shape.Super)

	circle, _ := p.Type("p.Circle")
	require.Equal(t, "q.Base", circle.Super.Name)
	require.Equal(t, []*Type{shape}, circle.Interfaces)
	require.Equal(t, "shapes", p.ModuleOf(circle))

	base, _ := p.Type("q.Base")
	require.False(t, base.IsSource())
	require.Equal(t, ObjectName, base.Super.Name)

	// The anonymous class instantiating an interface implements it.
	anon, ok := p.Type("p.Square$1")
	require.True(t, ok)
	require.Equal(t, ObjectName, anon.Super.Name)
	require.Equal(t, []*Type{shape}, anon.Interfaces)

	var subs []string
	for _, s := range p.DirectSubtypes(shape) {
		subs = append(subs, s.Name)
	}
	require.Equal(t, []string{"p.Circle", "p.Square", "p.Square$1"}, subs)

	other, _ := p.Type("p.Other")
	require.True(t, p.IsSubtype(other, shape))
	require.False(t, p.IsSubtype(circle, other))
}

func TestType_IsSealed(t *testing.T) {
	t.Parallel()

	sealed := ast.Modifiers{ast.Sealed}
	require.True(t, (&Type{Kind: ast.KindInterface, Modifiers: sealed}).IsSealed())
	require.False(t, (&Type{Kind: ast.KindClass}).IsSealed())
	require.False(t, (&Type{Kind: ast.KindRecord, Modifiers: sealed}).IsSealed())
	require.False(t, (&Type{Kind: ast.KindEnum, Modifiers: sealed, Decl: &ast.TypeDecl{Kind: ast.KindEnum}}).IsSealed())

	withBody := &ast.TypeDecl{Kind: ast.KindEnum, Constants: []*ast.EnumConstant{{Name: "A", Body: &ast.TypeDecl{}}}}
	require.True(t, (&Type{Kind: ast.KindEnum, Decl: withBody}).IsSealed())
	require.True(t, (&Type{Kind: ast.KindEnum, Bin: &binary.Type{Permits: []string{"e.Op$1"}}}).IsSealed())
	require.False(t, (&Type{Kind: ast.KindEnum, Bin: &binary.Type{}}).IsSealed())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	p := newProgram(t, hierarchySrc)
	square, _ := p.Type("p.Square")
	tests := []struct {
		name string
		want string
	}{
		{name: "Corner", want: "p.Square.Corner"},
		{name: "Square.Corner", want: "p.Square.Corner"},
		{name: "Base", want: "q.Base"},
		{name: "Util", want: "r.Util"},
		{name: "Circle", want: "p.Circle"},
		{name: "String", want: "java.lang.String"},
		{name: "q.Base", want: "q.Base"},
	}
	for _, tt := range tests {
		got, ok := p.Resolve(square.Decl, tt.name)
		require.True(t, ok, tt.name)
		require.Equal(t, tt.want, got.Name, tt.name)
	}
	_, ok := p.Resolve(square.Decl, "Missing")
	require.False(t, ok)
}

func TestFindMembers(t *testing.T) {
	t.Parallel()

	p := newProgram(t, hierarchySrc)
	circle, _ := p.Type("p.Circle")

	f, ok := p.FindField(circle, "id")
	require.True(t, ok)
	require.Equal(t, "q.Base", f.Owner.Name)
	_, ok = p.FindField(circle, "nope")
	require.False(t, ok)

	m, ok := p.FindMethod(circle, "toString", nil)
	require.True(t, ok)
	require.Equal(t, ObjectName, m.Owner.Name)

	ctor, ok := p.FindConstructor(circle, []string{"double"})
	require.True(t, ok)
	require.True(t, ctor.Constructor)

	other, _ := p.Type("p.Other")
	m, ok = p.FindMethod(other, "pick", []string{"String"})
	require.True(t, ok)
	require.Equal(t, "pick(String)", m.Signature())
	m, ok = p.FindMethod(other, "pick", []string{"null"})
	require.True(t, ok)
	require.Equal(t, "pick(Object)", m.Signature())
	m, ok = p.FindMethod(other, "pick", []string{"int"})
	require.True(t, ok)
	require.Equal(t, "pick(int)", m.Signature())
}

func TestOverriddenAndInherited(t *testing.T) {
	t.Parallel()

	p := newProgram(t, hierarchySrc)
	circle, _ := p.Type("p.Circle")
	describe := circle.Method("describe(Object)")
	require.NotNil(t, describe)

	over := p.Overridden(describe)
	require.Len(t, over, 1)
	require.Equal(t, "p.Shape.describe(Object)", over[0].String())
	require.Empty(t, p.Overridden(circle.Constructors()[0]))

	square, _ := p.Type("p.Square")
	order, bySig := p.Inherited(square)
	require.Contains(t, order, "area()")
	require.Contains(t, order, "describe(Object)")
	require.Contains(t, order, "toString()")
	require.Equal(t, "p.Shape", bySig["area()"][0].Owner.Name)

	order, _ = p.Inherited(circle)
	require.NotContains(t, order, "area()")
}

func TestModules(t *testing.T) {
	t.Parallel()

	p := newProgram(t, hierarchySrc)
	circle, _ := p.Type("p.Circle")
	square, _ := p.Type("p.Square")
	base, _ := p.Type("q.Base")
	util, _ := p.Type("r.Util")

	require.True(t, p.SameModule(circle, square))
	require.False(t, p.SameModule(circle, base))
	require.Equal(t, "lib", p.ModuleOf(base))
	require.Equal(t, "", p.ModuleOf(util))
	require.False(t, p.SameModule(util, util))
	require.True(t, p.SamePackage(circle, square))
}

func TestCheckAnnotationTypes(t *testing.T) {
	t.Parallel()

	p := newProgram(t, hierarchySrc)
	require.NoError(t, p.CheckAnnotationTypes(config.Default()))

	conf := config.Default()
	conf.NullableName = "org.acme.Nullable"
	err := p.CheckAnnotationTypes(conf)
	var rerr *ResolutionError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, "org.acme.Nullable", rerr.Name)
	require.EqualError(t, err, "cannot resolve org.acme.Nullable required by configuration")

	conf.NullableName = "q.Base"
	require.NoError(t, p.CheckAnnotationTypes(conf))
}
