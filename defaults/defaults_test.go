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
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/binary"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/diagnostic"
	"go.uber.org/jnilaway/program"
)

const scopesSrc = `
path: p/package-info.java
package: p
annotations: ['@NonNullByDefault({PARAMETER, RETURN_TYPE})']
---
path: p/X.java
package: p
types:
  - name: X
    at: "3:14"
    fields: ["Object f", "@Nullable Object g", "int count"]
    methods:
      - name: m
        at: "5:10"
        params: ["Object a", "@Nullable Object b", "int c"]
        returns: Object
        body:
          - class:
              name: Local
              at: "6:11"
              annotations: ['@NonNullByDefault(false)']
              methods:
                - {name: n, at: "7:14", params: ["Object x"], returns: Object, body: []}
          - expr: {new: {type: Runnable, body: {methods: [{name: run, at: "9:20", params: ["Object y"], body: []}]}}}
            at: "9:9"
      - name: noop
        at: "12:8"
        body: []
    types:
      - name: Inner
        at: "14:17"
        annotations: ['@NonNullByDefault(FIELD)']
        fields: ["Object h"]
        methods:
          - {name: k, at: "16:12", params: ["Object z"], returns: Object}
`

func newTable(t *testing.T, src string, store *binary.Store) (*Table, *program.Program) {
	t.Helper()
	units, err := ast.DecodeAll(strings.NewReader(src))
	require.NoError(t, err)
	prog := program.New(units, store)
	return NewTable(prog, annotation.NewNames(config.Default())), prog
}

func TestResolver_Scopes(t *testing.T) {
	t.Parallel()

	table, prog := newTable(t, scopesSrc, nil)
	x, _ := prog.Type("p.X")
	r := table.For(x.Decl.Unit)

	m := x.Decl.Methods[0]
	require.Equal(t, annotation.NonNull, r.Param(m, 0).Nullness)
	require.True(t, r.Param(m, 0).Defaulted)
	require.Equal(t, annotation.Nullable, r.Param(m, 1).Nullness)
	require.False(t, r.Param(m, 1).Defaulted)
	require.Equal(t, annotation.None, r.Param(m, 2).Nullness, "primitives are never defaulted")
	require.Equal(t, annotation.NonNull, r.Return(m).Nullness)
	require.Equal(t, annotation.None, r.Return(x.Decl.Methods[1]).Nullness, "void is never defaulted")

	// FIELD is not part of the package default.
	require.Equal(t, annotation.None, r.Field(x.Decl.Fields[0]).Nullness)
	require.Equal(t, annotation.Nullable, r.Field(x.Decl.Fields[1]).Nullness)

	// The member type replaces the default with {FIELD}.
	inner, _ := prog.Type("p.X.Inner")
	require.Equal(t, annotation.NonNull, r.Field(inner.Decl.Fields[0]).Nullness)
	k := inner.Decl.Methods[0]
	require.Equal(t, annotation.None, r.Param(k, 0).Nullness)

	// The local class cancels the default; the anonymous class inherits the method's default.
	local, _ := prog.Type("p.X$1Local")
	require.Equal(t, annotation.None, r.Param(local.Decl.Methods[0], 0).Nullness)
	require.Equal(t, annotation.None, r.Return(local.Decl.Methods[0]).Nullness)
	anon, _ := prog.Type("p.X$2")
	require.Equal(t, annotation.NonNull, r.Param(anon.Decl.Methods[0], 0).Nullness)

	require.Equal(t, annotation.Contract{
		Params: []annotation.Nullness{annotation.NonNull, annotation.Nullable, annotation.None},
		Return: annotation.NonNull,
	}, r.Contract(m))

	s := r.Scope(r.TypeScope(local.Decl))
	require.Equal(t, TypeScope, s.Kind)
	require.Equal(t, MethodScope, r.Scope(s.Parent).Kind)
	require.True(t, s.Declared)
	require.True(t, r.Effective(r.TypeScope(local.Decl)).IsEmpty())
}

func TestResolver_Element(t *testing.T) {
	t.Parallel()

	table, prog := newTable(t, scopesSrc, nil)
	x, _ := prog.Type("p.X")
	r := table.For(x.Decl.Unit)
	scope := r.TypeScope(x.Decl)

	parse := func(s string) *ast.Type {
		typ, err := ast.ParseType(s)
		require.NoError(t, err)
		return typ
	}
	require.Equal(t, annotation.None, r.Element(scope, parse("List<String>")))
	require.Equal(t, annotation.Nullable, r.Element(scope, parse("List<@Nullable String>")))

	local, _ := prog.Type("p.X$1Local")
	require.Equal(t, annotation.None, r.Element(r.TypeScope(local.Decl), parse("Object[]")))
	require.Equal(t, annotation.NonNull, r.Element(scope, parse("@NonNull Object[]")))
}

func TestResolver_Check(t *testing.T) {
	t.Parallel()

	src := `
path: p/Y.java
package: p
types:
  - name: Y
    at: "2:7"
    annotations: [{name: NonNullByDefault, at: "1:1"}]
    fields:
      - {name: a, type: "@NonNull Object", at: "3:20"}
      - name: b
        at: "4:30"
        type: Object
        annotations: [{name: NonNull, at: "4:3"}, {name: Nullable, at: "4:12"}]
      - {name: c, type: "@Nullable int", at: "5:17"}
    methods:
      - name: m
        at: "7:8"
        annotations: [{name: NonNullByDefault, at: "6:3"}]
        body:
          - local: {name: v, type: "@NonNull long", at: "8:19"}
  - name: Z
    at: "11:7"
`
	table, prog := newTable(t, src, nil)
	y, _ := prog.Type("p.Y")
	conf := config.Default()
	conf.Severities[config.MissingNonNullByDefault] = config.Warning
	e := diagnostic.NewEngine(conf, y.Decl.Unit)
	table.For(y.Decl.Unit).Check(e)

	var got []string
	for _, d := range e.Diagnostics() {
		got = append(got, string(d.Kind)+" "+d.Span.Start.String())
	}
	require.Equal(t, []string{
		"RedundantAnnotation 3:20",
		"AnnotationContradiction 4:12",
		"IllegalAnnotationLocation 5:17",
		"RedundantDefault 6:3",
		"IllegalAnnotationLocation 8:19",
		"MissingDefault 11:7",
	}, got)
}

func binaryStore() *binary.Store {
	s := binary.NewStore()
	s.Packages.Store("q", &binary.Package{Name: "q", Default: binary.Default{Declared: true, Locations: annotation.DefaultLocations}})
	s.Types.Store("q.Lib", &binary.Type{
		Name:    "q.Lib",
		Package: "q",
		Fields: []*binary.Field{
			{Name: "name", Type: "String"},
			{Name: "size", Type: "int"},
			{Name: "opt", Type: "String", Nullness: annotation.Nullable},
		},
		Methods: []*binary.Method{
			{Name: "get", Params: []string{"Object", "int"}, Returns: "Object"},
			{
				Name: "loose", Params: []string{"Object"}, Returns: "Object",
				Default: binary.Default{Declared: true},
			},
			{Name: "Lib", Constructor: true, Params: []string{"String"}},
		},
	})
	s.Types.Store("q.Lib.Nested", &binary.Type{
		Name:    "q.Lib.Nested",
		Package: "q",
		Outer:   "q.Lib",
		Fields:  []*binary.Field{{Name: "x", Type: "Object"}},
	})
	s.Types.Store("r.Orphan", &binary.Type{
		Name:    "r.Orphan",
		Package: "r",
		Fields:  []*binary.Field{{Name: "x", Type: "Object"}},
	})
	return s
}

func TestTable_BinaryContracts(t *testing.T) {
	t.Parallel()

	table, prog := newTable(t, scopesSrc, binaryStore())
	lib, _ := prog.Type("q.Lib")

	get := lib.Method("get(Object,int)")
	c, err := table.Contract(get)
	require.NoError(t, err)
	require.Equal(t, annotation.Contract{
		Params: []annotation.Nullness{annotation.NonNull, annotation.None},
		Return: annotation.NonNull,
	}, c)

	c, err = table.Contract(lib.Method("loose(Object)"))
	require.NoError(t, err)
	require.Equal(t, annotation.Contract{Params: []annotation.Nullness{annotation.None}}, c)

	ctor := lib.Constructors()[0]
	c, err = table.Contract(ctor)
	require.NoError(t, err)
	require.Equal(t, annotation.None, c.Return)
	require.Equal(t, annotation.NonNull, c.Param(0))

	spec, err := table.FieldNullness(lib.Field("name"))
	require.NoError(t, err)
	require.Equal(t, annotation.NonNull, spec.Nullness)
	require.True(t, spec.Defaulted)
	spec, _ = table.FieldNullness(lib.Field("size"))
	require.Equal(t, annotation.None, spec.Nullness)
	spec, _ = table.FieldNullness(lib.Field("opt"))
	require.Equal(t, annotation.Nullable, spec.Nullness)

	nested, _ := prog.Type("q.Lib.Nested")
	spec, err = table.FieldNullness(nested.Field("x"))
	require.NoError(t, err)
	require.Equal(t, annotation.NonNull, spec.Nullness)

	// A binary type whose package metadata is absent is a resolution error.
	orphan, _ := prog.Type("r.Orphan")
	_, err = table.FieldNullness(orphan.Field("x"))
	var rerr *program.ResolutionError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, "r", rerr.Name)
	require.Equal(t, "r.Orphan", rerr.From)
}

func TestTable_BinaryPackageDefault(t *testing.T) {
	t.Parallel()

	src := `
path: q/Ext.java
package: q
types:
  - name: Ext
    methods: [{name: f, params: ["Object o"], body: []}]
`
	table, prog := newTable(t, src, binaryStore())
	ext, _ := prog.Type("q.Ext")
	r := table.For(ext.Decl.Unit)
	require.Equal(t, annotation.NonNull, r.Param(ext.Decl.Methods[0], 0).Nullness)
	require.Equal(t, "package q", r.Scope(0).Name)
	require.Nil(t, r.Scope(0).Annotation)
}

func TestBinaryCache_Concurrent(t *testing.T) {
	t.Parallel()

	cache := NewBinaryCache(binaryStore())
	var wg sync.WaitGroup
	results := make([]annotation.LocationSet, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set, err := cache.TypeDefault("q.Lib.Nested")
			if err == nil {
				results[i] = set
			}
		}()
	}
	wg.Wait()
	for _, set := range results {
		require.Equal(t, annotation.DefaultLocations, set)
	}

	_, err := cache.TypeDefault("q.Missing")
	require.Error(t, err)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
