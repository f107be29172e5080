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
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
)

func ann(t *testing.T, s string) *ast.Annotation {
	t.Helper()
	a, err := ast.ParseAnnotation(s)
	require.NoError(t, err)
	return a
}

func typ(t *testing.T, s string) *ast.Type {
	t.Helper()
	ty, err := ast.ParseType(s)
	require.NoError(t, err)
	return ty
}

func TestMatches(t *testing.T) {
	t.Parallel()

	const nonNull = "org.eclipse.jdt.annotation.NonNull"
	tests := []struct {
		name    string
		written string
		imports []string
		want    bool
	}{
		{name: "simple", written: "NonNull", want: true},
		{name: "qualified", written: nonNull, want: true},
		{name: "other qualified", written: "javax.annotation.NonNull", want: false},
		{name: "other simple", written: "Nonnull", want: false},
		{name: "imported", written: "NonNull", imports: []string{nonNull}, want: true},
		{name: "wildcard import", written: "NonNull", imports: []string{"lombok.*"}, want: true},
		{name: "shadowed by import", written: "NonNull", imports: []string{"lombok.NonNull"}, want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u := &ast.CompilationUnit{Imports: tt.imports}
			require.Equal(t, tt.want, Matches(ann(t, tt.written), u, nonNull))
		})
	}
}

func TestExplicit(t *testing.T) {
	t.Parallel()

	names := NewNames(config.Default())

	e := names.Explicit(nil, []*ast.Annotation{ann(t, "@Deprecated"), ann(t, "@Nullable")}, typ(t, "Object"))
	require.Equal(t, Nullable, e.Nullness)
	require.Nil(t, e.Contradiction)

	e = names.Explicit(nil, nil, typ(t, "@NonNull Object"))
	require.Equal(t, NonNull, e.Nullness)

	e = names.Explicit(nil, []*ast.Annotation{ann(t, "@NonNull")}, typ(t, "@Nullable Object"))
	require.Equal(t, NonNull, e.Nullness)
	require.NotNil(t, e.Contradiction)
	require.Equal(t, "Nullable", e.Contradiction.Name)

	// Repeating the same annotation is not a contradiction.
	e = names.Explicit(nil, []*ast.Annotation{ann(t, "@NonNull")}, typ(t, "@NonNull Object"))
	require.Nil(t, e.Contradiction)

	// Leading annotations of an array type annotate its elements, not the array.
	arr := typ(t, "@NonNull Object[]")
	require.Equal(t, None, names.Explicit(nil, nil, arr).Nullness)
	require.Equal(t, NonNull, names.ElementNullness(nil, arr))
	require.Equal(t, Nullable, names.ElementNullness(nil, typ(t, "List<@Nullable String>")))
	require.Equal(t, None, names.ElementNullness(nil, typ(t, "Object")))
}

func TestIsIllegalLocation(t *testing.T) {
	t.Parallel()

	names := NewNames(config.Default())
	for _, s := range []string{"int", "void", "boolean"} {
		ty := typ(t, s)
		e := names.Explicit(nil, []*ast.Annotation{ann(t, "@NonNull")}, ty)
		require.True(t, IsIllegalLocation(e, ty), s)
		require.False(t, IsIllegalLocation(Explicit{}, ty), s)
	}
	ty := typ(t, "int[]")
	require.False(t, IsIllegalLocation(names.Explicit(nil, []*ast.Annotation{ann(t, "@Nullable")}, ty), ty))
}

func TestDefault(t *testing.T) {
	t.Parallel()

	names := NewNames(config.Default())
	tests := []struct {
		src  string
		want LocationSet
	}{
		{src: "@NonNullByDefault", want: DefaultLocations},
		{src: "@NonNullByDefault(true)", want: DefaultLocations},
		{src: "@NonNullByDefault(false)", want: 0},
		{src: "@NonNullByDefault({})", want: 0},
		{src: "@NonNullByDefault({PARAMETER, DefaultLocation.RETURN_TYPE})", want: LocationSet(Parameter | Return)},
		{src: "@NonNullByDefault(FIELD)", want: LocationSet(Field)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			spec, ok := names.Default(nil, []*ast.Annotation{ann(t, "@Deprecated"), ann(t, tt.src)})
			require.True(t, ok)
			require.Equal(t, tt.want, spec.Locations)
		})
	}

	_, ok := names.Default(nil, []*ast.Annotation{ann(t, "@NonNull")})
	require.False(t, ok)
}

func TestLocationSet(t *testing.T) {
	t.Parallel()

	s := LocationSet(0).With(Parameter).With(Field)
	require.True(t, s.Has(Parameter))
	require.False(t, s.Has(Return))
	require.Equal(t, "{PARAMETER, FIELD}", s.String())
	require.Equal(t, "{}", LocationSet(0).String())
	require.Equal(t, "RETURN_TYPE", Return.String())

	l, ok := ParseLocation("array_contents")
	require.True(t, ok)
	require.Equal(t, ArrayContents, l)
	_, ok = ParseLocation("LOCAL")
	require.False(t, ok)
}

func TestInjectionRegistry(t *testing.T) {
	t.Parallel()

	reg := NewInjectionRegistry(NewNames(config.Default()))
	owner := &ast.TypeDecl{Unit: &ast.CompilationUnit{Imports: []string{"com.google.inject.Inject"}}}

	require.True(t, reg.Exempts(&ast.FieldDecl{Owner: owner, Annotations: []*ast.Annotation{ann(t, "@Inject")}}))
	require.True(t, reg.Exempts(&ast.FieldDecl{Owner: owner, Annotations: []*ast.Annotation{ann(t, "@Inject(optional = true)")}}))
	require.True(t, reg.Exempts(&ast.FieldDecl{Annotations: []*ast.Annotation{ann(t, "@javax.inject.Inject")}}))
	require.False(t, reg.Exempts(&ast.FieldDecl{Owner: owner, Annotations: []*ast.Annotation{ann(t, "@NonNull")}}))
	require.False(t, reg.Exempts(&ast.FieldDecl{Annotations: []*ast.Annotation{ann(t, "@org.acme.Inject")}}))
}

func TestKeys(t *testing.T) {
	t.Parallel()

	require.Equal(t, "parameter o of p.X.foo(Object)", ParamKey{Type: "p.X", Signature: "foo(Object)", Name: "o"}.String())
	require.Equal(t, "parameter 1 of p.X.foo(Object)", ParamKey{Type: "p.X", Signature: "foo(Object)", Index: 1}.String())
	require.Equal(t, Parameter, ParamKey{}.Location())
	require.Equal(t, NonNull, Contract{Params: []Nullness{NonNull}}.Param(0))
	require.Equal(t, None, Contract{}.Param(3))
}
