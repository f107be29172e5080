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

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, src string) *CompilationUnit {
	t.Helper()
	units, err := DecodeAll(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, units, 1)
	return units[0]
}

func TestDecode_ScenarioA(t *testing.T) {
	t.Parallel()

	u := decodeOne(t, `
path: p/X.java
package: p
types:
  - name: X
    at: "1:7"
    methods:
      - name: foo
        at: "2:10"
        params: ["@Nullable Object o"]
        body:
          - call: {recv: System.out, name: print, args: [o.toString()]}
            at: "3:5"
          - call: {recv: o, name: toString}
            at: "4:5"
`)
	require.Equal(t, "p/X.java", u.Path)
	require.Len(t, u.Types, 1)
	x := u.Types[0]
	require.Equal(t, KindClass, x.Kind)
	require.Equal(t, "p.X", x.Qualified)
	require.Same(t, u, x.Unit)

	m := x.Methods[0]
	require.Same(t, x, m.Owner)
	require.True(t, m.Returns.IsVoid())
	require.Len(t, m.Params, 1)
	p := m.Params[0]
	require.Equal(t, "o", p.Name)
	require.Equal(t, "Object", p.Type.Name)
	require.Len(t, p.Annotations, 1)
	require.Equal(t, "Nullable", p.Annotations[0].Name)

	require.Len(t, m.Body.Stmts, 2)
	es, ok := m.Body.Stmts[0].(*ExprStmt)
	require.True(t, ok)
	printCall, ok := es.X.(*Call)
	require.True(t, ok)
	require.Equal(t, &FieldAccess{X: &Name{Ident: "System", At: Pos{3, 5}}, Name: "out", At: Pos{3, 5}}, printCall.X)
	require.Equal(t, &Call{X: &Name{Ident: "o", At: Pos{3, 5}}, Name: "toString", At: Pos{3, 5}}, printCall.Args[0])

	call := m.Body.Stmts[1].(*ExprStmt).X.(*Call)
	require.Equal(t, "toString", call.Name)
	require.Equal(t, &Name{Ident: "o", At: Pos{4, 5}}, call.X)
	require.Equal(t, Pos{4, 5}, call.At)
}

func TestDecode_MalformedChainIsReported(t *testing.T) {
	t.Parallel()

	_, err := DecodeAll(strings.NewReader(`
types:
  - name: X
    methods:
      - name: foo
        body:
          - expr: print(o.toString())
`))
	require.ErrorContains(t, err, "malformed expression")
}

func TestDecode_Statements(t *testing.T) {
	t.Parallel()

	u := decodeOne(t, `
types:
  - name: X
    methods:
      - name: m
        returns: "@NonNull Object"
        params: [boolean b]
        body:
          - if:
              cond: b
              then:
                - return: null
                  at: "3:14"
            at: "3:5"
          - local: {name: o, type: Object, init: new}
          - while: {cond: b, body: [{break: ~}]}
          - for: {init: [{local: int i}], cond: {"<": [i, 10]}, update: [{unary: {op: "++", x: i}}], body: []}
          - foreach: {var: "@NonNull String s", in: list, body: {block: []}}
          - try:
              body: [{throw: {new: Exception}}]
              catch: [{param: Exception e, body: []}]
              finally: []
          - switch: {on: b, cases: [{labels: [true], body: [{break: ~}]}, {default: true, body: []}]}
          - labeled: {label: outer, body: {do: {cond: false, body: [{continue: outer}]}}}
          - sync: {lock: this, body: []}
          - assert: {cond: {"!=": [o, null]}}
          - return: new
            at: "9:5"
`)
	m := u.Types[0].Methods[0]
	require.Equal(t, "Object", m.Returns.Name)
	require.Equal(t, "NonNull", m.Returns.Annotations[0].Name)

	stmts := m.Body.Stmts
	require.Len(t, stmts, 11)

	ifs := stmts[0].(*If)
	require.Equal(t, Pos{3, 5}, ifs.At)
	ret := ifs.Then.(*Block).Stmts[0].(*Return)
	require.IsType(t, &Null{}, ret.Value)
	require.Equal(t, Pos{3, 14}, ret.At)
	require.Nil(t, ifs.Else)

	local := stmts[1].(*LocalVar)
	require.Equal(t, "o", local.Name)
	require.IsType(t, &New{}, local.Init)

	w := stmts[2].(*While)
	require.IsType(t, &Break{}, w.Body.(*Block).Stmts[0])

	f := stmts[3].(*For)
	require.Len(t, f.Init, 1)
	require.Equal(t, "<", f.Cond.(*Binary).Op)
	require.Equal(t, "++", f.Update[0].(*Unary).Op)

	fe := stmts[4].(*ForEach)
	require.Equal(t, "s", fe.Var.Name)
	require.Equal(t, "NonNull", fe.Var.Annotations[0].Name)

	try := stmts[5].(*Try)
	require.Len(t, try.Catches, 1)
	require.Equal(t, "e", try.Catches[0].Param.Name)
	require.NotNil(t, try.Finally)

	sw := stmts[6].(*Switch)
	require.Len(t, sw.Cases, 2)
	require.False(t, sw.Cases[0].IsDefault())
	require.True(t, sw.Cases[1].IsDefault())

	lab := stmts[7].(*Labeled)
	require.Equal(t, "outer", lab.Label)
	require.Equal(t, "outer", lab.Body.(*DoWhile).Body.(*Block).Stmts[0].(*Continue).Label)

	require.IsType(t, &This{}, stmts[8].(*Sync).Lock)
	require.Equal(t, "!=", stmts[9].(*Assert).Cond.(*Binary).Op)
	require.Equal(t, Pos{9, 5}, stmts[10].Pos())
}

func TestDecode_ScalarShorthands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want Expr
	}{
		{src: "null", want: &Null{}},
		{src: "true", want: &Lit{Kind: LitBool, Value: "true"}},
		{src: "42", want: &Lit{Kind: LitNumber, Value: "42"}},
		{src: `"'abc'"`, want: &Lit{Kind: LitString, Value: "abc"}},
		{src: "this", want: &This{}},
		{src: "o", want: &Name{Ident: "o"}},
		{src: "this.f", want: &FieldAccess{X: &This{}, Name: "f"}},
		{src: "o.f.g", want: &FieldAccess{X: &FieldAccess{X: &Name{Ident: "o"}, Name: "f"}, Name: "g"}},
		{src: "getX().y", want: &FieldAccess{X: &Call{Name: "getX"}, Name: "y"}},
		{src: "{lit: abc}", want: &Lit{Kind: LitString, Value: "abc"}},
		{src: "{not: b}", want: &Unary{Op: "!", X: &Name{Ident: "b"}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			u := decodeOne(t, "types: [{name: X, fields: [{name: f, type: Object, init: "+tt.src+"}]}]")
			require.Equal(t, tt.want, u.Types[0].Fields[0].Init)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "unknown statement", src: "types: [{name: X, methods: [{name: m, body: [{goto: l}]}]}]", want: `unrecognized statement kind "goto"`},
		{name: "unknown key", src: "types: [{name: X, colour: red}]", want: `unknown type declaration key "colour"`},
		{name: "two kinds", src: "types: [{name: X, methods: [{name: m, body: [{return: ~, throw: e}]}]}]", want: "more than one kind"},
		{name: "bad position", src: "types: [{name: X, at: here}]", want: `malformed position "here"`},
		{name: "bad kind", src: "types: [{kind: struct, name: X}]", want: `unrecognized type kind "struct"`},
		{name: "bad type", src: "types: [{name: X, extends: 'List<'}]", want: "parse type"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeAll(strings.NewReader(tt.src))
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDecode_JSON(t *testing.T) {
	t.Parallel()

	u := decodeOne(t, `{"path": "p/Y.java", "package": "p", "module": "m",
		"types": [{"kind": "interface", "name": "Y", "modifiers": ["sealed"], "permits": ["Z"]}]}`)
	require.Equal(t, "m", u.Module)
	y := u.Types[0]
	require.Equal(t, KindInterface, y.Kind)
	require.True(t, y.Modifiers.Has(Sealed))
	require.Equal(t, "Z", y.Permits[0].Name)
}

func TestDecode_MultipleDocuments(t *testing.T) {
	t.Parallel()

	units, err := DecodeAll(strings.NewReader("path: a\n---\npath: b\n"))
	require.NoError(t, err)
	require.Len(t, units, 2)
	require.Equal(t, "a", units[0].Path)
	require.Equal(t, "b", units[1].Path)
}
