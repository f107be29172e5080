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
	"testing"

	"github.com/stretchr/testify/require"
)

const nestedSrc = `
path: p/Outer.java
package: p
types:
  - name: Outer
    at: "1:14"
    types:
      - {name: Inner, at: "2:9", kind: interface}
    constants: []
    methods:
      - name: run
        at: "3:8"
        body:
          - class: {name: Local, at: "4:11", methods: [{name: go, at: "5:12", body: [{return: ~, at: "6:7"}]}]}
          - expr: {new: {type: Inner, body: {methods: [{name: call, at: "8:12"}]}}}
            at: "7:5"
  - kind: enum
    name: Color
    at: "12:6"
    constants:
      - RED
      - {name: GREEN, at: "13:3", body: {methods: [{name: toString, returns: String, at: "14:19"}]}}
  - kind: record
    name: Point
    at: "20:8"
    components: ["@Nullable Object x", "int y"]
`

func TestLink_NestedLocalAnonymous(t *testing.T) {
	t.Parallel()

	u := decodeOne(t, nestedSrc)

	var names []string
	for _, d := range u.AllTypes() {
		names = append(names, d.Qualified)
	}
	require.Equal(t, []string{
		"p.Outer", "p.Outer$1Local", "p.Outer$2", "p.Outer.Inner", "p.Color", "p.Color$1", "p.Point",
	}, names)

	outer := u.Types[0]
	run := outer.Methods[0]
	local := u.AllTypes()[1]
	require.True(t, local.Local)
	require.Same(t, outer, local.Outer)
	require.Same(t, run, local.EnclosingMethod)
	require.Same(t, local, local.Methods[0].Owner)
	require.Equal(t, Pos{6, 7}, local.End)

	anon := u.AllTypes()[2]
	require.True(t, anon.Anonymous)
	require.Equal(t, "Inner", anon.Extends.Name)
	require.Equal(t, "new Inner(){}", anon.DisplayName())
	require.Equal(t, Pos{8, 12}, run.End)
	require.Equal(t, Pos{8, 12}, outer.End)

	body := u.AllTypes()[5]
	require.True(t, body.EnumConstantBody)
	require.Equal(t, "Color", body.Extends.Name)
	require.Equal(t, Pos{13, 3}, body.At)
	require.Equal(t, []*TypeDecl{body}, u.Types[1].ConstantBodies())
	require.Empty(t, outer.ConstantBodies())
}

func TestLink_RecordMembers(t *testing.T) {
	t.Parallel()

	u := decodeOne(t, nestedSrc)
	point := u.Types[2]
	require.Len(t, point.Fields, 2)
	x := point.Field("x")
	require.NotNil(t, x)
	require.True(t, x.Synthetic)
	require.True(t, x.Modifiers.Has(Final))
	require.Equal(t, "Nullable", x.Annotations[0].Name)

	require.Len(t, point.Methods, 2)
	require.Equal(t, "x", point.Methods[0].Name)
	require.True(t, point.Methods[0].Synthetic)

	// Linking again must not duplicate the members or rename types.
	Link(u)
	require.Len(t, point.Fields, 2)
	require.Len(t, point.Methods, 2)
	require.Equal(t, "p.Outer$1Local", u.AllTypes()[1].Qualified)
}

func TestInspect_VisitsAllStatements(t *testing.T) {
	t.Parallel()

	u := decodeOne(t, nestedSrc)
	var returns, calls int
	Inspect(u.Types[0], func(n Node) bool {
		switch n.(type) {
		case *Return:
			returns++
		case *MethodDecl:
			calls++
		}
		return true
	})
	require.Equal(t, 1, returns)
	require.Equal(t, 3, calls)
}
