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

package sealed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/binary"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/diagnostic"
	"go.uber.org/jnilaway/program"
)

const shapesSrc = `
path: p/Shapes.java
package: p
types:
  - name: Shape
    kind: interface
    at: "3:25"
    modifiers: [sealed]
    permits:
      - {name: Circle, at: "3:40"}
      - {name: Square, at: "3:48"}
      - {name: Circle, at: "3:56"}
      - {name: Missing, at: "3:64"}
      - {name: Tri, at: "3:72"}
  - name: Circle
    at: "4:13"
    modifiers: [final]
    implements: [Shape]
  - name: Square
    at: "5:7"
    implements: [Shape]
  - name: Tri
    at: "6:13"
    modifiers: [final]
  - name: Hex
    at: "7:13"
    modifiers: [final]
    implements: [Shape]
  - name: Open
    at: "8:18"
    modifiers: [non-sealed]
  - name: Lonely
    at: "9:14"
    modifiers: [sealed]
  - name: Loose
    at: "10:7"
    permits: [Circle]
  - name: Base
    at: "11:14"
    modifiers: [sealed]
    methods:
      - name: make
        at: "12:10"
        returns: Base
        body:
          - class: {name: Local, at: "13:13", extends: Base}
          - return: {new: {type: Base, body: {}}}
            at: "14:16"
  - name: var
    at: "16:7"
  - name: Color
    kind: enum
    at: "17:20"
    modifiers: [public, sealed]
    constants: [RED]
  - name: Point
    kind: record
    at: "18:21"
    modifiers: [final, non-sealed]
    components: ["int x"]
`

const localitySrc = `
path: a/S.java
package: a
types:
  - name: S
    at: "3:21"
    modifiers: [sealed]
    permits: [{name: b.T, at: "3:35"}, {name: a.U, at: "3:40"}]
  - name: U
    at: "4:13"
    modifiers: [final]
    extends: S
---
path: b/T.java
package: b
imports: [a.S]
types:
  - name: T
    at: "4:20"
    modifiers: [final]
    extends: S
---
path: m/M.java
package: m
module: mod
types:
  - name: M
    kind: interface
    at: "3:25"
    modifiers: [sealed]
    permits: [{name: n.N, at: "3:40"}, {name: lib.L, at: "3:45"}]
---
path: n/N.java
package: n
module: mod
imports: [m.M]
types:
  - name: N
    at: "4:20"
    modifiers: [non-sealed]
    implements: [M]
`

const enumSrc = `
path: e/Op.java
package: e
types:
  - name: Op
    kind: enum
    at: "3:13"
    constants:
      - PLUS
      - {name: MINUS, at: "5:3", body: {methods: [{name: toString, returns: String, at: "6:19"}]}}
      - {name: TIMES, at: "8:3", body: {}}
  - name: Plain
    kind: enum
    at: "10:6"
    modifiers: [sealed]
    constants: [A]
  - name: Calc
    at: "12:7"
    methods:
      - name: make
        at: "13:6"
        returns: Op
        body:
          - return: {new: {type: Op, body: {}}}
            at: "14:16"
`

func validate(t *testing.T, src string, store *binary.Store) []string {
	t.Helper()
	units, err := ast.DecodeAll(strings.NewReader(src))
	require.NoError(t, err)
	prog := program.New(units, store)

	var got []string
	for _, u := range units {
		e := diagnostic.NewEngine(config.Default(), u)
		New(prog, u, e).Run()
		for _, d := range e.Diagnostics() {
			require.Equal(t, config.Error, d.Severity)
			got = append(got, string(d.Kind)+"/"+d.Reason+" "+d.Span.String())
		}
	}
	return got
}

func TestValidator(t *testing.T) {
	t.Parallel()

	want := []string{
		"SealedPermitsMismatch/duplicate-permit p/Shapes.java:3:56",
		"SealedPermitsMismatch/unresolved-permit p/Shapes.java:3:64",
		"SealedPermitsMismatch/not-direct-subtype p/Shapes.java:3:72",
		"SealedModifierObligationViolation/missing-modifier p/Shapes.java:5:7",
		"SealedPermitsMismatch/not-permitted p/Shapes.java:7:13",
		"SealedModifierObligationViolation/no-sealed-super p/Shapes.java:8:18",
		"SealedPermitsMismatch/no-subtypes p/Shapes.java:9:14",
		"SealedPermitsMismatch/permits-without-sealed p/Shapes.java:10:7",
		"SealedPermitsMismatch/no-subtypes p/Shapes.java:11:14",
		"SealedModifierObligationViolation/local-or-anonymous p/Shapes.java:13:13",
		"SealedModifierObligationViolation/local-or-anonymous p/Shapes.java:14:16",
		"RestrictedIdentifierMisuse/ p/Shapes.java:16:7",
		"SealedModifierObligationViolation/illegal-modifier p/Shapes.java:17:20",
		"SealedModifierObligationViolation/illegal-modifier p/Shapes.java:18:21",
		"SealedModifierObligationViolation/no-sealed-super p/Shapes.java:18:21",
	}
	require.ElementsMatch(t, want, validate(t, shapesSrc, nil))
}

func TestValidator_EnumConstantBodies(t *testing.T) {
	t.Parallel()

	units, err := ast.DecodeAll(strings.NewReader(enumSrc))
	require.NoError(t, err)
	prog := program.New(units, nil)

	op, ok := prog.Type("e.Op")
	require.True(t, ok)
	require.True(t, op.IsSealed())
	var subs []string
	for _, s := range prog.PermittedSubtypes(op) {
		subs = append(subs, s.Name)
	}
	require.Equal(t, []string{"e.Op$1", "e.Op$2"}, subs)

	plain, ok := prog.Type("e.Plain")
	require.True(t, ok)
	require.False(t, plain.IsSealed())
	require.Empty(t, prog.PermittedSubtypes(plain))

	// Constant bodies are permitted; other anonymous subclasses are not.
	want := []string{
		"SealedModifierObligationViolation/illegal-modifier e/Op.java:10:6",
		"SealedModifierObligationViolation/local-or-anonymous e/Op.java:14:16",
	}
	require.ElementsMatch(t, want, validate(t, enumSrc, nil))
}

func TestValidator_Idempotent(t *testing.T) {
	t.Parallel()

	units, err := ast.DecodeAll(strings.NewReader(shapesSrc))
	require.NoError(t, err)
	prog := program.New(units, nil)

	run := func() []diagnostic.Diagnostic {
		e := diagnostic.NewEngine(config.Default(), units[0])
		New(prog, units[0], e).Run()
		return e.Diagnostics()
	}
	first := run()
	require.NotEmpty(t, first)
	require.Equal(t, first, run())
}

func TestValidator_Locality(t *testing.T) {
	t.Parallel()

	store := binary.NewStore()
	store.Modules.Store("other", &binary.Module{Name: "other"})
	store.Types.Store("lib.L", &binary.Type{
		Name:       "lib.L",
		Package:    "lib",
		Module:     "other",
		Modifiers:  []string{"final"},
		Interfaces: []string{"m.M"},
	})

	want := []string{
		// Without a named module, permitted types must share the package.
		"SealedLocalityViolation/other-package a/S.java:3:35",
		// Inside a named module, other packages of the module are fine.
		"SealedLocalityViolation/other-module m/M.java:3:45",
	}
	require.ElementsMatch(t, want, validate(t, localitySrc, store))
}

func TestLegalModifiers(t *testing.T) {
	t.Parallel()

	top := &ast.TypeDecl{Kind: ast.KindEnum, Name: "E"}
	require.Equal(t, ast.Modifiers{ast.Public, "strictfp"}, legalModifiers(top))

	member := &ast.TypeDecl{Kind: ast.KindRecord, Name: "R", Outer: top}
	require.Contains(t, legalModifiers(member), ast.Static)
	require.Contains(t, legalModifiers(member), ast.Final)
	require.NotContains(t, legalModifiers(member), ast.Sealed)

	local := &ast.TypeDecl{Kind: ast.KindRecord, Name: "L", Outer: top, Local: true}
	require.Equal(t, ast.Modifiers{"strictfp", ast.Final}, legalModifiers(local))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
