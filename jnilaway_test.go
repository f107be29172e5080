//  Copyright (c) 2023 Uber Technologies, Inc.
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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/diagnostic"
)

const _libUnits = `path: l/package-info.java
package: l
annotations: ['@NonNullByDefault']
---
path: l/L.java
package: l
types:
  - name: L
    at: "3:14"
    methods:
      - {name: get, at: "4:17", params: ["@Nullable Object x"], returns: Object, body: [{return: new}]}
      - {name: find, at: "5:27", returns: "@Nullable Object", body: [{return: null}]}
  - name: S
    at: "7:21"
    modifiers: [sealed]
    permits: [T]
  - name: T
    at: "8:20"
    modifiers: [final]
    extends: S
`

const _clientUnit = `path: p/P.java
package: p
imports: [l.L]
types:
  - name: P
    at: "3:7"
    methods:
      - name: m
        at: "4:8"
        params: ["L lib"]
        body:
          - local: {name: o, type: Object, init: {call: {recv: lib, name: find}}}
            at: "5:9"
          - expr: o.toString()
            at: "6:9"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadUnits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lib := writeFile(t, dir, "lib.yaml", _libUnits)
	client := writeFile(t, dir, "client.yaml", _clientUnit)

	units, err := LoadUnits(context.Background(), []string{client, lib})
	require.NoError(t, err)
	paths := make([]string, len(units))
	for i, u := range units {
		paths[i] = u.Path
	}
	require.Equal(t, []string{"p/P.java", "l/package-info.java", "l/L.java"}, paths)

	_, err = LoadUnits(context.Background(), []string{filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := Analyze(context.Background(), Request{Units: []string{writeFile(t, dir, "lib.yaml", _libUnits)}})
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	store := Export(res)
	require.Equal(t, []string{"l.L", "l.S", "l.T"}, store.Types.Keys())

	pkg, ok := store.Package("l")
	require.True(t, ok)
	require.True(t, pkg.Default.Declared)
	require.Equal(t, annotation.DefaultLocations, pkg.Default.Locations)

	l, ok := store.Type("l.L")
	require.True(t, ok)
	methods := make(map[string]annotation.Contract)
	for _, m := range l.Methods {
		methods[m.Name] = m.Contract
	}
	want := map[string]annotation.Contract{
		"get":  {Params: []annotation.Nullness{annotation.Nullable}, Return: annotation.None},
		"find": {Params: []annotation.Nullness{}, Return: annotation.Nullable},
	}
	if diff := cmp.Diff(want, methods); diff != "" {
		t.Errorf("contracts mismatch (-want +got):\n%s", diff)
	}

	s, ok := store.Type("l.S")
	require.True(t, ok)
	require.Equal(t, []string{"l.T"}, s.Permits)
	tt, ok := store.Type("l.T")
	require.True(t, ok)
	require.Equal(t, "l.S", tt.Super)
}

func TestExport_EnumConstantBodies(t *testing.T) {
	t.Parallel()

	const units = `path: e/Op.java
package: e
types:
  - name: Op
    kind: enum
    at: "3:13"
    constants:
      - PLUS
      - {name: MINUS, at: "5:3", body: {}}
  - name: Plain
    kind: enum
    at: "8:6"
    constants: [A]
`
	dir := t.TempDir()
	res, err := Analyze(context.Background(), Request{Units: []string{writeFile(t, dir, "op.yaml", units)}})
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	store := Export(res)
	require.Equal(t, []string{"e.Op", "e.Plain"}, store.Types.Keys())
	op, ok := store.Type("e.Op")
	require.True(t, ok)
	require.Equal(t, []string{"e.Op$1"}, op.Permits)
	plain, ok := store.Type("e.Plain")
	require.True(t, ok)
	require.Empty(t, plain.Permits)
}

func TestAnalyze_BinaryDependency(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := Analyze(context.Background(), Request{Units: []string{writeFile(t, dir, "lib.yaml", _libUnits)}})
	require.NoError(t, err)

	binPath := filepath.Join(dir, "lib.bin")
	f, err := os.Create(binPath)
	require.NoError(t, err)
	require.NoError(t, Export(res).Write(f))
	require.NoError(t, f.Close())

	res, err = Analyze(context.Background(), Request{
		Units:    []string{writeFile(t, dir, "client.yaml", _clientUnit)},
		Binaries: []string{binPath},
	})
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	require.Equal(t, diagnostic.PotentialNullDereference, d.Kind)
	require.Equal(t, "p/P.java:6:9", d.Span.String())

	_, err = Analyze(context.Background(), Request{
		Units:    []string{filepath.Join(dir, "client.yaml")},
		Binaries: []string{filepath.Join(dir, "missing.bin")},
	})
	require.ErrorContains(t, err, "load binary dependencies")
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
