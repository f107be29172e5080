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

package inherit

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/defaults"
	"go.uber.org/jnilaway/diagnostic"
	"go.uber.org/jnilaway/program"
)

const src = `
path: p/package-info.java
package: p
annotations: ['@NonNullByDefault']
---
path: q/I.java
package: q
types:
  - name: I
    kind: interface
    at: "3:18"
    methods:
      - {name: get, at: "4:10", params: ["Object o"], returns: Object}
---
path: p/Impl.java
package: p
imports: [q.I]
types:
  - name: Impl
    at: "3:14"
    implements: [I]
    methods:
      - {name: get, at: "4:17", params: ["Object o"], returns: Object, body: [{return: o}]}
---
path: p/Base.java
package: p
types:
  - name: Base
    at: "3:14"
    methods:
      - {name: m, at: "4:17", params: ["@Nullable Object x"], returns: Object, body: [{return: new}]}
      - {name: n, at: "5:15", params: ["Object y"], body: []}
      - {name: k, at: "6:15", params: ["@Nullable Object z"], returns: "@Nullable Object", body: [{return: z}]}
  - name: Sub
    at: "8:7"
    extends: Base
    methods:
      - {name: m, at: "9:26", params: ["Object x"], returns: "@Nullable Object", body: [{return: null}]}
      - {name: k, at: "10:17", params: ["@Nullable Object z"], returns: Object, body: [{return: new}]}
---
path: q/Sub2.java
package: q
imports: [p.Base]
types:
  - name: Sub2
    at: "4:14"
    extends: Base
    methods:
      - {name: n, at: "5:15", params: ["Object y"], body: []}
---
path: p/Merged.java
package: p
types:
  - name: J
    kind: interface
    at: "3:11"
    methods:
      - {name: h, at: "4:8", params: ["@Nullable Object a"]}
  - name: C
    at: "6:7"
    methods:
      - {name: h, at: "7:15", params: ["Object a"], body: []}
  - name: D
    at: "9:7"
    extends: C
    implements: [J]
`

func check(t *testing.T, conf *config.Config) []string {
	t.Helper()
	units, err := ast.DecodeAll(strings.NewReader(src))
	require.NoError(t, err)
	prog := program.New(units, nil)
	table := defaults.NewTable(prog, annotation.NewNames(conf))

	var got []string
	for _, u := range units {
		if u.IsPackageInfo() {
			continue
		}
		e := diagnostic.NewEngine(conf, u)
		require.NoError(t, New(prog, table, u, e).Run())
		for _, d := range e.Diagnostics() {
			got = append(got, string(d.Kind)+" "+d.Span.String())
		}
	}
	return got
}

func TestChecker(t *testing.T) {
	t.Parallel()

	want := []string{
		// The unannotated interface parameter cannot be narrowed by the default.
		"IllegalOverrideRedefinition p/Impl.java:4:17",
		// Nullable parameter redefined as non-null, non-null return weakened.
		"IllegalOverrideRedefinition p/Base.java:9:26",
		"IncompatibleReturnContract p/Base.java:9:26",
		// Dropped non-null parameter without a default.
		"MissingOverrideAnnotation q/Sub2.java:5:15",
		// C.h implements J.h in D, against the merged contract.
		"IllegalOverrideRedefinition p/Merged.java:9:7",
	}
	got := check(t, config.Default())
	require.Empty(t, cmp.Diff(want, got))
}

func TestChecker_IgnoredOption(t *testing.T) {
	t.Parallel()

	conf := config.Default()
	conf.Severities[config.NonNullParameterDropped] = config.Ignore
	got := check(t, conf)
	require.NotContains(t, got, "MissingOverrideAnnotation q/Sub2.java:5:15")
	// Unconfigurable errors are kept.
	require.Contains(t, got, "IllegalOverrideRedefinition p/Merged.java:9:7")
}

func TestImplementation(t *testing.T) {
	t.Parallel()

	iface := &program.Type{Name: "p.I", Kind: ast.KindInterface}
	class := &program.Type{Name: "p.C", Kind: ast.KindClass}
	abstract := &program.Method{Owner: iface, Name: "m", Abstract: true}
	def := &program.Method{Owner: iface, Name: "m"}
	concrete := &program.Method{Owner: class, Name: "m"}

	require.Nil(t, implementation([]*program.Method{abstract}))
	require.Equal(t, def, implementation([]*program.Method{abstract, def}))
	require.Equal(t, concrete, implementation([]*program.Method{def, concrete}))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
