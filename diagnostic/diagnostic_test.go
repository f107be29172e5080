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

package diagnostic

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
)

const suppressedSrc = `
path: p/X.java
package: p
types:
  - name: X
    at: "1:7"
    fields:
      - name: f
        type: Object
        at: "3:10"
        annotations: ['@SuppressWarnings("null")']
    methods:
      - name: quiet
        at: "5:8"
        annotations: ['@SuppressWarnings({"unchecked", "null"})']
        body:
          - expr: {call: {name: a}}
            at: "6:5"
      - name: loud
        at: "9:8"
        annotations: ['@SuppressWarnings("unchecked")']
        body:
          - expr: {call: {name: b}}
            at: "10:5"
`

func decodeUnit(t *testing.T, src string) *ast.CompilationUnit {
	t.Helper()
	units, err := ast.DecodeAll(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, units, 1)
	return units[0]
}

func TestSuppressionRanges(t *testing.T) {
	t.Parallel()

	u := decodeUnit(t, suppressedSrc)
	ranges := SuppressionRanges(u)
	require.Len(t, ranges, 2)
	require.True(t, ranges[0].Contains(ast.Pos{Line: 6, Col: 5}))
	require.False(t, ranges[0].Contains(ast.Pos{Line: 10, Col: 5}))
	require.True(t, ranges[1].Contains(ast.Pos{Line: 3, Col: 10}))
}

func TestEngine_SeveritiesAndSuppression(t *testing.T) {
	t.Parallel()

	u := decodeUnit(t, suppressedSrc)
	conf := config.Default()
	conf.Severities[config.RedundantNullCheck] = config.Ignore
	e := NewEngine(conf, u)

	require.False(t, e.Enabled(config.RedundantNullCheck))
	require.True(t, e.Enabled(config.NullSpecViolation))

	in := ast.Pos{Line: 6, Col: 5}
	out := ast.Pos{Line: 10, Col: 5}
	e.Report(config.RedundantNullCheck, RedundantCheck, out, "o", "non-null")
	e.Report(config.UncheckedConversion, UncheckedConversion, in, "@NonNull Object", "Object")
	e.Report(config.NullSpecViolation, NullTypeMismatch, in, "@NonNull Object", "null")
	e.Report(config.PotentialNullReference, PotentialNullDereference, out, "o")
	e.ReportError(AnnotationContradiction, "", in, "@NonNull", "@Nullable")
	e.Report(config.NullSpecViolation, NullTypeMismatch, in, "@NonNull Object", "null")

	got := e.Diagnostics()
	want := []Diagnostic{
		{Kind: AnnotationContradiction, Severity: config.Error, Span: u.Span(in), Args: []string{"@NonNull", "@Nullable"}},
		{Kind: NullTypeMismatch, Severity: config.Error, Span: u.Span(in), Args: []string{"@NonNull Object", "null"}, Option: config.NullSpecViolation},
		{Kind: PotentialNullDereference, Severity: config.Warning, Span: u.Span(out), Args: []string{"o"}, Option: config.PotentialNullReference},
	}
	require.Empty(t, cmp.Diff(want, got))
	require.True(t, got[0].IsFixed())
	require.False(t, got[1].IsFixed())

	// With optional errors suppressible, the mismatch inside the suppressed method is dropped.
	conf = config.Default()
	conf.SuppressOptionalErrors = true
	e = NewEngine(conf, u)
	e.Report(config.NullSpecViolation, NullTypeMismatch, in, "@NonNull Object", "null")
	e.ReportError(AnnotationContradiction, "", in, "@NonNull", "@Nullable")
	require.Len(t, e.Diagnostics(), 1)

	// Without @SuppressWarnings handling nothing is suppressed.
	conf = config.Default()
	conf.SuppressWarnings = false
	e = NewEngine(conf, u)
	e.Report(config.UncheckedConversion, UncheckedConversion, in, "@NonNull Object", "Object")
	require.Len(t, e.Diagnostics(), 1)
}

func TestMessage(t *testing.T) {
	t.Parallel()

	d := Diagnostic{Kind: SealedPermitsMismatch, Reason: ReasonNotDirectSubtype, Args: []string{"p.Z", "p.X"}}
	require.Equal(t, "Permitted type p.Z does not declare p.X as a direct supertype", d.Message())

	d = Diagnostic{Kind: PotentialNullDereference, Args: []string{"o"}, Severity: config.Error,
		Span: ast.Span{File: "p/X.java", Start: ast.Pos{Line: 3, Col: 9}}}
	require.Equal(t, "p/X.java:3:9: error: Potential null pointer access: o may be null at this location [PotentialNullDereference]", d.String())
}

func TestGroupDiagnostics(t *testing.T) {
	t.Parallel()

	at := func(line int) ast.Span { return ast.Span{File: "p/X.java", Start: ast.Pos{Line: line, Col: 1}} }
	ds := []Diagnostic{
		{Kind: PotentialNullDereference, Span: at(1), Args: []string{"o"}},
		{Kind: RedundantCheck, Span: at(2), Args: []string{"o", "non-null"}},
		{Kind: PotentialNullDereference, Span: at(3), Args: []string{"o"}},
		{Kind: PotentialNullDereference, Span: at(4), Args: []string{"p"}},
		{Kind: PotentialNullDereference, Span: at(5), Args: []string{"o"}},
	}
	groups := GroupDiagnostics(ds)
	require.Len(t, groups, 3)
	require.Len(t, groups[0].Similar, 2)
	require.Contains(t, groups[0].String(), `at 2 other place(s): "3:1", and "5:1".`)
	require.Equal(t, groups[1].Message(), groups[1].String())
}

func TestBaseline(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "baseline.toml")
	span := ast.Span{File: "p/X.java", Start: ast.Pos{Line: 3, Col: 9}}
	accepted := Diagnostic{Kind: PotentialNullDereference, Span: span, Args: []string{"o"}}
	fresh := Diagnostic{Kind: NullTypeMismatch, Span: span, Args: []string{"@NonNull Object", "null"}}
	internal := Diagnostic{Kind: InternalError, Span: span, Args: []string{"boom"}}

	require.NoError(t, WriteBaseline(path, []Diagnostic{accepted, accepted, internal}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Total: 1 findings")

	b, err := LoadBaseline(path)
	require.NoError(t, err)
	require.Len(t, b.Findings, 1)

	// The line moved, the finding is still accepted.
	moved := accepted
	moved.Span.Start.Line = 30
	require.True(t, b.Contains(moved))
	require.Equal(t, []Diagnostic{fresh, internal}, b.Filter([]Diagnostic{moved, fresh, internal}))

	empty, err := LoadBaseline(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.False(t, empty.Contains(accepted))

	require.NoError(t, os.WriteFile(path, []byte("finding = 3"), 0o600))
	_, err = LoadBaseline(path)
	require.ErrorContains(t, err, "parsing baseline TOML")
}
