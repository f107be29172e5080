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

package jnilawaytest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/diagnostic"
	"golang.org/x/tools/txtar"
)

const archive = `A fixture.
-- config.toml --
redundant-null-check = "ignore"
-- deps/lib.yaml --
path: l/L.java
package: l
types: [{name: L, at: "1:14"}]
-- p.yaml --
path: p/A.java
package: p
types: [{name: A, at: "1:14"}]
---
path: p/B.java
package: p
types: [{name: B, at: "1:14"}]
-- want --
# comment
NullDereference p/A.java:4:9   # trailing comment

RedundantCheck p/B.java:10:1
`

func TestParse(t *testing.T) {
	t.Parallel()

	f, err := Parse("fixture", txtar.Parse([]byte(archive)))
	require.NoError(t, err)
	require.Len(t, f.Units, 2)
	require.Len(t, f.Deps, 1)
	require.Equal(t, "config.toml", f.ConfigFile)
	require.Equal(t, []Expectation{
		{Kind: diagnostic.NullDereference, Span: ast.Span{File: "p/A.java", Start: ast.Pos{Line: 4, Col: 9}}},
		{Kind: diagnostic.RedundantCheck, Span: ast.Span{File: "p/B.java", Start: ast.Pos{Line: 10, Col: 1}}},
	}, f.Want)

	conf, err := f.Config(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, config.Ignore, conf.Severity(config.RedundantNullCheck))
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		archive string
	}{
		{name: "unexpected file", archive: "-- notes.txt --\nhello\n"},
		{name: "malformed want", archive: "-- want --\nNullDereference\n"},
		{name: "malformed position", archive: "-- want --\nNullDereference p/A.java:x:1\n"},
		{name: "malformed unit", archive: "-- a.yaml --\npath: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse("fixture", txtar.Parse([]byte(tt.archive)))
			require.Error(t, err)
		})
	}
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
