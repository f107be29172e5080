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

// Package jnilawaytest implements utility functions for tests: it loads txtar fixtures holding
// compilation unit documents together with the diagnostics they are expected to produce, and
// runs the analysis over them.
//
// A fixture archive may contain the following files:
//
//	want          expected diagnostics, one "KIND path:line:col" per line, # starts a comment
//	config.toml   optional configuration, also config.yaml or config.json
//	deps/*.yaml   optional units analyzed first and passed as binary dependency
//	*.yaml        the units under test, also *.json
package jnilawaytest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/jnilaway"
	"go.uber.org/jnilaway/accumulation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/binary"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/diagnostic"
	"golang.org/x/tools/txtar"
)

// Expectation is one expected diagnostic.
type Expectation struct {
	Kind diagnostic.Kind
	Span ast.Span
}

func (e Expectation) String() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Span)
}

// Fixture is a decoded fixture archive.
type Fixture struct {
	Name  string
	Units []*ast.CompilationUnit
	Deps  []*ast.CompilationUnit
	// ConfigFile is the name of the configuration file in the archive, empty for the defaults.
	ConfigFile string
	ConfigData []byte
	Want       []Expectation
}

// Load reads and decodes the fixture archive at path.
func Load(path string) (*Fixture, error) {
	ar, err := txtar.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	f, err := Parse(filepath.Base(path), ar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes the files of a fixture archive.
func Parse(name string, ar *txtar.Archive) (*Fixture, error) {
	f := &Fixture{Name: name}
	for _, file := range ar.Files {
		switch ext := path.Ext(file.Name); {
		case file.Name == "want":
			want, err := ParseWant(file.Data)
			if err != nil {
				return nil, err
			}
			f.Want = append(f.Want, want...)
		case strings.TrimSuffix(file.Name, ext) == "config":
			f.ConfigFile, f.ConfigData = file.Name, file.Data
		case ext == ".yaml" || ext == ".json":
			units, err := ast.DecodeAll(bytes.NewReader(file.Data))
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", file.Name, err)
			}
			if strings.HasPrefix(file.Name, "deps/") {
				f.Deps = append(f.Deps, units...)
			} else {
				f.Units = append(f.Units, units...)
			}
		default:
			return nil, fmt.Errorf("unexpected fixture file %q", file.Name)
		}
	}
	return f, nil
}

// ParseWant parses expectation lines of the form "KIND path:line:col".
func ParseWant(data []byte) ([]Expectation, error) {
	var want []Expectation
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("want line %d: expected \"KIND path:line:col\", got %q", n, sc.Text())
		}
		span, err := parseSpan(fields[1])
		if err != nil {
			return nil, fmt.Errorf("want line %d: %w", n, err)
		}
		want = append(want, Expectation{Kind: diagnostic.Kind(fields[0]), Span: span})
	}
	return want, sc.Err()
}

func parseSpan(s string) (ast.Span, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return ast.Span{}, fmt.Errorf("malformed position %q", s)
	}
	var pos ast.Pos
	if _, err := fmt.Sscanf(parts[1]+":"+parts[2], "%d:%d", &pos.Line, &pos.Col); err != nil {
		return ast.Span{}, fmt.Errorf("malformed position %q: %w", s, err)
	}
	return ast.Span{File: parts[0], Start: pos}, nil
}

// Config returns the configuration of the fixture, written to dir so that it goes through the
// regular loading path.
func (f *Fixture) Config(dir string) (*config.Config, error) {
	if f.ConfigFile == "" {
		return config.Default(), nil
	}
	p := filepath.Join(dir, f.ConfigFile)
	if err := os.WriteFile(p, f.ConfigData, 0o600); err != nil {
		return nil, err
	}
	return config.Load(config.LoadOptions{File: p})
}

// Analyze runs the analysis over the fixture and returns the diagnostics. The dependency units,
// if any, are analyzed in a batch of their own and exported to a binary store first.
func (f *Fixture) Analyze(ctx context.Context, conf *config.Config) ([]diagnostic.Diagnostic, error) {
	var store *binary.Store
	if len(f.Deps) > 0 {
		res, err := accumulation.Run(ctx, f.Deps, accumulation.Options{Config: conf})
		if err != nil {
			return nil, fmt.Errorf("analyze dependencies: %w", err)
		}
		var buf bytes.Buffer
		if err := jnilaway.Export(res).Write(&buf); err != nil {
			return nil, err
		}
		if store, err = binary.Read(&buf); err != nil {
			return nil, err
		}
	}
	res, err := accumulation.Run(ctx, f.Units, accumulation.Options{Config: conf, Store: store})
	if err != nil {
		return nil, err
	}
	return res.Diagnostics, nil
}

// Run analyzes every fixture archive found in dir/<suite>/*.txtar and checks that the produced
// diagnostics are exactly the expected ones. Each archive runs as a parallel subtest.
func Run(t *testing.T, dir string, suites ...string) {
	t.Helper()
	for _, suite := range suites {
		paths, err := filepath.Glob(filepath.Join(dir, suite, "*.txtar"))
		require.NoError(t, err)
		require.NotEmpty(t, paths, "no fixtures in suite %q", suite)
		sort.Strings(paths)

		for _, p := range paths {
			t.Run(suite+"/"+strings.TrimSuffix(filepath.Base(p), ".txtar"), func(t *testing.T) {
				t.Parallel()

				f, err := Load(p)
				require.NoError(t, err)
				conf, err := f.Config(t.TempDir())
				require.NoError(t, err)
				ds, err := f.Analyze(context.Background(), conf)
				require.NoError(t, err)

				got := make([]string, 0, len(ds))
				for _, d := range ds {
					got = append(got, Expectation{Kind: d.Kind, Span: d.Span}.String())
				}
				want := make([]string, 0, len(f.Want))
				for _, e := range f.Want {
					want = append(want, e.String())
				}
				sort.Strings(got)
				sort.Strings(want)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}
