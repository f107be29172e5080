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

package diagnostic

import (
	"strings"

	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
)

// Range is the scope of a @SuppressWarnings("null") annotation: the declaration it annotates,
// from its first annotation to the last position inside it.
type Range struct {
	From, To ast.Pos
}

// Contains reports whether pos falls inside the range.
func (r Range) Contains(pos ast.Pos) bool {
	return !pos.Before(r.From) && !r.To.Before(pos)
}

// SuppressionRanges collects the scopes of the @SuppressWarnings("null") annotations found on the
// types, methods and fields of u.
func SuppressionRanges(u *ast.CompilationUnit) []Range {
	var ranges []Range
	add := func(anns []*ast.Annotation, at, end ast.Pos) {
		if !suppressesNull(anns, u) {
			return
		}
		from := at
		for _, a := range anns {
			if a.At.IsValid() && a.At.Before(from) {
				from = a.At
			}
		}
		ranges = append(ranges, Range{From: from, To: end})
	}
	for _, t := range u.AllTypes() {
		add(t.Annotations, t.At, t.End)
		for _, m := range t.Methods {
			add(m.Annotations, m.At, m.End)
		}
		for _, f := range t.Fields {
			add(f.Annotations, f.At, ast.End(f))
		}
	}
	return ranges
}

// suppressesNull checks if one of the annotations is @SuppressWarnings with the "null" or "all"
// token.
func suppressesNull(anns []*ast.Annotation, u *ast.CompilationUnit) bool {
	for _, a := range anns {
		if !annotation.Matches(a, u, "java.lang."+config.SuppressWarningsName) {
			continue
		}
		v, ok := a.Arg("value")
		if !ok {
			continue
		}
		var tokens []string
		switch v := v.(type) {
		case string:
			tokens = []string{v}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					tokens = append(tokens, s)
				}
			}
		}
		for _, tok := range tokens {
			tok = strings.TrimSpace(tok)
			if strings.EqualFold(tok, config.SuppressWarningsToken) || strings.EqualFold(tok, "all") {
				return true
			}
		}
	}
	return false
}
