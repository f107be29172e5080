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
	"fmt"
	"strings"
)

// Group is a diagnostic together with the similar diagnostics reported after it: null
// dereferences of the same expression in the same file.
type Group struct {
	Diagnostic
	Similar []Diagnostic
}

func (g Group) String() string {
	if len(g.Similar) == 0 {
		return g.Message()
	}
	similarPos := make([]string, len(g.Similar))
	for i, s := range g.Similar {
		similarPos[i] = fmt.Sprintf("%q", s.Span.Start.String())
	}
	posString := strings.Join(similarPos[:len(similarPos)-1], ", ")
	if len(similarPos) > 1 {
		posString += ", and "
	}
	posString += similarPos[len(similarPos)-1]

	return fmt.Sprintf("%s\n\n(Same null source could also cause null pointer access at %d other place(s): %s.)",
		g.Message(), len(g.Similar), posString)
}

// groupable lists the kinds whose diagnostics are grouped by their first argument.
var groupable = map[Kind]bool{
	NullDereference:          true,
	PotentialNullDereference: true,
}

// GroupDiagnostics groups dereference diagnostics of the same expression in the same file under
// the first of them. The input must be sorted; other diagnostics are kept as single groups.
func GroupDiagnostics(ds []Diagnostic) []Group {
	index := make(map[string]int) // key: kind, file and expression; value: index in groups
	groups := make([]Group, 0, len(ds))
	for _, d := range ds {
		if !groupable[d.Kind] || len(d.Args) == 0 {
			groups = append(groups, Group{Diagnostic: d})
			continue
		}
		key := string(d.Kind) + "\x00" + d.Span.File + "\x00" + d.Args[0]
		if i, ok := index[key]; ok {
			groups[i].Similar = append(groups[i].Similar, d)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, Group{Diagnostic: d})
	}
	return groups
}
