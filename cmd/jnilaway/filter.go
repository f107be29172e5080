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


package main

import (
	"errors"
	"strings"

	"go.uber.org/jnilaway/diagnostic"
)

var errMissingBaseline = errors.New("--write-baseline requires --baseline")

// filterFiles drops the diagnostics in excluded files, and, if includes is not empty, the ones
// outside the included files. Exclusion takes precedence.
func filterFiles(ds []diagnostic.Diagnostic, includes, excludes []string) []diagnostic.Diagnostic {
	if len(includes) == 0 && len(excludes) == 0 {
		return ds
	}
	var kept []diagnostic.Diagnostic
	for _, d := range ds {
		if hasAnyPrefix(d.Span.File, excludes) {
			continue
		}
		if len(includes) > 0 && !hasAnyPrefix(d.Span.File, includes) {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
