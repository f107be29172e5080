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
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// Baseline holds accepted diagnostics loaded from a TOML file. Diagnostics present in the
// baseline are filtered from the output, so only new findings are reported. Entries are matched
// by kind, file and message, so they survive line shifts.
type Baseline struct {
	Findings []BaselineFinding `toml:"finding"`

	lookup map[string]bool
}

// BaselineFinding is one accepted diagnostic.
type BaselineFinding struct {
	Kind    Kind   `toml:"kind"`
	File    string `toml:"file"`
	Message string `toml:"message"`
}

func (f BaselineFinding) key() string {
	return string(f.Kind) + "\x00" + f.File + "\x00" + f.Message
}

func findingOf(d Diagnostic) BaselineFinding {
	return BaselineFinding{Kind: d.Kind, File: d.Span.File, Message: d.Message()}
}

// LoadBaseline reads a baseline file. An empty path or a missing file yields an empty baseline.
func LoadBaseline(path string) (*Baseline, error) {
	b := &Baseline{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading baseline: %w", err)
		default:
			if err := toml.Unmarshal(data, b); err != nil {
				return nil, fmt.Errorf("parsing baseline TOML: %w", err)
			}
		}
	}
	b.lookup = make(map[string]bool, len(b.Findings))
	for _, f := range b.Findings {
		b.lookup[f.key()] = true
	}
	return b, nil
}

// Contains reports whether d is accepted by the baseline.
func (b *Baseline) Contains(d Diagnostic) bool {
	if b == nil {
		return false
	}
	return b.lookup[findingOf(d).key()]
}

// Filter returns the diagnostics not accepted by the baseline.
func (b *Baseline) Filter(ds []Diagnostic) []Diagnostic {
	if b == nil || len(b.lookup) == 0 {
		return ds
	}
	var kept []Diagnostic
	for _, d := range ds {
		if !b.Contains(d) {
			kept = append(kept, d)
		}
	}
	return kept
}

// WriteBaseline writes a baseline accepting every given diagnostic. Internal errors are never
// baselined.
func WriteBaseline(path string, ds []Diagnostic) error {
	b := Baseline{}
	seen := make(map[string]bool)
	for _, d := range ds {
		if d.Kind == InternalError {
			continue
		}
		f := findingOf(d)
		if seen[f.key()] {
			continue
		}
		seen[f.key()] = true
		b.Findings = append(b.Findings, f)
	}

	var buf bytes.Buffer
	buf.WriteString("# jnilaway baseline: accepted diagnostics\n")
	buf.WriteString(fmt.Sprintf("# Total: %d findings\n\n", len(b.Findings)))
	if err := toml.NewEncoder(&buf).Encode(b); err != nil {
		return fmt.Errorf("encoding baseline: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
