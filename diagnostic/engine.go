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

// Package diagnostic hosts the diagnostic engine, which collects the findings of the checkers
// for one compilation unit, resolves their severities against the configuration, applies
// @SuppressWarnings scopes and produces a sorted list of diagnostics.
package diagnostic

import (
	"cmp"
	"slices"

	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
)

// Engine is the main engine for collecting diagnostics of one compilation unit. It is owned by
// the analysis of that unit and must not be shared.
type Engine struct {
	conf *config.Config
	unit *ast.CompilationUnit
	// ranges are the @SuppressWarnings scopes of the unit.
	ranges      []Range
	diagnostics []Diagnostic
}

// NewEngine creates a new diagnostic engine for unit u.
func NewEngine(conf *config.Config, u *ast.CompilationUnit) *Engine {
	e := &Engine{conf: conf, unit: u}
	if conf.SuppressWarnings {
		e.ranges = SuppressionRanges(u)
	}
	return e
}

// Enabled reports whether diagnostics governed by opt are reported at all. Checkers use it to
// skip work whose findings would be ignored.
func (e *Engine) Enabled(opt config.Option) bool {
	return e.conf.Enabled(opt)
}

// Report adds a diagnostic whose severity is configured by opt. Diagnostics configured as ignored
// or suppressed by a @SuppressWarnings scope are dropped.
func (e *Engine) Report(opt config.Option, kind Kind, pos ast.Pos, args ...string) {
	sev := e.conf.Severity(opt)
	if sev == config.Ignore {
		return
	}
	if e.suppressed(pos) && (sev != config.Error || e.conf.SuppressOptionalErrors) {
		return
	}
	e.diagnostics = append(e.diagnostics, Diagnostic{
		Kind:     kind,
		Severity: sev,
		Span:     e.unit.Span(pos),
		Args:     args,
		Option:   opt,
	})
}

// ReportError adds an unconfigurable error. It is never suppressed.
func (e *Engine) ReportError(kind Kind, reason string, pos ast.Pos, args ...string) {
	e.diagnostics = append(e.diagnostics, Diagnostic{
		Kind:     kind,
		Reason:   reason,
		Severity: config.Error,
		Span:     e.unit.Span(pos),
		Args:     args,
	})
}

func (e *Engine) suppressed(pos ast.Pos) bool {
	for _, r := range e.ranges {
		if r.Contains(pos) {
			return true
		}
	}
	return false
}

// Diagnostics returns the collected diagnostics, sorted and with exact duplicates removed.
func (e *Engine) Diagnostics() []Diagnostic {
	Sort(e.diagnostics)
	return slices.CompactFunc(e.diagnostics, func(a, b Diagnostic) bool {
		return Compare(a, b) == 0 && a.Reason == b.Reason && slices.Equal(a.Args, b.Args)
	})
}

// Compare orders diagnostics by file, line, column and kind.
func Compare(a, b Diagnostic) int {
	if n := cmp.Compare(a.Span.File, b.Span.File); n != 0 {
		return n
	}
	if n := cmp.Compare(a.Span.Start.Line, b.Span.Start.Line); n != 0 {
		return n
	}
	if n := cmp.Compare(a.Span.Start.Col, b.Span.Start.Col); n != 0 {
		return n
	}
	return cmp.Compare(a.Kind, b.Kind)
}

// Sort sorts diagnostics in place by position. Diagnostics at the same position keep their
// relative order if they have the same kind.
func Sort(ds []Diagnostic) {
	slices.SortStableFunc(ds, Compare)
}
