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

// Package inherit implements the inheritance contract checker: every method overriding or
// implementing a supertype method must accept at least what the supertype method accepts and
// return at most what it returns. Methods a type inherits from several supertypes at once are
// checked against the merged contract, with the findings reported on the type itself.
package inherit

import (
	"errors"
	"fmt"

	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/defaults"
	"go.uber.org/jnilaway/diagnostic"
	"go.uber.org/jnilaway/program"
)

// Pair is the atomic object of the checker: a method and a supertype method it overrides,
// implements, or stands in for in a subtype inheriting both.
type Pair struct {
	Implementing *program.Method
	Inherited    *program.Method
}

// Checker checks the contracts of the types declared in one compilation unit.
type Checker struct {
	prog   *program.Program
	table  *defaults.Table
	engine *diagnostic.Engine
	unit   *ast.CompilationUnit

	// checked holds the pairs already verified, so that a pair reachable over several paths of
	// the hierarchy is reported once.
	checked map[Pair]bool
	errs    []error
}

// New creates the checker of unit u.
func New(prog *program.Program, table *defaults.Table, u *ast.CompilationUnit, e *diagnostic.Engine) *Checker {
	return &Checker{
		prog:    prog,
		table:   table,
		engine:  e,
		unit:    u,
		checked: make(map[Pair]bool),
	}
}

// Run checks every type of the unit and returns the resolution errors met on the way.
func (c *Checker) Run() error {
	for _, d := range c.unit.AllTypes() {
		t := c.prog.TypeOf(d)
		if t == nil || t.Decl != d {
			continue
		}
		for _, m := range t.Methods {
			for _, sm := range c.prog.Overridden(m) {
				c.check(Pair{Implementing: m, Inherited: sm}, nil)
			}
		}
		c.checkInherited(t)
	}
	return errors.Join(c.errs...)
}

// checkInherited checks the methods t inherits without declaring them. A concrete method
// inherited from a superclass implements the same-signature methods inherited from the other
// supertypes: their merged contract must be satisfied by it, and violations are reported on t.
func (c *Checker) checkInherited(t *program.Type) {
	if t.Kind.IsInterface() {
		return
	}
	order, bySig := c.prog.Inherited(t)
	for _, sig := range order {
		methods := bySig[sig]
		if len(methods) < 2 {
			continue
		}
		impl := implementation(methods)
		if impl == nil {
			continue
		}
		for _, other := range methods {
			// Pairs along one path were checked where the implementing method is declared.
			if other == impl || c.prog.IsSubtype(impl.Owner, other.Owner) {
				continue
			}
			c.check(Pair{Implementing: impl, Inherited: other}, t)
		}
	}
}

// implementation returns the concrete method among methods, preferring superclass methods over
// default interface methods.
func implementation(methods []*program.Method) *program.Method {
	var found *program.Method
	for _, m := range methods {
		if m.Abstract {
			continue
		}
		if !m.Owner.Kind.IsInterface() {
			return m
		}
		if found == nil {
			found = m
		}
	}
	return found
}

// check verifies the contract of p.Implementing against p.Inherited. via is the type inheriting
// both methods, nil when p.Implementing is declared in source as an override; diagnostics about
// an inherited pair are reported at the declaration of via.
func (c *Checker) check(p Pair, via *program.Type) {
	if c.checked[p] {
		return
	}
	c.checked[p] = true

	impl, err := c.table.Contract(p.Implementing)
	if err != nil {
		c.errs = append(c.errs, err)
		return
	}
	inherited, err := c.table.Contract(p.Inherited)
	if err != nil {
		c.errs = append(c.errs, err)
		return
	}

	for i := range p.Implementing.Params {
		at := c.position(p, via, func(d *ast.MethodDecl) ast.Pos {
			if i < len(d.Params) {
				return d.Params[i].At
			}
			return d.At
		})
		c.checkParam(p, paramName(p.Implementing, i), impl.Param(i), inherited.Param(i), at)
	}
	if !p.Implementing.Constructor {
		at := c.position(p, via, func(d *ast.MethodDecl) ast.Pos {
			if d.Returns != nil && d.Returns.At.IsValid() {
				return d.Returns.At
			}
			return d.At
		})
		c.checkReturn(p, impl.Return, inherited.Return, at)
	}
}

// checkParam enforces contravariance: the implementation may accept more, never less.
func (c *Checker) checkParam(p Pair, name string, impl, inherited annotation.Nullness, at ast.Pos) {
	switch {
	case impl == inherited, impl == annotation.Nullable:
		return
	case impl == annotation.NonNull:
		declared := inherited.String()
		if inherited == annotation.None {
			declared = "unconstrained"
		}
		c.engine.ReportError(diagnostic.IllegalOverrideRedefinition, "", at, name, p.Inherited.String(), declared)
	case inherited == annotation.NonNull:
		c.engine.Report(config.NonNullParameterDropped, diagnostic.MissingOverrideAnnotation, at,
			name, p.Inherited.String(), inherited.String())
	case inherited == annotation.Nullable:
		c.engine.Report(config.NullSpecViolation, diagnostic.MissingOverrideAnnotation, at,
			name, p.Inherited.String(), inherited.String())
	}
}

// checkReturn enforces covariance: a non-null return must stay non-null.
func (c *Checker) checkReturn(p Pair, impl, inherited annotation.Nullness, at ast.Pos) {
	if inherited != annotation.NonNull || impl == annotation.NonNull {
		return
	}
	required := fmt.Sprintf("%s %s", annotation.NonNull, returnName(p.Inherited))
	c.engine.Report(config.NullSpecViolation, diagnostic.IncompatibleReturnContract, at,
		p.Implementing.String(), required, p.Inherited.String())
}

// position returns where a finding about p is reported: at the type inheriting the pair, or at
// the part of the implementing declaration chosen by part.
func (c *Checker) position(p Pair, via *program.Type, part func(*ast.MethodDecl) ast.Pos) ast.Pos {
	if via != nil {
		return via.Decl.At
	}
	if d := p.Implementing.Decl; d != nil {
		return part(d)
	}
	return ast.Pos{}
}

func paramName(m *program.Method, i int) string {
	k := annotation.ParamKey{Type: m.Owner.Name, Signature: m.Signature(), Index: i + 1}
	switch {
	case m.Decl != nil && i < len(m.Decl.Params):
		k.Name = m.Decl.Params[i].Name
	case m.Bin != nil && i < len(m.Bin.ParamNames):
		k.Name = m.Bin.ParamNames[i]
	}
	return k.String()
}

func returnName(m *program.Method) string {
	switch {
	case m.Decl != nil && m.Decl.Returns != nil:
		return ast.ErasedName(m.Decl.Returns)
	case m.Bin != nil && m.Bin.Returns != "":
		return ast.SimpleName(m.Bin.Returns)
	default:
		return "Object"
	}
}
