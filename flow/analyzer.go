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

// Package flow implements the nullness flow analysis of method bodies. Each body is traversed
// once, depth first, threading an Info (the lattice state of every tracked variable) through
// statements and expressions; branches are merged with Meet, loops are analyzed twice, and the
// finally block of a try statement sees every exceptional exit of its try block. Verdicts are
// reported to the diagnostic engine of the unit as they are found.
package flow

import (
	"cmp"
	"errors"
	"slices"

	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/defaults"
	"go.uber.org/jnilaway/diagnostic"
	"go.uber.org/jnilaway/program"
)

// Analyzer runs the flow analysis of every body of one compilation unit. It is owned by the
// analysis of that unit.
type Analyzer struct {
	conf   *config.Config
	prog   *program.Program
	table  *defaults.Table
	res    *defaults.Resolver
	names  *annotation.Names
	inject annotation.InjectionRegistry
	engine *diagnostic.Engine
	unit   *ast.CompilationUnit

	// captures holds, for every local and anonymous class, the variables of the enclosing body
	// visible at its declaration.
	captures map[*ast.TypeDecl]map[string]variable
	errs     []error
}

// New creates the analyzer of unit u. The table must have been built for a program containing u.
func New(conf *config.Config, prog *program.Program, table *defaults.Table, u *ast.CompilationUnit, e *diagnostic.Engine) *Analyzer {
	return &Analyzer{
		conf:     conf,
		prog:     prog,
		table:    table,
		res:      table.For(u),
		names:    table.Names(),
		inject:   annotation.NewInjectionRegistry(table.Names()),
		engine:   e,
		unit:     u,
		captures: make(map[*ast.TypeDecl]map[string]variable),
	}
}

// Run analyzes every type of the unit in source order, enclosing types before the local and
// anonymous classes they declare. It returns the resolution errors met on the way; diagnostics
// go to the engine.
func (a *Analyzer) Run() error {
	for _, d := range a.unit.AllTypes() {
		t := a.prog.TypeOf(d)
		if t == nil || t.Decl != d {
			continue
		}
		a.analyzeType(t)
	}
	return errors.Join(a.errs...)
}

func (a *Analyzer) fail(err error) {
	if !slices.ContainsFunc(a.errs, func(e error) bool { return e.Error() == err.Error() }) {
		a.errs = append(a.errs, err)
	}
}

func (a *Analyzer) analyzeType(t *program.Type) {
	d := t.Decl

	staticOut := a.newFn(t, nil).initializers(true)
	instanceOut := a.newFn(t, nil).initializers(false)

	explicitCtor := false
	for _, m := range d.Methods {
		if m.Body == nil {
			continue
		}
		f := a.newFn(t, m)
		entry := NewInfo()
		if !m.Constructor {
			f.method(m, entry)
			continue
		}
		explicitCtor = true
		if delegates(m) {
			f.method(m, entry)
			continue
		}
		entry.copyAssigned(instanceOut)
		a.checkInitialized(d, false, f.method(m, entry), m.At)
	}

	if d.Kind.IsInterface() || d.Kind == ast.KindRecord {
		return
	}
	a.checkInitialized(d, true, staticOut, ast.Pos{})
	if !explicitCtor {
		a.checkInitialized(d, false, instanceOut, ast.Pos{})
	}
}

// delegates reports whether the constructor starts with an explicit this(...) invocation.
func delegates(m *ast.MethodDecl) bool {
	if len(m.Body.Stmts) == 0 {
		return false
	}
	s, ok := m.Body.Stmts[0].(*ast.ExprStmt)
	if !ok {
		return false
	}
	c, ok := s.X.(*ast.CtorCall)
	return ok && !c.Super
}

// checkInitialized reports the NonNull fields of d that are not definitely assigned in out, at
// the constructor position, or at the field itself when at is invalid.
func (a *Analyzer) checkInitialized(d *ast.TypeDecl, static bool, out *Info, at ast.Pos) {
	if out.IsDead() {
		return
	}
	for i, fd := range d.Fields {
		if fd.Synthetic || fd.Init != nil || fd.IsStatic() != static || out.Assigned(i) {
			continue
		}
		if a.res.Field(fd).Nullness != annotation.NonNull || a.inject.Exempts(fd) {
			continue
		}
		pos := at
		if !pos.IsValid() {
			pos = fd.At
		}
		a.engine.Report(config.NullSpecViolation, diagnostic.UninitializedNonNullField, pos, fd.Name)
	}
}

// fn is the flow context of one body: a method, constructor, or the sequence of field
// initializers and initializer blocks of one kind (static or instance).
type fn struct {
	a     *Analyzer
	typ   *program.Type
	decl  *ast.TypeDecl
	scope int

	// ret is the nullness of the returned value and retType the declared return type.
	ret     annotation.Nullness
	retType *ast.Type
	// lambdas counts the lambda bodies being analyzed; their returns are not checked.
	lambdas int

	vars     *vars
	env      env
	captured map[string]variable
	// capturedIDs maps captured names to the ids registered for them on first use.
	capturedIDs map[string]int
	frames      []*frame
	// silent counts the enclosing silent passes; nothing is reported while positive.
	silent int
	// exits are the states at the return statements of the body.
	exits []*Info
}

func (a *Analyzer) newFn(t *program.Type, m *ast.MethodDecl) *fn {
	f := &fn{
		a:           a,
		typ:         t,
		decl:        t.Decl,
		scope:       a.res.TypeScope(t.Decl),
		vars:        newVars(),
		captured:    a.captures[t.Decl],
		capturedIDs: make(map[string]int),
	}
	if m != nil {
		f.scope = a.res.MethodScope(m)
		f.ret = a.res.Return(m).Nullness
		f.retType = m.Returns
	}
	return f
}

// method analyzes the body of m from entry and returns the state at its normal completions.
func (f *fn) method(m *ast.MethodDecl, entry *Info) *Info {
	f.env.push()
	defer f.env.pop()
	for i, p := range m.Params {
		spec := f.a.res.Param(m, i)
		id := f.vars.local(variable{
			name: p.Name,
			spec: spec.Nullness,
			decl: p.Type,
			typ:  f.resolve(p.Type),
			elem: f.a.res.Element(f.scope, p.Type),
		})
		state, fromSpec := specState(spec.Nullness)
		entry.Set(id, state, fromSpec)
		f.env.declare(p.Name, id)
	}
	out := f.block(m.Body.Stmts, entry)
	return Meet(append(f.exits, out)...)
}

// initializers analyzes the field initializers and initializer blocks of the given kind in
// source order, then the enum constant creations for the static kind. The returned state records
// which fields are definitely assigned.
func (f *fn) initializers(static bool) *Info {
	d := f.decl
	in := NewInfo()
	f.env.push()
	defer f.env.pop()

	type item struct {
		at    ast.Pos
		field int
		init  *ast.Initializer
	}
	var items []item
	for i, fd := range d.Fields {
		if !fd.Synthetic && fd.Init != nil && fd.IsStatic() == static {
			items = append(items, item{at: fd.At, field: i})
		}
	}
	for _, init := range d.Initializers {
		if init.Body != nil && init.Static == static {
			items = append(items, item{at: init.At, field: -1, init: init})
		}
	}
	slices.SortStableFunc(items, func(x, y item) int {
		return cmp.Or(cmp.Compare(x.at.Line, y.at.Line), cmp.Compare(x.at.Col, y.at.Col))
	})

	if static {
		for _, c := range d.Constants {
			args := f.args(c.Args, in)
			m, _ := f.a.prog.FindConstructor(f.typ, argTypes(args))
			f.invoke(m, c.Args, args, in)
		}
	}
	for _, it := range items {
		if it.init != nil {
			in = f.block(it.init.Body.Stmts, in)
			continue
		}
		fd := d.Fields[it.field]
		v := f.expr(fd.Init, in)
		f.checkAssign(f.a.res.Field(fd).Nullness, ast.ErasedName(fd.Type), v, fd.Init.Pos(), in)
		in.Assign(it.field)
	}
	return in
}

// resolve returns the program type of a type reference written in the current type.
func (f *fn) resolve(t *ast.Type) *program.Type {
	if t == nil {
		return nil
	}
	rt, _ := f.a.prog.ResolveRef(f.decl, t)
	return rt
}

func (f *fn) report(opt config.Option, kind diagnostic.Kind, pos ast.Pos, args ...string) {
	if f.silent > 0 {
		return
	}
	f.a.engine.Report(opt, kind, pos, args...)
}

// specState returns the state of a value with the given declared nullness.
func specState(n annotation.Nullness) (State, bool) {
	switch n {
	case annotation.NonNull:
		return NonNull, false
	case annotation.Nullable:
		return PotentiallyNull, true
	default:
		return Unknown, false
	}
}
