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

package flow

import (
	"fmt"

	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
)

func (f *fn) block(stmts []ast.Stmt, in *Info) *Info {
	f.env.push()
	defer f.env.pop()
	for _, s := range stmts {
		in = f.stmt(s, in)
	}
	return in
}

// stmt analyzes s from in, which it may modify, and returns the state at its normal completion
// (dead if s always completes abruptly).
func (f *fn) stmt(s ast.Stmt, in *Info) *Info {
	switch s := s.(type) {
	case *ast.Block:
		return f.block(s.Stmts, in)
	case *ast.LocalVar:
		f.localVar(s, in)
		return in
	case *ast.ExprStmt:
		f.expr(s.X, in)
		return in
	case *ast.If:
		then, els := f.cond(s.Cond, in)
		then = f.stmt(s.Then, then)
		if s.Else != nil {
			els = f.stmt(s.Else, els)
		}
		return Meet(then, els)
	case *ast.While:
		return f.while(s, "", in)
	case *ast.DoWhile:
		return f.doWhile(s, "", in)
	case *ast.For:
		return f.forLoop(s, "", in)
	case *ast.ForEach:
		return f.forEach(s, "", in)
	case *ast.Switch:
		return f.switchStmt(s, "", in)
	case *ast.Labeled:
		return f.labeled(s, in)
	case *ast.Break:
		return f.jump(s.Label, false, in)
	case *ast.Continue:
		return f.jump(s.Label, true, in)
	case *ast.Return:
		return f.returnStmt(s, in)
	case *ast.Throw:
		v := f.expr(s.Value, in)
		f.deref(v, s.Value.Pos(), in)
		f.throwPoint(in)
		return DeadInfo()
	case *ast.Try:
		return f.try(s, in)
	case *ast.LocalClass:
		f.capture(s.Decl)
		return in
	case *ast.Sync:
		v := f.expr(s.Lock, in)
		f.deref(v, s.Lock.Pos(), in)
		return f.block(s.Body.Stmts, in)
	case *ast.Assert:
		// Assertions may be disabled: the condition is checked but does not narrow.
		probe := in.Clone()
		_, failed := f.cond(s.Cond, probe)
		if s.Message != nil {
			f.expr(s.Message, failed)
		}
		return in
	default:
		f.a.fail(fmt.Errorf("unrecognized AST node %T at %s", s, s.Pos()))
		return in
	}
}

func (f *fn) localVar(s *ast.LocalVar, in *Info) {
	spec := f.a.res.Local(s.Annotations, s.Type)
	v := variable{
		name: s.Name,
		spec: spec.Nullness,
		decl: s.Type,
		typ:  f.resolve(s.Type),
		elem: f.a.res.Element(f.scope, s.Type),
	}
	var init value
	if s.Init != nil {
		init = f.expr(s.Init, in)
		if s.Type == nil || s.Type.Name == "var" {
			v.decl, v.typ, v.elem = nil, init.typ, init.elem
		}
	}
	id := f.vars.local(v)
	if s.Init != nil {
		f.checkAssign(spec.Nullness, ast.ErasedName(s.Type), init, s.Init.Pos(), in)
		f.store(id, init, in)
	}
	f.env.declare(s.Name, id)
}

func (f *fn) returnStmt(s *ast.Return, in *Info) *Info {
	if s.Value != nil {
		v := f.expr(s.Value, in)
		if f.lambdas == 0 {
			f.checkAssign(f.ret, ast.ErasedName(f.retType), v, s.Value.Pos(), in)
		}
	}
	if f.lambdas == 0 {
		f.exit(in)
	}
	return DeadInfo()
}

func (f *fn) labeled(s *ast.Labeled, in *Info) *Info {
	switch body := s.Body.(type) {
	case *ast.While:
		return f.while(body, s.Label, in)
	case *ast.DoWhile:
		return f.doWhile(body, s.Label, in)
	case *ast.For:
		return f.forLoop(body, s.Label, in)
	case *ast.ForEach:
		return f.forEach(body, s.Label, in)
	case *ast.Switch:
		return f.switchStmt(body, s.Label, in)
	}
	fr := f.push(labelFrame, s.Label)
	out := f.stmt(s.Body, in)
	f.pop()
	return Meet(append(fr.breaks, out)...)
}

// loop analyzes a loop with config.LoopPasses passes over its body: every pass but the last is
// silent and only computes the back-edge state; the last pass starts from the meet of the loop
// entry and the back-edge, with field protections expired, and reports. head evaluates the top
// of an iteration and returns the states entering the body and leaving the loop.
func (f *fn) loop(label string, in *Info, head func(*Info) (*Info, *Info), body ast.Stmt, update []ast.Expr) *Info {
	pass := func(start *Info) (back, exit *Info) {
		fr := f.push(loopFrame, label)
		enter, leave := head(start)
		end := f.stmt(body, enter)
		f.pop()
		back = Meet(append(fr.continues, end)...)
		for _, u := range update {
			f.expr(u, back)
		}
		return back, Meet(append(fr.breaks, leave)...)
	}

	start := in
	for i := 1; i < config.LoopPasses; i++ {
		f.silent++
		back, _ := pass(start.Clone())
		f.silent--
		start = Meet(in, back)
		f.vars.expireFields(start)
	}
	_, exit := pass(start)
	return exit
}

func (f *fn) while(s *ast.While, label string, in *Info) *Info {
	return f.loop(label, in, func(start *Info) (*Info, *Info) {
		return f.cond(s.Cond, start)
	}, s.Body, nil)
}

func (f *fn) forLoop(s *ast.For, label string, in *Info) *Info {
	f.env.push()
	defer f.env.pop()
	for _, init := range s.Init {
		in = f.stmt(init, in)
	}
	return f.loop(label, in, func(start *Info) (*Info, *Info) {
		if s.Cond == nil {
			return start, DeadInfo()
		}
		return f.cond(s.Cond, start)
	}, s.Body, s.Update)
}

func (f *fn) forEach(s *ast.ForEach, label string, in *Info) *Info {
	it := f.expr(s.Iterable, in)
	f.deref(it, s.Iterable.Pos(), in)

	f.env.push()
	defer f.env.pop()
	spec := f.a.res.Local(s.Var.Annotations, s.Var.Type)
	id := f.vars.local(variable{
		name: s.Var.Name,
		spec: spec.Nullness,
		decl: s.Var.Type,
		typ:  f.resolve(s.Var.Type),
		elem: f.a.res.Element(f.scope, s.Var.Type),
	})
	f.env.declare(s.Var.Name, id)

	elem := specValue(it.elem)
	elem.typeName = ast.ErasedName(s.Var.Type)
	return f.loop(label, in, func(start *Info) (*Info, *Info) {
		leave := start.Clone()
		f.checkAssign(spec.Nullness, ast.ErasedName(s.Var.Type), elem, s.Var.At, start)
		f.store(id, elem, start)
		return start, leave
	}, s.Body, nil)
}

func (f *fn) doWhile(s *ast.DoWhile, label string, in *Info) *Info {
	pass := func(start *Info) (back, exit *Info) {
		fr := f.push(loopFrame, label)
		end := f.stmt(s.Body, start)
		f.pop()
		again, leave := f.cond(s.Cond, Meet(append(fr.continues, end)...))
		return again, Meet(append(fr.breaks, leave)...)
	}

	start := in
	for i := 1; i < config.LoopPasses; i++ {
		f.silent++
		back, _ := pass(start.Clone())
		f.silent--
		start = Meet(in, back)
		f.vars.expireFields(start)
	}
	_, exit := pass(start)
	return exit
}

func (f *fn) switchStmt(s *ast.Switch, label string, in *Info) *Info {
	sel := f.expr(s.Selector, in)
	f.deref(sel, s.Selector.Pos(), in)

	fr := f.push(switchFrame, label)
	f.env.push()
	fall := DeadInfo()
	hasDefault := false
	for _, c := range s.Cases {
		if c.IsDefault() {
			hasDefault = true
		}
		cur := Meet(in, fall)
		for _, st := range c.Body {
			cur = f.stmt(st, cur)
		}
		fall = cur
	}
	f.env.pop()
	f.pop()

	exits := append(fr.breaks, fall)
	if !hasDefault {
		exits = append(exits, in)
	}
	return Meet(exits...)
}

// try analyzes a try statement. Catch blocks start from the meet of the exceptional states of
// the try block. The finally block is analyzed, reporting, from the meet of every exceptional,
// normal and pending exit state. It is then analyzed silently from the normal completions to
// compute the state after the statement, and from each pending return or jump, which then
// continues to its target.
func (f *fn) try(s *ast.Try, in *Info) *Info {
	f.env.push()
	defer f.env.pop()

	fr := f.push(tryFrame, "")
	fr.catches = len(s.Catches) > 0
	fr.finally = s.Finally != nil
	fr.throws = append(fr.throws, in.Clone())
	for _, r := range s.Resources {
		f.localVar(r, in)
		f.throwPoint(in)
	}
	normal := f.block(s.Body.Stmts, in)
	f.pop()

	exceptional := Meet(fr.throws...)
	ends := []*Info{normal}
	throws := fr.throws
	pending := fr.pending
	for _, c := range s.Catches {
		cf := f.push(tryFrame, "")
		cf.finally = s.Finally != nil
		f.env.push()
		cin := exceptional.Clone()
		if c.Param != nil {
			id := f.vars.local(variable{
				name: c.Param.Name,
				spec: annotation.NonNull,
				decl: c.Param.Type,
				typ:  f.resolve(c.Param.Type),
			})
			cin.Set(id, NonNull, false)
			f.env.declare(c.Param.Name, id)
		}
		ends = append(ends, f.block(c.Body.Stmts, cin))
		f.env.pop()
		f.pop()
		throws = append(throws, cf.throws...)
		pending = append(pending, cf.pending...)
	}

	if s.Finally == nil {
		return Meet(ends...)
	}
	all := append(append([]*Info{}, throws...), ends...)
	for _, p := range pending {
		all = append(all, p.state)
	}
	f.block(s.Finally.Stmts, Meet(all...))

	f.silent++
	defer func() { f.silent-- }()
	for _, p := range pending {
		after := f.block(s.Finally.Stmts, p.state.Clone())
		switch {
		case after.IsDead():
		case p.ret:
			f.exit(after)
		default:
			f.jump(p.label, p.cont, after)
		}
	}
	return f.block(s.Finally.Stmts, Meet(ends...))
}

// capture records the variables visible at the declaration of a local or anonymous class.
func (f *fn) capture(d *ast.TypeDecl) {
	seen := f.env.capture(f.vars)
	for name, v := range f.captured {
		if _, ok := seen[name]; !ok {
			seen[name] = v
		}
	}
	f.a.captures[d] = seen
}
