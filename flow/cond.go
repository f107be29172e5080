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
	"go.uber.org/jnilaway/ast"
)

// cond evaluates a boolean expression from in, which it consumes, and returns the states when
// the expression yields true and when it yields false.
func (f *fn) cond(e ast.Expr, in *Info) (whenTrue, whenFalse *Info) {
	switch e := e.(type) {
	case *ast.Paren:
		return f.cond(e.X, in)
	case *ast.Lit:
		if e.Kind == ast.LitBool {
			if e.Value == "true" {
				return in, DeadInfo()
			}
			return DeadInfo(), in
		}
	case *ast.Unary:
		if e.Op == "!" {
			if inner, ok := ast.Unparen(e.X).(*ast.Unary); ok && inner.Op == "!" {
				// Double negation does not restore what the operand proves.
				t, fl := f.cond(inner.X, in)
				merged := Meet(t, fl)
				return merged, merged.Clone()
			}
			t, fl := f.cond(e.X, in)
			return fl, t
		}
	case *ast.Binary:
		switch e.Op {
		case "&&", "&":
			lt, lf := f.cond(e.L, in)
			rt, rf := f.cond(e.R, lt)
			return rt, Meet(lf, rf)
		case "||", "|":
			lt, lf := f.cond(e.L, in)
			rt, rf := f.cond(e.R, lf)
			return Meet(lt, rt), rf
		case "==", "!=":
			return f.equality(e, in)
		}
	case *ast.InstanceOf:
		v := f.expr(e.X, in)
		t := in.Clone()
		if v.key >= 0 && f.trackable(v.key) {
			t.Set(v.key, NonNull, false)
		}
		if e.Bind != "" {
			id := f.vars.local(variable{name: e.Bind, decl: e.Type, typ: f.resolve(e.Type)})
			t.Set(id, NonNull, false)
			f.env.declare(e.Bind, id)
		}
		return t, in
	case *ast.Cond:
		ct, cf := f.cond(e.Cond, in)
		at, af := f.cond(e.Then, ct)
		bt, bf := f.cond(e.Else, cf)
		return Meet(at, bt), Meet(af, bf)
	}
	f.expr(e, in)
	return in, in.Clone()
}

// equality evaluates `x == y` or `x != y`. A comparison of a value against the null literal is
// checked for a known outcome and narrows the compared variable on both branches.
func (f *fn) equality(e *ast.Binary, in *Info) (*Info, *Info) {
	eq := e.Op == "=="
	_, lnull := ast.Unparen(e.L).(*ast.Null)
	_, rnull := ast.Unparen(e.R).(*ast.Null)
	if lnull == rnull {
		f.expr(e.L, in)
		f.expr(e.R, in)
		return in, in.Clone()
	}
	operand := e.L
	if lnull {
		operand = e.R
	}
	v := f.expr(operand, in)
	f.compare(v, eq, operand.Pos(), in)

	isNull, notNull := in, in.Clone()
	if v.key >= 0 && f.trackable(v.key) {
		isNull.Set(v.key, DefinitelyNull, false)
		notNull.Set(v.key, NonNull, false)
	}
	// A comparison with a known outcome never takes the other branch.
	switch v.state {
	case NonNull:
		isNull = DeadInfo()
	case DefinitelyNull:
		notNull = DeadInfo()
	}
	if eq {
		return isNull, notNull
	}
	return notNull, isNull
}

// trackable reports whether flow facts may be recorded for variable id: locals always, fields
// only with syntactic field analysis.
func (f *fn) trackable(id int) bool {
	vr := f.vars.get(id)
	if vr.captured {
		return false
	}
	return vr.field == nil || f.a.conf.SyntacticFieldAnalysis
}
