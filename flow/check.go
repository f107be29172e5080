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
	"strings"

	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/diagnostic"
)

// deref checks a dereference of v. Afterwards the dereferenced variable is known to be non-null.
func (f *fn) deref(v value, pos ast.Pos, in *Info) {
	if v.qualifier || in.IsDead() {
		return
	}
	switch v.state {
	case DefinitelyNull:
		f.report(config.NullSpecViolation, diagnostic.NullDereference, pos, v.text)
	case PotentiallyNull:
		opt := config.PotentialNullReference
		if v.spec {
			opt = config.NullSpecViolation
		}
		f.report(opt, diagnostic.PotentialNullDereference, pos, v.text)
	}
	if v.key >= 0 && f.trackable(v.key) {
		in.Set(v.key, NonNull, false)
	}
}

// checkAssign checks the flow of v into a location of the given nullness and erased type name:
// an assignment, an argument, a returned value or a loop variable.
func (f *fn) checkAssign(required annotation.Nullness, typeName string, v value, pos ast.Pos, in *Info) {
	if required != annotation.NonNull || v.qualifier || in.IsDead() {
		return
	}
	req := annotation.NonNull.String() + " " + typeName
	switch v.state {
	case DefinitelyNull:
		f.report(config.NullSpecViolation, diagnostic.NullTypeMismatch, pos, req, "null")
	case PotentiallyNull:
		provided := "inferred as @Nullable"
		if v.spec {
			provided = "specified as @Nullable"
		}
		f.report(config.NullSpecViolation, diagnostic.NullTypeMismatch, pos, req, provided)
	case Unknown:
		if !f.a.engine.Enabled(config.UncheckedConversion) {
			return
		}
		provided := v.typeName
		if provided == "" {
			provided = "Object"
		}
		f.report(config.UncheckedConversion, diagnostic.UncheckedConversion, pos, provided, req)
	}
}

// compare checks a comparison of v against null whose outcome is known.
func (f *fn) compare(v value, eq bool, pos ast.Pos, in *Info) {
	if v.qualifier || in.IsDead() || !f.a.engine.Enabled(config.RedundantNullCheck) {
		return
	}
	var redundant bool
	switch v.state {
	case NonNull:
		redundant = !eq
	case DefinitelyNull:
		redundant = eq
	default:
		return
	}
	kind := diagnostic.AlwaysFalseComparison
	if redundant {
		kind = diagnostic.RedundantCheck
	}
	f.report(config.RedundantNullCheck, kind, pos, v.text, v.state.String())
}

// describe renders an expression for diagnostic messages.
func describe(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Null:
		return "null"
	case *ast.Lit:
		return e.Value
	case *ast.Name:
		return e.Ident
	case *ast.This:
		if e.Qualifier != "" {
			return e.Qualifier + ".this"
		}
		return "this"
	case *ast.Super:
		return "super"
	case *ast.FieldAccess:
		return describe(e.X) + "." + e.Name
	case *ast.Call:
		if e.X == nil {
			return e.Name + "()"
		}
		return describe(e.X) + "." + e.Name + "()"
	case *ast.New:
		return "new " + ast.ErasedName(e.Type) + "()"
	case *ast.NewArray:
		return "new " + ast.ErasedName(e.Type)
	case *ast.Index:
		return describe(e.X) + "[]"
	case *ast.Paren:
		return describe(e.X)
	case *ast.Cast:
		return describe(e.X)
	case *ast.Assign:
		return describe(e.Target)
	case *ast.Cond:
		return strings.Join([]string{describe(e.Cond), "?", describe(e.Then), ":", describe(e.Else)}, " ")
	default:
		return "expression"
	}
}
