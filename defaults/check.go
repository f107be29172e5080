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

package defaults

import (
	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/diagnostic"
)

// Check reports the findings about the annotations of the unit's declarations: contradictory
// annotations and annotations on primitive or void locations (always errors), redundant defaults
// and annotations, and top-level types without any effective default.
func (r *Resolver) Check(e *diagnostic.Engine) {
	if e.Enabled(config.RedundantNullAnnotation) {
		for _, s := range r.scopes {
			if !s.Declared || s.Annotation == nil || s.Parent == NoScope {
				continue
			}
			parent := r.scopes[s.Parent]
			if parent.Origin != NoScope && parent.Effective == s.Locations {
				e.Report(config.RedundantNullAnnotation, diagnostic.RedundantDefault, s.Annotation.At,
					r.scopes[parent.Origin].Name)
			}
		}
	}

	for _, d := range r.unit.AllTypes() {
		if d.IsTopLevel() && e.Enabled(config.MissingNonNullByDefault) &&
			r.scopes[r.TypeScope(d)].Origin == NoScope {
			e.Report(config.MissingNonNullByDefault, diagnostic.MissingDefault, d.At, d.Qualified)
		}

		typeScope := r.TypeScope(d)
		for _, f := range d.Fields {
			if f.Synthetic {
				continue
			}
			r.checkLocation(e, typeScope, annotation.Field, f.Annotations, f.Type)
			if f.Init != nil {
				r.checkLocals(e, f.Init)
			}
		}
		for _, c := range d.Components {
			r.checkLocation(e, typeScope, annotation.Field, c.Annotations, c.Type)
		}
		for _, m := range d.Methods {
			if m.Synthetic {
				continue
			}
			ms := r.MethodScope(m)
			if !m.Constructor {
				r.checkLocation(e, ms, annotation.Return, m.Annotations, m.Returns)
			}
			for _, p := range m.Params {
				r.checkLocation(e, ms, annotation.Parameter, p.Annotations, p.Type)
			}
			if m.Body != nil {
				r.checkLocals(e, m.Body)
			}
		}
		for _, init := range d.Initializers {
			if init.Body != nil {
				r.checkLocals(e, init.Body)
			}
		}
	}
}

// checkLocation checks the nullness annotations of one declaration site.
func (r *Resolver) checkLocation(e *diagnostic.Engine, scope int, loc annotation.Location, decl []*ast.Annotation, typ *ast.Type) {
	ex := r.names.Explicit(r.unit, decl, typ)
	if ex.Nullness == annotation.None {
		return
	}
	if ex.Contradiction != nil {
		e.ReportError(diagnostic.AnnotationContradiction, "", ex.Contradiction.At,
			annotation.NonNull.String(), annotation.Nullable.String())
		return
	}
	if annotation.IsIllegalLocation(ex, typ) {
		e.ReportError(diagnostic.IllegalAnnotationLocation, "", ex.Annotation.At, ex.Nullness.String(), typ.String())
		return
	}
	if loc != 0 && ex.Nullness == annotation.NonNull && r.scopes[scope].Effective.Has(loc) &&
		e.Enabled(config.RedundantNullAnnotation) {
		e.Report(config.RedundantNullAnnotation, diagnostic.RedundantAnnotation, ex.Annotation.At,
			ex.Nullness.String(), r.scopes[r.scopes[scope].Origin].Name)
	}
}

// checkLocals checks the annotations of the local variables, catch parameters and lambda
// parameters declared in a member body. Local and anonymous classes are checked as types of
// their own.
func (r *Resolver) checkLocals(e *diagnostic.Engine, body ast.Node) {
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.TypeDecl:
			return false
		case *ast.LocalVar:
			r.checkLocation(e, 0, 0, n.Annotations, n.Type)
		case *ast.Catch:
			if n.Param != nil {
				r.checkLocation(e, 0, 0, n.Param.Annotations, n.Param.Type)
			}
		case *ast.Lambda:
			for _, p := range n.Params {
				r.checkLocation(e, 0, 0, p.Annotations, p.Type)
			}
		}
		return true
	})
}
