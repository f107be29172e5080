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

// Package sealed validates sealed hierarchies: the permits clauses of sealed types, the
// modifiers required from their direct subtypes, the package and module locality of permitted
// subtypes, the seal-related modifiers of enums and records, and the restricted identifiers that
// cannot name a type. All findings are unconfigurable errors.
package sealed

import (
	"slices"

	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/diagnostic"
	"go.uber.org/jnilaway/program"
)

// RestrictedIdentifiers cannot be used as type names.
var RestrictedIdentifiers = []string{"var", "yield", "record", "sealed", "permits"}

// Validator validates the types declared in one compilation unit.
type Validator struct {
	prog   *program.Program
	engine *diagnostic.Engine
	unit   *ast.CompilationUnit
}

// New creates the validator of unit u.
func New(prog *program.Program, u *ast.CompilationUnit, e *diagnostic.Engine) *Validator {
	return &Validator{prog: prog, engine: e, unit: u}
}

// Run validates every type of the unit.
func (v *Validator) Run() {
	for _, d := range v.unit.AllTypes() {
		t := v.prog.TypeOf(d)
		if t == nil || t.Decl != d {
			continue
		}
		v.checkName(d)
		v.checkModifiers(d)
		v.checkPermits(t)
		v.checkSubtype(t)
	}
}

func (v *Validator) report(kind diagnostic.Kind, reason string, at ast.Pos, args ...string) {
	v.engine.ReportError(kind, reason, at, args...)
}

func (v *Validator) checkName(d *ast.TypeDecl) {
	if !d.Anonymous && slices.Contains(RestrictedIdentifiers, d.Name) {
		v.report(diagnostic.RestrictedIdentifierMisuse, "", d.At, d.Name)
	}
}

// checkModifiers checks the seal-related modifiers of d: enums and records only admit the
// modifiers legal at their nesting level, and only sealed types may have a permits clause.
func (v *Validator) checkModifiers(d *ast.TypeDecl) {
	if d.Kind == ast.KindEnum || d.Kind == ast.KindRecord {
		allowed := legalModifiers(d)
		for _, m := range d.Modifiers {
			if !slices.Contains(allowed, m) {
				v.report(diagnostic.SealedModifierObligationViolation, diagnostic.ReasonIllegalModifier, d.At,
					string(m), string(d.Kind), d.Name)
			}
		}
	}
	if len(d.Permits) > 0 && !d.Modifiers.Has(ast.Sealed) {
		v.report(diagnostic.SealedPermitsMismatch, diagnostic.ReasonPermitsWithoutSeal, d.At, d.Name)
	}
}

// legalModifiers returns the modifiers an enum or record declaration may carry. Enums are
// implicitly final or sealed and records implicitly final, so sealed and non-sealed are never
// legal.
func legalModifiers(d *ast.TypeDecl) ast.Modifiers {
	var allowed ast.Modifiers
	switch {
	case d.Local:
		allowed = ast.Modifiers{"strictfp"}
	case d.IsTopLevel():
		allowed = ast.Modifiers{ast.Public, "strictfp"}
	default:
		allowed = ast.Modifiers{ast.Public, ast.Protected, ast.Private, ast.Static, "strictfp"}
	}
	if d.Kind == ast.KindRecord {
		allowed = append(allowed, ast.Final)
	}
	return allowed
}

// checkPermits checks the permitted subtypes of a sealed type: each one resolvable, listed once,
// declaring t as a direct supertype, and local to t's module or, without a named module, to its
// package. A sealed type without permits needs a direct subtype in its own unit. Enums and
// records are left to checkModifiers.
func (v *Validator) checkPermits(t *program.Type) {
	d := t.Decl
	if d.Kind == ast.KindEnum || d.Kind == ast.KindRecord || !t.IsSealed() {
		return
	}
	if len(d.Permits) == 0 {
		if len(v.prog.PermittedSubtypes(t)) == 0 {
			v.report(diagnostic.SealedPermitsMismatch, diagnostic.ReasonNoSubtypes, d.At, d.Name)
		}
		return
	}

	seen := make(map[*program.Type]bool)
	module := v.prog.ModuleOf(t)
	for _, ref := range d.Permits {
		sub, ok := v.prog.ResolveRef(d, ref)
		if !ok {
			v.report(diagnostic.SealedPermitsMismatch, diagnostic.ReasonUnresolvedPermit, ref.At, ref.Name, t.Name)
			continue
		}
		if seen[sub] {
			v.report(diagnostic.SealedPermitsMismatch, diagnostic.ReasonDuplicatePermit, ref.At, sub.Name, t.Name)
			continue
		}
		seen[sub] = true

		if !slices.Contains(sub.Supertypes(), t) {
			v.report(diagnostic.SealedPermitsMismatch, diagnostic.ReasonNotDirectSubtype, ref.At, sub.Name, t.Name)
		}
		switch {
		case module != "":
			if !v.prog.SameModule(sub, t) {
				v.report(diagnostic.SealedLocalityViolation, diagnostic.ReasonOtherModule, ref.At, sub.Name, t.Name)
			}
		case !v.prog.SamePackage(sub, t):
			v.report(diagnostic.SealedLocalityViolation, diagnostic.ReasonOtherPackage, ref.At, sub.Name, t.Name)
		}
	}
}

// checkSubtype checks t against its direct supertypes: a direct subtype of a sealed type is a
// named class declared final, sealed or non-sealed and permitted by the sealed type; a
// non-sealed type needs a sealed direct supertype. The constant bodies of an enum are its
// implicitly permitted subtypes.
func (v *Validator) checkSubtype(t *program.Type) {
	d := t.Decl
	hasSealedSuper := false
	for _, s := range t.Supertypes() {
		if !s.IsSealed() {
			continue
		}
		hasSealedSuper = true
		if d.EnumConstantBody && d.Outer == s.Decl {
			continue
		}
		if d.Anonymous || d.Local {
			v.report(diagnostic.SealedModifierObligationViolation, diagnostic.ReasonLocalOrAnonymous, d.At,
				d.DisplayName(), s.Name)
			continue
		}
		if !permitted(v.prog, s, t) {
			v.report(diagnostic.SealedPermitsMismatch, diagnostic.ReasonNotPermitted, d.At, t.Name, s.Name)
		}
		v.checkObligation(t, s)
	}
	if d.Modifiers.Has(ast.NonSealed) && !hasSealedSuper {
		v.report(diagnostic.SealedModifierObligationViolation, diagnostic.ReasonNoSealedSuper, d.At, d.Name)
	}
}

// checkObligation checks that t, a direct subtype of the sealed type s, carries exactly one of
// final, sealed and non-sealed. Enums and records are implicitly final.
func (v *Validator) checkObligation(t, s *program.Type) {
	d := t.Decl
	if d.Kind == ast.KindEnum || d.Kind == ast.KindRecord {
		return
	}
	var found []ast.Modifier
	for _, m := range []ast.Modifier{ast.Final, ast.Sealed, ast.NonSealed} {
		if d.Modifiers.Has(m) {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		v.report(diagnostic.SealedModifierObligationViolation, diagnostic.ReasonMissingModifier, d.At, t.Name, s.Name)
	case 1:
	default:
		for _, m := range found[1:] {
			v.report(diagnostic.SealedModifierObligationViolation, diagnostic.ReasonIllegalModifier, d.At,
				string(m), string(d.Kind), d.Name)
		}
	}
}

// permitted reports whether sub is among the permitted subtypes of the sealed type s.
func permitted(prog *program.Program, s, sub *program.Type) bool {
	if s.Decl == nil {
		if s.Bin == nil || len(s.Bin.Permits) == 0 {
			return true
		}
		return slices.Contains(s.Bin.Permits, sub.Name)
	}
	return slices.Contains(prog.PermittedSubtypes(s), sub)
}
