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
	"fmt"

	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/config"
)

// Kind classifies a diagnostic.
type Kind string

// Diagnostic kinds.
const (
	AnnotationContradiction           Kind = "AnnotationContradiction"
	IllegalAnnotationLocation         Kind = "IllegalAnnotationLocation"
	NullTypeMismatch                  Kind = "NullTypeMismatch"
	NullDereference                   Kind = "NullDereference"
	PotentialNullDereference          Kind = "PotentialNullDereference"
	UncheckedConversion               Kind = "UncheckedConversion"
	RedundantCheck                    Kind = "RedundantCheck"
	AlwaysFalseComparison             Kind = "AlwaysFalseComparison"
	RedundantAnnotation               Kind = "RedundantAnnotation"
	RedundantDefault                  Kind = "RedundantDefault"
	MissingDefault                    Kind = "MissingDefault"
	MissingOverrideAnnotation         Kind = "MissingOverrideAnnotation"
	IllegalOverrideRedefinition       Kind = "IllegalOverrideRedefinition"
	IncompatibleReturnContract        Kind = "IncompatibleReturnContract"
	UninitializedNonNullField         Kind = "UninitializedNonNullField"
	SealedPermitsMismatch             Kind = "SealedPermitsMismatch"
	SealedModifierObligationViolation Kind = "SealedModifierObligationViolation"
	SealedLocalityViolation           Kind = "SealedLocalityViolation"
	RestrictedIdentifierMisuse        Kind = "RestrictedIdentifierMisuse"
	InternalError                     Kind = "InternalError"
)

// Reasons refine the sealed-hierarchy kinds.
const (
	ReasonUnresolvedPermit   = "unresolved-permit"
	ReasonNotDirectSubtype   = "not-direct-subtype"
	ReasonDuplicatePermit    = "duplicate-permit"
	ReasonNotPermitted       = "not-permitted"
	ReasonNoSubtypes         = "no-subtypes"
	ReasonPermitsWithoutSeal = "permits-without-sealed"
	ReasonMissingModifier    = "missing-modifier"
	ReasonLocalOrAnonymous   = "local-or-anonymous"
	ReasonNoSealedSuper      = "no-sealed-super"
	ReasonIllegalModifier    = "illegal-modifier"
	ReasonOtherModule        = "other-module"
	ReasonOtherPackage       = "other-package"
	ReasonPanic              = "panic"
)

// Diagnostic is one finding. Args are the message template parameters; Message renders them.
type Diagnostic struct {
	Kind     Kind            `json:"kind"`
	Reason   string          `json:"reason,omitempty"`
	Severity config.Severity `json:"severity"`
	Span     ast.Span        `json:"span"`
	Args     []string        `json:"args,omitempty"`
	// Option is the configuration option governing the severity, empty for unconfigurable kinds.
	Option config.Option `json:"option,omitempty"`
}

// IsFixed returns true for diagnostics whose severity cannot be configured.
func (d Diagnostic) IsFixed() bool { return d.Option == "" }

// _templates maps a kind, or a kind and reason joined by "/", to a format taking the arguments
// of the diagnostic.
var _templates = map[string]string{
	string(AnnotationContradiction):     "Contradictory null specification; only one of %s and %s is allowed",
	string(IllegalAnnotationLocation):   "The nullness annotation %s is not applicable for the type %s",
	string(NullTypeMismatch):            "Null type mismatch: required '%s' but the provided value is %s",
	string(NullDereference):             "Null pointer access: %s can only be null at this location",
	string(PotentialNullDereference):    "Potential null pointer access: %s may be null at this location",
	string(UncheckedConversion):         "Null type safety: the expression of type '%s' needs unchecked conversion to conform to '%s'",
	string(RedundantCheck):              "Redundant null check: %s is %s at this location",
	string(AlwaysFalseComparison):       "Null comparison always yields false: %s is %s at this location",
	string(RedundantAnnotation):         "The nullness annotation %s is redundant with a default that applies to %s",
	string(RedundantDefault):            "Nullness default is redundant with the default specified for the enclosing %s",
	string(MissingDefault):              "A default nullness annotation has not been specified for the type %s",
	string(MissingOverrideAnnotation):   "Missing nullness annotation: %s; the inherited method %s specifies it as %s",
	string(IllegalOverrideRedefinition): "Illegal redefinition of %s; the inherited method %s declares it as %s",
	string(IncompatibleReturnContract):  "The return type of %s is incompatible with '%s' returned from %s",
	string(UninitializedNonNullField):   "The @NonNull field %s may not have been initialized",
	string(RestrictedIdentifierMisuse):  "'%s' is a restricted identifier and cannot be used as a type name",
	string(InternalError):               "INTERNAL ERROR: %s",

	string(SealedPermitsMismatch) + "/" + ReasonUnresolvedPermit:   "Permitted type %s of %s cannot be resolved",
	string(SealedPermitsMismatch) + "/" + ReasonNotDirectSubtype:   "Permitted type %s does not declare %s as a direct supertype",
	string(SealedPermitsMismatch) + "/" + ReasonDuplicatePermit:    "Duplicate type %s in the permits clause of %s",
	string(SealedPermitsMismatch) + "/" + ReasonNotPermitted:       "The type %s is not permitted to extend the sealed type %s",
	string(SealedPermitsMismatch) + "/" + ReasonNoSubtypes:         "Sealed type %s lacks a permits clause and no type in its compilation unit extends it",
	string(SealedPermitsMismatch) + "/" + ReasonPermitsWithoutSeal: "The type %s has a permits clause but is not declared sealed",

	string(SealedModifierObligationViolation) + "/" + ReasonMissingModifier:  "The type %s extending the sealed type %s must be declared final, sealed or non-sealed",
	string(SealedModifierObligationViolation) + "/" + ReasonLocalOrAnonymous: "The local or anonymous class %s cannot extend the sealed type %s",
	string(SealedModifierObligationViolation) + "/" + ReasonNoSealedSuper:    "The non-sealed type %s has no sealed direct supertype",
	string(SealedModifierObligationViolation) + "/" + ReasonIllegalModifier:  "Illegal modifier %s for the %s %s",

	string(SealedLocalityViolation) + "/" + ReasonOtherModule:  "Permitted type %s is not in the module of the sealed type %s",
	string(SealedLocalityViolation) + "/" + ReasonOtherPackage: "Permitted type %s is not in the package of the sealed type %s",

	string(InternalError) + "/" + ReasonPanic: "INTERNAL PANIC: %s",
}

// Message renders the diagnostic message.
func (d Diagnostic) Message() string {
	tmpl, ok := _templates[string(d.Kind)+"/"+d.Reason]
	if !ok {
		tmpl, ok = _templates[string(d.Kind)]
	}
	if !ok {
		return fmt.Sprintf("%s %v", d.Kind, d.Args)
	}
	args := make([]any, len(d.Args))
	for i, a := range d.Args {
		args[i] = a
	}
	return fmt.Sprintf(tmpl, args...)
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", d.Span, d.Severity, d.Message(), d.Kind)
}
