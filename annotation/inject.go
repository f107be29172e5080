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

package annotation

import "go.uber.org/jnilaway/ast"

// InjectionRegistry is queried by the field initialization check. A field set by an injection
// framework is not required to be initialized by constructors.
type InjectionRegistry interface {
	// Exempts reports whether the field is initialized by injection.
	Exempts(f *ast.FieldDecl) bool
}

// NewInjectionRegistry returns a registry recognizing the injection annotations of names,
// including optional injection (`@Inject(optional = true)`).
func NewInjectionRegistry(names *Names) InjectionRegistry {
	return &injectionRegistry{names: names}
}

type injectionRegistry struct {
	names *Names
}

func (r *injectionRegistry) Exempts(f *ast.FieldDecl) bool {
	var u *ast.CompilationUnit
	if f.Owner != nil {
		u = f.Owner.Unit
	}
	for _, a := range f.Annotations {
		if r.names.IsInject(a, u) {
			return true
		}
	}
	return false
}
