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

package program

import (
	"strings"

	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/config"
)

// ModuleOf returns the named module of t, empty for the unnamed module. A binary type without
// module information belongs to the module of its package, if known.
func (p *Program) ModuleOf(t *Type) string {
	if t.Module != "" {
		return t.Module
	}
	if m, ok := p.packageModule[t.Package]; ok {
		return m
	}
	if pkg, ok := p.store.Package(t.Package); ok {
		return pkg.Module
	}
	return ""
}

// SameModule reports whether a and b belong to the same named module.
func (p *Program) SameModule(a, b *Type) bool {
	m := p.ModuleOf(a)
	return m != "" && m == p.ModuleOf(b)
}

// SamePackage reports whether a and b belong to the same package.
func (p *Program) SamePackage(a, b *Type) bool {
	return a.Package == b.Package
}

// CheckAnnotationTypes verifies that every configured annotation type outside the built-in
// annotation package is declared by a unit of the batch or by a binary dependency. Annotation
// types of the built-in package are always available.
func (p *Program) CheckAnnotationTypes(conf *config.Config) error {
	names := annotation.NewNames(conf).Configured()
	for _, name := range names {
		if strings.HasPrefix(name, config.DefaultAnnotationPackage+".") {
			continue
		}
		if _, ok := p.Type(name); !ok {
			return &ResolutionError{Name: name, From: "configuration"}
		}
	}
	return nil
}
