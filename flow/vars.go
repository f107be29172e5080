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
	"strconv"

	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/program"
	"go.uber.org/jnilaway/util/orderedmap"
	"golang.org/x/tools/container/intsets"
)

// variable describes one tracked key: a local variable or parameter declaration, or a field
// access path (bare name, this-qualified, static, or rooted at another tracked variable).
type variable struct {
	name string
	// field is set for field keys.
	field *program.Field
	// spec is the declared nullness: explicit or defaulted for parameters and fields, explicit
	// only for locals.
	spec annotation.Nullness
	// decl is the declared type, nil if unknown (binary fields, lambda parameters without type).
	decl *ast.Type
	// typ is the resolved static type, nil for primitives, arrays and unresolvable types.
	typ *program.Type
	// elem is the nullness of the elements of an array or collection typed variable.
	elem annotation.Nullness
	// own marks field keys accessed through this or a bare name.
	own bool
	// captured marks variables of an enclosing method seen from a local or anonymous class body:
	// they always have their declared nullness.
	captured bool
}

// vars is the registry of tracked keys of one method analysis. Locals get a fresh id per
// declaration so that shadowing declarations never share state; field keys are interned by path.
type vars struct {
	list   []variable
	fields *orderedmap.OrderedMap[string, int]
	// allFields holds the ids of every field key, byOwner the field keys per declaring type.
	allFields intsets.Sparse
	byOwner   map[*program.Type]*intsets.Sparse
	// paths maps a variable to the field keys rooted at it.
	paths map[int]*intsets.Sparse
}

func newVars() *vars {
	return &vars{
		fields:  orderedmap.New[string, int](),
		byOwner: make(map[*program.Type]*intsets.Sparse),
		paths:   make(map[int]*intsets.Sparse),
	}
}

func (vs *vars) get(id int) *variable { return &vs.list[id] }

// local registers a new local variable or parameter.
func (vs *vars) local(v variable) int {
	vs.list = append(vs.list, v)
	return len(vs.list) - 1
}

// field returns the id of the field key named by path, registering it on first use. root is the
// variable the path is rooted at, -1 for bare, this-qualified and static keys.
func (vs *vars) field(path string, root int, v variable) int {
	if id, ok := vs.fields.Load(path); ok {
		return id
	}
	id := vs.local(v)
	vs.fields.Store(path, id)
	vs.allFields.Insert(id)
	owner := v.field.Owner
	if vs.byOwner[owner] == nil {
		vs.byOwner[owner] = &intsets.Sparse{}
	}
	vs.byOwner[owner].Insert(id)
	if root >= 0 {
		if vs.paths[root] == nil {
			vs.paths[root] = &intsets.Sparse{}
		}
		vs.paths[root].Insert(id)
	}
	return id
}

// isField reports whether id is a field key.
func (vs *vars) isField(id int) bool { return vs.allFields.Has(id) }

// pathKey names the field key of name accessed through the variable root.
func pathKey(root int, name string) string {
	return "#" + strconv.Itoa(root) + "." + name
}

// invalidate forgets what is known about the field keys rooted at id, after id is reassigned.
func (vs *vars) invalidate(in *Info, id int) {
	p := vs.paths[id]
	if p == nil {
		return
	}
	in.ForgetAll(p)
	for _, sub := range p.AppendTo(nil) {
		vs.invalidate(in, sub)
	}
}

// expireFields forgets every field protection.
func (vs *vars) expireFields(in *Info) {
	in.ForgetAll(&vs.allFields)
}

// expireOwner forgets the field keys of the given declaring type except keep.
func (vs *vars) expireOwner(in *Info, owner *program.Type, keep int) {
	set := vs.byOwner[owner]
	if set == nil {
		return
	}
	var others intsets.Sparse
	others.Copy(set)
	others.Remove(keep)
	in.ForgetAll(&others)
}

// env is a lexical environment: a stack of block scopes mapping names to variable ids.
type env struct {
	scopes []map[string]int
}

func (e *env) push() { e.scopes = append(e.scopes, make(map[string]int)) }

func (e *env) pop() { e.scopes = e.scopes[:len(e.scopes)-1] }

func (e *env) declare(name string, id int) {
	if name == "" || name == "_" {
		return
	}
	e.scopes[len(e.scopes)-1][name] = id
}

func (e *env) lookup(name string) (int, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if id, ok := e.scopes[i][name]; ok {
			return id, true
		}
	}
	return -1, false
}

// capture snapshots the variables visible in e, innermost declarations winning.
func (e *env) capture(vs *vars) map[string]variable {
	out := make(map[string]variable)
	for _, scope := range e.scopes {
		for name, id := range scope {
			v := *vs.get(id)
			v.captured = true
			out[name] = v
		}
	}
	return out
}
