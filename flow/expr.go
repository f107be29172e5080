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
	"strings"

	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/program"
)

// value is the abstract value of an evaluated expression.
type value struct {
	state State
	// spec is set when a PotentiallyNull state comes from a Nullable specification.
	spec bool
	// key is the tracked variable the expression reads, -1 if none.
	key int
	// typ is the resolved static type, typeName its erased simple name ("" if unknown, "null"
	// for the null literal).
	typ      *program.Type
	typeName string
	// elem is the nullness of the elements of an array or collection value.
	elem annotation.Nullness
	// qualifier is set for names denoting a type or package rather than a value.
	qualifier bool
	text      string
}

func unknown(text string) value { return value{key: -1, text: text} }

func primitive(name string) value {
	return value{state: NonNull, key: -1, typeName: name, text: name}
}

// specValue returns a value of the given declared nullness.
func specValue(n annotation.Nullness) value {
	state, spec := specState(n)
	return value{state: state, spec: spec, key: -1}
}

func argTypes(args []value) []string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.typeName
	}
	return types
}

// expr evaluates e from in, which it updates, and returns its value.
func (f *fn) expr(e ast.Expr, in *Info) value {
	switch e := e.(type) {
	case *ast.Null:
		return value{state: DefinitelyNull, key: -1, typeName: "null", text: "null"}
	case *ast.Lit:
		return f.literal(e)
	case *ast.Name:
		return f.name(e, in)
	case *ast.This:
		t := f.typ
		if e.Qualifier != "" {
			if q, ok := f.a.prog.Resolve(f.decl, e.Qualifier); ok {
				t = q
			}
		}
		return value{state: NonNull, key: -1, typ: t, typeName: t.Simple, text: describe(e)}
	case *ast.Super:
		v := value{state: NonNull, key: -1, text: "super"}
		if s := f.typ.Super; s != nil {
			v.typ, v.typeName = s, s.Simple
		}
		return v
	case *ast.FieldAccess:
		return f.fieldAccess(e, in)
	case *ast.Call:
		return f.call(e, in)
	case *ast.CtorCall:
		f.ctorCall(e, in)
		return unknown("")
	case *ast.New:
		return f.newExpr(e, in)
	case *ast.Assign:
		return f.assign(e, in)
	case *ast.Binary:
		return f.binary(e, in)
	case *ast.Unary:
		if e.Op == "!" {
			t, fl := f.cond(e, in)
			in.Replace(Meet(t, fl))
			return primitive("boolean")
		}
		v := f.expr(e.X, in)
		return primitive(v.typeName)
	case *ast.Cond:
		ct, cf := f.cond(e.Cond, in)
		a := f.expr(e.Then, ct)
		b := f.expr(e.Else, cf)
		in.Replace(Meet(ct, cf))
		v := value{state: MeetState(a.state, b.state), key: -1, text: describe(e)}
		v.spec = (a.spec || b.spec) && v.state == PotentiallyNull
		v.typ, v.typeName, v.elem = a.typ, a.typeName, a.elem
		if a.state == DefinitelyNull {
			v.typ, v.typeName, v.elem = b.typ, b.typeName, b.elem
		}
		return v
	case *ast.Cast:
		v := f.expr(e.X, in)
		if e.Type.IsPrimitive() {
			return primitive(e.Type.Name)
		}
		v.typ, v.typeName = f.resolve(e.Type), ast.ErasedName(e.Type)
		if n := f.a.names.ElementNullness(f.a.unit, e.Type); n != annotation.None {
			v.elem = n
		}
		return v
	case *ast.InstanceOf:
		t, fl := f.cond(e, in)
		in.Replace(Meet(t, fl))
		return primitive("boolean")
	case *ast.Index:
		arr := f.expr(e.X, in)
		f.deref(arr, e.X.Pos(), in)
		f.expr(e.Index, in)
		v := specValue(arr.elem)
		v.typeName = strings.TrimSuffix(arr.typeName, "[]")
		v.text = describe(e)
		return v
	case *ast.NewArray:
		for _, d := range e.Dims {
			f.expr(d, in)
		}
		for _, x := range e.Init {
			f.expr(x, in)
		}
		f.throwPoint(in)
		return value{
			state:    NonNull,
			key:      -1,
			typeName: ast.ErasedName(e.Type),
			elem:     f.a.names.ElementNullness(f.a.unit, e.Type),
			text:     describe(e),
		}
	case *ast.Paren:
		return f.expr(e.X, in)
	case *ast.Lambda:
		f.lambda(e, in)
		return value{state: NonNull, key: -1, text: "lambda"}
	default:
		f.a.fail(fmt.Errorf("unrecognized AST node %T at %s", e, e.Pos()))
		return unknown("")
	}
}

func (f *fn) literal(l *ast.Lit) value {
	var name string
	switch l.Kind {
	case ast.LitString:
		v := value{state: NonNull, key: -1, typeName: "String", text: "\"" + l.Value + "\""}
		v.typ, _ = f.a.prog.Type("java.lang.String")
		return v
	case ast.LitBool:
		name = "boolean"
	case ast.LitChar:
		name = "char"
	default:
		switch {
		case strings.HasSuffix(l.Value, "L") || strings.HasSuffix(l.Value, "l"):
			name = "long"
		case strings.HasSuffix(l.Value, "f") || strings.HasSuffix(l.Value, "F"):
			name = "float"
		case strings.ContainsAny(l.Value, ".eE") && !strings.HasPrefix(l.Value, "0x"):
			name = "double"
		default:
			name = "int"
		}
	}
	v := primitive(name)
	v.text = l.Value
	return v
}

// load returns the value of the tracked variable id.
func (f *fn) load(id int, in *Info, text string) value {
	vr := f.vars.get(id)
	v := value{key: id, typ: vr.typ, elem: vr.elem, text: text}
	if vr.decl != nil {
		v.typeName = ast.ErasedName(vr.decl)
		if !vr.decl.IsReference() {
			v.state = NonNull
			return v
		}
	} else if vr.typ != nil {
		v.typeName = vr.typ.Simple
	}
	switch {
	case vr.captured:
		v.state, v.spec = specState(vr.spec)
	case vr.field != nil && (!f.a.conf.SyntacticFieldAnalysis || !in.Tracked(id)):
		v.state, v.spec = specState(vr.spec)
	default:
		v.state, v.spec = in.State(id), in.IsSpec(id)
	}
	return v
}

// name evaluates a simple name: a local or parameter, a field of the current type, a variable
// captured from the enclosing body, a field of an enclosing type, or a type or package name.
func (f *fn) name(e *ast.Name, in *Info) value {
	if id, ok := f.lookupLocal(e.Ident); ok {
		return f.load(id, in, e.Ident)
	}
	if id, ok := f.bareField(e.Ident); ok {
		return f.load(id, in, e.Ident)
	}
	if t, ok := f.a.prog.Resolve(f.decl, e.Ident); ok {
		return value{key: -1, typ: t, typeName: t.Simple, qualifier: true, text: e.Ident}
	}
	return value{key: -1, qualifier: true, text: e.Ident}
}

// lookupLocal finds a local or parameter in scope, or a captured variable not shadowed by a
// field of the current type.
func (f *fn) lookupLocal(name string) (int, bool) {
	if id, ok := f.env.lookup(name); ok {
		return id, true
	}
	v, ok := f.captured[name]
	if !ok {
		return -1, false
	}
	if _, shadowed := f.a.prog.FindField(f.typ, name); shadowed {
		return -1, false
	}
	if id, ok := f.capturedIDs[name]; ok {
		return id, true
	}
	id := f.vars.local(v)
	f.capturedIDs[name] = id
	return id, true
}

// bareField resolves an unqualified field name in the current type or its enclosing types.
func (f *fn) bareField(name string) (int, bool) {
	for t := f.typ; t != nil; t = t.Outer {
		if fld, ok := f.a.prog.FindField(t, name); ok {
			return f.fieldVar(name, -1, fld, name, true), true
		}
	}
	return -1, false
}

// fieldVar returns the key of fld accessed through path.
func (f *fn) fieldVar(path string, root int, fld *program.Field, text string, own bool) int {
	return f.vars.field(path, root, f.fieldVariable(fld, text, own))
}

// fieldVariable describes the field fld read through an access spelled text.
func (f *fn) fieldVariable(fld *program.Field, text string, own bool) variable {
	spec, err := f.a.table.FieldNullness(fld)
	if err != nil {
		f.a.fail(err)
	}
	v := variable{name: text, field: fld, spec: spec.Nullness, own: own}
	if fld.Decl != nil {
		owner := fld.Decl.Owner
		v.decl = fld.Decl.Type
		v.typ, _ = f.a.prog.ResolveRef(owner, fld.Decl.Type)
		r := f.a.table.For(owner.Unit)
		v.elem = r.Element(r.TypeScope(owner), fld.Decl.Type)
	} else if fld.TypeName != "" {
		v.typ, _ = f.a.prog.ResolveIn(nil, nil, fld.TypeName)
		v.decl = &ast.Type{Name: fld.TypeName}
	}
	return v
}

// fieldAccess evaluates X.Name. Accesses through this, super, a type name, and another value
// are tracked under distinct keys.
func (f *fn) fieldAccess(e *ast.FieldAccess, in *Info) value {
	id, recv, ok := f.fieldKey(e, in)
	if ok {
		return f.load(id, in, describe(e))
	}
	text := describe(e)
	if recv.qualifier {
		if q := qualifiedName(e); q != "" {
			if t, ok := f.a.prog.Resolve(f.decl, q); ok {
				return value{key: -1, typ: t, typeName: t.Simple, qualifier: true, text: text}
			}
		}
		if recv.typ == nil {
			// A package name prefix.
			return value{key: -1, qualifier: true, text: text}
		}
	}
	if e.Name == "length" && strings.HasSuffix(recv.typeName, "[]") {
		return primitive("int")
	}
	if fld, ok := f.a.prog.FindField(recv.typ, e.Name); ok && recv.typ != nil {
		// Untracked receiver, e.g. a call result: the field has its declared nullness.
		vr := f.fieldVariable(fld, text, false)
		v := specValue(vr.spec)
		v.typ, v.elem, v.text = vr.typ, vr.elem, text
		if vr.decl != nil {
			v.typeName = ast.ErasedName(vr.decl)
			if !vr.decl.IsReference() {
				v.state = NonNull
			}
		}
		return v
	}
	return unknown(text)
}

// fieldKey resolves the key of a field access, evaluating and dereferencing the receiver, which
// it returns.
func (f *fn) fieldKey(e *ast.FieldAccess, in *Info) (int, value, bool) {
	switch x := ast.Unparen(e.X).(type) {
	case *ast.This:
		recv := f.expr(x, in)
		prefix := "this."
		if x.Qualifier != "" {
			prefix = x.Qualifier + ".this."
		}
		if fld, ok := f.a.prog.FindField(recv.typ, e.Name); ok {
			return f.fieldVar(prefix+e.Name, -1, fld, describe(e), true), recv, true
		}
		return -1, recv, false
	case *ast.Super:
		recv := f.expr(x, in)
		if fld, ok := f.a.prog.FindField(recv.typ, e.Name); ok {
			return f.fieldVar("super."+e.Name, -1, fld, describe(e), true), recv, true
		}
		return -1, recv, false
	}

	recv := f.expr(e.X, in)
	if recv.qualifier {
		if recv.typ == nil {
			return -1, recv, false
		}
		if fld, ok := f.a.prog.FindField(recv.typ, e.Name); ok {
			return f.fieldVar(recv.typ.Name+"::"+e.Name, -1, fld, describe(e), false), recv, true
		}
		return -1, recv, false
	}
	f.deref(recv, e.X.Pos(), in)
	if recv.typ == nil || recv.key < 0 {
		return -1, recv, false
	}
	fld, ok := f.a.prog.FindField(recv.typ, e.Name)
	if !ok {
		return -1, recv, false
	}
	return f.fieldVar(pathKey(recv.key, e.Name), recv.key, fld, describe(e), false), recv, true
}

// qualifiedName returns the dotted name spelled by a chain of names, "" for other expressions.
func qualifiedName(e ast.Expr) string {
	switch e := ast.Unparen(e).(type) {
	case *ast.Name:
		return e.Ident
	case *ast.FieldAccess:
		if q := qualifiedName(e.X); q != "" {
			return q + "." + e.Name
		}
	}
	return ""
}

func (f *fn) args(exprs []ast.Expr, in *Info) []value {
	args := make([]value, len(exprs))
	for i, a := range exprs {
		args[i] = f.expr(a, in)
	}
	return args
}

func (f *fn) call(e *ast.Call, in *Info) value {
	var recv *program.Type
	switch x := ast.Unparen(e.X).(type) {
	case nil:
	case *ast.Super:
		recv = f.typ.Super
		if recv == nil && len(f.typ.Interfaces) > 0 {
			recv = f.typ.Interfaces[0]
		}
	default:
		v := f.expr(x, in)
		if !v.qualifier {
			f.deref(v, e.X.Pos(), in)
		}
		recv = v.typ
	}
	args := f.args(e.Args, in)

	var m *program.Method
	switch {
	case e.X == nil:
		for t := f.typ; t != nil && m == nil; t = t.Outer {
			m, _ = f.a.prog.FindMethod(t, e.Name, argTypes(args))
		}
	case recv != nil:
		m, _ = f.a.prog.FindMethod(recv, e.Name, argTypes(args))
	}
	ret := f.invoke(m, e.Args, args, in)
	ret.text = describe(e)
	return ret
}

func (f *fn) ctorCall(e *ast.CtorCall, in *Info) {
	args := f.args(e.Args, in)
	target := f.typ
	if e.Super {
		target = f.typ.Super
	}
	var m *program.Method
	if target != nil {
		m, _ = f.a.prog.FindConstructor(target, argTypes(args))
	}
	f.invoke(m, e.Args, args, in)
}

func (f *fn) newExpr(e *ast.New, in *Info) value {
	args := f.args(e.Args, in)
	target := f.resolve(e.Type)
	t := target
	if e.Body != nil {
		t = f.a.prog.TypeOf(e.Body)
		f.capture(e.Body)
	}
	var m *program.Method
	if target != nil && !target.Kind.IsInterface() {
		m, _ = f.a.prog.FindConstructor(target, argTypes(args))
	}
	f.invoke(m, e.Args, args, in)
	v := value{state: NonNull, key: -1, typ: t, typeName: ast.ErasedName(e.Type), text: describe(e)}
	if target != nil {
		v.typeName = target.Simple
	}
	return v
}

// invoke checks the arguments of a call against the contract of m (nil if unresolved), records
// the call as a throw point, expires field protections, and returns the call result.
func (f *fn) invoke(m *program.Method, exprs []ast.Expr, args []value, in *Info) value {
	if m == nil {
		f.throwPoint(in)
		f.vars.expireFields(in)
		return unknown("")
	}
	c, err := f.a.table.Contract(m)
	if err != nil {
		f.a.fail(err)
	}
	for i, v := range args {
		if i < len(m.Params) {
			f.checkAssign(c.Param(i), m.Params[i], v, exprs[i].Pos(), in)
		}
	}
	f.throwPoint(in)
	f.vars.expireFields(in)
	if m.Constructor {
		return unknown("")
	}

	ret := specValue(c.Return)
	switch {
	case m.Decl != nil && m.Decl.Returns != nil:
		owner := m.Decl.Owner
		ret.typ, _ = f.a.prog.ResolveRef(owner, m.Decl.Returns)
		ret.typeName = ast.ErasedName(m.Decl.Returns)
		r := f.a.table.For(owner.Unit)
		ret.elem = r.Element(r.MethodScope(m.Decl), m.Decl.Returns)
		if m.Decl.Returns.IsPrimitive() {
			ret.state = NonNull
		}
	case m.Bin != nil && m.Bin.Returns != "":
		ret.typ, _ = f.a.prog.ResolveIn(nil, nil, m.Bin.Returns)
		ret.typeName = ast.SimpleName(m.Bin.Returns)
		if (&ast.Type{Name: ret.typeName}).IsPrimitive() {
			ret.state = NonNull
		}
	}
	return ret
}

func (f *fn) binary(e *ast.Binary, in *Info) value {
	switch e.Op {
	case "&&", "||", "&", "|", "==", "!=":
		t, fl := f.cond(e, in)
		in.Replace(Meet(t, fl))
		return primitive("boolean")
	case "<", ">", "<=", ">=":
		f.expr(e.L, in)
		f.expr(e.R, in)
		return primitive("boolean")
	}
	l := f.expr(e.L, in)
	r := f.expr(e.R, in)
	if e.Op == "+" && (l.typeName == "String" || r.typeName == "String") {
		v := value{state: NonNull, key: -1, typeName: "String", text: describe(e)}
		v.typ, _ = f.a.prog.Type("java.lang.String")
		return v
	}
	if l.typeName != "" {
		return primitive(l.typeName)
	}
	return primitive(r.typeName)
}

// assign evaluates a simple or compound assignment and returns the assigned value, keyed by the
// target variable so that conditions on the assignment narrow the target.
func (f *fn) assign(e *ast.Assign, in *Info) value {
	if e.Op != "" && e.Op != "=" {
		cur := f.expr(e.Target, in)
		f.expr(e.Value, in)
		v := primitive(cur.typeName)
		if cur.typeName == "String" {
			v.typ = cur.typ
		}
		if cur.key >= 0 {
			f.store(cur.key, v, in)
		}
		return v
	}

	switch t := ast.Unparen(e.Target).(type) {
	case *ast.Index:
		arr := f.expr(t.X, in)
		f.deref(arr, t.X.Pos(), in)
		f.expr(t.Index, in)
		v := f.expr(e.Value, in)
		f.checkAssign(arr.elem, strings.TrimSuffix(arr.typeName, "[]"), v, e.Value.Pos(), in)
		return v
	case *ast.Name, *ast.FieldAccess:
		id := f.target(t, in)
		v := f.expr(e.Value, in)
		if id < 0 {
			return v
		}
		vr := f.vars.get(id)
		f.checkAssign(vr.spec, ast.ErasedName(vr.decl), v, e.Value.Pos(), in)
		f.store(id, v, in)
		v.key = id
		return v
	default:
		f.expr(e.Target, in)
		return f.expr(e.Value, in)
	}
}

// target resolves the variable assigned by a name or field access, -1 if it is not tracked.
func (f *fn) target(e ast.Expr, in *Info) int {
	switch e := e.(type) {
	case *ast.Name:
		if id, ok := f.lookupLocal(e.Ident); ok {
			return id
		}
		if id, ok := f.bareField(e.Ident); ok {
			return id
		}
	case *ast.FieldAccess:
		if id, _, ok := f.fieldKey(e, in); ok {
			return id
		}
	}
	return -1
}

// store records the assignment of v to the variable id.
func (f *fn) store(id int, v value, in *Info) {
	vr := f.vars.get(id)
	state, spec := v.state, v.spec
	if vr.spec == annotation.NonNull {
		state, spec = NonNull, false
	}
	if fld := vr.field; fld != nil {
		f.vars.expireOwner(in, fld.Owner, id)
		if vr.own && fld.Owner == f.typ && fld.Decl != nil {
			for i, fd := range f.decl.Fields {
				if fd == fld.Decl {
					in.Assign(i)
				}
			}
		}
		if !f.a.conf.SyntacticFieldAnalysis {
			return
		}
	}
	in.Set(id, state, spec)
	f.vars.invalidate(in, id)
}

// lambda analyzes a lambda body in place, from a copy of in with field protections expired.
// Returns inside the body are not checked and nothing flows back into in.
func (f *fn) lambda(e *ast.Lambda, in *Info) {
	frames, exits := f.frames, f.exits
	f.frames, f.exits = nil, nil
	f.lambdas++
	defer func() {
		f.frames, f.exits = frames, exits
		f.lambdas--
	}()

	body := in.Clone()
	f.vars.expireFields(body)
	f.env.push()
	defer f.env.pop()
	for _, p := range e.Params {
		spec := f.a.res.Local(p.Annotations, p.Type)
		id := f.vars.local(variable{name: p.Name, spec: spec.Nullness, decl: p.Type, typ: f.resolve(p.Type)})
		state, fromSpec := specState(spec.Nullness)
		body.Set(id, state, fromSpec)
		f.env.declare(p.Name, id)
	}
	if e.Body != nil {
		f.block(e.Body.Stmts, body)
	}
}
