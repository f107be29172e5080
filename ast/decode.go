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

package ast

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeFile reads all compilation unit documents of a YAML or JSON file. Units without a `path`
// are given the file path.
func DecodeFile(path string) ([]*CompilationUnit, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit file: %w", err)
	}
	units, err := DecodeAll(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for _, u := range units {
		if u.Path == "" {
			u.Path = path
		}
	}
	return units, nil
}

// DecodeAll reads a stream of `---`-separated compilation unit documents and links each unit.
// JSON is accepted since it is a subset of YAML.
func DecodeAll(r io.Reader) ([]*CompilationUnit, error) {
	dec := yaml.NewDecoder(r)
	var units []*CompilationUnit
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		u, err := DecodeNode(&doc)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// DecodeNode converts a parsed YAML document into a linked compilation unit. All malformed nodes
// are reported, joined into one error.
func DecodeNode(doc *yaml.Node) (*CompilationUnit, error) {
	d := &decoder{}
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	u := d.unit(n)
	if len(d.errs) > 0 {
		return nil, errors.Join(d.errs...)
	}
	Link(u)
	return u, nil
}

type decoder struct {
	errs []error
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) {
	line := 0
	if n != nil {
		line = n.Line
	}
	d.errs = append(d.errs, fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...)))
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	n = resolve(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// fields returns the entries of a mapping node, reporting keys outside allowed.
func (d *decoder) fields(n *yaml.Node, what string, allowed ...string) map[string]*yaml.Node {
	n = resolve(n)
	out := make(map[string]*yaml.Node)
	if isNull(n) {
		return out
	}
	if n.Kind != yaml.MappingNode {
		d.errorf(n, "%s must be a mapping", what)
		return out
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		known := false
		for _, a := range allowed {
			if a == key {
				known = true
				break
			}
		}
		if !known {
			d.errorf(n.Content[i], "unknown %s key %q", what, key)
			continue
		}
		out[key] = resolve(n.Content[i+1])
	}
	return out
}

// list returns the items of a sequence node; a single non-sequence node is a one-item list.
func list(n *yaml.Node) []*yaml.Node {
	n = resolve(n)
	if isNull(n) {
		return nil
	}
	if n.Kind == yaml.SequenceNode {
		items := make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			items[i] = resolve(c)
		}
		return items
	}
	return []*yaml.Node{n}
}

func (d *decoder) str(n *yaml.Node) string {
	if isNull(n) {
		return ""
	}
	if n.Kind != yaml.ScalarNode {
		d.errorf(n, "expected a scalar")
		return ""
	}
	return n.Value
}

func (d *decoder) strs(n *yaml.Node) []string {
	var out []string
	for _, c := range list(n) {
		out = append(out, d.str(c))
	}
	return out
}

func (d *decoder) boolean(n *yaml.Node) bool {
	if isNull(n) {
		return false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		d.errorf(n, "expected a boolean: %v", err)
	}
	return b
}

// pos parses "line:col" or "line"; a missing position is inherited.
func (d *decoder) pos(n *yaml.Node, inherit Pos) Pos {
	if isNull(n) {
		return inherit
	}
	s := d.str(n)
	lineStr, colStr, hasCol := strings.Cut(s, ":")
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		d.errorf(n, "malformed position %q", s)
		return inherit
	}
	col := 1
	if hasCol {
		if col, err = strconv.Atoi(colStr); err != nil {
			d.errorf(n, "malformed position %q", s)
			return inherit
		}
	}
	return Pos{Line: line, Col: col}
}

// kinded splits a single-key node `{kind: body}` with optional sibling `at`/`end` keys.
func (d *decoder) kinded(n *yaml.Node, what string) (kind string, body, at *yaml.Node, ok bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		d.errorf(n, "%s must be a single-key mapping", what)
		return "", nil, nil, false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, resolve(n.Content[i+1])
		switch key {
		case "at":
			at = val
		case "end":
		default:
			if kind != "" {
				d.errorf(n, "%s has more than one kind: %q and %q", what, kind, key)
				return "", nil, nil, false
			}
			kind, body = key, val
		}
	}
	if kind == "" {
		d.errorf(n, "%s without kind", what)
		return "", nil, nil, false
	}
	return kind, body, at, true
}

// nodeAt returns the position from the sibling `at`, else from an `at` inside a mapping body,
// else the inherited one.
func (d *decoder) nodeAt(at, body *yaml.Node, inherit Pos) Pos {
	if at != nil {
		return d.pos(at, inherit)
	}
	if body != nil && body.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(body.Content); i += 2 {
			if body.Content[i].Value == "at" {
				return d.pos(resolve(body.Content[i+1]), inherit)
			}
		}
	}
	return inherit
}

func (d *decoder) unit(n *yaml.Node) *CompilationUnit {
	f := d.fields(n, "unit", "path", "package", "module", "imports", "annotations", "types")
	u := &CompilationUnit{
		Path:        d.str(f["path"]),
		Package:     d.str(f["package"]),
		Module:      d.str(f["module"]),
		Imports:     d.strs(f["imports"]),
		Annotations: d.annotations(f["annotations"], Pos{}),
	}
	for _, t := range list(f["types"]) {
		u.Types = append(u.Types, d.typeDecl(t, Pos{}, true))
	}
	return u
}

func (d *decoder) modifiers(n *yaml.Node) Modifiers {
	var mods Modifiers
	for _, s := range d.strs(n) {
		mods = append(mods, Modifier(s))
	}
	return mods
}

func (d *decoder) annotations(n *yaml.Node, inherit Pos) []*Annotation {
	var anns []*Annotation
	for _, c := range list(n) {
		if a := d.annotation(c, inherit); a != nil {
			anns = append(anns, a)
		}
	}
	return anns
}

func (d *decoder) annotation(n *yaml.Node, inherit Pos) *Annotation {
	if n.Kind == yaml.ScalarNode {
		a, err := ParseAnnotation(n.Value)
		if err != nil {
			d.errorf(n, "%v", err)
			return nil
		}
		a.At = inherit
		return a
	}
	f := d.fields(n, "annotation", "name", "args", "at")
	a := &Annotation{Name: strings.TrimPrefix(d.str(f["name"]), "@"), At: d.pos(f["at"], inherit)}
	if args := f["args"]; !isNull(args) {
		if args.Kind == yaml.MappingNode {
			if err := args.Decode(&a.Args); err != nil {
				d.errorf(args, "annotation args: %v", err)
			}
		} else {
			var v any
			if err := args.Decode(&v); err != nil {
				d.errorf(args, "annotation args: %v", err)
			}
			a.Args = map[string]any{"value": v}
		}
	}
	if a.Name == "" {
		d.errorf(n, "annotation without name")
		return nil
	}
	return a
}

func (d *decoder) typ(n *yaml.Node, inherit Pos) *Type {
	if isNull(n) {
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		t, err := ParseType(n.Value)
		if err != nil {
			d.errorf(n, "%v", err)
			return nil
		}
		setTypePos(t, inherit)
		return t
	}
	f := d.fields(n, "type", "name", "annotations", "args", "elem", "dims", "at")
	at := d.pos(f["at"], inherit)
	t := &Type{Name: d.str(f["name"]), Annotations: d.annotations(f["annotations"], at), At: at}
	for _, a := range list(f["args"]) {
		t.Args = append(t.Args, d.typ(a, at))
	}
	if e := f["elem"]; !isNull(e) {
		t.Elem = d.typ(e, at)
		t.Name = ""
	}
	if dims := f["dims"]; !isNull(dims) {
		var k int
		if err := dims.Decode(&k); err != nil {
			d.errorf(dims, "dims: %v", err)
		}
		// The annotations given on the mapping stay on the outermost level.
		outer := t.Annotations
		t.Annotations = nil
		for i := 0; i < k; i++ {
			t = &Type{Elem: t, At: at}
		}
		if k > 0 {
			t.Annotations = outer
		}
	}
	return t
}

func setTypePos(t *Type, p Pos) {
	if t == nil {
		return
	}
	t.At = p
	for _, a := range t.Annotations {
		a.At = p
	}
	for _, arg := range t.Args {
		setTypePos(arg, p)
	}
	setTypePos(t.Elem, p)
}

func (d *decoder) typeDecl(n *yaml.Node, inherit Pos, named bool) *TypeDecl {
	f := d.fields(n, "type declaration", "kind", "name", "at", "end", "modifiers", "annotations",
		"extends", "implements", "permits", "fields", "methods", "initializers", "types",
		"constants", "components")
	at := d.pos(f["at"], inherit)
	t := &TypeDecl{
		Kind:        TypeKind(d.str(f["kind"])),
		Name:        d.str(f["name"]),
		Modifiers:   d.modifiers(f["modifiers"]),
		Annotations: d.annotations(f["annotations"], at),
		Extends:     d.typ(f["extends"], at),
		At:          at,
	}
	if t.Kind == "" {
		t.Kind = KindClass
	}
	switch t.Kind {
	case KindClass, KindInterface, KindEnum, KindRecord, KindAnnotation:
	default:
		d.errorf(n, "unrecognized type kind %q", t.Kind)
	}
	if named && t.Name == "" {
		d.errorf(n, "type declaration without name")
	}
	for _, c := range list(f["implements"]) {
		t.Implements = append(t.Implements, d.typ(c, at))
	}
	for _, c := range list(f["permits"]) {
		t.Permits = append(t.Permits, d.typ(c, at))
	}
	for _, c := range list(f["components"]) {
		t.Components = append(t.Components, d.param(c, at))
	}
	for _, c := range list(f["fields"]) {
		t.Fields = append(t.Fields, d.field(c, at))
	}
	for _, c := range list(f["methods"]) {
		t.Methods = append(t.Methods, d.method(c, at))
	}
	for _, c := range list(f["initializers"]) {
		t.Initializers = append(t.Initializers, d.initializer(c, at))
	}
	for _, c := range list(f["types"]) {
		t.Types = append(t.Types, d.typeDecl(c, at, true))
	}
	for _, c := range list(f["constants"]) {
		t.Constants = append(t.Constants, d.constant(c, at))
	}
	return t
}

func (d *decoder) field(n *yaml.Node, inherit Pos) *FieldDecl {
	if n.Kind == yaml.ScalarNode {
		anns, typ, name, err := ParseDecl(n.Value)
		if err != nil {
			d.errorf(n, "%v", err)
			return &FieldDecl{At: inherit}
		}
		setTypePos(typ, inherit)
		for _, a := range anns {
			a.At = inherit
		}
		return &FieldDecl{Name: name, Type: typ, Annotations: anns, At: inherit}
	}
	f := d.fields(n, "field", "name", "at", "type", "modifiers", "annotations", "init")
	at := d.pos(f["at"], inherit)
	fd := &FieldDecl{
		Name:        d.str(f["name"]),
		Type:        d.typ(f["type"], at),
		Modifiers:   d.modifiers(f["modifiers"]),
		Annotations: d.annotations(f["annotations"], at),
		At:          at,
	}
	if init := f["init"]; init != nil {
		fd.Init = d.expr(init, at)
	}
	return fd
}

func (d *decoder) param(n *yaml.Node, inherit Pos) *Param {
	if n.Kind == yaml.ScalarNode {
		anns, typ, name, err := ParseDecl(n.Value)
		if err != nil {
			d.errorf(n, "%v", err)
			return &Param{At: inherit}
		}
		setTypePos(typ, inherit)
		for _, a := range anns {
			a.At = inherit
		}
		return &Param{Name: name, Type: typ, Annotations: anns, At: inherit}
	}
	f := d.fields(n, "parameter", "name", "at", "type", "annotations")
	at := d.pos(f["at"], inherit)
	return &Param{
		Name:        d.str(f["name"]),
		Type:        d.typ(f["type"], at),
		Annotations: d.annotations(f["annotations"], at),
		At:          at,
	}
}

func (d *decoder) method(n *yaml.Node, inherit Pos) *MethodDecl {
	f := d.fields(n, "method", "name", "at", "end", "params", "returns", "constructor",
		"modifiers", "annotations", "body")
	at := d.pos(f["at"], inherit)
	m := &MethodDecl{
		Name:        d.str(f["name"]),
		Returns:     d.typ(f["returns"], at),
		Constructor: d.boolean(f["constructor"]),
		Modifiers:   d.modifiers(f["modifiers"]),
		Annotations: d.annotations(f["annotations"], at),
		At:          at,
	}
	for _, p := range list(f["params"]) {
		m.Params = append(m.Params, d.param(p, at))
	}
	if body, ok := f["body"]; ok {
		m.Body = d.block(body, at)
	}
	if m.Returns == nil && !m.Constructor {
		m.Returns = &Type{Name: "void", At: at}
	}
	return m
}

func (d *decoder) initializer(n *yaml.Node, inherit Pos) *Initializer {
	f := d.fields(n, "initializer", "static", "at", "body")
	at := d.pos(f["at"], inherit)
	return &Initializer{Static: d.boolean(f["static"]), Body: d.block(f["body"], at), At: at}
}

func (d *decoder) constant(n *yaml.Node, inherit Pos) *EnumConstant {
	if n.Kind == yaml.ScalarNode {
		return &EnumConstant{Name: n.Value, At: inherit}
	}
	f := d.fields(n, "enum constant", "name", "at", "args", "body", "annotations")
	at := d.pos(f["at"], inherit)
	c := &EnumConstant{Name: d.str(f["name"]), Annotations: d.annotations(f["annotations"], at), At: at}
	c.Args = d.exprs(f["args"], at)
	if body := f["body"]; body != nil {
		c.Body = d.typeDecl(body, at, false)
	}
	return c
}

// block decodes a statement list, a `block` statement or a single statement into a block.
func (d *decoder) block(n *yaml.Node, inherit Pos) *Block {
	n = resolve(n)
	if isNull(n) {
		return &Block{At: inherit}
	}
	if n.Kind == yaml.SequenceNode {
		b := &Block{At: inherit}
		for _, c := range n.Content {
			if s := d.stmt(c, inherit); s != nil {
				b.Stmts = append(b.Stmts, s)
			}
		}
		return b
	}
	s := d.stmt(n, inherit)
	if b, ok := s.(*Block); ok {
		return b
	}
	if s == nil {
		return &Block{At: inherit}
	}
	return &Block{Stmts: []Stmt{s}, At: s.Pos()}
}

// body decodes a statement position: a sequence becomes a block.
func (d *decoder) body(n *yaml.Node, inherit Pos) Stmt {
	n = resolve(n)
	if isNull(n) || n.Kind == yaml.SequenceNode {
		return d.block(n, inherit)
	}
	return d.stmt(n, inherit)
}

func (d *decoder) local(n *yaml.Node, at Pos) *LocalVar {
	if n.Kind == yaml.ScalarNode {
		anns, typ, name, err := ParseDecl(n.Value)
		if err != nil {
			d.errorf(n, "%v", err)
			return &LocalVar{At: at}
		}
		setTypePos(typ, at)
		for _, a := range anns {
			a.At = at
		}
		return &LocalVar{Name: name, Type: typ, Annotations: anns, At: at}
	}
	f := d.fields(n, "local variable", "name", "at", "type", "modifiers", "annotations", "init")
	at = d.pos(f["at"], at)
	v := &LocalVar{
		Name:        d.str(f["name"]),
		Type:        d.typ(f["type"], at),
		Modifiers:   d.modifiers(f["modifiers"]),
		Annotations: d.annotations(f["annotations"], at),
		At:          at,
	}
	if init := f["init"]; init != nil {
		v.Init = d.expr(init, at)
	}
	return v
}

func (d *decoder) stmt(n *yaml.Node, inherit Pos) Stmt {
	kind, body, atNode, ok := d.kinded(n, "statement")
	if !ok {
		return nil
	}
	at := d.nodeAt(atNode, body, inherit)

	switch kind {
	case "local":
		return d.local(body, at)
	case "expr":
		return &ExprStmt{X: d.expr(body, at), At: at}
	case "if":
		f := d.fields(body, "if", "cond", "then", "else", "at")
		s := &If{Cond: d.expr(f["cond"], at), Then: d.body(f["then"], at), At: at}
		if e, ok := f["else"]; ok {
			s.Else = d.body(e, at)
		}
		return s
	case "while":
		f := d.fields(body, "while", "cond", "body", "at")
		return &While{Cond: d.expr(f["cond"], at), Body: d.body(f["body"], at), At: at}
	case "do":
		f := d.fields(body, "do", "cond", "body", "at")
		return &DoWhile{Body: d.body(f["body"], at), Cond: d.expr(f["cond"], at), At: at}
	case "for":
		f := d.fields(body, "for", "init", "cond", "update", "body", "at")
		s := &For{Update: d.exprs(f["update"], at), Body: d.body(f["body"], at), At: at}
		for _, c := range list(f["init"]) {
			if st := d.stmt(c, at); st != nil {
				s.Init = append(s.Init, st)
			}
		}
		if c := f["cond"]; c != nil {
			s.Cond = d.expr(c, at)
		}
		return s
	case "foreach":
		f := d.fields(body, "foreach", "var", "in", "body", "at")
		return &ForEach{
			Var:      d.local(f["var"], at),
			Iterable: d.expr(f["in"], at),
			Body:     d.body(f["body"], at),
			At:       at,
		}
	case "return":
		s := &Return{At: at}
		// `return:` with no value is a void return; `return: null` returns the null literal.
		if body != nil && !(body.Kind == yaml.ScalarNode && body.Tag == "!!null" && body.Value == "") {
			s.Value = d.expr(body, at)
		}
		return s
	case "throw":
		return &Throw{Value: d.expr(body, at), At: at}
	case "try":
		f := d.fields(body, "try", "resources", "body", "catch", "finally", "at")
		s := &Try{Body: d.block(f["body"], at), At: at}
		for _, r := range list(f["resources"]) {
			s.Resources = append(s.Resources, d.local(r, at))
		}
		for _, c := range list(f["catch"]) {
			cf := d.fields(c, "catch", "param", "body", "at")
			cat := d.pos(cf["at"], at)
			param := &Param{Name: "e", Type: &Type{Name: "Throwable", At: cat}, At: cat}
			if p := cf["param"]; p != nil {
				param = d.param(p, cat)
			}
			s.Catches = append(s.Catches, &Catch{Param: param, Body: d.block(cf["body"], cat), At: cat})
		}
		if fin, ok := f["finally"]; ok {
			s.Finally = d.block(fin, at)
		}
		return s
	case "switch":
		f := d.fields(body, "switch", "on", "cases", "at")
		s := &Switch{Selector: d.expr(f["on"], at), At: at}
		for _, c := range list(f["cases"]) {
			cf := d.fields(c, "case", "labels", "default", "body", "at")
			cat := d.pos(cf["at"], at)
			cs := &Case{Body: d.block(cf["body"], cat).Stmts, At: cat}
			if !d.boolean(cf["default"]) {
				cs.Labels = d.exprs(cf["labels"], cat)
				if len(cs.Labels) == 0 {
					d.errorf(c, "case without labels must be marked default")
				}
			}
			s.Cases = append(s.Cases, cs)
		}
		return s
	case "break":
		return &Break{Label: d.str(body), At: at}
	case "continue":
		return &Continue{Label: d.str(body), At: at}
	case "block":
		b := d.block(body, at)
		b.At = at
		return b
	case "class":
		decl := d.typeDecl(body, at, true)
		return &LocalClass{Decl: decl, At: decl.At}
	case "sync":
		f := d.fields(body, "sync", "lock", "body", "at")
		return &Sync{Lock: d.expr(f["lock"], at), Body: d.block(f["body"], at), At: at}
	case "assert":
		f := d.fields(body, "assert", "cond", "message", "at")
		s := &Assert{Cond: d.expr(f["cond"], at), At: at}
		if m := f["message"]; m != nil {
			s.Message = d.expr(m, at)
		}
		return s
	case "labeled":
		f := d.fields(body, "labeled", "label", "body", "at")
		return &Labeled{Label: d.str(f["label"]), Body: d.body(f["body"], at), At: at}
	}

	if isExprKind(kind) {
		return &ExprStmt{X: d.exprKind(kind, body, at), At: at}
	}
	d.errorf(n, "unrecognized statement kind %q", kind)
	return nil
}

var binaryOps = []string{
	"==", "!=", "&&", "||", "&", "|", "^", "+", "-", "*", "/", "%", "<", ">", "<=", ">=",
	"<<", ">>", ">>>",
}

func isExprKind(kind string) bool {
	switch kind {
	case "null", "name", "this", "super", "field", "call", "ctor", "new", "assign", "binary",
		"not", "unary", "cond", "cast", "instanceof", "index", "newarray", "lit", "paren", "lambda":
		return true
	}
	for _, op := range binaryOps {
		if op == kind {
			return true
		}
	}
	return false
}

func (d *decoder) exprs(n *yaml.Node, at Pos) []Expr {
	var out []Expr
	for _, c := range list(n) {
		if e := d.expr(c, at); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (d *decoder) expr(n *yaml.Node, inherit Pos) Expr {
	n = resolve(n)
	if n == nil {
		d.errorf(n, "missing expression")
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		return d.scalarExpr(n, inherit)
	}
	kind, body, atNode, ok := d.kinded(n, "expression")
	if !ok {
		return nil
	}
	at := d.nodeAt(atNode, body, inherit)
	if !isExprKind(kind) {
		d.errorf(n, "unrecognized expression kind %q", kind)
		return nil
	}
	return d.exprKind(kind, body, at)
}

// scalarExpr decodes the scalar shorthands: null, booleans, numbers, quoted strings, `this`,
// `super`, `new` (a fresh Object), and dotted chains of names and no-argument calls such as `o.getX().toString()`.
func (d *decoder) scalarExpr(n *yaml.Node, at Pos) Expr {
	switch n.Tag {
	case "!!null":
		return &Null{At: at}
	case "!!bool":
		return &Lit{Kind: LitBool, Value: n.Value, At: at}
	case "!!int", "!!float":
		return &Lit{Kind: LitNumber, Value: n.Value, At: at}
	}
	s := strings.TrimSpace(n.Value)
	switch {
	case s == "":
		d.errorf(n, "empty expression")
		return nil
	case s == "null":
		return &Null{At: at}
	case s == "new":
		return &New{Type: &Type{Name: "Object", At: at}, At: at}
	case strings.HasPrefix(s, "'") || strings.HasPrefix(s, `"`):
		return &Lit{Kind: LitString, Value: strings.Trim(s, `'"`), At: at}
	case s[0] == '-' || (s[0] >= '0' && s[0] <= '9'):
		return &Lit{Kind: LitNumber, Value: s, At: at}
	}

	var x Expr
	for i, seg := range strings.Split(s, ".") {
		call := strings.HasSuffix(seg, "()")
		name := strings.TrimSuffix(seg, "()")
		if name == "" || strings.ContainsAny(name, "() ") {
			d.errorf(n, "malformed expression %q", s)
			return nil
		}
		switch {
		case call:
			x = &Call{X: x, Name: name, At: at}
		case i == 0 && name == "this":
			x = &This{At: at}
		case i == 0 && name == "super":
			x = &Super{At: at}
		case i == 0:
			x = &Name{Ident: name, At: at}
		default:
			x = &FieldAccess{X: x, Name: name, At: at}
		}
	}
	return x
}

func (d *decoder) exprKind(kind string, body *yaml.Node, at Pos) Expr {
	for _, op := range binaryOps {
		if op != kind {
			continue
		}
		operands := list(body)
		if len(operands) != 2 {
			d.errorf(body, "operator %q needs two operands", op)
			return nil
		}
		return &Binary{Op: op, L: d.expr(operands[0], at), R: d.expr(operands[1], at), At: at}
	}

	switch kind {
	case "null":
		return &Null{At: at}
	case "name":
		return &Name{Ident: d.str(body), At: at}
	case "this":
		return &This{Qualifier: d.str(body), At: at}
	case "super":
		return &Super{At: at}
	case "field":
		f := d.fields(body, "field access", "of", "name", "at")
		return &FieldAccess{X: d.expr(f["of"], at), Name: d.str(f["name"]), At: at}
	case "call":
		f := d.fields(body, "call", "recv", "name", "args", "at")
		c := &Call{Name: d.str(f["name"]), Args: d.exprs(f["args"], at), At: at}
		if r := f["recv"]; r != nil {
			c.X = d.expr(r, at)
		}
		return c
	case "ctor":
		f := d.fields(body, "constructor call", "super", "args", "at")
		return &CtorCall{Super: d.boolean(f["super"]), Args: d.exprs(f["args"], at), At: at}
	case "new":
		if body != nil && body.Kind == yaml.ScalarNode {
			return &New{Type: d.typ(body, at), At: at}
		}
		f := d.fields(body, "new", "type", "args", "body", "at")
		e := &New{Type: d.typ(f["type"], at), Args: d.exprs(f["args"], at), At: at}
		if b := f["body"]; b != nil {
			e.Body = d.typeDecl(b, at, false)
		}
		return e
	case "assign":
		if body != nil && body.Kind == yaml.SequenceNode {
			items := list(body)
			if len(items) != 2 {
				d.errorf(body, "assign needs a target and a value")
				return nil
			}
			return &Assign{Target: d.expr(items[0], at), Op: "=", Value: d.expr(items[1], at), At: at}
		}
		f := d.fields(body, "assign", "to", "op", "value", "at")
		e := &Assign{Target: d.expr(f["to"], at), Op: d.str(f["op"]), Value: d.expr(f["value"], at), At: at}
		if e.Op == "" {
			e.Op = "="
		}
		return e
	case "binary":
		f := d.fields(body, "binary", "op", "l", "r", "at")
		return &Binary{Op: d.str(f["op"]), L: d.expr(f["l"], at), R: d.expr(f["r"], at), At: at}
	case "not":
		return &Unary{Op: "!", X: d.expr(body, at), At: at}
	case "unary":
		f := d.fields(body, "unary", "op", "x", "at")
		return &Unary{Op: d.str(f["op"]), X: d.expr(f["x"], at), At: at}
	case "cond":
		f := d.fields(body, "conditional", "if", "then", "else", "at")
		return &Cond{Cond: d.expr(f["if"], at), Then: d.expr(f["then"], at), Else: d.expr(f["else"], at), At: at}
	case "cast":
		f := d.fields(body, "cast", "type", "x", "at")
		return &Cast{Type: d.typ(f["type"], at), X: d.expr(f["x"], at), At: at}
	case "instanceof":
		f := d.fields(body, "instanceof", "x", "type", "bind", "at")
		return &InstanceOf{X: d.expr(f["x"], at), Type: d.typ(f["type"], at), Bind: d.str(f["bind"]), At: at}
	case "index":
		f := d.fields(body, "index", "x", "i", "at")
		return &Index{X: d.expr(f["x"], at), Index: d.expr(f["i"], at), At: at}
	case "newarray":
		f := d.fields(body, "new array", "type", "dims", "init", "at")
		t := d.typ(f["type"], at)
		if t != nil && !t.IsArray() {
			t = &Type{Elem: t, At: t.At}
		}
		return &NewArray{Type: t, Dims: d.exprs(f["dims"], at), Init: d.exprs(f["init"], at), At: at}
	case "lit":
		if body == nil || body.Kind != yaml.ScalarNode {
			d.errorf(body, "literal must be a scalar")
			return nil
		}
		if body.Tag == "!!str" {
			return &Lit{Kind: LitString, Value: strings.Trim(body.Value, `'"`), At: at}
		}
		return d.scalarExpr(body, at)
	case "paren":
		return &Paren{X: d.expr(body, at), At: at}
	case "lambda":
		f := d.fields(body, "lambda", "params", "body", "expr", "at")
		l := &Lambda{At: at}
		for _, p := range list(f["params"]) {
			l.Params = append(l.Params, d.param(p, at))
		}
		if e := f["expr"]; e != nil {
			l.Body = &Block{Stmts: []Stmt{&Return{Value: d.expr(e, at), At: at}}, At: at}
		} else {
			l.Body = d.block(f["body"], at)
		}
		return l
	}

	d.errorf(body, "unrecognized expression kind %q", kind)
	return nil
}
