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

// Expr is an expression. The set of implementations is closed: only types in this package
// implement it.
type Expr interface {
	Node
	exprNode()
}

// LitKind distinguishes literal kinds.
type LitKind string

// Literal kinds.
const (
	LitString LitKind = "string"
	LitNumber LitKind = "number"
	LitBool   LitKind = "bool"
	LitChar   LitKind = "char"
)

type (
	// Null is the null literal.
	Null struct {
		At Pos
	}

	// Lit is a non-null literal.
	Lit struct {
		Kind  LitKind
		Value string
		At    Pos
	}

	// Name is a simple name: a local variable, a parameter, a field of an enclosing type, or a
	// type name used as the qualifier of a static access.
	Name struct {
		Ident string
		At    Pos
	}

	// This is `this` or `Outer.this`.
	This struct {
		Qualifier string
		At        Pos
	}

	// Super is the `super` qualifier of a method call or field access.
	Super struct {
		At Pos
	}

	// FieldAccess is `X.Name`.
	FieldAccess struct {
		X    Expr
		Name string
		At   Pos
	}

	// Call invokes a method. X is the receiver, nil for an unqualified call.
	Call struct {
		X    Expr
		Name string
		Args []Expr
		At   Pos
	}

	// CtorCall is an explicit `this(...)` or `super(...)` constructor invocation.
	CtorCall struct {
		Super bool
		Args  []Expr
		At    Pos
	}

	// New instantiates a class; Body is the anonymous class body, if any.
	New struct {
		Type *Type
		Args []Expr
		Body *TypeDecl
		At   Pos
	}

	// Assign is a simple (`=`) or compound (`+=`, ...) assignment.
	Assign struct {
		Target Expr
		Op     string
		Value  Expr
		At     Pos
	}

	// Binary is a binary operation such as `==`, `&&` or `+`.
	Binary struct {
		Op string
		L  Expr
		R  Expr
		At Pos
	}

	// Unary is a prefix or postfix operation such as `!`, `-` or `++`.
	Unary struct {
		Op string
		X  Expr
		At Pos
	}

	// Cond is the conditional operator `Cond ? Then : Else`.
	Cond struct {
		Cond Expr
		Then Expr
		Else Expr
		At   Pos
	}

	// Cast converts X to Type.
	Cast struct {
		Type *Type
		X    Expr
		At   Pos
	}

	// InstanceOf tests the dynamic type of X; Bind names the pattern variable, if any.
	InstanceOf struct {
		X    Expr
		Type *Type
		Bind string
		At   Pos
	}

	// Index is an array access `X[Index]`.
	Index struct {
		X     Expr
		Index Expr
		At    Pos
	}

	// NewArray creates an array of Type (the array type itself) with either dimension
	// expressions or an initializer list.
	NewArray struct {
		Type *Type
		Dims []Expr
		Init []Expr
		At   Pos
	}

	// Paren is a parenthesized expression.
	Paren struct {
		X  Expr
		At Pos
	}

	// Lambda is a lambda expression. Expression bodies are represented as a block returning the
	// expression.
	Lambda struct {
		Params []*Param
		Body   *Block
		At     Pos
	}
)

func (e *Null) Pos() Pos        { return e.At }
func (e *Lit) Pos() Pos         { return e.At }
func (e *Name) Pos() Pos        { return e.At }
func (e *This) Pos() Pos        { return e.At }
func (e *Super) Pos() Pos       { return e.At }
func (e *FieldAccess) Pos() Pos { return e.At }
func (e *Call) Pos() Pos        { return e.At }
func (e *CtorCall) Pos() Pos    { return e.At }
func (e *New) Pos() Pos         { return e.At }
func (e *Assign) Pos() Pos      { return e.At }
func (e *Binary) Pos() Pos      { return e.At }
func (e *Unary) Pos() Pos       { return e.At }
func (e *Cond) Pos() Pos        { return e.At }
func (e *Cast) Pos() Pos        { return e.At }
func (e *InstanceOf) Pos() Pos  { return e.At }
func (e *Index) Pos() Pos       { return e.At }
func (e *NewArray) Pos() Pos    { return e.At }
func (e *Paren) Pos() Pos       { return e.At }
func (e *Lambda) Pos() Pos      { return e.At }

func (*Null) exprNode()        {}
func (*Lit) exprNode()         {}
func (*Name) exprNode()        {}
func (*This) exprNode()        {}
func (*Super) exprNode()       {}
func (*FieldAccess) exprNode() {}
func (*Call) exprNode()        {}
func (*CtorCall) exprNode()    {}
func (*New) exprNode()         {}
func (*Assign) exprNode()      {}
func (*Binary) exprNode()      {}
func (*Unary) exprNode()       {}
func (*Cond) exprNode()        {}
func (*Cast) exprNode()        {}
func (*InstanceOf) exprNode()  {}
func (*Index) exprNode()       {}
func (*NewArray) exprNode()    {}
func (*Paren) exprNode()       {}
func (*Lambda) exprNode()      {}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}
		e = p.X
	}
}
