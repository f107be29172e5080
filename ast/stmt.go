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

// Stmt is a statement. The set of implementations is closed: only types in this package implement
// it.
type Stmt interface {
	Node
	stmtNode()
}

type (
	// Block is a braced statement list.
	Block struct {
		Stmts []Stmt
		At    Pos
	}

	// LocalVar declares a local variable, a foreach variable or a try resource.
	LocalVar struct {
		Name        string
		Type        *Type
		Modifiers   Modifiers
		Annotations []*Annotation
		Init        Expr
		At          Pos
	}

	// ExprStmt evaluates an expression for its side effects.
	ExprStmt struct {
		X  Expr
		At Pos
	}

	// If is an if statement; Else may be nil.
	If struct {
		Cond Expr
		Then Stmt
		Else Stmt
		At   Pos
	}

	// While is a while loop.
	While struct {
		Cond Expr
		Body Stmt
		At   Pos
	}

	// DoWhile is a do-while loop.
	DoWhile struct {
		Body Stmt
		Cond Expr
		At   Pos
	}

	// For is a classic for loop; Cond may be nil (infinite loop).
	For struct {
		Init   []Stmt
		Cond   Expr
		Update []Expr
		Body   Stmt
		At     Pos
	}

	// ForEach is an enhanced for loop over an array or an Iterable.
	ForEach struct {
		Var      *LocalVar
		Iterable Expr
		Body     Stmt
		At       Pos
	}

	// Return returns from the enclosing method; Value is nil for `return;`.
	Return struct {
		Value Expr
		At    Pos
	}

	// Throw throws an exception.
	Throw struct {
		Value Expr
		At    Pos
	}

	// Try is a try statement with optional resources, catch clauses and finally block.
	Try struct {
		Resources []*LocalVar
		Body      *Block
		Catches   []*Catch
		Finally   *Block
		At        Pos
	}

	// Switch is a switch statement. Case bodies fall through unless they complete abruptly.
	Switch struct {
		Selector Expr
		Cases    []*Case
		At       Pos
	}

	// Break leaves the innermost loop or switch, or the labeled statement named by Label.
	Break struct {
		Label string
		At    Pos
	}

	// Continue restarts the innermost loop, or the loop labeled Label.
	Continue struct {
		Label string
		At    Pos
	}

	// Labeled attaches a label to a statement.
	Labeled struct {
		Label string
		Body  Stmt
		At    Pos
	}

	// LocalClass declares a class inside a block.
	LocalClass struct {
		Decl *TypeDecl
		At   Pos
	}

	// Sync is a synchronized block.
	Sync struct {
		Lock Expr
		Body *Block
		At   Pos
	}

	// Assert is an assert statement; Message may be nil.
	Assert struct {
		Cond    Expr
		Message Expr
		At      Pos
	}
)

// Catch is a catch clause of a try statement.
type Catch struct {
	Param *Param
	Body  *Block
	At    Pos
}

// Pos returns the position of the catch clause.
func (c *Catch) Pos() Pos { return c.At }

// Case is one switch case. A case with no labels is the default case.
type Case struct {
	Labels []Expr
	Body   []Stmt
	At     Pos
}

// Pos returns the position of the case.
func (c *Case) Pos() Pos { return c.At }

// IsDefault returns true for the default case.
func (c *Case) IsDefault() bool { return len(c.Labels) == 0 }

func (s *Block) Pos() Pos      { return s.At }
func (s *LocalVar) Pos() Pos   { return s.At }
func (s *ExprStmt) Pos() Pos   { return s.At }
func (s *If) Pos() Pos         { return s.At }
func (s *While) Pos() Pos      { return s.At }
func (s *DoWhile) Pos() Pos    { return s.At }
func (s *For) Pos() Pos        { return s.At }
func (s *ForEach) Pos() Pos    { return s.At }
func (s *Return) Pos() Pos     { return s.At }
func (s *Throw) Pos() Pos      { return s.At }
func (s *Try) Pos() Pos        { return s.At }
func (s *Switch) Pos() Pos     { return s.At }
func (s *Break) Pos() Pos      { return s.At }
func (s *Continue) Pos() Pos   { return s.At }
func (s *Labeled) Pos() Pos    { return s.At }
func (s *LocalClass) Pos() Pos { return s.At }
func (s *Sync) Pos() Pos       { return s.At }
func (s *Assert) Pos() Pos     { return s.At }

func (*Block) stmtNode()      {}
func (*LocalVar) stmtNode()   {}
func (*ExprStmt) stmtNode()   {}
func (*If) stmtNode()         {}
func (*While) stmtNode()      {}
func (*DoWhile) stmtNode()    {}
func (*For) stmtNode()        {}
func (*ForEach) stmtNode()    {}
func (*Return) stmtNode()     {}
func (*Throw) stmtNode()      {}
func (*Try) stmtNode()        {}
func (*Switch) stmtNode()     {}
func (*Break) stmtNode()      {}
func (*Continue) stmtNode()   {}
func (*Labeled) stmtNode()    {}
func (*LocalClass) stmtNode() {}
func (*Sync) stmtNode()       {}
func (*Assert) stmtNode()     {}
