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

import "fmt"

// Inspect traverses the tree rooted at n in depth-first source order, calling f for each node.
// If f returns false, the children of the node are skipped. Types and annotations are not
// visited. Nested type declarations (member, local and anonymous) are visited.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	switch n := n.(type) {
	case *TypeDecl:
		for _, c := range n.Components {
			Inspect(c, f)
		}
		for _, c := range n.Constants {
			Inspect(c, f)
		}
		for _, fd := range n.Fields {
			Inspect(fd, f)
		}
		for _, i := range n.Initializers {
			Inspect(i, f)
		}
		for _, m := range n.Methods {
			Inspect(m, f)
		}
		for _, t := range n.Types {
			Inspect(t, f)
		}
	case *FieldDecl:
		inspectExpr(n.Init, f)
	case *MethodDecl:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *Initializer:
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *EnumConstant:
		inspectExprs(n.Args, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *Param, *Catch, *Case:
		inspectClause(n, f)

	// Statements.
	case *Block:
		inspectStmts(n.Stmts, f)
	case *LocalVar:
		inspectExpr(n.Init, f)
	case *ExprStmt:
		inspectExpr(n.X, f)
	case *If:
		inspectExpr(n.Cond, f)
		inspectStmt(n.Then, f)
		inspectStmt(n.Else, f)
	case *While:
		inspectExpr(n.Cond, f)
		inspectStmt(n.Body, f)
	case *DoWhile:
		inspectStmt(n.Body, f)
		inspectExpr(n.Cond, f)
	case *For:
		inspectStmts(n.Init, f)
		inspectExpr(n.Cond, f)
		inspectExprs(n.Update, f)
		inspectStmt(n.Body, f)
	case *ForEach:
		Inspect(n.Var, f)
		inspectExpr(n.Iterable, f)
		inspectStmt(n.Body, f)
	case *Return:
		inspectExpr(n.Value, f)
	case *Throw:
		inspectExpr(n.Value, f)
	case *Try:
		for _, r := range n.Resources {
			Inspect(r, f)
		}
		Inspect(n.Body, f)
		for _, c := range n.Catches {
			Inspect(c, f)
		}
		if n.Finally != nil {
			Inspect(n.Finally, f)
		}
	case *Switch:
		inspectExpr(n.Selector, f)
		for _, c := range n.Cases {
			Inspect(c, f)
		}
	case *Break, *Continue:
	case *Labeled:
		inspectStmt(n.Body, f)
	case *LocalClass:
		Inspect(n.Decl, f)
	case *Sync:
		inspectExpr(n.Lock, f)
		Inspect(n.Body, f)
	case *Assert:
		inspectExpr(n.Cond, f)
		inspectExpr(n.Message, f)

	// Expressions.
	case *Null, *Lit, *Name, *This, *Super:
	case *FieldAccess:
		inspectExpr(n.X, f)
	case *Call:
		inspectExpr(n.X, f)
		inspectExprs(n.Args, f)
	case *CtorCall:
		inspectExprs(n.Args, f)
	case *New:
		inspectExprs(n.Args, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *Assign:
		inspectExpr(n.Target, f)
		inspectExpr(n.Value, f)
	case *Binary:
		inspectExpr(n.L, f)
		inspectExpr(n.R, f)
	case *Unary:
		inspectExpr(n.X, f)
	case *Cond:
		inspectExpr(n.Cond, f)
		inspectExpr(n.Then, f)
		inspectExpr(n.Else, f)
	case *Cast:
		inspectExpr(n.X, f)
	case *InstanceOf:
		inspectExpr(n.X, f)
	case *Index:
		inspectExpr(n.X, f)
		inspectExpr(n.Index, f)
	case *NewArray:
		inspectExprs(n.Dims, f)
		inspectExprs(n.Init, f)
	case *Paren:
		inspectExpr(n.X, f)
	case *Lambda:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		Inspect(n.Body, f)
	default:
		panic(fmt.Sprintf("ast.Inspect: unrecognized AST node %T", n))
	}
}

func inspectClause(n Node, f func(Node) bool) {
	switch n := n.(type) {
	case *Catch:
		Inspect(n.Param, f)
		Inspect(n.Body, f)
	case *Case:
		inspectExprs(n.Labels, f)
		inspectStmts(n.Body, f)
	}
}

// The helpers below skip nil interface values so that optional children can be passed directly.

func inspectStmt(s Stmt, f func(Node) bool) {
	if s != nil {
		Inspect(s, f)
	}
}

func inspectStmts(list []Stmt, f func(Node) bool) {
	for _, s := range list {
		inspectStmt(s, f)
	}
}

func inspectExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func inspectExprs(list []Expr, f func(Node) bool) {
	for _, e := range list {
		inspectExpr(e, f)
	}
}
