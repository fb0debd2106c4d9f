package models

// Inspect traverses statements and expressions depth-first. f is called for
// every node; returning false skips the node's children. Declarations nested
// in expressions (anonymous class bodies) are not entered.
func Inspect(n Node, f func(Node) bool) {
	if n == nil {
		return
	}
	if b, ok := n.(*Block); ok && b == nil {
		return
	}
	if !f(n) {
		return
	}
	switch x := n.(type) {
	case *Block:
		for _, s := range x.Stmts {
			Inspect(s, f)
		}
	case *ExprStmt:
		inspectExpr(x.X, f)
	case *VarDecl:
		inspectExpr(x.Init, f)
	case *If:
		inspectExpr(x.Cond, f)
		inspectStmt(x.Then, f)
		inspectStmt(x.Else, f)
	case *While:
		inspectExpr(x.Cond, f)
		inspectStmt(x.Body, f)
	case *For:
		for _, s := range x.Init {
			inspectStmt(s, f)
		}
		inspectExpr(x.Cond, f)
		for _, u := range x.Update {
			inspectExpr(u, f)
		}
		inspectStmt(x.Body, f)
	case *ForIn:
		inspectExpr(x.Iter, f)
		inspectStmt(x.Body, f)
	case *Return:
		inspectExpr(x.X, f)
	case *Throw:
		inspectExpr(x.X, f)
	case *Assert:
		inspectExpr(x.Cond, f)
		inspectExpr(x.Message, f)
	case *Try:
		Inspect(x.Body, f)
		for _, c := range x.Catches {
			Inspect(c.Body, f)
		}
		if x.Finally != nil {
			Inspect(x.Finally, f)
		}
	case *Sync:
		inspectExpr(x.Lock, f)
		Inspect(x.Body, f)
	case *CtorCall:
		inspectExprs(x.Args, f)
		inspectEntries(x.Named, f)
	case *GString:
		inspectExprs(x.Values, f)
	case *FieldAccess:
		inspectExpr(x.X, f)
	case *MethodPointer:
		inspectExpr(x.X, f)
	case *Call:
		inspectExpr(x.X, f)
		inspectEntries(x.Named, f)
		inspectExprs(x.Args, f)
	case *New:
		inspectEntries(x.Named, f)
		inspectExprs(x.Args, f)
		inspectExprs(x.Dims, f)
		if x.Init != nil {
			Inspect(x.Init, f)
		}
	case *Binary:
		inspectExpr(x.X, f)
		inspectExpr(x.Y, f)
	case *Unary:
		inspectExpr(x.X, f)
	case *Assign:
		inspectExpr(x.Target, f)
		inspectExpr(x.Value, f)
	case *Ternary:
		inspectExpr(x.Cond, f)
		inspectExpr(x.Then, f)
		inspectExpr(x.Else, f)
	case *Cast:
		inspectExpr(x.X, f)
	case *InstanceOf:
		inspectExpr(x.X, f)
	case *Index:
		inspectExpr(x.X, f)
		inspectExpr(x.Index, f)
	case *ListLit:
		inspectExprs(x.Elems, f)
	case *MapLit:
		inspectEntries(x.Entries, f)
	case *Closure:
		for _, p := range x.Params {
			inspectExpr(p.Default, f)
		}
		if x.Body != nil {
			Inspect(x.Body, f)
		}
	}
}

func inspectStmt(s Stmt, f func(Node) bool) {
	if s != nil {
		Inspect(s, f)
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

func inspectEntries(list []*MapEntry, f func(Node) bool) {
	for _, e := range list {
		inspectExpr(e.Key, f)
		inspectExpr(e.Value, f)
	}
}

// RewriteBlock replaces expressions inside b bottom-up: children are
// rewritten before f sees their parent.
func RewriteBlock(b *Block, f func(Expr) Expr) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		rewriteStmt(s, f)
	}
}

func rewriteStmt(s Stmt, f func(Expr) Expr) {
	switch x := s.(type) {
	case *Block:
		RewriteBlock(x, f)
	case *ExprStmt:
		x.X = RewriteExpr(x.X, f)
	case *VarDecl:
		x.Init = RewriteExpr(x.Init, f)
	case *If:
		x.Cond = RewriteExpr(x.Cond, f)
		rewriteStmt(x.Then, f)
		rewriteStmt(x.Else, f)
	case *While:
		x.Cond = RewriteExpr(x.Cond, f)
		rewriteStmt(x.Body, f)
	case *For:
		for _, i := range x.Init {
			rewriteStmt(i, f)
		}
		x.Cond = RewriteExpr(x.Cond, f)
		rewriteExprs(x.Update, f)
		rewriteStmt(x.Body, f)
	case *ForIn:
		x.Iter = RewriteExpr(x.Iter, f)
		rewriteStmt(x.Body, f)
	case *Return:
		x.X = RewriteExpr(x.X, f)
	case *Throw:
		x.X = RewriteExpr(x.X, f)
	case *Assert:
		x.Cond = RewriteExpr(x.Cond, f)
		x.Message = RewriteExpr(x.Message, f)
	case *Try:
		RewriteBlock(x.Body, f)
		for _, c := range x.Catches {
			RewriteBlock(c.Body, f)
		}
		RewriteBlock(x.Finally, f)
	case *Sync:
		x.Lock = RewriteExpr(x.Lock, f)
		RewriteBlock(x.Body, f)
	case *CtorCall:
		rewriteExprs(x.Args, f)
		rewriteEntries(x.Named, f)
	}
}

// RewriteExpr rewrites e bottom-up and returns its replacement
func RewriteExpr(e Expr, f func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	switch x := e.(type) {
	case *GString:
		rewriteExprs(x.Values, f)
	case *FieldAccess:
		x.X = RewriteExpr(x.X, f)
	case *MethodPointer:
		x.X = RewriteExpr(x.X, f)
	case *Call:
		x.X = RewriteExpr(x.X, f)
		rewriteExprs(x.Args, f)
		rewriteEntries(x.Named, f)
	case *New:
		rewriteExprs(x.Args, f)
		rewriteEntries(x.Named, f)
		rewriteExprs(x.Dims, f)
		if x.Init != nil {
			rewriteExprs(x.Init.Elems, f)
		}
	case *Binary:
		x.X = RewriteExpr(x.X, f)
		x.Y = RewriteExpr(x.Y, f)
	case *Unary:
		x.X = RewriteExpr(x.X, f)
	case *Assign:
		x.Target = RewriteExpr(x.Target, f)
		x.Value = RewriteExpr(x.Value, f)
	case *Ternary:
		x.Cond = RewriteExpr(x.Cond, f)
		x.Then = RewriteExpr(x.Then, f)
		x.Else = RewriteExpr(x.Else, f)
	case *Cast:
		x.X = RewriteExpr(x.X, f)
	case *InstanceOf:
		x.X = RewriteExpr(x.X, f)
	case *Index:
		x.X = RewriteExpr(x.X, f)
		x.Index = RewriteExpr(x.Index, f)
	case *ListLit:
		rewriteExprs(x.Elems, f)
	case *MapLit:
		rewriteEntries(x.Entries, f)
	case *Closure:
		RewriteBlock(x.Body, f)
	}
	return f(e)
}

func rewriteExprs(list []Expr, f func(Expr) Expr) {
	for i, e := range list {
		list[i] = RewriteExpr(e, f)
	}
}

func rewriteEntries(list []*MapEntry, f func(Expr) Expr) {
	for _, e := range list {
		e.Key = RewriteExpr(e.Key, f)
		e.Value = RewriteExpr(e.Value, f)
	}
}
