package models

// Stmt is a statement node
type Stmt interface {
	Node
	stmtNode()
}

// Block is a braced statement list
type Block struct {
	Stmts []Stmt
	Span  Span
}

// ExprStmt evaluates an expression for its effect
type ExprStmt struct {
	X    Expr
	Span Span
}

// VarDecl declares a local variable; Type is nil for def
type VarDecl struct {
	Type        *TypeRef
	Name        string
	Init        Expr
	Final       bool
	Annotations []*Annotation
	Span        Span
	NameSpan    Span
}

// If is if/else
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
	Span Span
}

// While is a while loop
type While struct {
	Cond Expr
	Body Stmt
	Span Span
}

// For is the classic three-clause loop
type For struct {
	Init   []Stmt
	Cond   Expr
	Update []Expr
	Body   Stmt
	Span   Span
}

// ForIn is for (T x in iterable)
type ForIn struct {
	VarType *TypeRef
	Var     string
	VarSpan Span
	Iter    Expr
	Body    Stmt
	Span    Span
}

// Return exits a method; X is nil for a bare return
type Return struct {
	X    Expr
	Span Span
}

// Break exits a loop
type Break struct {
	Label string
	Span  Span
}

// Continue restarts a loop
type Continue struct {
	Label string
	Span  Span
}

// Throw raises an exception
type Throw struct {
	X    Expr
	Span Span
}

// Assert is assert cond : message
type Assert struct {
	Cond    Expr
	Message Expr
	Span    Span
}

// Catch is one catch clause
type Catch struct {
	Types []*TypeRef
	Name  string
	Body  *Block
	Span  Span
}

// Try is try/catch/finally
type Try struct {
	Body    *Block
	Catches []*Catch
	Finally *Block
	Span    Span
}

// Sync is synchronized (lock) { body }
type Sync struct {
	Lock Expr
	Body *Block
	Span Span
}

// CtorCall is an explicit this(...) or super(...) constructor invocation
type CtorCall struct {
	Super bool
	Args  []Expr
	Named []*MapEntry
	Span  Span
}

// OpaqueStmt is statement text kept uninterpreted
type OpaqueStmt struct {
	Text string
	Span Span
}

func (s *Block) NodeSpan() Span      { return s.Span }
func (s *ExprStmt) NodeSpan() Span   { return s.Span }
func (s *VarDecl) NodeSpan() Span    { return s.Span }
func (s *If) NodeSpan() Span         { return s.Span }
func (s *While) NodeSpan() Span      { return s.Span }
func (s *For) NodeSpan() Span        { return s.Span }
func (s *ForIn) NodeSpan() Span      { return s.Span }
func (s *Return) NodeSpan() Span     { return s.Span }
func (s *Break) NodeSpan() Span      { return s.Span }
func (s *Continue) NodeSpan() Span   { return s.Span }
func (s *Throw) NodeSpan() Span      { return s.Span }
func (s *Assert) NodeSpan() Span     { return s.Span }
func (s *Try) NodeSpan() Span        { return s.Span }
func (s *Sync) NodeSpan() Span       { return s.Span }
func (s *CtorCall) NodeSpan() Span   { return s.Span }
func (s *OpaqueStmt) NodeSpan() Span { return s.Span }

func (*Block) stmtNode()      {}
func (*ExprStmt) stmtNode()   {}
func (*VarDecl) stmtNode()    {}
func (*If) stmtNode()         {}
func (*While) stmtNode()      {}
func (*For) stmtNode()        {}
func (*ForIn) stmtNode()      {}
func (*Return) stmtNode()     {}
func (*Break) stmtNode()      {}
func (*Continue) stmtNode()   {}
func (*Throw) stmtNode()      {}
func (*Assert) stmtNode()     {}
func (*Try) stmtNode()        {}
func (*Sync) stmtNode()       {}
func (*CtorCall) stmtNode()   {}
func (*OpaqueStmt) stmtNode() {}
