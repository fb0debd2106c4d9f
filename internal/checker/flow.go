package checker

import (
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// slot is a local variable or parameter of a checked body
type slot struct {
	name string
	// declared is the spelled type; nil for def
	declared *types.Type
	// unknown marks a spelled type that did not resolve
	unknown bool
}

type scope struct {
	parent *scope
	slots  map[string]*slot
}

func (s *scope) lookup(name string) *slot {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.slots[name]; ok {
			return v
		}
	}
	return nil
}

// flow maps slots to the type they hold at the current point. A nil entry
// means the type could not be determined.
type flow map[*slot]*types.Type

func (f flow) clone() flow {
	out := make(flow, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// closureFrame collects the values a closure body returns
type closureFrame struct {
	results []*types.Type
}

// walker checks one member body
type walker struct {
	c      *Checker
	owner  *models.Declaration
	member *models.Declaration
	static bool
	// returns is the declared return type; nil when unchecked
	returns *types.Type

	scope    *scope
	flow     flow
	assigned map[*slot]bool
	closure  *closureFrame
	// categories are the classes of the enclosing use(...) blocks
	categories []*models.Declaration
}

func newWalker(c *Checker, owner, member *models.Declaration) *walker {
	return &walker{
		c:        c,
		owner:    owner,
		member:   member,
		static:   member.IsStatic(),
		scope:    &scope{slots: make(map[string]*slot)},
		flow:     make(flow),
		assigned: make(map[*slot]bool),
	}
}

func (w *walker) report(code errors.ErrorCode, span models.Span, format string, args ...interface{}) {
	w.c.diags.Report(code, span, messagePrefix+format, args...)
}

func (w *walker) push() {
	w.scope = &scope{parent: w.scope, slots: make(map[string]*slot)}
}

func (w *walker) pop() {
	w.scope = w.scope.parent
}

func (w *walker) declare(name string, declared *types.Type) *slot {
	s := &slot{name: name, declared: declared}
	w.scope.slots[name] = s
	return s
}

// current returns the type a slot holds at this point
func (w *walker) current(s *slot) *types.Type {
	if s.unknown {
		return nil
	}
	if t, ok := w.flow[s]; ok {
		return t
	}
	return fallback(s)
}

func fallback(s *slot) *types.Type {
	if s.declared != nil {
		return s.declared
	}
	return types.Object
}

// assignSlot records a value stored in a local. Declared locals keep the
// more precise value type when it is compatible; def locals take it as is.
func (w *walker) assignSlot(s *slot, value *types.Type, x models.Expr, span models.Span) {
	w.assigned[s] = true
	if s.unknown {
		return
	}
	if s.declared == nil {
		switch {
		case value == nil:
			w.flow[s] = nil
		case value.Kind == types.KindNull, value.IsVoid():
			w.flow[s] = types.Object
		default:
			w.flow[s] = value
		}
		return
	}
	w.flow[s] = s.declared
	if !w.checkAssign(s.declared, value, x, span, assignMismatch) {
		return
	}
	if value == nil || value.Kind == types.KindNull || s.declared.IsPrimitive() {
		return
	}
	if boxed := types.Box(value); types.Assignable(w.c.table, s.declared, boxed) {
		w.flow[s] = boxed
	}
}

func (w *walker) common(a, b *types.Type) *types.Type {
	return types.CommonSupertype(w.c.table, a, b)
}

// join merges the flows at the end of two paths
func (w *walker) join(a, b flow) flow {
	out := make(flow, len(a))
	for s, ta := range a {
		tb, ok := b[s]
		if !ok {
			tb = fallback(s)
		}
		out[s] = w.common(ta, tb)
	}
	for s, tb := range b {
		if _, ok := out[s]; !ok {
			out[s] = w.common(fallback(s), tb)
		}
	}
	return out
}

// branch walks one path starting from start with the given narrowings. A
// narrowing is undone at the end unless the path assigned the slot or keep
// is set.
func (w *walker) branch(start flow, narrow flow, keep bool, fn func()) flow {
	w.flow = start.clone()
	saved := w.assigned
	w.assigned = make(map[*slot]bool)
	for s, t := range narrow {
		w.flow[s] = t
	}
	fn()
	if !keep {
		for s := range narrow {
			if w.assigned[s] {
				continue
			}
			if t, ok := start[s]; ok {
				w.flow[s] = t
			} else {
				delete(w.flow, s)
			}
		}
	}
	for s := range w.assigned {
		saved[s] = true
	}
	w.assigned = saved
	return w.flow
}

// loop walks a loop body once; slots assigned inside widen to their
// declared type, or to the common type of entry and exit for def locals
func (w *walker) loop(fn func()) {
	start := w.flow.clone()
	saved := w.assigned
	w.assigned = make(map[*slot]bool)
	fn()
	for s := range w.assigned {
		if s.declared != nil {
			w.flow[s] = s.declared
		} else {
			before, ok := start[s]
			if !ok {
				before = fallback(s)
			}
			w.flow[s] = w.common(before, w.flow[s])
		}
		saved[s] = true
	}
	w.assigned = saved
}

// narrowing returns the slot types implied by cond being true and false
func (w *walker) narrowing(cond models.Expr) (pos, neg flow) {
	switch x := cond.(type) {
	case *models.InstanceOf:
		s := w.localOf(x.X)
		if s == nil || x.Type == nil || x.Type.Resolved == nil {
			return nil, nil
		}
		f := flow{s: x.Type.Resolved}
		if x.Negated {
			return nil, f
		}
		return f, nil
	case *models.Unary:
		if x.Op == "!" {
			p, n := w.narrowing(x.X)
			return n, p
		}
	case *models.Binary:
		switch x.Op {
		case "&&":
			px, _ := w.narrowing(x.X)
			py, _ := w.narrowing(x.Y)
			return merge(px, py), nil
		case "||":
			_, nx := w.narrowing(x.X)
			_, ny := w.narrowing(x.Y)
			return nil, merge(nx, ny)
		}
	}
	return nil, nil
}

func merge(a, b flow) flow {
	if len(a) == 0 {
		return b
	}
	out := a.clone()
	for k, v := range b {
		out[k] = v
	}
	return out
}

// localOf returns the slot a bare local name refers to
func (w *walker) localOf(e models.Expr) *slot {
	id, ok := e.(*models.Ident)
	if !ok || id.Binding == nil || id.Binding.Kind != models.BindLocal {
		return nil
	}
	return w.scope.lookup(id.Name)
}

// withNarrowing evaluates fn with narrowed slots, restoring the unassigned
// ones afterwards
func (w *walker) withNarrowing(narrow flow, fn func()) {
	if len(narrow) == 0 {
		fn()
		return
	}
	w.flow = w.branch(w.flow, narrow, false, fn)
}

func (w *walker) block(b *models.Block) {
	if b == nil {
		return
	}
	w.push()
	w.stmts(b.Stmts)
	w.pop()
}

func (w *walker) stmts(list []models.Stmt) {
	for _, s := range list {
		w.stmt(s)
	}
}

// scoped walks a statement in its own scope
func (w *walker) scoped(s models.Stmt) {
	if s == nil {
		return
	}
	w.push()
	w.stmt(s)
	w.pop()
}

func (w *walker) stmt(s models.Stmt) {
	switch x := s.(type) {
	case nil:
	case *models.Block:
		w.block(x)
	case *models.ExprStmt:
		w.expr(x.X)
	case *models.VarDecl:
		w.varDecl(x)
	case *models.If:
		w.ifStmt(x)
	case *models.While:
		w.expr(x.Cond)
		pos, _ := w.narrowing(x.Cond)
		w.loop(func() {
			w.withNarrowing(pos, func() { w.scoped(x.Body) })
		})
	case *models.For:
		w.push()
		w.stmts(x.Init)
		w.expr(x.Cond)
		w.loop(func() {
			w.scoped(x.Body)
			w.exprs(x.Update)
		})
		w.pop()
	case *models.ForIn:
		w.forIn(x)
	case *models.Return:
		w.returnStmt(x)
	case *models.Throw:
		w.expr(x.X)
	case *models.Assert:
		w.expr(x.Cond)
		w.expr(x.Message)
	case *models.Try:
		w.block(x.Body)
		for _, cc := range x.Catches {
			w.push()
			var t *types.Type
			for _, ref := range cc.Types {
				if ref.Resolved == nil {
					continue
				}
				if t == nil {
					t = ref.Resolved
				} else {
					t = w.common(t, ref.Resolved)
				}
			}
			if t == nil {
				t = types.Class("java.lang.Exception")
			}
			w.declare(cc.Name, t)
			w.block(cc.Body)
			w.pop()
		}
		w.block(x.Finally)
	case *models.Sync:
		w.expr(x.Lock)
		w.block(x.Body)
	case *models.CtorCall:
		static := w.static
		w.static = true
		w.exprs(x.Args)
		for _, e := range x.Named {
			w.expr(e.Value)
		}
		w.static = static
	}
}

func (w *walker) varDecl(x *models.VarDecl) {
	declared, unknown := declaredType(x.Type)
	var value *types.Type
	if x.Init != nil {
		value = w.exprExpecting(x.Init, declared)
	}
	s := w.declare(x.Name, declared)
	s.unknown = unknown
	if x.Init != nil {
		w.assignSlot(s, value, x.Init, x.Span)
	}
}

func (w *walker) ifStmt(x *models.If) {
	w.expr(x.Cond)
	pos, neg := w.narrowing(x.Cond)
	start := w.flow
	thenExits, elseExits := exits(x.Then), exits(x.Else)
	a := w.branch(start, pos, elseExits, func() { w.scoped(x.Then) })
	b := w.branch(start, neg, thenExits, func() { w.scoped(x.Else) })
	switch {
	case thenExits && !elseExits:
		w.flow = b
	case elseExits && !thenExits:
		w.flow = a
	default:
		w.flow = w.join(a, b)
	}
}

// exits reports whether a statement always leaves the enclosing body
func exits(s models.Stmt) bool {
	switch x := s.(type) {
	case *models.Return, *models.Throw:
		return true
	case *models.Block:
		return len(x.Stmts) > 0 && exits(x.Stmts[len(x.Stmts)-1])
	case *models.If:
		return x.Else != nil && exits(x.Then) && exits(x.Else)
	}
	return false
}

func (w *walker) forIn(x *models.ForIn) {
	iter := w.expr(x.Iter)
	declared, unknown := declaredType(x.VarType)
	w.push()
	s := w.declare(x.Var, declared)
	s.unknown = unknown
	if declared == nil && iter != nil {
		w.flow[s] = w.c.elementType(iter)
	}
	w.loop(func() { w.scoped(x.Body) })
	w.pop()
}

func (w *walker) returnStmt(x *models.Return) {
	if w.closure != nil {
		t := w.expr(x.X)
		if x.X != nil {
			w.closure.results = append(w.closure.results, t)
		}
		return
	}
	t := w.exprExpecting(x.X, w.returns)
	if w.returns == nil || x.X == nil || t == nil {
		return
	}
	if w.returns.IsVoid() {
		if t.Kind != types.KindNull {
			w.report(errors.TypeMismatchCode, x.Span, returnMismatch, typeName(t), "void")
		}
		return
	}
	w.checkAssign(w.returns, t, x.X, x.Span, returnMismatch)
}
