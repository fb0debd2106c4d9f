package checker

import (
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

const (
	undeclaredVariable = "The variable [%s] is undeclared."
	noSuchProperty     = "No such property: %s for class: %s"
	noMatchingMethod   = "Cannot find matching method %s#%s(%s). Please check if the declared type is right and if the method exists."
	cannotCall         = "Cannot call %s#%s(%s) with arguments [%s] "
	staticMethod       = "Non-static method %s#%s(%s) cannot be called from static context"
	staticVariable     = "Non-static variable '%s' cannot be referenced from a static context"
)

// names a closure body may use for its owner and delegate
var closureNames = map[string]bool{"owner": true, "delegate": true, "thisObject": true}

// methods whose closure argument receives the elements of the receiver
var iterating = map[string]bool{
	"each": true, "eachWithIndex": true, "collect": true, "find": true, "findAll": true,
	"any": true, "every": true, "count": true, "sum": true, "max": true, "min": true,
	"sort": true, "unique": true, "groupBy": true, "collectEntries": true,
}

var operatorMethods = map[string]string{
	"+": "plus", "-": "minus", "*": "multiply", "/": "div", "%": "mod", "**": "power",
	"<<": "leftShift", ">>": "rightShift", ">>>": "rightShiftUnsigned",
	"&": "and", "|": "or", "^": "xor",
}

// paramHint gives the types of the n untyped parameters of a closure
type paramHint func(n int) []*types.Type

// exprExpecting types e where a value of type expected is wanted; diamond
// creations take their type arguments from it
func (w *walker) exprExpecting(e models.Expr, expected *types.Type) *types.Type {
	if n, ok := e.(*models.New); ok {
		return w.newExpr(n, expected)
	}
	return w.expr(e)
}

func (w *walker) exprs(list []models.Expr) {
	for _, e := range list {
		w.expr(e)
	}
}

// expr returns the static type of e, or nil when it cannot be determined
func (w *walker) expr(e models.Expr) *types.Type {
	switch x := e.(type) {
	case nil:
		return nil
	case *models.Literal:
		return x.Type()
	case *models.GString:
		w.exprs(x.Values)
		return types.GString
	case *models.Ident:
		return w.ident(x)
	case *models.FieldAccess:
		return w.fieldAccess(x)
	case *models.MethodPointer:
		w.expr(x.X)
		return types.Closure
	case *models.Call:
		return w.call(x)
	case *models.New:
		return w.newExpr(x, nil)
	case *models.Binary:
		return w.binary(x)
	case *models.Unary:
		return w.unary(x)
	case *models.Assign:
		return w.assign(x)
	case *models.Ternary:
		return w.ternary(x)
	case *models.Cast:
		w.expr(x.X)
		return x.Type.Resolved
	case *models.InstanceOf:
		w.expr(x.X)
		return types.Boolean
	case *models.Index:
		return w.index(x)
	case *models.ListLit:
		return w.list(x)
	case *models.MapLit:
		return w.mapLit(x)
	case *models.Closure:
		return w.closureExpr(x, nil)
	case *models.ClassLit:
		if x.Type.Resolved == nil {
			return types.Class(types.ClassName)
		}
		return types.Class(types.ClassName, types.Box(x.Type.Resolved))
	case *models.This:
		return w.owner.Descriptor()
	case *models.Super:
		return w.superType()
	}
	return nil
}

func (w *walker) superType() *types.Type {
	if w.owner.Super != nil && w.owner.Super.Resolved != nil {
		return w.owner.Super.Resolved
	}
	return types.Object
}

func (w *walker) ident(x *models.Ident) *types.Type {
	b := x.Binding
	if b == nil {
		return nil
	}
	switch b.Kind {
	case models.BindLocal:
		if s := w.scope.lookup(x.Name); s != nil {
			return w.current(s)
		}
		if b.Type != nil {
			return b.Type
		}
		return types.Object
	case models.BindField, models.BindProperty:
		if b.Decl == nil || b.Decl.Type == nil {
			return nil
		}
		return w.c.memberType(b.Decl.Type.Type(), b.Decl.Owner, w.owner.Descriptor())
	case models.BindEnumConstant:
		return b.Type
	case models.BindType:
		return types.Class(types.ClassName, b.Type)
	case models.BindDynamic:
		if b.Owner != nil {
			return nil
		}
		if w.closure != nil && closureNames[x.Name] {
			return types.Object
		}
		if t, ok := w.c.propertyType(w.owner.Descriptor(), x.Name, w.categories); ok {
			return t
		}
		w.report(errors.UnresolvedMemberCode, x.Span, undeclaredVariable, x.Name)
	}
	return nil
}

// classRef returns the class a receiver expression names
func classRef(e models.Expr) *models.Declaration {
	var b *models.Binding
	switch x := e.(type) {
	case *models.Ident:
		b = x.Binding
	case *models.FieldAccess:
		b = x.Binding
	}
	if b == nil || b.Kind != models.BindType {
		return nil
	}
	return b.Decl
}

func (w *walker) fieldAccess(x *models.FieldAccess) *types.Type {
	if b := x.Binding; b != nil {
		switch b.Kind {
		case models.BindPackage:
			return nil
		case models.BindType:
			return types.Class(types.ClassName, b.Type)
		case models.BindEnumConstant:
			return b.Type
		case models.BindField, models.BindProperty:
			if b.Decl != nil && b.Decl.Type != nil {
				return b.Decl.Type.Type()
			}
			return nil
		}
	}
	if d := classRef(x.X); d != nil {
		return w.staticProperty(x, d)
	}
	recv := w.expr(x.X)
	if recv == nil {
		return nil
	}
	if x.Spread {
		t := w.property(w.c.elementType(recv), x.Name, x)
		if t == nil {
			return nil
		}
		return types.Class(types.ListName, types.Box(t))
	}
	return w.property(recv, x.Name, x)
}

func (w *walker) property(recv *types.Type, name string, at models.Node) *types.Type {
	if t, ok := w.c.propertyType(recv, name, w.categories); ok {
		return t
	}
	w.report(errors.UnresolvedMemberCode, at.NodeSpan(), noSuchProperty, name, typeName(recv))
	return nil
}

// staticProperty types Class.name where name is not a static member
func (w *walker) staticProperty(x *models.FieldAccess, d *models.Declaration) *types.Type {
	if f := d.Field(x.Name); f != nil && !f.IsStatic() {
		w.report(errors.StaticContextViolationCode, x.Span, staticVariable, x.Name)
		return nil
	}
	suffix := capitalize(x.Name)
	for _, m := range w.c.methodsOf(d, "get"+suffix) {
		if m.IsStatic() && len(m.Params) == 0 {
			return m.ReturnType()
		}
	}
	w.expr(x.X)
	return w.property(types.Class(types.ClassName, d.RawDescriptor()), x.Name, x)
}

// args types the arguments of a call; named arguments form a leading map
func (w *walker) args(x *models.Call, hint paramHint) []*types.Type {
	var out []*types.Type
	if len(x.Named) > 0 {
		for _, e := range x.Named {
			w.expr(e.Value)
		}
		out = append(out, types.Class(types.HashMapName, types.String, types.Object))
	}
	for _, a := range x.Args {
		if cl, ok := a.(*models.Closure); ok {
			out = append(out, w.closureExpr(cl, hint))
			continue
		}
		out = append(out, w.expr(a))
	}
	return out
}

func known(list []*types.Type) bool {
	for _, t := range list {
		if t == nil {
			return false
		}
	}
	return true
}

func (w *walker) call(x *models.Call) *types.Type {
	if x.X == nil {
		return w.implicitCall(x)
	}
	if d := classRef(x.X); d != nil {
		return w.staticCall(x, d)
	}
	var recv *types.Type
	if _, ok := x.X.(*models.Super); ok {
		recv = w.superType()
	} else {
		recv = w.expr(x.X)
	}
	if recv == nil {
		w.args(x, nil)
		return nil
	}
	self := recv
	if x.Spread {
		self = w.c.elementType(recv)
	}
	args := w.args(x, w.c.closureHint(self, x.Name))
	if !known(args) {
		return nil
	}
	m, cands := w.c.lookup(self, x.Name, args, w.categories)
	if m == nil {
		w.reportCall(x.Span, self, x.Name, args, cands)
		return nil
	}
	x.Target = m.method
	if x.Spread && m.ret != nil {
		return types.Class(types.ListName, types.Box(m.ret))
	}
	return m.ret
}

// implicitCall types a call without receiver: a closure held by a local, a
// use block, or a method of the enclosing classes or of their extensions
func (w *walker) implicitCall(x *models.Call) *types.Type {
	if s := w.scope.lookup(x.Name); s != nil {
		w.args(x, nil)
		t := w.current(s)
		if cl := types.AsSuper(w.c.table, normalize(t), types.ClosureName); cl != nil && len(cl.Args) == 1 {
			return capture(cl.Args[0])
		}
		return types.Object
	}
	if x.Name == "use" && len(x.Args) >= 2 {
		if cl, ok := x.Args[len(x.Args)-1].(*models.Closure); ok {
			return w.use(x, cl)
		}
	}

	this := w.owner.Descriptor()
	args := w.args(x, w.c.closureHint(this, x.Name))
	if !known(args) {
		return nil
	}
	static := w.static
	var first []*models.Declaration
	for t := w.owner; t != nil; t = enclosingType(t) {
		cands := w.c.methodsOf(t, x.Name)
		if len(cands) == 0 {
			if t.IsStatic() || t.IsInterface() || t.Kind == models.KindEnum {
				static = true
			}
			continue
		}
		if first == nil {
			first = cands
		}
		m := w.c.pick(t.Descriptor(), cands, args, false)
		if m == nil {
			break
		}
		x.Target = m.method
		if static && !m.method.IsStatic() {
			w.report(errors.StaticContextViolationCode, x.Span, staticMethod,
				t.QualifiedName, x.Name, typeList(w.c.paramTypes(m.method, t.Descriptor())))
		}
		return m.ret
	}
	if m := w.c.extension(this, x.Name, args, w.categories); m != nil {
		x.Target = m.method
		return m.ret
	}
	w.reportCall(x.Span, this, x.Name, args, first)
	return nil
}

// enclosingType returns the type lexically enclosing d
func enclosingType(d *models.Declaration) *models.Declaration {
	for cur := d.Owner; cur != nil; cur = cur.Owner {
		if cur.IsType() {
			return cur
		}
	}
	return nil
}

// staticCall types Class.name(args)
func (w *walker) staticCall(x *models.Call, d *models.Declaration) *types.Type {
	args := w.args(x, nil)
	if !known(args) {
		return nil
	}
	cands := w.c.methodsOf(d, x.Name)
	var statics []*models.Declaration
	for _, m := range cands {
		if m.IsStatic() {
			statics = append(statics, m)
		}
	}
	raw := d.RawDescriptor()
	if m := w.c.pick(raw, statics, args, false); m != nil {
		x.Target = m.method
		return m.ret
	}
	if m := w.c.pick(raw, cands, args, false); m != nil {
		x.Target = m.method
		w.report(errors.StaticContextViolationCode, x.Span, staticMethod,
			d.QualifiedName, x.Name, typeList(w.c.paramTypes(m.method, raw)))
		return m.ret
	}
	if m, _ := w.c.lookup(types.Class(types.ClassName, raw), x.Name, args, w.categories); m != nil {
		x.Target = m.method
		return m.ret
	}
	w.reportCall(x.Span, raw, x.Name, args, cands)
	return nil
}

// reportCall reports a call no candidate accepts. A single candidate of the
// right arity is named in the message.
func (w *walker) reportCall(span models.Span, recv *types.Type, name string, args []*types.Type, cands []*models.Declaration) {
	var same []*models.Declaration
	for _, m := range cands {
		if len(m.Params) == len(args) {
			same = append(same, m)
		}
	}
	if len(same) == 1 {
		w.report(errors.TypeMismatchCode, span, cannotCall,
			typeName(recv), name, typeList(w.c.paramTypes(same[0], recv)), typeList(args))
		return
	}
	w.report(errors.UnresolvedMemberCode, span, noMatchingMethod, typeName(recv), name, typeList(args))
}

// use walks the closure of use(Category...) { } with the categories active
func (w *walker) use(x *models.Call, cl *models.Closure) *types.Type {
	var cats []*models.Declaration
	for _, a := range x.Args[:len(x.Args)-1] {
		w.expr(a)
		cats = append(cats, categoryClasses(a)...)
	}
	saved := w.categories
	w.categories = append(append([]*models.Declaration(nil), saved...), cats...)
	t := w.closureExpr(cl, nil)
	w.categories = saved
	if len(t.Args) == 1 {
		return t.Args[0]
	}
	return types.Object
}

func categoryClasses(e models.Expr) []*models.Declaration {
	switch x := e.(type) {
	case *models.ClassLit:
		if x.Type.Decl != nil {
			return []*models.Declaration{x.Type.Decl}
		}
	case *models.ListLit:
		var out []*models.Declaration
		for _, el := range x.Elems {
			out = append(out, categoryClasses(el)...)
		}
		return out
	default:
		if d := classRef(e); d != nil {
			return []*models.Declaration{d}
		}
	}
	return nil
}

// closureHint infers the parameters of a closure passed to name on recv
func (c *Checker) closureHint(recv *types.Type, name string) paramHint {
	if recv == nil {
		return nil
	}
	if name == "with" || name == "identity" {
		return func(int) []*types.Type { return []*types.Type{recv} }
	}
	if !iterating[name] {
		return nil
	}
	return func(n int) []*types.Type {
		if mp := types.AsSuper(c.table, normalize(recv), types.MapName); mp != nil && len(mp.Args) == 2 && n == 2 && name != "eachWithIndex" {
			return []*types.Type{capture(mp.Args[0]), capture(mp.Args[1])}
		}
		return []*types.Type{c.elementType(recv), types.Int}
	}
}

// closureExpr checks a closure body in a scope of its own and returns
// Closure parameterized by the type of the value it yields
func (w *walker) closureExpr(cl *models.Closure, hint paramHint) *types.Type {
	savedFlow, savedFrame := w.flow.clone(), w.closure
	w.push()
	n := len(cl.Params)
	if cl.ImplicitIt {
		n = 1
	}
	var hinted []*types.Type
	if hint != nil {
		hinted = hint(n)
	}
	at := func(i int) *types.Type {
		if i < len(hinted) && hinted[i] != nil {
			return hinted[i]
		}
		return types.Object
	}
	if cl.ImplicitIt {
		s := w.declare("it", nil)
		w.flow[s] = at(0)
	}
	for i, p := range cl.Params {
		w.expr(p.Default)
		declared, unknown := declaredType(p.Type)
		s := w.declare(p.Name, declared)
		s.unknown = unknown
		if declared == nil {
			w.flow[s] = at(i)
		}
	}

	frame := &closureFrame{}
	w.closure = frame
	var last *types.Type
	if cl.Body != nil {
		for i, st := range cl.Body.Stmts {
			if es, ok := st.(*models.ExprStmt); ok && i == len(cl.Body.Stmts)-1 {
				last = w.expr(es.X)
				frame.results = append(frame.results, last)
				continue
			}
			w.stmt(st)
		}
	}
	w.pop()
	w.flow, w.closure = savedFlow, savedFrame

	var result *types.Type
	for i, r := range frame.results {
		if r == nil || r.IsVoid() {
			result = nil
			break
		}
		if i == 0 {
			result = types.Box(r)
		} else {
			result = w.common(result, types.Box(r))
		}
	}
	if result == nil || result.Kind == types.KindNull {
		return types.Closure
	}
	return types.Class(types.ClosureName, result)
}

func (w *walker) newExpr(x *models.New, expected *types.Type) *types.Type {
	for _, e := range x.Named {
		w.expr(e.Value)
	}
	w.exprs(x.Args)
	w.exprs(x.Dims)
	if x.Init != nil {
		w.expr(x.Init)
	}
	if x.Body != nil {
		w.c.checkType(x.Body)
	}
	if x.Type == nil || x.Type.Resolved == nil {
		return nil
	}
	t := x.Type.Resolved
	if len(x.Dims) > 0 && !t.IsArray() {
		return types.ArrayOf(t, len(x.Dims))
	}
	if x.Type.Diamond && expected != nil && expected.Kind == types.KindClass && len(expected.Args) > 0 {
		if d := x.Type.Decl; d != nil && len(d.TypeParams) == len(expected.Args) {
			return types.Class(t.Name, expected.Args...)
		}
	}
	return t
}

func (w *walker) binary(x *models.Binary) *types.Type {
	switch x.Op {
	case "&&":
		w.expr(x.X)
		pos, _ := w.narrowing(x.X)
		w.withNarrowing(pos, func() { w.expr(x.Y) })
		return types.Boolean
	case "||":
		w.expr(x.X)
		_, neg := w.narrowing(x.X)
		w.withNarrowing(neg, func() { w.expr(x.Y) })
		return types.Boolean
	}
	lt, rt := w.expr(x.X), w.expr(x.Y)
	switch x.Op {
	case "==", "!=", "<", ">", "<=", ">=", "===", "!==", "in", "==~":
		return types.Boolean
	case "<=>":
		return types.Int
	case "=~":
		return types.Class("java.util.regex.Matcher")
	case "..", "..<":
		if lt == nil {
			return types.Class(types.RangeName)
		}
		return types.Class(types.RangeName, types.Box(lt))
	}
	return w.operator(x.Span, x.Op, lt, rt)
}

// operator types an arithmetic, bitwise or shift operation, falling back to
// the operator method of the left operand
func (w *walker) operator(span models.Span, op string, lt, rt *types.Type) *types.Type {
	if lt == nil || rt == nil {
		return nil
	}
	if op == "+" && (isText(lt) || isText(rt)) {
		return types.String
	}
	if types.IsNumeric(lt) && types.IsNumeric(rt) {
		return numericResult(op, lt, rt)
	}
	if (op == "&" || op == "|" || op == "^") && types.Unbox(lt).Name == "boolean" && types.Unbox(rt).Name == "boolean" {
		return types.Boolean
	}
	name, ok := operatorMethods[op]
	if !ok {
		return types.Object
	}
	args := []*types.Type{rt}
	m, cands := w.c.lookup(lt, name, args, w.categories)
	if m == nil {
		w.reportCall(span, lt, name, args, cands)
		return nil
	}
	if m.ret == nil {
		return types.Object
	}
	return m.ret
}

func isText(t *types.Type) bool {
	return t.Kind == types.KindClass && (t.Name == types.StringName || t.Name == types.GStringName)
}

// numericResult applies binary numeric promotion
func numericResult(op string, lt, rt *types.Type) *types.Type {
	lu, ru := types.Unbox(lt), types.Unbox(rt)
	floating := isFloating(lu) || isFloating(ru)
	switch op {
	case "**":
		return types.Class(types.NumberName)
	case "<<", ">>", ">>>":
		if lu.Name == "long" {
			return types.Long
		}
		return types.Int
	case "/":
		if floating {
			return types.Double
		}
		return types.BigDecimal
	}
	switch {
	case lu.Name == types.BigDecimalName || ru.Name == types.BigDecimalName:
		if floating {
			return types.Double
		}
		return types.BigDecimal
	case lu.Name == types.BigIntegerName || ru.Name == types.BigIntegerName:
		if floating {
			return types.Double
		}
		return types.BigInteger
	case !lu.IsPrimitive() || !ru.IsPrimitive():
		return types.Class(types.NumberName)
	}
	best := types.Int
	for _, t := range []*types.Type{lu, ru} {
		if types.NumericRank(t) > types.NumericRank(best) {
			best = t
		}
	}
	return best
}

func isFloating(t *types.Type) bool {
	return t.Name == "double" || t.Name == "float"
}

func (w *walker) unary(x *models.Unary) *types.Type {
	t := w.expr(x.X)
	switch x.Op {
	case "!":
		return types.Boolean
	case "++", "--":
		if s := w.localOf(x.X); s != nil {
			w.assigned[s] = true
		}
		return t
	}
	if t != nil && t.IsPrimitive() && types.NumericRank(t) > 0 && types.NumericRank(t) < types.NumericRank(types.Int) {
		return types.Int
	}
	return t
}

func (w *walker) assign(x *models.Assign) *types.Type {
	if x.Op != "=" {
		lt := w.expr(x.Target)
		rt := w.expr(x.Value)
		var t *types.Type
		if x.Op == "?=" {
			t = w.common(lt, rt)
		} else {
			t = w.operator(x.Span, x.Op[:len(x.Op)-1], lt, rt)
		}
		if s := w.localOf(x.Target); s != nil && s.declared == nil {
			w.assignSlot(s, t, x.Value, x.Span)
		}
		return t
	}

	switch target := x.Target.(type) {
	case *models.Ident:
		if s := w.localOf(target); s != nil {
			value := w.exprExpecting(x.Value, s.declared)
			w.assignSlot(s, value, x.Value, x.Span)
			return value
		}
		ft := w.expr(target)
		value := w.exprExpecting(x.Value, ft)
		w.checkAssign(ft, value, x.Value, x.Span, assignMismatch)
		return value
	case *models.FieldAccess:
		ft := w.lvalue(target)
		value := w.exprExpecting(x.Value, ft)
		w.checkAssign(ft, value, x.Value, x.Span, assignMismatch)
		return value
	}
	w.expr(x.Target)
	return w.expr(x.Value)
}

// lvalue types the property written by recv.name = value
func (w *walker) lvalue(x *models.FieldAccess) *types.Type {
	if b := x.Binding; b != nil {
		return w.fieldAccess(x)
	}
	if classRef(x.X) != nil {
		return w.fieldAccess(x)
	}
	recv := w.expr(x.X)
	if recv == nil || x.Spread {
		return nil
	}
	if t, ok := w.c.setterType(recv, x.Name); ok {
		return t
	}
	w.report(errors.UnresolvedMemberCode, x.Span, noSuchProperty, x.Name, typeName(recv))
	return nil
}

func (w *walker) ternary(x *models.Ternary) *types.Type {
	ct := w.expr(x.Cond)
	if x.Then == nil {
		et := w.expr(x.Else)
		if ct == nil {
			return nil
		}
		return w.common(types.Box(ct), et)
	}
	pos, neg := w.narrowing(x.Cond)
	start := w.flow
	var tt, et *types.Type
	a := w.branch(start, pos, false, func() { tt = w.expr(x.Then) })
	b := w.branch(start, neg, false, func() { et = w.expr(x.Else) })
	w.flow = w.join(a, b)
	if tt != nil && tt.Kind == types.KindNull {
		return et
	}
	if et != nil && et.Kind == types.KindNull {
		return tt
	}
	return w.common(tt, et)
}

func (w *walker) index(x *models.Index) *types.Type {
	rt := w.expr(x.X)
	it := w.expr(x.Index)
	if rt == nil {
		return nil
	}
	if rt.IsArray() {
		return rt.Elem
	}
	m, _ := w.c.lookup(rt, "getAt", []*types.Type{it}, w.categories)
	if m != nil && m.ret != nil {
		return m.ret
	}
	return types.Object
}

func (w *walker) list(x *models.ListLit) *types.Type {
	var elem *types.Type
	for i, e := range x.Elems {
		t := w.expr(e)
		if t == nil {
			elem = types.Object
			continue
		}
		if i == 0 {
			elem = types.Box(t)
		} else if elem != nil {
			elem = w.common(elem, types.Box(t))
		}
	}
	if elem == nil || elem.Kind == types.KindNull {
		elem = types.Object
	}
	return types.Class(types.ArrayListName, elem)
}

func (w *walker) mapLit(x *models.MapLit) *types.Type {
	var key, value *types.Type
	for i, e := range x.Entries {
		kt := types.String
		if _, ok := e.Key.(*models.Ident); !ok {
			kt = w.expr(e.Key)
		}
		vt := w.expr(e.Value)
		if kt == nil || vt == nil {
			key, value = types.Object, types.Object
			continue
		}
		if i == 0 {
			key, value = types.Box(kt), types.Box(vt)
		} else {
			key, value = w.common(key, types.Box(kt)), w.common(value, types.Box(vt))
		}
	}
	if key == nil || key.Kind == types.KindNull {
		key = types.Object
	}
	if value == nil || value.Kind == types.KindNull {
		value = types.Object
	}
	return types.Class(types.HashMapName, key, value)
}
