package resolver

import (
	"strings"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// frame is one lexical scope of a body
type frame struct {
	parent *frame
	vars   map[string]*models.Variable
	// root marks the outermost frame of a method or anonymous class body;
	// duplicate checks stop there
	root bool
}

func (f *frame) lookup(name string) *models.Variable {
	for cur := f; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v
		}
	}
	return nil
}

// local finds name among the frames up to and including the nearest root
func (f *frame) local(name string) *models.Variable {
	for cur := f; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v
		}
		if cur.root {
			return nil
		}
	}
	return nil
}

// bodyWalker binds the names of one member body
type bodyWalker struct {
	r *Resolver
	// owner is the type whose members are visible without qualification
	owner *models.Declaration
	// member is the declaration the body belongs to
	member *models.Declaration
	static bool
	frame  *frame
}

// ResolveBodies binds identifiers in the method, constructor, initializer and
// field initializer bodies of a dynamic unit. Statically typed units keep
// their bodies uninterpreted.
func (r *Resolver) ResolveBodies() {
	if !r.Dynamic() {
		return
	}
	for _, d := range r.unit.AllTypes() {
		r.resolveBodiesOf(d, nil)
	}
}

func (r *Resolver) resolveBodiesOf(d *models.Declaration, outer *frame) {
	for _, c := range d.Constants {
		w := r.walker(d, d, true, outer)
		w.exprs(c.Args)
		w.entries(c.Named)
	}
	if d.Script && d.Body != nil {
		w := r.walker(d, d, false, outer)
		w.block(d.Body)
	}
	for _, m := range d.Members {
		switch m.Kind {
		case models.KindField:
			if m.Init != nil {
				w := r.walker(d, m, m.IsStatic(), outer)
				w.expr(m.Init)
			}
		case models.KindMethod, models.KindConstructor, models.KindInitializer:
			w := r.walker(d, m, m.IsStatic(), outer)
			for _, p := range m.Params {
				w.expr(p.Default)
				w.declare(p.Name, p.Type, p.NameSpan, true, p.Final, false)
			}
			if m.Body != nil {
				w.stmts(m.Body.Stmts)
			}
		}
	}
}

func (r *Resolver) walker(owner, member *models.Declaration, static bool, outer *frame) *bodyWalker {
	return &bodyWalker{
		r:      r,
		owner:  owner,
		member: member,
		static: static,
		frame:  &frame{parent: outer, vars: make(map[string]*models.Variable), root: true},
	}
}

func (w *bodyWalker) push() {
	w.frame = &frame{parent: w.frame, vars: make(map[string]*models.Variable)}
}

func (w *bodyWalker) pop() {
	w.frame = w.frame.parent
}

// declare adds a variable to the current frame, reporting a name already
// used by a local or parameter of the same body
func (w *bodyWalker) declare(name string, typ *models.TypeRef, span models.Span, param, final, check bool) *models.Variable {
	if check && w.frame.local(name) != nil {
		w.r.report(errors.StaticContextViolationCode, span,
			"The current scope already contains a variable of the name %s", name)
	}
	if typ != nil && !typ.IsDynamic() {
		w.r.ResolveType(typ, w.member)
	}
	v := &models.Variable{Name: name, Declared: typ, Span: span, Param: param, Final: final}
	w.frame.vars[name] = v
	return v
}

func (w *bodyWalker) block(b *models.Block) {
	if b == nil {
		return
	}
	w.push()
	w.stmts(b.Stmts)
	w.pop()
}

func (w *bodyWalker) stmts(list []models.Stmt) {
	for _, s := range list {
		w.stmt(s)
	}
}

func (w *bodyWalker) stmt(s models.Stmt) {
	switch x := s.(type) {
	case nil:
	case *models.Block:
		w.block(x)
	case *models.ExprStmt:
		w.expr(x.X)
	case *models.VarDecl:
		w.r.annotateLocal(x.Annotations, w.member)
		w.expr(x.Init)
		w.declare(x.Name, x.Type, x.NameSpan, false, x.Final, true)
	case *models.If:
		w.expr(x.Cond)
		w.scoped(x.Then)
		w.scoped(x.Else)
	case *models.While:
		w.expr(x.Cond)
		w.scoped(x.Body)
	case *models.For:
		w.push()
		w.stmts(x.Init)
		w.expr(x.Cond)
		w.exprs(x.Update)
		w.scoped(x.Body)
		w.pop()
	case *models.ForIn:
		w.expr(x.Iter)
		w.push()
		w.declare(x.Var, x.VarType, x.VarSpan, false, false, true)
		w.scoped(x.Body)
		w.pop()
	case *models.Return:
		w.expr(x.X)
	case *models.Throw:
		w.expr(x.X)
	case *models.Assert:
		w.expr(x.Cond)
		w.expr(x.Message)
	case *models.Try:
		w.block(x.Body)
		for _, c := range x.Catches {
			w.push()
			for _, t := range c.Types {
				w.r.ResolveType(t, w.member)
			}
			var declared *models.TypeRef
			if len(c.Types) == 1 {
				declared = c.Types[0]
			}
			w.declare(c.Name, declared, c.Span, false, false, true)
			w.block(c.Body)
			w.pop()
		}
		w.block(x.Finally)
	case *models.Sync:
		w.expr(x.Lock)
		w.block(x.Body)
	case *models.CtorCall:
		// arguments of this(...) and super(...) run before the instance exists
		static := w.static
		w.static = true
		w.exprs(x.Args)
		w.entries(x.Named)
		w.static = static
	}
}

// scoped walks a statement in a frame of its own
func (w *bodyWalker) scoped(s models.Stmt) {
	if s == nil {
		return
	}
	w.push()
	w.stmt(s)
	w.pop()
}

func (w *bodyWalker) exprs(list []models.Expr) {
	for _, e := range list {
		w.expr(e)
	}
}

func (w *bodyWalker) entries(list []*models.MapEntry) {
	for _, e := range list {
		if _, ok := e.Key.(*models.Ident); !ok {
			w.expr(e.Key)
		}
		w.expr(e.Value)
	}
}

func (w *bodyWalker) expr(e models.Expr) {
	switch x := e.(type) {
	case nil:
	case *models.Ident:
		// receivers built by transforms arrive bound
		if x.Binding != nil {
			return
		}
		x.Binding = w.bindName(x.Name, x.Span)
	case *models.FieldAccess:
		if w.bindQualified(x) {
			return
		}
		w.expr(x.X)
		x.Binding = w.bindMember(x.X, x.Name)
	case *models.GString:
		w.exprs(x.Values)
	case *models.MethodPointer:
		w.expr(x.X)
	case *models.Call:
		w.expr(x.X)
		w.entries(x.Named)
		w.exprs(x.Args)
		if target := x.X; target != nil {
			x.Static = isTypeName(target)
		}
	case *models.New:
		w.r.ResolveType(x.Type, w.member)
		w.entries(x.Named)
		w.exprs(x.Args)
		w.exprs(x.Dims)
		if x.Init != nil {
			w.expr(x.Init)
		}
		if x.Body != nil {
			w.anonymous(x.Body)
		}
	case *models.Binary:
		w.expr(x.X)
		w.expr(x.Y)
	case *models.Unary:
		w.expr(x.X)
	case *models.Assign:
		w.expr(x.Target)
		w.expr(x.Value)
	case *models.Ternary:
		w.expr(x.Cond)
		w.expr(x.Then)
		w.expr(x.Else)
	case *models.Cast:
		w.r.ResolveType(x.Type, w.member)
		w.expr(x.X)
	case *models.InstanceOf:
		w.expr(x.X)
		w.r.ResolveType(x.Type, w.member)
	case *models.Index:
		w.expr(x.X)
		w.expr(x.Index)
	case *models.ListLit:
		w.exprs(x.Elems)
	case *models.MapLit:
		w.entries(x.Entries)
	case *models.Closure:
		w.closure(x)
	case *models.ClassLit:
		w.r.ResolveType(x.Type, w.member)
	case *models.AnnotationValue:
		w.r.ResolveAnnotation(x.Annotation, w.member)
	}
}

func (w *bodyWalker) closure(c *models.Closure) {
	w.push()
	if c.ImplicitIt {
		w.declare("it", nil, c.Span, true, false, false)
	}
	for _, p := range c.Params {
		w.expr(p.Default)
		w.declare(p.Name, p.Type, p.NameSpan, true, p.Final, true)
	}
	if c.Body != nil {
		w.stmts(c.Body.Stmts)
	}
	w.pop()
}

// anonymous resolves the class body of a new expression. The written type
// becomes the superclass, or the single interface with Object as superclass.
func (w *bodyWalker) anonymous(d *models.Declaration) {
	r := w.r
	if d.Owner == nil {
		d.Owner = w.member
	}
	if d.Super != nil && d.Super.Resolved == nil {
		r.ResolveType(d.Super, w.member)
	}
	if d.Super != nil && d.Super.Decl != nil && d.Super.Decl.IsInterface() {
		d.Interfaces = []*models.TypeRef{d.Super}
		d.Super = r.refTo(types.ObjectName)
	}
	r.implicitSuper(d)
	r.resolveAnnotations(d)
	r.resolveMembersOf(d)
	r.resolveBodiesOf(d, w.frame)
}

// isTypeName reports whether e is a name bound to a class
func isTypeName(e models.Expr) bool {
	switch x := e.(type) {
	case *models.Ident:
		return x.Binding != nil && x.Binding.Kind == models.BindType
	case *models.FieldAccess:
		return x.Binding != nil && x.Binding.Kind == models.BindType
	}
	return false
}

// bindName resolves a bare identifier: locals, then fields and enum
// constants of the enclosing types, then static imports, types and packages
func (w *bodyWalker) bindName(name string, span models.Span) *models.Binding {
	if b := w.value(name); b != nil {
		return b
	}
	if m := w.r.LookupType(name, w.member); m.Found() {
		return &models.Binding{Kind: models.BindType, Decl: m.Decl, Type: m.Decl.RawDescriptor(), Static: true}
	}
	if w.r.table.HasPackage(name) {
		return &models.Binding{Kind: models.BindPackage, Package: name}
	}
	if w.static && !w.inScript() {
		w.r.report(errors.StaticContextViolationCode, span,
			"Apparent variable '%s' was found in a static scope but doesn't refer to a local variable, static field or class. Possible causes:",
			name)
		return &models.Binding{Kind: models.BindUnresolved}
	}
	return &models.Binding{Kind: models.BindDynamic}
}

func (w *bodyWalker) inScript() bool {
	return w.owner.Script && w.member == w.owner
}

// value resolves name as a variable, field, enum constant or statically
// imported member, or returns nil
func (w *bodyWalker) value(name string) *models.Binding {
	if v := w.frame.lookup(name); v != nil {
		b := &models.Binding{Kind: models.BindLocal, Local: v}
		if v.Declared != nil {
			b.Type = v.Declared.Resolved
		}
		return b
	}
	static := w.static
	for t := w.owner; t != nil; t = enclosingType(t.Owner) {
		if c := FindConstant(t, name); c != nil {
			return &models.Binding{Kind: models.BindEnumConstant, Constant: c, Owner: t, Type: t.RawDescriptor(), Static: true}
		}
		if f := FindField(t, name); f != nil && (!static || f.IsStatic()) {
			return fieldBinding(f)
		}
		// members of an outer class are reached from static nested classes
		// only when static
		if t.IsStatic() || t.IsInterface() || t.Kind == models.KindEnum {
			static = true
		}
	}
	for _, imp := range w.r.scope.StaticImports() {
		if imp.SimpleName() != name {
			continue
		}
		owner := w.r.qualified(imp.Owner())
		if owner == nil {
			continue
		}
		if b := staticMember(owner, imp.MemberName()); b != nil {
			b.ViaImport = imp
			return b
		}
		return &models.Binding{Kind: models.BindDynamic, Owner: owner, Static: true, ViaImport: imp}
	}
	for _, imp := range w.r.scope.StaticStarImports() {
		owner := w.r.qualified(imp.Name)
		if owner == nil {
			continue
		}
		if b := staticMember(owner, name); b != nil {
			b.ViaImport = imp
			return b
		}
	}
	return nil
}

func fieldBinding(f *models.Declaration) *models.Binding {
	kind := models.BindField
	if f.Property {
		kind = models.BindProperty
	}
	b := &models.Binding{Kind: kind, Decl: f, Owner: f.Owner, Static: f.IsStatic()}
	if f.Type != nil {
		b.Type = f.Type.Resolved
	}
	return b
}

func staticMember(owner *models.Declaration, name string) *models.Binding {
	if c := FindConstant(owner, name); c != nil {
		return &models.Binding{Kind: models.BindEnumConstant, Constant: c, Owner: owner, Type: owner.RawDescriptor(), Static: true}
	}
	if f := FindField(owner, name); f != nil && f.IsStatic() {
		return fieldBinding(f)
	}
	return nil
}

// bindQualified binds a dotted chain whose root is not a value: the longest
// prefix naming a type is bound as a class reference and the remaining
// segments as its static members. It reports whether the chain was handled.
func (w *bodyWalker) bindQualified(x *models.FieldAccess) bool {
	name := models.QualifiedName(x)
	if name == "" {
		return false
	}
	var chain []models.Expr
	for e := models.Expr(x); ; {
		chain = append([]models.Expr{e}, chain...)
		fa, ok := e.(*models.FieldAccess)
		if !ok {
			break
		}
		e = fa.X
	}
	root := chain[0].(*models.Ident)
	if w.value(root.Name) != nil {
		return false
	}
	parts := strings.Split(name, ".")
	for i := len(parts); i > 0; i-- {
		m := w.r.LookupType(strings.Join(parts[:i], "."), w.member)
		if !m.Found() {
			continue
		}
		for j := 0; j < i-1; j++ {
			setBinding(chain[j], &models.Binding{Kind: models.BindPackage, Package: strings.Join(parts[:j+1], ".")})
		}
		setBinding(chain[i-1], &models.Binding{Kind: models.BindType, Decl: m.Decl, Type: m.Decl.RawDescriptor(), Static: true})
		for j := i; j < len(chain); j++ {
			fa := chain[j].(*models.FieldAccess)
			fa.Binding = w.bindMember(fa.X, fa.Name)
		}
		return true
	}
	return false
}

func setBinding(e models.Expr, b *models.Binding) {
	switch x := e.(type) {
	case *models.Ident:
		x.Binding = b
	case *models.FieldAccess:
		x.Binding = b
	}
}

// bindMember binds x.name when x is a class reference; other receivers are
// left to the type checker
func (w *bodyWalker) bindMember(x models.Expr, name string) *models.Binding {
	var recv *models.Binding
	switch v := x.(type) {
	case *models.Ident:
		recv = v.Binding
	case *models.FieldAccess:
		recv = v.Binding
	}
	if recv == nil || recv.Kind != models.BindType || recv.Decl == nil {
		return nil
	}
	if b := staticMember(recv.Decl, name); b != nil {
		return b
	}
	if n := MemberType(recv.Decl, name, true); n != nil {
		return &models.Binding{Kind: models.BindType, Decl: n, Type: n.RawDescriptor(), Static: true}
	}
	return nil
}

// annotateLocal resolves annotations placed on local variables
func (r *Resolver) annotateLocal(list []*models.Annotation, from *models.Declaration) {
	r.annotate(list, from, "LOCAL_VARIABLE")
}
