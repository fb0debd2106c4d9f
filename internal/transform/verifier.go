package transform

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/resolver"
	"github.com/toyz/jointc/internal/types"
)

const (
	bindingName      = "groovy.lang.Binding"
	invokerHelper    = "org.codehaus.groovy.runtime.InvokerHelper"
	scriptRunMethod  = "run"
	scriptMainMethod = "main"
)

// Verify adds the members a class has without declaring them. Every class
// gets a default constructor when it declares none; dynamic-language
// classes also get property accessors, default-argument overloads and, for
// scripts, the script entry points.
func Verify(r *resolver.Resolver) {
	unit := r.Unit()
	dynamic := r.Dynamic()
	for _, d := range unit.AllTypes() {
		if dynamic && d.Script {
			addScriptMembers(r, d)
		}
		if dynamic {
			addAccessors(d)
			addDefaultArgOverloads(d)
		}
		addDefaultConstructor(d, dynamic)
	}
}

// capitalize upper-cases the first letter of a property name
func capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// accessors builds the getter, the boolean is-getter and, unless the field
// is final, the setter of a property field
func accessors(owner, f *models.Declaration) []*models.Declaration {
	mods := models.ModPublic
	if f.IsStatic() {
		mods |= models.ModStatic
	}
	typ := f.Type.Clone()
	if typ == nil || typ.IsDynamic() {
		typ = models.ResolvedRef(types.Object)
	}
	var recv models.Expr = models.NewThis()
	if f.IsStatic() {
		recv = models.NewIdent(owner.Name)
	}
	read := models.Select(recv, f.Name)
	suffix := capitalize(f.Name)

	out := []*models.Declaration{
		models.NewMethod("get"+suffix, mods, typ, nil, models.Stmts(models.Ret(read))),
	}
	if isBoolean(typ) {
		out = append(out, models.NewMethod("is"+suffix, mods, typ.Clone(), nil, models.Stmts(models.Ret(models.Select(recv, f.Name)))))
	}
	if !f.Modifiers.Has(models.ModFinal) {
		p := models.NewParam("value", typ.Clone())
		set := models.AssignTo(models.Select(recv, f.Name), models.NewIdent("value"))
		out = append(out, models.NewMethod("set"+suffix, mods, models.ResolvedRef(types.Void), []*models.Param{p}, models.Stmts(models.Eval(set))))
	}
	for _, m := range out {
		m.Owner = owner
	}
	return out
}

// addAccessors adds the accessors of each property not already declared
func addAccessors(d *models.Declaration) {
	for _, f := range d.Fields() {
		if !f.Property {
			continue
		}
		for _, acc := range accessors(d, f) {
			if declaresSignature(d, acc) {
				continue
			}
			acc.Owner = nil
			d.AddMember(acc)
		}
	}
}

func isBoolean(t *models.TypeRef) bool {
	if t.Resolved != nil {
		return t.Resolved.Equal(types.Boolean)
	}
	return t.Name == "boolean" && t.Dims == 0
}

func isVoid(t *models.TypeRef) bool {
	if t == nil {
		return false
	}
	if t.Resolved != nil {
		return t.Resolved.IsVoid()
	}
	return t.Name == "void"
}

func declaresSignature(d, m *models.Declaration) bool {
	sig := m.Signature()
	for _, cur := range d.Members {
		if cur.Kind == m.Kind && cur.Signature() == sig {
			return true
		}
	}
	return false
}

// addDefaultArgOverloads adds, after each method or constructor with
// default parameter values, one overload per defaulted parameter. The
// rightmost defaulted parameter is dropped first; each overload calls the
// full form with the default values filled in.
func addDefaultArgOverloads(d *models.Declaration) {
	for _, m := range append([]*models.Declaration(nil), d.Members...) {
		if m.Kind != models.KindMethod && m.Kind != models.KindConstructor {
			continue
		}
		var defaulted []int
		for i, p := range m.Params {
			if p.Default != nil {
				defaulted = append(defaulted, i)
			}
		}
		if len(defaulted) == 0 {
			continue
		}
		at := indexOf(d, m) + 1
		for n := len(defaulted) - 1; n >= 0; n-- {
			drop := make(map[int]bool, len(defaulted)-n)
			for _, i := range defaulted[n:] {
				drop[i] = true
			}
			o := overload(d, m, drop)
			if declaresSignature(d, o) {
				continue
			}
			d.InsertMember(at, o)
			at++
		}
	}
}

func overload(d, m *models.Declaration, drop map[int]bool) *models.Declaration {
	var params []*models.Param
	args := make([]models.Expr, len(m.Params))
	for i, p := range m.Params {
		if drop[i] {
			args[i] = p.Default
			continue
		}
		np := p.Clone()
		np.Default = nil
		params = append(params, np)
		args[i] = models.NewIdent(p.Name)
	}

	var o *models.Declaration
	if m.Kind == models.KindConstructor {
		body := models.Stmts(&models.CtorCall{Args: args, Span: models.NoSpan})
		o = models.NewConstructor(d, m.Modifiers, params, body)
	} else {
		var recv models.Expr
		if !m.IsStatic() {
			recv = models.NewThis()
		}
		call := models.CallOn(recv, m.Name, args...)
		var body *models.Block
		if isVoid(m.Return) {
			body = models.Stmts(models.Eval(call))
		} else {
			body = models.Stmts(models.Ret(call))
		}
		o = models.NewMethod(m.Name, m.Modifiers&^models.ModAbstract, m.Return.Clone(), params, body)
		for _, tp := range m.TypeParams {
			c := *tp
			o.TypeParams = append(o.TypeParams, &c)
		}
	}
	o.ExplicitVisibility = m.ExplicitVisibility
	for _, t := range m.Throws {
		o.Throws = append(o.Throws, t.Clone())
	}
	return o
}

func indexOf(d, m *models.Declaration) int {
	for i, cur := range d.Members {
		if cur == m {
			return i
		}
	}
	return len(d.Members) - 1
}

// addDefaultConstructor adds a no-argument constructor to classes and enums
// declaring none. It is placed after the fields and initializers.
func addDefaultConstructor(d *models.Declaration, dynamic bool) {
	if d.Kind != models.KindClass && d.Kind != models.KindEnum || d.Anonymous || d.Script {
		return
	}
	if len(d.Constructors()) > 0 {
		return
	}
	var mods models.Modifiers
	switch {
	case d.Kind == models.KindEnum:
		mods = models.ModPrivate
	case dynamic:
		mods = models.ModPublic
	default:
		mods = d.Modifiers.Visibility()
	}
	ctor := models.NewConstructor(d, mods, nil, models.Stmts())
	at := 0
	for i, m := range d.Members {
		if m.Kind == models.KindField || m.Kind == models.KindInitializer {
			at = i + 1
		}
	}
	d.InsertMember(at, ctor)
}

// addScriptMembers gives a script class its constructors, a run method
// holding the top-level statements and a main method launching it
func addScriptMembers(r *resolver.Resolver, d *models.Declaration) {
	table := r.Table()
	ref := func(qualified string) *models.TypeRef {
		t := models.ResolvedRef(types.Class(qualified))
		t.Decl = table.Lookup(qualified)
		return t
	}

	if len(d.Constructors()) == 0 {
		d.InsertMember(0, models.NewConstructor(d, models.ModPublic, nil, models.Stmts()))
		ctx := models.NewParam("context", ref(bindingName))
		d.InsertMember(1, models.NewConstructor(d, models.ModPublic, []*models.Param{ctx},
			models.Stmts(&models.CtorCall{Super: true, Args: []models.Expr{models.NewIdent("context")}, Span: models.NoSpan})))
	}

	if len(d.MethodsNamed(scriptMainMethod)) == 0 {
		args := models.NewParam("args", models.ResolvedRef(types.Class(types.StringName)))
		args.Varargs = true
		launch := models.CallOn(&models.Ident{Name: types.SimpleName(invokerHelper), Span: models.NoSpan,
			Binding: &models.Binding{Kind: models.BindType, Decl: table.Lookup(invokerHelper), Type: types.Class(invokerHelper), Static: true}},
			"runScript", models.ClassOf(models.RefTo(d)), models.NewIdent("args"))
		launch.Static = true
		d.AddMember(models.NewMethod(scriptMainMethod, models.ModPublic|models.ModStatic, models.ResolvedRef(types.Void),
			[]*models.Param{args}, models.Stmts(models.Eval(launch))))
	}

	if len(d.MethodsNamed(scriptRunMethod)) == 0 {
		body := d.Body
		if body == nil {
			body = models.Stmts()
		}
		d.Body = nil
		returnLast(body)
		run := models.NewMethod(scriptRunMethod, models.ModPublic, ref(types.ObjectName), nil, body)
		d.AddMember(run)
	}
}

// returnLast makes the value of the final expression statement the result
// of a script body
func returnLast(b *models.Block) {
	if n := len(b.Stmts); n > 0 {
		if es, ok := b.Stmts[n-1].(*models.ExprStmt); ok && !isVoidCall(es.X) {
			b.Stmts[n-1] = &models.Return{X: es.X, Span: es.Span}
			return
		}
		if _, ok := b.Stmts[n-1].(*models.Return); ok {
			return
		}
	}
	b.Stmts = append(b.Stmts, models.Ret(models.NullLit()))
}

// isVoidCall reports calls known to produce no value, such as println
func isVoidCall(e models.Expr) bool {
	c, ok := e.(*models.Call)
	return ok && c.X == nil && strings.HasPrefix(c.Name, "print")
}
