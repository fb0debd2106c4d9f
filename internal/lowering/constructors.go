package lowering

import (
	"strconv"
	"strings"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

// Names of the leading constructor parameters every enum constructor gets
const (
	enumNameParam    = "$enum$name"
	enumOrdinalParam = "$enum$ordinal"
	namedArgsParam   = "__namedArgs"
	invokerHelper    = "org.codehaus.groovy.runtime.InvokerHelper"
)

// argTypes returns the statically known types of a constant's arguments;
// nil entries are unknown and match any parameter. Named arguments travel
// as a leading map.
func (l *Lowerer) argTypes(c *models.EnumConstant) []*types.Type {
	var out []*types.Type
	if len(c.Named) > 0 {
		out = append(out, types.Class(types.HashMapName))
	}
	for _, a := range c.Args {
		out = append(out, l.staticType(a))
	}
	return out
}

func (l *Lowerer) staticType(e models.Expr) *types.Type {
	switch x := e.(type) {
	case *models.Literal:
		return x.Type()
	case *models.GString:
		return types.GString
	case *models.ListLit:
		return types.Class(types.ArrayListName)
	case *models.MapLit:
		return types.Class(types.HashMapName)
	case *models.Closure:
		return types.Closure
	case *models.ClassLit:
		return types.Class(types.ClassName, x.Type.Type())
	case *models.New:
		return x.Type.Resolved
	case *models.Cast:
		return x.Type.Resolved
	case *models.Unary:
		if t := l.staticType(x.X); t != nil && (x.Op == "-" || x.Op == "+") && types.IsNumeric(t) {
			return t
		}
	case *models.Ident:
		if b := x.Binding; b != nil && (b.Kind == models.BindEnumConstant || b.Kind == models.BindLocal) {
			return b.Type
		}
	}
	return nil
}

// selectConstructor picks the most specific constructor accepting args
func (l *Lowerer) selectConstructor(ctors []*models.Declaration, args []*types.Type) *models.Declaration {
	var best *models.Declaration
	for _, ctor := range ctors {
		if !l.accepts(ctor, args) {
			continue
		}
		if best == nil || l.moreSpecific(ctor.ParamTypes(), best.ParamTypes()) {
			best = ctor
		}
	}
	return best
}

func (l *Lowerer) accepts(ctor *models.Declaration, args []*types.Type) bool {
	params := ctor.ParamTypes()
	if ctor.IsVarargs() {
		fixed := len(params) - 1
		if len(args) == len(params) && l.compatible(params[fixed], args[fixed]) {
			return l.allCompatible(params[:fixed], args[:fixed])
		}
		if len(args) < fixed {
			return false
		}
		elem := params[fixed].Elem
		for _, a := range args[fixed:] {
			if !l.compatible(elem, a) {
				return false
			}
		}
		return l.allCompatible(params[:fixed], args[:fixed])
	}
	return len(params) == len(args) && l.allCompatible(params, args)
}

func (l *Lowerer) allCompatible(params, args []*types.Type) bool {
	for i, p := range params {
		if !l.compatible(p, args[i]) {
			return false
		}
	}
	return true
}

// compatible reports whether an argument of type arg can be passed for a
// parameter. Dynamic-language constants also convert between numbers and
// turn strings into characters.
func (l *Lowerer) compatible(param, arg *types.Type) bool {
	if arg == nil || types.Assignable(l.table, param, arg) {
		return true
	}
	if !l.dynamic {
		return false
	}
	if types.IsNumeric(param) && types.IsNumeric(arg) {
		return true
	}
	if arg.Name == types.GStringName && param.Name == types.StringName {
		return true
	}
	return types.Unbox(param).Name == "char" && arg.Name == types.StringName
}

func (l *Lowerer) moreSpecific(a, b []*types.Type) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	strict := false
	for i := range a {
		if !types.Assignable(l.table, b[i], a[i]) {
			return false
		}
		if !types.Assignable(l.table, a[i], b[i]) {
			strict = true
		}
	}
	return strict
}

func argText(list []*types.Type) string {
	names := make([]string, len(list))
	for i, t := range list {
		if t == nil {
			t = types.Object
		}
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

// rejectSuperCalls reports and drops explicit super(...) calls of enum
// constructors
func (l *Lowerer) rejectSuperCalls(d *models.Declaration) {
	for _, ctor := range d.Constructors() {
		if ctor.Body == nil || len(ctor.Body.Stmts) == 0 {
			continue
		}
		call, ok := ctor.Body.Stmts[0].(*models.CtorCall)
		if !ok || !call.Super {
			continue
		}
		l.diags.Report(errors.IllegalEnumSuperCallCode, call.Span,
			"Cannot invoke super constructor from enum constructor %s(%s)", d.Name, simpleList(ctor.ParamTypes()))
		ctor.Body.Stmts = ctor.Body.Stmts[1:]
	}
}

// addMapConstructor gives an enum without explicit constructors the
// constructor that named-argument constants call
func (l *Lowerer) addMapConstructor(d *models.Declaration) {
	for _, ctor := range d.Constructors() {
		if !ctor.Generated {
			return
		}
	}
	named := false
	for _, c := range d.Constants {
		named = named || len(c.Named) > 0
	}
	if !named {
		return
	}
	param := models.NewParam(namedArgsParam, l.refTo(types.HashMapName))
	helper := l.table.Lookup(invokerHelper)
	recv := models.NewIdent(types.SimpleName(invokerHelper))
	recv.Binding = &models.Binding{Kind: models.BindType, Decl: helper, Type: types.Class(invokerHelper), Static: true}
	set := models.CallOn(recv, "setProperties", models.NewThis(), models.NewIdent(namedArgsParam))
	set.Static = true
	ctor := models.NewConstructor(d, models.ModPrivate, []*models.Param{param}, models.Stmts(models.Eval(set)))
	d.InsertMember(indexAfterCtors(d), ctor)
}

func indexAfterCtors(d *models.Declaration) int {
	at := 0
	for i, m := range d.Members {
		if m.Kind == models.KindConstructor || m.Kind == models.KindField || m.Kind == models.KindInitializer {
			at = i + 1
		}
	}
	return at
}

// anonymousConstructor gives the class of a new expression the constructor
// the expression calls; it hands every argument to the superclass
func (l *Lowerer) anonymousConstructor(x *models.New) {
	body := x.Body
	if len(body.Constructors()) > 0 {
		return
	}
	var argTypes []*types.Type
	if len(x.Named) > 0 {
		argTypes = append(argTypes, types.Class(types.HashMapName))
	}
	for _, a := range x.Args {
		argTypes = append(argTypes, l.staticType(a))
	}
	params := make([]*models.Param, len(argTypes))
	args := make([]models.Expr, len(argTypes))
	for i, t := range argTypes {
		if t == nil || t.Kind == types.KindNull {
			t = types.Object
		}
		name := "p" + strconv.Itoa(i)
		params[i] = models.NewParam(name, models.ResolvedRef(t))
		args[i] = models.NewIdent(name)
	}
	call := &models.CtorCall{Super: true, Args: args, Span: models.NoSpan}
	body.InsertMember(0, models.NewConstructor(body, 0, params, models.Stmts(call)))
}

// syntheticParams are the name and ordinal parameters passed to Enum
func (l *Lowerer) syntheticParams() []*models.Param {
	return []*models.Param{
		models.NewParam(enumNameParam, l.refTo(types.StringName)),
		models.NewParam(enumOrdinalParam, models.ResolvedRef(types.Int)),
	}
}

func syntheticArgs() []models.Expr {
	return []models.Expr{models.NewIdent(enumNameParam), models.NewIdent(enumOrdinalParam)}
}

// threadEnumParams prepends the name and ordinal to a constructor. A
// constructor delegating to another one passes them along; the others hand
// them to the superclass.
func (l *Lowerer) threadEnumParams(ctor *models.Declaration) {
	ctor.Params = append(l.syntheticParams(), ctor.Params...)
	if vis := ctor.Modifiers.Visibility(); ctor.ExplicitVisibility && vis != models.ModPrivate && !l.dynamic {
		l.diags.Report(errors.IllegalModifierCode, ctor.NameSpan,
			"Illegal modifier for the enum constructor; only private is permitted.")
	}
	// enum constructors are private whatever the source spelled
	ctor.Modifiers = ctor.Modifiers.WithVisibility(models.ModPrivate)
	if ctor.Body == nil {
		ctor.Body = models.Stmts()
	}
	if len(ctor.Body.Stmts) > 0 {
		if call, ok := ctor.Body.Stmts[0].(*models.CtorCall); ok && !call.Super {
			call.Args = append(syntheticArgs(), call.Args...)
			return
		}
	}
	sup := &models.CtorCall{Super: true, Args: syntheticArgs(), Span: models.NoSpan}
	ctor.Body.Stmts = append([]models.Stmt{sup}, ctor.Body.Stmts...)
}

// bodyConstructor is the constructor of a constant body class; it forwards
// to the enum constructor the constant selected
func (l *Lowerer) bodyConstructor(body, selected *models.Declaration) *models.Declaration {
	params := l.syntheticParams()
	args := syntheticArgs()
	for _, p := range selected.Params {
		np := p.Clone()
		np.Default = nil
		params = append(params, np)
		args = append(args, models.NewIdent(p.Name))
	}
	call := &models.CtorCall{Super: true, Args: args, Span: models.NoSpan}
	return models.NewConstructor(body, 0, params, models.Stmts(call))
}
