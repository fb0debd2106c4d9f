package lowering

import (
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
	"github.com/toyz/jointc/internal/types"
)

const (
	valuesField = "$VALUES"
	minValue    = "MIN_VALUE"
	maxValue    = "MAX_VALUE"
)

// lowerEnum turns an enum into a class: constructors take the constant name
// and ordinal, each constant becomes a public static final field, and the
// values array backs values() and valueOf(String)
func (l *Lowerer) lowerEnum(d *models.Declaration) {
	l.debugf("lowering enum %s (%d constants)", d.QualifiedName, len(d.Constants))
	abstract := unimplemented(d)

	l.rejectSuperCalls(d)
	l.addMapConstructor(d)
	ctors := d.Constructors()
	for _, c := range d.Constants {
		args := l.argTypes(c)
		c.Constructor = l.selectConstructor(ctors, args)
		if c.Constructor == nil {
			l.noConstructor(d, c, args)
		}
		l.checkConstantBody(c, abstract)
	}

	// constant bodies forward to the constructor their constant selected,
	// built before the enum constructors take their leading parameters
	for _, c := range d.Constants {
		if c.Body == nil {
			continue
		}
		c.Body.Modifiers |= models.ModFinal | models.ModEnum
		if c.Constructor != nil {
			c.Body.InsertMember(0, l.bodyConstructor(c.Body, c.Constructor))
		}
	}
	for _, ctor := range ctors {
		l.threadEnumParams(ctor)
	}

	self := d.RawDescriptor()
	at := 0
	for _, c := range d.Constants {
		f := l.holderField(d, c)
		d.InsertMember(at, f)
		at++
	}
	values := models.NewField(valuesField, models.ModPrivate|models.ModStatic|models.ModFinal|models.ModSynthetic,
		models.ResolvedRef(types.ArrayOf(self, 1)), l.valuesArray(d))
	values.Synthetic = true
	d.InsertMember(at, values)
	at++
	if l.dynamic && len(d.Constants) > 0 {
		first, last := d.Constants[0], d.Constants[len(d.Constants)-1]
		for _, bound := range []struct {
			name string
			c    *models.EnumConstant
		}{{minValue, first}, {maxValue, last}} {
			if d.Field(bound.name) != nil {
				continue
			}
			f := models.NewField(bound.name, models.ModPublic|models.ModStatic|models.ModFinal, models.RefTo(d), staticField(d, bound.c.Field))
			d.InsertMember(at, f)
			at++
		}
	}

	l.addValueMethods(d, values)
	if l.dynamic {
		l.addStepMethods(d, values)
	}

	d.Modifiers |= models.ModEnum
	if d.Owner != nil {
		d.Modifiers |= models.ModStatic
	}
	withBodies := false
	for _, c := range d.Constants {
		withBodies = withBodies || c.Body != nil
	}
	switch {
	case len(abstract) > 0 && withBodies:
		d.Modifiers |= models.ModAbstract
	case !withBodies:
		d.Modifiers |= models.ModFinal
	}
}

func (l *Lowerer) noConstructor(d *models.Declaration, c *models.EnumConstant, args []*types.Type) {
	if l.dynamic {
		l.diags.Report(errors.UnresolvedMemberCode, c.NameSpan,
			"Cannot find matching constructor for enum constant %s with arguments (%s)", c.Name, argText(args))
		return
	}
	l.diags.Report(errors.UnresolvedMemberCode, c.NameSpan,
		"The constructor %s(%s) is undefined", d.Name, simpleList(known(args)))
}

func known(list []*types.Type) []*types.Type {
	out := make([]*types.Type, len(list))
	for i, t := range list {
		if t == nil {
			t = types.Object
		}
		out[i] = t
	}
	return out
}

// checkConstantBody reports the abstract methods of the enum a constant
// leaves unimplemented
func (l *Lowerer) checkConstantBody(c *models.EnumConstant, abstract []*models.Declaration) {
	missing := abstract
	if c.Body != nil {
		missing = unimplemented(c.Body)
	}
	for _, m := range missing {
		if l.dynamic {
			l.diags.Report(errors.UnimplementedAbstractMemberCode, c.NameSpan,
				"Can't have an abstract method in enum constant %s. Implement method '%s'.", c.Name, methodText(m))
			continue
		}
		l.diags.Report(errors.UnimplementedAbstractMemberCode, c.NameSpan,
			"The enum constant %s must implement the abstract method %s", c.Name, readableMethod(m))
	}
}

// holderField is the static field a constant lives in:
// public static final E A = new E("A", 0, args...)
func (l *Lowerer) holderField(d *models.Declaration, c *models.EnumConstant) *models.Declaration {
	args := []models.Expr{models.StringLit(c.Name), models.IntLit(c.Ordinal)}
	if len(c.Named) > 0 {
		args = append(args, &models.MapLit{Entries: c.Named, Span: c.Span})
	}
	args = append(args, c.Args...)
	class := d
	if c.Body != nil {
		class = c.Body
	}
	init := models.NewOf(models.RefTo(class), args...)
	init.Span = c.Span

	f := models.NewField(c.Name, models.ModPublic|models.ModStatic|models.ModFinal|models.ModEnum, models.RefTo(d), init)
	f.Annotations = c.Annotations
	f.Span = c.Span
	f.NameSpan = c.NameSpan
	c.Field = f
	return f
}

// valuesArray is new E[] { A, B, ... }
func (l *Lowerer) valuesArray(d *models.Declaration) models.Expr {
	list := &models.ListLit{Span: models.NoSpan}
	for _, c := range d.Constants {
		list.Elems = append(list.Elems, staticField(d, c.Field))
	}
	return &models.New{Type: models.ResolvedRef(types.ArrayOf(d.RawDescriptor(), 1)), Init: list, Span: models.NoSpan}
}

// addValueMethods adds values(), returning a copy of the values array, and
// valueOf(String) unless the enum declares them
func (l *Lowerer) addValueMethods(d, values *models.Declaration) {
	array := models.ResolvedRef(types.ArrayOf(d.RawDescriptor(), 1))
	if !declares(d, "values", 0) {
		clone := models.CallOn(staticField(d, values), "clone")
		body := models.Stmts(models.Ret(&models.Cast{Type: array.Clone(), X: clone, Span: models.NoSpan}))
		d.AddMember(models.NewMethod("values", models.ModPublic|models.ModStatic, array, nil, body))
	}
	if !declares(d, "valueOf", 1) {
		name := models.NewParam("name", l.refTo(types.StringName))
		lookup := models.CallOn(l.typeIdent(l.table.Lookup(types.EnumName)), "valueOf",
			models.ClassOf(models.RefTo(d)), models.NewIdent("name"))
		lookup.Static = true
		d.AddMember(models.NewMethod("valueOf", models.ModPublic|models.ModStatic, models.RefTo(d),
			[]*models.Param{name}, models.Stmts(models.Ret(lookup))))
	}
}

// addStepMethods adds next() and previous(), which wrap around at the ends
func (l *Lowerer) addStepMethods(d, values *models.Declaration) {
	length := func() models.Expr { return models.Select(staticField(d, values), "length") }
	ordinal := func() models.Expr { return models.CallOn(models.NewThis(), "ordinal") }
	step := func(name, op string, wrap func(ord models.Expr) models.Stmt) {
		if declares(d, name, 0) {
			return
		}
		decl := &models.VarDecl{
			Type:     models.ResolvedRef(types.Int),
			Name:     "ord",
			Init:     models.Compare(op, ordinal(), models.IntLit(1)),
			Span:     models.NoSpan,
			NameSpan: models.NoSpan,
		}
		body := models.Stmts(decl, wrap(models.NewIdent("ord")),
			models.Ret(&models.Index{X: staticField(d, values), Index: models.NewIdent("ord"), Span: models.NoSpan}))
		d.AddMember(models.NewMethod(name, models.ModPublic, models.RefTo(d), nil, body))
	}
	// if (ord >= $VALUES.length) ord = 0
	step("next", "+", func(ord models.Expr) models.Stmt {
		return models.IfThen(models.Compare(">=", ord, length()),
			models.Eval(models.AssignTo(models.NewIdent("ord"), models.IntLit(0))))
	})
	// if (ord < 0) ord = $VALUES.length - 1
	step("previous", "-", func(ord models.Expr) models.Stmt {
		return models.IfThen(models.Compare("<", ord, models.IntLit(0)),
			models.Eval(models.AssignTo(models.NewIdent("ord"), models.Compare("-", length(), models.IntLit(1)))))
	})
}

func declares(d *models.Declaration, name string, arity int) bool {
	for _, m := range d.MethodsNamed(name) {
		if len(m.Params) == arity {
			return true
		}
	}
	return false
}
