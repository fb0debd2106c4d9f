package parser

import (
	"github.com/toyz/jointc/internal/models"
)

// typeDecl parses class, interface, trait, enum and @interface declarations
func (p *groovyParser) typeDecl(ms modSet, owner *models.Declaration) *models.Declaration {
	start := ms.start
	if !ms.any {
		start = p.cur().Span.Start
	}
	d := &models.Declaration{
		Modifiers:          ms.mods,
		ExplicitVisibility: ms.explicitVis,
		Annotations:        ms.annotations,
		Owner:              owner,
		Unit:               p.unit,
		Origin:             models.OriginGroovy,
	}

	switch {
	case p.accept("class"):
		d.Kind = models.KindClass
	case p.accept("interface"), p.accept("trait"):
		d.Kind = models.KindInterface
		d.Modifiers |= models.ModInterface | models.ModAbstract
	case p.accept("enum"):
		d.Kind = models.KindEnum
		d.Modifiers |= models.ModEnum
	default:
		p.expect("@")
		p.expect("interface")
		d.Kind = models.KindAnnotation
		d.Modifiers |= models.ModInterface | models.ModAbstract | models.ModAnnotation
	}
	if !ms.explicitVis {
		d.Modifiers |= models.ModPublic
	}
	if owner != nil && (d.Kind != models.KindClass || owner.IsInterface()) {
		d.Modifiers |= models.ModStatic
	}

	name := p.expectIdent()
	d.Name = name.Text
	d.NameSpan = name.Span
	d.QualifiedName = qualifiedName(p.unit, owner, d.Name)
	d.BinaryName = binaryName(p.unit, owner, d.Name)

	if p.at("<") {
		d.TypeParams = p.typeParams()
	}
	if p.accept("extends") {
		if d.Kind == models.KindInterface {
			d.Interfaces = append(d.Interfaces, p.typeList()...)
		} else {
			d.Super = p.parseType()
		}
	}
	if p.accept("implements") {
		d.Interfaces = append(d.Interfaces, p.typeList()...)
	}

	prev := p.current
	p.current = d
	defer func() { p.current = prev }()

	bodyStart := p.cur().Span.Start
	if d.Kind == models.KindEnum {
		p.enumBody(d)
	} else {
		p.classBody(d)
	}
	d.BodySpan = p.spanFrom(bodyStart)
	d.Span = p.spanFrom(start)
	return d
}

// classBody parses { member* }, recovering from broken members
func (p *groovyParser) classBody(d *models.Declaration) {
	p.expect("{")
	p.members(d)
	p.expect("}")
}

func (p *groovyParser) members(d *models.Declaration) {
	for {
		p.skipSemis()
		if p.at("}") || p.atEOF() {
			return
		}
		start := p.pos
		if p.guard(func() { p.member(d) }) {
			failedAt := p.pos
			if failedAt < start {
				failedAt = start
			}
			p.recoverMember(start, failedAt)
			if p.pos == start {
				p.next()
			}
		}
	}
}

// member parses one class-body declaration and adds it to d
func (p *groovyParser) member(d *models.Declaration) {
	if p.at("{") {
		d.AddMember(p.initializer(false))
		return
	}
	if p.at("static") && p.peek(1).is("{") {
		staticStart := p.next().Span.Start
		init := p.initializer(true)
		init.Span.Start = staticStart
		d.AddMember(init)
		return
	}

	ms := p.modifiers()
	if p.atTypeKeyword() {
		d.AddMember(p.typeDecl(ms, d))
		return
	}
	for _, m := range p.methodOrField(ms, d) {
		d.AddMember(m)
	}
}

func (p *groovyParser) initializer(static bool) *models.Declaration {
	start := p.cur().Span.Start
	body := p.block()
	init := &models.Declaration{
		Kind:     models.KindInitializer,
		Unit:     p.unit,
		Origin:   models.OriginGroovy,
		Body:     body,
		Span:     p.spanFrom(start),
		NameSpan: models.Span{Start: start, End: start + 1},
		BodySpan: body.Span,
	}
	if static {
		init.Name = "<clinit>"
		init.Modifiers = models.ModStatic
	} else {
		init.Name = "<init>"
	}
	return init
}

// methodOrField parses the declaration after its modifiers: a constructor,
// a method or one or more fields sharing a type
func (p *groovyParser) methodOrField(ms modSet, owner *models.Declaration) []*models.Declaration {
	start := ms.start
	if !ms.any {
		start = p.cur().Span.Start
	}

	var typeParams []*models.TypeParam
	if p.at("<") {
		typeParams = p.typeParams()
	}

	// constructor: Owner(...)
	if !owner.Script && p.cur().Kind == tokIdent && p.cur().Text == owner.Name && p.peek(1).is("(") {
		name := p.next()
		ctor := p.newMember(models.KindConstructor, ms, owner, name)
		ctor.TypeParams = typeParams
		p.methodRest(ctor, owner)
		ctor.Span = p.spanFrom(start)
		return []*models.Declaration{ctor}
	}

	var typ *models.TypeRef
	switch {
	case p.at("def"):
		t := p.next()
		typ = &models.TypeRef{Name: models.DynamicTypeName, Span: t.Span}
	case ms.any && p.cur().Kind == tokIdent && p.peek(1).is("("):
		// untyped method after modifiers
	default:
		typ = p.parseType()
	}

	name := p.expectIdent()
	if p.at("(") {
		m := p.newMember(models.KindMethod, ms, owner, name)
		m.TypeParams = typeParams
		m.Return = typ
		if typ == nil {
			m.Return = &models.TypeRef{Name: models.DynamicTypeName, Span: models.NoSpan}
		}
		p.methodRest(m, owner)
		m.Span = p.spanFrom(start)
		return []*models.Declaration{m}
	}
	if typeParams != nil {
		p.failExpecting("'('")
	}

	if typ == nil {
		typ = &models.TypeRef{Name: models.DynamicTypeName, Span: models.NoSpan}
	}
	var fields []*models.Declaration
	for {
		f := p.newMember(models.KindField, ms, owner, name)
		f.Type = typ.Clone()
		if p.accept("=") {
			f.Init = p.expr()
		}
		f.Span = p.spanFrom(start)
		fields = append(fields, f)
		if !p.accept(",") {
			break
		}
		name = p.expectIdent()
	}
	p.endOfStatement()
	return fields
}

func cloneAnnotations(list []*models.Annotation) []*models.Annotation {
	out := make([]*models.Annotation, len(list))
	for i, a := range list {
		out[i] = a.Clone()
	}
	return out
}

// newMember creates a member with the dynamic language's implicit modifiers
func (p *groovyParser) newMember(kind models.DeclKind, ms modSet, owner *models.Declaration, name token) *models.Declaration {
	m := &models.Declaration{
		Kind:               kind,
		Name:               name.Text,
		NameSpan:           name.Span,
		Modifiers:          ms.mods,
		ExplicitVisibility: ms.explicitVis,
		Annotations:        ms.annotations,
		Unit:               p.unit,
		Origin:             models.OriginGroovy,
		BodySpan:           models.NoSpan,
	}
	if kind == models.KindField && len(ms.annotations) > 0 {
		m.Annotations = cloneAnnotations(ms.annotations)
	}

	switch {
	case owner.IsInterface():
		if kind == models.KindField {
			m.Modifiers |= models.ModPublic | models.ModStatic | models.ModFinal
		} else if !ms.explicitVis {
			m.Modifiers |= models.ModPublic
		}
	case kind == models.KindField && !ms.explicitVis:
		// a field without visibility is a property backed by a private field
		m.Property = true
		m.Modifiers |= models.ModPrivate
	case !ms.explicitVis:
		m.Modifiers |= models.ModPublic
	}
	return m
}

// methodRest parses (params) [throws ...] [default value] [body]
func (p *groovyParser) methodRest(m *models.Declaration, owner *models.Declaration) {
	m.Params = p.params()
	if p.accept("throws") {
		m.Throws = p.typeList()
	}
	if owner.Kind == models.KindAnnotation && p.accept("default") {
		m.Init = p.annotationValue()
	}

	if p.at("{") {
		bodyStart := p.cur().Span.Start
		m.Body = p.block()
		m.BodySpan = p.spanFrom(bodyStart)
		return
	}
	if m.Kind == models.KindConstructor {
		p.failExpecting("'{'")
	}
	if owner.IsInterface() || m.Modifiers.Has(models.ModAbstract) || m.Modifiers.Has(models.ModNative) {
		if !m.Modifiers.Has(models.ModStatic) && !m.Modifiers.Has(models.ModDefault) && !m.Modifiers.Has(models.ModNative) {
			m.Modifiers |= models.ModAbstract
		}
		p.endOfStatement()
		return
	}
	p.failExpecting("'{'")
}

// params parses a parenthesized parameter list
func (p *groovyParser) params() []*models.Param {
	p.expect("(")
	var out []*models.Param
	for !p.at(")") {
		out = append(out, p.param())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	for i, prm := range out {
		if prm.Varargs && i != len(out)-1 {
			p.fail(prm.Span, "The variable argument parameter must be the last parameter")
		}
	}
	return out
}

func (p *groovyParser) param() *models.Param {
	start := p.cur().Span.Start
	prm := &models.Param{}
	for {
		if p.at("@") {
			prm.Annotations = append(prm.Annotations, p.annotation())
			continue
		}
		if p.accept("final") {
			prm.Final = true
			continue
		}
		break
	}

	typed := false
	switch {
	case p.at("def"):
		t := p.next()
		prm.Type = &models.TypeRef{Name: models.DynamicTypeName, Span: t.Span}
		typed = true
	case p.cur().Kind == tokKeyword && primitiveKeywords[p.cur().Text]:
		typed = true
	case p.cur().Kind == tokIdent:
		n := p.peek(1)
		typed = n.Kind == tokIdent || n.is("<") || n.is(".") || n.is("[") || n.is("...")
	}
	if typed && prm.Type == nil {
		prm.Type = p.parseType()
	}
	if p.accept("...") {
		prm.Varargs = true
	}

	name := p.expectIdent()
	prm.Name = name.Text
	prm.NameSpan = name.Span
	if prm.Type == nil {
		prm.Type = &models.TypeRef{Name: models.DynamicTypeName, Span: models.NoSpan}
	}
	if p.accept("=") {
		prm.Default = p.expr()
	}
	prm.Span = p.spanFrom(start)
	return prm
}

// enums

// enumBody parses { constants [,] [;] member* }
func (p *groovyParser) enumBody(d *models.Declaration) {
	p.expect("{")
	p.enumConstants(d)
	p.skipSemis()
	p.members(d)
	p.expect("}")
}

func (p *groovyParser) enumConstants(d *models.Declaration) {
	for p.constantAhead() {
		c := p.enumConstant(d)
		c.Ordinal = len(d.Constants)
		d.Constants = append(d.Constants, c)
		if !p.accept(",") {
			return
		}
	}
}

// constantAhead reports whether an enum constant starts here: optional
// annotations, a name, then an argument list, a body, a separator or the
// end of the line
func (p *groovyParser) constantAhead() bool {
	ok := false
	p.try(func() {
		p.annotations()
		if p.cur().Kind != tokIdent {
			panic(&syntaxError{})
		}
		p.next()
		n := p.cur()
		ok = n.is(",") || n.is(";") || n.is("}") || n.is("(") || n.is("{") || n.NL
		panic(&syntaxError{})
	})
	return ok
}

func (p *groovyParser) enumConstant(enum *models.Declaration) *models.EnumConstant {
	start := p.cur().Span.Start
	c := &models.EnumConstant{Annotations: p.annotations()}
	name := p.expectIdent()
	c.Name = name.Text
	c.NameSpan = name.Span

	if p.at("(") && !p.cur().NL {
		c.Args, c.Named = p.arguments()
	}
	if p.at("{") {
		body := &models.Declaration{
			Kind:      models.KindClass,
			Name:      c.Name,
			Anonymous: true,
			Owner:     enum,
			Unit:      p.unit,
			Origin:    models.OriginGroovy,
			Super:     models.RefTo(enum),
			NameSpan:  c.NameSpan,
		}
		body.QualifiedName = enum.QualifiedName + "." + c.Name
		bodyStart := p.cur().Span.Start
		prev := p.current
		p.current = body
		p.classBody(body)
		p.current = prev
		body.BodySpan = p.spanFrom(bodyStart)
		body.Span = body.BodySpan
		c.Body = body
	}
	c.Span = p.spanFrom(start)
	return c
}
