package parser

import (
	"github.com/toyz/jointc/internal/models"
)

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>>=": true, "&=": true, "|=": true, "^=": true, "?=": true,
}

// binary operator levels, loosest first
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"|"},
	{"^"},
	{"&"},
	{"==", "!=", "<=>", "===", "!==", "=~", "==~"},
}

// expr parses a full expression including assignment
func (p *groovyParser) expr() models.Expr {
	x := p.ternary()
	if t := p.cur(); t.Kind == tokOp && assignOps[t.Text] {
		p.next()
		value := p.expr()
		return &models.Assign{Op: t.Text, Target: x, Value: value, Span: x.NodeSpan().Cover(value.NodeSpan())}
	}
	return x
}

// ternary parses c ? a : b and the elvis form c ?: b
func (p *groovyParser) ternary() models.Expr {
	cond := p.binary(0)
	switch {
	case p.at("?:"):
		p.next()
		els := p.ternary()
		return &models.Ternary{Cond: cond, Else: els, Span: cond.NodeSpan().Cover(els.NodeSpan())}
	case p.at("?"):
		p.next()
		then := p.ternary()
		p.expect(":")
		els := p.ternary()
		return &models.Ternary{Cond: cond, Then: then, Else: els, Span: cond.NodeSpan().Cover(els.NodeSpan())}
	}
	return cond
}

func (p *groovyParser) binary(level int) models.Expr {
	if level == len(binaryLevels) {
		return p.relational()
	}
	x := p.binary(level + 1)
	for {
		t := p.cur()
		if t.Kind != tokOp || !contains(binaryLevels[level], t.Text) {
			return x
		}
		p.next()
		y := p.binary(level + 1)
		x = &models.Binary{Op: t.Text, X: x, Y: y, Span: x.NodeSpan().Cover(y.NodeSpan()), OpSpan: t.Span}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// relational parses comparisons, instanceof, in and as
func (p *groovyParser) relational() models.Expr {
	x := p.rangeExpr()
	for {
		t := p.cur()
		switch {
		case t.is("<"), t.is("<="), t.is(">"), t.is(">="), t.is("in"):
			p.next()
			y := p.rangeExpr()
			x = &models.Binary{Op: t.Text, X: x, Y: y, Span: x.NodeSpan().Cover(y.NodeSpan()), OpSpan: t.Span}
		case t.is("instanceof"), t.is("!") && p.peek(1).is("instanceof") && p.peek(1).Span.Start == t.Span.End:
			negated := t.is("!")
			if negated {
				p.next()
			}
			p.next()
			typ := p.parseType()
			x = &models.InstanceOf{X: x, Type: typ, Negated: negated, Span: x.NodeSpan().Cover(typ.Span)}
		case t.is("as"):
			p.next()
			typ := p.parseType()
			x = &models.Cast{Type: typ, X: x, Coerce: true, Span: x.NodeSpan().Cover(typ.Span)}
		default:
			return x
		}
	}
}

func (p *groovyParser) rangeExpr() models.Expr {
	x := p.shift()
	for p.at("..") || p.at("..<") {
		t := p.next()
		y := p.shift()
		x = &models.Binary{Op: t.Text, X: x, Y: y, Span: x.NodeSpan().Cover(y.NodeSpan()), OpSpan: t.Span}
	}
	return x
}

// shift parses << >> >>>; the right shifts are lexed as adjacent '>' tokens
func (p *groovyParser) shift() models.Expr {
	x := p.additive()
	for {
		t := p.cur()
		op := ""
		switch {
		case t.is("<<"):
			op = "<<"
		case t.is(">") && p.adjacent(1, ">"):
			op = ">>"
			if p.adjacent(2, ">") {
				op = ">>>"
			}
		default:
			return x
		}
		opStart := t.Span.Start
		n := len(op)
		if op == "<<" {
			n = 1
		}
		for i := 0; i < n; i++ {
			p.next()
		}
		y := p.additive()
		x = &models.Binary{Op: op, X: x, Y: y, Span: x.NodeSpan().Cover(y.NodeSpan()), OpSpan: p.spanFrom(opStart)}
	}
}

// adjacent reports whether the token n ahead is text and touches the one
// before it
func (p *groovyParser) adjacent(n int, text string) bool {
	t := p.peek(n)
	return t.is(text) && p.peek(n-1).Span.End == t.Span.Start
}

func (p *groovyParser) additive() models.Expr {
	x := p.multiplicative()
	for p.at("+") || p.at("-") {
		t := p.next()
		y := p.multiplicative()
		x = &models.Binary{Op: t.Text, X: x, Y: y, Span: x.NodeSpan().Cover(y.NodeSpan()), OpSpan: t.Span}
	}
	return x
}

func (p *groovyParser) multiplicative() models.Expr {
	x := p.unary()
	for p.at("*") || p.at("/") || p.at("%") {
		t := p.next()
		y := p.unary()
		x = &models.Binary{Op: t.Text, X: x, Y: y, Span: x.NodeSpan().Cover(y.NodeSpan()), OpSpan: t.Span}
	}
	return x
}

// unary parses prefix operators and casts; ** binds tighter than prefix
// minus, so -2**2 is -(2**2)
func (p *groovyParser) unary() models.Expr {
	t := p.cur()
	switch {
	case t.is("-"), t.is("+"), t.is("!"), t.is("~"), t.is("++"), t.is("--"):
		p.next()
		x := p.unary()
		return &models.Unary{Op: t.Text, X: x, Span: t.Span.Cover(x.NodeSpan())}
	case t.is("("):
		if c := p.castAhead(); c != nil {
			x := p.unary()
			c.X = x
			c.Span = c.Span.Cover(x.NodeSpan())
			return c
		}
	}
	return p.power()
}

// castAhead consumes (Type) when it is followed by a cast operand
func (p *groovyParser) castAhead() *models.Cast {
	var cast *models.Cast
	p.try(func() {
		start := p.expect("(").Span.Start
		typ := p.parseType()
		p.expect(")")
		if !isTypeName(typ) || !startsCastOperand(p.cur(), primitiveKeywords[typ.Name]) {
			panic(&syntaxError{})
		}
		cast = &models.Cast{Type: typ, Span: p.spanFrom(start)}
	})
	return cast
}

func startsCastOperand(t token, primitive bool) bool {
	switch t.Kind {
	case tokIdent, tokNumber, tokString:
		return true
	case tokKeyword:
		switch t.Text {
		case "this", "super", "new", "true", "false", "null":
			return true
		}
	case tokOp:
		switch t.Text {
		case "(", "[", "!", "~", "{":
			return true
		case "-", "+":
			return primitive
		}
	}
	return false
}

func (p *groovyParser) power() models.Expr {
	x := p.postfix(p.primary())
	if p.at("**") {
		t := p.next()
		y := p.unary()
		return &models.Binary{Op: "**", X: x, Y: y, Span: x.NodeSpan().Cover(y.NodeSpan()), OpSpan: t.Span}
	}
	return x
}

// postfix parses member access, calls, indexing, trailing closures and
// postfix increments
func (p *groovyParser) postfix(x models.Expr) models.Expr {
	for {
		t := p.cur()
		switch {
		case t.is(".") || t.is("?.") || t.is("*."):
			p.next()
			x = p.memberAccess(x, t)
		case t.is(".&"):
			p.next()
			name := p.expectName()
			x = &models.MethodPointer{X: x, Name: name.Text, Span: x.NodeSpan().Cover(name.Span)}
		case t.is("(") && !t.NL:
			args, named := p.arguments()
			x = p.applyCall(x, args, named)
		case t.is("[") && !t.NL:
			p.next()
			idx := p.expr()
			p.expect("]")
			x = &models.Index{X: x, Index: idx, Span: p.spanFrom(x.NodeSpan().Start)}
		case t.is("{") && !t.NL && acceptsTrailingClosure(x):
			cl := p.closure()
			x = p.applyCall(x, []models.Expr{cl}, nil)
		case (t.is("++") || t.is("--")) && !t.NL:
			p.next()
			x = &models.Unary{Op: t.Text, X: x, Postfix: true, Span: x.NodeSpan().Cover(t.Span)}
		default:
			return x
		}
	}
}

// memberAccess parses the name after '.', '?.' or '*.'
func (p *groovyParser) memberAccess(x models.Expr, op token) models.Expr {
	var name token
	if p.cur().Kind == tokString {
		name = p.next()
		name.Text = decodeString(name.Text, name.Triple)
	} else {
		name = p.expectName()
	}
	if name.Text == "class" && op.is(".") && !p.at("(") {
		if qn := models.QualifiedName(x); qn != "" {
			ref := &models.TypeRef{Name: qn, Span: x.NodeSpan()}
			return &models.ClassLit{Type: ref, Span: x.NodeSpan().Cover(name.Span)}
		}
	}
	fa := &models.FieldAccess{
		X:        x,
		Name:     name.Text,
		Safe:     op.is("?."),
		Spread:   op.is("*."),
		Span:     x.NodeSpan().Cover(name.Span),
		NameSpan: name.Span,
	}
	return fa
}

func acceptsTrailingClosure(x models.Expr) bool {
	switch x.(type) {
	case *models.Ident, *models.FieldAccess, *models.Call:
		return true
	}
	return false
}

// applyCall turns x(args) into a call: names become method calls, calls
// take the arguments as trailing closures, anything else is x.call(args)
func (p *groovyParser) applyCall(x models.Expr, args []models.Expr, named []*models.MapEntry) models.Expr {
	span := p.spanFrom(x.NodeSpan().Start)
	switch e := x.(type) {
	case *models.Ident:
		return &models.Call{Name: e.Name, Args: args, Named: named, Span: span, NameSpan: e.Span}
	case *models.FieldAccess:
		return &models.Call{X: e.X, Name: e.Name, Args: args, Named: named, Safe: e.Safe, Spread: e.Spread, Span: span, NameSpan: e.NameSpan}
	case *models.Call:
		if len(args) == 1 {
			if _, ok := args[0].(*models.Closure); ok && named == nil {
				e.Args = append(e.Args, args[0])
				e.Span = span
				return e
			}
		}
	case *models.This, *models.Super:
		return &models.Call{X: x, Name: "call", Args: args, Named: named, Span: span, NameSpan: x.NodeSpan()}
	}
	return &models.Call{X: x, Name: "call", Args: args, Named: named, Span: span, NameSpan: x.NodeSpan()}
}

// arguments parses ( [arg {, arg}] ) where an arg is an expression or a
// name: value pair
func (p *groovyParser) arguments() ([]models.Expr, []*models.MapEntry) {
	p.expect("(")
	var args []models.Expr
	var named []*models.MapEntry
	for !p.at(")") {
		if p.namedArgAhead() {
			named = append(named, p.namedArg())
		} else {
			args = append(args, p.expr())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return args, named
}

func (p *groovyParser) namedArgAhead() bool {
	k := p.cur().Kind
	return (k == tokIdent || k == tokKeyword || k == tokString) && p.peek(1).is(":")
}

func (p *groovyParser) namedArg() *models.MapEntry {
	t := p.next()
	key := &models.Literal{Kind: models.LitString, Value: t.Text, Span: t.Span}
	if t.Kind == tokString {
		key.Value = decodeString(t.Text, t.Triple)
	}
	p.expect(":")
	value := p.expr()
	return &models.MapEntry{Key: key, Value: value, Span: t.Span.Cover(value.NodeSpan())}
}

// primary parses literals, names, parenthesized expressions, collections,
// closures and object creation
func (p *groovyParser) primary() models.Expr {
	t := p.cur()
	switch t.Kind {
	case tokNumber:
		p.next()
		return numberLiteral(t)
	case tokString:
		p.next()
		return p.stringLiteral(t)
	case tokIdent:
		p.next()
		return &models.Ident{Name: t.Text, Span: t.Span}
	case tokKeyword:
		switch t.Text {
		case "true", "false":
			p.next()
			return &models.Literal{Kind: models.LitBool, Value: t.Text, Span: t.Span}
		case "null":
			p.next()
			return &models.Literal{Kind: models.LitNull, Value: "null", Span: t.Span}
		case "this":
			p.next()
			return &models.This{Span: t.Span}
		case "super":
			p.next()
			return &models.Super{Span: t.Span}
		case "new":
			return p.creator()
		}
		if primitiveKeywords[t.Text] && p.peek(1).is(".") && p.peek(2).is("class") {
			p.next()
			p.next()
			end := p.next()
			ref := &models.TypeRef{Name: t.Text, Span: t.Span}
			return &models.ClassLit{Type: ref, Span: t.Span.Cover(end.Span)}
		}
	case tokOp:
		switch t.Text {
		case "(":
			p.next()
			x := p.expr()
			p.expect(")")
			return x
		case "[":
			return p.collection()
		case "{":
			return p.closure()
		}
	}
	p.failUnexpected()
	return nil
}

// collection parses [a, b], [k: v] and [:]
func (p *groovyParser) collection() models.Expr {
	start := p.expect("[").Span.Start
	if p.at(":") && p.peek(1).is("]") {
		p.next()
		p.next()
		return &models.MapLit{Span: p.spanFrom(start)}
	}
	if p.accept("]") {
		return &models.ListLit{Span: p.spanFrom(start)}
	}

	if p.mapKeyAhead() {
		m := &models.MapLit{}
		for !p.at("]") {
			m.Entries = append(m.Entries, p.mapEntry())
			if !p.accept(",") {
				break
			}
		}
		p.expect("]")
		m.Span = p.spanFrom(start)
		return m
	}

	l := &models.ListLit{}
	for !p.at("]") {
		l.Elems = append(l.Elems, p.expr())
		if !p.accept(",") {
			break
		}
	}
	p.expect("]")
	l.Span = p.spanFrom(start)
	return l
}

func (p *groovyParser) mapKeyAhead() bool {
	if p.namedArgAhead() || (p.cur().Kind == tokNumber && p.peek(1).is(":")) {
		return true
	}
	if !p.at("(") {
		return false
	}
	ok := false
	p.try(func() {
		p.next()
		p.expr()
		p.expect(")")
		ok = p.at(":")
		panic(&syntaxError{})
	})
	return ok
}

func (p *groovyParser) mapEntry() *models.MapEntry {
	if p.namedArgAhead() {
		return p.namedArg()
	}
	var key models.Expr
	if p.cur().Kind == tokNumber {
		key = numberLiteral(p.next())
	} else {
		p.expect("(")
		key = p.expr()
		p.expect(")")
	}
	p.expect(":")
	value := p.expr()
	return &models.MapEntry{Key: key, Value: value, Span: key.NodeSpan().Cover(value.NodeSpan())}
}

// closure parses { [params ->] statements }
func (p *groovyParser) closure() *models.Closure {
	start := p.expect("{").Span.Start
	cl := &models.Closure{ImplicitIt: true}

	if p.accept("->") {
		cl.ImplicitIt = false
	} else {
		var params []*models.Param
		if p.try(func() {
			params = p.closureParams()
			p.expect("->")
		}) {
			cl.Params = params
			cl.ImplicitIt = false
		}
	}

	body := &models.Block{}
	bodyStart := p.cur().Span.Start
	for {
		p.skipSemis()
		if p.at("}") || p.atEOF() {
			break
		}
		body.Stmts = append(body.Stmts, p.statement()...)
	}
	p.expect("}")
	body.Span = p.spanFrom(bodyStart)
	cl.Body = body
	cl.Span = p.spanFrom(start)
	return cl
}

func (p *groovyParser) closureParams() []*models.Param {
	var out []*models.Param
	for {
		out = append(out, p.param())
		if !p.accept(",") {
			return out
		}
	}
}

// creator parses new T(args) [body], new T[n]... and new T[] {init}
func (p *groovyParser) creator() models.Expr {
	start := p.expect("new").Span.Start
	typ := p.parseTypeNoDims()
	n := &models.New{Type: typ}

	if p.at("[") {
		for p.accept("[") {
			if p.accept("]") {
				typ.Dims++
				continue
			}
			n.Dims = append(n.Dims, p.expr())
			p.expect("]")
			typ.Dims++
		}
		if p.at("{") && len(n.Dims) == 0 {
			n.Init = p.arrayInit()
		}
		typ.Span = p.spanFrom(typ.Span.Start)
		n.Span = p.spanFrom(start)
		return n
	}

	n.Args, n.Named = p.arguments()
	if p.at("{") && !p.cur().NL {
		body := &models.Declaration{
			Kind:      models.KindClass,
			Anonymous: true,
			Owner:     p.current,
			Unit:      p.unit,
			Origin:    models.OriginGroovy,
			Super:     typ,
			NameSpan:  typ.Span,
		}
		if p.current != nil {
			body.QualifiedName = p.current.QualifiedName
		}
		bodyStart := p.cur().Span.Start
		prev := p.current
		p.current = body
		p.classBody(body)
		p.current = prev
		body.BodySpan = p.spanFrom(bodyStart)
		body.Span = body.BodySpan
		n.Body = body
	}
	n.Span = p.spanFrom(start)
	return n
}

func (p *groovyParser) arrayInit() *models.ListLit {
	start := p.expect("{").Span.Start
	l := &models.ListLit{}
	for !p.at("}") {
		if p.at("{") {
			l.Elems = append(l.Elems, p.arrayInit())
		} else {
			l.Elems = append(l.Elems, p.expr())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	l.Span = p.spanFrom(start)
	return l
}
