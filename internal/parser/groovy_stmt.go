package parser

import (
	"github.com/toyz/jointc/internal/models"
)

// block parses { statement* }
func (p *groovyParser) block() *models.Block {
	start := p.expect("{").Span.Start
	b := &models.Block{}
	for {
		p.skipSemis()
		if p.at("}") || p.atEOF() {
			break
		}
		b.Stmts = append(b.Stmts, p.statement()...)
	}
	p.expect("}")
	b.Span = p.spanFrom(start)
	return b
}

// statement parses one statement; local declarations with several
// declarators yield one VarDecl each
func (p *groovyParser) statement() []models.Stmt {
	t := p.cur()
	start := t.Span.Start

	switch {
	case t.is("{"):
		return []models.Stmt{p.block()}
	case t.is("if"):
		return []models.Stmt{p.ifStmt()}
	case t.is("while"):
		p.next()
		p.expect("(")
		cond := p.expr()
		p.expect(")")
		body := p.body()
		return []models.Stmt{&models.While{Cond: cond, Body: body, Span: p.spanFrom(start)}}
	case t.is("for"):
		return []models.Stmt{p.forStmt()}
	case t.is("return"):
		p.next()
		var x models.Expr
		if !p.atStatementEnd() {
			x = p.expr()
		}
		p.endOfStatement()
		return []models.Stmt{&models.Return{X: x, Span: p.spanFrom(start)}}
	case t.is("break"), t.is("continue"):
		p.next()
		label := ""
		if p.cur().Kind == tokIdent && !p.cur().NL {
			label = p.next().Text
		}
		p.endOfStatement()
		if t.Text == "break" {
			return []models.Stmt{&models.Break{Label: label, Span: p.spanFrom(start)}}
		}
		return []models.Stmt{&models.Continue{Label: label, Span: p.spanFrom(start)}}
	case t.is("throw"):
		p.next()
		x := p.expr()
		p.endOfStatement()
		return []models.Stmt{&models.Throw{X: x, Span: p.spanFrom(start)}}
	case t.is("assert"):
		p.next()
		a := &models.Assert{Cond: p.expr()}
		if p.accept(":") || p.accept(",") {
			a.Message = p.expr()
		}
		p.endOfStatement()
		a.Span = p.spanFrom(start)
		return []models.Stmt{a}
	case t.is("try"):
		return []models.Stmt{p.tryStmt()}
	case t.is("synchronized") && p.peek(1).is("("):
		p.next()
		p.expect("(")
		lock := p.expr()
		p.expect(")")
		body := p.block()
		return []models.Stmt{&models.Sync{Lock: lock, Body: body, Span: p.spanFrom(start)}}
	case (t.is("this") || t.is("super")) && p.peek(1).is("("):
		p.next()
		args, named := p.arguments()
		p.endOfStatement()
		return []models.Stmt{&models.CtorCall{Super: t.Text == "super", Args: args, Named: named, Span: p.spanFrom(start)}}
	case t.Kind == tokIdent && p.peek(1).is(":") && !p.peek(1).NL:
		// labeled statement; labels only matter to break/continue
		p.next()
		p.next()
		return p.statement()
	case t.is("class"), t.is("interface"), t.is("enum"), t.is("trait"):
		p.fail(t.Span, "Class definition not expected here. Please define the class at an appropriate place or perhaps try using a block/Closure instead.")
	}

	if decls := p.localDecl(); decls != nil {
		return decls
	}

	x := p.expr()
	x = p.commandExpr(x)
	p.endOfStatement()
	return []models.Stmt{&models.ExprStmt{X: x, Span: p.spanFrom(start)}}
}

// body parses a loop or branch body, which may be a single statement
func (p *groovyParser) body() models.Stmt {
	if p.at("{") {
		return p.block()
	}
	if p.at(";") {
		t := p.next()
		return &models.Block{Span: t.Span}
	}
	stmts := p.statement()
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &models.Block{Stmts: stmts, Span: stmts[0].NodeSpan().Cover(stmts[len(stmts)-1].NodeSpan())}
}

func (p *groovyParser) atStatementEnd() bool {
	t := p.cur()
	return t.is(";") || t.is("}") || t.is("else") || t.NL || t.Kind == tokEOF
}

func (p *groovyParser) ifStmt() models.Stmt {
	start := p.expect("if").Span.Start
	p.expect("(")
	cond := p.expr()
	p.expect(")")
	s := &models.If{Cond: cond, Then: p.body()}
	if p.at(";") && p.peek(1).is("else") {
		p.next()
	}
	if p.accept("else") {
		s.Else = p.body()
	}
	s.Span = p.spanFrom(start)
	return s
}

func (p *groovyParser) forStmt() models.Stmt {
	start := p.expect("for").Span.Start
	p.expect("(")

	if in := p.forInHeader(); in != nil {
		in.Iter = p.expr()
		p.expect(")")
		in.Body = p.body()
		in.Span = p.spanFrom(start)
		return in
	}

	f := &models.For{}
	if !p.at(";") {
		if decls := p.localDeclNoEnd(); decls != nil {
			f.Init = decls
		} else {
			for {
				x := p.expr()
				f.Init = append(f.Init, &models.ExprStmt{X: x, Span: x.NodeSpan()})
				if !p.accept(",") {
					break
				}
			}
		}
	}
	p.expect(";")
	if !p.at(";") {
		f.Cond = p.expr()
	}
	p.expect(";")
	for !p.at(")") {
		f.Update = append(f.Update, p.expr())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	f.Body = p.body()
	f.Span = p.spanFrom(start)
	return f
}

// forInHeader parses [Type] name (in | :) and leaves the iterable to the
// caller; nil means the loop is a classic three-clause loop
func (p *groovyParser) forInHeader() *models.ForIn {
	var in *models.ForIn
	p.try(func() {
		p.accept("final")
		var typ *models.TypeRef
		if p.at("def") {
			p.next()
		} else if !(p.cur().Kind == tokIdent && (p.peek(1).is("in") || p.peek(1).is(":"))) {
			typ = p.parseType()
		}
		name := p.expectIdent()
		if !p.accept("in") {
			p.expect(":")
		}
		in = &models.ForIn{VarType: typ, Var: name.Text, VarSpan: name.Span}
	})
	return in
}

func (p *groovyParser) tryStmt() models.Stmt {
	start := p.expect("try").Span.Start
	s := &models.Try{Body: p.block()}
	for p.at("catch") {
		cstart := p.next().Span.Start
		p.expect("(")
		c := &models.Catch{}
		p.accept("final")
		if p.cur().Kind == tokIdent && p.peek(1).is(")") {
			c.Name = p.next().Text
		} else {
			if !p.accept("def") {
				c.Types = append(c.Types, p.parseType())
				for p.accept("|") {
					c.Types = append(c.Types, p.parseType())
				}
			}
			c.Name = p.expectIdent().Text
		}
		p.expect(")")
		c.Body = p.block()
		c.Span = p.spanFrom(cstart)
		s.Catches = append(s.Catches, c)
	}
	if p.accept("finally") {
		s.Finally = p.block()
	}
	if len(s.Catches) == 0 && s.Finally == nil {
		p.failExpecting("'catch' or 'finally'")
	}
	s.Span = p.spanFrom(start)
	return s
}

// localDecl parses a local variable declaration statement, or returns nil
// when the statement is not one
func (p *groovyParser) localDecl() []models.Stmt {
	decls := p.localDeclNoEnd()
	if decls != nil {
		p.endOfStatement()
	}
	return decls
}

func (p *groovyParser) localDeclNoEnd() []models.Stmt {
	start := p.cur().Span.Start
	pos, prevEnd := p.pos, p.prevEnd

	var annotations []*models.Annotation
	final, def := false, false
prefix:
	for !def {
		switch {
		case p.at("@") && !p.peek(1).is("interface"):
			annotations = append(annotations, p.annotation())
		case p.at("final"):
			p.next()
			final = true
		case p.at("def"):
			p.next()
			def = true
		default:
			break prefix
		}
	}
	prefixed := def || final || len(annotations) > 0

	var typ *models.TypeRef
	if !def {
		var parsed *models.TypeRef
		ok := p.try(func() {
			parsed = p.parseType()
			if !p.declaratorAhead() {
				panic(&syntaxError{})
			}
		})
		switch {
		case ok && (prefixed || isTypeName(parsed)):
			typ = parsed
		case ok && !prefixed:
			p.pos, p.prevEnd = pos, prevEnd
			return nil
		case !prefixed:
			return nil
		}
	}

	var out []models.Stmt
	for {
		name := p.expectIdent()
		v := &models.VarDecl{
			Type:        typ.Clone(),
			Name:        name.Text,
			NameSpan:    name.Span,
			Final:       final,
			Annotations: annotations,
		}
		if p.accept("=") {
			v.Init = p.expr()
		}
		v.Span = p.spanFrom(start)
		out = append(out, v)
		if !p.accept(",") {
			break
		}
	}
	return out
}

// declaratorAhead reports whether the current identifier is followed by
// something a declarator may be followed by
func (p *groovyParser) declaratorAhead() bool {
	if p.cur().Kind != tokIdent || p.cur().NL {
		return false
	}
	n := p.peek(1)
	return n.is("=") || n.is(",") || n.is(";") || n.is("}") || n.is(")") || n.NL || n.Kind == tokEOF
}

// commandExpr turns name arg, arg into a call when x is a plain name or a
// property access followed on the same line by an argument
func (p *groovyParser) commandExpr(x models.Expr) models.Expr {
	t := p.cur()
	if t.NL || !startsCommandArgument(t) {
		return x
	}
	var call *models.Call
	switch e := x.(type) {
	case *models.Ident:
		call = &models.Call{Name: e.Name, NameSpan: e.Span}
	case *models.FieldAccess:
		call = &models.Call{X: e.X, Name: e.Name, NameSpan: e.NameSpan, Safe: e.Safe, Spread: e.Spread}
	default:
		return x
	}
	call.Command = true
	for {
		if k := p.cur(); (k.Kind == tokIdent || k.Kind == tokString) && p.peek(1).is(":") {
			call.Named = append(call.Named, p.namedArg())
		} else {
			call.Args = append(call.Args, p.expr())
		}
		if !p.accept(",") {
			break
		}
	}
	call.Span = p.spanFrom(x.NodeSpan().Start)
	return call
}

func startsCommandArgument(t token) bool {
	switch t.Kind {
	case tokIdent, tokNumber, tokString:
		return true
	case tokKeyword:
		switch t.Text {
		case "this", "super", "new", "true", "false", "null":
			return true
		}
	}
	return false
}
