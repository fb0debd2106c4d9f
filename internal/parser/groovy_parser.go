package parser

import (
	"fmt"
	"strings"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
)

// GroovyFrontEnd parses dynamic-language sources
type GroovyFrontEnd struct{}

// NewGroovyFrontEnd creates the Groovy front end
func NewGroovyFrontEnd() *GroovyFrontEnd { return &GroovyFrontEnd{} }

// Name returns the front end name
func (*GroovyFrontEnd) Name() string { return "groovy" }

// Extensions returns the file extensions handled by the front end
func (*GroovyFrontEnd) Extensions() []string { return []string{".groovy", ".gvy", ".gy"} }

// Parse builds a compilation unit. Syntax errors are returned as *Problems;
// errors inside a member drop that member, errors outside any member make
// the unit fatal.
func (fe *GroovyFrontEnd) Parse(path, src string) (*models.CompilationUnit, error) {
	unit := models.NewCompilationUnit(path, src, models.LanguageGroovy)
	p := &groovyParser{unit: unit}

	toks, err := tokenize(path, src)
	if err != nil {
		lerr, ok := err.(*lexError)
		if !ok {
			return nil, errors.Wrapf(errors.ParseErrorCode, err, "failed to tokenize %s", path)
		}
		// parse what was lexed; the lexer failure is reported at its offset
		toks = append(toks, token{Kind: tokEOF, Span: models.Span{Start: lerr.offset, End: lerr.offset}, NL: true})
		p.toks = toks
		p.parseUnit()
		p.report(models.Span{Start: lerr.offset, End: lerr.offset + 1}, lerr.Error())
		unit.Fatal = true
	} else {
		p.toks = toks
		p.parseUnit()
	}

	if len(p.diags) > 0 {
		return unit, &Problems{Unit: unit, Diagnostics: p.diags}
	}
	return unit, nil
}

// syntaxError aborts the production being parsed
type syntaxError struct {
	span models.Span
	msg  string
}

type groovyParser struct {
	unit    *models.CompilationUnit
	toks    []token
	pos     int
	prevEnd int
	diags   []*errors.Diagnostic

	// current is the innermost type whose body is being parsed
	current *models.Declaration
	script  *models.Declaration
}

// token access

func (p *groovyParser) cur() token { return p.toks[p.pos] }

func (p *groovyParser) peek(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *groovyParser) atEOF() bool { return p.cur().Kind == tokEOF }

func (p *groovyParser) next() token {
	t := p.toks[p.pos]
	if t.Kind != tokEOF {
		p.pos++
		p.prevEnd = t.Span.End
	}
	return t
}

func (p *groovyParser) at(text string) bool { return p.cur().is(text) }

func (p *groovyParser) accept(text string) bool {
	if p.at(text) {
		p.next()
		return true
	}
	return false
}

func (p *groovyParser) expect(text string) token {
	if !p.at(text) {
		p.failExpecting("'" + text + "'")
	}
	return p.next()
}

func (p *groovyParser) expectIdent() token {
	if p.cur().Kind != tokIdent {
		p.failExpecting("an identifier")
	}
	return p.next()
}

// expectName accepts identifiers and keywords, as used after '.' and for
// named arguments
func (p *groovyParser) expectName() token {
	if k := p.cur().Kind; k != tokIdent && k != tokKeyword {
		p.failExpecting("an identifier")
	}
	return p.next()
}

// spanFrom returns the span from start to the end of the last consumed token
func (p *groovyParser) spanFrom(start int) models.Span {
	end := p.prevEnd
	if end < start {
		end = start
	}
	return models.Span{Start: start, End: end}
}

// errors

func (p *groovyParser) fail(span models.Span, format string, args ...interface{}) {
	panic(&syntaxError{span: span, msg: fmt.Sprintf(format, args...)})
}

func (p *groovyParser) failExpecting(what string) {
	t := p.cur()
	p.fail(t.Span, "expecting %s, found '%s'", what, t.describe())
}

func (p *groovyParser) failUnexpected() {
	t := p.cur()
	p.fail(t.Span, "unexpected token: %s", t.describe())
}

func (p *groovyParser) report(span models.Span, msg string) {
	pos := p.unit.Lines.Position(span.Start)
	if span.Len() == 0 {
		span.End = span.Start + 1
	}
	p.diags = append(p.diags, &errors.Diagnostic{
		Code:     errors.ParseErrorCode,
		Severity: errors.SeverityError,
		Category: errors.CategoryGroovy,
		Message:  fmt.Sprintf("%s @ line %d, column %d.", msg, pos.Line, pos.Column),
		Unit:     p.unit,
		Span:     span,
	})
}

// guard runs f and converts a syntax error into a diagnostic
func (p *groovyParser) guard(f func()) (failed bool) {
	defer func() {
		if r := recover(); r != nil {
			serr, ok := r.(*syntaxError)
			if !ok {
				panic(r)
			}
			p.report(serr.span, serr.msg)
			failed = true
		}
	}()
	f()
	return false
}

// try runs f speculatively; on a syntax error the position is restored and
// false is returned without reporting anything
func (p *groovyParser) try(f func()) (ok bool) {
	pos, prevEnd := p.pos, p.prevEnd
	defer func() {
		if r := recover(); r != nil {
			if _, isSyntax := r.(*syntaxError); !isSyntax {
				panic(r)
			}
			p.pos, p.prevEnd = pos, prevEnd
			ok = false
		}
	}()
	f()
	return true
}

// recoverMember skips the rest of a broken member: tokens are consumed until
// the enclosing body closes, a statement separator is found at member level,
// or a new line starts at member level after the failure point.
func (p *groovyParser) recoverMember(start, failedAt int) {
	p.pos = start
	depth := 0
	for !p.atEOF() {
		t := p.cur()
		switch {
		case t.is("{"), t.is("("), t.is("["):
			depth++
		case t.is("}"), t.is(")"), t.is("]"):
			if depth == 0 {
				return
			}
			depth--
			p.next()
			if depth == 0 && t.is("}") && p.pos > failedAt {
				return
			}
			continue
		case depth == 0 && t.is(";"):
			p.next()
			return
		case depth == 0 && t.NL && p.pos > failedAt:
			return
		}
		p.next()
	}
}

// unit structure

func (p *groovyParser) parseUnit() {
	failed := p.guard(func() {
		p.skipSemis()
		if p.at("package") || (p.at("@") && p.packageAhead()) {
			p.packageDecl()
		}
		p.skipSemis()
		for p.at("import") {
			p.importDecl()
			p.skipSemis()
		}
	})
	if failed {
		p.unit.Fatal = true
		return
	}

	for {
		p.skipSemis()
		if p.atEOF() {
			break
		}
		start := p.pos
		failed := p.guard(p.topLevel)
		if failed {
			failedAt := p.pos
			if p.pos <= start {
				failedAt = start
			}
			p.recoverMember(start, failedAt)
			if p.pos == start {
				p.next()
			}
		}
	}

	if p.script != nil {
		p.unit.Types = append(p.unit.Types, p.script)
	}
	if len(p.diags) > 0 && len(p.unit.Types) == 0 {
		p.unit.Fatal = true
	}
}

func (p *groovyParser) skipSemis() {
	for p.accept(";") {
	}
}

// packageAhead reports whether annotations precede a package clause
func (p *groovyParser) packageAhead() bool {
	ok := false
	p.try(func() {
		p.annotations()
		ok = p.at("package")
		panic(&syntaxError{})
	})
	return ok
}

func (p *groovyParser) packageDecl() {
	p.annotations()
	p.expect("package")
	name, span := p.qualifiedIdent()
	p.unit.Package = name
	p.unit.PackageSpan = span
	p.endOfStatement()
}

func (p *groovyParser) importDecl() {
	start := p.expect("import").Span.Start
	imp := &models.Import{}
	if p.accept("static") {
		imp.Static = true
	}
	nameStart := p.cur().Span.Start
	parts := []string{p.expectIdent().Text}
	for p.at(".") {
		p.next()
		if p.accept("*") {
			imp.Star = true
			break
		}
		parts = append(parts, p.expectName().Text)
	}
	imp.Name = strings.Join(parts, ".")
	imp.NameSpan = p.spanFrom(nameStart)
	if p.cur().Kind == tokKeyword && p.cur().Text == "as" {
		if imp.Star {
			p.failUnexpected()
		}
		p.next()
		imp.Alias = p.expectIdent().Text
	}
	imp.Span = p.spanFrom(start)
	p.unit.Imports = append(p.unit.Imports, imp)
	p.endOfStatement()
}

// endOfStatement checks that a simple statement is properly terminated
func (p *groovyParser) endOfStatement() {
	t := p.cur()
	if t.is(";") || t.NL || t.is("}") || t.Kind == tokEOF || t.is("else") {
		return
	}
	p.failUnexpected()
}

func (p *groovyParser) qualifiedIdent() (string, models.Span) {
	start := p.cur().Span.Start
	parts := []string{p.expectIdent().Text}
	for p.at(".") && (p.peek(1).Kind == tokIdent || p.peek(1).Kind == tokKeyword) {
		p.next()
		parts = append(parts, p.next().Text)
	}
	return strings.Join(parts, "."), p.spanFrom(start)
}

// topLevel parses a type declaration, a script method or a script statement
func (p *groovyParser) topLevel() {
	start := p.pos
	mods := p.modifiers()
	if p.atTypeKeyword() {
		d := p.typeDecl(mods, nil)
		p.unit.Types = append(p.unit.Types, d)
		return
	}

	if p.methodAhead(mods.any) {
		script := p.scriptClass()
		prev := p.current
		p.current = script
		defer func() { p.current = prev }()
		m := p.methodOrField(mods, script)
		for _, d := range m {
			script.AddMember(d)
		}
		return
	}

	p.pos = start
	script := p.scriptClass()
	prev := p.current
	p.current = script
	defer func() { p.current = prev }()
	script.Body.Stmts = append(script.Body.Stmts, p.statement()...)
	script.Body.Span = script.Body.Span.Cover(p.spanFrom(p.toks[start].Span.Start))
}

// methodAhead reports whether a method declaration starts here, after the
// modifiers: [<T>] (Type | def | void) name ( ... ) [throws ...] {
// The untyped form name(...) needs at least one modifier.
func (p *groovyParser) methodAhead(untyped bool) bool {
	ok := false
	p.try(func() {
		if p.at("<") {
			p.typeParams()
		}
		if !p.accept("def") {
			if untyped && p.cur().Kind == tokIdent && p.peek(1).is("(") {
				// name(...)
			} else {
				p.parseType()
			}
		}
		p.expectIdent()
		p.expect("(")
		p.skipBalanced("(", ")")
		if p.accept("throws") {
			p.parseType()
			for p.accept(",") {
				p.parseType()
			}
		}
		ok = p.at("{")
		panic(&syntaxError{})
	})
	return ok
}

// skipBalanced consumes tokens up to the closer matching an already
// consumed opener
func (p *groovyParser) skipBalanced(open, close string) {
	depth := 1
	for depth > 0 {
		if p.atEOF() {
			p.failExpecting("'" + close + "'")
		}
		t := p.next()
		if t.is(open) {
			depth++
		} else if t.is(close) {
			depth--
		}
	}
}

func (p *groovyParser) scriptClass() *models.Declaration {
	if p.script == nil {
		name := p.unit.BaseName()
		p.script = &models.Declaration{
			Kind:          models.KindClass,
			Name:          name,
			QualifiedName: qualifiedName(p.unit, nil, name),
			BinaryName:    binaryName(p.unit, nil, name),
			Modifiers:     models.ModPublic,
			Unit:          p.unit,
			Origin:        models.OriginGroovy,
			Script:        true,
			Span:          models.Span{Start: 0, End: len(p.unit.Source)},
			NameSpan:      models.Span{Start: 0, End: 0},
			BodySpan:      models.NoSpan,
			Body:          &models.Block{Span: models.NoSpan},
		}
	}
	return p.script
}

// modifiers

type modSet struct {
	start       int
	mods        models.Modifiers
	explicitVis bool
	annotations []*models.Annotation
	def         bool
	any         bool
}

func (p *groovyParser) modifiers() modSet {
	ms := modSet{start: p.cur().Span.Start}
	for {
		t := p.cur()
		if t.is("@") && !p.peek(1).is("interface") {
			ms.annotations = append(ms.annotations, p.annotation())
			ms.any = true
			continue
		}
		if t.Kind != tokKeyword {
			return ms
		}
		if t.Text == "def" {
			// def is a type placeholder; it ends the modifier list
			return ms
		}
		mod, ok := models.ParseModifier(t.Text)
		if !ok {
			return ms
		}
		if t.Text == "default" && !startsDeclaration(p.peek(1)) {
			return ms
		}
		if ms.mods&mod != 0 {
			p.fail(t.Span, "Cannot repeat modifier: %s", t.Text)
		}
		if mod&models.VisibilityMask != 0 {
			if ms.explicitVis {
				p.fail(t.Span, "Cannot have more than one visibility modifier")
			}
			ms.explicitVis = true
		}
		ms.mods |= mod
		ms.any = true
		p.next()
	}
}

// startsDeclaration reports whether t can follow a modifier keyword
func startsDeclaration(t token) bool {
	return t.Kind == tokIdent || (t.Kind == tokKeyword && t.Text != "default") || t.is("<") || t.is("@")
}

func (p *groovyParser) atTypeKeyword() bool {
	t := p.cur()
	return t.is("class") || t.is("interface") || t.is("enum") || t.is("trait") ||
		(t.is("@") && p.peek(1).is("interface"))
}

// annotations

func (p *groovyParser) annotations() []*models.Annotation {
	var out []*models.Annotation
	for p.at("@") && !p.peek(1).is("interface") {
		out = append(out, p.annotation())
	}
	return out
}

func (p *groovyParser) annotation() *models.Annotation {
	start := p.expect("@").Span.Start
	name, nameSpan := p.qualifiedIdent()
	a := &models.Annotation{Name: name, NameSpan: nameSpan}
	if p.at("(") && !p.cur().NL {
		p.next()
		if !p.at(")") {
			if p.cur().Kind == tokIdent && p.peek(1).is("=") {
				for {
					argStart := p.cur().Span.Start
					key := p.expectName().Text
					p.expect("=")
					val := p.annotationValue()
					a.Args = append(a.Args, &models.AnnotationArg{Name: key, Value: val, Span: p.spanFrom(argStart)})
					if !p.accept(",") {
						break
					}
				}
			} else {
				argStart := p.cur().Span.Start
				val := p.annotationValue()
				a.Args = append(a.Args, &models.AnnotationArg{Name: "value", Value: val, Span: p.spanFrom(argStart)})
			}
		}
		p.expect(")")
	}
	a.Span = p.spanFrom(start)
	return a
}

func (p *groovyParser) annotationValue() models.Expr {
	if p.at("@") {
		start := p.cur().Span.Start
		a := p.annotation()
		return &models.AnnotationValue{Annotation: a, Span: p.spanFrom(start)}
	}
	if p.at("[") {
		start := p.next().Span.Start
		list := &models.ListLit{}
		for !p.at("]") {
			list.Elems = append(list.Elems, p.annotationValue())
			if !p.accept(",") {
				break
			}
		}
		p.expect("]")
		list.Span = p.spanFrom(start)
		return list
	}
	return p.ternary()
}

// types

var primitiveKeywords = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// parseType parses Name(.Name)*[<args>][[]]* or a primitive type
func (p *groovyParser) parseType() *models.TypeRef {
	ref := p.parseTypeNoDims()
	for p.at("[") && p.peek(1).is("]") {
		p.next()
		p.next()
		ref.Dims++
	}
	ref.Span = p.spanFrom(ref.Span.Start)
	return ref
}

func (p *groovyParser) parseTypeNoDims() *models.TypeRef {
	t := p.cur()
	start := t.Span.Start
	if t.Kind == tokKeyword && (primitiveKeywords[t.Text] || t.Text == "def") {
		p.next()
		return &models.TypeRef{Name: t.Text, Span: p.spanFrom(start)}
	}
	parts := []string{p.expectIdent().Text}
	ref := &models.TypeRef{}
	for {
		if p.at("<") {
			p.typeArgs(ref)
		}
		if p.at(".") && p.peek(1).Kind == tokIdent {
			p.next()
			parts = append(parts, p.next().Text)
			continue
		}
		break
	}
	ref.Name = strings.Join(parts, ".")
	ref.Span = p.spanFrom(start)
	return ref
}

func (p *groovyParser) typeArgs(ref *models.TypeRef) {
	p.expect("<")
	if p.accept(">") {
		ref.Diamond = true
		return
	}
	for {
		ref.Args = append(ref.Args, p.typeArg())
		if !p.accept(",") {
			break
		}
	}
	p.expect(">")
}

func (p *groovyParser) typeArg() *models.TypeRef {
	if p.at("?") {
		start := p.next().Span.Start
		ref := &models.TypeRef{Name: "?", Wildcard: models.WildcardUnbounded}
		if p.accept("extends") {
			ref.Wildcard = models.WildcardExtends
			ref.Bound = p.parseType()
		} else if p.accept("super") {
			ref.Wildcard = models.WildcardSuper
			ref.Bound = p.parseType()
		}
		ref.Span = p.spanFrom(start)
		return ref
	}
	return p.parseType()
}

func (p *groovyParser) typeParams() []*models.TypeParam {
	p.expect("<")
	var out []*models.TypeParam
	for {
		start := p.cur().Span.Start
		tp := &models.TypeParam{Name: p.expectIdent().Text}
		if p.accept("extends") {
			tp.Bounds = append(tp.Bounds, p.parseType())
			for p.accept("&") {
				tp.Bounds = append(tp.Bounds, p.parseType())
			}
		}
		tp.Span = p.spanFrom(start)
		out = append(out, tp)
		if !p.accept(",") {
			break
		}
	}
	p.expect(">")
	return out
}

func (p *groovyParser) typeList() []*models.TypeRef {
	list := []*models.TypeRef{p.parseType()}
	for p.accept(",") {
		list = append(list, p.parseType())
	}
	return list
}

// isTypeName reports whether a parsed reference looks like a type rather
// than a variable: primitive, parameterized, array or capitalized last segment
func isTypeName(ref *models.TypeRef) bool {
	if ref == nil {
		return false
	}
	if primitiveKeywords[ref.Name] || len(ref.Args) > 0 || ref.Diamond || ref.Dims > 0 {
		return true
	}
	last := ref.Name
	if i := strings.LastIndexByte(last, '.'); i >= 0 {
		last = last[i+1:]
	}
	return last != "" && last[0] >= 'A' && last[0] <= 'Z'
}
