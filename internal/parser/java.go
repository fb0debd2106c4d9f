package parser

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/models"
)

// JavaFrontEnd parses host-language sources with tree-sitter. Parsers are
// pooled; a front end is safe for concurrent use.
type JavaFrontEnd struct {
	lang *sitter.Language
	pool sync.Pool
}

// NewJavaFrontEnd creates the Java front end
func NewJavaFrontEnd() *JavaFrontEnd {
	fe := &JavaFrontEnd{lang: sitter.NewLanguage(tree_sitter_java.Language())}
	fe.pool.New = func() any {
		sp := sitter.NewParser()
		_ = sp.SetLanguage(fe.lang)
		return sp
	}
	return fe
}

// Name returns the front end name
func (*JavaFrontEnd) Name() string { return "java" }

// Extensions returns the file extensions handled by the front end
func (*JavaFrontEnd) Extensions() []string { return []string{".java"} }

// Parse builds a compilation unit. Method bodies other than explicit
// constructor invocations are kept as opaque text.
func (fe *JavaFrontEnd) Parse(path, src string) (*models.CompilationUnit, error) {
	sp := fe.pool.Get().(*sitter.Parser)
	defer func() {
		sp.Reset()
		fe.pool.Put(sp)
	}()

	source := []byte(src)
	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, errors.Newf(errors.ParseErrorCode, "failed to parse %s", path)
	}
	defer tree.Close()

	unit := models.NewCompilationUnit(path, src, models.LanguageJava)
	b := &javaBuilder{unit: unit, src: source}
	root := tree.RootNode()
	b.program(root)
	if root.HasError() {
		b.syntaxErrors(root)
	}

	if len(b.diags) > 0 {
		if len(unit.Types) == 0 {
			unit.Fatal = true
		}
		return unit, &Problems{Unit: unit, Diagnostics: b.diags}
	}
	return unit, nil
}

type javaBuilder struct {
	unit  *models.CompilationUnit
	src   []byte
	diags []*errors.Diagnostic
}

func (b *javaBuilder) text(n *sitter.Node) string { return n.Utf8Text(b.src) }

func (b *javaBuilder) span(n *sitter.Node) models.Span {
	return models.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

// namedChildren returns the named children that are not comments or errors
func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil || c.IsError() || c.IsMissing() {
			continue
		}
		switch c.Kind() {
		case "line_comment", "block_comment":
			continue
		}
		out = append(out, c)
	}
	return out
}

func childOfKind(n *sitter.Node, kinds ...string) *sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		for _, k := range kinds {
			if c.Kind() == k {
				return c
			}
		}
	}
	return nil
}

func (b *javaBuilder) program(root *sitter.Node) {
	for _, n := range namedChildren(root) {
		switch n.Kind() {
		case "package_declaration":
			if name := childOfKind(n, "scoped_identifier", "identifier"); name != nil {
				b.unit.Package = b.text(name)
				b.unit.PackageSpan = b.span(name)
			}
		case "import_declaration":
			b.importDecl(n)
		default:
			if d := b.typeDecl(n, nil); d != nil {
				b.unit.Types = append(b.unit.Types, d)
			}
		}
	}
}

func (b *javaBuilder) importDecl(n *sitter.Node) {
	imp := &models.Import{Span: b.span(n)}
	name := childOfKind(n, "scoped_identifier", "identifier")
	if name == nil {
		return
	}
	imp.Name = b.text(name)
	imp.NameSpan = b.span(name)
	imp.Static = childOfKind(n, "static") != nil
	if star := childOfKind(n, "asterisk"); star != nil {
		imp.Star = true
		imp.NameSpan.End = int(star.EndByte())
	}
	b.unit.Imports = append(b.unit.Imports, imp)
}

// typeDecl converts a class, interface, enum or annotation type; other
// nodes yield nil
func (b *javaBuilder) typeDecl(n *sitter.Node, owner *models.Declaration) *models.Declaration {
	d := &models.Declaration{
		Owner:  owner,
		Unit:   b.unit,
		Origin: models.OriginJava,
		Span:   b.span(n),
	}
	switch n.Kind() {
	case "class_declaration":
		d.Kind = models.KindClass
	case "interface_declaration":
		d.Kind = models.KindInterface
		d.Modifiers |= models.ModInterface | models.ModAbstract
	case "enum_declaration":
		d.Kind = models.KindEnum
		d.Modifiers |= models.ModEnum
	case "annotation_type_declaration":
		d.Kind = models.KindAnnotation
		d.Modifiers |= models.ModInterface | models.ModAbstract | models.ModAnnotation
	default:
		return nil
	}

	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	d.Name = b.text(name)
	d.NameSpan = b.span(name)
	d.QualifiedName = qualifiedName(b.unit, owner, d.Name)
	d.BinaryName = binaryName(b.unit, owner, d.Name)

	b.modifiers(n, d)
	if owner != nil {
		if owner.IsInterface() {
			d.Modifiers |= models.ModPublic | models.ModStatic
		}
		if d.Kind != models.KindClass {
			d.Modifiers |= models.ModStatic
		}
	}

	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		d.TypeParams = b.typeParams(tp)
	}
	if sc := n.ChildByFieldName("superclass"); sc != nil {
		if t := firstType(sc); t != nil {
			d.Super = b.typeRef(t)
		}
	}
	if ifs := n.ChildByFieldName("interfaces"); ifs != nil {
		d.Interfaces = append(d.Interfaces, b.typeList(ifs)...)
	}
	if ext := childOfKind(n, "extends_interfaces"); ext != nil {
		d.Interfaces = append(d.Interfaces, b.typeList(ext)...)
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return d
	}
	d.BodySpan = b.span(body)
	for _, m := range namedChildren(body) {
		switch m.Kind() {
		case "enum_constant":
			c := b.enumConstant(m, d)
			c.Ordinal = len(d.Constants)
			d.Constants = append(d.Constants, c)
		case "enum_body_declarations":
			for _, bm := range namedChildren(m) {
				b.member(bm, d)
			}
		default:
			b.member(m, d)
		}
	}
	return d
}

// firstType returns the first type node below n
func firstType(n *sitter.Node) *sitter.Node {
	for _, c := range namedChildren(n) {
		if isTypeNode(c) {
			return c
		}
	}
	return nil
}

func isTypeNode(n *sitter.Node) bool {
	switch n.Kind() {
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type",
		"integral_type", "floating_point_type", "boolean_type", "void_type", "annotated_type":
		return true
	}
	return false
}

func (b *javaBuilder) typeList(n *sitter.Node) []*models.TypeRef {
	var out []*models.TypeRef
	for _, c := range namedChildren(n) {
		if c.Kind() == "type_list" {
			return b.typeList(c)
		}
		if isTypeNode(c) {
			out = append(out, b.typeRef(c))
		}
	}
	return out
}

// modifiers applies the modifiers and annotations of n to d
func (b *javaBuilder) modifiers(n *sitter.Node, d *models.Declaration) {
	mods := childOfKind(n, "modifiers")
	if mods == nil {
		return
	}
	for i := uint(0); i < mods.ChildCount(); i++ {
		c := mods.Child(i)
		switch c.Kind() {
		case "marker_annotation", "annotation":
			d.Annotations = append(d.Annotations, b.annotation(c))
		default:
			if m, ok := models.ParseModifier(c.Kind()); ok {
				d.Modifiers |= m
				if m&models.VisibilityMask != 0 {
					d.ExplicitVisibility = true
				}
			}
		}
	}
	for _, a := range d.Annotations {
		if a.SimpleName() == "Deprecated" {
			d.Deprecated = true
		}
	}
}

func (b *javaBuilder) annotations(n *sitter.Node) []*models.Annotation {
	var out []*models.Annotation
	mods := childOfKind(n, "modifiers")
	if mods == nil {
		return nil
	}
	for _, c := range namedChildren(mods) {
		if c.Kind() == "marker_annotation" || c.Kind() == "annotation" {
			out = append(out, b.annotation(c))
		}
	}
	return out
}

func (b *javaBuilder) annotation(n *sitter.Node) *models.Annotation {
	a := &models.Annotation{Span: b.span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		a.Name = b.text(name)
		a.NameSpan = b.span(name)
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return a
	}
	for _, c := range namedChildren(args) {
		if c.Kind() == "element_value_pair" {
			key := c.ChildByFieldName("key")
			value := c.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			a.Args = append(a.Args, &models.AnnotationArg{Name: b.text(key), Value: b.elementValue(value), Span: b.span(c)})
			continue
		}
		a.Args = append(a.Args, &models.AnnotationArg{Name: "value", Value: b.elementValue(c), Span: b.span(c)})
	}
	return a
}

func (b *javaBuilder) elementValue(n *sitter.Node) models.Expr {
	switch n.Kind() {
	case "element_value_array_initializer":
		l := &models.ListLit{Span: b.span(n)}
		for _, c := range namedChildren(n) {
			l.Elems = append(l.Elems, b.elementValue(c))
		}
		return l
	case "marker_annotation", "annotation":
		return &models.AnnotationValue{Annotation: b.annotation(n), Span: b.span(n)}
	}
	return b.expr(n)
}

// types

func (b *javaBuilder) typeRef(n *sitter.Node) *models.TypeRef {
	switch n.Kind() {
	case "generic_type":
		var ref *models.TypeRef
		for _, c := range namedChildren(n) {
			switch c.Kind() {
			case "type_identifier", "scoped_type_identifier":
				ref = b.typeRef(c)
			case "type_arguments":
				if ref == nil {
					continue
				}
				args := namedChildren(c)
				if len(args) == 0 {
					ref.Diamond = true
				}
				for _, a := range args {
					ref.Args = append(ref.Args, b.typeArg(a))
				}
			}
		}
		if ref == nil {
			ref = &models.TypeRef{Name: b.text(n)}
		}
		ref.Span = b.span(n)
		return ref
	case "scoped_type_identifier":
		parts := namedChildren(n)
		if len(parts) == 0 {
			break
		}
		prefix := b.typeRef(parts[0])
		name := prefix.Name
		if len(parts) > 1 {
			name += "." + b.text(parts[len(parts)-1])
		}
		return &models.TypeRef{Name: name, Span: b.span(n)}
	case "array_type":
		elem := n.ChildByFieldName("element")
		if elem == nil {
			break
		}
		ref := b.typeRef(elem)
		if dims := n.ChildByFieldName("dimensions"); dims != nil {
			ref.Dims += strings.Count(b.text(dims), "[")
		}
		ref.Span = b.span(n)
		return ref
	case "annotated_type":
		if t := firstType(n); t != nil {
			return b.typeRef(t)
		}
	}
	return &models.TypeRef{Name: b.text(n), Span: b.span(n)}
}

func (b *javaBuilder) typeArg(n *sitter.Node) *models.TypeRef {
	if n.Kind() != "wildcard" {
		return b.typeRef(n)
	}
	ref := &models.TypeRef{Name: "?", Wildcard: models.WildcardUnbounded, Span: b.span(n)}
	if bound := firstType(n); bound != nil {
		ref.Bound = b.typeRef(bound)
		ref.Wildcard = models.WildcardExtends
		if childOfKind(n, "super") != nil {
			ref.Wildcard = models.WildcardSuper
		}
	}
	return ref
}

func (b *javaBuilder) typeParams(n *sitter.Node) []*models.TypeParam {
	var out []*models.TypeParam
	for _, c := range namedChildren(n) {
		if c.Kind() != "type_parameter" {
			continue
		}
		tp := &models.TypeParam{Span: b.span(c)}
		for _, part := range namedChildren(c) {
			switch part.Kind() {
			case "type_identifier", "identifier":
				if tp.Name == "" {
					tp.Name = b.text(part)
				}
			case "type_bound":
				for _, t := range namedChildren(part) {
					tp.Bounds = append(tp.Bounds, b.typeRef(t))
				}
			}
		}
		out = append(out, tp)
	}
	return out
}

// members

func (b *javaBuilder) member(n *sitter.Node, owner *models.Declaration) {
	switch n.Kind() {
	case "field_declaration", "constant_declaration":
		for _, f := range b.fields(n, owner) {
			owner.AddMember(f)
		}
	case "method_declaration", "annotation_type_element_declaration":
		if m := b.method(n, owner); m != nil {
			owner.AddMember(m)
		}
	case "constructor_declaration":
		if c := b.constructor(n, owner); c != nil {
			owner.AddMember(c)
		}
	case "static_initializer", "block":
		owner.AddMember(b.initializer(n))
	default:
		if d := b.typeDecl(n, owner); d != nil {
			owner.AddMember(d)
		}
	}
}

func (b *javaBuilder) newMember(kind models.DeclKind, n *sitter.Node, owner *models.Declaration) *models.Declaration {
	d := &models.Declaration{
		Kind:   kind,
		Owner:  owner,
		Unit:   b.unit,
		Origin: models.OriginJava,
		Span:   b.span(n),
	}
	b.modifiers(n, d)
	return d
}

func (b *javaBuilder) fields(n *sitter.Node, owner *models.Declaration) []*models.Declaration {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	var out []*models.Declaration
	for i := uint(0); i < n.NamedChildCount(); i++ {
		decl := n.NamedChild(i)
		if decl.Kind() != "variable_declarator" {
			continue
		}
		name := decl.ChildByFieldName("name")
		if name == nil {
			continue
		}
		f := b.newMember(models.KindField, n, owner)
		f.Name = b.text(name)
		f.NameSpan = b.span(name)
		f.Type = b.typeRef(typeNode)
		if dims := decl.ChildByFieldName("dimensions"); dims != nil {
			f.Type.Dims += strings.Count(b.text(dims), "[")
		}
		if value := decl.ChildByFieldName("value"); value != nil {
			f.Init = b.expr(value)
		}
		if owner.IsInterface() {
			f.Modifiers |= models.ModPublic | models.ModStatic | models.ModFinal
		}
		out = append(out, f)
	}
	return out
}

func (b *javaBuilder) method(n *sitter.Node, owner *models.Declaration) *models.Declaration {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	m := b.newMember(models.KindMethod, n, owner)
	m.Name = b.text(name)
	m.NameSpan = b.span(name)
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		m.TypeParams = b.typeParams(tp)
	}
	if t := n.ChildByFieldName("type"); t != nil {
		m.Return = b.typeRef(t)
		if dims := n.ChildByFieldName("dimensions"); dims != nil {
			m.Return.Dims += strings.Count(b.text(dims), "[")
		}
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		m.Params = b.params(params)
	}
	m.Throws = b.throws(n)
	if def := n.ChildByFieldName("value"); def != nil {
		m.Init = b.elementValue(def)
	}

	body := n.ChildByFieldName("body")
	if body != nil {
		m.BodySpan = b.span(body)
		m.Body = b.opaqueBody(body)
	}
	if owner.IsInterface() {
		if !m.ExplicitVisibility {
			m.Modifiers |= models.ModPublic
		}
		if body == nil && !m.Modifiers.Has(models.ModStatic) {
			m.Modifiers |= models.ModAbstract
		}
	}
	return m
}

func (b *javaBuilder) constructor(n *sitter.Node, owner *models.Declaration) *models.Declaration {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	c := b.newMember(models.KindConstructor, n, owner)
	c.Name = b.text(name)
	c.NameSpan = b.span(name)
	if params := n.ChildByFieldName("parameters"); params != nil {
		c.Params = b.params(params)
	}
	c.Throws = b.throws(n)
	if owner.Kind == models.KindEnum && !c.ExplicitVisibility {
		c.Modifiers |= models.ModPrivate
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return c
	}
	c.BodySpan = b.span(body)
	c.Body = &models.Block{Span: b.span(body)}
	rest := models.Span{Start: int(body.StartByte()) + 1, End: int(body.EndByte()) - 1}
	if inv := childOfKind(body, "explicit_constructor_invocation"); inv != nil {
		call := &models.CtorCall{Span: b.span(inv)}
		if ctor := inv.ChildByFieldName("constructor"); ctor != nil {
			call.Super = ctor.Kind() == "super"
		}
		if args := inv.ChildByFieldName("arguments"); args != nil {
			call.Args = b.arguments(args)
		}
		c.Body.Stmts = append(c.Body.Stmts, call)
		rest.Start = int(inv.EndByte())
	}
	if text := strings.TrimSpace(string(b.src[rest.Start:rest.End])); text != "" {
		c.Body.Stmts = append(c.Body.Stmts, &models.OpaqueStmt{Text: text, Span: rest})
	}
	return c
}

// opaqueBody keeps the statements of a block as uninterpreted text
func (b *javaBuilder) opaqueBody(n *sitter.Node) *models.Block {
	block := &models.Block{Span: b.span(n)}
	if n.EndByte()-n.StartByte() < 2 {
		return block
	}
	inner := models.Span{Start: int(n.StartByte()) + 1, End: int(n.EndByte()) - 1}
	if text := strings.TrimSpace(string(b.src[inner.Start:inner.End])); text != "" {
		block.Stmts = append(block.Stmts, &models.OpaqueStmt{Text: text, Span: inner})
	}
	return block
}

func (b *javaBuilder) initializer(n *sitter.Node) *models.Declaration {
	d := &models.Declaration{
		Kind:     models.KindInitializer,
		Name:     "<init>",
		Unit:     b.unit,
		Origin:   models.OriginJava,
		Span:     b.span(n),
		NameSpan: models.Span{Start: int(n.StartByte()), End: int(n.StartByte()) + 1},
	}
	block := n
	if n.Kind() == "static_initializer" {
		d.Name = "<clinit>"
		d.Modifiers = models.ModStatic
		if inner := childOfKind(n, "block"); inner != nil {
			block = inner
		}
	}
	d.BodySpan = b.span(block)
	d.Body = b.opaqueBody(block)
	return d
}

func (b *javaBuilder) params(n *sitter.Node) []*models.Param {
	var out []*models.Param
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "formal_parameter":
			p := &models.Param{Span: b.span(c), Annotations: b.annotations(c)}
			if t := c.ChildByFieldName("type"); t != nil {
				p.Type = b.typeRef(t)
			}
			if name := c.ChildByFieldName("name"); name != nil {
				p.Name = b.text(name)
				p.NameSpan = b.span(name)
			}
			if dims := c.ChildByFieldName("dimensions"); dims != nil && p.Type != nil {
				p.Type.Dims += strings.Count(b.text(dims), "[")
			}
			p.Final = hasModifier(c, "final")
			out = append(out, p)
		case "spread_parameter":
			p := &models.Param{Span: b.span(c), Annotations: b.annotations(c), Varargs: true}
			if t := firstType(c); t != nil {
				p.Type = b.typeRef(t)
			}
			if decl := childOfKind(c, "variable_declarator"); decl != nil {
				if name := decl.ChildByFieldName("name"); name != nil {
					p.Name = b.text(name)
					p.NameSpan = b.span(name)
				}
			}
			p.Final = hasModifier(c, "final")
			out = append(out, p)
		}
	}
	return out
}

func hasModifier(n *sitter.Node, word string) bool {
	mods := childOfKind(n, "modifiers")
	return mods != nil && childOfKind(mods, word) != nil
}

func (b *javaBuilder) throws(n *sitter.Node) []*models.TypeRef {
	th := childOfKind(n, "throws")
	if th == nil {
		return nil
	}
	var out []*models.TypeRef
	for _, c := range namedChildren(th) {
		if isTypeNode(c) {
			out = append(out, b.typeRef(c))
		}
	}
	return out
}

func (b *javaBuilder) enumConstant(n *sitter.Node, enum *models.Declaration) *models.EnumConstant {
	c := &models.EnumConstant{Span: b.span(n), Annotations: b.annotations(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		c.Name = b.text(name)
		c.NameSpan = b.span(name)
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		c.Args = b.arguments(args)
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return c
	}
	anon := &models.Declaration{
		Kind:          models.KindClass,
		Name:          c.Name,
		QualifiedName: enum.QualifiedName + "." + c.Name,
		Anonymous:     true,
		Owner:         enum,
		Unit:          b.unit,
		Origin:        models.OriginJava,
		Super:         models.RefTo(enum),
		Span:          b.span(body),
		NameSpan:      c.NameSpan,
		BodySpan:      b.span(body),
	}
	for _, m := range namedChildren(body) {
		b.member(m, anon)
	}
	c.Body = anon
	return c
}

// syntax errors

// syntaxErrors reports ERROR and MISSING nodes in document order; nested
// errors inside a reported ERROR node are not reported again
func (b *javaBuilder) syntaxErrors(n *sitter.Node) {
	switch {
	case n.IsMissing():
		b.report(b.span(n), fmt.Sprintf("Syntax error, insert \"%s\" to complete", n.Kind()))
		return
	case n.IsError():
		tok := n
		for tok.ChildCount() > 0 {
			tok = tok.Child(0)
		}
		b.report(b.span(tok), fmt.Sprintf("Syntax error on token \"%s\", delete this token", b.text(tok)))
		return
	}
	if !n.HasError() {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		b.syntaxErrors(n.Child(i))
	}
}

func (b *javaBuilder) report(span models.Span, msg string) {
	if span.Len() == 0 {
		span.End = span.Start + 1
	}
	b.diags = append(b.diags, &errors.Diagnostic{
		Code:     errors.ParseErrorCode,
		Severity: errors.SeverityError,
		Message:  msg,
		Unit:     b.unit,
		Span:     span,
	})
}
