package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/toyz/jointc/internal/models"
)

// expr converts the expression forms that declarations carry (field
// initializers, constant arguments, annotation values); anything else is kept
// as opaque text
func (b *javaBuilder) expr(n *sitter.Node) models.Expr {
	span := b.span(n)
	switch n.Kind() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		return b.integerLiteral(n)
	case "decimal_floating_point_literal":
		text := strings.ReplaceAll(b.text(n), "_", "")
		kind := models.LitDouble
		switch text[len(text)-1] {
		case 'f', 'F':
			kind = models.LitFloat
			text = text[:len(text)-1]
		case 'd', 'D':
			text = text[:len(text)-1]
		}
		return &models.Literal{Kind: kind, Value: text, Span: span}
	case "string_literal":
		raw := b.text(n)
		if strings.HasPrefix(raw, `"""`) {
			return &models.Literal{Kind: models.LitString, Value: decodeString(raw, true), Span: span}
		}
		return &models.Literal{Kind: models.LitString, Value: decodeString(raw, false), Span: span}
	case "character_literal":
		return &models.Literal{Kind: models.LitChar, Value: decodeString(b.text(n), false), Span: span}
	case "true", "false":
		return &models.Literal{Kind: models.LitBool, Value: n.Kind(), Span: span}
	case "null_literal":
		return &models.Literal{Kind: models.LitNull, Value: "null", Span: span}
	case "identifier":
		return &models.Ident{Name: b.text(n), Span: span}
	case "this":
		return &models.This{Span: span}
	case "super":
		return &models.Super{Span: span}
	case "parenthesized_expression":
		if inner := namedChildren(n); len(inner) == 1 {
			return b.expr(inner[0])
		}
	case "field_access":
		object := n.ChildByFieldName("object")
		field := n.ChildByFieldName("field")
		if object != nil && field != nil {
			return &models.FieldAccess{X: b.expr(object), Name: b.text(field), Span: span, NameSpan: b.span(field)}
		}
	case "scoped_identifier":
		scope := n.ChildByFieldName("scope")
		name := n.ChildByFieldName("name")
		if scope != nil && name != nil {
			return &models.FieldAccess{X: b.expr(scope), Name: b.text(name), Span: span, NameSpan: b.span(name)}
		}
	case "class_literal":
		if t := firstType(n); t != nil {
			return &models.ClassLit{Type: b.typeRef(t), Span: span}
		}
	case "method_invocation":
		name := n.ChildByFieldName("name")
		if name == nil {
			break
		}
		call := &models.Call{Name: b.text(name), Span: span, NameSpan: b.span(name)}
		if object := n.ChildByFieldName("object"); object != nil {
			call.X = b.expr(object)
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			call.Args = b.arguments(args)
		}
		return call
	case "object_creation_expression":
		t := n.ChildByFieldName("type")
		if t == nil || childOfKind(n, "class_body") != nil {
			break
		}
		x := &models.New{Type: b.typeRef(t), Span: span}
		if args := n.ChildByFieldName("arguments"); args != nil {
			x.Args = b.arguments(args)
		}
		return x
	case "array_creation_expression":
		t := n.ChildByFieldName("type")
		if t == nil {
			break
		}
		x := &models.New{Type: b.typeRef(t), Span: span}
		for _, c := range namedChildren(n) {
			switch c.Kind() {
			case "dimensions_expr":
				if inner := namedChildren(c); len(inner) == 1 {
					x.Dims = append(x.Dims, b.expr(inner[0]))
				}
				x.Type.Dims++
			case "dimensions":
				x.Type.Dims += strings.Count(b.text(c), "[")
			case "array_initializer":
				x.Init = b.arrayInit(c)
			}
		}
		return x
	case "array_initializer":
		return b.arrayInit(n)
	case "binary_expression":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		op := n.ChildByFieldName("operator")
		if left != nil && right != nil && op != nil {
			return &models.Binary{Op: b.text(op), X: b.expr(left), Y: b.expr(right), Span: span, OpSpan: b.span(op)}
		}
	case "unary_expression":
		operand := n.ChildByFieldName("operand")
		op := n.ChildByFieldName("operator")
		if operand != nil && op != nil {
			return &models.Unary{Op: b.text(op), X: b.expr(operand), Span: span}
		}
	case "ternary_expression":
		cond := n.ChildByFieldName("condition")
		then := n.ChildByFieldName("consequence")
		els := n.ChildByFieldName("alternative")
		if cond != nil && then != nil && els != nil {
			return &models.Ternary{Cond: b.expr(cond), Then: b.expr(then), Else: b.expr(els), Span: span}
		}
	case "cast_expression":
		t := n.ChildByFieldName("type")
		value := n.ChildByFieldName("value")
		if t != nil && value != nil {
			return &models.Cast{Type: b.typeRef(t), X: b.expr(value), Span: span}
		}
	case "instanceof_expression":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left != nil && right != nil {
			return &models.InstanceOf{X: b.expr(left), Type: b.typeRef(right), Span: span}
		}
	case "array_access":
		array := n.ChildByFieldName("array")
		index := n.ChildByFieldName("index")
		if array != nil && index != nil {
			return &models.Index{X: b.expr(array), Index: b.expr(index), Span: span}
		}
	}
	return &models.Opaque{Text: b.text(n), Span: span}
}

func (b *javaBuilder) integerLiteral(n *sitter.Node) *models.Literal {
	text := strings.ReplaceAll(b.text(n), "_", "")
	lit := &models.Literal{Kind: models.LitInt, Span: b.span(n)}
	if last := text[len(text)-1]; last == 'l' || last == 'L' {
		lit.Kind = models.LitLong
		text = text[:len(text)-1]
	}
	lit.Value = javaIntegerValue(text)
	return lit
}

// javaIntegerValue renders an integer literal in decimal
func javaIntegerValue(text string) string {
	tok := token{Kind: tokNumber, Text: text}
	switch {
	case len(text) > 2 && (text[1] == 'b' || text[1] == 'B'):
		return radixValue(text[2:], 2)
	case len(text) > 1 && text[0] == '0' && !isHex(text):
		return radixValue(text[1:], 8)
	}
	return numberLiteral(tok).Value
}

func (b *javaBuilder) arguments(n *sitter.Node) []models.Expr {
	var out []models.Expr
	for _, c := range namedChildren(n) {
		out = append(out, b.expr(c))
	}
	return out
}

func (b *javaBuilder) arrayInit(n *sitter.Node) *models.ListLit {
	l := &models.ListLit{Span: b.span(n)}
	for _, c := range namedChildren(n) {
		l.Elems = append(l.Elems, b.expr(c))
	}
	return l
}
