package parser

import (
	"math"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/toyz/jointc/internal/models"
)

// numberLiteral classifies a number token by its suffix and magnitude.
// Unsuffixed decimals are BigDecimal; unsuffixed integers widen from int to
// long to BigInteger as needed. Value holds the canonical decimal text.
func numberLiteral(t token) *models.Literal {
	text := strings.ReplaceAll(t.Text, "_", "")
	lit := &models.Literal{Span: t.Span}

	suffixes := "lLiIgGdDfF"
	if isHex(text) {
		suffixes = "lLiIgG"
	}
	suffix := byte(0)
	if last := text[len(text)-1]; strings.IndexByte(suffixes, last) >= 0 {
		suffix = last | 0x20
		text = text[:len(text)-1]
	}

	if isHex(text) {
		n, _ := new(big.Int).SetString(text[2:], 16)
		lit.Value = radixValue(text[2:], 16)
		lit.Kind = integerKind(n, suffix)
		return lit
	}

	decimal := strings.ContainsAny(text, ".eE")
	switch {
	case suffix == 'd':
		lit.Kind = models.LitDouble
	case suffix == 'f':
		lit.Kind = models.LitFloat
	case decimal:
		lit.Kind = models.LitBigDecimal
	default:
		n, _ := new(big.Int).SetString(text, 10)
		lit.Value = n.String()
		lit.Kind = integerKind(n, suffix)
		return lit
	}
	lit.Value = text
	return lit
}

// radixValue renders digits in the given base as decimal text
func radixValue(digits string, base int) string {
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return digits
	}
	return n.String()
}

func isHex(text string) bool {
	return len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X')
}

func integerKind(n *big.Int, suffix byte) models.LiteralKind {
	switch suffix {
	case 'i':
		return models.LitInt
	case 'l':
		return models.LitLong
	case 'g':
		return models.LitBigInteger
	}
	switch {
	case n.IsInt64() && n.Int64() <= math.MaxInt32:
		return models.LitInt
	case n.IsInt64():
		return models.LitLong
	}
	return models.LitBigInteger
}

// stringBody strips the quotes of a raw string token
func stringBody(raw string, triple bool) string {
	if triple {
		return raw[3 : len(raw)-3]
	}
	return raw[1 : len(raw)-1]
}

// decodeString returns the value of a string token without interpolation
func decodeString(raw string, triple bool) string {
	return unescape(stringBody(raw, triple))
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '\n':
			// line continuation
		case 'u':
			j := i + 1
			for j < len(s) && s[j] == 'u' {
				j++
			}
			if j+4 <= len(s) {
				if r, ok := hexRune(s[j : j+4]); ok {
					b.WriteRune(r)
					i = j + 3
					continue
				}
			}
			b.WriteByte('u')
		default:
			if e >= '0' && e <= '7' {
				v, j := 0, i
				for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' && v*8+int(s[j]-'0') <= 0377 {
					v = v*8 + int(s[j]-'0')
					j++
				}
				b.WriteRune(rune(v))
				i = j - 1
				continue
			}
			b.WriteByte(e)
		}
	}
	return b.String()
}

func hexRune(s string) (rune, bool) {
	var r rune
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			r = r*16 + rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r*16 + rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r*16 + rune(c-'A'+10)
		default:
			return 0, false
		}
	}
	return r, utf8.ValidRune(r)
}

// stringLiteral builds a literal, or a GString for double-quoted text with
// $name or ${expr} placeholders
func (p *groovyParser) stringLiteral(t token) models.Expr {
	if t.Text[0] == '\'' || !strings.ContainsRune(t.Text, '$') {
		return &models.Literal{Kind: models.LitString, Value: decodeString(t.Text, t.Triple), Span: t.Span}
	}

	quote := 1
	if t.Triple {
		quote = 3
	}
	body := stringBody(t.Text, t.Triple)
	base := t.Span.Start + quote

	gs := &models.GString{Span: t.Span}
	var chunk strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			chunk.WriteByte(c)
			chunk.WriteByte(body[i+1])
			i++
		case c == '$' && i+1 < len(body) && body[i+1] == '{':
			end := closingBrace(body, i+2)
			if end < 0 {
				p.fail(models.Span{Start: base + i, End: base + i + 2}, "unexpected token: ${")
			}
			gs.Strings = append(gs.Strings, unescape(chunk.String()))
			chunk.Reset()
			gs.Values = append(gs.Values, p.placeholder(body[i+2:end], base+i+2))
			i = end
		case c == '$' && i+1 < len(body) && isIdentStart(body[i+1]):
			end := dottedPathEnd(body, i+1)
			gs.Strings = append(gs.Strings, unescape(chunk.String()))
			chunk.Reset()
			gs.Values = append(gs.Values, dottedPath(body[i+1:end], base+i+1))
			i = end - 1
		default:
			chunk.WriteByte(c)
		}
	}
	gs.Strings = append(gs.Strings, unescape(chunk.String()))
	if len(gs.Values) == 0 {
		return &models.Literal{Kind: models.LitString, Value: gs.Strings[0], Span: t.Span}
	}
	return gs
}

// closingBrace finds the brace closing a placeholder opened before from
func closingBrace(s string, from int) int {
	depth := 1
	var quote byte
	for i := from; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// dottedPathEnd returns the end of a $a.b.c reference; a dot not followed
// by an identifier ends the path
func dottedPathEnd(s string, i int) int {
	for {
		for i < len(s) && isIdentPart(s[i]) {
			i++
		}
		if i+1 < len(s) && s[i] == '.' && isIdentStart(s[i+1]) {
			i++
			continue
		}
		return i
	}
}

func dottedPath(path string, offset int) models.Expr {
	parts := strings.Split(path, ".")
	var x models.Expr = &models.Ident{Name: parts[0], Span: models.Span{Start: offset, End: offset + len(parts[0])}}
	pos := offset + len(parts[0]) + 1
	for _, part := range parts[1:] {
		nameSpan := models.Span{Start: pos, End: pos + len(part)}
		x = &models.FieldAccess{X: x, Name: part, Span: x.NodeSpan().Cover(nameSpan), NameSpan: nameSpan}
		pos += len(part) + 1
	}
	return x
}

// placeholder parses the expression inside ${...}; an empty placeholder is
// null
func (p *groovyParser) placeholder(text string, offset int) models.Expr {
	toks, err := tokenize(p.unit.Path, text)
	if err != nil {
		if lerr, ok := err.(*lexError); ok {
			p.fail(models.Span{Start: offset + lerr.offset, End: offset + lerr.offset + 1}, "%s", lerr.Error())
		}
		p.fail(models.Span{Start: offset, End: offset + len(text)}, "%s", err.Error())
	}
	for i := range toks {
		toks[i].Span.Start += offset
		toks[i].Span.End += offset
	}
	if len(toks) == 1 {
		return &models.Literal{Kind: models.LitNull, Value: "null", Span: models.Span{Start: offset, End: offset}}
	}

	sub := &groovyParser{unit: p.unit, toks: toks, prevEnd: offset, current: p.current, script: p.script}
	x := sub.expr()
	if !sub.atEOF() {
		sub.failUnexpected()
	}
	return x
}
