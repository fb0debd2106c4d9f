package parser

import (
	stderrors "errors"
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/jointc/internal/models"
)

// groovyLexer tokenizes dynamic-language sources. Rules are tried in order,
// so longer operators come before their prefixes.
var groovyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "Newline", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r\f]+|\\\r?\n`},
	{Name: "TripleString", Pattern: `"""(?s:\\.|.)*?"""|'''(?s:\\.|.)*?'''`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'`},
	{Name: "Number", Pattern: `0[xX][0-9a-fA-F_]+[lLiIgG]?|[0-9][0-9_]*(?:\.[0-9][0-9_]*)?(?:[eE][+-]?[0-9]+)?[lLiIgGdDfF]?`},
	{Name: "Ident", Pattern: `[\p{L}_$][\p{L}\p{N}_$]*`},
	{Name: "Operator", Pattern: `>>>=|<<=|\*\*=|<=>|\.\.<|===|!==|==~|\?\.|\*\.|\.&|\.\.\.|\.\.|\?:|=~|==|!=|<=|>=|&&|\|\||\+\+|--|\+=|-=|\*=|/=|%=|&=|\|=|\^=|\?=|\*\*|<<|->|::|[-+*/%=<>!~&|^?:;,.(){}\[\]@]`},
})

var (
	symComment      = groovyLexer.Symbols()["Comment"]
	symNewline      = groovyLexer.Symbols()["Newline"]
	symWhitespace   = groovyLexer.Symbols()["Whitespace"]
	symTripleString = groovyLexer.Symbols()["TripleString"]
	symString       = groovyLexer.Symbols()["String"]
	symNumber       = groovyLexer.Symbols()["Number"]
	symIdent        = groovyLexer.Symbols()["Ident"]
	symOperator     = groovyLexer.Symbols()["Operator"]
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokKeyword
	tokNumber
	tokString
	tokOp
)

// keywords never start a plain name reference
var keywords = map[string]bool{
	"abstract": true, "as": true, "assert": true, "boolean": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "class": true,
	"const": true, "continue": true, "def": true, "default": true, "do": true,
	"double": true, "else": true, "enum": true, "extends": true, "false": true,
	"final": true, "finally": true, "float": true, "for": true, "goto": true,
	"if": true, "implements": true, "import": true, "in": true, "instanceof": true,
	"int": true, "interface": true, "long": true, "native": true, "new": true,
	"null": true, "package": true, "private": true, "protected": true, "public": true,
	"return": true, "short": true, "static": true, "strictfp": true, "super": true,
	"switch": true, "synchronized": true, "this": true, "throw": true, "throws": true,
	"trait": true, "transient": true, "true": true, "try": true, "void": true,
	"volatile": true, "while": true,
}

// token is one significant token; NL records a line break before it
type token struct {
	Kind   tokenKind
	Text   string
	Triple bool
	Span   models.Span
	NL     bool
}

func (t token) is(text string) bool {
	return (t.Kind == tokOp || t.Kind == tokKeyword) && t.Text == text
}

// describe renders the token the way parse errors quote it
func (t token) describe() string {
	if t.Kind == tokEOF {
		return "<EOF>"
	}
	return t.Text
}

// lexError is a lexer failure at an offset
type lexError struct {
	offset int
	text   string
}

func (e *lexError) Error() string { return fmt.Sprintf("unexpected char: '%s'", e.text) }

// tokenize lexes src into significant tokens; comments and blanks are
// dropped, line breaks are folded into the NL flag of the following token
func tokenize(path, src string) ([]token, error) {
	lex, err := groovyLexer.LexString(path, src)
	if err != nil {
		return nil, err
	}

	var out []token
	nl := false
	for {
		tok, err := lex.Next()
		if err != nil {
			var lerr *lexer.Error
			if stderrors.As(err, &lerr) {
				off := lerr.Pos.Offset
				text := ""
				if off < len(src) {
					text = string([]rune(src[off:])[:1])
				}
				return out, &lexError{offset: off, text: text}
			}
			return out, err
		}
		if tok.EOF() {
			out = append(out, token{Kind: tokEOF, Span: models.Span{Start: len(src), End: len(src)}, NL: true})
			return out, nil
		}

		span := models.Span{Start: tok.Pos.Offset, End: tok.Pos.Offset + len(tok.Value)}
		t := token{Text: tok.Value, Span: span, NL: nl}
		switch tok.Type {
		case symNewline:
			nl = true
			continue
		case symWhitespace:
			continue
		case symComment:
			if containsNewline(tok.Value) {
				nl = true
			}
			continue
		case symTripleString:
			t.Kind = tokString
			t.Triple = true
		case symString:
			t.Kind = tokString
		case symNumber:
			t.Kind = tokNumber
		case symIdent:
			t.Kind = tokIdent
			if keywords[tok.Value] {
				t.Kind = tokKeyword
			}
		case symOperator:
			t.Kind = tokOp
		}
		nl = false
		out = append(out, t)
	}
}

func containsNewline(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return true
		}
	}
	return false
}
