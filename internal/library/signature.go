package library

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Catalog entries describe members in Java source notation, e.g.
//
//	public static <T> java.util.List<T> asList(T...)
//	@Deprecated public int getYear()
//	public static final double PI
//
// Unqualified class names are looked up in java.lang, the package of the
// declaring class, java.util and groovy.lang, in that order.

type sigType struct {
	Name string    `parser:"@Ident ( @'.' @Ident )*"`
	Args []*sigArg `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
	Dims string    `parser:"@Dims?"`
}

type sigArg struct {
	Wildcard bool     `parser:"( @'?'"`
	Kind     string   `parser:"  ( @( 'extends' | 'super' )"`
	Bound    *sigType `parser:"    @@ )? )"`
	Type     *sigType `parser:"| @@"`
}

type sigTypeParam struct {
	Name   string     `parser:"@Ident"`
	Bounds []*sigType `parser:"( 'extends' @@ ( '&' @@ )* )?"`
}

type sigParam struct {
	Type    *sigType `parser:"@@"`
	Varargs bool     `parser:"@Ellipsis?"`
	Name    string   `parser:"@Ident?"`
}

type sigParams struct {
	List []*sigParam `parser:"'(' ( @@ ( ',' @@ )* )? ')'"`
}

type sigMember struct {
	Annotations []string        `parser:"( '@' @Ident )*"`
	Modifiers   []string        `parser:"@( 'public' | 'protected' | 'private' | 'static' | 'final' | 'abstract' | 'synchronized' | 'native' | 'default' | 'transient' | 'volatile' | 'strictfp' )*"`
	TypeParams  []*sigTypeParam `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
	Type        *sigType        `parser:"@@"`
	Name        string          `parser:"@Ident?"`
	Params      *sigParams      `parser:"@@?"`
	Throws      []*sigType      `parser:"( 'throws' @@ ( ',' @@ )* )?"`
}

type sigHeader struct {
	Name       string          `parser:"@Ident ( @'.' @Ident )*"`
	TypeParams []*sigTypeParam `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
}

var sigLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "Dims", Pattern: `(\[\])+`},
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
	{Name: "Punct", Pattern: `[<>,.()?&@]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	memberParser = participle.MustBuild[sigMember](
		participle.Lexer(sigLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	headerParser = participle.MustBuild[sigHeader](
		participle.Lexer(sigLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	typeParser = participle.MustBuild[sigType](
		participle.Lexer(sigLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

func parseMember(src string) (*sigMember, error) {
	return memberParser.ParseString("", src)
}

func parseHeader(src string) (*sigHeader, error) {
	return headerParser.ParseString("", src)
}

func parseType(src string) (*sigType, error) {
	return typeParser.ParseString("", src)
}

func (t *sigType) dims() int { return strings.Count(t.Dims, "[") }

func (m *sigMember) isField() bool { return m.Params == nil }

func (m *sigMember) isConstructor() bool { return m.Params != nil && m.Name == "" }
