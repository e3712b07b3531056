// Package lang implements the lexer, parser, and AST for the restricted
// expression language the planner emits programs in. The grammar is a
// narrow, Python-flavored subset chosen to match the shape of programs the
// original CaMeL reference's planner LLM produces: assignment, attribute
// and subscript access, calls with positional and keyword arguments,
// if/else, and return — with every construct that could smuggle in
// arbitrary control flow or side channels (imports, classes, loops,
// exception handling, generators, lambdas) rejected by name before a
// single statement runs.
package lang

import "fmt"

// Kind identifies a lexical token category.
type Kind int

const (
	EOF Kind = iota
	NEWLINE
	INDENT
	DEDENT
	NAME
	NUMBER
	STRING
	KEYWORD

	// punctuation / operators
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	COMMA
	COLON
	DOT
	ASSIGN
	PLUS
	MINUS
	STAR
	SLASH
	EQ
	NEQ
	LT
	LTE
	GT
	GTE
)

// Token is a single lexical unit with its source line for error messages.
type Token struct {
	Kind  Kind
	Text  string
	Line  int
}

func (t Token) String() string {
	return fmt.Sprintf("%v(%q)@%d", t.Kind, t.Text, t.Line)
}

// keywords lists every reserved word the lexer recognizes, whether or not
// the grammar actually permits it to appear — recognizing a forbidden
// keyword by name is what lets the parser reject it with a precise
// "Forbidden construct: X" message instead of a generic syntax error.
var keywords = map[string]struct{}{
	"if": {}, "else": {}, "elif": {}, "return": {},
	"and": {}, "or": {}, "not": {}, "in": {}, "is": {},
	"True": {}, "False": {}, "None": {},
	"import": {}, "from": {}, "class": {}, "def": {}, "async": {}, "await": {},
	"while": {}, "for": {}, "try": {}, "except": {}, "finally": {},
	"with": {}, "as": {}, "lambda": {}, "yield": {}, "global": {}, "nonlocal": {},
}

func isKeyword(s string) bool {
	_, ok := keywords[s]
	return ok
}
