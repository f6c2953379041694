package lexer

import "fmt"

// TokenType classifies a token.
type TokenType int

const (
	Space TokenType = iota
	Symbol
	CharSequence
)

func (t TokenType) String() string {
	switch t {
	case Space:
		return "space"
	case Symbol:
		return "symbol"
	case CharSequence:
		return "string"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t TokenType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// SequenceKind records how a character sequence was written.
type SequenceKind string

const (
	Restricted   SequenceKind = "restricted"
	Apostrophe   SequenceKind = "apostrophe"
	DoubleQuotes SequenceKind = "double_quotes"
	Backticks    SequenceKind = "backticks"
)

// Precise reports whether strings of this kind match exactly.
// Only backtick-quoted strings are precise; everything else is fuzzy.
func (k SequenceKind) Precise() bool {
	return k == Backticks
}

// Token is one lexical unit. Begin and End are rune offsets into the
// original text, End exclusive.
//
// For Symbol tokens Value is the symbol itself; for CharSequence tokens it is
// the unescaped text; for Space tokens it is the raw whitespace.
type Token struct {
	Type  TokenType    `json:"type"`
	Kind  SequenceKind `json:"kind,omitempty"`
	Value string       `json:"value"`
	Begin int          `json:"begin"`
	End   int          `json:"end"`
}

func (t Token) String() string {
	switch t.Type {
	case Symbol:
		return fmt.Sprintf("symbol %q", t.Value)
	case CharSequence:
		return fmt.Sprintf("string %q", t.Value)
	default:
		return "space"
	}
}

// Symbols lists every symbol the lexer emits, two-character ones first.
var Symbols = []string{
	">=", "<=", "~+", "~-",
	":", ">", "<", "~", "|", "/", "&", "-", "+", "@", "#", "$", "^", ".", ",", "[", "]", "(", ")", "{", "}",
}

var twoCharSymbols = map[string]bool{">=": true, "<=": true, "~+": true, "~-": true}

func isOneCharSymbol(r rune) bool {
	switch r {
	case ':', '>', '<', '~', '|', '/', '&', '-', '+', '@', '#', '$', '^', '.', ',', '[', ']', '(', ')', '{', '}':
		return true
	}
	return false
}

func isQuote(r rune) bool {
	return r == '\'' || r == '"' || r == '`'
}

func quoteKind(q rune) SequenceKind {
	switch q {
	case '\'':
		return Apostrophe
	case '"':
		return DoubleQuotes
	default:
		return Backticks
	}
}
