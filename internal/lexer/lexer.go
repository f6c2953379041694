// Package lexer turns HQL query text into a token stream.
//
// Tokenize never fails: malformed input degrades into warnings and a
// best-effort token stream. Token spans are rune offsets, contiguous and
// non-overlapping in token order.
package lexer

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/roach88/hql/internal/diag"
)

// Options controls optional lexical rewrites.
type Options struct {
	// ChineseSymbolReflect maps full-width Chinese punctuation onto the ASCII
	// symbols and quotes HQL understands.
	ChineseSymbolReflect bool `json:"chinese_symbol_reflect" yaml:"chinese_symbol_reflect"`

	// TranslateUnderscoreToSpace rewrites '_' to ' ' inside unquoted strings.
	TranslateUnderscoreToSpace bool `json:"translate_underscore_to_space" yaml:"translate_underscore_to_space"`
}

// Tokenize splits text into tokens.
func Tokenize(text string, opts Options) ([]Token, []diag.Diagnostic) {
	l := &lexer{src: []rune(text), opts: opts}
	if opts.ChineseSymbolReflect {
		for i, r := range l.src {
			l.src[i] = reflectSymbol(r)
		}
	}
	l.run()
	return l.tokens, l.warnings
}

type lexer struct {
	src      []rune
	pos      int
	opts     Options
	tokens   []Token
	warnings []diag.Diagnostic
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		switch {
		case unicode.IsSpace(r):
			l.space()
		case isQuote(r):
			l.quoted(r)
		case l.symbol():
		case isRestrictedStart(r):
			l.restricted()
		default:
			l.warn(diag.UselessSymbol, l.pos, l.pos+1, map[string]any{"symbol": string(r)})
			l.pos++
		}
	}
}

func (l *lexer) emit(t Token) {
	l.tokens = append(l.tokens, t)
}

func (l *lexer) warn(kind diag.Kind, begin, end int, info map[string]any) {
	l.warnings = append(l.warnings, diag.New(kind, begin, end, info))
}

func (l *lexer) space() {
	begin := l.pos
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
	l.emit(Token{Type: Space, Value: string(l.src[begin:l.pos]), Begin: begin, End: l.pos})
}

// symbol emits a symbol token if one starts at the current position.
func (l *lexer) symbol() bool {
	if l.pos+1 < len(l.src) {
		two := string(l.src[l.pos : l.pos+2])
		if twoCharSymbols[two] {
			l.emit(Token{Type: Symbol, Value: two, Begin: l.pos, End: l.pos + 2})
			l.pos += 2
			return true
		}
	}
	r := l.src[l.pos]
	if !isOneCharSymbol(r) {
		return false
	}
	l.emit(Token{Type: Symbol, Value: string(r), Begin: l.pos, End: l.pos + 1})
	l.pos++
	return true
}

func (l *lexer) restricted() {
	begin := l.pos
	var sb strings.Builder
	for l.pos < len(l.src) && isRestrictedPart(l.src[l.pos]) {
		r := l.src[l.pos]
		if r == '_' && l.opts.TranslateUnderscoreToSpace {
			r = ' '
		}
		sb.WriteRune(r)
		l.pos++
	}
	l.emit(Token{Type: CharSequence, Kind: Restricted, Value: sb.String(), Begin: begin, End: l.pos})
}

func (l *lexer) quoted(q rune) {
	begin := l.pos
	kind := quoteKind(q)
	l.pos++
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			l.warn(diag.ExpectQuoteButEOF, begin, l.pos, map[string]any{"quote": string(q)})
			l.emit(Token{Type: CharSequence, Kind: kind, Value: sb.String(), Begin: begin, End: l.pos})
			return
		}
		r := l.src[l.pos]
		switch {
		case r == q:
			l.pos++
			l.emit(Token{Type: CharSequence, Kind: kind, Value: sb.String(), Begin: begin, End: l.pos})
			return
		case r == '\\':
			if l.pos+1 >= len(l.src) {
				// The whole token is dropped.
				l.warn(diag.ExpectEscapedCharacterButEOF, l.pos, l.pos+1, nil)
				l.pos = len(l.src)
				return
			}
			escaped := l.src[l.pos+1]
			switch escaped {
			case '\'', '"', '`', '\\':
				sb.WriteRune(escaped)
			case 'n':
				sb.WriteRune('\n')
			case 'r':
				sb.WriteRune('\r')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune(escaped)
				l.warn(diag.NormalCharacterEscaped, l.pos, l.pos+2, map[string]any{"char": string(escaped)})
			}
			l.pos += 2
		default:
			sb.WriteRune(r)
			l.pos++
		}
	}
}

// isRestrictedStart reports whether r may begin an unquoted string.
func isRestrictedStart(r rune) bool {
	if r >= 0x80 {
		return !unicode.IsSpace(r)
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '?' || r == '*'
}

// isRestrictedPart reports whether r may continue an unquoted string.
// '+', '-' and '!' are text inside a string but never start one.
func isRestrictedPart(r rune) bool {
	return isRestrictedStart(r) || r == '+' || r == '-' || r == '!'
}

// chineseSymbols covers the punctuation that has no full-width form in the
// Unicode width tables.
var chineseSymbols = map[rune]rune{
	'《': '<',
	'》': '>',
	'。': '.',
	'【': '[',
	'】': ']',
	'「': '{',
	'」': '}',
	'‘': '\'',
	'’': '\'',
	'“': '"',
	'”': '"',
}

// reflectSymbol maps full-width punctuation to its ASCII counterpart. Letters,
// digits and ideographs are returned unchanged.
func reflectSymbol(r rune) rune {
	if mapped, ok := chineseSymbols[r]; ok {
		return mapped
	}
	if r < 0x80 {
		return r
	}
	narrow := width.LookupRune(r).Narrow()
	if narrow != 0 && narrow < 0x80 && (isOneCharSymbol(narrow) || isQuote(narrow)) {
		return narrow
	}
	return r
}
