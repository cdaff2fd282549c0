package parser

// TokenKind identifies one lexical class of the use-declaration grammar.
type TokenKind int

const (
	TokenUse TokenKind = iota
	TokenPub
	TokenAs
	TokenSelf
	TokenCrate
	TokenSuper
	TokenIn
	TokenIdent
	TokenPathSep
	TokenOpenBrace
	TokenCloseBrace
	TokenComma
	TokenSemi
	TokenStar
	TokenOpenParen
	TokenCloseParen
)

func (k TokenKind) String() string {
	switch k {
	case TokenUse:
		return "'use'"
	case TokenPub:
		return "'pub'"
	case TokenAs:
		return "'as'"
	case TokenSelf:
		return "'self'"
	case TokenCrate:
		return "'crate'"
	case TokenSuper:
		return "'super'"
	case TokenIn:
		return "'in'"
	case TokenIdent:
		return "identifier"
	case TokenPathSep:
		return "'::'"
	case TokenOpenBrace:
		return "'{'"
	case TokenCloseBrace:
		return "'}'"
	case TokenComma:
		return "','"
	case TokenSemi:
		return "';'"
	case TokenStar:
		return "'*'"
	case TokenOpenParen:
		return "'('"
	case TokenCloseParen:
		return "')'"
	}
	return "unknown token"
}

// Token is one lexeme with its location relative to the lexed snippet.
// Line counts newlines inside the snippet; columns restart at zero after
// each newline. EndCol is exclusive.
type Token struct {
	Kind     TokenKind
	Text     string
	Line     int
	StartCol int
	EndCol   int
}

var keywords = map[string]TokenKind{
	"use":   TokenUse,
	"pub":   TokenPub,
	"as":    TokenAs,
	"self":  TokenSelf,
	"crate": TokenCrate,
	"super": TokenSuper,
	"in":    TokenIn,
}

var punctuation = map[byte]TokenKind{
	'{': TokenOpenBrace,
	'}': TokenCloseBrace,
	',': TokenComma,
	';': TokenSemi,
	'*': TokenStar,
	'(': TokenOpenParen,
	')': TokenCloseParen,
}

// Lex splits a use-declaration snippet into tokens. Whitespace is skipped,
// newlines advance the relative line and reset the column origin, and any
// character outside the grammar is dropped without error so stray
// punctuation never aborts a scan.
func Lex(src string) []Token {
	var tokens []Token
	line, col := 0, 0
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\n':
			line++
			col = 0
			i++
		case c == ' ' || c == '\t' || c == '\r':
			col++
			i++
		case c == ':' && i+1 < len(src) && src[i+1] == ':':
			tokens = append(tokens, Token{Kind: TokenPathSep, Text: "::", Line: line, StartCol: col, EndCol: col + 2})
			col += 2
			i += 2
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			// Line comments inside a multi-line statement are dropped
			// like any other unrecognized input.
			for i < len(src) && src[i] != '\n' {
				i++
				col++
			}
		case isIdentStart(c):
			start, startCol := i, col
			for i < len(src) && isIdentPart(src[i]) {
				i++
				col++
			}
			text := src[start:i]
			kind, ok := keywords[text]
			if !ok {
				kind = TokenIdent
			}
			tokens = append(tokens, Token{Kind: kind, Text: text, Line: line, StartCol: startCol, EndCol: col})
		default:
			if kind, ok := punctuation[c]; ok {
				tokens = append(tokens, Token{Kind: kind, Text: string(c), Line: line, StartCol: col, EndCol: col + 1})
			}
			col++
			i++
		}
	}
	return tokens
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
