package parser

import (
	"fmt"
	"strings"
)

// ParseError reports a use declaration the grammar cannot accept. Pos is in
// document coordinates. There is no recovery: callers drop the statement.
type ParseError struct {
	Message string
	Pos     Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Pos.Line, e.Pos.Col, e.Message)
}

// ParseStatement parses exactly one use declaration. text is the statement
// source without its attribute lines; rng places text in document
// coordinates so segment spans come out absolute, and is stored on the
// returned statement. A zero rng parses the text at the document origin and
// marks the statement synthetic.
func ParseStatement(text string, attrs []string, rng Range) (Statement, error) {
	p := &treeParser{tokens: Lex(text), base: rng.Start}
	vis := p.parseVisibility()
	if _, err := p.expect(TokenUse); err != nil {
		return Statement{}, err
	}
	tree, err := p.parseUseTree()
	if err != nil {
		return Statement{}, err
	}
	if _, err := p.expect(TokenSemi); err != nil {
		return Statement{}, err
	}
	return Statement{
		Visibility: vis,
		Tree:       tree,
		Attributes: attrs,
		Range:      rng,
	}, nil
}

type treeParser struct {
	tokens []Token
	pos    int
	base   Position
}

// abs shifts a snippet-relative location onto document coordinates. Tokens
// on the snippet's first line are offset by the base column; later lines
// already start at their document column.
func (p *treeParser) abs(line, col int) Position {
	if line == 0 {
		return Position{Line: p.base.Line, Col: p.base.Col + col}
	}
	return Position{Line: p.base.Line + line, Col: col}
}

func (p *treeParser) span(t Token) Range {
	return Range{Start: p.abs(t.Line, t.StartCol), End: p.abs(t.Line, t.EndCol)}
}

func (p *treeParser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *treeParser) at(kind TokenKind) bool {
	t, ok := p.peek()
	return ok && t.Kind == kind
}

func (p *treeParser) nextIs(kind TokenKind) bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.pos+1].Kind == kind
}

func (p *treeParser) advance() Token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

// match consumes the current token when it has the given kind.
func (p *treeParser) match(kind TokenKind) bool {
	if !p.at(kind) {
		return false
	}
	p.pos++
	return true
}

func (p *treeParser) expect(kind TokenKind) (Token, error) {
	t, ok := p.peek()
	if !ok || t.Kind != kind {
		return Token{}, p.fail("expected " + kind.String())
	}
	p.pos++
	return t, nil
}

// fail builds a ParseError at the current token, or just past the last one
// when input ended early.
func (p *treeParser) fail(msg string) error {
	pos := p.base
	if t, ok := p.peek(); ok {
		pos = p.abs(t.Line, t.StartCol)
	} else if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		pos = p.abs(last.Line, last.EndCol)
	}
	return &ParseError{Message: msg, Pos: pos}
}

// parseVisibility consumes pub, pub(crate), pub(super), pub(self) or
// pub(in some::path) when present. The qualifier comes back as one opaque
// canonical string: merge matches statements on it but never re-parses it.
func (p *treeParser) parseVisibility() string {
	if !p.match(TokenPub) {
		return ""
	}
	if !p.match(TokenOpenParen) {
		return "pub"
	}
	var sb strings.Builder
	sb.WriteString("pub(")
	if p.match(TokenIn) {
		sb.WriteString("in ")
	}
	for {
		t, ok := p.peek()
		if !ok || t.Kind == TokenCloseParen {
			break
		}
		p.advance()
		sb.WriteString(t.Text)
	}
	p.match(TokenCloseParen)
	sb.WriteString(")")
	return sb.String()
}

// parseSegment consumes one path element and an optional "as alias" rename.
// Keyword tokens double as segment names so crate::, super:: and self::
// paths parse like ordinary identifiers.
func (p *treeParser) parseSegment() (Segment, error) {
	t, ok := p.peek()
	if !ok {
		return Segment{}, p.fail("expected path segment")
	}
	if !isSegmentToken(t.Kind) {
		return Segment{}, p.fail(fmt.Sprintf("unexpected %s in path", t.Kind))
	}
	p.advance()
	seg := Segment{Name: t.Text, Span: p.span(t)}
	if p.match(TokenAs) {
		alias, err := p.expect(TokenIdent)
		if err != nil {
			return Segment{}, err
		}
		seg.Alias = alias.Text
	}
	return seg, nil
}

func isSegmentToken(k TokenKind) bool {
	switch k {
	case TokenIdent, TokenSelf, TokenCrate, TokenSuper:
		return true
	}
	return false
}

// parseUseTree parses one tree: a bare glob, a self leaf, or a segment
// optionally followed by :: and a brace group, a trailing glob, or a single
// nested child. A self token directly followed by :: is an ordinary path
// root (use self::foo), not a self leaf.
func (p *treeParser) parseUseTree() (Tree, error) {
	t, ok := p.peek()
	if !ok {
		return Tree{}, p.fail("expected use tree")
	}
	if t.Kind == TokenStar {
		p.advance()
		return Tree{Segment: Segment{Name: "*", Span: p.span(t)}, Glob: true}, nil
	}
	if t.Kind == TokenSelf && !p.nextIs(TokenPathSep) {
		p.advance()
		seg := Segment{Name: "self", Span: p.span(t)}
		if p.match(TokenAs) {
			alias, err := p.expect(TokenIdent)
			if err != nil {
				return Tree{}, err
			}
			seg.Alias = alias.Text
		}
		return Tree{Segment: seg}, nil
	}
	seg, err := p.parseSegment()
	if err != nil {
		return Tree{}, err
	}
	node := Tree{Segment: seg}
	if !p.match(TokenPathSep) {
		return node, nil
	}
	next, ok := p.peek()
	if !ok {
		return Tree{}, p.fail("path ends after '::'")
	}
	switch next.Kind {
	case TokenOpenBrace:
		p.advance()
		children, err := p.parseUseTreeList()
		if err != nil {
			return Tree{}, err
		}
		node.Children = children
	case TokenStar:
		p.advance()
		node.Glob = true
	default:
		child, err := p.parseUseTree()
		if err != nil {
			return Tree{}, err
		}
		node.Children = []Tree{child}
	}
	return node, nil
}

// parseUseTreeList parses the inside of a brace group. The opening brace is
// already consumed; a trailing comma is tolerated. An empty group collapses
// the parent to a plain leaf.
func (p *treeParser) parseUseTreeList() ([]Tree, error) {
	var children []Tree
	for {
		if p.match(TokenCloseBrace) {
			return children, nil
		}
		child, err := p.parseUseTree()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		if p.match(TokenComma) {
			continue
		}
		if p.match(TokenCloseBrace) {
			return children, nil
		}
		return nil, p.fail("expected ',' or '}' in use group")
	}
}
