package parser

import (
	"regexp"
	"strings"
)

// ScanResult is what a whole-file scan produces.
type ScanResult struct {
	Statements []Statement
	// Region spans from the first recognized statement, including its
	// attribute lines, to one past the final statement's semicolon. Nil
	// when the file has no use declarations.
	Region *Range
	// TrailingBlank reports whether the region already ends on a clean
	// boundary: nothing after the final semicolon on its line and the
	// next line blank or absent.
	TrailingBlank bool
	// Skipped counts statements that were located but dropped because
	// their text failed to parse.
	Skipped int
}

// useStart matches an optional visibility qualifier followed by the use
// keyword and at least one space, anywhere in a line.
var useStart = regexp.MustCompile(`\b(?:pub\s*(?:\([^()]*\))?\s+)?use\s`)

// Scan extracts the leading run of use declarations from a source document.
// It copes with multi-line statements, statements sharing a line with other
// code, and attribute lines, and never fails: malformed statements are
// dropped and counted, everything else is left alone.
func Scan(text string) ScanResult {
	s := &scanner{lines: strings.Split(text, "\n"), attrLine: -1}
	s.run()
	return s.result()
}

type scanner struct {
	lines []string

	statements []Statement
	skipped    int

	block     int
	sinceBump bool // a statement was emitted since the last block bump

	attrs    []string
	attrLine int // line of the first pending attribute, -1 when none
	attrCol  int

	regionStart *Position
	regionEnd   Position
}

func (s *scanner) run() {
	i := s.prologueEnd()
	col := 0
	for i < len(s.lines) {
		line := s.lines[i]
		rest := line[col:]
		trimmed := strings.TrimSpace(rest)
		switch {
		case trimmed == "":
			i++
			col = 0
		case col == 0 && isAttrLine(trimmed):
			if s.attrLine == -1 {
				s.attrLine = i
				s.attrCol = len(line) - len(strings.TrimLeft(line, " \t"))
			}
			s.attrs = append(s.attrs, line)
			i++
		case isCommentLine(trimmed):
			// A whole comment line splits blocks; a trailing comment
			// after a captured statement just ends the line.
			if col == 0 && s.sinceBump {
				s.block++
				s.sinceBump = false
			}
			i++
			col = 0
		default:
			start := matchUseStart(rest)
			if start < 0 {
				if s.found() {
					return
				}
				// Ordinary content before the first import; any
				// pending attributes belong to it, not to us.
				s.attrs = nil
				s.attrLine = -1
				i++
				col = 0
				continue
			}
			endLine, endCol, ok := s.capture(i, col+start)
			if !ok {
				return
			}
			s.emit(i, col+start, endLine, endCol)
			i = endLine
			col = endCol
		}
	}
}

func (s *scanner) found() bool {
	return len(s.statements) > 0 || s.skipped > 0
}

// prologueEnd skips the file's leading blank lines, line comments, and
// inner attributes (#![...]) so a crate's doc header never reads as
// import-region content.
func (s *scanner) prologueEnd() int {
	i := 0
	for i < len(s.lines) {
		t := strings.TrimSpace(s.lines[i])
		if t == "" || strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#!") {
			i++
			continue
		}
		break
	}
	return i
}

// matchUseStart returns the byte offset of a use-statement start inside
// text, or -1. A match inside a trailing line comment does not count.
func matchUseStart(text string) int {
	m := useStart.FindStringIndex(text)
	if m == nil {
		return -1
	}
	if c := strings.Index(text, "//"); c >= 0 && c < m[0] {
		return -1
	}
	return m[0]
}

// capture walks forward from a statement start until the terminating
// semicolon at brace depth zero, carrying the depth across lines. Line
// comments inside the statement are skipped so braces in them cannot skew
// the count. ok is false when the file ends first.
func (s *scanner) capture(startLine, startCol int) (endLine, endCol int, ok bool) {
	depth := 0
	col := startCol
	for line := startLine; line < len(s.lines); line++ {
		text := s.lines[line]
		for col < len(text) {
			switch text[col] {
			case '/':
				if col+1 < len(text) && text[col+1] == '/' {
					col = len(text)
					continue
				}
			case '{':
				depth++
			case '}':
				depth--
			case ';':
				if depth == 0 {
					return line, col + 1, true
				}
			}
			col++
		}
		col = 0
	}
	return 0, 0, false
}

func (s *scanner) emit(startLine, startCol, endLine, endCol int) {
	raw := s.slice(startLine, startCol, endLine, endCol)
	rng := Range{
		Start: Position{Line: startLine, Col: startCol},
		End:   Position{Line: endLine, Col: endCol},
	}
	footprint := rng.Start
	if s.attrLine >= 0 {
		footprint = Position{Line: s.attrLine, Col: s.attrCol}
	}
	attrs := s.attrs
	s.attrs = nil
	s.attrLine = -1

	stmt, err := ParseStatement(raw, attrs, rng)
	if err != nil {
		s.skipped++
		return
	}
	stmt.Block = s.block
	s.statements = append(s.statements, stmt)
	s.sinceBump = true
	if s.regionStart == nil {
		s.regionStart = &footprint
	}
	s.regionEnd = rng.End
}

func (s *scanner) slice(startLine, startCol, endLine, endCol int) string {
	if startLine == endLine {
		return s.lines[startLine][startCol:endCol]
	}
	var sb strings.Builder
	sb.WriteString(s.lines[startLine][startCol:])
	for l := startLine + 1; l < endLine; l++ {
		sb.WriteByte('\n')
		sb.WriteString(s.lines[l])
	}
	sb.WriteByte('\n')
	sb.WriteString(s.lines[endLine][:endCol])
	return sb.String()
}

func (s *scanner) result() ScanResult {
	res := ScanResult{Statements: s.statements, Skipped: s.skipped}
	if s.regionStart == nil {
		return res
	}
	res.Region = &Range{Start: *s.regionStart, End: s.regionEnd}
	res.TrailingBlank = s.trailingBlank()
	return res
}

func (s *scanner) trailingBlank() bool {
	end := s.regionEnd
	if strings.TrimSpace(s.lines[end.Line][end.Col:]) != "" {
		return false
	}
	next := end.Line + 1
	if next >= len(s.lines) {
		return true
	}
	return strings.TrimSpace(s.lines[next]) == ""
}

func isAttrLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#[")
}

func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//")
}
