package buildconfig

import (
	"fmt"
	"strings"
)

// Parse reads configuration source text. It stops at the first syntax error
// and returns a *ParseError carrying its position.
//
// Grammar, one element per line:
//
//	element   := property condition* ws? "=" ws? value
//	condition := "[" "!"? property "]" | "[" property "=" [A-Za-z0-9]+ "]"
//	value     := (literal | "$(" property ")" | quoted)*
//
// Blank lines and lines starting with "//" are ignored. Outside quotes a
// "//" ends the value. Trailing whitespace is trimmed from every value.
// Backslash escapes \/, \$, \" and \\ produce the escaped character.
func Parse(src string) (*Configuration, error) {
	var elements []Element

	offset := 0
	for lineNo := 1; offset <= len(src); lineNo++ {
		end := strings.IndexByte(src[offset:], '\n')
		next := len(src) + 1
		if end >= 0 {
			end += offset
			next = end + 1
		} else {
			end = len(src)
		}

		line := strings.TrimSuffix(src[offset:end], "\r")
		lp := &lineParser{line: line, base: offset, lineNo: lineNo}
		el, ok, err := lp.parse()
		if err != nil {
			return nil, err
		}
		if ok {
			elements = append(elements, el)
		}

		offset = next
	}

	return NewConfiguration(elements), nil
}

// MustParse is Parse for static sources in tests and examples. It panics on error.
func MustParse(src string) *Configuration {
	cfg, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return cfg
}

type lineParser struct {
	line   string
	base   int
	lineNo int
	pos    int
}

// piece is an intermediate value fragment before adjacent literals are merged.
type piece struct {
	text string
	// raw is the verbatim source of a quoted fragment, quotes included.
	raw    string
	ref    Property
	quoted bool
}

func (p *lineParser) errorf(at int, format string, args ...any) *ParseError {
	return &ParseError{
		Offset: p.base + at,
		Line:   p.lineNo,
		Column: at + 1,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (p *lineParser) peek() byte {
	if p.pos >= len(p.line) {
		return 0
	}
	return p.line[p.pos]
}

func (p *lineParser) skipSpace() {
	for p.pos < len(p.line) && (p.line[p.pos] == ' ' || p.line[p.pos] == '\t') {
		p.pos++
	}
}

func (p *lineParser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.line[p.pos:], s)
}

func (p *lineParser) parse() (Element, bool, error) {
	p.skipSpace()
	if p.pos == len(p.line) || p.hasPrefix("//") {
		return Element{}, false, nil
	}

	start := p.pos
	prop, ok := p.identifier()
	if !ok {
		return Element{}, false, p.errorf(p.pos, "expected property name")
	}

	var conds []Condition
	for p.peek() == '[' {
		c, err := p.condition()
		if err != nil {
			return Element{}, false, err
		}
		conds = append(conds, c)
	}

	p.skipSpace()
	if p.peek() != '=' {
		return Element{}, false, p.errorf(p.pos, "expected '=' after %s", prop)
	}
	p.pos++
	p.skipSpace()

	value, err := p.value()
	if err != nil {
		return Element{}, false, err
	}

	conds = canonicalConditions(conds)
	if a, b, found := firstContradiction(conds); found {
		return Element{}, false, p.errorf(start, "contradictory conditions %s and %s", a, b)
	}

	return Element{
		Property:   prop,
		Conditions: conds,
		Value:      value,
		Line:       p.lineNo,
	}, true, nil
}

func (p *lineParser) identifier() (Property, bool) {
	start := p.pos
	if p.pos >= len(p.line) || !isIdentStart(p.line[p.pos]) {
		return "", false
	}
	p.pos++
	for p.pos < len(p.line) && isIdentPart(p.line[p.pos]) {
		p.pos++
	}
	return Property(p.line[start:p.pos]), true
}

func (p *lineParser) condition() (Condition, error) {
	open := p.pos
	p.pos++ // [

	negated := false
	if p.peek() == '!' {
		negated = true
		p.pos++
	}

	prop, ok := p.identifier()
	if !ok {
		return Condition{}, p.errorf(p.pos, "expected property name in condition")
	}

	var cond Condition
	switch {
	case p.peek() == '=' && !negated:
		p.pos++
		start := p.pos
		for p.pos < len(p.line) && isAlnum(p.line[p.pos]) {
			p.pos++
		}
		if p.pos == start {
			return Condition{}, p.errorf(p.pos, "expected match value after '='")
		}
		cond = Equals(prop, MatchValue(p.line[start:p.pos]))
	case negated:
		cond = Falsey(prop)
	default:
		cond = Truthy(prop)
	}

	if p.peek() != ']' {
		return Condition{}, p.errorf(p.pos, "unterminated condition starting at column %d, expected ']'", open+1)
	}
	p.pos++

	return cond, nil
}

func (p *lineParser) reference() (Property, error) {
	p.pos += 2 // $(
	prop, ok := p.identifier()
	if !ok {
		return "", p.errorf(p.pos, "expected property name in reference")
	}
	if p.peek() != ')' {
		return "", p.errorf(p.pos, "expected ')' to close reference to %s", prop)
	}
	p.pos++
	return prop, nil
}

// escaped returns the byte escaped at the current position, if any.
func (p *lineParser) escaped() (byte, bool) {
	if p.peek() != '\\' || p.pos+1 >= len(p.line) {
		return 0, false
	}
	switch c := p.line[p.pos+1]; c {
	case '/', '$', '"', '\\':
		return c, true
	default:
		return 0, false
	}
}

func (p *lineParser) value() (Value, error) {
	var pieces []piece
	var bare strings.Builder

	flush := func() {
		if bare.Len() > 0 {
			pieces = append(pieces, piece{text: bare.String()})
			bare.Reset()
		}
	}

scan:
	for p.pos < len(p.line) {
		if c, ok := p.escaped(); ok {
			bare.WriteByte(c)
			p.pos += 2
			continue
		}
		switch {
		case p.hasPrefix("//"):
			break scan
		case p.hasPrefix("$("):
			flush()
			ref, err := p.reference()
			if err != nil {
				return Value{}, err
			}
			pieces = append(pieces, piece{ref: ref})
		case p.peek() == '"':
			quoted, closed, err := p.quoted()
			if err != nil {
				return Value{}, err
			}
			if !closed {
				bare.WriteByte('"')
				p.pos++
				continue
			}
			flush()
			pieces = append(pieces, quoted...)
		default:
			bare.WriteByte(p.line[p.pos])
			p.pos++
		}
	}
	flush()

	return Value{Items: mergePieces(pieces)}, nil
}

// quoted reads a double-quoted segment. When the line has no closing quote it
// rewinds to the opening quote and reports closed as false, so the quote is
// read as plain text.
func (p *lineParser) quoted() (pieces []piece, closed bool, err error) {
	open := p.pos
	segment := p.pos
	p.pos++ // "

	var text strings.Builder
	for {
		if p.pos >= len(p.line) {
			p.pos = open
			return nil, false, nil
		}
		if c, ok := p.escaped(); ok {
			text.WriteByte(c)
			p.pos += 2
			continue
		}
		switch {
		case p.peek() == '"':
			p.pos++
			return append(pieces, piece{text: text.String(), raw: p.line[segment:p.pos], quoted: true}), true, nil
		case p.hasPrefix("$("):
			pieces = append(pieces, piece{text: text.String(), raw: p.line[segment:p.pos], quoted: true})
			text.Reset()
			ref, err := p.reference()
			if err != nil {
				return nil, false, err
			}
			pieces = append(pieces, piece{ref: ref, quoted: true})
			segment = p.pos
		default:
			text.WriteByte(p.line[p.pos])
			p.pos++
		}
	}
}

// mergePieces joins value fragments into items. A value built only from
// quoted strings, references, and whitespace is in string form: quotes are
// removed and the whitespace between tokens is dropped. Any other value keeps
// its quoted segments verbatim, so JSON lists and objects survive intact.
func mergePieces(pieces []piece) []Item {
	if n := len(pieces); n > 0 && !pieces[n-1].quoted && pieces[n-1].ref == "" {
		pieces[n-1].text = strings.TrimRight(pieces[n-1].text, " \t")
	}

	hasQuoted, allBlank := false, true
	for _, pc := range pieces {
		switch {
		case pc.ref != "":
		case pc.quoted:
			hasQuoted = true
		case strings.TrimSpace(pc.text) != "":
			allBlank = false
		}
	}
	stringForm := hasQuoted && allBlank

	var items []Item
	for _, pc := range pieces {
		if pc.ref != "" {
			items = append(items, Item{Ref: pc.ref})
			continue
		}

		text := pc.text
		switch {
		case pc.quoted && !stringForm:
			text = pc.raw
		case !pc.quoted && stringForm:
			continue
		}
		if text == "" {
			continue
		}

		if n := len(items); n > 0 && !items[n-1].IsReference() {
			items[n-1].Literal += text
			continue
		}
		items = append(items, Item{Literal: text})
	}
	return items
}
