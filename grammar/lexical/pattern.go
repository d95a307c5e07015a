package lexical

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	synErrNullPattern       = fmt.Errorf("a pattern must be a non-empty character sequence")
	synErrNullablePattern   = fmt.Errorf("a pattern must not match the empty string")
	synErrIncompletedEscSeq = fmt.Errorf("incompleted escape sequence; unexpected EOF following \\")
	synErrInvalidEscSeq     = fmt.Errorf("invalid escape sequence")
	synErrAltLackOfOperand  = fmt.Errorf("an alternation expression must have operands")
	synErrRepNoTarget       = fmt.Errorf("a repeat expression must have an operand")
	synErrGroupNoElem       = fmt.Errorf("a grouping expression must include at least one character")
	synErrGroupUnclosed     = fmt.Errorf("unclosed grouping expression")
	synErrGroupNoInitiator  = fmt.Errorf(") needs preceding (")
	synErrBExpNoElem        = fmt.Errorf("a bracket expression must include at least one character")
	synErrBExpUnclosed      = fmt.Errorf("unclosed bracket expression")
	synErrBExpInvalidForm   = fmt.Errorf("invalid bracket expression")
	synErrRangeInvalidOrder = fmt.Errorf("a range expression with invalid order")
	synErrUnmatchable       = fmt.Errorf("a pattern cannot match any characters")
	synErrCPExpInvalidForm  = fmt.Errorf("invalid code point expression")
	synErrCPExpOutOfRange   = fmt.Errorf("a code point must be between U+0000 to U+10FFFF")
)

const maxRune = 0x10FFFF

// Pattern is the pattern of a terminal symbol. Token is the terminal number, and the position of
// a pattern in a pattern list is its declaration order.
type Pattern struct {
	Token  int
	Name   string
	Source string
}

// CompileError describes a pattern the scanner cannot be built from.
type CompileError struct {
	Token  int
	Name   string
	Cause  error
	Detail string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Name != "" {
		fmt.Fprintf(&b, "%v: ", e.Name)
	}
	fmt.Fprintf(&b, "%v", e.Cause)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %v", e.Detail)
	}
	return b.String()
}

// ValidatePattern reports whether a scanner can be built from a pattern.
func ValidatePattern(src string) error {
	_, err := parsePattern(src)
	return err
}

type patternParseError struct {
	cause  error
	detail string
}

func (e *patternParseError) Error() string {
	if e.detail == "" {
		return e.cause.Error()
	}
	return fmt.Sprintf("%v: %v", e.cause, e.detail)
}

func (e *patternParseError) Unwrap() error {
	return e.cause
}

type patternParser struct {
	src []rune
	pos int
}

// parsePattern parses a pattern into a tree without an end marker. The tree never matches the
// empty string.
func parsePattern(src string) (root regexTree, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			var ok bool
			retErr, ok = err.(*patternParseError)
			if !ok {
				panic(err)
			}
		}
	}()

	p := &patternParser{
		src: []rune(src),
	}
	root = p.parseRegexp()
	if root.nullable() {
		p.raiseParseError(synErrNullablePattern, "")
	}
	return root, nil
}

func (p *patternParser) parseRegexp() regexTree {
	alt := p.parseAlt()
	if alt == nil {
		if p.consume(')') {
			p.raiseParseError(synErrGroupNoInitiator, "")
		}
		p.raiseParseError(synErrNullPattern, "")
	}
	if p.consume(')') {
		p.raiseParseError(synErrGroupNoInitiator, "")
	}
	return alt
}

func (p *patternParser) parseAlt() regexTree {
	left := p.parseConcat()
	if left == nil {
		if p.consume('|') {
			p.raiseParseError(synErrAltLackOfOperand, "")
		}
		return nil
	}
	for p.consume('|') {
		right := p.parseConcat()
		if right == nil {
			p.raiseParseError(synErrAltLackOfOperand, "")
		}
		left = newAltNode(left, right)
	}
	return left
}

func (p *patternParser) parseConcat() regexTree {
	left := p.parseRepeat()
	if left == nil {
		return nil
	}
	for {
		right := p.parseRepeat()
		if right == nil {
			break
		}
		left = newConcatNode(left, right)
	}
	return left
}

func (p *patternParser) parseRepeat() regexTree {
	group := p.parseGroup()
	if group == nil {
		for _, op := range []rune{'*', '+', '?'} {
			if p.consume(op) {
				p.raiseParseError(synErrRepNoTarget, fmt.Sprintf("%v needs an operand", string(op)))
			}
		}
		return nil
	}
	for {
		switch {
		case p.consume('*'):
			group = newRepeatNode(group)
		case p.consume('+'):
			group = newConcatNode(group, newRepeatNode(group.clone()))
		case p.consume('?'):
			group = newOptionNode(group)
		default:
			return group
		}
	}
}

func (p *patternParser) parseGroup() regexTree {
	if !p.consume('(') {
		return p.parseSingleChar()
	}
	alt := p.parseAlt()
	if alt == nil {
		if p.eof() {
			p.raiseParseError(synErrGroupUnclosed, "")
		}
		p.raiseParseError(synErrGroupNoElem, "")
	}
	if !p.consume(')') {
		p.raiseParseError(synErrGroupUnclosed, "")
	}
	return alt
}

func (p *patternParser) parseSingleChar() regexTree {
	if p.eof() {
		return nil
	}
	switch c := p.peek(); c {
	case '|', ')', '*', '+', '?':
		return nil
	case ']':
		p.raiseParseError(synErrBExpInvalidForm, "] needs preceding [")
	case '.':
		p.next()
		return newRangeSymbolNode(0, maxRune)
	case '[':
		p.next()
		return p.parseBExp()
	case '\\':
		p.next()
		if p.eof() {
			p.raiseParseError(synErrIncompletedEscSeq, "")
		}
		c := p.next()
		switch c {
		case 'u':
			return newSymbolNode(p.parseCodePoint())
		case '\\', '.', '*', '+', '?', '|', '(', ')', '[', ']':
			return newSymbolNode(c)
		}
		p.raiseParseError(synErrInvalidEscSeq, fmt.Sprintf("\\%v is not supported", string(c)))
	}
	return newSymbolNode(p.next())
}

// parseBExp parses a bracket expression following `[`.
func (p *patternParser) parseBExp() regexTree {
	inverse := p.consume('^')

	var ranges []runeRange
	for {
		if p.eof() {
			p.raiseParseError(synErrBExpUnclosed, "")
		}
		if p.peek() == ']' {
			if len(ranges) == 0 {
				p.raiseParseError(synErrBExpNoElem, "")
			}
			p.next()
			break
		}

		from := p.parseBExpChar()
		to := from
		// A hyphen right before the closing bracket is an ordinary character.
		if p.peek() == '-' && p.pos+1 < len(p.src) && p.src[p.pos+1] != ']' {
			p.next()
			to = p.parseBExpChar()
			if to < from {
				p.raiseParseError(synErrRangeInvalidOrder, fmt.Sprintf("%X..%X", from, to))
			}
		}
		ranges = append(ranges, runeRange{from: from, to: to})
	}

	if inverse {
		ranges = complementRanges(ranges)
		if len(ranges) == 0 {
			p.raiseParseError(synErrUnmatchable, "")
		}
	}

	var alt regexTree
	for _, r := range ranges {
		n := newRangeSymbolNode(r.from, r.to)
		if alt == nil {
			alt = n
			continue
		}
		alt = newAltNode(alt, n)
	}
	return alt
}

func (p *patternParser) parseBExpChar() rune {
	if p.eof() {
		p.raiseParseError(synErrBExpUnclosed, "")
	}
	c := p.next()
	if c != '\\' {
		return c
	}
	if p.eof() {
		p.raiseParseError(synErrIncompletedEscSeq, "")
	}
	c = p.next()
	switch c {
	case 'u':
		return p.parseCodePoint()
	case '\\', '^', '-', ']':
		return c
	}
	p.raiseParseError(synErrInvalidEscSeq, fmt.Sprintf("\\%v is not supported in a bracket expression", string(c)))
	return 0
}

// parseCodePoint parses `{XXXX}` or `{XXXXXX}` following `\u`.
func (p *patternParser) parseCodePoint() rune {
	if !p.consume('{') {
		p.raiseParseError(synErrCPExpInvalidForm, "")
	}
	var b strings.Builder
	for !p.eof() && p.peek() != '}' {
		b.WriteRune(p.next())
	}
	if !p.consume('}') {
		p.raiseParseError(synErrCPExpInvalidForm, "")
	}
	digits := b.String()
	if len(digits) != 4 && len(digits) != 6 {
		p.raiseParseError(synErrCPExpInvalidForm, "code points must consist of just 4 or 6 hex digits")
	}
	n, err := strconv.ParseInt(digits, 16, 64)
	if err != nil {
		p.raiseParseError(synErrCPExpInvalidForm, digits)
	}
	if n < 0 || n > maxRune {
		p.raiseParseError(synErrCPExpOutOfRange, digits)
	}
	return rune(n)
}

func (p *patternParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *patternParser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *patternParser) next() rune {
	c := p.src[p.pos]
	p.pos++
	return c
}

func (p *patternParser) consume(c rune) bool {
	if p.eof() || p.src[p.pos] != c {
		return false
	}
	p.pos++
	return true
}

func (p *patternParser) raiseParseError(cause error, detail string) {
	panic(&patternParseError{
		cause:  cause,
		detail: detail,
	})
}

// complementRanges returns the ranges of the code points no range covers.
func complementRanges(ranges []runeRange) []runeRange {
	sorted := make([]runeRange, len(ranges))
	copy(sorted, ranges)
	sortRuneRanges(sorted)

	var comp []runeRange
	next := rune(0)
	for _, r := range sorted {
		if r.from > next {
			comp = append(comp, runeRange{from: next, to: r.from - 1})
		}
		if r.to+1 > next {
			next = r.to + 1
		}
	}
	if next <= maxRune {
		comp = append(comp, runeRange{from: next, to: maxRune})
	}
	return comp
}
