package jsonval

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// ParseError reports where and why a decode failed. Offset is the byte
// position in the input at which the problem was detected.
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("JSON parse error at position %d: %s", e.Offset, e.Reason)
}

// Parse decodes a complete JSON document. Any content after the top-level
// value is an error. On error the returned Value is zero; no partial tree
// is produced.
func Parse(text string) (Value, error) {
	p := &parser{input: text}
	v, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}
	p.skipWhitespace()
	if p.pos < len(p.input) {
		return Value{}, p.errorf("unexpected trailing content")
	}
	return v, nil
}

// parser is a single-pass recursive-descent decoder over a byte buffer.
// One byte of lookahead selects each production; there is no backtracking.
type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Offset: p.pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) parseValue() (Value, error) {
	p.skipWhitespace()
	ch, err := p.peek()
	if err != nil {
		return Value{}, err
	}
	switch {
	case ch == '"':
		s, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case ch == '{':
		return p.parseObject()
	case ch == '[':
		return p.parseArray()
	case ch == 't' || ch == 'f':
		return p.parseBool()
	case ch == 'n':
		return p.parseNull()
	case ch == '-' || (ch >= '0' && ch <= '9'):
		return p.parseNumber()
	default:
		return Value{}, p.errorf("unexpected character: %q", ch)
	}
}

func (p *parser) parseString() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var buf []byte
	for {
		ch, err := p.advance()
		if err != nil {
			return "", err
		}
		switch ch {
		case '"':
			return string(buf), nil
		case '\\':
			esc, err := p.advance()
			if err != nil {
				return "", err
			}
			switch esc {
			case '"':
				buf = append(buf, '"')
			case '\\':
				buf = append(buf, '\\')
			case '/':
				buf = append(buf, '/')
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				buf = utf8.AppendRune(buf, r)
			default:
				return "", p.errorf("invalid escape: \\%c", esc)
			}
		default:
			buf = append(buf, ch)
		}
	}
}

// parseUnicodeEscape decodes the four hex digits after \u. A high surrogate
// must be followed by a \u-escaped low surrogate; the pair is combined into
// one code point.
func (p *parser) parseUnicodeEscape() (rune, error) {
	cp, err := p.parseHex4()
	if err != nil {
		return 0, err
	}
	if cp >= 0xD800 && cp <= 0xDBFF {
		if err := p.expect('\\'); err != nil {
			return 0, err
		}
		if err := p.expect('u'); err != nil {
			return 0, err
		}
		low, err := p.parseHex4()
		if err != nil {
			return 0, err
		}
		if low < 0xDC00 || low > 0xDFFF {
			return 0, p.errorf("invalid surrogate pair")
		}
		return 0x10000 + (rune(cp)-0xD800)<<10 + (rune(low) - 0xDC00), nil
	}
	if cp >= 0xDC00 && cp <= 0xDFFF {
		return 0, p.errorf("invalid surrogate pair")
	}
	return rune(cp), nil
}

func (p *parser) parseHex4() (uint16, error) {
	var val uint16
	for i := 0; i < 4; i++ {
		ch, err := p.advance()
		if err != nil {
			return 0, err
		}
		var digit uint16
		switch {
		case ch >= '0' && ch <= '9':
			digit = uint16(ch - '0')
		case ch >= 'a' && ch <= 'f':
			digit = uint16(ch-'a') + 10
		case ch >= 'A' && ch <= 'F':
			digit = uint16(ch-'A') + 10
		default:
			return 0, p.errorf("invalid unicode escape hex digit")
		}
		val = val*16 + digit
	}
	return val, nil
}

func (p *parser) parseNumber() (Value, error) {
	start := p.pos
	if p.peekMatches('-') {
		p.pos++
	}
	if err := p.consumeDigits(); err != nil {
		return Value{}, err
	}
	if p.peekMatches('.') {
		p.pos++
		if err := p.consumeDigits(); err != nil {
			return Value{}, err
		}
	}
	if p.pos < len(p.input) && (p.input[p.pos] == 'e' || p.input[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.input) && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
			p.pos++
		}
		if err := p.consumeDigits(); err != nil {
			return Value{}, err
		}
	}
	numStr := p.input[start:p.pos]
	n, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return Value{}, p.errorf("invalid number: %s", numStr)
	}
	return Number(n), nil
}

func (p *parser) consumeDigits() error {
	if p.pos >= len(p.input) || p.input[p.pos] < '0' || p.input[p.pos] > '9' {
		return p.errorf("expected digit")
	}
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	return nil
}

func (p *parser) parseObject() (Value, error) {
	if err := p.expect('{'); err != nil {
		return Value{}, err
	}
	p.skipWhitespace()
	var members []Member
	if p.peekMatches('}') {
		p.pos++
		return Object(members), nil
	}
	for {
		p.skipWhitespace()
		key, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		p.skipWhitespace()
		if err := p.expect(':'); err != nil {
			return Value{}, err
		}
		val, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: val})
		p.skipWhitespace()
		ch, err := p.advance()
		if err != nil {
			return Value{}, err
		}
		switch ch {
		case '}':
			return Object(members), nil
		case ',':
			continue
		default:
			return Value{}, p.errorf("expected ',' or '}' in object")
		}
	}
}

func (p *parser) parseArray() (Value, error) {
	if err := p.expect('['); err != nil {
		return Value{}, err
	}
	p.skipWhitespace()
	var items []Value
	if p.peekMatches(']') {
		p.pos++
		return Array(items), nil
	}
	for {
		val, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, val)
		p.skipWhitespace()
		ch, err := p.advance()
		if err != nil {
			return Value{}, err
		}
		switch ch {
		case ']':
			return Array(items), nil
		case ',':
			continue
		default:
			return Value{}, p.errorf("expected ',' or ']' in array")
		}
	}
}

func (p *parser) parseBool() (Value, error) {
	switch {
	case p.startsWith("true"):
		p.pos += 4
		return Bool(true), nil
	case p.startsWith("false"):
		p.pos += 5
		return Bool(false), nil
	default:
		return Value{}, p.errorf("expected 'true' or 'false'")
	}
}

func (p *parser) parseNull() (Value, error) {
	if !p.startsWith("null") {
		return Value{}, p.errorf("expected 'null'")
	}
	p.pos += 4
	return Null(), nil
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() (byte, error) {
	if p.pos >= len(p.input) {
		return 0, p.errorf("unexpected end of input")
	}
	return p.input[p.pos], nil
}

func (p *parser) peekMatches(ch byte) bool {
	return p.pos < len(p.input) && p.input[p.pos] == ch
}

func (p *parser) advance() (byte, error) {
	ch, err := p.peek()
	if err != nil {
		return 0, err
	}
	p.pos++
	return ch, nil
}

func (p *parser) expect(expected byte) error {
	ch, err := p.advance()
	if err != nil {
		return err
	}
	if ch != expected {
		return p.errorf("expected %q, found %q", expected, ch)
	}
	return nil
}

func (p *parser) startsWith(prefix string) bool {
	return len(p.input)-p.pos >= len(prefix) && p.input[p.pos:p.pos+len(prefix)] == prefix
}
