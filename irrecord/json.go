package irrecord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clpir-go/clpir/errs"
)

// renderJSON renders v as a compact JSON-like string. It exists because
// a full JSON encoder is out of scope for this module (spec.md §1) — the
// only shape that ever needs rendering here is an Array's own contents,
// which are restricted to the same scalar/Object/Array grammar the rest
// of the codec already knows how to walk.
func renderJSON(v any) (string, error) {
	var sb strings.Builder
	if err := writeJSON(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeJSON(sb *strings.Builder, v any) error {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if val {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case int64:
		sb.WriteString(strconv.FormatInt(val, 10))
	case float64:
		sb.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case string:
		sb.WriteString(strconv.Quote(val))
	case *Object:
		sb.WriteByte('{')
		for i, k := range val.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			child, _ := val.Get(k)
			if err := writeJSON(sb, child); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case Array:
		sb.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeJSON(sb, elem); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	default:
		return fmt.Errorf("%w: unsupported array element type %T", errs.ErrEncodeFailed, v)
	}
	return nil
}

// parseJSON parses the exact grammar writeJSON emits. It is not a
// general-purpose JSON parser: it accepts only what this module itself
// produces (no extra whitespace tolerance beyond what writeJSON never
// emits, no NaN/Infinity, no unicode escapes beyond what strconv.Quote
// produces).
func parseJSON(s string) (any, error) {
	p := &jsonParser{s: s}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("%w: trailing data after array JSON value", errs.ErrDecode)
	}
	return v, nil
}

type jsonParser struct {
	s   string
	pos int
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n') {
		p.pos++
	}
}

func (p *jsonParser) parseValue() (any, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, fmt.Errorf("%w: unexpected end of array JSON", errs.ErrDecode)
	}

	switch c := p.s[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		return p.parseString()
	case c == 't':
		return p.parseLiteral("true", true)
	case c == 'f':
		return p.parseLiteral("false", false)
	case c == 'n':
		return p.parseLiteral("null", nil)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return nil, fmt.Errorf("%w: unexpected character %q in array JSON", errs.ErrDecode, c)
	}
}

func (p *jsonParser) parseLiteral(lit string, val any) (any, error) {
	if !strings.HasPrefix(p.s[p.pos:], lit) {
		return nil, fmt.Errorf("%w: expected %q", errs.ErrDecode, lit)
	}
	p.pos += len(lit)
	return val, nil
}

func (p *jsonParser) parseNumber() (any, error) {
	start := p.pos
	isFloat := false
	if p.s[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			isFloat = true
			p.pos++
			continue
		}
		break
	}
	tok := p.s[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q", errs.ErrDecode, tok)
		}
		return f, nil
	}
	i, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid integer %q", errs.ErrDecode, tok)
	}
	return i, nil
}

func (p *jsonParser) parseString() (string, error) {
	if p.s[p.pos] != '"' {
		return "", fmt.Errorf("%w: expected string", errs.ErrDecode)
	}
	// strconv.Unquote expects the surrounding quotes and handles escapes
	// the same way strconv.Quote produced them.
	end := p.pos + 1
	for end < len(p.s) {
		if p.s[end] == '\\' {
			end += 2
			continue
		}
		if p.s[end] == '"' {
			break
		}
		end++
	}
	if end >= len(p.s) {
		return "", fmt.Errorf("%w: unterminated string", errs.ErrDecode)
	}
	raw := p.s[p.pos : end+1]
	p.pos = end + 1
	unquoted, err := strconv.Unquote(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid string literal: %v", errs.ErrDecode, err)
	}
	return unquoted, nil
}

func (p *jsonParser) parseArray() (Array, error) {
	p.pos++ // '['
	arr := Array{}
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == ']' {
		p.pos++
		return arr, nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, fmt.Errorf("%w: unterminated array", errs.ErrDecode)
		}
		if p.s[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.s[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		return nil, fmt.Errorf("%w: expected ',' or ']' in array", errs.ErrDecode)
	}
}

func (p *jsonParser) parseObject() (*Object, error) {
	p.pos++ // '{'
	obj := NewObject()
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == '}' {
		p.pos++
		return obj, nil
	}
	for {
		p.skipSpace()
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != ':' {
			return nil, fmt.Errorf("%w: expected ':' in object", errs.ErrDecode)
		}
		p.pos++
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, fmt.Errorf("%w: unterminated object", errs.ErrDecode)
		}
		if p.s[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.s[p.pos] == '}' {
			p.pos++
			return obj, nil
		}
		return nil, fmt.Errorf("%w: expected ',' or '}' in object", errs.ErrDecode)
	}
}
