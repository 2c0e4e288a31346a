package catalog

import (
	"fmt"
	"strings"
)

// ParseList decodes a list-valued catalog cell. Empty cells and pandas-style
// missing markers decode to nil.
func ParseList(cell string) ([]string, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "nan", "none", "null":
		return nil, nil
	}
	if strings.HasPrefix(cell, "[") {
		return parseBracketed(cell)
	}
	var out []string
	for _, part := range strings.Split(cell, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

// FormatList encodes values in the semicolon form.
func FormatList(values []string) string {
	return strings.Join(values, ";")
}

type listParser struct {
	src string
	pos int
}

func parseBracketed(src string) ([]string, error) {
	p := &listParser{src: src}
	if !p.consume('[') {
		return nil, p.errorf("expected '['")
	}
	var out []string
	p.skipSpace()
	if p.consume(']') {
		return p.finish(out)
	}
	for {
		p.skipSpace()
		item, err := p.item()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		p.skipSpace()
		if p.consume(',') {
			p.skipSpace()
			// Trailing comma before the closing bracket.
			if p.consume(']') {
				return p.finish(out)
			}
			continue
		}
		if p.consume(']') {
			return p.finish(out)
		}
		return nil, p.errorf("expected ',' or ']'")
	}
}

func (p *listParser) item() (string, error) {
	if p.pos >= len(p.src) {
		return "", p.errorf("unexpected end of list")
	}
	quote := p.src[p.pos]
	if quote != '\'' && quote != '"' {
		return p.bare()
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == quote:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *listParser) bare() (string, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != ',' && p.src[p.pos] != ']' {
		p.pos++
	}
	value := strings.TrimSpace(p.src[start:p.pos])
	if value == "" {
		return "", p.errorf("empty list item")
	}
	return value, nil
}

func (p *listParser) finish(out []string) ([]string, error) {
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected text after ']'")
	}
	return out, nil
}

func (p *listParser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *listParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *listParser) errorf(msg string) error {
	return fmt.Errorf("parse list %q at offset %d: %s", p.src, p.pos, msg)
}
