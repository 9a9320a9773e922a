package transform

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"unicode"

	"github.com/keroloshany47/retail-etl/table"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// RateSource records how a conversion rate was obtained.
type RateSource int

const (
	RateDefault RateSource = iota
	RateJSON
	RateLiteral
)

func (s RateSource) String() string {
	switch s {
	case RateJSON:
		return "json"
	case RateLiteral:
		return "literal"
	default:
		return "default"
	}
}

// Rate is a conversion rate together with its provenance.
type Rate struct {
	Value  decimal.Decimal
	Source RateSource
}

var defaultRate = Rate{Value: decimal.NewFromInt(1), Source: RateDefault}

// RateFromTable reads the rate map from the first row of an
// exchange_rates table. A missing table, row or column yields the default.
func RateFromTable(t *table.Table, currency string) Rate {
	if t == nil || t.Len() == 0 || !t.Has("rates") {
		return defaultRate
	}
	return DecodeRate(t.Value(0, "rates"), currency)
}

// DecodeRate looks currency up in an encoded rate map. The map is decoded
// as JSON first, then as a Python-style dict literal. A map without the
// currency yields 1. When neither decode succeeds the default rate is
// returned.
func DecodeRate(encoded, currency string) Rate {
	if rates, err := decodeJSONRates(encoded); err == nil {
		return lookup(rates, currency, RateJSON)
	}
	if rates, err := decodeLiteralRates(encoded); err == nil {
		return lookup(rates, currency, RateLiteral)
	}
	return defaultRate
}

func lookup(rates map[string]rateValue, currency string, source RateSource) Rate {
	v, ok := rates[currency]
	if !ok {
		return Rate{Value: decimal.NewFromInt(1), Source: source}
	}
	if !v.numeric {
		return defaultRate
	}
	return Rate{Value: v.value, Source: source}
}

type rateValue struct {
	value   decimal.Decimal
	numeric bool
}

func decodeJSONRates(encoded string) (map[string]rateValue, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(encoded)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "not a JSON object")
	}
	if raw == nil {
		return nil, eris.New("not a JSON object")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, eris.New("trailing data after JSON object")
	}

	rates := make(map[string]rateValue, len(raw))
	for k, v := range raw {
		n, ok := v.(json.Number)
		if !ok {
			rates[k] = rateValue{}
			continue
		}
		d, err := decimal.NewFromString(n.String())
		rates[k] = rateValue{value: d, numeric: err == nil}
	}
	return rates, nil
}

// decodeLiteralRates parses a flat dict literal such as
// {'USD': 1.0, 'EGP': 49.5}. Values may be numbers, quoted strings, True,
// False or None; only numbers are usable as rates.
func decodeLiteralRates(encoded string) (map[string]rateValue, error) {
	p := &literalParser{s: strings.TrimSpace(encoded)}
	rates, err := p.dict()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, eris.Errorf("unexpected trailing input at %d", p.pos)
	}
	return rates, nil
}

type literalParser struct {
	s   string
	pos int
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.s) && unicode.IsSpace(rune(p.s[p.pos])) {
		p.pos++
	}
}

func (p *literalParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.s) || p.s[p.pos] != c {
		return eris.Errorf("expected %q at %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *literalParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *literalParser) dict() (map[string]rateValue, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	rates := map[string]rateValue{}
	if p.peek() == '}' {
		p.pos++
		return rates, nil
	}
	for {
		key, err := p.str()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		value, err := p.value()
		if err != nil {
			return nil, err
		}
		rates[key] = value

		switch p.peek() {
		case ',':
			p.pos++
			if p.peek() == '}' {
				p.pos++
				return rates, nil
			}
		case '}':
			p.pos++
			return rates, nil
		default:
			return nil, eris.Errorf("expected ',' or '}' at %d", p.pos)
		}
	}
}

func (p *literalParser) str() (string, error) {
	quote := p.peek()
	if quote != '\'' && quote != '"' {
		return "", eris.Errorf("expected string at %d", p.pos)
	}
	p.pos++

	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		p.pos++
		switch {
		case c == '\\' && p.pos < len(p.s):
			b.WriteByte(p.s[p.pos])
			p.pos++
		case c == quote:
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
	return "", eris.New("unterminated string")
}

func (p *literalParser) value() (rateValue, error) {
	switch c := p.peek(); {
	case c == '\'' || c == '"':
		_, err := p.str()
		return rateValue{}, err
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		start := p.pos
		for p.pos < len(p.s) && strings.IndexByte("+-.0123456789eE_", p.s[p.pos]) >= 0 {
			p.pos++
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(p.s[start:p.pos], "_", ""))
		if err != nil {
			return rateValue{}, eris.Wrapf(err, "invalid number at %d", start)
		}
		return rateValue{value: d, numeric: true}, nil
	default:
		for _, word := range []string{"True", "False", "None"} {
			if strings.HasPrefix(p.s[p.pos:], word) {
				p.pos += len(word)
				return rateValue{}, nil
			}
		}
		return rateValue{}, eris.Errorf("unexpected value at %d", p.pos)
	}
}
