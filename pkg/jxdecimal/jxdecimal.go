// Package jxdecimal reads and writes shopspring decimals with go-faster/jx
// without going through float64.
package jxdecimal

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Decode reads a decimal from a JSON number or a numeric string.
func Decode(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return parse(string(n))
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return parse(s)
	default:
		return decimal.Zero, errors.Errorf("unexpected %s, want number", d.Next())
	}
}

func parse(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse decimal %q", s)
	}
	return v, nil
}

// Encode writes v as a JSON number.
func Encode(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}
