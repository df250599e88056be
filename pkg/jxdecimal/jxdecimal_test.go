package jxdecimal

import (
	"testing"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    decimal.Decimal
		wantErr bool
	}{
		{name: "integer", input: `100`, want: decimal.NewFromInt(100)},
		{name: "fraction", input: `19.99`, want: decimal.RequireFromString("19.99")},
		{name: "numeric string", input: `"12.50"`, want: decimal.RequireFromString("12.5")},
		{name: "bool", input: `true`, wantErr: true},
		{name: "non-numeric string", input: `"abc"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(jx.DecodeStr(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestEncode(t *testing.T) {
	var e jx.Encoder
	Encode(&e, decimal.RequireFromString("270.50"))
	assert.Equal(t, "270.5", e.String())
}
