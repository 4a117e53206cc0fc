package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"number", `2500`, "2500", false},
		{"decimal number", `12.75`, "12.75", false},
		{"numeric string", `" 99.5 "`, "99.5", false},
		{"empty string", `""`, "", true},
		{"word", `"abc"`, "", true},
		{"null", `null`, "", true},
		{"bool", `true`, "", true},
		{"infinity string", `"Infinity"`, "", true},
		{"overflowing exponent", `1e400`, "", true},
		{"overflowing exponent string", `"1e400"`, "", true},
		{"huge exponent", `1e20000000`, "", true},
		{"tiny exponent", `1e-20000000`, "", true},
		{"at the bound", `1e12`, "", true},
		{"largest amount", `999999999999.99`, "999999999999.99", false},
		{"trailing zeros", `"12.340"`, "12.34", false},
		{"three decimals", `12.345`, "", true},
		{"exponent form", `2.5e3`, "2500", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseAmountJSON(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestAmountFromFloat_RejectsNonFinite(t *testing.T) {
	_, err := AmountFromFloat(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = AmountFromFloat(math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = AmountFromFloat(1e300)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	d, err := AmountFromFloat(12.5)
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())
}

func TestCoerceAmount(t *testing.T) {
	assert.Equal(t, "42", CoerceAmount("42").String())
	assert.True(t, CoerceAmount("").IsZero())
	assert.True(t, CoerceAmount("nope").IsZero())
	assert.True(t, CoerceAmount("-3").IsZero())
	assert.True(t, CoerceAmount("1e400").IsZero())
	assert.True(t, CoerceAmount("0.001").IsZero())
}

func TestParseStoredAmountJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"cents kept", `100.25`, "100.25", false},
		{"rounded to cents", `100.005`, "100.01", false},
		{"rounded string", `"0.333"`, "0.33", false},
		{"too large", `1e13`, "", true},
		{"huge exponent", `"1e20000000"`, "", true},
		{"not a number", `"abc"`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseStoredAmountJSON(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme("dark")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	_, err = ParseTheme("solarized")
	assert.ErrorIs(t, err, ErrInvalidTheme)
}
