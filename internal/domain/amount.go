package domain

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxAmountDigits is the number of integer digits an amount may carry, so every amount is below 1e12.
	// Together with AmountScale it matches the NUMERIC(14, 2) columns.
	MaxAmountDigits = 12
	// AmountScale is the number of decimal places an amount may carry
	AmountScale = 2

	// exponents below this are not worth rounding; no real amount has them
	minAmountExponent = -40
)

// CheckAmount reports ErrInvalidAmount for amounts outside the storable range or scale.
// It only looks at digit counts and exponents, so huge exponents are rejected without expanding them.
func CheckAmount(d decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}
	if d.NumDigits()+int(d.Exponent()) > MaxAmountDigits {
		return ErrInvalidAmount
	}
	if d.Exponent() >= -AmountScale {
		return nil
	}
	if d.Exponent() < minAmountExponent || !d.Equal(d.Round(AmountScale)) {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount parses a user-supplied amount string into a decimal.
// Empty, non-numeric, non-finite, too large and over-precise input yields ErrInvalidAmount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseStoredAmount is ParseAmount for values read back from a store: extra decimal places
// are rounded away instead of rejected, the magnitude bound still applies.
func ParseStoredAmount(raw string) (decimal.Decimal, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.Exponent() < -AmountScale && d.Exponent() >= minAmountExponent {
		d = d.Round(AmountScale)
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseAmountJSON parses an amount that arrives either as a JSON number or a numeric JSON string
func ParseAmountJSON(raw json.RawMessage) (decimal.Decimal, error) {
	s, err := amountText(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return ParseAmount(s)
}

// ParseStoredAmountJSON is ParseAmountJSON with the rounding of ParseStoredAmount
func ParseStoredAmountJSON(raw json.RawMessage) (decimal.Decimal, error) {
	s, err := amountText(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return ParseStoredAmount(s)
}

func amountText(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", ErrInvalidAmount
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", ErrInvalidAmount
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", ErrInvalidAmount
	}
	return n.String(), nil
}

// AmountFromFloat converts a float amount, rejecting NaN, infinities and out-of-range values
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrInvalidAmount
	}
	d := decimal.NewFromFloat(f)
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CoerceAmount parses an amount and falls back to zero when it is not a valid non-negative number
func CoerceAmount(raw string) decimal.Decimal {
	d, err := ParseAmount(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
