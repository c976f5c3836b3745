package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in minor currency units (two decimals).
type Money int64

// MaxMoney is the largest amount a NUMERIC(10,2) price column holds.
const MaxMoney Money = 9999999999

// MoneyFromFloat rounds a major-unit amount (e.g. 1500.5) to minor units.
// Amounts beyond ±MaxMoney are rejected.
func MoneyFromFloat(f float64) (Money, error) {
	minor := math.Round(f * 100)
	if math.IsNaN(minor) || math.Abs(minor) > float64(MaxMoney) {
		return 0, fmt.Errorf("amount %v is out of range", f)
	}
	return Money(minor), nil
}

// ParseMoney parses a decimal string such as "1500", "1500.5" or "1500.00".
// Both parts must be plain digits and the result must stay within ±MaxMoney.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	whole, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("amount %q has no digits", s)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, fmt.Errorf("amount %q is not a decimal number", s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimals", s)
	}
	// MaxMoney has eight whole-unit digits, so anything longer is out of range
	// once leading zeros are gone.
	whole = strings.TrimLeft(whole, "0")
	if len(whole) > 8 {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	var w int64
	if whole != "" {
		var err error
		if w, err = strconv.ParseInt(whole, 10, 64); err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", s, err)
		}
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	m := Money(w*100 + f)
	if neg {
		m = -m
	}
	return m, nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Minor returns the amount in minor units.
func (m Money) Minor() int64 { return int64(m) }

// String formats the amount with exactly two decimals.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("amount must be a string or number")
		}
		v, err := MoneyFromFloat(f)
		if err != nil {
			return err
		}
		*m = v
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Value stores the amount as a decimal string, matching NUMERIC(10,2) columns.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan reads NUMERIC/TEXT/INTEGER column values.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = 0
		return nil
	case []byte:
		p, err := ParseMoney(string(v))
		if err != nil {
			return err
		}
		*m = p
	case string:
		p, err := ParseMoney(v)
		if err != nil {
			return err
		}
		*m = p
	case int64:
		if v > int64(MaxMoney/100) || v < -int64(MaxMoney/100) {
			return fmt.Errorf("amount %d is out of range", v)
		}
		*m = Money(v * 100)
	case float64:
		p, err := MoneyFromFloat(v)
		if err != nil {
			return err
		}
		*m = p
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
	return nil
}
