package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a decimal currency amount kept at two fractional digits.
// It marshals as a JSON string ("450.00") so clients never see binary
// floating point drift.
type Money struct {
	decimal.Decimal
}

// Percent is a 0-100 value with the same two-digit wire format as Money.
type Percent = Money

func NewMoney(d decimal.Decimal) Money {
	return Money{d.Round(2)}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return NewMoney(d), nil
}

// MustMoney panics on a malformed literal. For constants and tests only.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func MoneyZero() Money {
	return Money{}
}

func (m Money) Add(o Money) Money {
	return NewMoney(m.Decimal.Add(o.Decimal))
}

func (m Money) Sub(o Money) Money {
	return NewMoney(m.Decimal.Sub(o.Decimal))
}

func (m Money) Neg() Money {
	return Money{m.Decimal.Neg()}
}

func (m Money) LessThan(o Money) bool {
	return m.Decimal.LessThan(o.Decimal)
}

func (m Money) GreaterThan(o Money) bool {
	return m.Decimal.GreaterThan(o.Decimal)
}

func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Decimal.StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts both a quoted decimal string ("50.00") and a bare
// JSON number; amounts are rounded to two fractional digits on the way in.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := MoneyFromString(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case float64:
		*m = NewMoney(decimal.NewFromFloat(v))
		return nil
	case nil:
		*m = Money{}
		return nil
	default:
		return fmt.Errorf("invalid amount of type %T", raw)
	}
}
