package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money monetary amount kept at 2 decimal places
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal builds a Money rounded to cents
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// MarshalJSON renders a fixed 2-decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON accepts a string or a number
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	m.Decimal = decimal.NewFromFloat(f).Round(2)
	return nil
}

// Value driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan sql.Scanner
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

// NewMoneyFromInt whole currency units
func NewMoneyFromInt(units int64) Money {
	return Money{Decimal: decimal.NewFromInt(units)}
}

// IsPositive reports amount > 0
func (m Money) IsPositive() bool {
	return m.Decimal.GreaterThan(decimal.Zero)
}

// String fixed 2-decimal form
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}
