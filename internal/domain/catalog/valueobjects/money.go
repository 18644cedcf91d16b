package valueobjects

import (
	"fmt"
	"strings"
)

// Money is an amount in minor currency units (paise, cents). There is no
// float representation.
type Money struct {
	amount   int64
	currency string
}

func NewMoney(amount int64, currency string) Money {
	return Money{amount: amount, currency: strings.ToUpper(currency)}
}

// Amount returns the value in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) IsZero() bool {
	return m.amount == 0
}

func (m Money) IsNegative() bool {
	return m.amount < 0
}

// Equals compares amount and currency exactly.
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) String() string {
	sign := ""
	a := m.amount
	if a < 0 {
		sign = "-"
		a = -a
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, a/100, a%100, m.currency)
}
