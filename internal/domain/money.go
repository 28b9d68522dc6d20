package domain

// Money is an amount in minor units with its currency code.
type Money struct {
	Amount   int64
	Currency string
}

// IsZero reports whether no amount is set.
func (m Money) IsZero() bool {
	return m.Amount == 0
}
