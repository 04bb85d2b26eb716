// Package core holds the school bursary domain model and the fee/balance
// computation engine. Everything here is pure: values in, values out.
package core

import (
	"fmt"
	"strconv"
)

// Zero is the zero amount, exported for readability at call sites.
var Zero = Money{}

func (m Money) Add(n Money) Money {
	return Money{Cents: m.Cents + n.Cents}
}

func (m Money) Sub(n Money) Money {
	return Money{Cents: m.Cents - n.Cents}
}

func (m Money) IsNegative() bool {
	return m.Cents < 0
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// String formats the amount with thousands separators, e.g. 290000 ->
// "290,000". Display only; calculations always use Cents.
func (m Money) String() string {
	n := m.Cents
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return sign + s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return sign + string(out)
}

// Money marshals as a bare number so snapshots read like the source
// documents ({"amount": 290000}, not {"amount": {"Cents": 290000}}).

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", string(b), ErrInvalidArgument)
	}
	m.Cents = v
	return nil
}
