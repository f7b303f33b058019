package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is a fixed-point monetary amount with a 2-digit scale, stored as an
// integer number of cents so repositories can apply it with atomic $inc deltas.
type Cents int64

func (c Cents) String() string {
	return decimal.New(int64(c), -2).StringFixed(2)
}

// MarshalJSON renders the amount as a decimal string with exactly two
// fractional digits. Float money never crosses an API boundary.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCents parses a decimal amount string, rounding half-up to 2 places.
func ParseCents(s string) (Cents, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return CentsFromDecimal(d), nil
}

// CentsFromDecimal rounds half-up to 2 fractional digits.
func CentsFromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Round(2).Shift(2).IntPart())
}

func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

func (c Cents) Neg() Cents {
	return -c
}
