package meshjoin

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var moneyCleaner = strings.NewReplacer("$", "", ",", "")

// ParseMoney parses a price such as "$1,234.50". Currency symbols and
// thousands separators are stripped and surrounding whitespace trimmed. On
// failure it returns zero together with an error wrapping ErrMalformedMoney.
func ParseMoney(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(moneyCleaner.Replace(s))
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedMoney, s)
	}
	return d, nil
}
