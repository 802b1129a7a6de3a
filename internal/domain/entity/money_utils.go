package entity

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
)

// MoneyUtils contains utility functions for handling Rupiah amounts.
// Amounts are whole Rupiah stored as int64, there are no minor units.

// ParseWholeAmount parses a request amount such as "50000" into whole Rupiah.
// Grouping characters and decimals are rejected; the caller decides on zero.
func ParseWholeAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if strings.HasPrefix(amount, "-") {
		return 0, fmt.Errorf("%w: negative value", errs.ErrInvalidAmount)
	}

	value, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}

	return value, nil
}

// FormatRupiah renders an amount the Indonesian way, e.g. 52500 becomes "Rp 52.500"
func FormatRupiah(amount int64) string {
	return "Rp " + GroupThousands(amount)
}

// GroupThousands inserts '.' between groups of three digits
func GroupThousands(amount int64) string {
	isNegative := amount < 0
	if isNegative {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if isNegative {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
