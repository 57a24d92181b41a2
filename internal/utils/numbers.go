package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidNumberFormat  = errors.New("invalid number format")
	ErrInvalidDateFormat    = errors.New("invalid date format")
	ErrInvalidIntegerFormat = errors.New("invalid integer format")
)

// ParseIndianNumber parses grouped amounts such as "2,13,546.00". Commas may
// appear anywhere; every supplied fractional digit is kept.
func ParseIndianNumber(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	stripped := strings.ReplaceAll(raw, ",", "")
	if !isPlainDecimal(stripped) {
		return decimal.Zero, fmt.Errorf("%w: %q, expected format: 2,13,546.00", ErrInvalidNumberFormat, s)
	}
	d, err := decimal.NewFromString(stripped)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumberFormat, s)
	}
	return d, nil
}

// decimal.NewFromString also accepts exponents, so the literal is checked first.
func isPlainDecimal(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrInvalidDateFormat, s)
	}
	return t, nil
}

func ParseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q, must be a valid integer", ErrInvalidIntegerFormat, s)
	}
	return n, nil
}

// ParseMonth validates a YYYY-MM month key and returns its first day in UTC.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM", ErrInvalidDateFormat, s)
	}
	return t, nil
}

func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
