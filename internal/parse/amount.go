// Package parse turns raw export cells into typed numbers and dates.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	nonAmountChars   = regexp.MustCompile(`[^0-9.\-]`)
	nonQuantityChars = regexp.MustCompile(`[^0-9\-]`)
	labelTotalChars  = regexp.MustCompile(`[$,\s]`)
)

// Amount parses a money cell. Currency symbols and thousands separators are
// dropped and a value fully wrapped in parentheses is negative. Anything that
// does not parse yields zero.
func Amount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = nonAmountChars.ReplaceAllString(s, "")
	d, ok := leadingDecimal(s)
	if !ok {
		return decimal.Zero
	}
	if negative && d.IsPositive() {
		d = d.Neg()
	}
	return d
}

// Quantity parses a unit count, defaulting to 1 for anything that is not a
// positive integer.
func Quantity(raw string) int {
	s := nonQuantityChars.ReplaceAllString(raw, "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// LabelTotal is the strict parser used for shipping ledgers: only "$", ","
// and whitespace are stripped and the remainder must be a number.
func LabelTotal(raw string) (decimal.Decimal, bool) {
	s := labelTotalChars.ReplaceAllString(raw, "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// leadingDecimal reads the longest numeric prefix of s, so "12.34.5" is 12.34
// and "1-2" is 1.
func leadingDecimal(s string) (decimal.Decimal, bool) {
	end := 0
	seenDigit, seenDot := false, false
scan:
	for i, r := range s {
		switch {
		case r == '-' && i == 0:
		case r == '.' && !seenDot:
			seenDot = true
		case r >= '0' && r <= '9':
			seenDigit = true
		default:
			break scan
		}
		end = i + 1
	}
	if !seenDigit {
		return decimal.Zero, false
	}
	num := strings.TrimSuffix(s[:end], ".")
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
