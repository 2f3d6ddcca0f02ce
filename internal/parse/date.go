package parse

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// excelEpoch is day zero of the 1900 date system as Excel counts it.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Date parses a calendar date best-effort. Ambiguous numeric dates are read
// month first, as marketplace exports are. Bare numbers between 20000 and
// 80000 are taken as spreadsheet serial days.
func Date(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 20000 || serial > 80000 {
			return time.Time{}, false
		}
		days := int(serial)
		return excelEpoch.AddDate(0, 0, days), true
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
