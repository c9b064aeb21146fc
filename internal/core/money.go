// Package core holds the domain types and the aggregation engine.
//
// Monetary values travel as raw strings (the store does not enforce a
// numeric type) and are parsed here with a lenient policy: anything that
// fails to parse contributes zero instead of aborting the computation.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ParseAmount converts a raw document value to a decimal amount.
//
// It tolerates surrounding whitespace, a leading currency sign and
// thousands separators. A value that still fails to parse yields zero;
// partial or malformed records must not abort an aggregation pass.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD). Timestamps with a
// time component are accepted by taking their date part.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthKey returns the YYYY-MM key for a date.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// NewInvoiceNumber generates the invoice reference stamped on a record at
// creation: "AVE-" followed by the creation epoch in milliseconds.
func NewInvoiceNumber(t time.Time) string {
	return fmt.Sprintf("AVE-%d", t.UnixMilli())
}
