// Package format renders analysis figures the way the UI shows them.
package format

import (
	"strconv"
	"strings"
	"time"
)

// Change classes used for styling the price change.
const (
	ClassPositive = "positive"
	ClassNegative = "negative"
)

// InvalidDate is rendered for timestamps that cannot be parsed.
const InvalidDate = "Invalid Date"

// DisplayLayout is the localized date-time layout, e.g. "1/2/2024, 3:04:05 PM".
const DisplayLayout = "1/2/2006, 3:04:05 PM"

// Price formats a price as dollars with exactly two decimals: 123.4 -> "$123.40".
func Price(price float64) string {
	return "$" + fixed2(price)
}

// Change formats the absolute and percentage change as "+1.24 (+0.50%)".
// Each value carries a leading "+" when it is non-negative.
func Change(change, changePct float64) string {
	var b strings.Builder
	b.WriteString(signed(change))
	b.WriteString(" (")
	b.WriteString(signed(changePct))
	b.WriteString("%)")
	return b.String()
}

// ChangeClass is "positive" for changes >= 0 and "negative" otherwise.
func ChangeClass(change float64) string {
	if change >= 0 {
		return ClassPositive
	}
	return ClassNegative
}

var (
	offsetLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999Z0700"}
	localLayouts  = []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04", "2006-01-02 15:04:05.999999999"}
)

// ParseTimestamp accepts RFC 3339 timestamps, ISO date-times without an
// offset (taken as wall time in loc) and bare dates (taken as UTC midnight).
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Timestamp renders raw in loc using DisplayLayout.
func Timestamp(raw string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, ok := ParseTimestamp(raw, loc)
	if !ok {
		return InvalidDate
	}
	return t.In(loc).Format(DisplayLayout)
}

func signed(v float64) string {
	if v >= 0 {
		return "+" + fixed2(v)
	}
	return fixed2(v)
}

func fixed2(v float64) string {
	if v == 0 {
		// collapse negative zero
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
