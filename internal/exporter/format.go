package exporter

import (
	"strconv"
	"time"
)

// DateLayout is the canonical date form used in every output
const DateLayout = "2006-01-02"

// formatFloat formats a number in its shortest exact form without exponent
// or locale dependent separators
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int value
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatBool formats a boolean value as Yes or No
func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// formatDate formats the UTC calendar day of t
func formatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// formatTimestamp formats a generation timestamp
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
