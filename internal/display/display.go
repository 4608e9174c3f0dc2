// Package display renders service values for humans: durations, grouped
// counts, sizes and the yes/no marks of the debug table. Absent or zero
// values render as NotAvailable.
package display

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ManuGH/vidfetch/internal/service"
)

const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// Duration formats seconds as h:mm:ss, or m:ss below an hour.
func Duration(seconds int64) string {
	if seconds <= 0 {
		return NotAvailable
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Count groups digits, e.g. 1,234,567.
func Count(n int64) string {
	if n == 0 {
		return NotAvailable
	}
	return printer.Sprintf("%d", n)
}

// Size renders a byte count in whole mebibytes, e.g. "50MB".
func Size(bytes *service.Int) string {
	if bytes == nil || *bytes == 0 {
		return NotAvailable
	}
	mb := math.Round(float64(*bytes) / 1024 / 1024)
	return strconv.FormatFloat(mb, 'f', 0, 64) + "MB"
}

// Flag renders a capability mark.
func Flag(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// Opt renders an optional integer.
func Opt(v *int) string {
	if v == nil || *v == 0 {
		return NotAvailable
	}
	return strconv.Itoa(*v)
}
