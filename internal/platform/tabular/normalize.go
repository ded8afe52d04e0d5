package tabular

import (
	"math"
	"strings"
	"time"
)

// excelEpochOffset is the number of days between the workbook serial epoch
// (1899-12-30) and the Unix epoch. Serial 25569 is 1970-01-01.
const excelEpochOffset = 25569

const secondsPerDay = 86400

// Date is a canonical timestamp. HasTime records whether the source value
// carried a time-of-day component or only a calendar day.
type Date struct {
	Time    time.Time
	HasTime bool
}

// Day returns the calendar-day form used for duplicate keys.
func (d Date) Day() string { return d.Time.UTC().Format("2006-01-02") }

// CleanString trims surrounding whitespace; empty strings normalize to "".
func CleanString(c Cell) string {
	return strings.TrimSpace(c.AsText())
}

// Digits strips every non-digit character from the cell, the normal form for
// identifier fields such as the CNS.
func Digits(c Cell) string {
	var b strings.Builder
	for _, r := range c.AsText() {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

var truthyTokens = map[string]bool{
	"sim":  true,
	"yes":  true,
	"true": true,
}

// Truthy reports whether the cell matches one of the accepted truthy tokens,
// case-insensitively. Anything else, including empty, is false.
func Truthy(c Cell) bool {
	return truthyTokens[strings.ToLower(CleanString(c))]
}

var textDateLayouts = []struct {
	layout  string
	hasTime bool
}{
	{"02/01/2006 15:04", true},
	{"02/01/2006", false},
	{time.RFC3339, true},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02", false},
}

// ParseDate decodes the three accepted date encodings: workbook serial day
// counts, DD/MM/YYYY with optional HH:MM, and ISO strings. The second return
// is false when none apply; absence is not an error here, downstream
// validation decides whether it is fatal.
func ParseDate(c Cell) (Date, bool) {
	if c.IsEmpty() {
		return Date{}, false
	}

	if serial, ok := c.AsNumber(); ok {
		// Serial 0 would be 1899-12-30; anything non-positive is not a date.
		if serial <= 0 {
			return Date{}, false
		}
		// math.Round keeps rounding sign-correct for serials before 1970,
		// where secs is negative.
		secs := (serial - excelEpochOffset) * secondsPerDay
		t := time.Unix(int64(math.Round(secs)), 0).UTC()
		_, frac := splitSerial(serial)
		return Date{Time: t, HasTime: frac != 0}, true
	}

	s := CleanString(c)
	if s == "" {
		return Date{}, false
	}
	for _, l := range textDateLayouts {
		if t, err := time.ParseInLocation(l.layout, s, time.UTC); err == nil {
			return Date{Time: t, HasTime: l.hasTime}, true
		}
	}
	return Date{}, false
}

func splitSerial(serial float64) (days int64, frac float64) {
	days = int64(serial)
	return days, serial - float64(days)
}
