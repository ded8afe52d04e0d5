package tabular

import (
	"testing"
	"time"
)

func TestCleanString(t *testing.T) {
	if got := CleanString(Text("  Maria da Silva  ")); got != "Maria da Silva" {
		t.Errorf("unexpected clean string: %q", got)
	}
	if got := CleanString(Empty()); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestDigitsStripsNonDigits(t *testing.T) {
	cases := map[string]string{
		"700.0000.0000.0001": "700000000000001",
		" 700 0000 0000 ":    "70000000000",
		"abc":                "",
		"898001160660000":    "898001160660000",
	}
	for in, want := range cases {
		if got := Digits(Text(in)); got != want {
			t.Errorf("Digits(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruthyTokens(t *testing.T) {
	for _, v := range []string{"sim", "SIM", "Sim", "yes", "TRUE"} {
		if !Truthy(Text(v)) {
			t.Errorf("expected %q to be truthy", v)
		}
	}
	for _, v := range []string{"não", "no", "false", "", "1"} {
		if Truthy(Text(v)) {
			t.Errorf("expected %q to be falsy", v)
		}
	}
}

func TestParseDateTextFormats(t *testing.T) {
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	d, ok := ParseDate(Text("01/01/2024 10:00"))
	if !ok {
		t.Fatal("expected DD/MM/YYYY HH:MM to parse")
	}
	if !d.Time.Equal(want) {
		t.Errorf("expected %v, got %v", want, d.Time)
	}
	if !d.HasTime {
		t.Error("expected time component to be preserved")
	}

	d, ok = ParseDate(Text("01/01/2024"))
	if !ok {
		t.Fatal("expected DD/MM/YYYY to parse")
	}
	if d.HasTime {
		t.Error("day-only date should not report a time component")
	}
	if d.Day() != "2024-01-01" {
		t.Errorf("unexpected day: %s", d.Day())
	}

	d, ok = ParseDate(Text("2024-01-01T10:00:00Z"))
	if !ok {
		t.Fatal("expected ISO date to parse")
	}
	if !d.Time.Equal(want) {
		t.Errorf("expected %v, got %v", want, d.Time)
	}
}

func TestParseDateSerialMatchesText(t *testing.T) {
	// Serial 45292 is 2024-01-01; .5 is midday. Serial and textual encodings
	// of the same instant must canonicalize identically.
	serial, ok := ParseDate(Number(45292))
	if !ok {
		t.Fatal("expected serial to parse")
	}
	text, ok := ParseDate(Text("01/01/2024"))
	if !ok {
		t.Fatal("expected text date to parse")
	}
	if serial.Day() != text.Day() {
		t.Errorf("serial day %s != text day %s", serial.Day(), text.Day())
	}

	midday, ok := ParseDate(Number(45292.5))
	if !ok {
		t.Fatal("expected fractional serial to parse")
	}
	if !midday.HasTime {
		t.Error("fractional serial should carry a time component")
	}
	wantMidday := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if !midday.Time.Equal(wantMidday) {
		t.Errorf("expected %v, got %v", wantMidday, midday.Time)
	}
}

func TestParseDateSerialBeforeUnixEpoch(t *testing.T) {
	// Birth dates commonly predate 1970. Fractional serials there yield
	// negative second counts, which must round to nearest, not truncate
	// toward zero.
	d, ok := ParseDate(Number(20000 + 1.0/3.0)) // 08:00 on the serial-20000 day
	if !ok {
		t.Fatal("expected serial to parse")
	}
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	want := base.AddDate(0, 0, 20000).Add(8 * time.Hour)
	if !d.Time.Equal(want) {
		t.Errorf("expected %v, got %v", want, d.Time)
	}
	if !d.HasTime {
		t.Error("fractional serial should carry a time component")
	}
}

func TestParseDateUnparseable(t *testing.T) {
	for _, c := range []Cell{Text("not a date"), Text("32/13/2024"), Empty(), Number(-5)} {
		if _, ok := ParseDate(c); ok {
			t.Errorf("expected %q to fail date parsing", c.AsText())
		}
	}
}

func TestFromRawClassification(t *testing.T) {
	c := FromRaw("45292.5")
	if n, ok := c.AsNumber(); !ok || n != 45292.5 {
		t.Errorf("expected numeric cell, got kind=%v n=%v ok=%v", c.Kind(), n, ok)
	}
	// Raw text must survive for identifier fields even when numeric.
	c = FromRaw("700000000000001")
	if c.AsText() != "700000000000001" {
		t.Errorf("raw text lost: %q", c.AsText())
	}
	if FromRaw("").Kind() != CellEmpty {
		t.Error("empty string should classify as empty cell")
	}
	if FromRaw("Agendado").Kind() != CellText {
		t.Error("plain text should classify as text cell")
	}
}
