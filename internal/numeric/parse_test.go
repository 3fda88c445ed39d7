package numeric

import "testing"

func TestParseNumericBasic(t *testing.T) {
	cases := map[string]float64{
		"100":       100,
		"  100  ":   100,
		"-42":       -42,
		"+42":       42,
		"$100":      100,
		"-$100":     -100,
		"$-100":     -100,
		"1,234.50":  1234.50,
		"1,234,567": 1234567,
		"1.5e3":     1500,
		"(50)":      -50,
		"($50)":     -50,
	}
	for in, want := range cases {
		got, ok := ParseNumeric([]byte(in))
		if !ok {
			t.Fatalf("ParseNumeric(%q) ok = false, want true", in)
		}
		if got != want {
			t.Fatalf("ParseNumeric(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseNumericRejectsInvalid(t *testing.T) {
	cases := []string{
		"", "abc", "1,23", "1,2345", "12,345,6", "--5", "5-", "$", "()", "1.2.3", "$$5", "1e",
	}
	for _, in := range cases {
		if _, ok := ParseNumeric([]byte(in)); ok {
			t.Fatalf("ParseNumeric(%q) ok = true, want false", in)
		}
	}
}

func TestParseNumericRejectsInfAndNaN(t *testing.T) {
	if _, ok := ParseNumeric([]byte("1e999")); ok {
		t.Fatalf("ParseNumeric(1e999) ok = true, want false (overflow to +Inf)")
	}
}
