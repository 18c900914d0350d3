package services

import "testing"

func TestNormEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"  Dana@Example.COM ", "dana@example.com", true},
		{"", "", true},
		{"not-an-email", "not-an-email", false},
		{"a@b.co", "a@b.co", true},
	}
	for _, c := range cases {
		got, ok := NormEmail(c.in)
		if ok != c.ok {
			t.Errorf("NormEmail(%q) ok = %v, want %v", c.in, ok, c.ok)
		}
		if ok && got != c.want {
			t.Errorf("NormEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormPhone(t *testing.T) {
	cases := map[string]string{
		"(555) 123-4567":  "5551234567",
		"+62 812 345 678": "+62812345678",
		"  ":              "",
		"555.123.4567":    "5551234567",
	}
	for in, want := range cases {
		if got := NormPhone(in); got != want {
			t.Errorf("NormPhone(%q) = %q, want %q", in, got, want)
		}
	}
}
