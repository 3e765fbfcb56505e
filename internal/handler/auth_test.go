package handler

import "testing"

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"student@example.edu", "student@example.edu", true},
		{"  Student@Example.EDU  ", "student@example.edu", true},
		{"", "", false},
		{"   ", "", false},
		{"not-an-email", "", false},
		{"missing@domain", "missing@domain", true}, // bare domains are valid addresses
		{"two@@ats.edu", "", false},
	}
	for _, c := range cases {
		got, ok := normalizeEmail(c.in)
		if ok != c.wantOK {
			t.Errorf("normalizeEmail(%q) ok = %v, want %v", c.in, ok, c.wantOK)
			continue
		}
		if ok && got != c.want {
			t.Errorf("normalizeEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
