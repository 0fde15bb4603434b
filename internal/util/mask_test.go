package util

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"ab", "***"},
		{"nolocal", "n…l"},
		{"a@b.c", "a@b.c"},
		{"alice@example.com", "a…@e….com"},
		// el case se preserva, emails que difieren en mayúsculas se distinguen
		{"Alice@Example.com", "A…@E….com"},
	}
	for _, tc := range cases {
		if got := MaskEmail(tc.in); got != tc.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
