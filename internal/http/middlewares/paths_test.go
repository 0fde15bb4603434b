package middlewares

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/healthz", "/healthz"},
		{"/metrics", "/metrics"},
		// tokens url-safe largos colapsan
		{"/auth/3q2-kZx9vYt8wA7bC6dE5fG4hJ3kL2mN1pQ0rS_u", "/auth/:param"},
		// emails colapsan
		{"/register/a@b.c", "/register/:param"},
		{"/register/Foo.Bar+tag@example.com", "/register/:param"},
		// uuids y números colapsan
		{"/accounts/550e8400-e29b-41d4-a716-446655440000", "/accounts/:param"},
		{"/things/12345", "/things/:param"},
		// query string se descarta
		{"/healthz?verbose=1", "/healthz"},
	}
	for _, tc := range cases {
		if got := NormalizePath(tc.in); got != tc.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
