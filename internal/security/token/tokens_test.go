package tokens

import (
	"encoding/base64"
	"testing"
)

func TestGenerateOpaqueToken_LengthAndCharset(t *testing.T) {
	tok, err := GenerateOpaqueToken(OpaqueTokenBytes)
	if err != nil {
		t.Fatalf("generate err: %v", err)
	}
	// 32 bytes -> 43 chars base64url sin padding
	if len(tok) != 43 {
		t.Fatalf("unexpected length: got %d want 43 (%q)", len(tok), tok)
	}
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not valid base64url: %v", err)
	}
	if len(raw) != OpaqueTokenBytes {
		t.Fatalf("decoded length: got %d want %d", len(raw), OpaqueTokenBytes)
	}
}

func TestGenerate_NoDuplicates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 100k generation in -short")
	}
	const m = 100000
	seen := make(map[string]struct{}, m)
	for i := 0; i < m; i++ {
		tok, err := Generate()
		if err != nil {
			t.Fatalf("generate err at %d: %v", i, err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token after %d generations: %q", i, tok)
		}
		seen[tok] = struct{}{}
	}
}
