package pg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	tokenErr := &pgconn.PgError{Code: "23505", ConstraintName: "account_token_key"}
	if !isUniqueViolation(tokenErr, "account_token_key") {
		t.Fatal("expected match on token constraint")
	}
	if isUniqueViolation(tokenErr, "account_email_key") {
		t.Fatal("must not match a different constraint")
	}

	wrapped := fmt.Errorf("pg find or create by email: %w", tokenErr)
	if !isUniqueViolation(wrapped, "account_token_key") {
		t.Fatal("expected match through wrapping")
	}

	if isUniqueViolation(errors.New("connection refused"), "account_token_key") {
		t.Fatal("plain errors are not unique violations")
	}
	notUnique := &pgconn.PgError{Code: "23503", ConstraintName: "account_token_key"}
	if isUniqueViolation(notUnique, "account_token_key") {
		t.Fatal("non-23505 codes are not unique violations")
	}
}
