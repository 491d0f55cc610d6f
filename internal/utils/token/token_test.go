package token

import (
	"errors"
	"strings"
	"testing"
)

const secret = "test_secret"

func TestIssueAndVerify(t *testing.T) {
	tokenString, err := Issue("a@x.com", "42", secret)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	claims, err := Verify(tokenString, secret)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if claims.Email != "a@x.com" {
		t.Fatalf("Expected email a@x.com, got %s", claims.Email)
	}
	if claims.UserID != "42" {
		t.Fatalf("Expected userid 42, got %s", claims.UserID)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	tokenString, err := Issue("a@x.com", "42", secret)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Replace the tail of the signature segment with different base64 characters
	tail := "AA"
	if strings.HasSuffix(tokenString, tail) {
		tail = "BB"
	}
	tampered := tokenString[:len(tokenString)-2] + tail

	_, err = Verify(tampered, secret)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("Expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	tokenString, err := Issue("a@x.com", "42", secret)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = Verify(tokenString, "other_secret")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("Expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	for _, garbage := range []string{"", "not-a-token", "a.b", strings.Repeat("x", 64)} {
		_, err := Verify(garbage, secret)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("Expected ErrMalformed for %q, got %v", garbage, err)
		}
	}
}
