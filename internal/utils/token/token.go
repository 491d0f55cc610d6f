package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSignature is returned when a token parses but its signature
	// does not match the server secret.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrMalformed is returned when a token cannot be parsed at all.
	ErrMalformed = errors.New("malformed token")
)

// Claims carried by an identity token. Tokens are stateless: nothing is
// persisted server-side, and no expiry is set, so a token stays valid until
// the signing secret rotates.
type Claims struct {
	Email  string `json:"email"`
	UserID string `json:"userid"`
	jwt.RegisteredClaims
}

// Issue signs a token for the given identity with HMAC-SHA256.
func Issue(email, userID, secret string) (string, error) {
	claims := Claims{
		Email:  email,
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Verify parses and validates a token string, returning its claims.
// Failures are distinguishable for logging: ErrInvalidSignature when the
// signature check fails, ErrMalformed for anything unparseable. Callers must
// reject both.
func Verify(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrMalformed
	}

	if !parsed.Valid {
		return nil, ErrInvalidSignature
	}

	return claims, nil
}
