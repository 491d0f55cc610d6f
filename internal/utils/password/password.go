package password

import "golang.org/x/crypto/bcrypt"

// Work factor matches the classic bcrypt default of 10 rounds.
const cost = 10

// Hash returns the salted bcrypt hash of a plaintext password.
func Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Check reports whether the plaintext password matches the stored hash.
// bcrypt's comparison is constant-time.
func Check(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
