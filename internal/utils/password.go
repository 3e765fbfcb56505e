package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes an admin password with the configured cost.
// Only administrators carry a password; students authenticate through
// emailed one-time codes and never touch this path.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword checks an admin login attempt against the stored hash.
// bcrypt's comparison is constant time, so the caller can map any false
// result to the same credentials error.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
