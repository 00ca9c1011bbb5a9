package security

import "golang.org/x/crypto/bcrypt"

// bcryptCost defines the bcrypt work factor for admin passwords.
const bcryptCost = 12

// HashPassword hashes a plaintext password using bcrypt. The plaintext is
// never stored; only the resulting hash is persisted on the Admin record.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
