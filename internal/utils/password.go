package utils

import "golang.org/x/crypto/bcrypt"

// DefaultPasswordCost is the bcrypt cost used when none is configured.
const DefaultPasswordCost = 14

// HashPassword hashes a given password using bcrypt. Costs outside bcrypt's
// range fall back to DefaultPasswordCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with its hashed version.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
