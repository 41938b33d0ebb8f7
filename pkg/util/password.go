package util

import (
	"golang.org/x/crypto/bcrypt"
)

// Cost 12 keeps a login under ~300ms while staying well above the
// bcrypt default.
const bcryptCost = 12

// HashPassword derives the bcrypt hash stored on the user row
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword reports whether password matches the stored hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
