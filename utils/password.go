package utils

import "golang.org/x/crypto/bcrypt"

// HashPIN returns the bcrypt hash of the admin PIN.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPIN compares the bcrypt hashed PIN with its possible plaintext equivalent.
func CheckPIN(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
