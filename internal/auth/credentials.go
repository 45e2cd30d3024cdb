package auth

import (
	"errors"
	"net/mail"
	"strings"
)

// MinPasswordLength is the shortest password accepted by the login form.
const MinPasswordLength = 6

var (
	ErrInvalidEmail     = errors.New("please enter a valid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// SanitizeEmail trims whitespace and lowercases the address.
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail reports whether email is a bare address like "ada@example.com".
// Display-name forms ("Ada <ada@example.com>") are rejected.
func ValidateEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// ValidateLogin checks the login form fields before any request is made.
func ValidateLogin(email, password string) error {
	if !ValidateEmail(email) {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
