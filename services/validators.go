package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MsgInvalidEmail      = "Invalid Email format. Email must be in lowercase, contain one '@', and one '.', and have a valid extension."
	MsgPasswordLength    = "Password must be at least 8 characters long."
	MsgPasswordUppercase = "Password must contain at least one uppercase letter."
	MsgPasswordLowercase = "Password must contain at least one lowercase letter."
	MsgPasswordDigit     = "Password must contain at least one numeric digit."
	MsgPasswordSpecial   = "Password must contain at least one special character."
	minPasswordLength    = 8
	passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`
)

// emailPattern is deliberately narrower than RFC 5322: lowercase alphanumerics,
// a single-label domain and a two or three letter suffix.
var emailPattern = regexp.MustCompile(`^[a-z0-9]+@[a-z0-9]+\.[a-z]{2,3}$`)

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return newValidationError(MsgInvalidEmail)
	}
	return nil
}

// ValidatePassword checks the rules in a fixed order and reports only the
// first one that fails.
func ValidatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLength:
		return newValidationError(MsgPasswordLength)
	case !strings.ContainsFunc(password, isASCIIUpper):
		return newValidationError(MsgPasswordUppercase)
	case !strings.ContainsFunc(password, isASCIILower):
		return newValidationError(MsgPasswordLowercase)
	case !strings.ContainsFunc(password, isASCIIDigit):
		return newValidationError(MsgPasswordDigit)
	case !strings.ContainsAny(password, passwordSpecialChars):
		return newValidationError(MsgPasswordSpecial)
	}
	return nil
}

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
