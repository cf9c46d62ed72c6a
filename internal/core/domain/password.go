package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const MinPasswordLength = 8

// CheckPassword enforces the account password policy: at least
// MinPasswordLength characters with an uppercase letter, a lowercase
// letter, a digit and a symbol.
func CheckPassword(password string) error {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}

	var missing []string
	if utf8.RuneCountInString(password) < MinPasswordLength {
		missing = append(missing, "at least 8 characters")
	}
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "a number")
	}
	if !hasSymbol {
		missing = append(missing, "a special character")
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{
		Field:   "password",
		Message: "Password must contain " + strings.Join(missing, ", "),
	}
}
