package services

import (
	"strings"
	"unicode"

	"github.com/recipegram/apiserver/types"
)

const minPasswordLength = 8

// validatePasswordStrength applies the account password policy: a minimum
// length, not entirely numeric, and not too similar to the user's own
// attributes. Returns an empty string when the password is acceptable.
func validatePasswordStrength(password string, user types.User) string {
	if len(password) < minPasswordLength {
		return "password is too short, minimum 8 characters"
	}

	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return "password is entirely numeric"
	}

	lowered := strings.ToLower(password)
	attributes := []string{
		user.Username,
		emailLocalPart(user.Email),
		user.FirstName,
		user.LastName,
	}
	for _, attr := range attributes {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if len(attr) < 3 {
			continue
		}
		if strings.Contains(lowered, attr) || strings.Contains(attr, lowered) {
			return "password is too similar to your account details"
		}
	}

	return ""
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
