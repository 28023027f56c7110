package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	// MaxQueryLength bounds lookup, filter and suggestion queries.
	MaxQueryLength = 200

	// MinPasswordLength matches the sign-up rules users already know from hosted auth providers.
	MinPasswordLength = 6

	// MaxPasswordLength is the longest input bcrypt will hash.
	MaxPasswordLength = 72
)

// TextTooLarge reports whether text exceeds maxBytes. A limit of 0 disables the check.
func TextTooLarge(text string, maxBytes int) bool {
	return maxBytes > 0 && len(text) > maxBytes
}

// ValidateText checks a text submission against the configured size limit
// and requires valid UTF-8.
func ValidateText(text string, maxBytes int) (bool, string) {
	if TextTooLarge(text, maxBytes) {
		return false, fmt.Sprintf("Input is too large (limit %d bytes)", maxBytes)
	}
	if !utf8.ValidString(text) {
		return false, "Input must be valid UTF-8 text"
	}
	return true, ""
}

// NormalizeQuery trims a search query.
func NormalizeQuery(query string) string {
	return strings.TrimSpace(query)
}

// ValidateQuery checks a normalized search query.
func ValidateQuery(query string) (bool, string) {
	if query == "" {
		return false, "Enter an item to search for"
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return false, fmt.Sprintf("Search is too long (limit %d characters)", MaxQueryLength)
	}
	return true, ""
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an address is a bare email with a domain.
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return false, "Email is required"
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false, "Invalid email address"
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || !strings.Contains(email[at+1:], ".") {
		return false, "Invalid email address"
	}

	return true, ""
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) (bool, string) {
	if len(password) < MinPasswordLength {
		return false, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return false, fmt.Sprintf("Password must be at most %d bytes", MaxPasswordLength)
	}
	return true, ""
}
