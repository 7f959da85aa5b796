// Package validation checks user-supplied values before they are stored.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// MaxCharLength bounds the text a single card asks the user to write
const MaxCharLength = 32

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(field, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: field, Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: field, Message: "invalid email format"}
	}
	return nil
}

// ValidateCharacter checks the expected answer of a card
func ValidateCharacter(char string) error {
	char = strings.TrimSpace(char)
	if char == "" {
		return ValidationError{Field: "character", Message: "character is required"}
	}
	if utf8.RuneCountInString(char) > MaxCharLength {
		return ValidationError{Field: "character", Message: fmt.Sprintf("must be at most %d characters", MaxCharLength)}
	}
	return nil
}

// ValidateImageURL accepts an empty value, a rooted path served by the host
// application, or an absolute http(s) URL
func ValidateImageURL(raw string) error {
	if raw == "" || (strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//")) {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ValidationError{Field: "image_url", Message: "must be a rooted path or an http(s) URL"}
	}
	return nil
}
