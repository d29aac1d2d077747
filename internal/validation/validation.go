// Package validation checks request fields before they reach the services.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/videotube/backend/internal/apperr"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 6
	// bcrypt ignores input past 72 bytes.
	MaxPasswordLength  = 72
	MinFullNameLength  = 3
	MaxFullNameLength  = 100
	MaxCommentLength   = 500
	MaxTitleLength     = 150
	MaxDescriptionSize = 5000
)

// Errors collects field level failures.
type Errors []apperr.FieldError

// Check records err against field when err is non-nil.
func (e *Errors) Check(field string, err error) {
	if err != nil {
		*e = append(*e, apperr.FieldError{Field: field, Message: err.Error()})
	}
}

// Err returns a Validation error carrying the collected fields, or nil when there are none.
func (e Errors) Err(message string) error {
	if len(e) == 0 {
		return nil
	}
	return apperr.Validation(message, e...)
}

// Username requires 3-30 letters or digits.
func Username(username string) error {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return errors.New("username is required")
	}
	n := utf8.RuneCountInString(trimmed)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return fmt.Errorf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength)
	}
	for _, r := range trimmed {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return errors.New("username may only contain letters and digits")
		}
	}
	return nil
}

// Email validates the address with the RFC 5322 parser.
func Email(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return errors.New("email address is required")
	}
	if len(trimmed) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return errors.New("invalid email address format")
	}
	return nil
}

// Password enforces the length bounds.
func Password(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	}
	return nil
}

// FullName requires 3-100 characters after trimming.
func FullName(name string) error {
	return textLength("full name", name, MinFullNameLength, MaxFullNameLength)
}

// Comment requires 1-500 characters after trimming.
func Comment(content string) error {
	return textLength("content", content, 1, MaxCommentLength)
}

// Title requires 1-150 characters after trimming.
func Title(title string) error {
	return textLength("title", title, 1, MaxTitleLength)
}

// Description allows empty text up to the size limit.
func Description(description string) error {
	if utf8.RuneCountInString(strings.TrimSpace(description)) > MaxDescriptionSize {
		return fmt.Errorf("description is too long (max %d characters)", MaxDescriptionSize)
	}
	return nil
}

// Required rejects blank values.
func Required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

func textLength(name, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 {
		return fmt.Errorf("%s is required", name)
	}
	if n < minLen {
		return fmt.Errorf("%s must be at least %d characters", name, minLen)
	}
	if n > maxLen {
		return fmt.Errorf("%s is too long (max %d characters)", name, maxLen)
	}
	return nil
}
