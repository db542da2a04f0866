// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 8
	maxPasswordLen = 128
	maxTitleLen    = 200
	maxCommentLen  = 2000
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < minUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", minUsernameLen)
	}

	if len(username) > maxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", maxUsernameLen)
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	// Cannot start or end with underscore/hyphen
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}

	if len(password) > maxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLen)
	}

	hasLetter := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}

	return nil
}

// ValidatePostFields checks the user-supplied fields of a post.
func ValidatePostFields(title, summary, content string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", maxTitleLen)
	}
	if strings.TrimSpace(summary) == "" {
		return fmt.Errorf("summary is required")
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

// ValidateCommentText checks that a comment body is present and bounded.
func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("comment text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return fmt.Errorf("comment must not exceed %d characters", maxCommentLen)
	}
	return nil
}
