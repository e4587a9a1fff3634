// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"bufio"
	_ "embed"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

//go:embed common_passwords.txt
var commonPasswordsList string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(commonPasswordsList))
	for scanner.Scan() {
		if pw := strings.ToLower(strings.TrimSpace(scanner.Text())); pw != "" {
			set[pw] = struct{}{}
		}
	}
	return set
}()

// PasswordValidator rejects passwords that are short, guessable or close
// to the user's own name or email.
type PasswordValidator struct {
	MinLength            int
	CheckCommonPasswords bool
	CheckUserSimilarity  bool
}

// DefaultPasswordValidator returns the validator used for registration.
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		MinLength:            8,
		CheckCommonPasswords: true,
		CheckUserSimilarity:  true,
	}
}

// ValidationError represents a single password validation error
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// PasswordValidationError wraps multiple validation errors
type PasswordValidationError struct {
	Errors []ValidationError
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return e.Errors[0].Message
}

// Messages returns all error messages
func (e *PasswordValidationError) Messages() []string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Message
	}
	return messages
}

// ValidationResult holds all validation errors
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Validate checks password against the configured rules. userAttributes
// are values the password must not resemble, such as name and email.
func (v *PasswordValidator) Validate(password string, userAttributes ...string) ValidationResult {
	var errs []ValidationError
	fail := func(code, msg string) {
		errs = append(errs, ValidationError{Code: code, Message: msg})
	}

	if utf8.RuneCountInString(password) < v.MinLength {
		fail("min_length", fmt.Sprintf("Password must be at least %d characters long.", v.MinLength))
	}
	if isEntirelyNumeric(password) {
		fail("entirely_numeric", "Password cannot be entirely numeric.")
	}
	if v.CheckCommonPasswords && isCommonPassword(password) {
		fail("common_password", "This password is too common.")
	}
	if v.CheckUserSimilarity && isSimilarToUserAttributes(password, userAttributes) {
		fail("too_similar", "Password is too similar to your name or email.")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func isEntirelyNumeric(password string) bool {
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return password != ""
}

func isCommonPassword(password string) bool {
	_, exists := commonPasswords[strings.ToLower(password)]
	return exists
}

func isSimilarToUserAttributes(password string, attributes []string) bool {
	pw := strings.ToLower(password)
	if pw == "" {
		return false
	}

	for _, attr := range attributes {
		a := strings.ToLower(attr)
		if a == "" {
			continue
		}
		// Compare against the local part of an email as well.
		local, _, _ := strings.Cut(a, "@")
		for _, candidate := range []string{a, local} {
			if len(candidate) < 3 {
				continue
			}
			if strings.Contains(pw, candidate) || strings.Contains(candidate, pw) || similarity(pw, candidate) > 0.7 {
				return true
			}
		}
	}

	return false
}

// similarity is the longest common subsequence relative to the longer input.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return float64(prev[len(b)]) / float64(max(len(a), len(b)))
}
