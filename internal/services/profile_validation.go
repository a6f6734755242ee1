package services

import (
	"regexp"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	usernameMin = 3
	usernameMax = 20
	nameMax     = 30
)

// ProfileInput holds sanitized form fields and, when a file was uploaded,
// the reference the upload receiver stored it under.
type ProfileInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Avatar    *string
}

// Validate checks the fields in a fixed order and reports the first failure.
func (in ProfileInput) Validate() error {
	if n := utf8.RuneCountInString(in.Username); n < usernameMin || n > usernameMax {
		return &ValidationError{Field: "username", Message: "Username must be 3–20 characters long."}
	}
	if in.Email == "" || !emailRegex.MatchString(in.Email) {
		return &ValidationError{Field: "email", Message: "Invalid email address."}
	}
	if in.FirstName == "" || utf8.RuneCountInString(in.FirstName) > nameMax {
		return &ValidationError{Field: "firstName", Message: "First name is required (max 30 chars)."}
	}
	if in.LastName == "" || utf8.RuneCountInString(in.LastName) > nameMax {
		return &ValidationError{Field: "lastName", Message: "Last name is required (max 30 chars)."}
	}
	return nil
}
