package models

import "errors"

// Store-level errors shared by every credential store implementation.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)
