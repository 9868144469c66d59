package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already in use")
	ErrDuplicateUsername = errors.New("username already in use")

	// Token related errors
	ErrTokenNotFound = errors.New("token not found")

	// Product related errors
	ErrProductNotFound = errors.New("product not found")
)
