package model

import "errors"

var (
	// ErrProfileNotFound is returned by profile lookups for unknown users.
	ErrProfileNotFound = errors.New("user profile not found")

	// ErrTransactionNotFound is returned when a transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidTransaction wraps every constructor validation failure.
	ErrInvalidTransaction = errors.New("invalid transaction")
)
