package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInternalError = errors.New("internal error")

	// Ledger validation errors
	ErrInvalidAmount       = errors.New("amount must be a valid non-negative number")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrCategoryNotBudgeted = errors.New("category has no budget")
	ErrDateRequired        = errors.New("date is required")
	ErrNoteRequired        = errors.New("note is required")
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrInvalidField        = errors.New("invalid expense field")

	// Settings validation errors
	ErrInvalidTheme = errors.New("invalid theme")

	// Session errors
	ErrSessionClosed = errors.New("session is closed")
)

// Validation constants
const (
	MaxNoteLength = 255
)
