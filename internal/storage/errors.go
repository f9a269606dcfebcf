package storage

import "errors"

var (
	// ErrNotFound is returned when a record id or phone has no match
	ErrNotFound = errors.New("record not found")

	// ErrInvalidID is returned for ids that are not hex object ids
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidInput is returned when required fields are missing or out of range
	ErrInvalidInput = errors.New("invalid input")

	// ErrPhoneTaken is returned when registering a phone already used in the same role
	ErrPhoneTaken = errors.New("phone number already registered")

	// ErrNotOwner is returned when a caller acts on a record that belongs to someone else
	ErrNotOwner = errors.New("record belongs to another account")

	// ErrInvalidTransition is returned for disallowed visit or order status changes
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInsufficientStock is returned when an order asks for more than is on the shelf
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrAlreadyExists is returned when a bill already exists for an order
	ErrAlreadyExists = errors.New("record already exists")
)
