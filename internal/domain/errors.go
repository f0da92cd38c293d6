package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthenticated is returned when an operation needs a live session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyCart is returned when checkout is attempted without lines.
	ErrEmptyCart = errors.New("cart is empty")
)
