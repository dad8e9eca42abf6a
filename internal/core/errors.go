package core

import "errors"

// Errors returned by the services in this package. Handlers map them to HTTP status codes.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("caller is not allowed to perform this action")
	ErrMealLocked        = errors.New("meal record is locked for editing")
	ErrLunchLocked       = errors.New("lunch is locked for editing, only dinner may change")
	ErrMissingBill       = errors.New("no bill has been submitted for this month")
	ErrDuesNotComputable = errors.New("dues are not yet computable for this month")
	ErrStoreWrite        = errors.New("failed to write to the store")
	ErrUserNotFound      = errors.New("user not found")
)
