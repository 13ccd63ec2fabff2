package errors

import "errors"

var (
	// ErrInvalidInput is returned when a request cannot be interpreted
	ErrInvalidInput = errors.New("invalid input")

	// ErrCoffeeNotFound reports an absent coffee. It is an outcome, not a failure.
	ErrCoffeeNotFound = errors.New("coffee not found")

	// ErrCoffeeSoldNotFound reports that a coffee has no sales counter yet
	ErrCoffeeSoldNotFound = errors.New("coffee sold record not found")

	// ErrConflict is returned when a unique constraint is violated
	ErrConflict = errors.New("conflict")

	// ErrDatabaseError wraps every store-level failure
	ErrDatabaseError = errors.New("database error")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrCoffeeNotFound) || errors.Is(err, ErrCoffeeSoldNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabaseError)
}
