package core

import "errors"

// Error taxonomy. Each sentinel marks a class of failure; callers wrap them
// with context and the HTTP layer maps them to status codes via errors.Is.
var (
	// Validation failures (bad input from the client).
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidExpense = errors.New("invalid expense")
	ErrEmptyBatch     = errors.New("no expenses provided")
	ErrWeakPassword   = errors.New("weak password")
	ErrInvalidInput   = errors.New("invalid input")

	// Authentication failures. Unknown username and wrong password collapse
	// into the same ErrInvalidCredentials to avoid username enumeration.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// Authorization failure: caller does not own the resource.
	ErrForbidden = errors.New("not authorized to access this user's data")

	// Conflict: username already registered.
	ErrUsernameTaken = errors.New("username already exists")
)

// IsValidation reports whether err belongs to the validation class.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidExpense) ||
		errors.Is(err, ErrEmptyBatch) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrInvalidInput)
}
