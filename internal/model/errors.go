package model

import "errors"

// Error kinds. Every domain error unwraps to exactly one of these, so callers
// can branch with errors.Is(err, model.ErrNotFound) without knowing the
// concrete error.
var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyInitialized   = errors.New("already initialized")
	ErrUnauthorized         = errors.New("not authorized")
	ErrOperationUnavailable = errors.New("operation unavailable")
)

// Error is a domain error tagged with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation errors
var (
	ErrContentRequired   = newError(ErrValidation, "content is required")
	ErrCannotFollowSelf  = newError(ErrValidation, "cannot follow yourself")
	ErrInvalidAccount    = newError(ErrValidation, "account is required")
	ErrInvalidPagination = newError(ErrValidation, "offset and limit must not be negative")
	ErrUnknownVersion    = newError(ErrValidation, "unknown schema version")
	ErrVersionSkipped    = newError(ErrValidation, "schema upgrades must follow the version lineage")
)

// Not found errors
var (
	ErrTweetNotFound = newError(ErrNotFound, "tweet not found")
)

// Initializer and authorization errors
var (
	ErrVersionInitialized = newError(ErrAlreadyInitialized, "schema version already initialized")
	ErrNotOperator        = newError(ErrUnauthorized, "operator privileges required")
)

// ErrRequiresVersion reports an operation that the deployed schema version
// does not offer yet.
func ErrRequiresVersion(v SchemaVersion) error {
	return newError(ErrOperationUnavailable, "operation requires schema "+v.String())
}
