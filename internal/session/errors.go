package session

import "errors"

// Stable failure codes surfaced to callers. Provider failures never appear
// here; they degrade inside the distance engine.
const (
	CodeValidation     = "validation"
	CodeNotFound       = "not_found"
	CodePermission     = "permission_denied"
	CodeAlreadyClosed  = "already_closed"
	CodeSessionNotOpen = "session_not_open"
	CodePersistence    = "persistence"
)

// Error is a typed domain failure with a stable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the stable code from err, or CodePersistence for anything
// untyped (storage failures are the only untyped errors that escape).
func CodeOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodePersistence
}
