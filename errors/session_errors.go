// errors/session_errors.go
package errors

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAccessDenied     = errors.New("access denied")
)
