// errors/gateway_errors.go
package errors

import "errors"

var (
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	ErrOperationFailed    = errors.New("gateway operation failed")
)
